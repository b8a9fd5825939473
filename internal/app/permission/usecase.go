package permission

import (
	"context"
	"fmt"

	"nearbyradar/internal/app/ports"
	"nearbyradar/internal/domain/radar"
)

type Request struct {
	Selected radar.EntityID
	HasFocus bool
	// HasRow is true when the list reports an active selection among its rows.
	HasRow bool
}

// UseCase evaluates which actions are available for the selection. The result
// is never cached.
type UseCase struct {
	Session ports.AgentSession
	Objects ports.ObjectTracker
	Parcels ports.ParcelAuthority
	Mutes   ports.MuteRegistry
	Friends ports.RelationshipRegistry
	Maps    ports.MapDiscovery
	Privacy ports.PrivacyPolicy
}

func (u UseCase) Evaluate(ctx context.Context, req Request) (radar.PermissionState, error) {
	if !req.HasFocus {
		return radar.Closed(), nil
	}
	agent, err := u.Session.Agent(ctx)
	if err != nil {
		return radar.Closed(), fmt.Errorf("load agent: %w", err)
	}

	in := radar.BaseInputs{
		Selected: req.Selected,
		HasRow:   req.HasRow,
		Godlike:  agent.Godlike,
	}
	if req.Selected != radar.NilEntity {
		muted, err := u.Mutes.IsMuted(ctx, req.Selected)
		if err != nil {
			return radar.Closed(), fmt.Errorf("mute lookup: %w", err)
		}
		in.Muted = muted
		in.Mappable = u.Maps != nil && u.Maps.IsMappable(ctx, req.Selected)
		in.IsFriend = u.Friends != nil && u.Friends.IsFriend(ctx, req.Selected)
		in.Kickable = u.IsKickable(ctx, req.Selected)
	}
	return radar.EvaluateBase(in).WithPrivacy(u.restrictions(ctx, req.Selected)), nil
}

// IsKickable fails closed without a tracked avatar, a region or a valid global
// position. Sole ownership is checked first; land-admin group power is the
// fallback for parcels not self-owned or group-owned.
func (u UseCase) IsKickable(ctx context.Context, id radar.EntityID) bool {
	if id == radar.NilEntity || u.Objects == nil || u.Parcels == nil {
		return false
	}
	obj, ok := u.Objects.TrackedObject(ctx, id)
	if !ok || !obj.IsAvatar || !obj.HasRegion() {
		return false
	}
	if !u.Parcels.ValidGlobal(ctx, obj.Position) {
		return false
	}
	kickable := u.Parcels.IsOwnedSelf(ctx, obj.Region, obj.RegionPosition)
	if !kickable || u.Parcels.IsOwnedGroup(ctx, obj.Region, obj.RegionPosition) {
		kickable = u.Parcels.HasLandAdmin(ctx, obj.Region, obj.RegionPosition)
	}
	return kickable
}

func (u UseCase) restrictions(ctx context.Context, selected radar.EntityID) radar.PrivacyRestrictions {
	if u.Privacy == nil || !u.Privacy.Enabled() || selected == radar.NilEntity {
		return radar.PrivacyRestrictions{}
	}
	r := radar.PrivacyRestrictions{
		Active:            true,
		HideNames:         u.Privacy.HideNames(),
		RestrictTeleport:  u.Privacy.RestrictTeleport(),
		TeleportException: u.Privacy.IsTeleportException(selected),
		RestrictLocation:  u.Privacy.RestrictLocation(),
	}
	if r.RestrictLocation && u.Friends != nil {
		if rel, ok := u.Friends.Relationship(ctx, selected); ok {
			r.SharesMapLocation = rel.Online && rel.GrantsMapLoc
		}
	}
	return r
}
