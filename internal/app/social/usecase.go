package social

import (
	"context"
	"errors"
	"fmt"

	"nearbyradar/internal/app/ports"
	"nearbyradar/internal/domain/radar"
)

var ErrNoSelection = errors.New("no entity selected")

// UseCase forwards the simple per-entity buttons to their subsystems.
type UseCase struct {
	Actions ports.SocialActions
	Mutes   ports.MuteRegistry
	Names   ports.NameResolver
}

func (u UseCase) StartIM(ctx context.Context, id radar.EntityID) error {
	if id == radar.NilEntity {
		return ErrNoSelection
	}
	return u.Actions.StartIM(ctx, id, u.name(ctx, id))
}

func (u UseCase) ShowProfile(ctx context.Context, id radar.EntityID) error {
	if id == radar.NilEntity {
		return ErrNoSelection
	}
	return u.Actions.ShowProfile(ctx, id)
}

func (u UseCase) OfferTeleport(ctx context.Context, id radar.EntityID) error {
	if id == radar.NilEntity {
		return ErrNoSelection
	}
	return u.Actions.OfferTeleport(ctx, id)
}

func (u UseCase) InviteToGroup(ctx context.Context, id radar.EntityID) error {
	if id == radar.NilEntity {
		return ErrNoSelection
	}
	return u.Actions.InviteToGroup(ctx, id)
}

func (u UseCase) RequestFriendship(ctx context.Context, id radar.EntityID) error {
	if id == radar.NilEntity {
		return ErrNoSelection
	}
	return u.Actions.RequestFriendship(ctx, id, u.name(ctx, id))
}

func (u UseCase) ReportAbuse(ctx context.Context, id radar.EntityID) error {
	if id == radar.NilEntity {
		return ErrNoSelection
	}
	return u.Actions.ReportAbuse(ctx, id)
}

// ToggleTrack stops an active avatar track, otherwise starts tracking id.
// It reports whether tracking is on afterwards.
func (u UseCase) ToggleTrack(ctx context.Context, id radar.EntityID) (bool, error) {
	if u.Actions.IsTrackingAvatar(ctx) {
		return false, u.Actions.StopTracking(ctx)
	}
	if id == radar.NilEntity {
		return false, ErrNoSelection
	}
	if err := u.Actions.TrackAvatar(ctx, id, u.name(ctx, id)); err != nil {
		return false, err
	}
	return true, nil
}

// Mute adds id unless already muted. It reports whether the list changed.
func (u UseCase) Mute(ctx context.Context, id radar.EntityID) (bool, error) {
	if id == radar.NilEntity {
		return false, ErrNoSelection
	}
	muted, err := u.Mutes.IsMuted(ctx, id)
	if err != nil {
		return false, fmt.Errorf("mute lookup: %w", err)
	}
	if muted {
		return false, nil
	}
	if err := u.Mutes.Add(ctx, id, u.name(ctx, id)); err != nil {
		return false, err
	}
	return true, nil
}

func (u UseCase) Unmute(ctx context.Context, id radar.EntityID) (bool, error) {
	if id == radar.NilEntity {
		return false, ErrNoSelection
	}
	muted, err := u.Mutes.IsMuted(ctx, id)
	if err != nil {
		return false, fmt.Errorf("mute lookup: %w", err)
	}
	if !muted {
		return false, nil
	}
	if err := u.Mutes.Remove(ctx, id, u.name(ctx, id)); err != nil {
		return false, err
	}
	return true, nil
}

func (u UseCase) name(ctx context.Context, id radar.EntityID) string {
	if u.Names == nil {
		return ""
	}
	name, _ := u.Names.ResolveName(ctx, id)
	return name
}
