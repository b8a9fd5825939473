package ports

import (
	"context"

	"nearbyradar/internal/domain/radar"
)

// AgentInfo is the acting agent as known to the session.
type AgentInfo struct {
	ID        radar.EntityID
	SessionID radar.EntityID
	Position  radar.Point3D
	Region    radar.RegionRef
	Godlike   bool
}

type AgentSession interface {
	Agent(ctx context.Context) (AgentInfo, error)
}

// WorldFeed is the bulk nearby-entity feed. Positions above the feed's
// altitude limit arrive with z truncated to 0.
type WorldFeed interface {
	NearbyEntities(ctx context.Context) ([]radar.Sighting, error)
}

// ObjectTracker looks up individually tracked objects. ok is false when the
// object is not instantiated locally.
type ObjectTracker interface {
	TrackedObject(ctx context.Context, id radar.EntityID) (radar.TrackedObject, bool)
}

type NameResolver interface {
	ResolveName(ctx context.Context, id radar.EntityID) (string, bool)
}

type ParcelAuthority interface {
	ValidGlobal(ctx context.Context, pos radar.Point3D) bool
	IsOwnedSelf(ctx context.Context, region radar.RegionRef, pos radar.Point3D) bool
	IsOwnedGroup(ctx context.Context, region radar.RegionRef, pos radar.Point3D) bool
	HasLandAdmin(ctx context.Context, region radar.RegionRef, pos radar.Point3D) bool
}

type MapDiscovery interface {
	IsMappable(ctx context.Context, id radar.EntityID) bool
}
