package ports

import (
	"context"
	"errors"

	"nearbyradar/internal/domain/radar"
)

// Repository sentinels. Add on an existing key reports ErrConflict and
// Remove of a missing key reports ErrNotFound.
var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
)

type MuteRegistry interface {
	IsMuted(ctx context.Context, id radar.EntityID) (bool, error)
	Add(ctx context.Context, id radar.EntityID, name string) error
	Remove(ctx context.Context, id radar.EntityID, name string) error
}

// Relationship is a friendship as seen by the buddy list.
type Relationship struct {
	Online       bool
	GrantsMapLoc bool
}

type RelationshipRegistry interface {
	IsFriend(ctx context.Context, id radar.EntityID) bool
	Relationship(ctx context.Context, id radar.EntityID) (Relationship, bool)
}

// PrivacyPolicy is the third-party restriction layer.
type PrivacyPolicy interface {
	Enabled() bool
	HideNames() bool
	RestrictTeleport() bool
	RestrictLocation() bool
	IsTeleportException(id radar.EntityID) bool
	Anonymize(name string) string
}

type SettingsSource interface {
	Settings() radar.Settings
}
