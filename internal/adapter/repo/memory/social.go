package memory

import (
	"context"

	"nearbyradar/internal/domain/radar"
)

// Social records forwarded social actions and owns avatar tracking.
type Social struct {
	store *Store
}

func NewSocial(store *Store) Social {
	return Social{store: store}
}

func (s Social) record(op string, id radar.EntityID, name string) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	s.store.social = append(s.store.social, SocialEvent{Op: op, Target: id, Name: name})
	return nil
}

func (s Social) StartIM(_ context.Context, id radar.EntityID, name string) error {
	return s.record("im", id, name)
}

func (s Social) ShowProfile(_ context.Context, id radar.EntityID) error {
	return s.record("profile", id, "")
}

func (s Social) OfferTeleport(_ context.Context, id radar.EntityID) error {
	return s.record("teleport", id, "")
}

func (s Social) InviteToGroup(_ context.Context, id radar.EntityID) error {
	return s.record("invite", id, "")
}

func (s Social) RequestFriendship(_ context.Context, id radar.EntityID, name string) error {
	return s.record("friend", id, name)
}

func (s Social) ReportAbuse(_ context.Context, id radar.EntityID) error {
	return s.record("report", id, "")
}

func (s Social) IsTrackingAvatar(_ context.Context) bool {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()
	return s.store.tracking != radar.NilEntity
}

func (s Social) TrackAvatar(_ context.Context, id radar.EntityID, name string) error {
	s.store.mu.Lock()
	s.store.tracking = id
	s.store.mu.Unlock()
	return s.record("track", id, name)
}

func (s Social) StopTracking(_ context.Context) error {
	s.store.mu.Lock()
	s.store.tracking = radar.NilEntity
	s.store.mu.Unlock()
	return s.record("stop_tracking", radar.NilEntity, "")
}
