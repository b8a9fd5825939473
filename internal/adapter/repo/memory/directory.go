package memory

import (
	"context"
	"strings"

	"nearbyradar/internal/app/ports"
	"nearbyradar/internal/domain/radar"
)

type Friends struct {
	store *Store
}

func NewFriends(store *Store) Friends {
	return Friends{store: store}
}

func (f Friends) IsFriend(_ context.Context, id radar.EntityID) bool {
	f.store.mu.RLock()
	defer f.store.mu.RUnlock()
	_, ok := f.store.friends[id]
	return ok
}

func (f Friends) Relationship(_ context.Context, id radar.EntityID) (ports.Relationship, bool) {
	f.store.mu.RLock()
	defer f.store.mu.RUnlock()
	rel, ok := f.store.friends[id]
	return rel, ok
}

type MuteRepo struct {
	store *Store
}

func NewMuteRepo(store *Store) MuteRepo {
	return MuteRepo{store: store}
}

func (r MuteRepo) IsMuted(_ context.Context, id radar.EntityID) (bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	_, ok := r.store.mutes[id]
	return ok, nil
}

func (r MuteRepo) Add(_ context.Context, id radar.EntityID, name string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.mutes[id]; ok {
		return ports.ErrConflict
	}
	r.store.mutes[id] = name
	return nil
}

func (r MuteRepo) Remove(_ context.Context, id radar.EntityID, _ string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.mutes[id]; !ok {
		return ports.ErrNotFound
	}
	delete(r.store.mutes, id)
	return nil
}

type PrivacyPolicy struct {
	store *Store
}

func NewPrivacyPolicy(store *Store) PrivacyPolicy {
	return PrivacyPolicy{store: store}
}

func (p PrivacyPolicy) flags() Privacy {
	p.store.mu.RLock()
	defer p.store.mu.RUnlock()
	return p.store.privacy
}

func (p PrivacyPolicy) Enabled() bool          { return p.flags().Enabled }
func (p PrivacyPolicy) HideNames() bool        { return p.flags().HideNames }
func (p PrivacyPolicy) RestrictTeleport() bool { return p.flags().RestrictTeleport }
func (p PrivacyPolicy) RestrictLocation() bool { return p.flags().RestrictLocation }

func (p PrivacyPolicy) IsTeleportException(id radar.EntityID) bool {
	return p.flags().Exceptions[id]
}

// Anonymize replaces a name with a stable pseudonym derived from it.
func (p PrivacyPolicy) Anonymize(name string) string {
	var sum uint32
	for _, r := range strings.ToLower(name) {
		sum = sum*31 + uint32(r)
	}
	return anonyms[sum%uint32(len(anonyms))]
}

var anonyms = []string{
	"A resident",
	"This resident",
	"That resident",
	"An individual",
	"Someone",
	"A person",
	"A stranger",
	"Somebody",
}
