package memory

import (
	"context"

	"nearbyradar/internal/app/ports"
	"nearbyradar/internal/domain/radar"
)

type DispatchLogRepo struct {
	store *Store
}

func NewDispatchLogRepo(store *Store) DispatchLogRepo {
	return DispatchLogRepo{store: store}
}

func (r DispatchLogRepo) Append(_ context.Context, rec ports.DispatchRecord) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.dispatches = append(r.store.dispatches, rec)
	return nil
}

// ListByTarget returns the newest records first.
func (r DispatchLogRepo) ListByTarget(_ context.Context, target radar.EntityID, limit int) ([]ports.DispatchRecord, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	out := make([]ports.DispatchRecord, 0)
	for i := len(r.store.dispatches) - 1; i >= 0; i-- {
		if r.store.dispatches[i].TargetID != target {
			continue
		}
		out = append(out, r.store.dispatches[i])
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

type SightingRepo struct {
	store *Store
}

func NewSightingRepo(store *Store) SightingRepo {
	return SightingRepo{store: store}
}

func (r SightingRepo) Append(_ context.Context, rec ports.SightingRecord) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.sightings = append(r.store.sightings, rec)
	return nil
}

func (r SightingRepo) ListRecent(_ context.Context, limit int) ([]ports.SightingRecord, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	out := make([]ports.SightingRecord, 0)
	for i := len(r.store.sightings) - 1; i >= 0; i-- {
		out = append(out, r.store.sightings[i])
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}
