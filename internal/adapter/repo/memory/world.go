package memory

import (
	"context"
	"sort"
	"strings"

	"nearbyradar/internal/app/ports"
	"nearbyradar/internal/domain/radar"
)

// World serves the agent session, bulk feed, object tracking and name
// lookups from a Store.
type World struct {
	store *Store
}

func NewWorld(store *Store) World {
	return World{store: store}
}

func (w World) Agent(_ context.Context) (ports.AgentInfo, error) {
	w.store.mu.RLock()
	defer w.store.mu.RUnlock()
	return w.store.agent, nil
}

// NearbyEntities includes the agent itself, like the real feed. Altitudes
// above the limit are reported as 0.
func (w World) NearbyEntities(_ context.Context) ([]radar.Sighting, error) {
	w.store.mu.RLock()
	defer w.store.mu.RUnlock()
	out := make([]radar.Sighting, 0, len(w.store.entities)+1)
	out = append(out, radar.Sighting{ID: w.store.agent.ID, Position: w.store.truncate(w.store.agent.Position)})
	for _, e := range w.store.entities {
		out = append(out, radar.Sighting{ID: e.ID, Position: w.store.truncate(e.Position)})
	}
	sort.Slice(out[1:], func(i, j int) bool {
		return out[i+1].ID.String() < out[j+1].ID.String()
	})
	return out, nil
}

// TrackedObject only knows avatars within draw distance of the agent.
func (w World) TrackedObject(_ context.Context, id radar.EntityID) (radar.TrackedObject, bool) {
	w.store.mu.RLock()
	defer w.store.mu.RUnlock()
	e, ok := w.store.entities[id]
	if !ok {
		return radar.TrackedObject{}, false
	}
	if float64(radar.Distance(e.Position, w.store.agent.Position)) > w.store.drawDistance {
		return radar.TrackedObject{}, false
	}
	region := w.store.regionAtLocked(e.Position)
	return radar.TrackedObject{
		ID:             e.ID,
		IsAvatar:       true,
		Position:       e.Position,
		RegionPosition: e.Position.Sub(region.Origin),
		Region:         region.Ref,
	}, true
}

func (w World) ResolveName(_ context.Context, id radar.EntityID) (string, bool) {
	w.store.mu.RLock()
	defer w.store.mu.RUnlock()
	if id == w.store.agent.ID && w.store.agentName != "" {
		return w.store.agentName, true
	}
	e, ok := w.store.entities[id]
	if !ok || strings.TrimSpace(e.Name) == "" {
		return "", false
	}
	return e.Name, true
}

func (w World) IsMappable(_ context.Context, id radar.EntityID) bool {
	w.store.mu.RLock()
	defer w.store.mu.RUnlock()
	return w.store.entities[id].Mappable
}

func (s *Store) truncate(pos radar.Point3D) radar.Point3D {
	if pos.Z() > s.altitudeLimit {
		return radar.Point3D{pos.X(), pos.Y(), 0}
	}
	return pos
}

type Parcels struct {
	store *Store
}

func NewParcels(store *Store) Parcels {
	return Parcels{store: store}
}

func (p Parcels) ValidGlobal(_ context.Context, pos radar.Point3D) bool {
	p.store.mu.RLock()
	defer p.store.mu.RUnlock()
	return p.store.regionAtLocked(pos).Ref.Valid()
}

func (p Parcels) IsOwnedSelf(_ context.Context, region radar.RegionRef, pos radar.Point3D) bool {
	parcel, ok := p.at(region, pos)
	return ok && parcel.Owner == OwnerSelf
}

func (p Parcels) IsOwnedGroup(_ context.Context, region radar.RegionRef, pos radar.Point3D) bool {
	parcel, ok := p.at(region, pos)
	return ok && parcel.Owner == OwnerGroup
}

func (p Parcels) HasLandAdmin(_ context.Context, region radar.RegionRef, pos radar.Point3D) bool {
	parcel, ok := p.at(region, pos)
	return ok && parcel.LandAdmin
}

func (p Parcels) at(region radar.RegionRef, pos radar.Point3D) (Parcel, bool) {
	p.store.mu.RLock()
	defer p.store.mu.RUnlock()
	for _, parcel := range p.store.parcels {
		if parcel.RegionID == region.ID && parcel.contains(pos) {
			return parcel, true
		}
	}
	return Parcel{}, false
}
