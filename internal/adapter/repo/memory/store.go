package memory

import (
	"sync"

	"nearbyradar/internal/app/ports"
	"nearbyradar/internal/domain/radar"

	"github.com/google/uuid"
)

const (
	RegionWidth          = 256.0
	DefaultDrawDistance  = 128.0
	DefaultAltitudeLimit = 1024.0
)

type ParcelOwner string

const (
	OwnerSelf  ParcelOwner = "self"
	OwnerGroup ParcelOwner = "group"
	OwnerOther ParcelOwner = "other"
)

type Region struct {
	Ref    radar.RegionRef
	Origin radar.Point3D
}

func (r Region) contains(pos radar.Point3D) bool {
	return pos.X() >= r.Origin.X() && pos.X() < r.Origin.X()+RegionWidth &&
		pos.Y() >= r.Origin.Y() && pos.Y() < r.Origin.Y()+RegionWidth
}

// Parcel is an axis-aligned rectangle in region-local x/y.
type Parcel struct {
	RegionID  uuid.UUID
	MinX      float64
	MinY      float64
	MaxX      float64
	MaxY      float64
	Owner     ParcelOwner
	LandAdmin bool
}

func (p Parcel) contains(pos radar.Point3D) bool {
	return pos.X() >= p.MinX && pos.X() < p.MaxX && pos.Y() >= p.MinY && pos.Y() < p.MaxY
}

type Entity struct {
	ID       radar.EntityID
	Name     string
	Position radar.Point3D
	Mappable bool
}

type Privacy struct {
	Enabled          bool
	HideNames        bool
	RestrictTeleport bool
	RestrictLocation bool
	Exceptions       map[radar.EntityID]bool
}

type SocialEvent struct {
	Op     string
	Target radar.EntityID
	Name   string
}

// Store is an in-process world: the agent, regions, parcels and the
// avatars around it, plus the registries the radar reads.
type Store struct {
	mu            sync.RWMutex
	agent         ports.AgentInfo
	agentName     string
	regions       []Region
	parcels       []Parcel
	entities      map[radar.EntityID]Entity
	friends       map[radar.EntityID]ports.Relationship
	mutes         map[radar.EntityID]string
	privacy       Privacy
	drawDistance  float64
	altitudeLimit float64
	tracking      radar.EntityID
	social        []SocialEvent
	dispatches    []ports.DispatchRecord
	sightings     []ports.SightingRecord
}

func NewStore() *Store {
	return &Store{
		agent:         ports.AgentInfo{ID: uuid.New(), SessionID: uuid.New()},
		entities:      make(map[radar.EntityID]Entity),
		friends:       make(map[radar.EntityID]ports.Relationship),
		mutes:         make(map[radar.EntityID]string),
		drawDistance:  DefaultDrawDistance,
		altitudeLimit: DefaultAltitudeLimit,
	}
}

func (s *Store) SetAgent(agent ports.AgentInfo, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.agent = agent
	s.agentName = name
	s.agent.Region = s.regionAtLocked(agent.Position).Ref
}

func (s *Store) MoveAgent(pos radar.Point3D) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.agent.Position = pos
	s.agent.Region = s.regionAtLocked(pos).Ref
}

func (s *Store) AddRegion(r Region) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.regions = append(s.regions, r)
	s.agent.Region = s.regionAtLocked(s.agent.Position).Ref
}

func (s *Store) AddParcel(p Parcel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.parcels = append(s.parcels, p)
}

func (s *Store) PutEntity(e Entity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entities[e.ID] = e
}

// MoveEntity reports false when the entity is unknown.
func (s *Store) MoveEntity(id radar.EntityID, pos radar.Point3D) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entities[id]
	if !ok {
		return false
	}
	e.Position = pos
	s.entities[id] = e
	return true
}

func (s *Store) RemoveEntity(id radar.EntityID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entities, id)
}

func (s *Store) SetFriend(id radar.EntityID, rel ports.Relationship) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.friends[id] = rel
}

func (s *Store) SetPrivacy(p Privacy) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.privacy = p
}

func (s *Store) SetDrawDistance(d float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drawDistance = d
}

func (s *Store) SetAltitudeLimit(z float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.altitudeLimit = z
}

func (s *Store) SocialEvents() []SocialEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]SocialEvent(nil), s.social...)
}

func (s *Store) regionAtLocked(pos radar.Point3D) Region {
	for _, r := range s.regions {
		if r.contains(pos) {
			return r
		}
	}
	return Region{}
}
