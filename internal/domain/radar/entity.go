package radar

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

// EntityID identifies an avatar. uuid.Nil means "none".
type EntityID = uuid.UUID

// Point3D is a position in the agent's global coordinate space.
type Point3D = mgl64.Vec3

var NilEntity = uuid.Nil

// Sighting is one entry of the bulk nearby-entity feed.
type Sighting struct {
	ID       EntityID
	Position Point3D
}

type RegionRef struct {
	ID   uuid.UUID
	Name string
	Host string
}

func (r RegionRef) Valid() bool {
	return r.ID != uuid.Nil && r.Host != ""
}

// TrackedObject is an individually tracked (rendered) avatar object.
type TrackedObject struct {
	ID             EntityID
	IsAvatar       bool
	Position       Point3D
	RegionPosition Point3D
	Region         RegionRef
}

func (o TrackedObject) HasRegion() bool {
	return o.Region.Valid()
}
