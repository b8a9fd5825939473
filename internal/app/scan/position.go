package scan

import (
	"context"

	"nearbyradar/internal/app/ports"
	"nearbyradar/internal/domain/radar"
)

// PositionResolver works around the bulk feed dropping altitude above its
// limit: a zero z is replaced by the tracked object's position when one exists.
type PositionResolver struct {
	Objects ports.ObjectTracker
}

func (r PositionResolver) Resolve(ctx context.Context, s radar.Sighting) radar.Point3D {
	if s.Position.Z() != 0 || r.Objects == nil {
		return s.Position
	}
	obj, ok := r.Objects.TrackedObject(ctx, s.ID)
	if !ok || !obj.IsAvatar {
		return s.Position
	}
	return obj.Position
}
