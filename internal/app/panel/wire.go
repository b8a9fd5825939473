package panel

import (
	"time"

	"nearbyradar/internal/app/dispatch"
	"nearbyradar/internal/app/permission"
	"nearbyradar/internal/app/ports"
	"nearbyradar/internal/app/scan"
	"nearbyradar/internal/app/social"

	"github.com/cloudwego/hertz/pkg/common/hlog"
)

// World is the viewer-side view of the simulator the panel reads from.
type World interface {
	ports.AgentSession
	ports.WorldFeed
	ports.ObjectTracker
	ports.NameResolver
	ports.MapDiscovery
}

type Metrics interface {
	ports.RadarMetrics
	ports.DispatchMetrics
}

// Deps are the collaborators of one panel. Optional ones may be nil.
type Deps struct {
	World       World
	Parcels     ports.ParcelAuthority
	Mutes       ports.MuteRegistry
	Friends     ports.RelationshipRegistry
	Privacy     ports.PrivacyPolicy
	Social      ports.SocialActions
	Sender      ports.RequestSender
	Settings    ports.SettingsSource
	Tx          ports.TxManager
	Notifier    ports.Notifier
	Sightings   ports.SightingRepository
	DispatchLog ports.DispatchLogRepository
	Metrics     Metrics
	Logger      hlog.FullLogger
	Now         func() time.Time
}

func New(d Deps) *Panel {
	var radarMetrics ports.RadarMetrics
	var dispatchMetrics ports.DispatchMetrics
	if d.Metrics != nil {
		radarMetrics, dispatchMetrics = d.Metrics, d.Metrics
	}
	return &Panel{
		Scan: scan.UseCase{
			Session:   d.World,
			Feed:      d.World,
			Objects:   d.World,
			Names:     d.World,
			Mutes:     d.Mutes,
			Privacy:   d.Privacy,
			Settings:  d.Settings,
			Notifier:  d.Notifier,
			Sightings: d.Sightings,
			Metrics:   radarMetrics,
			Logger:    d.Logger,
			Now:       d.Now,
			State:     scan.NewState(),
		},
		Gate: permission.UseCase{
			Session: d.World,
			Objects: d.World,
			Parcels: d.Parcels,
			Mutes:   d.Mutes,
			Friends: d.Friends,
			Maps:    d.World,
			Privacy: d.Privacy,
		},
		Dispatch: &dispatch.Dispatcher{
			Session: d.World,
			Objects: d.World,
			Names:   d.World,
			Sender:  d.Sender,
			Log:     d.DispatchLog,
			Tx:      d.Tx,
			Metrics: dispatchMetrics,
			Logger:  d.Logger,
			Now:     d.Now,
		},
		Social:   social.UseCase{Actions: d.Social, Mutes: d.Mutes, Names: d.World},
		Settings: d.Settings,
		Logger:   d.Logger,
		Now:      d.Now,
	}
}
