package radar

import "time"

type Settings struct {
	RefreshInterval  time.Duration
	VisibilityRadius float32
	ChatRange        RangePolicy
	SimRange         RangePolicy
	// SimRequiresTrackedObject restricts sim-range admission to entities with a
	// rendered object in the agent's region. Sim co-residents outside render
	// distance are not seen when this is set.
	SimRequiresTrackedObject bool
}

func DefaultSettings() Settings {
	return Settings{
		RefreshInterval:          time.Second,
		VisibilityRadius:         4096,
		ChatRange:                RangePolicy{Enabled: true, Radius: 20},
		SimRange:                 RangePolicy{Enabled: true, Radius: 4096},
		SimRequiresTrackedObject: true,
	}
}
