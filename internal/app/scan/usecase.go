package scan

import (
	"context"
	"fmt"
	"strings"
	"time"

	"nearbyradar/internal/app/ports"
	"nearbyradar/internal/domain/radar"

	"github.com/cloudwego/hertz/pkg/common/hlog"
)

// State is what survives between polls.
type State struct {
	Chat   *radar.RangeTracker
	Sim    *radar.RangeTracker
	Typing *radar.TypingSet
}

func NewState() *State {
	return &State{
		Chat:   radar.NewRangeTracker(radar.RangeChat),
		Sim:    radar.NewRangeTracker(radar.RangeSim),
		Typing: radar.NewTypingSet(),
	}
}

// UseCase runs one radar poll. Callers must not run two polls on the same
// State concurrently.
type UseCase struct {
	Session   ports.AgentSession
	Feed      ports.WorldFeed
	Objects   ports.ObjectTracker
	Names     ports.NameResolver
	Mutes     ports.MuteRegistry
	Privacy   ports.PrivacyPolicy
	Settings  ports.SettingsSource
	Notifier  ports.Notifier
	Sightings ports.SightingRepository
	Metrics   ports.RadarMetrics
	Logger    hlog.FullLogger
	Now       func() time.Time
	State     *State
}

type entry struct {
	snap    radar.AgentSnapshot
	measure radar.Measurement
}

func (u UseCase) Poll(ctx context.Context) (radar.Snapshot, error) {
	settings := radar.DefaultSettings()
	if u.Settings != nil {
		settings = u.Settings.Settings()
	}

	agent, err := u.Session.Agent(ctx)
	if err != nil {
		u.pollFailed()
		return radar.Snapshot{}, fmt.Errorf("load agent: %w", err)
	}
	sightings, err := u.Feed.NearbyEntities(ctx)
	if err != nil {
		u.pollFailed()
		return radar.Snapshot{}, fmt.Errorf("nearby entities: %w", err)
	}

	chatPolicy, simPolicy := settings.ChatRange, settings.SimRange
	hideNames := u.hideNames()
	if hideNames {
		chatPolicy.Enabled = false
		simPolicy.Enabled = false
	}

	if len(sightings) == 0 {
		u.State.Typing.Clear()
		u.State.Chat.Update(chatPolicy, nil, nil)
		u.State.Sim.Update(simPolicy, nil, nil)
		u.recordPoll(0, 0)
		return radar.Snapshot{Empty: true}, nil
	}

	resolver := PositionResolver{Objects: u.Objects}
	feed := make([]radar.EntityID, 0, len(sightings))
	entries := make([]entry, 0, len(sightings))
	for _, s := range sightings {
		if s.ID == agent.ID || s.ID == radar.NilEntity {
			continue
		}
		feed = append(feed, s.ID)

		name, ok := u.resolveName(ctx, s.ID)
		if !ok {
			continue
		}
		if hideNames {
			name = u.Privacy.Anonymize(name)
		}
		muted, err := u.Mutes.IsMuted(ctx, s.ID)
		if err != nil {
			u.pollFailed()
			return radar.Snapshot{}, fmt.Errorf("mute lookup %s: %w", s.ID, err)
		}
		pos := resolver.Resolve(ctx, s)
		m := radar.Measure(agent.Position, pos)
		entries = append(entries, entry{
			measure: m,
			snap: radar.AgentSnapshot{
				ID:           s.ID,
				Name:         name,
				Position:     pos,
				Distance:     m.Raw,
				DistanceText: m.Text(),
				IsTyping:     u.State.Typing.Has(s.ID),
				IsMuted:      muted,
			},
		})
	}

	entered := u.updateTrackers(ctx, agent, settings, chatPolicy, simPolicy, feed, entries)

	out := radar.Snapshot{TotalCount: len(sightings), Entered: entered}
	for _, e := range entries {
		out.Entities = append(out.Entities, e.snap)
		if e.measure.Within(settings.VisibilityRadius) {
			out.Rows = append(out.Rows, e.snap.Row())
		}
	}
	u.recordPoll(len(out.Rows), out.TotalCount)
	for _, ev := range entered {
		u.announce(ctx, ev)
	}
	return out, nil
}

func (u UseCase) updateTrackers(ctx context.Context, agent ports.AgentInfo, settings radar.Settings, chatPolicy, simPolicy radar.RangePolicy, feed []radar.EntityID, entries []entry) []radar.EnterEvent {
	candidates := make([]radar.RangeCandidate, len(entries))
	for i, e := range entries {
		candidates[i] = radar.RangeCandidate{
			ID:           e.snap.ID,
			Name:         e.snap.Name,
			Distance:     e.snap.Distance,
			DistanceText: e.snap.DistanceText,
			Admissible:   true,
		}
	}
	entered := u.State.Chat.Update(chatPolicy, feed, candidates)

	for i := range candidates {
		id := candidates[i].ID
		candidates[i].Admissible = !u.State.Chat.Contains(id) && u.simAdmissible(ctx, agent, settings, id)
	}
	return append(entered, u.State.Sim.Update(simPolicy, feed, candidates)...)
}

// simAdmissible reports sim co-residency. With a tracked object required,
// co-residents outside render distance are never admitted.
func (u UseCase) simAdmissible(ctx context.Context, agent ports.AgentInfo, settings radar.Settings, id radar.EntityID) bool {
	if !settings.SimRequiresTrackedObject {
		return true
	}
	if u.Objects == nil {
		return false
	}
	obj, ok := u.Objects.TrackedObject(ctx, id)
	if !ok || !obj.IsAvatar || !obj.HasRegion() {
		return false
	}
	return obj.Region.ID == agent.Region.ID
}

func (u UseCase) resolveName(ctx context.Context, id radar.EntityID) (string, bool) {
	name, ok := u.Names.ResolveName(ctx, id)
	if !ok {
		return "", false
	}
	name = strings.TrimSpace(name)
	return name, name != ""
}

func (u UseCase) hideNames() bool {
	return u.Privacy != nil && u.Privacy.Enabled() && u.Privacy.HideNames()
}

func (u UseCase) announce(ctx context.Context, ev radar.EnterEvent) {
	u.logger().CtxDebugf(ctx, "radar: %s", ev.Text())
	if u.Metrics != nil {
		u.Metrics.RecordEnter(ev.Kind)
	}
	if u.Notifier != nil {
		u.Notifier.NotifyEnter(ctx, ev)
	}
	if u.Sightings != nil {
		rec := ports.SightingRecord{
			EntityID: ev.ID,
			Name:     ev.Name,
			Kind:     ev.Kind,
			Distance: ev.DistanceText,
			SeenAt:   u.now(),
		}
		if err := u.Sightings.Append(ctx, rec); err != nil {
			u.logger().CtxWarnf(ctx, "radar: record sighting %s: %v", ev.ID, err)
		}
	}
}

func (u UseCase) recordPoll(rows, total int) {
	if u.Metrics != nil {
		u.Metrics.RecordPoll(rows, total)
	}
}

func (u UseCase) pollFailed() {
	if u.Metrics != nil {
		u.Metrics.RecordPollFailure()
	}
}

func (u UseCase) logger() hlog.FullLogger {
	if u.Logger != nil {
		return u.Logger
	}
	return hlog.DefaultLogger()
}

func (u UseCase) now() time.Time {
	if u.Now != nil {
		return u.Now()
	}
	return time.Now()
}
