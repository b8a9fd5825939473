package scan

import (
	"context"
	"errors"

	"nearbyradar/internal/app/ports"
	"nearbyradar/internal/domain/radar"
)

type fakeSession struct {
	agent ports.AgentInfo
	err   error
}

func (s fakeSession) Agent(context.Context) (ports.AgentInfo, error) {
	return s.agent, s.err
}

type fakeFeed struct {
	sightings []radar.Sighting
	err       error
}

func (f *fakeFeed) NearbyEntities(context.Context) ([]radar.Sighting, error) {
	return f.sightings, f.err
}

type fakeObjects map[radar.EntityID]radar.TrackedObject

func (o fakeObjects) TrackedObject(_ context.Context, id radar.EntityID) (radar.TrackedObject, bool) {
	obj, ok := o[id]
	return obj, ok
}

type fakeNames map[radar.EntityID]string

func (n fakeNames) ResolveName(_ context.Context, id radar.EntityID) (string, bool) {
	name, ok := n[id]
	return name, ok
}

type fakeMutes struct {
	muted map[radar.EntityID]bool
	err   error
}

func (m fakeMutes) IsMuted(_ context.Context, id radar.EntityID) (bool, error) {
	return m.muted[id], m.err
}

func (m fakeMutes) Add(context.Context, radar.EntityID, string) error { return nil }
func (m fakeMutes) Remove(context.Context, radar.EntityID, string) error { return nil }

type fakePrivacy struct {
	enabled bool
	hide    bool
}

func (p fakePrivacy) Enabled() bool { return p.enabled }
func (p fakePrivacy) HideNames() bool { return p.hide }
func (p fakePrivacy) RestrictTeleport() bool { return false }
func (p fakePrivacy) RestrictLocation() bool { return false }
func (p fakePrivacy) IsTeleportException(radar.EntityID) bool { return false }
func (p fakePrivacy) Anonymize(string) string { return "A resident" }

type fixedSettings struct{ s radar.Settings }

func (f *fixedSettings) Settings() radar.Settings { return f.s }

type recordingNotifier struct {
	events []radar.EnterEvent
}

func (n *recordingNotifier) NotifyEnter(_ context.Context, ev radar.EnterEvent) {
	n.events = append(n.events, ev)
}

type recordingSightings struct {
	records []ports.SightingRecord
	err     error
}

func (r *recordingSightings) Append(_ context.Context, rec ports.SightingRecord) error {
	if r.err != nil {
		return r.err
	}
	r.records = append(r.records, rec)
	return nil
}

func (r *recordingSightings) ListRecent(context.Context, int) ([]ports.SightingRecord, error) {
	return r.records, nil
}

var errFeedDown = errors.New("feed down")
