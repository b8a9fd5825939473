package social

import (
	"context"
	"errors"
	"testing"

	"nearbyradar/internal/domain/radar"

	"github.com/google/uuid"
)

type call struct {
	op   string
	id   radar.EntityID
	name string
}

type recordingActions struct {
	calls    []call
	tracking bool
}

func (a *recordingActions) record(op string, id radar.EntityID, name string) error {
	a.calls = append(a.calls, call{op: op, id: id, name: name})
	return nil
}

func (a *recordingActions) StartIM(_ context.Context, id radar.EntityID, name string) error {
	return a.record("im", id, name)
}

func (a *recordingActions) ShowProfile(_ context.Context, id radar.EntityID) error {
	return a.record("profile", id, "")
}

func (a *recordingActions) OfferTeleport(_ context.Context, id radar.EntityID) error {
	return a.record("teleport", id, "")
}

func (a *recordingActions) InviteToGroup(_ context.Context, id radar.EntityID) error {
	return a.record("invite", id, "")
}

func (a *recordingActions) RequestFriendship(_ context.Context, id radar.EntityID, name string) error {
	return a.record("friend", id, name)
}

func (a *recordingActions) ReportAbuse(_ context.Context, id radar.EntityID) error {
	return a.record("report", id, "")
}

func (a *recordingActions) IsTrackingAvatar(context.Context) bool { return a.tracking }

func (a *recordingActions) TrackAvatar(_ context.Context, id radar.EntityID, name string) error {
	a.tracking = true
	return a.record("track", id, name)
}

func (a *recordingActions) StopTracking(context.Context) error {
	a.tracking = false
	return a.record("stop", radar.NilEntity, "")
}

type memMutes struct {
	muted map[radar.EntityID]string
	adds  int
	rems  int
}

func (m *memMutes) IsMuted(_ context.Context, id radar.EntityID) (bool, error) {
	_, ok := m.muted[id]
	return ok, nil
}

func (m *memMutes) Add(_ context.Context, id radar.EntityID, name string) error {
	m.adds++
	m.muted[id] = name
	return nil
}

func (m *memMutes) Remove(_ context.Context, id radar.EntityID, _ string) error {
	m.rems++
	delete(m.muted, id)
	return nil
}

type names map[radar.EntityID]string

func (n names) ResolveName(_ context.Context, id radar.EntityID) (string, bool) {
	v, ok := n[id]
	return v, ok
}

func TestForwarding_PassesIDAndName(t *testing.T) {
	id := uuid.New()
	actions := &recordingActions{}
	uc := UseCase{Actions: actions, Names: names{id: "Pat Doe"}}
	ctx := context.Background()

	steps := []func() error{
		func() error { return uc.StartIM(ctx, id) },
		func() error { return uc.ShowProfile(ctx, id) },
		func() error { return uc.OfferTeleport(ctx, id) },
		func() error { return uc.InviteToGroup(ctx, id) },
		func() error { return uc.RequestFriendship(ctx, id) },
		func() error { return uc.ReportAbuse(ctx, id) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			t.Fatalf("forward error: %v", err)
		}
	}
	if len(actions.calls) != 6 {
		t.Fatalf("expected 6 forwarded calls, got %d", len(actions.calls))
	}
	if actions.calls[0].name != "Pat Doe" || actions.calls[4].name != "Pat Doe" {
		t.Fatalf("expected IM and friendship to carry the name, got %+v", actions.calls)
	}
	for _, c := range actions.calls {
		if c.id != id {
			t.Fatalf("expected selected id forwarded, got %s", c.id)
		}
	}
}

func TestForwarding_RequiresSelection(t *testing.T) {
	uc := UseCase{Actions: &recordingActions{}}
	if err := uc.StartIM(context.Background(), radar.NilEntity); !errors.Is(err, ErrNoSelection) {
		t.Fatalf("expected ErrNoSelection, got %v", err)
	}
}

func TestToggleTrack(t *testing.T) {
	id := uuid.New()
	actions := &recordingActions{}
	uc := UseCase{Actions: actions, Names: names{id: "Pat Doe"}}

	on, err := uc.ToggleTrack(context.Background(), id)
	if err != nil || !on {
		t.Fatalf("expected tracking started, got %v %v", on, err)
	}
	on, err = uc.ToggleTrack(context.Background(), radar.NilEntity)
	if err != nil || on {
		t.Fatalf("expected tracking stopped even without selection, got %v %v", on, err)
	}
	if actions.calls[1].op != "stop" {
		t.Fatalf("expected stop call, got %+v", actions.calls)
	}
}

func TestMuteUnmute_NoopBranches(t *testing.T) {
	id := uuid.New()
	mutes := &memMutes{muted: map[radar.EntityID]string{}}
	uc := UseCase{Mutes: mutes, Names: names{id: "Loud Person"}}
	ctx := context.Background()

	if changed, err := uc.Unmute(ctx, id); err != nil || changed {
		t.Fatalf("expected unmute of unmuted entity to be a no-op")
	}
	if changed, err := uc.Mute(ctx, id); err != nil || !changed {
		t.Fatalf("expected mute to add, got %v %v", changed, err)
	}
	if changed, _ := uc.Mute(ctx, id); changed {
		t.Fatalf("expected second mute to be a no-op")
	}
	if mutes.adds != 1 || mutes.muted[id] != "Loud Person" {
		t.Fatalf("expected one add with name, got %d %q", mutes.adds, mutes.muted[id])
	}
	if changed, _ := uc.Unmute(ctx, id); !changed || mutes.rems != 1 {
		t.Fatalf("expected unmute to remove")
	}
}
