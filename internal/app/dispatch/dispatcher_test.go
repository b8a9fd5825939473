package dispatch

import (
	"context"
	"errors"
	"testing"
	"time"

	"nearbyradar/internal/app/ports"
	"nearbyradar/internal/domain/estate"
	"nearbyradar/internal/domain/radar"

	"github.com/google/uuid"
)

type sent struct {
	host string
	req  estate.Request
}

type recordingSender struct {
	sent []sent
}

func (s *recordingSender) Send(_ context.Context, host string, req estate.Request) {
	s.sent = append(s.sent, sent{host: host, req: req})
}

type stubSession struct{ agent ports.AgentInfo }

func (s stubSession) Agent(context.Context) (ports.AgentInfo, error) { return s.agent, nil }

type stubObjects map[radar.EntityID]radar.TrackedObject

func (o stubObjects) TrackedObject(_ context.Context, id radar.EntityID) (radar.TrackedObject, bool) {
	obj, ok := o[id]
	return obj, ok
}

type stubNames map[radar.EntityID]string

func (n stubNames) ResolveName(_ context.Context, id radar.EntityID) (string, bool) {
	name, ok := n[id]
	return name, ok
}

type memoryLog struct {
	records []ports.DispatchRecord
}

func (l *memoryLog) Append(_ context.Context, rec ports.DispatchRecord) error {
	l.records = append(l.records, rec)
	return nil
}

func (l *memoryLog) ListByTarget(context.Context, radar.EntityID, int) ([]ports.DispatchRecord, error) {
	return l.records, nil
}

type fixture struct {
	d      *Dispatcher
	agent  ports.AgentInfo
	target radar.EntityID
	sender *recordingSender
	log    *memoryLog
	now    time.Time
}

func newFixture() *fixture {
	f := &fixture{
		agent: ports.AgentInfo{
			ID:        uuid.New(),
			SessionID: uuid.New(),
			Region:    radar.RegionRef{ID: uuid.New(), Name: "Home", Host: "agent-sim:13000"},
		},
		target: uuid.New(),
		sender: &recordingSender{},
		log:    &memoryLog{},
		now:    time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	targetRegion := radar.RegionRef{ID: uuid.New(), Name: "Next Door", Host: "target-sim:13001"}
	f.d = &Dispatcher{
		Session: stubSession{agent: f.agent},
		Objects: stubObjects{f.target: {ID: f.target, IsAvatar: true, Region: targetRegion}},
		Names:   stubNames{f.target: "Trouble Maker"},
		Sender:  f.sender,
		Log:     f.log,
		Now:     func() time.Time { return f.now },
	}
	return f
}

func (f *fixture) run(t *testing.T, action estate.ActionKind, outcome estate.Outcome) Result {
	t.Helper()
	p, err := f.d.Begin(context.Background(), action, f.target)
	if err != nil {
		t.Fatalf("Begin error: %v", err)
	}
	res, err := f.d.Resolve(context.Background(), p.Token, outcome)
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	return res
}

func TestDispatcher_EstateBanSendsKickThenBan(t *testing.T) {
	f := newFixture()
	f.run(t, estate.ActionEstateEject, estate.OutcomePrimary)
	if len(f.sender.sent) != 1 || f.sender.sent[0].req.Method != estate.MethodTeleportHomeUser {
		t.Fatalf("expected exactly one kick, got %+v", f.sender.sent)
	}

	f.sender.sent = nil
	f.run(t, estate.ActionEstateEject, estate.OutcomeAlternate)
	if len(f.sender.sent) != 2 {
		t.Fatalf("expected two requests, got %d", len(f.sender.sent))
	}
	if f.sender.sent[0].req.Method != estate.MethodTeleportHomeUser || f.sender.sent[1].req.Method != estate.MethodEstateAccessDelta {
		t.Fatalf("expected kick then ban, got %s then %s", f.sender.sent[0].req.Method, f.sender.sent[1].req.Method)
	}
	for _, s := range f.sender.sent {
		if s.host != "agent-sim:13000" {
			t.Fatalf("expected estate messages to the agent's region, got %s", s.host)
		}
	}
}

func TestDispatcher_FreezeAndEjectGoToTargetRegion(t *testing.T) {
	f := newFixture()
	res := f.run(t, estate.ActionFreeze, estate.OutcomeAlternate)
	if res.Host != "target-sim:13001" {
		t.Fatalf("expected target region host, got %s", res.Host)
	}
	req := f.sender.sent[0].req
	if req.Type != estate.TypeFreezeUser || req.Flags != estate.FreezeFlagUnfreeze {
		t.Fatalf("expected unfreeze, got %+v", req)
	}
	if req.AgentID != f.agent.ID || req.SessionID != f.agent.SessionID {
		t.Fatalf("expected agent credentials on request")
	}

	f.run(t, estate.ActionEject, estate.OutcomeAlternate)
	if got := f.sender.sent[1].req; got.Type != estate.TypeEjectUser || got.Flags != estate.EjectFlagBan {
		t.Fatalf("expected eject with ban, got %+v", got)
	}
	if len(f.log.records) != 2 || f.log.records[1].Operation != "eject_ban" {
		t.Fatalf("expected dispatch log entries, got %+v", f.log.records)
	}
}

func TestDispatcher_DismissSendsNothing(t *testing.T) {
	f := newFixture()
	res := f.run(t, estate.ActionEject, estate.OutcomeDismiss)
	if len(f.sender.sent) != 0 || len(res.Requests) != 0 {
		t.Fatalf("expected nothing sent on dismiss")
	}
	if len(f.d.Open()) != 0 {
		t.Fatalf("expected prompt consumed")
	}
}

func TestDispatcher_UnresolvedTargetIsNoop(t *testing.T) {
	f := newFixture()
	f.d.Objects = stubObjects{}
	res := f.run(t, estate.ActionFreeze, estate.OutcomePrimary)
	if !res.Skipped || len(f.sender.sent) != 0 {
		t.Fatalf("expected skipped dispatch, got %+v", res)
	}
}

func TestDispatcher_DeduplicatesIdenticalPrompts(t *testing.T) {
	f := newFixture()
	first, err := f.d.Begin(context.Background(), estate.ActionFreeze, f.target)
	if err != nil {
		t.Fatalf("Begin error: %v", err)
	}
	if first.Prompt.TargetName != "Trouble Maker" || first.Prompt.Alternate != "Unfreeze" {
		t.Fatalf("unexpected prompt %+v", first.Prompt)
	}
	second, err := f.d.Begin(context.Background(), estate.ActionFreeze, f.target)
	if !errors.Is(err, ErrPromptPending) || second.Token != first.Token {
		t.Fatalf("expected pending prompt returned, got %v %v", second.Token, err)
	}
	if _, err := f.d.Begin(context.Background(), estate.ActionEject, f.target); err != nil {
		t.Fatalf("expected different action to open its own prompt, got %v", err)
	}
	if len(f.d.Open()) != 2 {
		t.Fatalf("expected two open prompts, got %d", len(f.d.Open()))
	}
}

func TestDispatcher_TokenIsSingleUseAndExpires(t *testing.T) {
	f := newFixture()
	p, _ := f.d.Begin(context.Background(), estate.ActionFreeze, f.target)
	if _, err := f.d.Resolve(context.Background(), p.Token, estate.OutcomePrimary); err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if _, err := f.d.Resolve(context.Background(), p.Token, estate.OutcomePrimary); !errors.Is(err, ErrUnknownPrompt) {
		t.Fatalf("expected ErrUnknownPrompt on reuse, got %v", err)
	}

	p, _ = f.d.Begin(context.Background(), estate.ActionFreeze, f.target)
	f.now = f.now.Add(DefaultPromptTTL + time.Second)
	if _, err := f.d.Resolve(context.Background(), p.Token, estate.OutcomePrimary); !errors.Is(err, ErrUnknownPrompt) {
		t.Fatalf("expected expired prompt rejected, got %v", err)
	}
	if len(f.sender.sent) != 1 {
		t.Fatalf("expected only the first resolve to send, got %d", len(f.sender.sent))
	}
}

func TestDispatcher_RejectsInvalidBegin(t *testing.T) {
	f := newFixture()
	if _, err := f.d.Begin(context.Background(), estate.ActionFreeze, radar.NilEntity); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest for nil target, got %v", err)
	}
	if _, err := f.d.Begin(context.Background(), estate.ActionKind("teleport"), f.target); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest for unknown action, got %v", err)
	}
}

type countingTx struct{ runs int }

func (t *countingTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	t.runs++
	return fn(ctx)
}

func TestDispatcher_LogsOneResolutionPerTransaction(t *testing.T) {
	f := newFixture()
	tx := &countingTx{}
	f.d.Tx = tx
	f.run(t, estate.ActionEstateEject, estate.OutcomeAlternate)
	if tx.runs != 1 {
		t.Fatalf("expected one transaction, got %d", tx.runs)
	}
	if len(f.log.records) != 2 || f.log.records[0].Operation != "estate_kick" || f.log.records[1].Operation != "estate_ban" {
		t.Fatalf("unexpected log %+v", f.log.records)
	}
}
