package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"nearbyradar/internal/app/ports"
	"nearbyradar/internal/domain/estate"
	"nearbyradar/internal/domain/radar"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/google/uuid"
)

var (
	ErrInvalidRequest = errors.New("invalid dispatch request")
	ErrUnknownPrompt  = errors.New("unknown or expired prompt")
	ErrPromptPending  = errors.New("identical prompt already pending")
)

const DefaultPromptTTL = 2 * time.Minute

// Pending is an open confirmation prompt. The target is bound when the
// prompt opens, not when it is answered.
type Pending struct {
	Token    uuid.UUID      `json:"token"`
	Prompt   estate.Prompt  `json:"prompt"`
	Target   radar.EntityID `json:"target"`
	OpenedAt time.Time      `json:"opened_at"`
}

type Result struct {
	Token    uuid.UUID         `json:"token"`
	Action   estate.ActionKind `json:"action"`
	Outcome  estate.Outcome    `json:"outcome"`
	Host     string            `json:"host,omitempty"`
	Requests []estate.Request  `json:"requests"`
	// Skipped is set when the target or region could not be resolved and
	// nothing was sent.
	Skipped bool `json:"skipped"`
}

type promptKey struct {
	action estate.ActionKind
	target radar.EntityID
}

// Dispatcher owns the Idle -> ConfirmationPending -> Idle cycle of privileged
// actions and hands the resulting requests to the transport.
type Dispatcher struct {
	Session ports.AgentSession
	Objects ports.ObjectTracker
	Names   ports.NameResolver
	Sender  ports.RequestSender
	Log     ports.DispatchLogRepository
	Tx      ports.TxManager
	Metrics ports.DispatchMetrics
	Logger  hlog.FullLogger
	Now     func() time.Time
	TTL     time.Duration

	mu      sync.Mutex
	pending map[uuid.UUID]Pending
	byKey   map[promptKey]uuid.UUID
}

// Begin opens a confirmation prompt. An identical prompt that is still open is
// returned together with ErrPromptPending.
func (d *Dispatcher) Begin(ctx context.Context, action estate.ActionKind, target radar.EntityID) (Pending, error) {
	if target == radar.NilEntity {
		return Pending{}, ErrInvalidRequest
	}
	if _, err := estate.ParseAction(string(action)); err != nil {
		return Pending{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.sweepLocked()

	key := promptKey{action: action, target: target}
	if token, ok := d.byKey[key]; ok {
		return d.pending[token], ErrPromptPending
	}

	name := ""
	if d.Names != nil {
		name, _ = d.Names.ResolveName(ctx, target)
	}
	p := Pending{
		Token:    uuid.New(),
		Prompt:   estate.PromptFor(action, name),
		Target:   target,
		OpenedAt: d.now(),
	}
	d.pending[p.Token] = p
	d.byKey[key] = p.Token
	if d.Metrics != nil {
		d.Metrics.RecordPromptOpened(action)
	}
	return p, nil
}

// Resolve consumes a prompt and sends the requests its outcome maps to.
func (d *Dispatcher) Resolve(ctx context.Context, token uuid.UUID, outcome estate.Outcome) (Result, error) {
	p, err := d.take(token)
	if err != nil {
		d.logger().CtxWarnf(ctx, "dispatch: resolve %s: %v", token, err)
		return Result{}, err
	}
	if d.Metrics != nil {
		d.Metrics.RecordPromptResolved(outcome)
	}
	res := Result{Token: token, Action: p.Prompt.Action, Outcome: outcome}
	if outcome == estate.OutcomeDismiss {
		return res, nil
	}

	agent, err := d.Session.Agent(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("load agent: %w", err)
	}
	host, ok := d.destination(ctx, agent, p)
	if !ok {
		d.logger().CtxWarnf(ctx, "dispatch: %s on %s skipped, target region unresolved", p.Prompt.Action, p.Target)
		res.Skipped = true
		return res, nil
	}

	creds := estate.Credentials{AgentID: agent.ID, SessionID: agent.SessionID}
	res.Host = host
	res.Requests = estate.Plan(p.Prompt.Action, outcome, creds, p.Target)
	sendAll := func(ctx context.Context) error {
		for _, req := range res.Requests {
			d.send(ctx, host, req)
		}
		return nil
	}
	if d.Tx == nil {
		_ = sendAll(ctx)
		return res, nil
	}
	if err := d.Tx.RunInTx(ctx, sendAll); err != nil {
		d.logger().CtxWarnf(ctx, "dispatch: commit log for %s: %v", token, err)
	}
	return res, nil
}

// Open lists prompts still awaiting an answer, oldest first.
func (d *Dispatcher) Open() []Pending {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sweepLocked()
	out := make([]Pending, 0, len(d.pending))
	for _, p := range d.pending {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OpenedAt.Before(out[j].OpenedAt) })
	return out
}

func (d *Dispatcher) take(token uuid.UUID) (Pending, error) {
	if token == uuid.Nil {
		return Pending{}, ErrInvalidRequest
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sweepLocked()
	p, ok := d.pending[token]
	if !ok {
		return Pending{}, ErrUnknownPrompt
	}
	delete(d.pending, token)
	delete(d.byKey, promptKey{action: p.Prompt.Action, target: p.Target})
	return p, nil
}

func (d *Dispatcher) destination(ctx context.Context, agent ports.AgentInfo, p Pending) (string, bool) {
	if d.Objects == nil {
		return "", false
	}
	obj, ok := d.Objects.TrackedObject(ctx, p.Target)
	if !ok || !obj.IsAvatar || !obj.HasRegion() {
		return "", false
	}
	if p.Prompt.Action.Destination() == estate.DestinationAgentRegion {
		if !agent.Region.Valid() {
			return "", false
		}
		return agent.Region.Host, true
	}
	return obj.Region.Host, true
}

func (d *Dispatcher) send(ctx context.Context, host string, req estate.Request) {
	op := req.Operation()
	d.Sender.Send(ctx, host, req)
	d.logger().CtxInfof(ctx, "dispatch: sent %s target=%s host=%s invoice=%s", op, req.TargetID, host, req.Invoice)
	if d.Metrics != nil {
		d.Metrics.RecordDispatched(op)
	}
	if d.Log == nil {
		return
	}
	rec := ports.DispatchRecord{
		Invoice:   req.Invoice,
		Operation: op,
		Method:    req.Method,
		AgentID:   req.AgentID,
		TargetID:  req.TargetID,
		Host:      host,
		Flags:     req.Flags,
		Params:    req.Params,
		SentAt:    d.now(),
	}
	if err := d.Log.Append(ctx, rec); err != nil {
		d.logger().CtxWarnf(ctx, "dispatch: log %s: %v", req.Invoice, err)
	}
}

func (d *Dispatcher) sweepLocked() {
	if d.pending == nil {
		d.pending = map[uuid.UUID]Pending{}
		d.byKey = map[promptKey]uuid.UUID{}
		return
	}
	ttl := d.TTL
	if ttl <= 0 {
		ttl = DefaultPromptTTL
	}
	cutoff := d.now().Add(-ttl)
	for token, p := range d.pending {
		if p.OpenedAt.Before(cutoff) {
			delete(d.pending, token)
			delete(d.byKey, promptKey{action: p.Prompt.Action, target: p.Target})
		}
	}
}

func (d *Dispatcher) logger() hlog.FullLogger {
	if d.Logger != nil {
		return d.Logger
	}
	return hlog.DefaultLogger()
}

func (d *Dispatcher) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}
