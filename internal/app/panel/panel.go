package panel

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"nearbyradar/internal/app/dispatch"
	"nearbyradar/internal/app/permission"
	"nearbyradar/internal/app/ports"
	"nearbyradar/internal/app/scan"
	"nearbyradar/internal/app/social"
	"nearbyradar/internal/domain/estate"
	"nearbyradar/internal/domain/radar"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/google/uuid"
)

var (
	ErrNoSelection   = errors.New("no entity selected")
	ErrNotPermitted  = errors.New("action not permitted for selection")
	ErrUnknownAction = errors.New("unknown panel action")
)

type SocialOp string

const (
	OpIM       SocialOp = "im"
	OpProfile  SocialOp = "profile"
	OpTeleport SocialOp = "teleport"
	OpInvite   SocialOp = "invite"
	OpFriend   SocialOp = "friend"
	OpReport   SocialOp = "report"
)

// View is what the list shows after the latest poll.
type View struct {
	Snapshot    radar.Snapshot        `json:"snapshot"`
	Selected    radar.EntityID        `json:"selected"`
	HasRow      bool                  `json:"has_row"`
	Focus       bool                  `json:"focus"`
	Permissions radar.PermissionState `json:"permissions"`
	PolledAt    time.Time             `json:"polled_at"`
}

// Panel is the single logical thread of the radar. Polls, selection changes,
// permission evaluation and user actions are serialised on one mutex.
type Panel struct {
	Scan     scan.UseCase
	Gate     permission.UseCase
	Dispatch *dispatch.Dispatcher
	Social   social.UseCase
	Settings ports.SettingsSource
	Logger   hlog.FullLogger
	Now      func() time.Time

	mu       sync.Mutex
	last     radar.Snapshot
	polledAt time.Time
	selected radar.EntityID
	focus    bool
}

// Tick runs one poll. On failure the previous snapshot stays authoritative.
func (p *Panel) Tick(ctx context.Context) (radar.Snapshot, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	snap, err := p.Scan.Poll(ctx)
	if err != nil {
		return p.last, err
	}
	p.last = snap
	p.polledAt = p.now()
	return snap, nil
}

func (p *Panel) View(ctx context.Context) (View, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	perms, err := p.evaluateLocked(ctx)
	if err != nil {
		return View{}, err
	}
	return View{
		Snapshot:    p.last,
		Selected:    p.selected,
		HasRow:      p.hasRowLocked(),
		Focus:       p.focus,
		Permissions: perms,
		PolledAt:    p.polledAt,
	}, nil
}

// Select changes the selection; the nil id clears it.
func (p *Panel) Select(ctx context.Context, id radar.EntityID) (radar.PermissionState, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.selected = id
	return p.evaluateLocked(ctx)
}

// SetFocus toggles UI focus. Losing focus deselects.
func (p *Panel) SetFocus(ctx context.Context, focus bool) (radar.PermissionState, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.focus = focus
	if !focus {
		p.selected = radar.NilEntity
	}
	return p.evaluateLocked(ctx)
}

func (p *Panel) Permissions(ctx context.Context) (radar.PermissionState, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.evaluateLocked(ctx)
}

func (p *Panel) AddTyping(id radar.EntityID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Scan.State.Typing.Add(id)
}

func (p *Panel) RemoveTyping(id radar.EntityID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Scan.State.Typing.Remove(id)
}

// Search looks up names among the entities currently listed.
func (p *Panel) Search(query string, limit int) ([]scan.Match, error) {
	p.mu.Lock()
	listed := make([]radar.AgentSnapshot, 0, len(p.last.Rows))
	for _, e := range p.last.Entities {
		if p.last.Contains(e.ID) {
			listed = append(listed, e)
		}
	}
	p.mu.Unlock()
	return scan.Search(listed, query, limit)
}

// BeginAction opens a confirmation prompt for a privileged action on the
// selection after checking it is currently allowed.
func (p *Panel) BeginAction(ctx context.Context, action estate.ActionKind) (dispatch.Pending, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	perms, err := p.evaluateLocked(ctx)
	if err != nil {
		return dispatch.Pending{}, err
	}
	if p.selected == radar.NilEntity {
		return dispatch.Pending{}, ErrNoSelection
	}
	if !perms.CanEstateAct {
		return dispatch.Pending{}, ErrNotPermitted
	}
	return p.Dispatch.Begin(ctx, action, p.selected)
}

func (p *Panel) ResolvePrompt(ctx context.Context, token uuid.UUID, outcome estate.Outcome) (dispatch.Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.Dispatch.Resolve(ctx, token, outcome)
}

func (p *Panel) OpenPrompts() []dispatch.Pending {
	return p.Dispatch.Open()
}

func (p *Panel) Forward(ctx context.Context, op SocialOp) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	perms, err := p.requireSelectionLocked(ctx)
	if err != nil {
		return err
	}
	id := p.selected
	switch op {
	case OpIM:
		return allow(perms.CanMessage, func() error { return p.Social.StartIM(ctx, id) })
	case OpProfile:
		return allow(perms.CanProfile, func() error { return p.Social.ShowProfile(ctx, id) })
	case OpTeleport:
		return allow(perms.CanOfferTeleport, func() error { return p.Social.OfferTeleport(ctx, id) })
	case OpInvite:
		return allow(perms.CanInvite, func() error { return p.Social.InviteToGroup(ctx, id) })
	case OpFriend:
		return allow(perms.CanFriend, func() error { return p.Social.RequestFriendship(ctx, id) })
	case OpReport:
		return allow(perms.CanReport, func() error { return p.Social.ReportAbuse(ctx, id) })
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, op)
	}
}

func (p *Panel) Mute(ctx context.Context) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	perms, err := p.requireSelectionLocked(ctx)
	if err != nil {
		return false, err
	}
	if !perms.CanMute {
		return false, ErrNotPermitted
	}
	return p.Social.Mute(ctx, p.selected)
}

func (p *Panel) Unmute(ctx context.Context) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	perms, err := p.requireSelectionLocked(ctx)
	if err != nil {
		return false, err
	}
	if !perms.CanUnmute {
		return false, ErrNotPermitted
	}
	return p.Social.Unmute(ctx, p.selected)
}

func (p *Panel) ToggleTrack(ctx context.Context) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	perms, err := p.evaluateLocked(ctx)
	if err != nil {
		return false, err
	}
	if !perms.CanTrack {
		return false, ErrNotPermitted
	}
	return p.Social.ToggleTrack(ctx, p.selected)
}

// Run polls on the configured refresh interval until ctx is done. A changed
// interval takes effect after the next tick.
func (p *Panel) Run(ctx context.Context) {
	interval := p.interval()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	p.logger().Infof("panel: polling every %v", interval)
	for {
		select {
		case <-ctx.Done():
			p.logger().Infof("panel: stopped")
			return
		case <-ticker.C:
			if _, err := p.Tick(ctx); err != nil {
				p.logger().CtxWarnf(ctx, "panel: poll failed: %v", err)
			}
			if next := p.interval(); next != interval {
				interval = next
				ticker.Reset(interval)
				p.logger().Infof("panel: refresh interval now %v", interval)
			}
		}
	}
}

func (p *Panel) requireSelectionLocked(ctx context.Context) (radar.PermissionState, error) {
	if p.selected == radar.NilEntity {
		return radar.PermissionState{}, ErrNoSelection
	}
	return p.evaluateLocked(ctx)
}

func (p *Panel) evaluateLocked(ctx context.Context) (radar.PermissionState, error) {
	return p.Gate.Evaluate(ctx, permission.Request{
		Selected: p.selected,
		HasFocus: p.focus,
		HasRow:   p.hasRowLocked(),
	})
}

// hasRowLocked reports whether the selection survived the last rebuild.
func (p *Panel) hasRowLocked() bool {
	return p.selected != radar.NilEntity && p.last.Contains(p.selected)
}

func allow(ok bool, fn func() error) error {
	if !ok {
		return ErrNotPermitted
	}
	return fn()
}

func (p *Panel) interval() time.Duration {
	d := radar.DefaultSettings().RefreshInterval
	if p.Settings != nil {
		if v := p.Settings.Settings().RefreshInterval; v > 0 {
			d = v
		}
	}
	return d
}

func (p *Panel) logger() hlog.FullLogger {
	if p.Logger != nil {
		return p.Logger
	}
	return hlog.DefaultLogger()
}

func (p *Panel) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}
