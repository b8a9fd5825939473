package ports

import (
	"context"
	"time"

	"nearbyradar/internal/domain/estate"
	"nearbyradar/internal/domain/radar"
)

type Notifier interface {
	NotifyEnter(ctx context.Context, ev radar.EnterEvent)
}

// RequestSender hands a request to the reliable transport for host. It does
// not block on delivery and never reports delivery failures.
type RequestSender interface {
	Send(ctx context.Context, host string, req estate.Request)
}

type SocialActions interface {
	StartIM(ctx context.Context, id radar.EntityID, name string) error
	ShowProfile(ctx context.Context, id radar.EntityID) error
	OfferTeleport(ctx context.Context, id radar.EntityID) error
	InviteToGroup(ctx context.Context, id radar.EntityID) error
	RequestFriendship(ctx context.Context, id radar.EntityID, name string) error
	ReportAbuse(ctx context.Context, id radar.EntityID) error
	IsTrackingAvatar(ctx context.Context) bool
	TrackAvatar(ctx context.Context, id radar.EntityID, name string) error
	StopTracking(ctx context.Context) error
}

type SightingRecord struct {
	EntityID radar.EntityID  `json:"entity_id"`
	Name     string          `json:"name"`
	Kind     radar.RangeKind `json:"kind"`
	Distance string          `json:"distance"`
	SeenAt   time.Time       `json:"seen_at"`
}

type SightingRepository interface {
	Append(ctx context.Context, rec SightingRecord) error
	ListRecent(ctx context.Context, limit int) ([]SightingRecord, error)
}

type DispatchRecord struct {
	Invoice   radar.EntityID `json:"invoice"`
	Operation string         `json:"operation"`
	Method    string         `json:"method,omitempty"`
	AgentID   radar.EntityID `json:"agent_id"`
	TargetID  radar.EntityID `json:"target_id"`
	Host      string         `json:"host"`
	Flags     uint32         `json:"flags"`
	Params    []string       `json:"params,omitempty"`
	SentAt    time.Time      `json:"sent_at"`
}

type DispatchLogRepository interface {
	Append(ctx context.Context, rec DispatchRecord) error
	ListByTarget(ctx context.Context, target radar.EntityID, limit int) ([]DispatchRecord, error)
}

// TxManager groups the sends and dispatch log writes of one prompt
// resolution.
type TxManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}
