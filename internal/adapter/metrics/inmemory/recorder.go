package inmemory

import (
	"sync"

	"nearbyradar/internal/domain/estate"
	"nearbyradar/internal/domain/radar"
)

type Snapshot struct {
	PollTotal        uint64            `json:"poll_total"`
	PollFailure      uint64            `json:"poll_failure"`
	LastRowCount     int               `json:"last_row_count"`
	LastTotalCount   int               `json:"last_total_count"`
	EnterByRange     map[string]uint64 `json:"enter_by_range"`
	PromptOpened     map[string]uint64 `json:"prompt_opened"`
	PromptResolved   map[string]uint64 `json:"prompt_resolved"`
	DispatchedByOp   map[string]uint64 `json:"dispatched_by_operation"`
	DeliveryFailures map[string]uint64 `json:"delivery_failures"`
}

type Recorder struct {
	mu          sync.Mutex
	polls       uint64
	pollFailure uint64
	lastRows    int
	lastTotal   int
	enter       map[string]uint64
	opened      map[string]uint64
	resolved    map[string]uint64
	dispatched  map[string]uint64
	delivery    map[string]uint64
}

func NewRecorder() *Recorder {
	return &Recorder{
		enter:      map[string]uint64{},
		opened:     map[string]uint64{},
		resolved:   map[string]uint64{},
		dispatched: map[string]uint64{},
		delivery:   map[string]uint64{},
	}
}

func (r *Recorder) RecordPoll(rows, total int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.polls++
	r.lastRows = rows
	r.lastTotal = total
}

func (r *Recorder) RecordPollFailure() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pollFailure++
}

func (r *Recorder) RecordEnter(kind radar.RangeKind) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.enter[string(kind)]++
}

func (r *Recorder) RecordPromptOpened(action estate.ActionKind) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.opened[string(action)]++
}

func (r *Recorder) RecordPromptResolved(outcome estate.Outcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resolved[string(outcome)]++
}

func (r *Recorder) RecordDispatched(operation string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dispatched[operation]++
}

func (r *Recorder) RecordDeliveryFailure(host string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.delivery[host]++
}

func (r *Recorder) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	return Snapshot{
		PollTotal:        r.polls,
		PollFailure:      r.pollFailure,
		LastRowCount:     r.lastRows,
		LastTotalCount:   r.lastTotal,
		EnterByRange:     copyCounts(r.enter),
		PromptOpened:     copyCounts(r.opened),
		PromptResolved:   copyCounts(r.resolved),
		DispatchedByOp:   copyCounts(r.dispatched),
		DeliveryFailures: copyCounts(r.delivery),
	}
}

func (r *Recorder) SnapshotAny() any {
	return r.Snapshot()
}

func copyCounts(in map[string]uint64) map[string]uint64 {
	out := make(map[string]uint64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
