package radar

import "fmt"

type RangeKind string

const (
	RangeChat RangeKind = "chat"
	RangeSim  RangeKind = "sim"
)

type RangePolicy struct {
	Enabled bool
	Radius  float32
}

// RangeCandidate is one named entity offered to a tracker for a poll.
// Admissible carries the tracker-specific eligibility predicate.
type RangeCandidate struct {
	ID           EntityID
	Name         string
	Distance     float32
	DistanceText string
	Admissible   bool
}

type EnterEvent struct {
	Kind         RangeKind
	ID           EntityID
	Name         string
	DistanceText string
}

func (e EnterEvent) Text() string {
	return fmt.Sprintf("%s entering %s range (%sm)", e.Name, e.Kind, e.DistanceText)
}

// RangeTracker holds the entities currently inside one notification range.
// Only the OUTSIDE -> INSIDE edge produces an event; leaving is silent.
type RangeTracker struct {
	Kind    RangeKind
	members map[EntityID]struct{}
}

func NewRangeTracker(kind RangeKind) *RangeTracker {
	return &RangeTracker{Kind: kind, members: make(map[EntityID]struct{})}
}

// Update runs one poll. A disabled policy clears the set without events.
// Members missing from feed are dropped before candidates are evaluated.
func (t *RangeTracker) Update(policy RangePolicy, feed []EntityID, candidates []RangeCandidate) []EnterEvent {
	if !policy.Enabled {
		t.Reset()
		return nil
	}
	t.reconcile(feed)

	var entered []EnterEvent
	for _, c := range candidates {
		inRange := c.Admissible && c.Distance <= policy.Radius
		_, member := t.members[c.ID]
		switch {
		case inRange && !member:
			t.members[c.ID] = struct{}{}
			entered = append(entered, EnterEvent{
				Kind:         t.Kind,
				ID:           c.ID,
				Name:         c.Name,
				DistanceText: c.DistanceText,
			})
		case !inRange && member:
			delete(t.members, c.ID)
		}
	}
	return entered
}

func (t *RangeTracker) reconcile(feed []EntityID) {
	if len(t.members) == 0 {
		return
	}
	present := make(map[EntityID]struct{}, len(feed))
	for _, id := range feed {
		present[id] = struct{}{}
	}
	for id := range t.members {
		if _, ok := present[id]; !ok {
			delete(t.members, id)
		}
	}
}

func (t *RangeTracker) Contains(id EntityID) bool {
	_, ok := t.members[id]
	return ok
}

func (t *RangeTracker) Len() int {
	return len(t.members)
}

func (t *RangeTracker) Reset() {
	if len(t.members) == 0 {
		return
	}
	t.members = make(map[EntityID]struct{})
}
