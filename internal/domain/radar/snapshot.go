package radar

import "strings"

const (
	TypingPrefix = "(typing)"
	MutedSuffix  = "(muted)"
)

// AgentSnapshot is one entity as seen by a single poll.
type AgentSnapshot struct {
	ID           EntityID `json:"id"`
	Name         string   `json:"name"`
	Position     Point3D  `json:"position"`
	Distance     float32  `json:"distance"`
	DistanceText string   `json:"distance_text"`
	IsTyping     bool     `json:"is_typing"`
	IsMuted      bool     `json:"is_muted"`
}

// Label composes the list text: optional typing prefix, name, optional muted suffix.
func (a AgentSnapshot) Label() string {
	var b strings.Builder
	if a.IsTyping {
		b.WriteString(TypingPrefix)
		b.WriteByte(' ')
	}
	b.WriteString(a.Name)
	if a.IsMuted {
		b.WriteByte(' ')
		b.WriteString(MutedSuffix)
	}
	return b.String()
}

func (a AgentSnapshot) Row() Row {
	return Row{
		ID:       a.ID,
		Label:    a.Label(),
		Distance: a.DistanceText + "m",
	}
}

type Row struct {
	ID       EntityID `json:"id"`
	Label    string   `json:"label"`
	Distance string   `json:"distance"`
}

// Snapshot is the result of one poll. TotalCount counts the unfiltered feed.
type Snapshot struct {
	Entities   []AgentSnapshot `json:"entities"`
	Rows       []Row           `json:"rows"`
	TotalCount int             `json:"total_count"`
	Empty      bool            `json:"empty"`
	Entered    []EnterEvent    `json:"-"`
}

func (s Snapshot) Contains(id EntityID) bool {
	for _, r := range s.Rows {
		if r.ID == id {
			return true
		}
	}
	return false
}

func (s Snapshot) Entity(id EntityID) (AgentSnapshot, bool) {
	for _, e := range s.Entities {
		if e.ID == id {
			return e, true
		}
	}
	return AgentSnapshot{}, false
}
