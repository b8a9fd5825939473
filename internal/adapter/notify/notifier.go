package notify

import (
	"context"
	"time"

	"nearbyradar/internal/domain/radar"

	"github.com/cloudwego/hertz/pkg/common/hlog"
)

// Entry is one system chat line as persisted in the notification log.
type Entry struct {
	At       time.Time `json:"at"`
	Kind     string    `json:"kind"`
	EntityID string    `json:"entity_id"`
	Name     string    `json:"name"`
	Distance string    `json:"distance"`
	Text     string    `json:"text"`
}

// Sink receives every enter notification after it is logged.
type Sink interface {
	Write(v any) error
}

// ChatNotifier renders enter events as system chat lines: it logs them at
// info level and appends them to each sink.
type ChatNotifier struct {
	Sinks  []Sink
	Logger hlog.FullLogger
	Now    func() time.Time
}

func (n ChatNotifier) NotifyEnter(_ context.Context, ev radar.EnterEvent) {
	logger := n.Logger
	if logger == nil {
		logger = hlog.DefaultLogger()
	}
	now := time.Now
	if n.Now != nil {
		now = n.Now
	}
	text := ev.Text()
	logger.Infof("system: %s", text)

	entry := Entry{
		At:       now().UTC(),
		Kind:     string(ev.Kind),
		EntityID: ev.ID.String(),
		Name:     ev.Name,
		Distance: ev.DistanceText,
		Text:     text,
	}
	for _, s := range n.Sinks {
		if err := s.Write(entry); err != nil {
			logger.Warnf("notify: write entry: %v", err)
		}
	}
}
