package wstransport

import (
	"context"
	"net/url"
	"sync"
	"time"

	"nearbyradar/internal/app/ports"
	"nearbyradar/internal/domain/estate"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/gorilla/websocket"
)

const (
	defaultPath        = "/region"
	defaultQueueSize   = 256
	defaultDialTimeout = 5 * time.Second
	defaultWriteWait   = 10 * time.Second
	defaultMaxAttempts = 5
	defaultBackoff     = 200 * time.Millisecond
)

type Config struct {
	Path        string
	QueueSize   int
	DialTimeout time.Duration
	WriteWait   time.Duration
	MaxAttempts int
	Backoff     time.Duration
	Logger      hlog.FullLogger
	Metrics     ports.DeliveryMetrics
}

func (c Config) withDefaults() Config {
	if c.Path == "" {
		c.Path = defaultPath
	}
	if c.QueueSize <= 0 {
		c.QueueSize = defaultQueueSize
	}
	if c.DialTimeout <= 0 {
		c.DialTimeout = defaultDialTimeout
	}
	if c.WriteWait <= 0 {
		c.WriteWait = defaultWriteWait
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = defaultMaxAttempts
	}
	if c.Backoff <= 0 {
		c.Backoff = defaultBackoff
	}
	if c.Logger == nil {
		c.Logger = hlog.DefaultLogger()
	}
	return c
}

// Sender keeps one connection and one ordered queue per region host. Send
// never blocks on the network; failures are logged and counted.
type Sender struct {
	cfg Config

	mu     sync.Mutex
	links  map[string]*link
	closed bool
	wg     sync.WaitGroup
}

func NewSender(cfg Config) *Sender {
	return &Sender{
		cfg:   cfg.withDefaults(),
		links: map[string]*link{},
	}
}

func (s *Sender) Send(_ context.Context, host string, req estate.Request) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		s.fail(host, req, "sender closed")
		return
	}
	l, ok := s.links[host]
	if !ok {
		l = &link{sender: s, host: host, queue: make(chan estate.Request, s.cfg.QueueSize)}
		s.links[host] = l
		s.wg.Add(1)
		go l.run()
	}
	s.mu.Unlock()

	select {
	case l.queue <- req:
	default:
		s.fail(host, req, "queue full")
	}
}

// Close stops accepting requests, lets queued ones drain and closes every
// connection.
func (s *Sender) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	for _, l := range s.links {
		close(l.queue)
	}
	s.mu.Unlock()
	s.wg.Wait()
}

func (s *Sender) fail(host string, req estate.Request, reason string) {
	s.cfg.Logger.Warnf("transport: %s to %s dropped (invoice=%s): %s", req.Operation(), host, req.Invoice, reason)
	if s.cfg.Metrics != nil {
		s.cfg.Metrics.RecordDeliveryFailure(host)
	}
}

type link struct {
	sender *Sender
	host   string
	queue  chan estate.Request
	conn   *websocket.Conn
	seq    uint64
}

func (l *link) run() {
	defer l.sender.wg.Done()
	defer l.disconnect()
	for req := range l.queue {
		l.seq++
		l.deliver(Frame{Seq: l.seq, Request: req})
	}
}

func (l *link) deliver(f Frame) {
	cfg := l.sender.cfg
	data, err := EncodeFrame(f)
	if err != nil {
		l.sender.fail(l.host, f.Request, err.Error())
		return
	}
	var lastErr error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if attempt > 1 {
			time.Sleep(time.Duration(attempt-1) * cfg.Backoff)
		}
		if l.conn == nil {
			if lastErr = l.connect(); lastErr != nil {
				cfg.Logger.Debugf("transport: dial %s attempt %d: %v", l.host, attempt, lastErr)
				continue
			}
		}
		_ = l.conn.SetWriteDeadline(time.Now().Add(cfg.WriteWait))
		if lastErr = l.conn.WriteMessage(websocket.BinaryMessage, data); lastErr == nil {
			return
		}
		cfg.Logger.Debugf("transport: write %s attempt %d: %v", l.host, attempt, lastErr)
		l.disconnect()
	}
	l.sender.fail(l.host, f.Request, lastErr.Error())
}

func (l *link) connect() error {
	cfg := l.sender.cfg
	u := url.URL{Scheme: "ws", Host: l.host, Path: cfg.Path}
	dialer := websocket.Dialer{HandshakeTimeout: cfg.DialTimeout}
	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
	defer cancel()
	conn, _, err := dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return err
	}
	l.conn = conn
	return nil
}

func (l *link) disconnect() {
	if l.conn == nil {
		return
	}
	_ = l.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
	_ = l.conn.Close()
	l.conn = nil
}
