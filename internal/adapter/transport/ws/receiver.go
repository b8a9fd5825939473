package wstransport

import (
	"net/http"

	"nearbyradar/internal/domain/estate"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/gorilla/websocket"
)

const maxFrameSize = 64 * 1024

// Receiver is the region side of the transport: it accepts connections and
// hands each decoded request to Handle once, dropping resent duplicates.
type Receiver struct {
	Handle func(remote string, req estate.Request)
	Logger hlog.FullLogger

	upgrader websocket.Upgrader
}

func (rc *Receiver) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := rc.Logger
	if logger == nil {
		logger = hlog.DefaultLogger()
	}
	conn, err := rc.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warnf("region: upgrade from %s: %v", r.RemoteAddr, err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxFrameSize)

	var lastSeq uint64
	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warnf("region: read from %s: %v", r.RemoteAddr, err)
			}
			return
		}
		if msgType != websocket.BinaryMessage {
			continue
		}
		f, err := DecodeFrame(data)
		if err != nil {
			logger.Warnf("region: %v", err)
			continue
		}
		if f.Seq != 0 && f.Seq <= lastSeq {
			continue
		}
		lastSeq = f.Seq
		if rc.Handle != nil {
			rc.Handle(r.RemoteAddr, f.Request)
		}
	}
}
