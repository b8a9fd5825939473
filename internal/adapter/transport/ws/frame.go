package wstransport

import (
	"fmt"

	"nearbyradar/internal/domain/estate"

	"github.com/vmihailenco/msgpack/v5"
)

// Frame is one binary websocket message. Seq is per connection target and
// lets the receiver drop duplicates after a resend.
type Frame struct {
	Seq     uint64         `msgpack:"seq"`
	Request estate.Request `msgpack:"request"`
}

func EncodeFrame(f Frame) ([]byte, error) {
	b, err := msgpack.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	return b, nil
}

func DecodeFrame(b []byte) (Frame, error) {
	var f Frame
	if err := msgpack.Unmarshal(b, &f); err != nil {
		return Frame{}, fmt.Errorf("decode frame: %w", err)
	}
	return f, nil
}
