package sensor

import (
	"context"
	"errors"
)

// FrameBuffer is the capacity of the frame channel returned by sources.
const FrameBuffer = 4

// ErrClosed is returned when subscribing to a source that has been closed.
var ErrClosed = errors.New("sensor source closed")

// Source produces frames at the device's own cadence.
type Source interface {
	// Subscribe starts delivering frames on the returned channel until ctx is
	// cancelled or the device disconnects, at which point the channel is closed.
	Subscribe(ctx context.Context) (<-chan *Frame, error)
}

// Deliver offers f to ch without blocking. It reports false when the buffer is
// full and the frame was dropped.
func Deliver(ch chan<- *Frame, f *Frame) bool {
	select {
	case ch <- f:
		return true
	default:
		return false
	}
}

// DropCounter is implemented by sources that discard frames when the consumer lags.
type DropCounter interface {
	Dropped() int64
}
