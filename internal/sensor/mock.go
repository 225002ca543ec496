package sensor

import (
	"context"
	"errors"
	"math"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
)

// MockSource is a test implementation of Source.
// Frames queued before Subscribe are replayed first; Push delivers later frames.
type MockSource struct {
	mu      sync.Mutex
	pending []*Frame
	in      chan *Frame
	stopped chan struct{} // closed when the subscription's forwarder exits
	done    chan struct{}
	err     error
	closed  bool
}

// NewMockSource creates a MockSource that will replay frames on subscription.
func NewMockSource(frames ...*Frame) *MockSource {
	return &MockSource{
		pending: frames,
		done:    make(chan struct{}),
	}
}

// SetError makes Subscribe fail with err.
func (m *MockSource) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Subscribe starts forwarding queued and pushed frames to the returned channel.
func (m *MockSource) Subscribe(ctx context.Context) (<-chan *Frame, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return nil, m.err
	}
	if m.closed {
		return nil, ErrClosed
	}
	if m.in != nil {
		return nil, errors.New("mock source already subscribed")
	}

	m.in = make(chan *Frame, len(m.pending)+64)
	for _, f := range m.pending {
		m.in <- f
	}
	m.pending = nil

	m.stopped = make(chan struct{})
	out := make(chan *Frame, FrameBuffer)
	go m.forward(ctx, m.in, out, m.stopped)

	return out, nil
}

func (m *MockSource) forward(ctx context.Context, in <-chan *Frame, out chan<- *Frame, stopped chan struct{}) {
	defer close(stopped)
	defer close(out)
	for {
		select {
		case <-ctx.Done():
			return
		case <-m.done:
			return
		case f := <-in:
			select {
			case out <- f:
			case <-ctx.Done():
				return
			case <-m.done:
				return
			}
		}
	}
}

// Push delivers a frame to the subscriber, or queues it when nobody has subscribed yet.
// Frames pushed after the subscription ended are discarded once the queue is full.
func (m *MockSource) Push(f *Frame) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	if m.in == nil {
		m.pending = append(m.pending, f)
		m.mu.Unlock()
		return
	}
	in, stopped := m.in, m.stopped
	m.mu.Unlock()

	select {
	case in <- f:
	case <-m.done:
	case <-stopped:
	}
}

// Close ends the subscription. It is safe to call more than once.
func (m *MockSource) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.closed {
		m.closed = true
		close(m.done)
	}
	return nil
}

// PointingFrame returns a frame with a single hand whose index finger points along (x, y).
func PointingFrame(hand Handedness, x, y float64) *Frame {
	// z points away from the user and completes the unit vector.
	dir := mgl64.Vec3{x, y, -math.Sqrt(math.Max(0, 1-x*x-y*y))}
	return &Frame{
		Hands: []Hand{{ID: 1, Type: hand, IndexFinger: &dir}},
		Pointables: []Pointable{
			{ID: 11, HandID: 1, Finger: Index, Direction: dir},
		},
	}
}

// CircleFrame returns a frame holding a circle gesture drawn by a pointable whose
// direction is dir.
func CircleFrame(state GestureState, radius float64, dir, normal mgl64.Vec3) *Frame {
	return &Frame{
		Pointables: []Pointable{{ID: 21, HandID: 2, Finger: Index, Direction: dir}},
		Gestures: []Gesture{
			Circle{ID: 1, State: state, Radius: radius, Normal: normal, PointableIDs: []int{21}},
		},
	}
}

// TapFrame returns a frame holding a single screen tap.
func TapFrame() *Frame {
	return &Frame{Gestures: []Gesture{ScreenTap{ID: 1}}}
}
