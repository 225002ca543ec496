package capture

import (
	"sync"

	"github.com/go-gl/mathgl/mgl64"
	"gocv.io/x/gocv"
)

// MockCamera hands out blank images of a fixed size.
type MockCamera struct {
	mu      sync.Mutex
	running bool
	reads   int
	limit   int
}

// NewMockCamera creates a camera that fails with ErrCameraNotOpen after limit reads.
// A limit of zero never runs out.
func NewMockCamera(limit int) *MockCamera {
	return &MockCamera{limit: limit}
}

func (c *MockCamera) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = true
	return nil
}

func (c *MockCamera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = false
	return nil
}

func (c *MockCamera) ReadFrame() (*gocv.Mat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running || (c.limit > 0 && c.reads >= c.limit) {
		return nil, ErrCameraNotOpen
	}
	c.reads++

	mat := gocv.NewMatWithSize(DefaultHeight/10, DefaultWidth/10, gocv.MatTypeCV8UC3)
	return &mat, nil
}

func (c *MockCamera) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// Reads returns how many frames were handed out.
func (c *MockCamera) Reads() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reads
}

// MockDetector returns preset landmarks.
type MockDetector struct {
	mu     sync.Mutex
	hands  []Landmarks
	err    error
	closed bool
}

// NewMockDetector creates a detector that finds no hands.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands returned by Detect.
func (m *MockDetector) SetHands(hands []Landmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hands = hands
}

// SetError makes Detect fail with err.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func (m *MockDetector) Detect(frame *gocv.Mat) ([]Landmarks, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return append([]Landmarks(nil), m.hands...), nil
}

func (m *MockDetector) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Closed reports whether Close was called.
func (m *MockDetector) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// PointingLandmarks returns a hand whose index finger points from the knuckle
// towards (dx, dy) in image space, where positive dy is downward.
func PointingLandmarks(handedness string, dx, dy float64) Landmarks {
	lm := Landmarks{Handedness: handedness, Score: 0.9}
	lm.Points[Wrist] = mgl64.Vec3{0.5, 0.8, 0}
	lm.Points[IndexMCP] = mgl64.Vec3{0.5, 0.6, 0}
	lm.Points[IndexTip] = mgl64.Vec3{0.5 + dx, 0.6 + dy, 0}
	return lm
}
