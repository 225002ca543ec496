package sensor

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// Gesture is a gesture recognized by the sensor. The set of implementations is closed:
// Circle, ScreenTap and OtherGesture.
type Gesture interface {
	GestureID() int
	gesture()
}

// GestureState is the lifecycle state of a continuous gesture.
type GestureState string

const (
	StateStart  GestureState = "start"
	StateUpdate GestureState = "update"
	StateStop   GestureState = "stop"
)

// Circle is a circular motion drawn by a finger.
type Circle struct {
	ID           int
	State        GestureState
	Radius       float64
	Normal       mgl64.Vec3
	PointableIDs []int
}

// ScreenTap is a forward tapping motion.
type ScreenTap struct {
	ID           int
	PointableIDs []int
}

// OtherGesture is any gesture type not used for input (swipe, key tap, ...).
type OtherGesture struct {
	ID   int
	Type string
}

func (c Circle) GestureID() int       { return c.ID }
func (s ScreenTap) GestureID() int    { return s.ID }
func (o OtherGesture) GestureID() int { return o.ID }

func (Circle) gesture()       {}
func (ScreenTap) gesture()    {}
func (OtherGesture) gesture() {}

func describeGesture(g Gesture) string {
	switch g := g.(type) {
	case Circle:
		return fmt.Sprintf("%d circle %s radius=%.1f pointables=%v", g.ID, g.State, g.Radius, g.PointableIDs)
	case ScreenTap:
		return fmt.Sprintf("%d screenTap pointables=%v", g.ID, g.PointableIDs)
	case OtherGesture:
		return fmt.Sprintf("%d %s", g.ID, g.Type)
	default:
		return "unknown"
	}
}
