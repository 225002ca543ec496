package capture

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/ayusman/mudra/internal/sensor"
)

// Hand landmark indices used here, following the MediaPipe hand model.
const (
	Wrist        = 0
	IndexMCP     = 5
	IndexTip     = 8
	NumLandmarks = 21
)

// Landmarks are the 21 points of one detected hand in normalized image coordinates:
// x grows to the right, y grows downward, z grows away from the camera.
type Landmarks struct {
	Points     [NumLandmarks]mgl64.Vec3
	Handedness string // "Left" or "Right"
	Score      float64
}

// IndexDirection returns the unit vector from the index knuckle to the index tip,
// with y flipped so that up is positive. ok is false when the two points coincide.
func (l Landmarks) IndexDirection() (dir mgl64.Vec3, ok bool) {
	v := l.Points[IndexTip].Sub(l.Points[IndexMCP])
	v[1] = -v[1]
	if v.Len() < 1e-9 {
		return mgl64.Vec3{}, false
	}
	return v.Normalize(), true
}

// handType maps the detector's handedness label onto sensor handedness.
func (l Landmarks) handType() sensor.Handedness {
	if l.Handedness == "Left" {
		return sensor.LeftHand
	}
	return sensor.RightHand
}

// ToFrame builds a sensor frame from one detection pass. Each hand gets id i+1 and
// its index finger becomes pointable id 10*(i+1)+1. Camera frames carry no gestures.
func ToFrame(id, timestamp int64, hands []Landmarks) *sensor.Frame {
	frame := &sensor.Frame{ID: id, Timestamp: timestamp}

	for i, lm := range hands {
		hand := sensor.Hand{ID: i + 1, Type: lm.handType()}
		if dir, ok := lm.IndexDirection(); ok {
			hand.IndexFinger = &dir
			frame.Pointables = append(frame.Pointables, sensor.Pointable{
				ID:        10*(i+1) + 1,
				HandID:    hand.ID,
				Finger:    sensor.Index,
				Direction: dir,
			})
		}
		frame.Hands = append(frame.Hands, hand)
	}

	return frame
}
