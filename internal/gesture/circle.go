package gesture

import (
	"github.com/ayusman/mudra/internal/sensor"
	"github.com/ayusman/mudra/internal/signal"
)

// ClassifyCircle turns a finished circle into a clockwise or counter-clockwise candidate.
//
// Only circles in the stop state with a radius above minRadius fire. The rotation
// sense is the sign of the dot product between the drawing finger's direction and the
// circle normal. It reports false when the circle does not qualify or its pointable
// cannot be resolved in the frame.
func ClassifyCircle(frame *sensor.Frame, c sensor.Circle, minRadius float64) (signal.Name, bool) {
	if c.State != sensor.StateStop || c.Radius <= minRadius {
		return "", false
	}
	if len(c.PointableIDs) == 0 {
		return "", false
	}

	p, ok := frame.Pointable(c.PointableIDs[0])
	if !ok {
		return "", false
	}

	if p.Direction.Dot(c.Normal) > 0 {
		return signal.Clockwise, true
	}
	return signal.CounterClockwise, true
}
