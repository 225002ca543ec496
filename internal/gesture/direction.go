package gesture

import "github.com/ayusman/mudra/internal/signal"

// ClassifyDirection maps the x and y components of a finger direction to the
// directions it points at. Diagonal pointing yields two names.
func ClassifyDirection(x, y float64, t Thresholds) []signal.Name {
	var names []signal.Name
	if x > t.Positive {
		names = append(names, signal.Right)
	}
	if x < t.Negative {
		names = append(names, signal.Left)
	}
	if y > t.Positive {
		names = append(names, signal.Up)
	}
	if y < t.Negative {
		names = append(names, signal.Down)
	}
	return names
}
