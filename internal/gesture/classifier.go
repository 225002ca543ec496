// Package gesture classifies sensor frames into raw signal candidates.
package gesture

import (
	"github.com/ayusman/mudra/internal/sensor"
	"github.com/ayusman/mudra/internal/signal"
)

// Thresholds are the direction cut-offs for one hand. A component above Positive or
// below Negative counts as pointing that way.
type Thresholds struct {
	Positive float64 `json:"positive"`
	Negative float64 `json:"negative"`
}

// Config holds the classification parameters.
type Config struct {
	// RightHand and LeftHand are asymmetric to compensate for the wrist tilting
	// outward when pointing.
	RightHand Thresholds `json:"right_hand"`
	LeftHand  Thresholds `json:"left_hand"`

	// MinCircleRadius filters out small accidental wrist rotations.
	MinCircleRadius float64 `json:"min_circle_radius"`
}

// DefaultConfig returns the tuned classification parameters.
func DefaultConfig() Config {
	return Config{
		RightHand:       Thresholds{Positive: 0.45, Negative: -0.40},
		LeftHand:        Thresholds{Positive: 0.40, Negative: -0.45},
		MinCircleRadius: 15,
	}
}

// Classifier writes the candidates of each frame into an aggregator.
type Classifier struct {
	config Config
}

// NewClassifier creates a Classifier with the given configuration.
func NewClassifier(config Config) *Classifier {
	return &Classifier{config: config}
}

// Process classifies a frame into the aggregator's current snapshot. It never advances.
func (c *Classifier) Process(agg *signal.Aggregator, frame *sensor.Frame) {
	if frame == nil {
		return
	}
	agg.Write(func(s signal.Snapshot) {
		c.Apply(frame, s)
	})
}

// Apply writes a frame's candidates into s.
//
// One-shot candidates (screen tap, circle stop) are only ever set true, so they survive
// until the snapshot is advanced. Directions are cleared and re-evaluated on every frame.
func (c *Classifier) Apply(frame *sensor.Frame, s signal.Snapshot) {
	for _, g := range frame.Gestures {
		switch g := g.(type) {
		case sensor.Circle:
			if name, ok := ClassifyCircle(frame, g, c.config.MinCircleRadius); ok {
				s[name] = true
			}
		case sensor.ScreenTap:
			s[ClassifyTap(g)] = true
		case sensor.OtherGesture:
		}
	}

	for _, d := range signal.Directions {
		s[d] = false
	}
	for _, h := range frame.Hands {
		if h.IndexFinger == nil {
			continue
		}
		for _, name := range ClassifyDirection(h.IndexFinger.X(), h.IndexFinger.Y(), c.thresholdsFor(h)) {
			s[name] = true
		}
	}
}

func (c *Classifier) thresholdsFor(h sensor.Hand) Thresholds {
	if h.IsRight() {
		return c.config.RightHand
	}
	return c.config.LeftHand
}
