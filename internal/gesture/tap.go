package gesture

import (
	"github.com/ayusman/mudra/internal/sensor"
	"github.com/ayusman/mudra/internal/signal"
)

// ClassifyTap maps a screen tap to its one-shot candidate.
func ClassifyTap(sensor.ScreenTap) signal.Name {
	return signal.ScreenTap
}
