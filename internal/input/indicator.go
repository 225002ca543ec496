package input

import "github.com/ayusman/mudra/internal/signal"

// Indicator returns a glyph for the most relevant active signal, or "" when idle.
func Indicator(st signal.State) string {
	switch {
	case st.IsActive(signal.Left):
		return "←"
	case st.IsActive(signal.Right):
		return "→"
	case st.IsActive(signal.Up):
		return "↑"
	case st.IsActive(signal.Down):
		return "↓"
	case st.IsActive(signal.ScreenTap), st.IsActive(signal.Clockwise):
		return "◯"
	case st.IsActive(signal.CounterClockwise):
		return "×"
	}
	return ""
}
