package sensor

import (
	"encoding/json"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// wireFrame is the JSON frame published by the Leap Motion service (protocol v6).
type wireFrame struct {
	ID         *int64          `json:"id"`
	Timestamp  int64           `json:"timestamp"`
	Hands      []wireHand      `json:"hands"`
	Pointables []wirePointable `json:"pointables"`
	Gestures   []wireGesture   `json:"gestures"`
}

type wireHand struct {
	ID   int    `json:"id"`
	Type string `json:"type"`
}

type wirePointable struct {
	ID        int       `json:"id"`
	HandID    int       `json:"handId"`
	Type      int       `json:"type"`
	Tool      bool      `json:"tool"`
	Direction []float64 `json:"direction"`
}

type wireGesture struct {
	ID           int       `json:"id"`
	Type         string    `json:"type"`
	State        string    `json:"state"`
	Radius       float64   `json:"radius"`
	Normal       []float64 `json:"normal"`
	PointableIDs []int     `json:"pointableIds"`
}

// DecodeFrame parses one Leap Motion JSON message.
// It returns nil, nil for messages that are not frames, such as the version handshake.
func DecodeFrame(data []byte) (*Frame, error) {
	var w wireFrame
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("parse frame: %w", err)
	}
	if w.ID == nil {
		return nil, nil
	}
	return w.toFrame(), nil
}

func (w wireFrame) toFrame() *Frame {
	f := &Frame{
		ID:         *w.ID,
		Timestamp:  w.Timestamp,
		Hands:      make([]Hand, 0, len(w.Hands)),
		Pointables: make([]Pointable, 0, len(w.Pointables)),
		Gestures:   make([]Gesture, 0, len(w.Gestures)),
	}

	for _, p := range w.Pointables {
		f.Pointables = append(f.Pointables, Pointable{
			ID:        p.ID,
			HandID:    p.HandID,
			Finger:    Finger(p.Type),
			Tool:      p.Tool,
			Direction: toVec3(p.Direction),
		})
	}

	for _, h := range w.Hands {
		hand := Hand{ID: h.ID, Type: Handedness(h.Type)}
		for _, p := range f.Pointables {
			if p.HandID == h.ID && !p.Tool && p.Finger == Index {
				dir := p.Direction
				hand.IndexFinger = &dir
				break
			}
		}
		f.Hands = append(f.Hands, hand)
	}

	for _, g := range w.Gestures {
		f.Gestures = append(f.Gestures, g.toGesture())
	}

	return f
}

func (g wireGesture) toGesture() Gesture {
	switch g.Type {
	case "circle":
		return Circle{
			ID:           g.ID,
			State:        GestureState(g.State),
			Radius:       g.Radius,
			Normal:       toVec3(g.Normal),
			PointableIDs: g.PointableIDs,
		}
	case "screenTap":
		return ScreenTap{ID: g.ID, PointableIDs: g.PointableIDs}
	default:
		return OtherGesture{ID: g.ID, Type: g.Type}
	}
}

// toVec3 converts a JSON triple. Short arrays leave the missing components zero.
func toVec3(v []float64) mgl64.Vec3 {
	var out mgl64.Vec3
	for i := 0; i < 3 && i < len(v); i++ {
		out[i] = v[i]
	}
	return out
}
