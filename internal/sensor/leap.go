package sensor

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// DefaultLeapURL is the WebSocket endpoint of a local Leap Motion service.
const DefaultLeapURL = "ws://127.0.0.1:6437/v6.json"

// LeapConfig holds options for connecting to the Leap Motion service.
type LeapConfig struct {
	// URL of the service WebSocket.
	URL string

	// Background asks the service to keep sending frames when the app is not focused.
	Background bool

	// HandshakeTimeout bounds the WebSocket handshake.
	HandshakeTimeout time.Duration
}

// DefaultLeapConfig returns a LeapConfig for a service on localhost.
func DefaultLeapConfig() LeapConfig {
	return LeapConfig{
		URL:              DefaultLeapURL,
		Background:       true,
		HandshakeTimeout: 5 * time.Second,
	}
}

// LeapSource streams frames from the Leap Motion service over WebSocket.
type LeapSource struct {
	config  LeapConfig
	dialer  *websocket.Dialer
	dropped atomic.Int64
}

// NewLeapSource creates a LeapSource. No connection is made until Subscribe.
func NewLeapSource(config LeapConfig) *LeapSource {
	if config.URL == "" {
		config.URL = DefaultLeapURL
	}
	return &LeapSource{
		config: config,
		dialer: &websocket.Dialer{HandshakeTimeout: config.HandshakeTimeout},
	}
}

// Subscribe connects to the service, enables gesture recognition and streams frames.
func (s *LeapSource) Subscribe(ctx context.Context) (<-chan *Frame, error) {
	conn, _, err := s.dialer.DialContext(ctx, s.config.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("connect to leap service %s: %w", s.config.URL, err)
	}

	if err := conn.WriteJSON(map[string]bool{"enableGestures": true}); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable gestures: %w", err)
	}
	if s.config.Background {
		if err := conn.WriteJSON(map[string]bool{"background": true}); err != nil {
			conn.Close()
			return nil, fmt.Errorf("enable background frames: %w", err)
		}
	}

	out := make(chan *Frame, FrameBuffer)
	stopped := make(chan struct{})

	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-stopped:
		}
	}()

	go func() {
		defer close(stopped)
		s.read(ctx, conn, out)
	}()

	return out, nil
}

// Dropped returns how many frames were discarded because the consumer fell behind.
func (s *LeapSource) Dropped() int64 {
	return s.dropped.Load()
}

func (s *LeapSource) read(ctx context.Context, conn *websocket.Conn, out chan<- *Frame) {
	defer close(out)
	defer conn.Close()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				log.Printf("leap: connection lost: %v", err)
			}
			return
		}

		frame, err := DecodeFrame(data)
		if err != nil {
			log.Printf("leap: skipping message: %v", err)
			continue
		}
		if frame == nil {
			continue
		}

		if !Deliver(out, frame) {
			s.dropped.Add(1)
		}
	}
}
