package capture

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/ayusman/mudra/internal/sensor"
)

// maxReadFailures stops the source after this many consecutive camera or detector errors.
const maxReadFailures = 30

// Source is a sensor.Source backed by a camera and a landmark detector.
type Source struct {
	camera   Camera
	detector Detector
	fps      int
	dropped  atomic.Int64
}

// NewSource creates a Source polling camera at fps frames per second.
func NewSource(camera Camera, detector Detector, fps int) *Source {
	if fps <= 0 {
		fps = DefaultFPS
	}
	return &Source{camera: camera, detector: detector, fps: fps}
}

// Subscribe opens the camera and starts producing frames. The camera and detector
// are closed when ctx ends or the camera keeps failing.
func (s *Source) Subscribe(ctx context.Context) (<-chan *sensor.Frame, error) {
	if err := s.camera.Open(); err != nil {
		return nil, fmt.Errorf("open camera: %w", err)
	}

	out := make(chan *sensor.Frame, sensor.FrameBuffer)
	go s.run(ctx, out)
	return out, nil
}

// Dropped returns how many frames were discarded because the consumer lagged.
func (s *Source) Dropped() int64 {
	return s.dropped.Load()
}

func (s *Source) run(ctx context.Context, out chan<- *sensor.Frame) {
	defer close(out)
	defer s.detector.Close()
	defer s.camera.Close()

	ticker := time.NewTicker(time.Second / time.Duration(s.fps))
	defer ticker.Stop()

	var id int64
	failures := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		frame, err := s.next(id + 1)
		if errors.Is(err, ErrCameraNotOpen) {
			return
		}
		if err != nil {
			failures++
			if failures >= maxReadFailures {
				log.Printf("capture: giving up after %d failures: %v", failures, err)
				return
			}
			continue
		}
		failures = 0
		id++

		if !sensor.Deliver(out, frame) {
			s.dropped.Add(1)
		}
	}
}

func (s *Source) next(id int64) (*sensor.Frame, error) {
	mat, err := s.camera.ReadFrame()
	if err != nil {
		return nil, err
	}
	defer mat.Close()

	hands, err := s.detector.Detect(mat)
	if err != nil {
		return nil, fmt.Errorf("detect: %w", err)
	}
	return ToFrame(id, time.Now().UnixMicro(), hands), nil
}
