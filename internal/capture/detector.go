package capture

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
	"gocv.io/x/gocv"
)

// Detector finds hand landmarks in an image.
type Detector interface {
	// Detect returns the hands found in frame, or an empty slice.
	Detect(frame *gocv.Mat) ([]Landmarks, error)
	Close() error
}

// ServiceScript is the landmark service looked up when no command is configured.
const ServiceScript = "scripts/landmark_service.py"

// ServiceConfig configures the landmark subprocess.
type ServiceConfig struct {
	// Command runs the service. Empty means python3 with ServiceScript.
	Command []string `json:"command"`
	// MinScore drops hands detected with lower confidence.
	MinScore float64 `json:"min_score"`
}

// DefaultServiceConfig returns a config that locates the bundled script.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{MinScore: 0.5}
}

// LandmarkService implements Detector with a long-running subprocess.
// Each request is a 4-byte big-endian length followed by a JPEG; each reply is one
// JSON line {"hands":[{"points":[{"x","y","z"}...],"handedness","score"}]}.
type LandmarkService struct {
	config  ServiceConfig
	cmd     *exec.Cmd
	stdin   io.WriteCloser
	stdout  *bufio.Reader
	mu      sync.Mutex
	started bool
}

// NewLandmarkService creates a service. The process starts on the first Detect.
func NewLandmarkService(config ServiceConfig) (*LandmarkService, error) {
	if len(config.Command) == 0 {
		script := findScript(ServiceScript)
		if script == "" {
			return nil, fmt.Errorf("%s not found", ServiceScript)
		}
		config.Command = []string{"python3", script}
	}
	return &LandmarkService{config: config}, nil
}

func (s *LandmarkService) Detect(frame *gocv.Mat) ([]Landmarks, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureStarted(); err != nil {
		return nil, err
	}

	buf, err := gocv.IMEncode(".jpg", *frame)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	if err := writeImage(s.stdin, buf.GetBytes()); err != nil {
		return nil, err
	}

	hands, err := readHands(s.stdout)
	if err != nil {
		return nil, err
	}
	return filterScore(hands, s.config.MinScore), nil
}

func (s *LandmarkService) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}

	s.stdin.Close()
	err := s.cmd.Wait()
	s.started = false
	s.cmd = nil
	s.stdin = nil
	s.stdout = nil
	return err
}

func (s *LandmarkService) ensureStarted() error {
	if s.started {
		return nil
	}

	cmd := exec.Command(s.config.Command[0], s.config.Command[1:]...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("create stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("create stdout pipe: %w", err)
	}
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start landmark service: %w", err)
	}

	s.cmd = cmd
	s.stdin = stdin
	s.stdout = bufio.NewReader(stdout)
	s.started = true
	return nil
}

func writeImage(w io.Writer, data []byte) error {
	length := make([]byte, 4)
	binary.BigEndian.PutUint32(length, uint32(len(data)))

	if _, err := w.Write(length); err != nil {
		return fmt.Errorf("write length: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write data: %w", err)
	}
	return nil
}

type jsonPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

type jsonHand struct {
	Points     []jsonPoint `json:"points"`
	Handedness string      `json:"handedness"`
	Score      float64     `json:"score"`
}

var errShortHand = errors.New("hand has fewer than 21 landmarks")

func readHands(r *bufio.Reader) ([]Landmarks, error) {
	line, err := r.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var response struct {
		Hands []jsonHand `json:"hands"`
	}
	if err := json.Unmarshal(line, &response); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	hands := make([]Landmarks, 0, len(response.Hands))
	for _, h := range response.Hands {
		if len(h.Points) < NumLandmarks {
			return nil, errShortHand
		}
		lm := Landmarks{Handedness: h.Handedness, Score: h.Score}
		for i := range lm.Points {
			p := h.Points[i]
			lm.Points[i] = mgl64.Vec3{p.X, p.Y, p.Z}
		}
		hands = append(hands, lm)
	}
	return hands, nil
}

func filterScore(hands []Landmarks, min float64) []Landmarks {
	out := hands[:0]
	for _, h := range hands {
		if h.Score >= min {
			out = append(out, h)
		}
	}
	return out
}

func findScript(rel string) string {
	var execDir string
	if execPath, err := os.Executable(); err == nil {
		execDir = filepath.Dir(execPath)
	}

	candidates := []string{
		rel,
		filepath.Join("..", rel),
		filepath.Join(execDir, rel),
		filepath.Join(os.Getenv("HOME"), ".mudra", rel),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			if abs, err := filepath.Abs(path); err == nil {
				return abs
			}
			return path
		}
	}
	return ""
}
