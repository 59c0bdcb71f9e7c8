package audio

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/gordonklaus/portaudio"

	"whisperkey/internal/domain"
)

const (
	// SampleRate is fixed: the transcription engine expects 16 kHz mono.
	SampleRate = 16000

	framesPerBuffer = 1024
)

// Capture owns the single PortAudio input stream and the frames it
// produces. At most one stream is open at a time; Start while active is
// a no-op.
type Capture struct {
	workingPath string
	log         *slog.Logger

	mu      sync.Mutex
	stream  *portaudio.Stream
	session *session
	active  bool
}

func NewCapture(workingPath string, log *slog.Logger) *Capture {
	return &Capture{workingPath: workingPath, log: log}
}

// Start opens a mono 16 kHz input stream on the named device. On failure
// the capture stays inactive and the error is returned for logging only;
// callers observe "not started" through Active.
func (c *Capture) Start(device string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active {
		return nil
	}

	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("portaudio init: %w", err)
	}

	sess := newSession()
	callback := func(in []float32) {
		sess.append(in)
	}

	stream, err := openInputStream(device, callback)
	if err != nil {
		_ = portaudio.Terminate()
		return err
	}
	if err := stream.Start(); err != nil {
		_ = stream.Close()
		_ = portaudio.Terminate()
		return fmt.Errorf("start stream: %w", err)
	}

	c.stream = stream
	c.session = sess
	c.active = true
	c.log.Debug("recording started", "device", device)
	return nil
}

// Stop closes the stream and writes the captured frames to the working
// WAV file. With zero captured frames it returns domain.ErrNoAudio and
// writes nothing.
func (c *Capture) Stop() (string, error) {
	c.mu.Lock()
	if !c.active {
		c.mu.Unlock()
		return "", domain.ErrNoAudio
	}
	stream := c.stream
	sess := c.session
	c.stream = nil
	c.session = nil
	c.active = false
	c.mu.Unlock()

	if err := stream.Stop(); err != nil {
		c.log.Warn("stream stop failed", "error", err)
	}
	if err := stream.Close(); err != nil {
		c.log.Warn("stream close failed", "error", err)
	}
	_ = portaudio.Terminate()

	samples := sess.frames()
	if len(samples) == 0 {
		return "", domain.ErrNoAudio
	}

	if err := writeWAV(c.workingPath, samples, SampleRate); err != nil {
		return "", err
	}
	c.log.Debug("recording saved", "path", c.workingPath, "frames", len(samples))
	return c.workingPath, nil
}

// Active reports whether a stream is currently open.
func (c *Capture) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Level returns the last stored RMS level, 0.0 when idle.
func (c *Capture) Level() float64 {
	c.mu.Lock()
	sess := c.session
	c.mu.Unlock()
	if sess == nil {
		return 0
	}
	return sess.currentLevel()
}
