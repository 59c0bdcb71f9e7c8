package audio

import (
	"math"
	"sync"
)

// session accumulates captured sample blocks and tracks the live signal
// level. Append runs on the audio callback thread; Level and frames may
// be called from any goroutine.
type session struct {
	mu     sync.Mutex
	blocks [][]float32
	level  float64
	count  int
}

func newSession() *session {
	return &session{}
}

// append stores a copy of the incoming block and updates the RMS level.
// It must stay cheap: no allocation beyond the block copy, no blocking
// calls, lock held only for the slice append and level store.
func (s *session) append(block []float32) {
	if len(block) == 0 {
		return
	}
	copied := make([]float32, len(block))
	copy(copied, block)
	level := rms(copied)

	s.mu.Lock()
	s.blocks = append(s.blocks, copied)
	s.count += len(copied)
	s.level = level
	s.mu.Unlock()
}

func (s *session) currentLevel() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.level
}

// frames concatenates all captured blocks in arrival order.
func (s *session) frames() []float32 {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]float32, 0, s.count)
	for _, block := range s.blocks {
		out = append(out, block...)
	}
	return out
}

func rms(block []float32) float64 {
	if len(block) == 0 {
		return 0
	}
	var sum float64
	for _, v := range block {
		sum += float64(v) * float64(v)
	}
	return math.Sqrt(sum / float64(len(block)))
}

// pcm16 scales a float sample to 16-bit PCM, clamping to the
// representable range so samples slightly over full scale cannot wrap.
func pcm16(v float32) int {
	s := int(float64(v) * 32767)
	if s > 32767 {
		return 32767
	}
	if s < -32768 {
		return -32768
	}
	return s
}
