package engine

import (
	"fmt"
	"os"

	"github.com/go-audio/wav"
)

// readWAV decodes a working-file WAV into mono float32 samples in [-1, 1].
func readWAV(path string) ([]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open wav: %w", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("decode wav: %w", err)
	}
	if dec.NumChans != 1 {
		return nil, fmt.Errorf("expected mono audio, got %d channels", dec.NumChans)
	}
	if dec.BitDepth != 16 {
		return nil, fmt.Errorf("expected 16-bit audio, got %d bits", dec.BitDepth)
	}

	samples := make([]float32, len(buf.Data))
	for i, v := range buf.Data {
		samples[i] = float32(v) / 32768.0
	}
	return samples, nil
}
