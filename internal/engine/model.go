package engine

import (
	"fmt"
	"strings"

	"github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"
)

// whisperModel adapts the whisper.cpp Go bindings to the speechModel
// seam. One context is reused across calls; the engine's procMu is the
// only thing keeping it single-flight.
type whisperModel struct {
	model whisper.Model
	wctx  whisper.Context
}

func loadWhisperModel(path string, threads int) (speechModel, error) {
	model, err := whisper.New(path)
	if err != nil {
		return nil, fmt.Errorf("load whisper model %q: %w", path, err)
	}
	wctx, err := model.NewContext()
	if err != nil {
		_ = model.Close()
		return nil, fmt.Errorf("create whisper context: %w", err)
	}

	wctx.SetTranslate(false)
	if threads > 0 {
		wctx.SetThreads(uint(threads))
	}

	return &whisperModel{model: model, wctx: wctx}, nil
}

func (w *whisperModel) process(samples []float32, language string) (modelOutput, error) {
	if err := w.wctx.SetLanguage(language); err != nil {
		return modelOutput{}, fmt.Errorf("set language %q: %w", language, err)
	}

	var out modelOutput
	var probSum float64
	var probCount int

	err := w.wctx.Process(samples, nil, func(segment whisper.Segment) {
		text := strings.TrimSpace(segment.Text)
		if text != "" {
			out.segments = append(out.segments, text)
		}
		for _, token := range segment.Tokens {
			probSum += float64(token.P)
			probCount++
		}
	}, nil)
	if err != nil {
		return modelOutput{}, fmt.Errorf("process audio: %w", err)
	}

	out.language = w.wctx.DetectedLanguage()
	if probCount > 0 {
		out.confidence = probSum / float64(probCount)
	}
	return out, nil
}

func (w *whisperModel) close() error {
	return w.model.Close()
}
