package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"whisperkey/internal/domain"
)

// loadState tracks the lazy model lifecycle.
type loadState int

const (
	stateUnloaded loadState = iota
	stateLoading
	stateReady
	stateFailed
)

// modelOutput is what one inference run produces.
type modelOutput struct {
	segments   []string
	language   string
	confidence float64
}

// speechModel is the seam over the whisper.cpp bindings. Implementations
// are not reentrant; the engine serializes access.
type speechModel interface {
	process(samples []float32, language string) (modelOutput, error)
	close() error
}

type modelLoader func(path string, threads int) (speechModel, error)

// Engine lazily loads a speech-to-text model and converts WAV files to
// text. A background preload and an early transcription request collapse
// into a single load; requesters block until the load resolves. A failed
// load marks the engine Failed and is retried on the next request; a
// per-call decode error leaves the engine Ready.
type Engine struct {
	modelPath string
	threads   int
	load      modelLoader
	log       *slog.Logger

	mu      sync.Mutex
	state   loadState
	model   speechModel
	loadErr error
	loaded  chan struct{}

	// procMu serializes inference: the model context is not reentrant.
	procMu sync.Mutex
}

func New(modelPath string, threads int, log *slog.Logger) *Engine {
	return &Engine{
		modelPath: modelPath,
		threads:   threads,
		load:      loadWhisperModel,
		log:       log,
	}
}

// Preload starts loading the model in the background. It never blocks
// the caller.
func (e *Engine) Preload() {
	go func() {
		if err := e.ensureLoaded(); err != nil {
			e.log.Warn("model preload failed", "error", err)
		}
	}()
}

// Transcribe runs the model over the WAV file at path. When languageHint
// is "auto" the result carries the detected language and a confidence
// score; with an explicit hint the detection fields are absent.
func (e *Engine) Transcribe(ctx context.Context, path, languageHint string, silenceThreshold time.Duration) (domain.TranscriptionResult, error) {
	if err := e.ensureLoaded(); err != nil {
		return domain.TranscriptionResult{}, fmt.Errorf("%w: %v", domain.ErrModelLoad, err)
	}
	if err := ctx.Err(); err != nil {
		return domain.TranscriptionResult{}, err
	}

	samples, err := readWAV(path)
	if err != nil {
		return domain.TranscriptionResult{}, err
	}
	samples = trimSilence(samples, silenceThreshold)
	if len(samples) == 0 {
		return domain.TranscriptionResult{}, nil
	}

	language := strings.TrimSpace(languageHint)
	if language == "" {
		language = "auto"
	}

	e.mu.Lock()
	model := e.model
	e.mu.Unlock()

	e.procMu.Lock()
	out, err := model.process(samples, language)
	e.procMu.Unlock()
	if err != nil {
		// Transient decode failure; the engine stays Ready for retry.
		return domain.TranscriptionResult{}, fmt.Errorf("transcribe: %w", err)
	}

	result := domain.TranscriptionResult{Text: joinSegments(out.segments)}
	if language == "auto" {
		result.Language = out.language
		result.Confidence = out.confidence
		result.LanguageDetected = true
	}
	return result, nil
}

// ensureLoaded resolves the load state, performing the load if needed.
// Concurrent callers during Loading block until the in-flight load
// finishes instead of starting a second one.
func (e *Engine) ensureLoaded() error {
	for {
		e.mu.Lock()
		switch e.state {
		case stateReady:
			e.mu.Unlock()
			return nil
		case stateLoading:
			ch := e.loaded
			e.mu.Unlock()
			<-ch
			continue
		case stateFailed, stateUnloaded:
			e.state = stateLoading
			e.loaded = make(chan struct{})
			ch := e.loaded
			e.mu.Unlock()

			model, err := e.load(e.modelPath, e.threads)

			e.mu.Lock()
			if err != nil {
				e.state = stateFailed
				e.loadErr = err
			} else {
				e.state = stateReady
				e.model = model
				e.loadErr = nil
			}
			close(ch)
			e.mu.Unlock()
			if err != nil {
				return err
			}
			e.log.Info("model loaded", "path", e.modelPath)
			return nil
		}
	}
}

// Close releases the model if one was loaded.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.model == nil {
		return nil
	}
	err := e.model.close()
	e.model = nil
	e.state = stateUnloaded
	return err
}

func joinSegments(segments []string) string {
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		s = strings.TrimSpace(s)
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}
