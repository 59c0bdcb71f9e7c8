package engine

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

type fakeModel struct {
	mu       sync.Mutex
	calls    int
	out      modelOutput
	err      error
	lastLang string
}

func (m *fakeModel) process(samples []float32, language string) (modelOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.lastLang = language
	if m.err != nil {
		err := m.err
		m.err = nil
		return modelOutput{}, err
	}
	return m.out, nil
}

func (m *fakeModel) close() error { return nil }

func writeTestWAV(t *testing.T, dir string) string {
	t.Helper()

	path := filepath.Join(dir, "input.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	enc := wav.NewEncoder(f, sampleRate, 16, 1, 1)
	data := make([]int, sampleRate/4)
	for i := range data {
		data[i] = 12000 // loud enough to pass the silence gate
	}
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	_ = f.Close()
	return path
}

func testEngine(model speechModel, loadErr error) (*Engine, *atomic.Int32) {
	loads := &atomic.Int32{}
	e := New("model.bin", 2, slog.New(slog.NewTextHandler(os.Stderr, nil)))
	e.load = func(path string, threads int) (speechModel, error) {
		loads.Add(1)
		if loadErr != nil {
			return nil, loadErr
		}
		return model, nil
	}
	return e, loads
}

func TestTranscribeAutoLanguageDetection(t *testing.T) {
	t.Parallel()

	model := &fakeModel{out: modelOutput{
		segments:   []string{" hello ", "", "world"},
		language:   "en",
		confidence: 0.93,
	}}
	e, _ := testEngine(model, nil)
	path := writeTestWAV(t, t.TempDir())

	res, err := e.Transcribe(context.Background(), path, "auto", 500*time.Millisecond)
	if err != nil {
		t.Fatalf("transcribe failed: %v", err)
	}
	if res.Text != "hello world" {
		t.Fatalf("unexpected text: %q", res.Text)
	}
	if !res.LanguageDetected || res.Language != "en" || res.Confidence != 0.93 {
		t.Fatalf("expected detection fields, got %+v", res)
	}
	if model.lastLang != "auto" {
		t.Fatalf("expected auto hint passed through, got %q", model.lastLang)
	}
}

func TestTranscribeExplicitLanguageOmitsDetection(t *testing.T) {
	t.Parallel()

	model := &fakeModel{out: modelOutput{segments: []string{"privet"}, language: "ru", confidence: 0.99}}
	e, _ := testEngine(model, nil)
	path := writeTestWAV(t, t.TempDir())

	res, err := e.Transcribe(context.Background(), path, "ru", 0)
	if err != nil {
		t.Fatalf("transcribe failed: %v", err)
	}
	if res.LanguageDetected || res.Language != "" || res.Confidence != 0 {
		t.Fatalf("detection fields must be absent for explicit hint, got %+v", res)
	}
}

func TestPreloadAndRequestCollapseToOneLoad(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	loads := &atomic.Int32{}
	model := &fakeModel{out: modelOutput{segments: []string{"ok"}}}

	e := New("model.bin", 2, slog.New(slog.NewTextHandler(os.Stderr, nil)))
	e.load = func(path string, threads int) (speechModel, error) {
		loads.Add(1)
		<-release
		return model, nil
	}

	e.Preload()
	// Give the preload goroutine a chance to enter Loading.
	for {
		e.mu.Lock()
		loading := e.state == stateLoading
		e.mu.Unlock()
		if loading {
			break
		}
		time.Sleep(time.Millisecond)
	}

	path := writeTestWAV(t, t.TempDir())
	done := make(chan error, 1)
	go func() {
		_, err := e.Transcribe(context.Background(), path, "en", 0)
		done <- err
	}()

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("transcribe failed: %v", err)
	}
	if got := loads.Load(); got != 1 {
		t.Fatalf("expected a single model load, got %d", got)
	}
}

func TestLoadFailureIsRetriedOnNextRequest(t *testing.T) {
	t.Parallel()

	model := &fakeModel{out: modelOutput{segments: []string{"ok"}}}
	loads := &atomic.Int32{}
	fail := &atomic.Bool{}
	fail.Store(true)

	e := New("model.bin", 2, slog.New(slog.NewTextHandler(os.Stderr, nil)))
	e.load = func(path string, threads int) (speechModel, error) {
		loads.Add(1)
		if fail.Load() {
			return nil, errors.New("model file missing")
		}
		return model, nil
	}

	path := writeTestWAV(t, t.TempDir())

	if _, err := e.Transcribe(context.Background(), path, "en", 0); err == nil {
		t.Fatalf("expected load failure")
	}

	fail.Store(false)
	res, err := e.Transcribe(context.Background(), path, "en", 0)
	if err != nil {
		t.Fatalf("expected retry to succeed: %v", err)
	}
	if res.Text != "ok" {
		t.Fatalf("unexpected text: %q", res.Text)
	}
	if got := loads.Load(); got != 2 {
		t.Fatalf("expected two load attempts, got %d", got)
	}
}

func TestTransientDecodeErrorLeavesEngineReady(t *testing.T) {
	t.Parallel()

	model := &fakeModel{
		out: modelOutput{segments: []string{"second try"}},
		err: errors.New("decode blew up"),
	}
	e, loads := testEngine(model, nil)
	path := writeTestWAV(t, t.TempDir())

	if _, err := e.Transcribe(context.Background(), path, "en", 0); err == nil {
		t.Fatalf("expected decode error")
	}

	res, err := e.Transcribe(context.Background(), path, "en", 0)
	if err != nil {
		t.Fatalf("expected engine to stay ready: %v", err)
	}
	if res.Text != "second try" {
		t.Fatalf("unexpected text: %q", res.Text)
	}
	if got := loads.Load(); got != 1 {
		t.Fatalf("decode error must not trigger a reload, got %d loads", got)
	}
}

func TestTranscribeMissingFile(t *testing.T) {
	t.Parallel()

	e, _ := testEngine(&fakeModel{}, nil)
	if _, err := e.Transcribe(context.Background(), filepath.Join(t.TempDir(), "nope.wav"), "en", 0); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
