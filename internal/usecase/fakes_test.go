package usecase

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"time"

	"whisperkey/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, nil))
}

type fakeCapture struct {
	mu       sync.Mutex
	active   bool
	starts   int
	stops    int
	startErr error
	stopErr  error
	stopPath string
}

func (f *fakeCapture) Start(device string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.starts++
	if f.startErr != nil {
		return f.startErr
	}
	if f.active {
		return nil
	}
	f.active = true
	return nil
}

func (f *fakeCapture) Stop() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops++
	f.active = false
	if f.stopErr != nil {
		return "", f.stopErr
	}
	return f.stopPath, nil
}

func (f *fakeCapture) Active() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.active
}

func (f *fakeCapture) Level() float64 { return 0 }

func (f *fakeCapture) ListDevices() ([]string, error) {
	return []string{"default"}, nil
}

type fakePlatform struct {
	handle domain.WindowHandle
}

func (f *fakePlatform) CaptureActiveWindow() domain.WindowHandle      { return f.handle }
func (f *fakePlatform) RestoreActiveWindow(domain.WindowHandle) error { return nil }
func (f *fakePlatform) SendPaste() error                              { return nil }

type fakeEngine struct {
	mu      sync.Mutex
	calls   []string
	result  domain.TranscriptionResult
	err     error
	block   chan struct{}
	running int
	maxRun  int
}

func (f *fakeEngine) Preload() {}

func (f *fakeEngine) Transcribe(ctx context.Context, path, languageHint string, silenceThreshold time.Duration) (domain.TranscriptionResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, path)
	f.running++
	if f.running > f.maxRun {
		f.maxRun = f.running
	}
	block := f.block
	f.mu.Unlock()

	if block != nil {
		<-block
	}

	f.mu.Lock()
	f.running--
	result, err := f.result, f.err
	f.mu.Unlock()
	return result, err
}

type fakePost struct{}

func (fakePost) Apply(_ context.Context, text string) string {
	return "[" + text + "]"
}

type fakeInjector struct {
	mu       sync.Mutex
	injected []string
	handles  []domain.WindowHandle
}

func (f *fakeInjector) Inject(_ context.Context, text string, focus domain.WindowHandle) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.injected = append(f.injected, text)
	f.handles = append(f.handles, focus)
}

type fakeRetention struct {
	mu      sync.Mutex
	cleaned []string
	sweeps  int
}

func (f *fakeRetention) CleanupWorkingFile(path string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cleaned = append(f.cleaned, path)
}

func (f *fakeRetention) Sweep() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sweeps++
}

type fakeNotifier struct {
	mu     sync.Mutex
	titles []string
}

func (f *fakeNotifier) Notify(title, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.titles = append(f.titles, title)
}

type sinkEvent struct {
	kind   string
	active bool
	reason domain.StateReason
	code   domain.ErrorCode
	raw    string
	final  string
}

type fakeSink struct {
	mu     sync.Mutex
	events []sinkEvent
}

func (f *fakeSink) RecordingStateChanged(active bool, reason domain.StateReason) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, sinkEvent{kind: "state", active: active, reason: reason})
}

func (f *fakeSink) TranscriptReady(raw, corrected string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, sinkEvent{kind: "transcript", raw: raw, final: corrected})
}

func (f *fakeSink) PipelineError(code domain.ErrorCode, detail string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, sinkEvent{kind: "error", code: code})
}

func (f *fakeSink) byKind(kind string) []sinkEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []sinkEvent
	for _, e := range f.events {
		if e.kind == kind {
			out = append(out, e)
		}
	}
	return out
}
