package usecase

import (
	"errors"
	"sync"
	"testing"

	"whisperkey/internal/domain"
)

func newTestController(capture *fakeCapture, sink *fakeSink) (*Controller, *fakeRetention) {
	retention := &fakeRetention{}
	pipeline := NewPipeline(
		&fakeEngine{result: domain.TranscriptionResult{Text: "hi"}},
		fakePost{},
		&fakeInjector{},
		retention,
		&fakeNotifier{},
		sink,
		PipelineConfig{Language: "auto"},
		testLogger(),
	)
	pipeline.Start()
	ctrl := NewController(capture, &fakePlatform{handle: 7}, pipeline, sink, ControllerConfig{Device: "default"}, testLogger())
	return ctrl, retention
}

func TestToggleStartsAndStopsRecording(t *testing.T) {
	t.Parallel()

	capture := &fakeCapture{stopPath: "/tmp/a.wav"}
	sink := &fakeSink{}
	ctrl, _ := newTestController(capture, sink)

	status := ctrl.Toggle()
	if status.State != domain.RecorderStateRecording || !status.Active {
		t.Fatalf("first toggle must start recording, got %+v", status)
	}
	if !capture.Active() {
		t.Fatalf("capture must be active")
	}

	status = ctrl.Toggle()
	if status.State != domain.RecorderStateIdle {
		t.Fatalf("second toggle must stop, got %+v", status)
	}
	if capture.Active() {
		t.Fatalf("capture must be stopped")
	}

	states := sink.byKind("state")
	if len(states) != 2 {
		t.Fatalf("expected two state events, got %d", len(states))
	}
	if states[0].reason != domain.ReasonRecordingStarted || states[1].reason != domain.ReasonTranscribing {
		t.Fatalf("unexpected reasons: %+v", states)
	}
}

func TestToggleStartFailureStaysIdle(t *testing.T) {
	t.Parallel()

	capture := &fakeCapture{startErr: errors.New("device busy")}
	sink := &fakeSink{}
	ctrl, _ := newTestController(capture, sink)

	status := ctrl.Toggle()
	if status.State != domain.RecorderStateIdle {
		t.Fatalf("start failure must stay idle, got %+v", status)
	}

	errs := sink.byKind("error")
	if len(errs) != 1 || errs[0].code != domain.ErrorCodeAudioStart {
		t.Fatalf("expected audio_start error, got %+v", errs)
	}
	states := sink.byKind("state")
	if len(states) != 1 || states[0].active || states[0].reason != domain.ReasonMicUnavailable {
		t.Fatalf("expected mic_unavailable state, got %+v", states)
	}
}

func TestToggleNoAudioSkipsPipeline(t *testing.T) {
	t.Parallel()

	capture := &fakeCapture{stopErr: domain.ErrNoAudio}
	sink := &fakeSink{}
	ctrl, retention := newTestController(capture, sink)

	ctrl.Toggle()
	status := ctrl.Toggle()
	if status.State != domain.RecorderStateIdle {
		t.Fatalf("expected idle after no-audio stop, got %+v", status)
	}

	states := sink.byKind("state")
	if last := states[len(states)-1]; last.reason != domain.ReasonNoAudio {
		t.Fatalf("expected no_audio reason, got %+v", last)
	}
	if len(sink.byKind("error")) != 0 {
		t.Fatalf("no-audio is not an error")
	}

	retention.mu.Lock()
	cleaned := len(retention.cleaned)
	retention.mu.Unlock()
	if cleaned != 0 {
		t.Fatalf("no job should have reached the pipeline")
	}
}

func TestToggleStopErrorReportsAudioStop(t *testing.T) {
	t.Parallel()

	capture := &fakeCapture{stopErr: errors.New("stream wedged")}
	sink := &fakeSink{}
	ctrl, _ := newTestController(capture, sink)

	ctrl.Toggle()
	ctrl.Toggle()

	errs := sink.byKind("error")
	if len(errs) != 1 || errs[0].code != domain.ErrorCodeAudioStop {
		t.Fatalf("expected audio_stop error, got %+v", errs)
	}
	states := sink.byKind("state")
	if last := states[len(states)-1]; last.reason != domain.ReasonStopFailed {
		t.Fatalf("a disk error is not a silent capture, got %+v", last)
	}
}

func TestToggleBurstNeverDoubleStarts(t *testing.T) {
	t.Parallel()

	capture := &fakeCapture{stopPath: "/tmp/a.wav"}
	sink := &fakeSink{}
	ctrl, _ := newTestController(capture, sink)

	const toggles = 40
	var wg sync.WaitGroup
	for i := 0; i < toggles; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctrl.Toggle()
		}()
	}
	wg.Wait()

	capture.mu.Lock()
	starts, stops := capture.starts, capture.stops
	capture.mu.Unlock()

	// Toggles strictly alternate under the lock: an even burst lands idle
	// with equal starts and stops.
	if starts != toggles/2 || stops != toggles/2 {
		t.Fatalf("expected %d starts and stops, got %d/%d", toggles/2, starts, stops)
	}
	if ctrl.Status().State != domain.RecorderStateIdle {
		t.Fatalf("even toggle count must end idle")
	}
	if capture.Active() {
		t.Fatalf("capture must be inactive after burst")
	}
}

func TestStatusReflectsRecordingState(t *testing.T) {
	t.Parallel()

	capture := &fakeCapture{stopPath: "/tmp/a.wav"}
	ctrl, _ := newTestController(capture, &fakeSink{})

	if got := ctrl.Status(); got.State != domain.RecorderStateIdle || got.Active {
		t.Fatalf("fresh controller must be idle, got %+v", got)
	}
	ctrl.Toggle()
	if got := ctrl.Status(); got.State != domain.RecorderStateRecording || !got.Active {
		t.Fatalf("expected recording status, got %+v", got)
	}
}
