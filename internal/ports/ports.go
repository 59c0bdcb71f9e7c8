package ports

import (
	"context"
	"time"

	"whisperkey/internal/domain"
)

// AudioCapture owns the single microphone input stream.
type AudioCapture interface {
	// Start opens the stream for the named device ("default" or "" selects
	// the platform default input). Failure leaves the capture inactive.
	Start(device string) error
	// Stop closes the stream and writes the captured frames to the working
	// WAV file, returning its path. Returns domain.ErrNoAudio when nothing
	// was captured.
	Stop() (string, error)
	// Active reports whether a stream is currently open.
	Active() bool
	// Level returns the most recent RMS level, 0.0 when idle. Safe to call
	// from any goroutine.
	Level() float64
	// ListDevices enumerates input-capable device names, "default" first.
	ListDevices() ([]string, error)
}

// Engine converts a WAV file into text.
type Engine interface {
	// Preload starts loading the model in the background without blocking.
	Preload()
	// Transcribe runs the model over the file. A languageHint of "auto"
	// enables language detection; silenceThreshold tunes the silence gate.
	Transcribe(ctx context.Context, path, languageHint string, silenceThreshold time.Duration) (domain.TranscriptionResult, error)
}

// PostProcessor cleans a raw transcript. It never fails: every stage
// degrades to returning its input unchanged.
type PostProcessor interface {
	Apply(ctx context.Context, text string) string
}

// Injector delivers the final text into the previously focused window.
type Injector interface {
	Inject(ctx context.Context, text string, focus domain.WindowHandle)
}

// Platform is the minimal OS capability surface the pipeline depends on.
type Platform interface {
	CaptureActiveWindow() domain.WindowHandle
	RestoreActiveWindow(handle domain.WindowHandle) error
	SendPaste() error
}

// Retention manages the lifetime of audio artifacts.
type Retention interface {
	// CleanupWorkingFile disposes of the ephemeral working WAV after a
	// pipeline job, either deleting it or retaining it for the sweep.
	CleanupWorkingFile(path string)
	// Sweep deletes retained recordings older than the configured age.
	Sweep()
}

// Notifier shows desktop notifications.
type Notifier interface {
	Notify(title, message string)
}

// EventSink emits backend state and events to the UI collaborators
// (overlay, floating button, settings window).
type EventSink interface {
	RecordingStateChanged(active bool, reason domain.StateReason)
	TranscriptReady(raw, corrected string)
	PipelineError(code domain.ErrorCode, detail string)
}
