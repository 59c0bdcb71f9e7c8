package domain

import "errors"

// ErrNoAudio signals that a recording stopped without capturing any frames.
// It is not a failure; the pipeline is simply skipped for that cycle.
var ErrNoAudio = errors.New("no audio captured")

// ErrModelLoad marks transcription failures caused by the model failing
// to load, as opposed to a per-recording decode failure.
var ErrModelLoad = errors.New("model load failed")

// RecorderState models the dictation toggle lifecycle.
type RecorderState string

const (
	RecorderStateIdle      RecorderState = "idle"
	RecorderStateRecording RecorderState = "recording"
)

// StateReason provides a structured reason for recorder state transitions.
type StateReason string

const (
	ReasonReady            StateReason = "ready"
	ReasonRecordingStarted StateReason = "recording_started"
	ReasonMicUnavailable   StateReason = "mic_unavailable"
	ReasonTranscribing     StateReason = "transcribing"
	ReasonNoAudio          StateReason = "no_audio"
	ReasonStopFailed       StateReason = "stop_failed"
)

// ErrorCode identifies non-fatal backend errors surfaced to the UI.
type ErrorCode string

const (
	ErrorCodeStartup       ErrorCode = "startup"
	ErrorCodeAudioStart    ErrorCode = "audio_start"
	ErrorCodeAudioStop     ErrorCode = "audio_stop"
	ErrorCodeHotkey        ErrorCode = "hotkey"
	ErrorCodeModelLoad     ErrorCode = "model_load"
	ErrorCodeTranscription ErrorCode = "transcription"
	ErrorCodeAICorrection  ErrorCode = "ai_correction"
	ErrorCodeClipboard     ErrorCode = "clipboard"
	ErrorCodePaste         ErrorCode = "paste"
	ErrorCodeRetention     ErrorCode = "retention"
	ErrorCodePipeline      ErrorCode = "pipeline"
)

// WindowHandle identifies the OS window that held input focus when a
// recording started. Zero means no window was captured.
type WindowHandle uintptr

// TranscriptionResult is the output of one speech-to-text run.
// Language and Confidence are populated only when the language hint
// was "auto"; LanguageDetected reports whether they are meaningful.
type TranscriptionResult struct {
	Text             string
	Language         string
	Confidence       float64
	LanguageDetected bool
}

// Status summarizes the current recorder status.
type Status struct {
	State   RecorderState `json:"state"`
	Active  bool          `json:"active"`
	Message string        `json:"message,omitempty"`
}
