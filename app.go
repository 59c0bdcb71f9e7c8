package main

import (
	"context"
	"fmt"

	"github.com/wailsapp/wails/v2/pkg/runtime"

	"whisperkey/internal/bootstrap"
	"whisperkey/internal/config"
	"whisperkey/internal/domain"
	"whisperkey/internal/hotkey"
	"whisperkey/internal/usecase"
)

const (
	eventRecording  = "whisperkey:recording"
	eventTranscript = "whisperkey:transcript"
	eventError      = "whisperkey:error"
)

// App is the Wails application root.
type App struct {
	ctx context.Context

	controller *usecase.Controller
	pipeline   *usecase.Pipeline
	capture    interface{ Level() float64 }
	devices    interface{ ListDevices() ([]string, error) }
	engine     interface{ Close() error }
	cfg        config.Config
	bootErr    error
}

func NewApp() *App {
	return &App{}
}

func (a *App) startup(ctx context.Context) {
	a.ctx = ctx

	services, err := bootstrap.Build(a)
	if err != nil {
		a.bootErr = err
		a.PipelineError(domain.ErrorCodeStartup, err.Error())
		return
	}

	a.cfg = services.Config
	a.controller = services.Controller
	a.pipeline = services.Pipeline
	a.capture = services.Capture
	a.devices = services.Capture
	a.engine = services.Engine

	if err := hotkey.Register(a.cfg.Hotkey, func() { a.Toggle() }); err != nil {
		services.Log.Warn("hotkey registration failed", "hotkey", a.cfg.Hotkey, "error", err)
		a.PipelineError(domain.ErrorCodeHotkey, err.Error())
	}

	a.RecordingStateChanged(false, domain.ReasonReady)
}

// shutdown tears down in dependency order: the hotkey loop stops
// feeding toggles first, then the pipeline drains, then the model is
// released.
func (a *App) shutdown(ctx context.Context) {
	hotkey.Stop()
	if a.pipeline != nil {
		a.pipeline.Stop()
	}
	if a.engine != nil {
		_ = a.engine.Close()
	}
}

// Toggle flips recording on or off and returns the resulting status.
func (a *App) Toggle() domain.Status {
	if err := a.requireReady(); err != nil {
		return domain.Status{State: domain.RecorderStateIdle, Message: err.Error()}
	}
	return a.controller.Toggle()
}

// GetStatus returns the current recorder status.
func (a *App) GetStatus() domain.Status {
	if a.controller == nil {
		if a.bootErr != nil {
			return domain.Status{State: domain.RecorderStateIdle, Message: a.bootErr.Error()}
		}
		return domain.Status{State: domain.RecorderStateIdle}
	}
	return a.controller.Status()
}

// GetLevel returns the current microphone RMS level for the UI meter.
func (a *App) GetLevel() float64 {
	if a.capture == nil {
		return 0
	}
	return a.capture.Level()
}

// ListMicrophones enumerates input devices for the settings window.
func (a *App) ListMicrophones() ([]string, error) {
	if err := a.requireReady(); err != nil {
		return nil, err
	}
	return a.devices.ListDevices()
}

// GetRuntimeInfo returns non-sensitive config for the UI.
func (a *App) GetRuntimeInfo() map[string]string {
	if a.bootErr != nil {
		return map[string]string{"error": a.bootErr.Error()}
	}

	aiState := "disabled"
	if a.cfg.AI.Enabled && a.cfg.AI.APIKey != "" {
		aiState = a.cfg.AI.Model
	}
	return map[string]string{
		"hotkey":     a.cfg.Hotkey,
		"language":   a.cfg.Language,
		"microphone": a.cfg.Microphone,
		"model":      a.cfg.Engine.ModelPath,
		"aiModel":    aiState,
		"rulesFile":  a.cfg.Rules.Path,
	}
}

func (a *App) requireReady() error {
	if a.bootErr != nil {
		return a.bootErr
	}
	if a.controller == nil {
		return fmt.Errorf("application is not initialized")
	}
	return nil
}

// RecordingStateChanged emits recorder lifecycle updates to the frontend.
func (a *App) RecordingStateChanged(active bool, reason domain.StateReason) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventRecording, map[string]any{
		"active":  active,
		"reason":  string(reason),
		"message": reasonMessage(reason),
	})
}

// TranscriptReady emits the raw and post-processed transcript.
func (a *App) TranscriptReady(raw string, corrected string) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventTranscript, map[string]string{
		"raw":       raw,
		"corrected": corrected,
	})
}

// PipelineError emits backend errors to the UI.
func (a *App) PipelineError(code domain.ErrorCode, detail string) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventError, map[string]string{
		"code":    string(code),
		"message": errorMessage(code, detail),
		"detail":  detail,
	})
}

func reasonMessage(reason domain.StateReason) string {
	switch reason {
	case domain.ReasonReady:
		return "Ready"
	case domain.ReasonRecordingStarted:
		return "Recording..."
	case domain.ReasonMicUnavailable:
		return "Microphone unavailable"
	case domain.ReasonTranscribing:
		return "Recording stopped. Transcribing..."
	case domain.ReasonNoAudio:
		return "No audio captured"
	case domain.ReasonStopFailed:
		return "Recording could not be saved"
	default:
		return ""
	}
}

func errorMessage(code domain.ErrorCode, detail string) string {
	switch code {
	case domain.ErrorCodeStartup:
		return "Startup failed"
	case domain.ErrorCodeAudioStart:
		return "Could not start recording"
	case domain.ErrorCodeAudioStop:
		return "Audio stop issue"
	case domain.ErrorCodeHotkey:
		return "Hotkey registration failed"
	case domain.ErrorCodeModelLoad:
		return "Speech model failed to load"
	case domain.ErrorCodeTranscription:
		return "Transcription error"
	case domain.ErrorCodeAICorrection:
		return "AI correction failed"
	case domain.ErrorCodeClipboard:
		return "Clipboard write failed"
	case domain.ErrorCodePaste:
		return "Paste failed"
	case domain.ErrorCodeRetention:
		return "Recording cleanup failed"
	case domain.ErrorCodePipeline:
		return "Processing error"
	default:
		if detail == "" {
			return "Unknown error"
		}
		return detail
	}
}
