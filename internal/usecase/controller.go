package usecase

import (
	"errors"
	"log/slog"
	"sync"

	"whisperkey/internal/domain"
	"whisperkey/internal/ports"
)

// ControllerConfig carries the recording-side settings.
type ControllerConfig struct {
	Device string
}

// Controller owns the recording toggle. It is the only writer of the
// recorder state; the hotkey handler, the UI button, and tests all call
// Toggle and the mutex makes rapid bursts collapse into a clean
// alternation of start and stop.
type Controller struct {
	audio    ports.AudioCapture
	platform ports.Platform
	pipeline *Pipeline
	events   ports.EventSink
	cfg      ControllerConfig
	log      *slog.Logger

	mu        sync.Mutex
	recording bool
	focus     domain.WindowHandle
}

func NewController(
	audio ports.AudioCapture,
	platform ports.Platform,
	pipeline *Pipeline,
	events ports.EventSink,
	cfg ControllerConfig,
	log *slog.Logger,
) *Controller {
	return &Controller{
		audio:    audio,
		platform: platform,
		pipeline: pipeline,
		events:   events,
		cfg:      cfg,
		log:      log,
	}
}

// Toggle flips between idle and recording and returns the resulting
// status. Stop hands the captured file to the pipeline and returns
// immediately; transcription progress arrives through the event sink.
func (c *Controller) Toggle() domain.Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.recording {
		return c.startLocked()
	}
	return c.stopLocked()
}

func (c *Controller) startLocked() domain.Status {
	// Captured before the stream opens so the paste lands where the user
	// was typing, not wherever focus drifted during recording.
	focus := c.platform.CaptureActiveWindow()

	if err := c.audio.Start(c.cfg.Device); err != nil {
		c.log.Error("failed to start capture", "device", c.cfg.Device, "error", err)
		c.events.PipelineError(domain.ErrorCodeAudioStart, err.Error())
		c.events.RecordingStateChanged(false, domain.ReasonMicUnavailable)
		return domain.Status{State: domain.RecorderStateIdle}
	}

	c.recording = true
	c.focus = focus
	c.log.Info("recording started", "device", c.cfg.Device)
	c.events.RecordingStateChanged(true, domain.ReasonRecordingStarted)
	return domain.Status{State: domain.RecorderStateRecording, Active: true}
}

func (c *Controller) stopLocked() domain.Status {
	c.recording = false
	focus := c.focus
	c.focus = 0

	path, err := c.audio.Stop()
	if err != nil {
		if errors.Is(err, domain.ErrNoAudio) {
			c.log.Info("recording stopped with no audio")
			c.events.RecordingStateChanged(false, domain.ReasonNoAudio)
		} else {
			c.log.Error("failed to stop capture", "error", err)
			c.events.PipelineError(domain.ErrorCodeAudioStop, err.Error())
			c.events.RecordingStateChanged(false, domain.ReasonStopFailed)
		}
		return domain.Status{State: domain.RecorderStateIdle}
	}

	c.pipeline.Submit(Job{Path: path, Focus: focus})
	c.log.Info("recording stopped, queued for transcription", "path", path)
	c.events.RecordingStateChanged(false, domain.ReasonTranscribing)
	return domain.Status{State: domain.RecorderStateIdle}
}

// Status reports the current recorder state without side effects.
func (c *Controller) Status() domain.Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.recording {
		return domain.Status{State: domain.RecorderStateRecording, Active: true}
	}
	return domain.Status{State: domain.RecorderStateIdle}
}
