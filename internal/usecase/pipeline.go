package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"whisperkey/internal/domain"
	"whisperkey/internal/ports"
)

const jobQueueSize = 8

// Job is one captured recording handed from the controller to the
// pipeline worker.
type Job struct {
	Path  string
	Focus domain.WindowHandle
}

// PipelineConfig carries the per-job knobs the worker needs.
type PipelineConfig struct {
	Language         string
	SilenceThreshold time.Duration
}

// Pipeline runs the transcribe-process-inject sequence on a single
// background worker, so recordings are handled strictly in submission
// order and the non-reentrant model never sees two jobs at once.
type Pipeline struct {
	engine    ports.Engine
	post      ports.PostProcessor
	injector  ports.Injector
	retention ports.Retention
	notifier  ports.Notifier
	events    ports.EventSink
	cfg       PipelineConfig
	log       *slog.Logger

	jobs chan Job
	quit chan struct{}
	wg   sync.WaitGroup

	mu      sync.Mutex
	stopped bool

	startOnce sync.Once
	stopOnce  sync.Once
}

func NewPipeline(
	engine ports.Engine,
	post ports.PostProcessor,
	injector ports.Injector,
	retention ports.Retention,
	notifier ports.Notifier,
	events ports.EventSink,
	cfg PipelineConfig,
	log *slog.Logger,
) *Pipeline {
	return &Pipeline{
		engine:    engine,
		post:      post,
		injector:  injector,
		retention: retention,
		notifier:  notifier,
		events:    events,
		cfg:       cfg,
		log:       log,
		jobs:      make(chan Job, jobQueueSize),
		quit:      make(chan struct{}),
	}
}

// Start launches the single worker goroutine.
func (p *Pipeline) Start() {
	p.startOnce.Do(func() {
		p.wg.Add(1)
		go p.worker()
	})
}

// Submit enqueues a job without blocking. A full queue or a stopped
// pipeline drops the job and cleans up its working file; the hotkey
// handler must never stall, and a toggle racing shutdown must never
// crash the process.
func (p *Pipeline) Submit(job Job) {
	p.mu.Lock()
	stopped := p.stopped
	p.mu.Unlock()
	if stopped {
		p.log.Warn("pipeline stopped, dropping recording", "path", job.Path)
		p.retention.CleanupWorkingFile(job.Path)
		p.events.PipelineError(domain.ErrorCodePipeline, "processing has shut down")
		return
	}

	select {
	case p.jobs <- job:
	default:
		p.log.Warn("pipeline queue full, dropping recording", "path", job.Path)
		p.retention.CleanupWorkingFile(job.Path)
		p.events.PipelineError(domain.ErrorCodePipeline, "processing queue is full")
	}
}

// Stop signals shutdown and waits for queued work to finish. The jobs
// channel is never closed: Submit may race Stop, and a send must
// degrade to a dropped job, not a panic.
func (p *Pipeline) Stop() {
	p.stopOnce.Do(func() {
		p.mu.Lock()
		p.stopped = true
		p.mu.Unlock()
		close(p.quit)
	})
	p.wg.Wait()
}

func (p *Pipeline) worker() {
	defer p.wg.Done()
	for {
		select {
		case job := <-p.jobs:
			p.run(job)
		case <-p.quit:
			// Drain jobs queued before the stop flag was set.
			for {
				select {
				case job := <-p.jobs:
					p.run(job)
				default:
					return
				}
			}
		}
	}
}

func (p *Pipeline) run(job Job) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Error("pipeline job panicked", "panic", r, "path", job.Path)
			p.events.PipelineError(domain.ErrorCodePipeline, "internal processing error")
		}
	}()
	defer func() {
		p.retention.CleanupWorkingFile(job.Path)
		p.retention.Sweep()
	}()

	ctx := context.Background()
	started := time.Now()

	result, err := p.engine.Transcribe(ctx, job.Path, p.cfg.Language, p.cfg.SilenceThreshold)
	if err != nil {
		code := domain.ErrorCodeTranscription
		if isLoadError(err) {
			code = domain.ErrorCodeModelLoad
		}
		p.log.Error("transcription failed", "error", err, "path", job.Path)
		p.events.PipelineError(code, err.Error())
		p.notifier.Notify("Transcription failed", "The recording could not be transcribed.")
		return
	}

	raw := strings.TrimSpace(result.Text)
	if raw == "" {
		p.log.Debug("transcript empty, nothing to inject", "path", job.Path)
		return
	}
	if result.LanguageDetected {
		p.log.Debug("language detected",
			"language", result.Language,
			"confidence", result.Confidence)
	}

	final := p.post.Apply(ctx, raw)
	p.events.TranscriptReady(raw, final)
	p.injector.Inject(ctx, final, job.Focus)

	p.log.Info("recording processed",
		"chars", len(final),
		"elapsed", time.Since(started))
}

func isLoadError(err error) bool {
	return errors.Is(err, domain.ErrModelLoad)
}
