package bootstrap

import (
	"log/slog"

	"whisperkey/internal/audio"
	"whisperkey/internal/config"
	"whisperkey/internal/engine"
	"whisperkey/internal/inject"
	"whisperkey/internal/logging"
	"whisperkey/internal/notify"
	"whisperkey/internal/ports"
	"whisperkey/internal/retention"
	"whisperkey/internal/textproc"
	"whisperkey/internal/usecase"
)

// Services is the assembled runtime graph.
type Services struct {
	Controller *usecase.Controller
	Pipeline   *usecase.Pipeline
	Capture    *audio.Capture
	Engine     *engine.Engine
	Config     config.Config
	Log        *slog.Logger
}

// Build wires all backend dependencies for the current runtime. The
// pipeline worker is started, a startup retention sweep runs, and the
// model preload kicks off in the background before Build returns.
func Build(eventSink ports.EventSink) (Services, error) {
	cfg, err := config.Load()
	if err != nil {
		return Services{}, err
	}
	log := logging.New(cfg.Log.Path)

	rules, err := textproc.LoadRules(cfg.Rules.Path)
	if err != nil {
		return Services{}, err
	}
	chain := textproc.NewChain(
		textproc.NewReplacer(rules, log),
		textproc.NewCorrector(cfg.AI, log),
	)

	capture := audio.NewCapture(cfg.WorkingPath, log)
	stt := engine.New(cfg.Engine.ModelPath, cfg.Engine.Threads, log)
	platform := inject.NewPlatform()
	keeper := retention.NewManager(cfg.Retention.Dir, cfg.Retention.Days, log)

	pipeline := usecase.NewPipeline(
		stt,
		chain,
		inject.New(platform, cfg.AutoPaste, log),
		keeper,
		notify.New(log),
		eventSink,
		usecase.PipelineConfig{
			Language:         cfg.Language,
			SilenceThreshold: cfg.SilenceThreshold,
		},
		log,
	)
	pipeline.Start()

	controller := usecase.NewController(
		capture,
		platform,
		pipeline,
		eventSink,
		usecase.ControllerConfig{Device: cfg.Microphone},
		log,
	)

	keeper.Sweep()
	stt.Preload()

	return Services{
		Controller: controller,
		Pipeline:   pipeline,
		Capture:    capture,
		Engine:     stt,
		Config:     cfg,
		Log:        log,
	}, nil
}
