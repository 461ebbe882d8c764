package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/novo-contact-backend/internal/jobs/worker"
	"github.com/yungbote/novo-contact-backend/internal/modules/dialog"
	"github.com/yungbote/novo-contact-backend/internal/modules/telephony"
	"github.com/yungbote/novo-contact-backend/internal/modules/voice"
	"github.com/yungbote/novo-contact-backend/internal/observability"
	"github.com/yungbote/novo-contact-backend/internal/pkg/logger"
	"github.com/yungbote/novo-contact-backend/internal/realtime"
	"github.com/yungbote/novo-contact-backend/internal/realtime/bus"
	"github.com/yungbote/novo-contact-backend/internal/services"
	"github.com/yungbote/novo-contact-backend/internal/temporalx/temporalworker"
)

type Services struct {
	Auth          services.AuthService
	Transcript    services.TranscriptService
	Contact       services.ContactService
	Call          services.CallService
	ScheduledCall services.ScheduledCallService
	Notifier      services.CallNotifier

	Orchestrator *dialog.Orchestrator
	Registry     dialog.Registry
	Clips        dialog.ClipStore
	Assets       *dialog.Assets
	Synth        *voice.Synthesizer
	Recognizer   voice.Recognizer
	Links        *voice.LinkSigner

	Worker *worker.Worker
	// Sweeper drives Worker ticks from Temporal when a client is configured.
	Sweeper *temporalworker.Runner
	// Bus and Emitter are set when Redis mirrors SSE broadcasts across
	// instances.
	Bus     bus.Bus
	Emitter *services.RedisEmitter
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, clients Clients, reposet Repos, hub *realtime.SSEHub, metrics *observability.Metrics) (Services, error) {
	log.Info("Wiring services...")

	dialogCfg := dialog.DefaultConfig()
	if cfg.DialogConfigPath != "" {
		loaded, err := dialog.LoadConfig(cfg.DialogConfigPath)
		if err != nil {
			return Services{}, fmt.Errorf("load dialog config: %w", err)
		}
		dialogCfg = loaded
	}

	// Realtime fan-out: through Redis when available so every instance's
	// hub sees the event, otherwise straight into the local hub.
	var (
		emitter      services.SSEEmitter = &services.HubEmitter{Hub: hub}
		redisEmitter *services.RedisEmitter
		sseBus       bus.Bus
	)
	if clients.Redis != nil {
		b, err := bus.NewRedisBus(log, clients.Redis)
		if err != nil {
			return Services{}, fmt.Errorf("init redis SSE bus: %w", err)
		}
		sseBus = b
		redisEmitter = services.NewRedisEmitter(log, b, cfg.SSEEmitBuffer)
		emitter = redisEmitter
	}
	notifier := services.NewCallNotifier(emitter)

	// Active calls and synthesized clips
	var (
		registry dialog.Registry
		clips    dialog.ClipStore
	)
	if clients.Redis != nil {
		registry = dialog.NewRedisRegistry(clients.Redis, cfg.ActiveCallTTL)
		clips = dialog.NewRedisClipStore(clients.Redis, cfg.ClipTTL)
	} else {
		registry = dialog.NewMemoryRegistry(cfg.ActiveCallTTL)
		clips = dialog.NewMemoryClipStore(cfg.ClipTTL)
	}

	// Speech
	var tts voice.TTS
	var gen dialog.TextGenerator
	if clients.Openai != nil {
		tts = clients.Openai
		gen = clients.Openai
	}
	synth := voice.NewSynthesizer(log, tts)
	var recognizer voice.Recognizer
	switch {
	case clients.GcpSpeech != nil:
		recognizer = voice.NewGCPRecognizer(log, clients.GcpSpeech, dialogCfg.Language)
	case clients.Openai != nil:
		recognizer = voice.NewSTTRecognizer(log, clients.Openai)
	default:
		recognizer = voice.NopRecognizer()
	}

	authService := services.NewAuthService(db, log, reposet.User, reposet.UserToken, cfg.JWTSecretKey, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	transcript := services.NewTranscriptService(db, log, reposet.Dialog)
	contactService := services.NewContactService(log, reposet.Contact, transcript)

	links, err := voice.NewLinkSigner(cfg.JWTSecretKey, cfg.ClipTTL)
	if err != nil {
		return Services{}, fmt.Errorf("init synthesis link signer: %w", err)
	}

	orch, err := dialog.NewOrchestrator(dialog.Deps{
		Log:        log,
		Config:     dialogCfg,
		BaseURL:    cfg.BaseURL,
		Registry:   registry,
		Classifier: dialog.NewClassifier(log, gen, dialogCfg),
		Responder:  dialog.NewResponder(log, gen, dialogCfg),
		Synth:      synth,
		Clips:      clips,
		Transcript: transcript,
		Notifier:   notifier,
		Links:      links,
		Observer:   metrics,
	})
	if err != nil {
		return Services{}, fmt.Errorf("init orchestrator: %w", err)
	}

	driver := telephony.NewDriver(log, clients.Twilio, telephony.Config{
		BaseURL:    cfg.BaseURL,
		From:       clients.TwilioConfig.DefaultFrom,
		Mode:       cfg.CallMode,
		TimeoutSec: cfg.CallTimeoutSec,
	})
	callService := services.NewCallService(log, reposet.Contact, driver, registry, notifier)
	scheduled := services.NewScheduledCallService(log, reposet.ScheduledCall, reposet.Contact, notifier)

	workerCfg := worker.Config{
		Interval:    cfg.RetryWorkerInterval,
		Concurrency: cfg.RetryWorkerConcurrency,
	}
	if metrics != nil {
		workerCfg.Observer = metrics
	}
	retryWorker := worker.NewWorker(log, reposet.ScheduledCall, callService, notifier, workerCfg)

	var sweeper *temporalworker.Runner
	if clients.Temporal != nil {
		sweeper, err = temporalworker.NewRunner(log, clients.Temporal, clients.TemporalConfig, retryWorker, temporalworker.Options{
			Interval:    cfg.RetryWorkerInterval,
			Concurrency: cfg.RetryWorkerConcurrency,
		})
		if err != nil {
			return Services{}, fmt.Errorf("init temporal worker: %w", err)
		}
	}

	return Services{
		Auth:          authService,
		Transcript:    transcript,
		Contact:       contactService,
		Call:          callService,
		ScheduledCall: scheduled,
		Notifier:      notifier,
		Orchestrator:  orch,
		Registry:      registry,
		Clips:         clips,
		Assets:        dialog.NewAssets(log, cfg.AssetsDir, dialogCfg, synth),
		Synth:         synth,
		Recognizer:    recognizer,
		Links:         links,
		Worker:        retryWorker,
		Sweeper:       sweeper,
		Bus:           sseBus,
		Emitter:       redisEmitter,
	}, nil
}
