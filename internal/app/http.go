package app

import (
	"strings"

	httpserver "github.com/yungbote/novo-contact-backend/internal/http"
	httpH "github.com/yungbote/novo-contact-backend/internal/http/handlers"
	httpMW "github.com/yungbote/novo-contact-backend/internal/http/middleware"
	"github.com/yungbote/novo-contact-backend/internal/observability"
	"github.com/yungbote/novo-contact-backend/internal/pkg/logger"
	"github.com/yungbote/novo-contact-backend/internal/realtime"
)

func wireServer(log *logger.Logger, cfg Config, clients Clients, svc Services, hub *realtime.SSEHub, metrics *observability.Metrics) *httpserver.Server {
	log.Info("Wiring handlers...")

	authToken := ""
	if cfg.TwilioValidateSignature {
		authToken = strings.TrimSpace(clients.TwilioConfig.AuthToken)
		if authToken == "" {
			log.Warn("TWILIO_VALIDATE_SIGNATURE set without TWILIO_AUTH_TOKEN, webhooks are unsigned")
		}
	}
	serviceName := ""
	if cfg.Tracing.Enabled {
		serviceName = cfg.Tracing.ServiceName
	}

	return httpserver.NewServer(httpserver.RouterConfig{
		Log:             log,
		ServiceName:     serviceName,
		CORSOrigins:     cfg.CORSOrigins,
		Metrics:         metrics,
		BaseURL:         cfg.BaseURL,
		TwilioAuthToken: authToken,

		HealthHandler:        httpH.NewHealthHandler(),
		AuthHandler:          httpH.NewAuthHandler(svc.Auth),
		AuthMiddleware:       httpMW.NewAuthMiddleware(log, svc.Auth),
		RealtimeHandler:      httpH.NewRealtimeHandler(log, hub),
		ContactHandler:       httpH.NewContactHandler(svc.Contact),
		CallHandler:          httpH.NewCallHandler(svc.Call, metrics),
		ScheduledCallHandler: httpH.NewScheduledCallHandler(svc.ScheduledCall),
		VoiceHandler: httpH.NewVoiceHandler(httpH.VoiceDeps{
			Log:          log,
			Orchestrator: svc.Orchestrator,
			Synth:        svc.Synth,
			Assets:       svc.Assets,
			Clips:        svc.Clips,
			Recognizer:   svc.Recognizer,
			Links:        svc.Links,
			Metrics:      metrics,
		}),
	})
}
