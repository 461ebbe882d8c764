package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/novo-contact-backend/internal/http/handlers"
	httpMW "github.com/yungbote/novo-contact-backend/internal/http/middleware"
	"github.com/yungbote/novo-contact-backend/internal/observability"
	"github.com/yungbote/novo-contact-backend/internal/pkg/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	ServiceName string
	CORSOrigins []string
	Metrics     *observability.Metrics

	// BaseURL and TwilioAuthToken drive webhook signature checks. An
	// empty token disables them.
	BaseURL         string
	TwilioAuthToken string

	AuthHandler          *httpH.AuthHandler
	AuthMiddleware       *httpMW.AuthMiddleware
	RealtimeHandler      *httpH.RealtimeHandler
	ContactHandler       *httpH.ContactHandler
	CallHandler          *httpH.CallHandler
	ScheduledCallHandler *httpH.ScheduledCallHandler
	VoiceHandler         *httpH.VoiceHandler
	HealthHandler        *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.TraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins...))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
		r.GET("/api/health", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapF(cfg.Metrics.WriteHTTP))
	}

	api := r.Group("/api")
	{
		// Auth (public)
		if cfg.AuthHandler != nil {
			api.POST("/register", cfg.AuthHandler.Register)
			api.POST("/login", cfg.AuthHandler.Login)
			api.POST("/refresh", cfg.AuthHandler.Refresh)
		}
	}

	// Provider webhooks and audio fetches (public, optionally signed)
	if v := cfg.VoiceHandler; v != nil {
		voiceGroup := api.Group("/voice")
		voiceGroup.Use(httpMW.TwilioWebhook(cfg.Log, cfg.BaseURL, cfg.TwilioAuthToken))
		voiceGroup.POST("/answer", v.Answer)
		voiceGroup.POST("/gather", v.Gather)
		voiceGroup.POST("/status", v.Status)
		voiceGroup.GET("/tts", v.TTS)
		voiceGroup.POST("/tts", v.TTS)
		voiceGroup.GET("/assets/:name", v.Asset)
		voiceGroup.GET("/clips/:id", v.Clip)
		voiceGroup.GET("/stream", v.MediaStream)
	}

	protected := api.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		if cfg.AuthHandler != nil {
			protected.POST("/logout", cfg.AuthHandler.Logout)
		}

		// Realtime (SSE)
		if cfg.RealtimeHandler != nil {
			protected.GET("/sse/stream", cfg.RealtimeHandler.SSEStream)
			protected.POST("/sse/subscribe", cfg.RealtimeHandler.SSESubscribe)
			protected.POST("/sse/unsubscribe", cfg.RealtimeHandler.SSEUnsubscribe)
		}

		// Contacts
		if cfg.ContactHandler != nil {
			protected.POST("/contacts", cfg.ContactHandler.Create)
			protected.GET("/contacts", cfg.ContactHandler.List)
			protected.GET("/contacts/:id", cfg.ContactHandler.Get)
			protected.GET("/contacts/:id/dialogs", cfg.ContactHandler.Dialogs)
		}

		// Calls
		if cfg.CallHandler != nil {
			protected.POST("/calls/initiate", cfg.CallHandler.Initiate)
			protected.GET("/calls/:sid/status", cfg.CallHandler.Status)
		}

		// Scheduled calls
		if cfg.ScheduledCallHandler != nil {
			protected.POST("/scheduled-calls", cfg.ScheduledCallHandler.Create)
			protected.GET("/scheduled-calls", cfg.ScheduledCallHandler.List)
			protected.GET("/scheduled-calls/:id", cfg.ScheduledCallHandler.Get)
			protected.POST("/scheduled-calls/:id/cancel", cfg.ScheduledCallHandler.Cancel)
		}
	}

	return r
}
