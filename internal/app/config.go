package app

import (
	"strconv"
	"strings"
	"time"

	"github.com/yungbote/novo-contact-backend/internal/modules/telephony"
	"github.com/yungbote/novo-contact-backend/internal/observability"
	"github.com/yungbote/novo-contact-backend/internal/pkg/envutil"
	"github.com/yungbote/novo-contact-backend/internal/pkg/logger"
)

const (
	SpeechProviderOpenAI = "openai"
	SpeechProviderGCP    = "gcp"
)

type Config struct {
	Port    string
	BaseURL string

	JWTSecretKey    string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	// TwilioValidateSignature enables X-Twilio-Signature checks on the
	// voice webhooks. It needs TWILIO_AUTH_TOKEN.
	TwilioValidateSignature bool
	CallMode                telephony.Mode
	CallTimeoutSec          int

	SpeechProvider   string
	AssetsDir        string
	DialogConfigPath string

	ActiveCallTTL time.Duration
	ClipTTL       time.Duration

	RetryWorkerInterval    time.Duration
	RetryWorkerConcurrency int

	// SSEEmitBuffer bounds the queue in front of the Redis SSE bus.
	SSEEmitBuffer int

	CORSOrigins    []string
	MetricsEnabled bool
	Tracing        observability.TracingConfig
}

func LoadConfig(log *logger.Logger) Config {
	port := envutil.GetEnv("PORT", "8080", log)
	accessTokenTTLSeconds := envutil.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)
	refreshTokenTTLSeconds := envutil.GetEnvAsInt("REFRESH_TOKEN_TTL", 86400, log)

	sampleRatio, err := strconv.ParseFloat(envutil.GetEnv("OTEL_SAMPLER_RATIO", "0.1", log), 64)
	if err != nil {
		sampleRatio = 0.1
	}

	return Config{
		Port:    port,
		BaseURL: strings.TrimRight(envutil.GetEnv("BASE_URL", "http://localhost:"+port, log), "/"),

		JWTSecretKey:    envutil.GetEnv("JWT_SECRET_KEY", "defaultsecret", log),
		AccessTokenTTL:  time.Duration(accessTokenTTLSeconds) * time.Second,
		RefreshTokenTTL: time.Duration(refreshTokenTTLSeconds) * time.Second,

		TwilioValidateSignature: envutil.GetEnvAsBool("TWILIO_VALIDATE_SIGNATURE", false, log),
		CallMode:                telephony.Mode(strings.ToLower(envutil.GetEnv("TWILIO_CALL_MODE", string(telephony.ModeWebhook), log))),
		CallTimeoutSec:          envutil.GetEnvAsInt("TWILIO_RING_TIMEOUT_SECONDS", 30, log),

		SpeechProvider:   strings.ToLower(envutil.GetEnv("SPEECH_PROVIDER", SpeechProviderOpenAI, log)),
		AssetsDir:        envutil.GetEnv("ASSETS_DIR", "assets", log),
		DialogConfigPath: envutil.GetEnv("DIALOG_CONFIG_PATH", "", log),

		ActiveCallTTL: time.Duration(envutil.GetEnvAsInt("ACTIVE_CALL_TTL_SECONDS", 7200, log)) * time.Second,
		ClipTTL:       time.Duration(envutil.GetEnvAsInt("CLIP_TTL_SECONDS", 1800, log)) * time.Second,

		RetryWorkerInterval:    time.Duration(envutil.GetEnvAsInt("RETRY_WORKER_INTERVAL_SECONDS", 30, log)) * time.Second,
		RetryWorkerConcurrency: envutil.GetEnvAsInt("RETRY_WORKER_CONCURRENCY", 1, log),

		CORSOrigins:    splitList(envutil.GetEnv("CORS_ORIGINS", "", log)),
		SSEEmitBuffer:  envutil.GetEnvAsInt("SSE_EMIT_BUFFER", 256, log),
		MetricsEnabled: envutil.GetEnvAsBool("METRICS_ENABLED", true, log),
		Tracing: observability.TracingConfig{
			Enabled:     envutil.GetEnvAsBool("OTEL_ENABLED", false, log),
			ServiceName: envutil.GetEnv("OTEL_SERVICE_NAME", "novo-contact", log),
			Environment: envutil.GetEnv("APP_ENV", "development", log),
			Version:     envutil.GetEnv("APP_VERSION", "", log),
			Endpoint:    envutil.GetEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "", log),
			Headers:     envutil.GetEnv("OTEL_EXPORTER_OTLP_HEADERS", "", log),
			Insecure:    envutil.GetEnvAsBool("OTEL_EXPORTER_OTLP_INSECURE", false, log),
			SampleRatio: sampleRatio,
		},
	}
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
