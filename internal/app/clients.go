package app

import (
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	temporalsdkclient "go.temporal.io/sdk/client"

	"github.com/yungbote/novo-contact-backend/internal/clients/gcp"
	"github.com/yungbote/novo-contact-backend/internal/clients/openai"
	"github.com/yungbote/novo-contact-backend/internal/clients/redis"
	"github.com/yungbote/novo-contact-backend/internal/clients/twilio"
	"github.com/yungbote/novo-contact-backend/internal/pkg/logger"
	"github.com/yungbote/novo-contact-backend/internal/temporalx"
)

// Clients holds the external integrations. Every field may be nil: the
// call flow degrades to simulated calls, silent audio and neutral intents.
type Clients struct {
	Redis        *goredis.Client
	Twilio       twilio.Client
	TwilioConfig twilio.Config
	Openai       openai.Client
	GcpSpeech    gcp.Speech

	Temporal       temporalsdkclient.Client
	TemporalConfig temporalx.Config
}

func wireClients(log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")
	var out Clients

	// Redis
	if rcfg := redis.ConfigFromEnv(); rcfg.Enabled() {
		rdb, err := redis.NewClient(log, rcfg)
		if err != nil {
			return Clients{}, fmt.Errorf("init redis: %w", err)
		}
		out.Redis = rdb
	}

	// Twilio
	out.TwilioConfig = twilio.ConfigFromEnv()
	if out.TwilioConfig.Configured() {
		tw, err := twilio.New(log, out.TwilioConfig)
		if err != nil {
			out.Close()
			return Clients{}, fmt.Errorf("init twilio client: %w", err)
		}
		out.Twilio = tw
	} else {
		log.Warn("Twilio not configured, calls will be simulated")
	}

	// Openai
	if oa, err := openai.NewClient(log); err != nil {
		log.Warn("OpenAI client unavailable, speech and classification degraded", "error", err)
	} else {
		out.Openai = oa
	}

	// Gcp
	if cfg.SpeechProvider == SpeechProviderGCP {
		speech, err := gcp.NewSpeech(log)
		if err != nil {
			out.Close()
			return Clients{}, fmt.Errorf("init speech client: %w", err)
		}
		out.GcpSpeech = speech
	}

	// Temporal
	out.TemporalConfig = temporalx.LoadConfig()
	tc, err := temporalx.NewClient(log, out.TemporalConfig)
	if err != nil {
		out.Close()
		return Clients{}, fmt.Errorf("init temporal client: %w", err)
	}
	out.Temporal = tc
	return out, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.Temporal != nil {
		c.Temporal.Close()
	}
	if c.GcpSpeech != nil {
		_ = c.GcpSpeech.Close()
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
}
