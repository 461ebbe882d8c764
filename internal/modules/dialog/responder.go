package dialog

import (
	"context"
	"strings"

	"github.com/yungbote/novo-contact-backend/internal/clients/openai"
	"github.com/yungbote/novo-contact-backend/internal/pkg/logger"
	"github.com/yungbote/novo-contact-backend/internal/pkg/pointers"
)

type Responder interface {
	Reply(ctx context.Context, utterance string) string
}

type llmResponder struct {
	log         *logger.Logger
	gen         TextGenerator
	prompt      string
	fallback    string
	temperature float64
}

func NewResponder(log *logger.Logger, gen TextGenerator, cfg Config) Responder {
	return &llmResponder{
		log:         log.With("service", "ResponseGenerator"),
		gen:         gen,
		prompt:      cfg.ResponderPrompt,
		fallback:    cfg.FallbackReply,
		temperature: cfg.Temperature,
	}
}

func (r *llmResponder) Reply(ctx context.Context, utterance string) string {
	if r.gen == nil {
		return r.fallback
	}
	out, err := r.gen.GenerateTextWithOptions(ctx, r.prompt, utterance, openai.TextOptions{
		Temperature:     pointers.Float64(r.temperature),
		MaxOutputTokens: 200,
	})
	out = strings.TrimSpace(out)
	if err != nil || out == "" {
		r.log.Warn("Reply generation failed, using fallback", "error", err)
		return r.fallback
	}
	return out
}
