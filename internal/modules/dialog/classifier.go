package dialog

import (
	"context"

	"github.com/yungbote/novo-contact-backend/internal/clients/openai"
	"github.com/yungbote/novo-contact-backend/internal/pkg/logger"
	"github.com/yungbote/novo-contact-backend/internal/pkg/pointers"
)

// TextGenerator is the slice of the LLM client the dialog needs.
type TextGenerator interface {
	GenerateTextWithOptions(ctx context.Context, system string, user string, opts openai.TextOptions) (string, error)
}

type Classifier interface {
	Classify(ctx context.Context, utterance string) Intent
}

type llmClassifier struct {
	log    *logger.Logger
	gen    TextGenerator
	prompt string
}

func NewClassifier(log *logger.Logger, gen TextGenerator, cfg Config) Classifier {
	return &llmClassifier{log: log.With("service", "SpeechClassifier"), gen: gen, prompt: cfg.ClassifierPrompt}
}

// Classify never fails: provider errors and off-label answers are neutral.
func (c *llmClassifier) Classify(ctx context.Context, utterance string) Intent {
	if c.gen == nil || utterance == "" {
		return IntentNeutral
	}
	out, err := c.gen.GenerateTextWithOptions(ctx, c.prompt, utterance, openai.TextOptions{
		Temperature:     pointers.Float64(0),
		MaxOutputTokens: 16,
	})
	if err != nil {
		c.log.Warn("Classification failed", "error", err)
		return IntentNeutral
	}
	intent, ok := ParseIntent(out)
	if !ok {
		c.log.Warn("Classifier returned unknown label", "label", out)
	}
	return intent
}
