package dialog

import (
	"context"
	"errors"
	"testing"

	"github.com/yungbote/novo-contact-backend/internal/pkg/logger"
)

func TestClassifierParsesLabel(t *testing.T) {
	gen := &fakeGen{out: "Question"}
	c := NewClassifier(logger.Nop(), gen, DefaultConfig())
	if got := c.Classify(context.Background(), "how much is it"); got != IntentQuestion {
		t.Fatalf("Classify: want=question got=%s", got)
	}
	if gen.lastOpt.Temperature == nil || *gen.lastOpt.Temperature != 0 {
		t.Fatalf("classifier should run at temperature 0")
	}
}

func TestClassifierFailuresAreNeutral(t *testing.T) {
	cases := map[string]*fakeGen{
		"error":   {err: errors.New("rate limited")},
		"garbage": {out: "I think the caller is positive"},
		"empty":   {out: ""},
	}
	for name, gen := range cases {
		c := NewClassifier(logger.Nop(), gen, DefaultConfig())
		if got := c.Classify(context.Background(), "hm"); got != IntentNeutral {
			t.Fatalf("%s: want=neutral got=%s", name, got)
		}
	}
	if got := NewClassifier(logger.Nop(), nil, DefaultConfig()).Classify(context.Background(), "yes"); got != IntentNeutral {
		t.Fatalf("nil generator: want=neutral got=%s", got)
	}
}

func TestResponderFallback(t *testing.T) {
	cfg := DefaultConfig()
	r := NewResponder(logger.Nop(), &fakeGen{err: errors.New("down")}, cfg)
	if got := r.Reply(context.Background(), "what is it"); got != cfg.FallbackReply {
		t.Fatalf("Reply(error): want=%q got=%q", cfg.FallbackReply, got)
	}
	gen := &fakeGen{out: " It costs ten dollars. "}
	r = NewResponder(logger.Nop(), gen, cfg)
	if got := r.Reply(context.Background(), "how much"); got != "It costs ten dollars." {
		t.Fatalf("Reply: got=%q", got)
	}
	if gen.lastOpt.Temperature == nil || *gen.lastOpt.Temperature != 0.3 {
		t.Fatalf("Reply temperature: got=%v", gen.lastOpt.Temperature)
	}
}
