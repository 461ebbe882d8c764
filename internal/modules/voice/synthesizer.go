package voice

import (
	"context"
	"errors"
	"strings"

	"github.com/yungbote/novo-contact-backend/internal/pkg/logger"
	"github.com/yungbote/novo-contact-backend/internal/pkg/wav"
)

var ErrEmptySynthesis = errors.New("voice: empty synthesis")

// TTS returns raw 16-bit mono PCM at wav.SampleRate for text.
type TTS interface {
	SynthesizeSpeech(ctx context.Context, text string) ([]byte, error)
}

type Synthesizer struct {
	log *logger.Logger
	tts TTS
}

// NewSynthesizer accepts a nil tts; every synthesis then comes back empty.
func NewSynthesizer(log *logger.Logger, tts TTS) *Synthesizer {
	return &Synthesizer{log: log.With("component", "Synthesizer"), tts: tts}
}

// PCM returns raw samples or ErrEmptySynthesis.
func (s *Synthesizer) PCM(ctx context.Context, text string) ([]byte, error) {
	text = strings.TrimSpace(text)
	if text == "" || s.tts == nil {
		return nil, ErrEmptySynthesis
	}
	pcm, err := s.tts.SynthesizeSpeech(ctx, text)
	if err != nil {
		return nil, errors.Join(ErrEmptySynthesis, err)
	}
	if len(pcm) == 0 {
		return nil, ErrEmptySynthesis
	}
	return pcm, nil
}

// SynthesizeStrict returns a WAV file for text and surfaces failures.
func (s *Synthesizer) SynthesizeStrict(ctx context.Context, text string) ([]byte, error) {
	pcm, err := s.PCM(ctx, text)
	if err != nil {
		return nil, err
	}
	return wav.Encode(pcm), nil
}

// Synthesize is SynthesizeStrict with failures logged and returned as an
// empty result, for callers that must always make progress.
func (s *Synthesizer) Synthesize(ctx context.Context, text string) []byte {
	out, err := s.SynthesizeStrict(ctx, text)
	if err != nil {
		if strings.TrimSpace(text) != "" {
			s.log.Warn("Speech synthesis failed", "error", err, "chars", len(text))
		}
		return nil
	}
	return out
}
