package voice

import (
	"context"

	"github.com/yungbote/novo-contact-backend/internal/clients/gcp"
	"github.com/yungbote/novo-contact-backend/internal/pkg/logger"
	"github.com/yungbote/novo-contact-backend/internal/pkg/wav"
)

// Recognizer turns a WAV clip into text. Failures yield "".
type Recognizer interface {
	Recognize(ctx context.Context, wavData []byte) string
}

// STT transcribes an audio file.
type STT interface {
	Transcribe(ctx context.Context, audio []byte, filename string) (string, error)
}

type sttRecognizer struct {
	log *logger.Logger
	stt STT
}

func NewSTTRecognizer(log *logger.Logger, stt STT) Recognizer {
	return &sttRecognizer{log: log.With("component", "STTRecognizer"), stt: stt}
}

func (r *sttRecognizer) Recognize(ctx context.Context, wavData []byte) string {
	if r.stt == nil || len(wavData) <= wav.HeaderSize {
		return ""
	}
	text, err := r.stt.Transcribe(ctx, wavData, "utterance.wav")
	if err != nil {
		r.log.Warn("Transcription failed", "error", err)
		return ""
	}
	return text
}

type gcpRecognizer struct {
	log      *logger.Logger
	speech   gcp.Speech
	language string
}

func NewGCPRecognizer(log *logger.Logger, speech gcp.Speech, language string) Recognizer {
	return &gcpRecognizer{log: log.With("component", "GCPRecognizer"), speech: speech, language: language}
}

func (r *gcpRecognizer) Recognize(ctx context.Context, wavData []byte) string {
	if r.speech == nil {
		return ""
	}
	f, pcm, err := wav.Decode(wavData)
	if err != nil || len(pcm) == 0 {
		return ""
	}
	text, err := r.speech.Recognize(ctx, pcm, gcp.SpeechConfig{
		LanguageCode:    r.language,
		SampleRateHertz: f.SampleRate,
	})
	if err != nil {
		r.log.Warn("Transcription failed", "error", err)
		return ""
	}
	return text
}

type nopRecognizer struct{}

func (nopRecognizer) Recognize(context.Context, []byte) string { return "" }

// NopRecognizer never recognizes anything.
func NopRecognizer() Recognizer { return nopRecognizer{} }
