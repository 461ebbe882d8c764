package gcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	speech "cloud.google.com/go/speech/apiv1"
	speechpb "cloud.google.com/go/speech/apiv1/speechpb"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/yungbote/novo-contact-backend/internal/pkg/ctxutil"
	"github.com/yungbote/novo-contact-backend/internal/pkg/logger"
)

// Speech recognizes short utterances synchronously.
type Speech interface {
	Recognize(ctx context.Context, audio []byte, cfg SpeechConfig) (string, error)
	Close() error
}

type SpeechConfig struct {
	LanguageCode    string
	Model           string
	SampleRateHertz int
	Encoding        speechpb.RecognitionConfig_AudioEncoding
}

type speechService struct {
	log        *logger.Logger
	client     *speech.Client
	recognize  func(ctx context.Context, req *speechpb.RecognizeRequest) (*speechpb.RecognizeResponse, error)
	maxRetries int
	timeout    time.Duration
}

func NewSpeech(log *logger.Logger) (Speech, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	c, err := speech.NewClient(context.Background(), ClientOptionsFromEnv()...)
	if err != nil {
		return nil, fmt.Errorf("speech client: %w", err)
	}
	s := &speechService{
		log:        log.With("service", "gcp.Speech"),
		client:     c,
		maxRetries: 2,
		timeout:    15 * time.Second,
	}
	s.recognize = func(ctx context.Context, req *speechpb.RecognizeRequest) (*speechpb.RecognizeResponse, error) {
		return c.Recognize(ctx, req)
	}
	return s, nil
}

func (s *speechService) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}

func (s *speechService) Recognize(ctx context.Context, audio []byte, cfg SpeechConfig) (string, error) {
	if len(audio) == 0 {
		return "", nil
	}
	ctx, cancel := context.WithTimeout(ctxutil.Default(ctx), s.timeout)
	defer cancel()

	req := &speechpb.RecognizeRequest{
		Config: buildRecognitionConfig(cfg),
		Audio:  &speechpb.RecognitionAudio{AudioSource: &speechpb.RecognitionAudio_Content{Content: audio}},
	}

	backoff := 250 * time.Millisecond
	for attempt := 0; ; attempt++ {
		resp, err := s.recognize(ctx, req)
		if err == nil {
			return joinTranscript(resp), nil
		}
		if !retryableCode(err) || attempt >= s.maxRetries {
			return "", fmt.Errorf("speech recognize: %w", err)
		}
		s.log.Warn("Speech request retrying", "attempt", attempt+1, "max_retries", s.maxRetries, "error", err.Error())
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
}

func buildRecognitionConfig(cfg SpeechConfig) *speechpb.RecognitionConfig {
	if cfg.LanguageCode == "" {
		cfg.LanguageCode = "en-US"
	}
	if cfg.Encoding == speechpb.RecognitionConfig_ENCODING_UNSPECIFIED {
		cfg.Encoding = speechpb.RecognitionConfig_LINEAR16
	}
	if cfg.Model == "" {
		cfg.Model = "phone_call"
	}
	rc := &speechpb.RecognitionConfig{
		LanguageCode:               cfg.LanguageCode,
		Model:                      cfg.Model,
		Encoding:                   cfg.Encoding,
		EnableAutomaticPunctuation: true,
	}
	if cfg.SampleRateHertz > 0 {
		rc.SampleRateHertz = int32(cfg.SampleRateHertz)
	}
	return rc
}

func joinTranscript(resp *speechpb.RecognizeResponse) string {
	if resp == nil {
		return ""
	}
	parts := make([]string, 0, len(resp.Results))
	for _, r := range resp.Results {
		if r == nil || len(r.Alternatives) == 0 || r.Alternatives[0] == nil {
			continue
		}
		if t := strings.TrimSpace(r.Alternatives[0].Transcript); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

func retryableCode(err error) bool {
	switch status.Code(err) {
	case codes.Unavailable, codes.ResourceExhausted, codes.DeadlineExceeded:
		return true
	default:
		return false
	}
}
