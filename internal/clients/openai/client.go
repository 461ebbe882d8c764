package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/yungbote/novo-contact-backend/internal/pkg/ctxutil"
	"github.com/yungbote/novo-contact-backend/internal/pkg/envutil"
	"github.com/yungbote/novo-contact-backend/internal/pkg/httpx"
	"github.com/yungbote/novo-contact-backend/internal/pkg/logger"
)

// Client is the subset of the OpenAI API the call flow needs: short text
// completions, speech synthesis and speech recognition.
type Client interface {
	GenerateText(ctx context.Context, system string, user string) (string, error)
	GenerateTextWithOptions(ctx context.Context, system string, user string, opts TextOptions) (string, error)

	// SynthesizeSpeech returns raw 16-bit little-endian mono PCM at 24 kHz.
	SynthesizeSpeech(ctx context.Context, text string) ([]byte, error)

	// Transcribe returns the recognized text of an audio file.
	Transcribe(ctx context.Context, audio []byte, filename string) (string, error)
}

type TextOptions struct {
	Temperature     *float64
	MaxOutputTokens int
}

type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	TTSModel   string
	TTSVoice   string
	STTModel   string
	Timeout    time.Duration
	MaxRetries int
}

func ConfigFromEnv() Config {
	return Config{
		APIKey:     strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		BaseURL:    envutil.String("OPENAI_BASE_URL", "https://api.openai.com"),
		Model:      envutil.String("OPENAI_MODEL", "gpt-4o-mini"),
		TTSModel:   envutil.String("OPENAI_TTS_MODEL", "gpt-4o-mini-tts"),
		TTSVoice:   envutil.String("OPENAI_TTS_VOICE", "alloy"),
		STTModel:   envutil.String("OPENAI_STT_MODEL", "whisper-1"),
		Timeout:    time.Duration(envutil.Int("OPENAI_TIMEOUT_SECONDS", 30)) * time.Second,
		MaxRetries: envutil.Int("OPENAI_MAX_RETRIES", 1),
	}
}

type client struct {
	log        *logger.Logger
	cfg        Config
	httpClient *http.Client

	// Models that rejected a temperature parameter; later requests omit it.
	noTempMu   sync.RWMutex
	noTempSeen map[string]time.Time
}

func NewClient(log *logger.Logger) (Client, error) {
	return New(log, ConfigFromEnv())
}

func New(log *logger.Logger, cfg Config) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("missing OPENAI_API_KEY")
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.TTSModel == "" {
		cfg.TTSModel = "gpt-4o-mini-tts"
	}
	if cfg.TTSVoice == "" {
		cfg.TTSVoice = "alloy"
	}
	if cfg.STTModel == "" {
		cfg.STTModel = "whisper-1"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}

	return &client{
		log:        log.With("service", "OpenAIClient"),
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		noTempSeen: map[string]time.Time{},
	}, nil
}

type openAIHTTPError struct {
	StatusCode int
	Body       string
}

func (e *openAIHTTPError) Error() string {
	return fmt.Sprintf("openai http %d: %s", e.StatusCode, e.Body)
}

func (e *openAIHTTPError) HTTPStatusCode() int {
	if e == nil {
		return 0
	}
	return e.StatusCode
}

type request struct {
	method      string
	path        string
	body        []byte
	contentType string
}

func jsonRequest(method, path string, body any) (request, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return request{}, err
	}
	return request{method: method, path: path, body: raw, contentType: "application/json"}, nil
}

func (c *client) doOnce(ctx context.Context, r request) (*http.Response, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, r.method, c.cfg.BaseURL+r.path, bytes.NewReader(r.body))
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", r.contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return resp, nil, readErr
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp, raw, &openAIHTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	return resp, raw, nil
}

// do sends r with retries on transient failures and returns the raw body.
func (c *client) do(ctx context.Context, r request) ([]byte, error) {
	ctx = ctxutil.Default(ctx)
	backoff := 500 * time.Millisecond

	for attempt := 0; ; attempt++ {
		resp, raw, err := c.doOnce(ctx, r)
		if err == nil {
			return raw, nil
		}
		if !httpx.IsRetryableError(err) || attempt >= c.cfg.MaxRetries {
			return nil, err
		}

		sleepFor := httpx.JitterSleep(httpx.RetryAfterDuration(resp, backoff, 5*time.Second))
		c.log.Warn("OpenAI request retrying",
			"path", r.path,
			"attempt", attempt+1,
			"max_retries", c.cfg.MaxRetries,
			"sleep", sleepFor.String(),
			"error", err.Error(),
		)
		if err := httpx.Sleep(ctx, sleepFor); err != nil {
			return nil, err
		}
		backoff *= 2
	}
}

func (c *client) doJSON(ctx context.Context, method, path string, body any, out any) error {
	r, err := jsonRequest(method, path, body)
	if err != nil {
		return err
	}
	raw, err := c.do(ctx, r)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("openai decode error: %w; raw=%s", err, string(raw))
	}
	return nil
}
