package twilio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/yungbote/novo-contact-backend/internal/pkg/ctxutil"
	"github.com/yungbote/novo-contact-backend/internal/pkg/envutil"
	"github.com/yungbote/novo-contact-backend/internal/pkg/httpx"
	"github.com/yungbote/novo-contact-backend/internal/pkg/logger"
)

type Client interface {
	CreateCall(ctx context.Context, req CreateCallRequest) (*Call, error)
	FetchCall(ctx context.Context, callSID string) (*Call, error)
}

type Config struct {
	AccountSID   string
	AuthToken    string
	APIKey       string
	APIKeySecret string
	BaseURL      string
	DefaultFrom  string
	Timeout      time.Duration
	MaxRetries   int
}

func ConfigFromEnv() Config {
	timeoutSec := envutil.Int("TWILIO_TIMEOUT_SECONDS", 30)
	maxRetries := envutil.Int("TWILIO_MAX_RETRIES", 2)

	return Config{
		AccountSID:   strings.TrimSpace(os.Getenv("TWILIO_ACCOUNT_SID")),
		AuthToken:    strings.TrimSpace(os.Getenv("TWILIO_AUTH_TOKEN")),
		APIKey:       strings.TrimSpace(os.Getenv("TWILIO_API_KEY")),
		APIKeySecret: strings.TrimSpace(os.Getenv("TWILIO_API_KEY_SECRET")),
		BaseURL:      strings.TrimSpace(os.Getenv("TWILIO_BASE_URL")),
		DefaultFrom:  strings.TrimSpace(os.Getenv("TWILIO_FROM_NUMBER")),
		Timeout:      time.Duration(timeoutSec) * time.Second,
		MaxRetries:   maxRetries,
	}
}

// Configured reports whether cfg carries enough credentials to place calls.
func (cfg Config) Configured() bool {
	if strings.TrimSpace(cfg.AccountSID) == "" || strings.TrimSpace(cfg.DefaultFrom) == "" {
		return false
	}
	if strings.TrimSpace(cfg.APIKey) != "" {
		return strings.TrimSpace(cfg.APIKeySecret) != ""
	}
	return strings.TrimSpace(cfg.AuthToken) != ""
}

func New(log *logger.Logger, cfg Config) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	cfg.AccountSID = strings.TrimSpace(cfg.AccountSID)
	if cfg.AccountSID == "" {
		return nil, fmt.Errorf("missing TWILIO_ACCOUNT_SID")
	}
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.APIKeySecret = strings.TrimSpace(cfg.APIKeySecret)
	cfg.AuthToken = strings.TrimSpace(cfg.AuthToken)
	if cfg.APIKey != "" {
		if cfg.APIKeySecret == "" {
			return nil, fmt.Errorf("missing TWILIO_API_KEY_SECRET (required when TWILIO_API_KEY is set)")
		}
	} else if cfg.AuthToken == "" {
		return nil, fmt.Errorf("missing TWILIO_AUTH_TOKEN (or provide TWILIO_API_KEY + TWILIO_API_KEY_SECRET)")
	}

	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = "https://api.twilio.com/2010-04-01"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}

	return &client{
		log:        log.With("client", "TwilioClient"),
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		maxRetries: cfg.MaxRetries,
	}, nil
}

type client struct {
	log        *logger.Logger
	cfg        Config
	httpClient *http.Client
	maxRetries int
}

// CreateCallRequest places an outbound call. Exactly one of URL or TwiML
// drives the call once answered.
type CreateCallRequest struct {
	To                   string
	From                 string
	URL                  string
	TwiML                string
	StatusCallbackURL    string
	StatusCallbackEvents []string
	TimeoutSec           int
}

type Call struct {
	SID         string `json:"sid,omitempty"`
	AccountSID  string `json:"account_sid,omitempty"`
	To          string `json:"to,omitempty"`
	From        string `json:"from,omitempty"`
	Status      string `json:"status,omitempty"`
	Direction   string `json:"direction,omitempty"`
	Duration    string `json:"duration,omitempty"`
	StartTime   string `json:"start_time,omitempty"`
	EndTime     string `json:"end_time,omitempty"`
	DateCreated string `json:"date_created,omitempty"`
	URI         string `json:"uri,omitempty"`
}

func (c *client) CreateCall(ctx context.Context, req CreateCallRequest) (*Call, error) {
	if c == nil || c.httpClient == nil {
		return nil, fmt.Errorf("twilio client unavailable")
	}

	req.To = strings.TrimSpace(req.To)
	req.From = strings.TrimSpace(req.From)
	req.URL = strings.TrimSpace(req.URL)
	req.StatusCallbackURL = strings.TrimSpace(req.StatusCallbackURL)
	if req.To == "" {
		return nil, fmt.Errorf("twilio: To required")
	}
	if req.From == "" {
		req.From = c.cfg.DefaultFrom
	}
	if req.From == "" {
		return nil, fmt.Errorf("twilio: From required")
	}
	if req.URL == "" && strings.TrimSpace(req.TwiML) == "" {
		return nil, fmt.Errorf("twilio: Url or Twiml required")
	}

	form := url.Values{}
	form.Set("To", req.To)
	form.Set("From", req.From)
	if req.URL != "" {
		form.Set("Url", req.URL)
		form.Set("Method", http.MethodPost)
	} else {
		form.Set("Twiml", req.TwiML)
	}
	if req.StatusCallbackURL != "" {
		form.Set("StatusCallback", req.StatusCallbackURL)
		form.Set("StatusCallbackMethod", http.MethodPost)
		for _, ev := range req.StatusCallbackEvents {
			form.Add("StatusCallbackEvent", ev)
		}
	}
	if req.TimeoutSec > 0 {
		form.Set("Timeout", fmt.Sprint(req.TimeoutSec))
	}

	endpoint := fmt.Sprintf("%s/Accounts/%s/Calls.json", c.cfg.BaseURL, c.cfg.AccountSID)
	return doForm[Call](c, ctx, http.MethodPost, endpoint, form, notDelivered)
}

func (c *client) FetchCall(ctx context.Context, callSID string) (*Call, error) {
	if c == nil || c.httpClient == nil {
		return nil, fmt.Errorf("twilio client unavailable")
	}
	callSID = strings.TrimSpace(callSID)
	if callSID == "" {
		return nil, fmt.Errorf("twilio: call sid required")
	}
	endpoint := fmt.Sprintf("%s/Accounts/%s/Calls/%s.json", c.cfg.BaseURL, c.cfg.AccountSID, url.PathEscape(callSID))
	return doForm[Call](c, ctx, http.MethodGet, endpoint, nil, httpx.IsRetryableError)
}

type apiError struct {
	Code     int    `json:"code"`
	Message  string `json:"message"`
	MoreInfo string `json:"more_info"`
	Status   int    `json:"status"`
}

type HTTPError struct {
	StatusCode int
	Body       string
	APIError   *apiError
}

func (e *HTTPError) Error() string {
	if e == nil {
		return "twilio: <nil error>"
	}
	if e.APIError != nil && strings.TrimSpace(e.APIError.Message) != "" {
		if e.APIError.Code != 0 {
			return fmt.Sprintf("twilio http %d: %s (code=%d)", e.StatusCode, e.APIError.Message, e.APIError.Code)
		}
		return fmt.Sprintf("twilio http %d: %s", e.StatusCode, e.APIError.Message)
	}
	msg := strings.TrimSpace(e.Body)
	if msg == "" {
		msg = "<empty body>"
	}
	if len(msg) > 2000 {
		msg = msg[:2000] + "..."
	}
	return fmt.Sprintf("twilio http %d: %s", e.StatusCode, msg)
}

func (e *HTTPError) HTTPStatusCode() int {
	if e == nil {
		return 0
	}
	return e.StatusCode
}

func (c *client) basicAuth() (user, pass string) {
	if c.cfg.APIKey != "" {
		return c.cfg.APIKey, c.cfg.APIKeySecret
	}
	return c.cfg.AccountSID, c.cfg.AuthToken
}

// notDelivered reports errors where the provider cannot have acted on the
// request: a refused or failed dial, or a 429. Creating a call is not
// idempotent, so a timeout or 5xx may already have placed it.
func notDelivered(err error) bool {
	if err == nil {
		return false
	}
	var he *HTTPError
	if errors.As(err, &he) {
		return he.StatusCode == http.StatusTooManyRequests
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "dial"
}

func doForm[T any](c *client, ctx context.Context, method, urlStr string, form url.Values, retryable func(error) bool) (*T, error) {
	ctx = ctxutil.Default(ctx)
	backoff := 500 * time.Millisecond

	for attempt := 0; ; attempt++ {
		out, resp, err := doFormOnce[T](c, ctx, method, urlStr, form)
		if err == nil {
			return out, nil
		}
		if !retryable(err) || attempt >= c.maxRetries {
			return nil, err
		}

		sleepFor := httpx.JitterSleep(httpx.RetryAfterDuration(resp, backoff, 10*time.Second))
		c.log.Warn("Twilio request retrying",
			"url", urlStr,
			"attempt", attempt+1,
			"max_retries", c.maxRetries,
			"sleep", sleepFor.String(),
			"error", err.Error(),
		)
		if err := httpx.Sleep(ctx, sleepFor); err != nil {
			return nil, err
		}
		backoff *= 2
	}
}

func doFormOnce[T any](c *client, ctx context.Context, method, urlStr string, form url.Values) (*T, *http.Response, error) {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequestWithContext(ctx, method, urlStr, body)
	if err != nil {
		return nil, nil, err
	}
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	req.Header.Set("Accept", "application/json")
	u, p := c.basicAuth()
	req.SetBasicAuth(u, p)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, resp, err
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return nil, resp, readErr
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var ae apiError
		if json.Unmarshal(raw, &ae) == nil && strings.TrimSpace(ae.Message) != "" {
			return nil, resp, &HTTPError{StatusCode: resp.StatusCode, Body: string(raw), APIError: &ae}
		}
		return nil, resp, &HTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	var out T
	if len(raw) == 0 {
		return &out, resp, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, resp, fmt.Errorf("twilio decode error: %w; raw=%s", err, string(raw))
	}
	return &out, resp, nil
}
