// Package telephony places outbound calls and reads their status from the
// provider. Without credentials every call is simulated.
package telephony

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/yungbote/novo-contact-backend/internal/clients/twilio"
	"github.com/yungbote/novo-contact-backend/internal/pkg/logger"
	"github.com/yungbote/novo-contact-backend/internal/pkg/pointers"
	"github.com/yungbote/novo-contact-backend/internal/pkg/twiml"
)

const (
	SimulatedCallSID = "SIMULATED_CALL_SID"
	StatusSimulated  = "simulated"
)

type Mode string

const (
	// ModeWebhook hands the call to the answer/gather webhooks.
	ModeWebhook Mode = "webhook"
	// ModeStream connects the call to the media stream endpoint.
	ModeStream Mode = "stream"
)

type Config struct {
	BaseURL    string
	From       string
	Mode       Mode
	TimeoutSec int
}

type Status struct {
	CallSID   string     `json:"call_sid"`
	Status    string     `json:"status"`
	Duration  int        `json:"duration"`
	StartTime *time.Time `json:"start_time"`
	EndTime   *time.Time `json:"end_time"`
}

type Driver interface {
	// Place dials to and returns the provider call id, SimulatedCallSID
	// when unconfigured, or "" when the provider rejected the call.
	Place(ctx context.Context, to string) string
	FetchStatus(ctx context.Context, callSID string) (*Status, error)
	Simulated() bool
}

type driver struct {
	log    *logger.Logger
	client twilio.Client
	cfg    Config
}

// NewDriver accepts a nil client for simulated mode.
func NewDriver(log *logger.Logger, client twilio.Client, cfg Config) Driver {
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.Mode == "" {
		cfg.Mode = ModeWebhook
	}
	return &driver{log: log.With("service", "TelephonyDriver"), client: client, cfg: cfg}
}

func (d *driver) Simulated() bool { return d.client == nil }

func (d *driver) Place(ctx context.Context, to string) string {
	if d.client == nil {
		d.log.Info("Telephony not configured, simulating call", "phone", to)
		return SimulatedCallSID
	}
	req := twilio.CreateCallRequest{
		To:                   to,
		From:                 d.cfg.From,
		StatusCallbackURL:    d.cfg.BaseURL + "/api/voice/status",
		StatusCallbackEvents: []string{"initiated", "ringing", "answered", "completed"},
		TimeoutSec:           d.cfg.TimeoutSec,
	}
	switch d.cfg.Mode {
	case ModeStream:
		req.TwiML = twiml.New().ConnectStream(streamURL(d.cfg.BaseURL), nil).String()
	default:
		req.URL = d.cfg.BaseURL + "/api/voice/answer"
	}
	call, err := d.client.CreateCall(ctx, req)
	if err != nil {
		d.log.Error("Call placement failed", "phone", to, "error", err)
		return ""
	}
	d.log.Info("Call placed", "call_sid", call.SID, "status", call.Status)
	return call.SID
}

func (d *driver) FetchStatus(ctx context.Context, callSID string) (*Status, error) {
	if d.client == nil || callSID == SimulatedCallSID {
		return &Status{CallSID: callSID, Status: StatusSimulated}, nil
	}
	call, err := d.client.FetchCall(ctx, callSID)
	if err != nil {
		return nil, err
	}
	out := &Status{CallSID: call.SID, Status: call.Status}
	out.Duration, _ = strconv.Atoi(call.Duration)
	out.StartTime = parseProviderTime(call.StartTime)
	out.EndTime = parseProviderTime(call.EndTime)
	return out, nil
}

func streamURL(base string) string {
	switch {
	case strings.HasPrefix(base, "https://"):
		base = "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		base = "ws://" + strings.TrimPrefix(base, "http://")
	}
	return base + "/api/voice/stream"
}

func parseProviderTime(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC1123Z, s)
	if err != nil {
		return nil
	}
	return pointers.Time(t.UTC())
}
