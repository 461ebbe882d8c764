package dialog

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	gotwiml "github.com/twilio/twilio-go/twiml"

	types "github.com/yungbote/novo-contact-backend/internal/domain"
	"github.com/yungbote/novo-contact-backend/internal/modules/voice"
	"github.com/yungbote/novo-contact-backend/internal/pkg/logger"
	"github.com/yungbote/novo-contact-backend/internal/pkg/twiml"
)

type Deps struct {
	Log        *logger.Logger
	Config     Config
	BaseURL    string
	Registry   Registry
	Classifier Classifier
	Responder  Responder
	Synth      *voice.Synthesizer
	Clips      ClipStore
	Transcript Transcript
	Notifier   Notifier
	// Links signs live synthesis URLs. Unsigned links are only accepted by
	// a handler built without a signer.
	Links *voice.LinkSigner
	// Observer, when set, sees every classified intent.
	Observer IntentObserver
}

type IntentObserver interface {
	IncIntent(intent string)
}

// Orchestrator turns provider webhooks into TwiML documents. It never
// talks to the call directly.
type Orchestrator struct {
	log        *logger.Logger
	cfg        Config
	baseURL    string
	registry   Registry
	classifier Classifier
	responder  Responder
	synth      *voice.Synthesizer
	clips      ClipStore
	transcript Transcript
	notifier   Notifier
	links      *voice.LinkSigner
	observer   IntentObserver
	tracer     trace.Tracer
}

func NewOrchestrator(d Deps) (*Orchestrator, error) {
	if d.Log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if d.Registry == nil || d.Classifier == nil || d.Responder == nil || d.Transcript == nil {
		return nil, fmt.Errorf("orchestrator: registry, classifier, responder and transcript are required")
	}
	if d.Notifier == nil {
		d.Notifier = NopNotifier()
	}
	if d.Clips == nil {
		d.Clips = NewMemoryClipStore(0)
	}
	return &Orchestrator{
		log:        d.Log.With("service", "DialogOrchestrator"),
		cfg:        d.Config,
		baseURL:    strings.TrimRight(strings.TrimSpace(d.BaseURL), "/"),
		registry:   d.Registry,
		classifier: d.Classifier,
		responder:  d.Responder,
		synth:      d.Synth,
		clips:      d.Clips,
		transcript: d.Transcript,
		notifier:   d.Notifier,
		links:      d.Links,
		observer:   d.Observer,
		tracer:     otel.Tracer("novo-contact/dialog"),
	}, nil
}

// Answer greets the callee and waits for speech. Calls placed elsewhere
// are still greeted so the provider never gets an error document.
func (o *Orchestrator) Answer(ctx context.Context, callSID string) *twiml.Response {
	ctx, span := o.tracer.Start(ctx, "dialog.answer", trace.WithAttributes(attribute.String("call_sid", callSID)))
	defer span.End()

	call, err := o.registry.Get(ctx, callSID)
	if err == nil {
		_ = o.registry.SetState(ctx, callSID, StateAnswered)
		o.notifier.CallStatus(ctx, call.OwnerUserID, callSID, fmt.Sprintf("call %s: answered", callSID))
		_ = o.registry.SetState(ctx, callSID, StateGathering)
	} else {
		o.log.Warn("Answer for unregistered call", "call_sid", callSID, "error", err)
	}

	return twiml.New().
		Play(o.AssetURL(AssetGreeting)).
		GatherSpeech(o.gatherURL(), o.cfg.GatherTimeoutSec, o.cfg.Language)
}

// Gather handles one captured utterance. An unknown call is
// ErrCallNotFound and nothing is persisted.
func (o *Orchestrator) Gather(ctx context.Context, callSID, speech string) (*twiml.Response, error) {
	ctx, span := o.tracer.Start(ctx, "dialog.gather", trace.WithAttributes(attribute.String("call_sid", callSID)))
	defer span.End()

	call, err := o.registry.Get(ctx, callSID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	utterance := Normalize(speech)
	if utterance == "" {
		return o.hangup(ctx, call), nil
	}

	o.persist(ctx, call, types.RoleClient, utterance)

	intent := o.classifier.Classify(ctx, utterance)
	span.SetAttributes(attribute.String("intent", string(intent)))
	o.log.Info("Utterance classified", "call_sid", callSID, "intent", intent)
	if o.observer != nil {
		o.observer.IncIntent(string(intent))
	}

	switch intent {
	case IntentExit:
		return o.hangup(ctx, call), nil

	case IntentQuestion:
		reply := o.responder.Reply(ctx, utterance)
		o.persist(ctx, call, types.RoleAgent, reply)
		return o.continueWith(ctx, call, o.speechURL(ctx, reply), AssetFollowup2), nil

	case IntentPositive:
		o.persist(ctx, call, types.RoleAgent, call.Script)
		return o.continueWith(ctx, call, o.speechURL(ctx, call.Script), AssetFollowup1), nil

	default:
		return o.continueWith(ctx, call, o.AssetURL(AssetRepeat), ""), nil
	}
}

func (o *Orchestrator) hangup(ctx context.Context, call *ActiveCall) *twiml.Response {
	_ = o.registry.SetState(ctx, call.CallSID, StateTerminated)
	o.notifier.CallStatus(ctx, call.OwnerUserID, call.CallSID, "hangup")
	return o.Goodbye()
}

// continueWith plays audio, asks for more speech, then hangs up. The
// provider only reaches the trailing Hangup when the Gather ends without
// speech.
func (o *Orchestrator) continueWith(ctx context.Context, call *ActiveCall, playURL, promptAsset string) *twiml.Response {
	_ = o.registry.SetState(ctx, call.CallSID, StateGathering)
	var prompt []gotwiml.Element
	if promptAsset != "" {
		prompt = append(prompt, twiml.PlayVerb(o.AssetURL(promptAsset)))
	}
	return twiml.New().
		Play(playURL).
		GatherSpeech(o.gatherURL(), o.cfg.GatherTimeoutSec, o.cfg.Language, prompt...).
		Hangup()
}

func (o *Orchestrator) persist(ctx context.Context, call *ActiveCall, role, text string) {
	if err := o.transcript.AppendTurn(ctx, call.ContactID, call.CallSID, role, text); err != nil {
		o.log.Error("Transcript write failed", "call_sid", call.CallSID, "role", role, "error", err)
	}
	o.notifier.CallStatus(ctx, call.OwnerUserID, call.CallSID, role+": "+text)
}

// speechURL prefers a stored clip; when internal synthesis comes back
// empty it falls back to the live synthesis endpoint for the same text.
func (o *Orchestrator) speechURL(ctx context.Context, text string) string {
	if o.synth != nil {
		if data := o.synth.Synthesize(ctx, text); len(data) > 0 {
			id, err := o.clips.Put(ctx, data)
			if err == nil {
				return o.baseURL + "/api/voice/clips/" + id + ".wav"
			}
			o.log.Warn("Clip store failed", "error", err)
		}
	}
	text = voice.ClampSpeech(text)
	q := url.Values{"text": {text}}
	if o.links != nil {
		tok, err := o.links.Sign(text)
		if err != nil {
			o.log.Warn("Synthesis link signing failed", "error", err)
		} else {
			q.Set("sig", tok)
		}
	}
	return o.baseURL + "/api/voice/tts?" + q.Encode()
}

func (o *Orchestrator) AssetURL(name string) string {
	return o.baseURL + "/api/voice/assets/" + name
}

func (o *Orchestrator) gatherURL() string { return o.baseURL + "/api/voice/gather" }

// Lookup exposes the registry to the media stream endpoint.
func (o *Orchestrator) Lookup(ctx context.Context, callSID string) (*ActiveCall, error) {
	return o.registry.Get(ctx, callSID)
}

// RecordUtterance stores a recognized caller utterance outside the
// webhook flow. Empty text is ignored.
func (o *Orchestrator) RecordUtterance(ctx context.Context, callSID, text string) error {
	call, err := o.registry.Get(ctx, callSID)
	if err != nil {
		return err
	}
	text = Normalize(text)
	if text == "" {
		return nil
	}
	o.persist(ctx, call, types.RoleClient, text)
	return nil
}

// StatusUpdate relays a provider status callback to the call's owner and
// marks finished calls terminated.
func (o *Orchestrator) StatusUpdate(ctx context.Context, callSID, status string) {
	status = strings.ToLower(strings.TrimSpace(status))
	o.log.Info("Call status", "call_sid", callSID, "status", status)
	call, err := o.registry.Get(ctx, callSID)
	if err != nil {
		return
	}
	if terminalStatuses[status] {
		_ = o.registry.SetState(ctx, callSID, StateTerminated)
	}
	o.notifier.CallStatus(ctx, call.OwnerUserID, callSID, fmt.Sprintf("call %s: %s", callSID, status))
}

var terminalStatuses = map[string]bool{
	"completed": true,
	"busy":      true,
	"failed":    true,
	"no-answer": true,
	"canceled":  true,
}

// Goodbye is the document served when a webhook cannot continue.
func (o *Orchestrator) Goodbye() *twiml.Response {
	return twiml.New().Play(o.AssetURL(AssetGoodbye)).Hangup()
}

func IsNotFound(err error) bool { return errors.Is(err, ErrCallNotFound) }
