package dialog

import (
	"context"
	"errors"
	"net/url"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	types "github.com/yungbote/novo-contact-backend/internal/domain"
	"github.com/yungbote/novo-contact-backend/internal/modules/voice"
	"github.com/yungbote/novo-contact-backend/internal/pkg/logger"
)

const testBase = "https://calls.example"

type harness struct {
	orch       *Orchestrator
	registry   *MemoryRegistry
	transcript *memTranscript
	notifier   *recordingNotifier
	contactID  uuid.UUID
}

func newHarness(t *testing.T, intent Intent, tts voice.TTS) *harness {
	t.Helper()
	h := &harness{
		registry:   NewMemoryRegistry(0),
		transcript: &memTranscript{},
		notifier:   &recordingNotifier{},
		contactID:  uuid.New(),
	}
	orch, err := NewOrchestrator(Deps{
		Log:        logger.Nop(),
		Config:     DefaultConfig(),
		BaseURL:    testBase + "/",
		Registry:   h.registry,
		Classifier: fixedClassifier(intent),
		Responder:  fixedResponder("It costs ten dollars."),
		Synth:      voice.NewSynthesizer(logger.Nop(), tts),
		Transcript: h.transcript,
		Notifier:   h.notifier,
	})
	if err != nil {
		t.Fatalf("NewOrchestrator: %v", err)
	}
	h.orch = orch
	if err := h.registry.Put(context.Background(), ActiveCall{
		CallSID:     "CA1",
		ContactID:   h.contactID,
		OwnerUserID: uuid.New(),
		Script:      "Hello there",
	}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	return h
}

func assetURL(name string) string { return testBase + "/api/voice/assets/" + name }

func TestAnswerGreetsAndGathers(t *testing.T) {
	h := newHarness(t, IntentNeutral, nil)
	doc := h.orch.Answer(context.Background(), "CA1")
	if got := doc.Primitives(); !reflect.DeepEqual(got, []string{"Play", "Gather"}) {
		t.Fatalf("Answer primitives: got=%v", got)
	}
	if doc.PlayURL(0) != assetURL(AssetGreeting) {
		t.Fatalf("Answer play: got=%v", doc.Verbs[0])
	}
	g := doc.GatherAt(1)
	if g.Action != testBase+"/api/voice/gather" || g.Input != "speech" || g.Timeout != "3" || g.Language != "en-US" {
		t.Fatalf("Answer gather: %+v", g)
	}
	call, _ := h.registry.Get(context.Background(), "CA1")
	if call.State != StateGathering {
		t.Fatalf("state: want=%s got=%s", StateGathering, call.State)
	}
}

func TestAnswerUnknownCallStillGreets(t *testing.T) {
	h := newHarness(t, IntentNeutral, nil)
	doc := h.orch.Answer(context.Background(), "CA-other")
	if doc.Count("Play") != 1 || doc.Count("Gather") != 1 {
		t.Fatalf("Answer(unknown): got=%v", doc.Primitives())
	}
}

func TestGatherUnknownCallRejected(t *testing.T) {
	h := newHarness(t, IntentPositive, nil)
	doc, err := h.orch.Gather(context.Background(), "CA-missing", "yes")
	if !errors.Is(err, ErrCallNotFound) || doc != nil {
		t.Fatalf("Gather(unknown): want ErrCallNotFound got err=%v doc=%v", err, doc)
	}
	if len(h.transcript.turns) != 0 {
		t.Fatalf("unknown call must not persist turns, got=%d", len(h.transcript.turns))
	}
}

func TestGatherEmptySpeechHangsUp(t *testing.T) {
	h := newHarness(t, IntentPositive, nil)
	for _, speech := range []string{"", "   "} {
		doc, err := h.orch.Gather(context.Background(), "CA1", speech)
		if err != nil {
			t.Fatalf("Gather: %v", err)
		}
		if got := doc.Primitives(); !reflect.DeepEqual(got, []string{"Play", "Hangup"}) {
			t.Fatalf("Gather(%q) primitives: got=%v", speech, got)
		}
		if doc.PlayURL(0) != assetURL(AssetGoodbye) {
			t.Fatalf("Gather(%q) play: got=%v", speech, doc.Verbs[0])
		}
	}
	if len(h.transcript.turns) != 0 {
		t.Fatalf("silence must not persist turns")
	}
	call, _ := h.registry.Get(context.Background(), "CA1")
	if call.State != StateTerminated {
		t.Fatalf("state: want=%s got=%s", StateTerminated, call.State)
	}
}

func TestGatherExitMatchesEmptySpeech(t *testing.T) {
	h := newHarness(t, IntentExit, nil)
	doc, err := h.orch.Gather(context.Background(), "CA1", "  No THANKS ")
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	if got := doc.Primitives(); !reflect.DeepEqual(got, []string{"Play", "Hangup"}) {
		t.Fatalf("exit primitives: got=%v", got)
	}
	if len(h.transcript.turns) != 1 || h.transcript.turns[0].role != types.RoleClient || h.transcript.turns[0].text != "no thanks" {
		t.Fatalf("exit turns: %+v", h.transcript.turns)
	}
}

func TestGatherPerIntentShapes(t *testing.T) {
	cases := []struct {
		intent     Intent
		wantPrompt string
		wantTurns  []string
	}{
		{IntentQuestion, AssetFollowup2, []string{types.RoleClient, types.RoleAgent}},
		{IntentPositive, AssetFollowup1, []string{types.RoleClient, types.RoleAgent}},
		{IntentNeutral, "", []string{types.RoleClient}},
	}
	for _, tc := range cases {
		h := newHarness(t, tc.intent, fakeTTS{pcm: make([]byte, 48)})
		doc, err := h.orch.Gather(context.Background(), "CA1", "Something")
		if err != nil {
			t.Fatalf("%s: Gather: %v", tc.intent, err)
		}
		if got := doc.Primitives(); !reflect.DeepEqual(got, []string{"Play", "Gather", "Hangup"}) {
			t.Fatalf("%s: primitives got=%v", tc.intent, got)
		}
		if doc.Count("Hangup") != 1 {
			t.Fatalf("%s: want exactly one hangup", tc.intent)
		}
		g := doc.GatherAt(1)
		switch tc.wantPrompt {
		case "":
			if len(g.InnerElements) != 0 {
				t.Fatalf("%s: gather prompt: want none got=%v", tc.intent, g.InnerElements)
			}
		default:
			if len(g.InnerElements) != 1 || g.InnerElements[0].GetText() != assetURL(tc.wantPrompt) {
				t.Fatalf("%s: gather prompt: got=%v", tc.intent, g.InnerElements)
			}
		}
		var roles []string
		for _, tr := range h.transcript.turns {
			roles = append(roles, tr.role)
		}
		if !reflect.DeepEqual(roles, tc.wantTurns) {
			t.Fatalf("%s: turns want=%v got=%v", tc.intent, tc.wantTurns, roles)
		}
	}
}

func TestGatherQuestionPlaysStoredReply(t *testing.T) {
	h := newHarness(t, IntentQuestion, fakeTTS{pcm: make([]byte, 48)})
	doc, _ := h.orch.Gather(context.Background(), "CA1", "how much?")
	play := doc.PlayURL(0)
	if !strings.HasPrefix(play, testBase+"/api/voice/clips/") || !strings.HasSuffix(play, ".wav") {
		t.Fatalf("question play: got=%s", play)
	}
	if h.transcript.turns[1].text != "It costs ten dollars." {
		t.Fatalf("agent turn: got=%q", h.transcript.turns[1].text)
	}
}

func TestGatherPositiveFallsBackToLiveSynthesis(t *testing.T) {
	h := newHarness(t, IntentPositive, nil)
	doc, _ := h.orch.Gather(context.Background(), "CA1", "yes")
	want := testBase + "/api/voice/tts?text=Hello+there"
	if got := doc.PlayURL(0); got != want {
		t.Fatalf("positive play: want=%s got=%s", want, got)
	}
}

func TestLiveSynthesisLinkIsSignedAndClamped(t *testing.T) {
	h := newHarness(t, IntentQuestion, nil)
	signer, err := voice.NewLinkSigner("secret", time.Hour)
	if err != nil {
		t.Fatalf("NewLinkSigner: %v", err)
	}
	h.orch.links = signer
	h.orch.responder = fixedResponder(strings.Repeat("b", voice.MaxSpeechChars+50))

	doc, _ := h.orch.Gather(context.Background(), "CA1", "what?")
	u, err := url.Parse(doc.PlayURL(0))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	text, sig := u.Query().Get("text"), u.Query().Get("sig")
	if len(text) != voice.MaxSpeechChars {
		t.Fatalf("text length: want=%d got=%d", voice.MaxSpeechChars, len(text))
	}
	if err := signer.Verify(text, sig); err != nil {
		t.Fatalf("Verify: %v", err)
	}
}

func TestGatherNeutralPlaysRepeat(t *testing.T) {
	h := newHarness(t, IntentNeutral, nil)
	doc, _ := h.orch.Gather(context.Background(), "CA1", "hmm")
	if got := doc.PlayURL(0); got != assetURL(AssetRepeat) {
		t.Fatalf("neutral play: got=%s", got)
	}
}

// Every continuation issues a new Gather and still ends the document with
// a Hangup. The provider executes the Hangup when the Gather times out.
func TestQuirkTrailingHangupAfterRegather(t *testing.T) {
	for _, intent := range []Intent{IntentQuestion, IntentPositive, IntentNeutral} {
		h := newHarness(t, intent, nil)
		doc, _ := h.orch.Gather(context.Background(), "CA1", "anything")
		last := doc.Primitives()[len(doc.Verbs)-1]
		if last != "Hangup" || doc.Count("Gather") != 1 {
			t.Fatalf("%s: want gather followed by trailing hangup, got=%v", intent, doc.Primitives())
		}
		body := doc.String()
		if i, j := strings.LastIndex(body, "</Gather>"), strings.LastIndex(body, "<Hangup"); i < 0 || j < i {
			t.Fatalf("%s: hangup should follow the gather: %s", intent, body)
		}
	}
}

func TestGatherNotifiesObservers(t *testing.T) {
	h := newHarness(t, IntentExit, nil)
	h.orch.Answer(context.Background(), "CA1")
	_, _ = h.orch.Gather(context.Background(), "CA1", "bye")
	want := []string{"call CA1: answered", "client: bye", "hangup"}
	if !reflect.DeepEqual(h.notifier.lines, want) {
		t.Fatalf("notifications: want=%v got=%v", want, h.notifier.lines)
	}
}

func TestRecordUtterance(t *testing.T) {
	h := newHarness(t, IntentNeutral, nil)
	if err := h.orch.RecordUtterance(context.Background(), "CA1", " Hi "); err != nil {
		t.Fatalf("RecordUtterance: %v", err)
	}
	if err := h.orch.RecordUtterance(context.Background(), "CA1", ""); err != nil {
		t.Fatalf("RecordUtterance(empty): %v", err)
	}
	if len(h.transcript.turns) != 1 || h.transcript.turns[0].text != "hi" {
		t.Fatalf("turns: %+v", h.transcript.turns)
	}
	if err := h.orch.RecordUtterance(context.Background(), "nope", "x"); !IsNotFound(err) {
		t.Fatalf("RecordUtterance(unknown): want not found got=%v", err)
	}
}

func TestStatusUpdateTerminatesFinishedCalls(t *testing.T) {
	h := newHarness(t, IntentNeutral, nil)
	h.orch.StatusUpdate(context.Background(), "CA1", "ringing")
	call, _ := h.registry.Get(context.Background(), "CA1")
	if call.State != StateInitiated {
		t.Fatalf("ringing: state=%s", call.State)
	}
	h.orch.StatusUpdate(context.Background(), "CA1", "Completed")
	call, _ = h.registry.Get(context.Background(), "CA1")
	if call.State != StateTerminated {
		t.Fatalf("completed: state=%s", call.State)
	}
	h.orch.StatusUpdate(context.Background(), "CA-unknown", "completed")
	want := []string{"call CA1: ringing", "call CA1: completed"}
	if !reflect.DeepEqual(h.notifier.lines, want) {
		t.Fatalf("notifications: want=%v got=%v", want, h.notifier.lines)
	}
}

type countingObserver map[string]int

func (c countingObserver) IncIntent(intent string) { c[intent]++ }

func TestGatherReportsIntentToObserver(t *testing.T) {
	h := newHarness(t, IntentQuestion, nil)
	obs := countingObserver{}
	h.orch.observer = obs
	if _, err := h.orch.Gather(context.Background(), "CA1", "how much?"); err != nil {
		t.Fatalf("Gather: %v", err)
	}
	if _, err := h.orch.Gather(context.Background(), "CA1", ""); err != nil {
		t.Fatalf("Gather empty: %v", err)
	}
	if obs["question"] != 1 || len(obs) != 1 {
		t.Fatalf("observer: got=%v", obs)
	}
}
