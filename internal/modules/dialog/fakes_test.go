package dialog

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/yungbote/novo-contact-backend/internal/clients/openai"
)

type fakeGen struct {
	out     string
	err     error
	calls   int
	lastOpt openai.TextOptions
}

func (f *fakeGen) GenerateTextWithOptions(ctx context.Context, system, user string, opts openai.TextOptions) (string, error) {
	f.calls++
	f.lastOpt = opts
	return f.out, f.err
}

type fixedClassifier Intent

func (c fixedClassifier) Classify(context.Context, string) Intent { return Intent(c) }

type fixedResponder string

func (r fixedResponder) Reply(context.Context, string) string { return string(r) }

type turn struct {
	contactID uuid.UUID
	callSID   string
	role      string
	text      string
}

type memTranscript struct {
	mu    sync.Mutex
	turns []turn
}

func (m *memTranscript) AppendTurn(ctx context.Context, contactID uuid.UUID, callSID, role, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.turns = append(m.turns, turn{contactID, callSID, role, text})
	return nil
}

type recordingNotifier struct {
	mu    sync.Mutex
	lines []string
}

func (n *recordingNotifier) CallStatus(ctx context.Context, owner uuid.UUID, callSID, line string) {
	n.mu.Lock()
	n.lines = append(n.lines, line)
	n.mu.Unlock()
}

type fakeTTS struct{ pcm []byte }

func (f fakeTTS) SynthesizeSpeech(context.Context, string) ([]byte, error) { return f.pcm, nil }
