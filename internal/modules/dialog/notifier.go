package dialog

import (
	"context"

	"github.com/google/uuid"
)

// Notifier pushes free-text call status lines to observers. Delivery is
// best effort and must not block.
type Notifier interface {
	CallStatus(ctx context.Context, ownerUserID uuid.UUID, callSID string, line string)
}

type nopNotifier struct{}

func (nopNotifier) CallStatus(context.Context, uuid.UUID, string, string) {}

func NopNotifier() Notifier { return nopNotifier{} }

// Transcript persists dialog turns for a contact.
type Transcript interface {
	AppendTurn(ctx context.Context, contactID uuid.UUID, callSID string, role string, text string) error
}
