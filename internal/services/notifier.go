package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	types "github.com/yungbote/novo-contact-backend/internal/domain"
	"github.com/yungbote/novo-contact-backend/internal/modules/dialog"
	"github.com/yungbote/novo-contact-backend/internal/realtime"
)

// CallNotifier fans call status lines and scheduled call changes out to
// the owner's SSE channel. Transcript lines ("client: ...", "agent: ...")
// go out as DialogTurn events.
type CallNotifier interface {
	dialog.Notifier
	ScheduledCallUpdated(userID uuid.UUID, sc *types.ScheduledCall)
}

type callNotifier struct {
	emit SSEEmitter
	now  func() time.Time
}

func NewCallNotifier(emit SSEEmitter) CallNotifier {
	return &callNotifier{emit: emit, now: time.Now}
}

func (n *callNotifier) CallStatus(ctx context.Context, userID uuid.UUID, callSID string, line string) {
	if n == nil || n.emit == nil || userID == uuid.Nil {
		return
	}
	event := realtime.SSEEventCallStatus
	if strings.HasPrefix(line, types.RoleClient+": ") || strings.HasPrefix(line, types.RoleAgent+": ") {
		event = realtime.SSEEventDialogTurn
	}
	n.emit.Emit(ctx, realtime.SSEMessage{
		Channel: userID.String(),
		Event:   event,
		Data: map[string]any{
			"call_sid": callSID,
			"line":     line,
			"at":       n.now().UTC(),
		},
	})
}

func (n *callNotifier) ScheduledCallUpdated(userID uuid.UUID, sc *types.ScheduledCall) {
	if n == nil || n.emit == nil || userID == uuid.Nil || sc == nil {
		return
	}
	n.emit.Emit(context.Background(), realtime.SSEMessage{
		Channel: userID.String(),
		Event:   realtime.SSEEventScheduledCallUpdated,
		Data:    map[string]any{"scheduled_call": sc},
	})
}
