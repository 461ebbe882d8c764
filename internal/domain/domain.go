package domain

import (
	"github.com/yungbote/novo-contact-backend/internal/domain/auth"
	"github.com/yungbote/novo-contact-backend/internal/domain/calls"
	"github.com/yungbote/novo-contact-backend/internal/domain/contact"
	"github.com/yungbote/novo-contact-backend/internal/domain/user"
)

type (
	User      = user.User
	UserToken = auth.UserToken

	Contact       = contact.Contact
	Dialog        = contact.Dialog
	DialogMessage = contact.DialogMessage

	ScheduledCall = calls.ScheduledCall
)

const (
	RoleAgent  = contact.RoleAgent
	RoleClient = contact.RoleClient

	ScheduledCallPending   = calls.StatusPending
	ScheduledCallCompleted = calls.StatusCompleted
	ScheduledCallFailed    = calls.StatusFailed
	ScheduledCallCancelled = calls.StatusCancelled
	ScheduledCallRetrying  = calls.StatusRetrying
	ScheduledCallCalling   = calls.StatusCalling

	MaxCallAttempts = calls.MaxCallAttempts
)

// Models lists every persisted type in migration order.
func Models() []any {
	return []any{
		&User{},
		&UserToken{},
		&Contact{},
		&Dialog{},
		&DialogMessage{},
		&ScheduledCall{},
	}
}
