package bus

import (
	"context"

	"github.com/yungbote/novo-contact-backend/internal/realtime"
)

// Bus mirrors hub broadcasts across server instances.
type Bus interface {
	Publish(ctx context.Context, msg realtime.SSEMessage) error
	StartForwarder(ctx context.Context, onMsg func(m realtime.SSEMessage)) error
	Close() error
}
