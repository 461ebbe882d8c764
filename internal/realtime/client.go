package realtime

import (
	"sync"

	"github.com/google/uuid"

	"github.com/yungbote/novo-contact-backend/internal/pkg/logger"
)

type SSEClient struct {
	ID       uuid.UUID
	UserID   uuid.UUID
	Channels map[string]bool
	Outbound chan SSEMessage
	Logger   *logger.Logger

	done      chan struct{}
	doneOnce  sync.Once
	closeOnce sync.Once
}

// Done is closed once the hub has given up on the client.
func (c *SSEClient) Done() <-chan struct{} { return c.done }

func (c *SSEClient) stop() {
	c.doneOnce.Do(func() { close(c.done) })
}
