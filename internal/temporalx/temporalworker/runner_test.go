package temporalworker

import (
	"context"
	"testing"

	"github.com/yungbote/novo-contact-backend/internal/pkg/logger"
	"github.com/yungbote/novo-contact-backend/internal/temporalx"
)

type noopTicker struct{}

func (noopTicker) Tick(ctx context.Context) int { return 0 }

func TestNewRunnerRequiresClient(t *testing.T) {
	if _, err := NewRunner(logger.Nop(), nil, temporalx.Config{}, noopTicker{}, Options{}); err == nil {
		t.Fatalf("expected error without a temporal client")
	}
}
