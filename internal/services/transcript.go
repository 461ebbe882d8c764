package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/novo-contact-backend/internal/data/repos"
	types "github.com/yungbote/novo-contact-backend/internal/domain"
	"github.com/yungbote/novo-contact-backend/internal/pkg/dbctx"
	"github.com/yungbote/novo-contact-backend/internal/pkg/logger"
)

// TranscriptService appends dialog turns to the contact's most recent
// dialog, creating one on the first turn.
type TranscriptService interface {
	AppendTurn(ctx context.Context, contactID uuid.UUID, callSID string, role string, text string) error
	ListDialogs(ctx context.Context, contactID uuid.UUID) ([]*types.Dialog, error)
}

type transcriptService struct {
	db         *gorm.DB
	log        *logger.Logger
	dialogRepo repos.DialogRepo
	now        func() time.Time
}

func NewTranscriptService(db *gorm.DB, log *logger.Logger, dialogRepo repos.DialogRepo) TranscriptService {
	return &transcriptService{
		db:         db,
		log:        log.With("service", "TranscriptService"),
		dialogRepo: dialogRepo,
		now:        time.Now,
	}
}

func (s *transcriptService) AppendTurn(ctx context.Context, contactID uuid.UUID, callSID, role, text string) error {
	if role != types.RoleAgent && role != types.RoleClient {
		return fmt.Errorf("invalid role %q", role)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	at := s.now().UTC()
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		d, err := s.dialogRepo.LatestForContact(dbc, contactID)
		if err != nil {
			return err
		}
		if d == nil {
			d, err = s.dialogRepo.Create(dbc, &types.Dialog{ContactID: contactID, CallSID: callSID, Date: at})
			if err != nil {
				return fmt.Errorf("create dialog: %w", err)
			}
			s.log.Info("Dialog started", "contact_id", contactID, "call_sid", callSID)
		}
		if _, err := s.dialogRepo.AppendMessage(dbc, d.ID, role, text, at); err != nil {
			return fmt.Errorf("append message: %w", err)
		}
		return s.dialogRepo.AppendTranscript(dbc, d.ID, role+": "+text+"\n")
	})
}

func (s *transcriptService) ListDialogs(ctx context.Context, contactID uuid.UUID) ([]*types.Dialog, error) {
	return s.dialogRepo.ListByContact(dbctx.Of(ctx), contactID)
}
