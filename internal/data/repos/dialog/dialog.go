package dialog

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/novo-contact-backend/internal/domain"
	"github.com/yungbote/novo-contact-backend/internal/pkg/dbctx"
	"github.com/yungbote/novo-contact-backend/internal/pkg/logger"
)

type DialogRepo interface {
	Create(dbc dbctx.Context, d *types.Dialog) (*types.Dialog, error)
	LatestForContact(dbc dbctx.Context, contactID uuid.UUID) (*types.Dialog, error)
	ListByContact(dbc dbctx.Context, contactID uuid.UUID) ([]*types.Dialog, error)
	AppendMessage(dbc dbctx.Context, dialogID uuid.UUID, role, text string, at time.Time) (*types.DialogMessage, error)
	ListMessages(dbc dbctx.Context, dialogID uuid.UUID) ([]*types.DialogMessage, error)
	AppendTranscript(dbc dbctx.Context, dialogID uuid.UUID, line string) error
}

type dialogRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDialogRepo(db *gorm.DB, baseLog *logger.Logger) DialogRepo {
	repoLog := baseLog.With("repo", "DialogRepo")
	return &dialogRepo{db: db, log: repoLog}
}

func (dr *dialogRepo) Create(dbc dbctx.Context, d *types.Dialog) (*types.Dialog, error) {
	if d == nil {
		return nil, errors.New("dialog required")
	}
	if err := dbc.DB(dr.db).Create(d).Error; err != nil {
		return nil, err
	}
	return d, nil
}

// LatestForContact returns the most recent dialog, or nil when the contact
// has none yet.
func (dr *dialogRepo) LatestForContact(dbc dbctx.Context, contactID uuid.UUID) (*types.Dialog, error) {
	var d types.Dialog
	err := dbc.DB(dr.db).
		Where("contact_id = ?", contactID).
		Order("date DESC").
		Order("created_at DESC").
		First(&d).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (dr *dialogRepo) ListByContact(dbc dbctx.Context, contactID uuid.UUID) ([]*types.Dialog, error) {
	var results []*types.Dialog
	if err := dbc.DB(dr.db).
		Where("contact_id = ?", contactID).
		Preload("Messages", func(db *gorm.DB) *gorm.DB { return db.Order("seq ASC") }).
		Order("date DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// AppendMessage stores the next turn of a dialog. The dialog row is locked on
// Postgres so concurrent writers serialize on the sequence number. The stored
// timestamp is at least 1µs after the previous turn's, so seq and timestamp
// order agree even when clocks repeat or step back.
func (dr *dialogRepo) AppendMessage(dbc dbctx.Context, dialogID uuid.UUID, role, text string, at time.Time) (*types.DialogMessage, error) {
	var out *types.DialogMessage
	err := dbc.DB(dr.db).Transaction(func(txx *gorm.DB) error {
		if txx.Dialector.Name() == "postgres" {
			var locked types.Dialog
			if err := txx.Clauses(clause.Locking{Strength: "UPDATE"}).
				Select("id").
				Where("id = ?", dialogID).
				First(&locked).Error; err != nil {
				return err
			}
		}

		var last []types.DialogMessage
		if err := txx.Select("seq", "timestamp").
			Where("dialog_id = ?", dialogID).
			Order("seq DESC").
			Limit(1).
			Find(&last).Error; err != nil {
			return err
		}
		next := 1
		at = at.UTC()
		if len(last) == 1 {
			next = last[0].Seq + 1
			if floor := last[0].Timestamp.UTC().Add(time.Microsecond); at.Before(floor) {
				at = floor
			}
		}

		msg := &types.DialogMessage{
			DialogID:  dialogID,
			Seq:       next,
			Role:      role,
			Text:      text,
			Timestamp: at,
		}
		if err := txx.Create(msg).Error; err != nil {
			return err
		}
		out = msg
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (dr *dialogRepo) ListMessages(dbc dbctx.Context, dialogID uuid.UUID) ([]*types.DialogMessage, error) {
	var results []*types.DialogMessage
	if err := dbc.DB(dr.db).
		Where("dialog_id = ?", dialogID).
		Order("seq ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// AppendTranscript appends one rendered line to the dialog's flat transcript.
func (dr *dialogRepo) AppendTranscript(dbc dbctx.Context, dialogID uuid.UUID, line string) error {
	return dbc.DB(dr.db).
		Model(&types.Dialog{}).
		Where("id = ?", dialogID).
		Updates(map[string]any{
			"transcript": gorm.Expr("COALESCE(transcript, '') || ?", line),
			"updated_at": time.Now().UTC(),
		}).Error
}
