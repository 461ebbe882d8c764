package contact

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/novo-contact-backend/internal/domain"
	"github.com/yungbote/novo-contact-backend/internal/pkg/dbctx"
	"github.com/yungbote/novo-contact-backend/internal/pkg/logger"
)

type ContactRepo interface {
	Create(dbc dbctx.Context, contacts []*types.Contact) ([]*types.Contact, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Contact, error)
	GetByIDForUser(dbc dbctx.Context, id, userID uuid.UUID) (*types.Contact, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.Contact, error)
	UpdateScript(dbc dbctx.Context, id uuid.UUID, script string) error
}

type contactRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewContactRepo(db *gorm.DB, baseLog *logger.Logger) ContactRepo {
	repoLog := baseLog.With("repo", "ContactRepo")
	return &contactRepo{db: db, log: repoLog}
}

func (cr *contactRepo) Create(dbc dbctx.Context, contacts []*types.Contact) ([]*types.Contact, error) {
	if len(contacts) == 0 {
		return []*types.Contact{}, nil
	}
	if err := dbc.DB(cr.db).Create(&contacts).Error; err != nil {
		return nil, err
	}
	return contacts, nil
}

// GetByID returns nil without error when the contact does not exist.
func (cr *contactRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Contact, error) {
	var c types.Contact
	err := dbc.DB(cr.db).Where("id = ?", id).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (cr *contactRepo) GetByIDForUser(dbc dbctx.Context, id, userID uuid.UUID) (*types.Contact, error) {
	var c types.Contact
	err := dbc.DB(cr.db).
		Where("id = ? AND user_id = ?", id, userID).
		First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (cr *contactRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.Contact, error) {
	var results []*types.Contact
	if err := dbc.DB(cr.db).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (cr *contactRepo) UpdateScript(dbc dbctx.Context, id uuid.UUID, script string) error {
	return dbc.DB(cr.db).
		Model(&types.Contact{}).
		Where("id = ?", id).
		Update("script", script).Error
}
