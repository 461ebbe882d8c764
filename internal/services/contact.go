package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/novo-contact-backend/internal/data/repos"
	types "github.com/yungbote/novo-contact-backend/internal/domain"
	"github.com/yungbote/novo-contact-backend/internal/pkg/apierr"
	"github.com/yungbote/novo-contact-backend/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/novo-contact-backend/internal/pkg/errors"
	"github.com/yungbote/novo-contact-backend/internal/pkg/logger"
)

type ContactInput struct {
	Name    string   `json:"name"`
	Phone   string   `json:"phone"`
	Email   string   `json:"email"`
	Company string   `json:"company"`
	Script  string   `json:"script"`
	Tags    []string `json:"tags"`
}

type ContactService interface {
	Create(ctx context.Context, userID uuid.UUID, in ContactInput) (*types.Contact, error)
	Get(ctx context.Context, userID, contactID uuid.UUID) (*types.Contact, error)
	List(ctx context.Context, userID uuid.UUID) ([]*types.Contact, error)
	Dialogs(ctx context.Context, userID, contactID uuid.UUID) ([]*types.Dialog, error)
}

type contactService struct {
	log         *logger.Logger
	contactRepo repos.ContactRepo
	transcripts TranscriptService
}

func NewContactService(log *logger.Logger, contactRepo repos.ContactRepo, transcripts TranscriptService) ContactService {
	return &contactService{
		log:         log.With("service", "ContactService"),
		contactRepo: contactRepo,
		transcripts: transcripts,
	}
}

func (s *contactService) Create(ctx context.Context, userID uuid.UUID, in ContactInput) (*types.Contact, error) {
	name := strings.TrimSpace(in.Name)
	phone := strings.TrimSpace(in.Phone)
	if name == "" || phone == "" {
		return nil, apierr.New(http.StatusBadRequest, "invalid_contact", fmt.Errorf("name and phone are required: %w", pkgerrors.ErrInvalidArgument))
	}
	c := &types.Contact{
		UserID:   userID,
		Name:     name,
		Phone:    phone,
		Email:    strings.TrimSpace(in.Email),
		Company:  strings.TrimSpace(in.Company),
		Script:   strings.TrimSpace(in.Script),
		IsActive: true,
	}
	c.SetTags(in.Tags)
	created, err := s.contactRepo.Create(dbctx.Of(ctx), []*types.Contact{c})
	if err != nil {
		return nil, fmt.Errorf("create contact: %w", err)
	}
	return created[0], nil
}

func (s *contactService) Get(ctx context.Context, userID, contactID uuid.UUID) (*types.Contact, error) {
	c, err := s.contactRepo.GetByIDForUser(dbctx.Of(ctx), contactID, userID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, apierr.New(http.StatusNotFound, "contact_not_found", pkgerrors.ErrNotFound)
	}
	return c, nil
}

func (s *contactService) List(ctx context.Context, userID uuid.UUID) ([]*types.Contact, error) {
	return s.contactRepo.ListByUser(dbctx.Of(ctx), userID)
}

func (s *contactService) Dialogs(ctx context.Context, userID, contactID uuid.UUID) ([]*types.Dialog, error) {
	if _, err := s.Get(ctx, userID, contactID); err != nil {
		return nil, err
	}
	return s.transcripts.ListDialogs(ctx, contactID)
}
