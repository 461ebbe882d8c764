package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/novo-contact-backend/internal/data/repos"
	"github.com/yungbote/novo-contact-backend/internal/modules/dialog"
	"github.com/yungbote/novo-contact-backend/internal/modules/telephony"
	"github.com/yungbote/novo-contact-backend/internal/pkg/apierr"
	"github.com/yungbote/novo-contact-backend/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/novo-contact-backend/internal/pkg/errors"
	"github.com/yungbote/novo-contact-backend/internal/pkg/logger"
)

type InitiateResult struct {
	CallSID string `json:"call_sid"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

type CallService interface {
	// Initiate places a call for one of the caller's contacts. script
	// overrides the contact's stored script when non-empty.
	Initiate(ctx context.Context, userID, contactID uuid.UUID, script string) (*InitiateResult, error)
	Status(ctx context.Context, callSID string) (*telephony.Status, error)
}

type callService struct {
	log         *logger.Logger
	contactRepo repos.ContactRepo
	driver      telephony.Driver
	registry    dialog.Registry
	notifier    dialog.Notifier
}

func NewCallService(
	log *logger.Logger,
	contactRepo repos.ContactRepo,
	driver telephony.Driver,
	registry dialog.Registry,
	notifier dialog.Notifier,
) CallService {
	if notifier == nil {
		notifier = dialog.NopNotifier()
	}
	return &callService{
		log:         log.With("service", "CallService"),
		contactRepo: contactRepo,
		driver:      driver,
		registry:    registry,
		notifier:    notifier,
	}
}

func (s *callService) Initiate(ctx context.Context, userID, contactID uuid.UUID, script string) (*InitiateResult, error) {
	c, err := s.contactRepo.GetByIDForUser(dbctx.Of(ctx), contactID, userID)
	if err != nil {
		return nil, fmt.Errorf("load contact: %w", err)
	}
	if c == nil {
		return nil, apierr.New(http.StatusNotFound, "contact_not_found", fmt.Errorf("contact not found: %w", pkgerrors.ErrNotFound))
	}
	script = strings.TrimSpace(script)
	if script == "" {
		script = strings.TrimSpace(c.Script)
	}
	if script == "" {
		return nil, apierr.New(http.StatusBadRequest, "no_script", fmt.Errorf("contact has no script: %w", pkgerrors.ErrInvalidArgument))
	}

	sid := s.driver.Place(ctx, c.Phone)
	if sid == "" {
		return nil, apierr.New(http.StatusInternalServerError, "call_failed", fmt.Errorf("failed to initiate call: %w", pkgerrors.ErrUpstream))
	}
	if err := s.registry.Put(ctx, dialog.ActiveCall{
		CallSID:     sid,
		ContactID:   c.ID,
		OwnerUserID: userID,
		Script:      script,
		State:       dialog.StateInitiated,
	}); err != nil {
		s.log.Error("Active call registration failed", "call_sid", sid, "error", err)
		return nil, apierr.New(http.StatusInternalServerError, "call_failed", fmt.Errorf("register call: %w", err))
	}
	s.notifier.CallStatus(ctx, userID, sid, fmt.Sprintf("call %s: initiated", sid))
	s.log.Info("Call initiated", "call_sid", sid, "contact_id", c.ID, "simulated", s.driver.Simulated())

	msg := "Call initiated"
	if s.driver.Simulated() {
		msg = "Call simulated: telephony is not configured"
	}
	return &InitiateResult{CallSID: sid, Status: "initiated", Message: msg}, nil
}

func (s *callService) Status(ctx context.Context, callSID string) (*telephony.Status, error) {
	callSID = strings.TrimSpace(callSID)
	if callSID == "" {
		return nil, apierr.New(http.StatusBadRequest, "invalid_call_sid", pkgerrors.ErrInvalidArgument)
	}
	st, err := s.driver.FetchStatus(ctx, callSID)
	if err != nil {
		return nil, apierr.New(http.StatusBadGateway, "status_unavailable", fmt.Errorf("fetch call status: %w", err))
	}
	return st, nil
}
