package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/novo-contact-backend/internal/data/repos"
	types "github.com/yungbote/novo-contact-backend/internal/domain"
	"github.com/yungbote/novo-contact-backend/internal/pkg/apierr"
	"github.com/yungbote/novo-contact-backend/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/novo-contact-backend/internal/pkg/errors"
	"github.com/yungbote/novo-contact-backend/internal/pkg/logger"
	"github.com/yungbote/novo-contact-backend/internal/pkg/pointers"
)

type ScheduledCallInput struct {
	ContactID            uuid.UUID  `json:"contact_id"`
	ScheduledTime        *time.Time `json:"scheduled_time"`
	StartTimeWindow      *time.Time `json:"start_time_window"`
	EndTimeWindow        *time.Time `json:"end_time_window"`
	RetryUntilSuccess    bool       `json:"retry_until_success"`
	RetryIntervalMinutes int        `json:"retry_interval_minutes"`
	Script               string     `json:"script"`
	Notes                string     `json:"notes"`
}

type ScheduledCallService interface {
	Create(ctx context.Context, userID uuid.UUID, in ScheduledCallInput) (*types.ScheduledCall, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*types.ScheduledCall, error)
	List(ctx context.Context, userID uuid.UUID, status string) ([]*types.ScheduledCall, error)
	Cancel(ctx context.Context, userID, id uuid.UUID) (*types.ScheduledCall, error)
}

type scheduledCallService struct {
	log         *logger.Logger
	repo        repos.ScheduledCallRepo
	contactRepo repos.ContactRepo
	notifier    CallNotifier
}

func NewScheduledCallService(log *logger.Logger, repo repos.ScheduledCallRepo, contactRepo repos.ContactRepo, notifier CallNotifier) ScheduledCallService {
	return &scheduledCallService{
		log:         log.With("service", "ScheduledCallService"),
		repo:        repo,
		contactRepo: contactRepo,
		notifier:    notifier,
	}
}

func (s *scheduledCallService) Create(ctx context.Context, userID uuid.UUID, in ScheduledCallInput) (*types.ScheduledCall, error) {
	bad := func(msg string) error {
		return apierr.New(http.StatusBadRequest, "invalid_scheduled_call", fmt.Errorf("%s: %w", msg, pkgerrors.ErrInvalidArgument))
	}
	if in.ScheduledTime == nil && in.StartTimeWindow == nil && in.EndTimeWindow == nil {
		return nil, bad("scheduled_time or a time window is required")
	}
	if in.StartTimeWindow != nil && in.EndTimeWindow != nil && in.EndTimeWindow.Before(*in.StartTimeWindow) {
		return nil, bad("end_time_window is before start_time_window")
	}
	if in.RetryIntervalMinutes < 0 {
		return nil, bad("retry_interval_minutes must not be negative")
	}
	c, err := s.contactRepo.GetByIDForUser(dbctx.Of(ctx), in.ContactID, userID)
	if err != nil {
		return nil, fmt.Errorf("load contact: %w", err)
	}
	if c == nil {
		return nil, apierr.New(http.StatusNotFound, "contact_not_found", pkgerrors.ErrNotFound)
	}

	sc := &types.ScheduledCall{
		UserID:               userID,
		ContactID:            c.ID,
		ScheduledTime:        utcPtr(in.ScheduledTime),
		StartTimeWindow:      utcPtr(in.StartTimeWindow),
		EndTimeWindow:        utcPtr(in.EndTimeWindow),
		RetryUntilSuccess:    in.RetryUntilSuccess,
		RetryIntervalMinutes: in.RetryIntervalMinutes,
		Script:               strings.TrimSpace(in.Script),
		Notes:                strings.TrimSpace(in.Notes),
		Status:               types.ScheduledCallPending,
	}
	if sc.RetryIntervalMinutes == 0 {
		sc.RetryIntervalMinutes = 60
	}
	created, err := s.repo.Create(dbctx.Of(ctx), []*types.ScheduledCall{sc})
	if err != nil {
		return nil, fmt.Errorf("create scheduled call: %w", err)
	}
	s.notifier.ScheduledCallUpdated(userID, created[0])
	return created[0], nil
}

func (s *scheduledCallService) Get(ctx context.Context, userID, id uuid.UUID) (*types.ScheduledCall, error) {
	sc, err := s.repo.GetByIDForUser(dbctx.Of(ctx), id, userID)
	if err != nil {
		return nil, err
	}
	if sc == nil {
		return nil, apierr.New(http.StatusNotFound, "scheduled_call_not_found", pkgerrors.ErrNotFound)
	}
	return sc, nil
}

func (s *scheduledCallService) List(ctx context.Context, userID uuid.UUID, status string) ([]*types.ScheduledCall, error) {
	return s.repo.ListByUser(dbctx.Of(ctx), userID, strings.TrimSpace(status))
}

func (s *scheduledCallService) Cancel(ctx context.Context, userID, id uuid.UUID) (*types.ScheduledCall, error) {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return nil, err
	}
	ok, err := s.repo.Cancel(dbctx.Of(ctx), id, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apierr.New(http.StatusConflict, "not_cancellable", fmt.Errorf("scheduled call is already in progress or finished"))
	}
	sc, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	s.notifier.ScheduledCallUpdated(userID, sc)
	return sc, nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	return pointers.Time(t.UTC())
}
