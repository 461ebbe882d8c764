package calls

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

type ScheduledCallRepo interface {
	Create(dbc dbctx.Context, calls []*types.ScheduledCall) ([]*types.ScheduledCall, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.ScheduledCall, error)
	GetByIDForUser(dbc dbctx.Context, id, userID uuid.UUID) (*types.ScheduledCall, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID, status string) ([]*types.ScheduledCall, error)
	DueForRetry(dbc dbctx.Context, now time.Time, limit int) ([]*types.ScheduledCall, error)
	ClaimNextDue(dbc dbctx.Context, now time.Time, staleCalling time.Duration) (*types.ScheduledCall, error)
	MarkAttempted(dbc dbctx.Context, id uuid.UUID, success bool, callSID string, now time.Time) (*types.ScheduledCall, error)
	Cancel(dbc dbctx.Context, id, userID uuid.UUID) (bool, error)
}

type scheduledCallRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewScheduledCallRepo(db *gorm.DB, baseLog *logger.Logger) ScheduledCallRepo {
	repoLog := baseLog.With("repo", "ScheduledCallRepo")
	return &scheduledCallRepo{db: db, log: repoLog}
}

func (r *scheduledCallRepo) Create(dbc dbctx.Context, calls []*types.ScheduledCall) ([]*types.ScheduledCall, error) {
	if len(calls) == 0 {
		return []*types.ScheduledCall{}, nil
	}
	if err := dbc.DB(r.db).Create(&calls).Error; err != nil {
		return nil, err
	}
	return calls, nil
}

func (r *scheduledCallRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.ScheduledCall, error) {
	return r.first(dbc.DB(r.db).Where("id = ?", id))
}

func (r *scheduledCallRepo) GetByIDForUser(dbc dbctx.Context, id, userID uuid.UUID) (*types.ScheduledCall, error) {
	return r.first(dbc.DB(r.db).Where("id = ? AND user_id = ?", id, userID))
}

func (r *scheduledCallRepo) first(q *gorm.DB) (*types.ScheduledCall, error) {
	var sc types.ScheduledCall
	err := q.First(&sc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sc, nil
}

func (r *scheduledCallRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID, status string) ([]*types.ScheduledCall, error) {
	var results []*types.ScheduledCall
	q := dbc.DB(r.db).Where("user_id = ?", userID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if err := q.Order("created_at DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// DueForRetry lists retrying calls whose next attempt is due and that have
// attempts left.
func (r *scheduledCallRepo) DueForRetry(dbc dbctx.Context, now time.Time, limit int) ([]*types.ScheduledCall, error) {
	if limit <= 0 {
		limit = 10
	}
	var results []*types.ScheduledCall
	if err := dbc.DB(r.db).
		Where("status = ? AND next_retry_at <= ? AND call_attempts < ?",
			types.ScheduledCallRetrying, now.UTC(), types.MaxCallAttempts).
		Order("next_retry_at ASC").
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// ClaimNextDue picks one call that should be dialed now and leases it by
// moving it to the calling status. Calls stuck in calling longer than
// staleCalling are picked up again.
func (r *scheduledCallRepo) ClaimNextDue(dbc dbctx.Context, now time.Time, staleCalling time.Duration) (*types.ScheduledCall, error) {
	now = now.UTC()
	staleCutoff := now.Add(-staleCalling)

	var claimed *types.ScheduledCall
	err := dbc.DB(r.db).Transaction(func(txx *gorm.DB) error {
		q := txx
		if txx.Dialector.Name() == "postgres" {
			q = q.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"})
		}
		var sc types.ScheduledCall
		qErr := q.Where(`
        call_attempts < ?
        AND (
          (
            status = ?
            AND (
              scheduled_time <= ?
              OR (
                scheduled_time IS NULL
                AND (start_time_window IS NOT NULL OR end_time_window IS NOT NULL)
                AND (start_time_window IS NULL OR start_time_window <= ?)
                AND (end_time_window IS NULL OR end_time_window >= ?)
              )
            )
          )
          OR (status = ? AND next_retry_at <= ?)
          OR (status = ? AND last_attempt_at < ?)
        )
      `, types.MaxCallAttempts,
			types.ScheduledCallPending, now, now, now,
			types.ScheduledCallRetrying, now,
			types.ScheduledCallCalling, staleCutoff).
			Order("created_at ASC").
			First(&sc).Error
		if errors.Is(qErr, gorm.ErrRecordNotFound) {
			return nil
		}
		if qErr != nil {
			return qErr
		}
		uErr := txx.Model(&types.ScheduledCall{}).
			Where("id = ?", sc.ID).
			Updates(map[string]interface{}{
				"status":          types.ScheduledCallCalling,
				"last_attempt_at": now,
				"updated_at":      now,
			}).Error
		if uErr != nil {
			return uErr
		}
		sc.Status = types.ScheduledCallCalling
		sc.LastAttemptAt = &now
		claimed = &sc
		return nil
	})
	if err != nil {
		return nil, err
	}
	return claimed, nil
}

// MarkAttempted counts one dial attempt and moves the call to its next
// status: completed on success, otherwise retrying when the call retries
// until success and has attempts left, else failed.
func (r *scheduledCallRepo) MarkAttempted(dbc dbctx.Context, id uuid.UUID, success bool, callSID string, now time.Time) (*types.ScheduledCall, error) {
	now = now.UTC()
	var out *types.ScheduledCall
	err := dbc.DB(r.db).Transaction(func(txx *gorm.DB) error {
		var sc types.ScheduledCall
		if err := txx.Where("id = ?", id).First(&sc).Error; err != nil {
			return err
		}
		attempts := sc.CallAttempts + 1
		updates := map[string]interface{}{
			"call_attempts":   gorm.Expr("call_attempts + 1"),
			"last_attempt_at": now,
			"updated_at":      now,
		}
		if callSID != "" {
			updates["last_call_sid"] = callSID
		}

		var nextRetry *time.Time
		switch {
		case success:
			updates["status"] = types.ScheduledCallCompleted
			updates["next_retry_at"] = nil
		case sc.RetryUntilSuccess && attempts < types.MaxCallAttempts:
			t := now.Add(sc.RetryInterval())
			nextRetry = &t
			updates["status"] = types.ScheduledCallRetrying
			updates["next_retry_at"] = t
		default:
			updates["status"] = types.ScheduledCallFailed
			updates["next_retry_at"] = nil
		}

		if err := txx.Model(&types.ScheduledCall{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return err
		}
		sc.CallAttempts = attempts
		sc.LastAttemptAt = &now
		sc.NextRetryAt = nextRetry
		sc.Status = updates["status"].(string)
		if callSID != "" {
			sc.LastCallSID = callSID
		}
		out = &sc
		return nil
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Cancel stops a call that has not finished yet.
func (r *scheduledCallRepo) Cancel(dbc dbctx.Context, id, userID uuid.UUID) (bool, error) {
	res := dbc.DB(r.db).
		Model(&types.ScheduledCall{}).
		Where("id = ? AND user_id = ? AND status IN ?", id, userID,
			[]string{types.ScheduledCallPending, types.ScheduledCallRetrying}).
		Updates(map[string]interface{}{
			"status":        types.ScheduledCallCancelled,
			"next_retry_at": nil,
			"updated_at":    time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
