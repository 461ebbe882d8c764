package calls

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusCancelled = "cancelled"
	StatusRetrying  = "retrying"

	// StatusCalling marks a row claimed by the retry worker while its call
	// is being placed.
	StatusCalling = "calling"

	MaxCallAttempts = 10
)

// ScheduledCall is an operator request to call a contact later, either at
// ScheduledTime or anywhere inside [StartTimeWindow, EndTimeWindow].
type ScheduledCall struct {
	ID                   uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID               uuid.UUID  `gorm:"type:uuid;index;not null" json:"user_id"`
	ContactID            uuid.UUID  `gorm:"type:uuid;index;not null" json:"contact_id"`
	ScheduledTime        *time.Time `gorm:"index" json:"scheduled_time,omitempty"`
	StartTimeWindow      *time.Time `json:"start_time_window,omitempty"`
	EndTimeWindow        *time.Time `json:"end_time_window,omitempty"`
	RetryUntilSuccess    bool       `gorm:"not null;default:false" json:"retry_until_success"`
	RetryIntervalMinutes int        `gorm:"not null;default:60" json:"retry_interval_minutes"`
	Script               string     `gorm:"type:text" json:"script,omitempty"`
	Notes                string     `gorm:"type:text" json:"notes,omitempty"`
	Status               string     `gorm:"index;not null;default:pending" json:"status"`
	CallAttempts         int        `gorm:"not null;default:0" json:"call_attempts"`
	LastAttemptAt        *time.Time `json:"last_attempt_at,omitempty"`
	NextRetryAt          *time.Time `gorm:"index" json:"next_retry_at,omitempty"`
	LastCallSID          string     `gorm:"column:last_call_sid" json:"last_call_sid,omitempty"`
	CreatedAt            time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt            time.Time  `gorm:"not null" json:"updated_at"`
}

func (ScheduledCall) TableName() string { return "scheduled_call" }

func (s *ScheduledCall) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.Status == "" {
		s.Status = StatusPending
	}
	return nil
}

// Due reports whether a pending call may be placed at now.
func (s *ScheduledCall) Due(now time.Time) bool {
	if s.ScheduledTime != nil {
		return !s.ScheduledTime.After(now)
	}
	if s.StartTimeWindow != nil && s.StartTimeWindow.After(now) {
		return false
	}
	if s.EndTimeWindow != nil && s.EndTimeWindow.Before(now) {
		return false
	}
	return s.StartTimeWindow != nil || s.EndTimeWindow != nil
}

func (s *ScheduledCall) RetryInterval() time.Duration {
	if s.RetryIntervalMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(s.RetryIntervalMinutes) * time.Minute
}
