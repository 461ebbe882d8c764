package contact

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleAgent  = "agent"
	RoleClient = "client"
)

// Dialog is one phone conversation with a contact. CallSID records the call
// that opened it; turns are appended to the contact's most recent dialog.
type Dialog struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	ContactID  uuid.UUID       `gorm:"type:uuid;index;not null" json:"contact_id"`
	CallSID    string          `gorm:"index;column:call_sid" json:"call_sid,omitempty"`
	Date       time.Time       `gorm:"index;not null" json:"date"`
	Transcript string          `gorm:"type:text" json:"transcript,omitempty"`
	Messages   []DialogMessage `gorm:"constraint:OnDelete:CASCADE;foreignKey:DialogID;references:ID" json:"messages,omitempty"`
	CreatedAt  time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time       `gorm:"not null" json:"updated_at"`
}

func (Dialog) TableName() string { return "contact_dialog" }

func (d *Dialog) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	if d.Date.IsZero() {
		d.Date = time.Now().UTC()
	}
	return nil
}

// DialogMessage is one utterance. Seq is strictly increasing within a
// dialog and defines conversation order.
type DialogMessage struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	DialogID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_dialog_message_seq,priority:1" json:"dialog_id"`
	Seq       int       `gorm:"not null;uniqueIndex:idx_dialog_message_seq,priority:2" json:"seq"`
	Role      string    `gorm:"not null" json:"role"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	Timestamp time.Time `gorm:"not null" json:"timestamp"`
}

func (DialogMessage) TableName() string { return "dialog_message" }

func (m *DialogMessage) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.Timestamp.IsZero() {
		m.Timestamp = time.Now().UTC()
	}
	return nil
}
