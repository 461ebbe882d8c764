package contact

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Contact is a callee owned by one operator. Script is the prepared text
// played when the callee agrees to listen.
type Contact struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID      `gorm:"type:uuid;index;not null" json:"user_id"`
	Name      string         `gorm:"not null" json:"name"`
	Phone     string         `gorm:"not null" json:"phone"`
	Email     string         `json:"email,omitempty"`
	Company   string         `json:"company,omitempty"`
	Script    string         `gorm:"type:text" json:"script,omitempty"`
	Tags      datatypes.JSON `json:"tags,omitempty"`
	IsActive  bool           `gorm:"not null;default:true" json:"is_active"`
	Dialogs   []Dialog       `gorm:"constraint:OnDelete:CASCADE;foreignKey:ContactID;references:ID" json:"dialogs,omitempty"`
	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Contact) TableName() string { return "contact" }

func (c *Contact) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// TagList decodes Tags, treating malformed JSON as no tags.
func (c *Contact) TagList() []string {
	if c == nil || len(c.Tags) == 0 {
		return nil
	}
	var out []string
	if err := json.Unmarshal(c.Tags, &out); err != nil {
		return nil
	}
	return out
}

func (c *Contact) SetTags(tags []string) {
	if len(tags) == 0 {
		c.Tags = nil
		return
	}
	raw, _ := json.Marshal(tags)
	c.Tags = datatypes.JSON(raw)
}
