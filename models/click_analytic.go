package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ClickAnalytic is the append-only audit row written for every tracked
// click. Rows are never updated; they are removed only when the owning
// link is deleted.
type ClickAnalytic struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	LinkID    string    `gorm:"type:uuid;index;index:idx_click_link_session;not null" json:"link_id"`
	UserID    *string   `gorm:"type:uuid" json:"user_id"`
	IPAddress *string   `gorm:"size:45" json:"ip_address"`
	UserAgent *string   `gorm:"size:512" json:"user_agent"`
	SessionID *string   `gorm:"size:128;index:idx_click_link_session" json:"session_id"`
	ClickedAt time.Time `gorm:"index;not null" json:"clicked_at"`
}

func (c *ClickAnalytic) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.ClickedAt.IsZero() {
		c.ClickedAt = time.Now()
	}
	return nil
}

// RowID implements realtime.Row.
func (c ClickAnalytic) RowID() string { return c.ID }
