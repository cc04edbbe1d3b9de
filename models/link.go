package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AutomationLink is a directory entry pointing at an external automation tool.
// Category references Category.Name by value, not by id; renaming a category
// does not cascade into existing links.
type AutomationLink struct {
	ID             string     `gorm:"type:uuid;primaryKey" json:"id"`
	Title          string     `gorm:"size:255;not null" json:"title"`
	Description    string     `gorm:"type:text" json:"description"`
	URL            string     `gorm:"size:2048;not null" json:"url"`
	Category       string     `gorm:"size:128;index;not null" json:"category"`
	Clicks         int64      `gorm:"not null;default:0" json:"clicks"`
	UniqueVisitors int64      `gorm:"not null;default:0" json:"unique_visitors"`
	LastClicked    *time.Time `json:"last_clicked"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// BeforeCreate assigns the row id and stamps timestamps server-side.
func (l *AutomationLink) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	now := time.Now()
	if l.CreatedAt.IsZero() {
		l.CreatedAt = now
	}
	l.UpdatedAt = now
	return nil
}

// RowID implements realtime.Row.
func (l AutomationLink) RowID() string { return l.ID }
