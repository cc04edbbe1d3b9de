package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User roles as stored in the role column.
const (
	RoleAdministrator = "Administrator"
	RoleUser          = "User"
	RoleViewer        = "Viewer"
)

// ValidRole reports whether role is one of the three known roles.
func ValidRole(role string) bool {
	return role == RoleAdministrator || role == RoleUser || role == RoleViewer
}

// User is a member of the admin panel. Passwords are stored as bcrypt
// hashes only; a user without a hash cannot log in.
type User struct {
	ID           string     `gorm:"type:uuid;primaryKey" json:"id"`
	Name         string     `gorm:"size:128;not null" json:"name"`
	Email        string     `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Role         string     `gorm:"size:32;not null;default:'Viewer'" json:"role"`
	PasswordHash string     `gorm:"size:255" json:"-"`
	LastActive   *time.Time `json:"last_active"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	now := time.Now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	return nil
}

// RowID implements realtime.Row.
func (u User) RowID() string { return u.ID }
