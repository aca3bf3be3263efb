package models

import (
	"time"

	"github.com/lib/pq" // required for pq.StringArray
	"gorm.io/gorm"
)

// User roles. Staff and admin accounts belong to the studio; clients are
// the people who hired it.
const (
	RoleClient = "client"
	RoleStaff  = "staff"
	RoleAdmin  = "admin"
)

// User represents an account on the studio site.
type User struct {
	gorm.Model

	Email string `gorm:"uniqueIndex;not null" json:"email"`
	Name  string `gorm:"not null" json:"name"`
	Role  string `gorm:"not null;default:client" json:"role"`
	// Skills is shown on staff profile pages (e.g. "branding", "motion").
	Skills pq.StringArray `gorm:"type:text[]" json:"skills,omitempty"`

	IsBanned     bool      `json:"-"`
	BanExpiresAt time.Time `json:"-"`

	// TelegramChatID links a staff account to a Telegram chat for
	// offline message pings. Zero means not linked.
	TelegramChatID int64 `json:"-"`
}

// BanActive reports whether the user is currently banned. A zero
// BanExpiresAt means the ban does not expire on its own.
func (u *User) BanActive() bool {
	if !u.IsBanned {
		return false
	}
	if u.BanExpiresAt.IsZero() {
		return true
	}
	return time.Now().Before(u.BanExpiresAt)
}
