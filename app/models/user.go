package models

import "time"

// User roles. Role gates UI visibility (services management is admin-only)
// and the admin-only REST endpoints.
const (
	RoleAdmin    = "admin"
	RoleEmployee = "employee"
)

// User represents an account that can operate the register
type User struct {
	ID           string    `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	PasswordHash string    `json:"-"` // local fallback store only
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsAdmin reports whether the user holds the admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// StoredSession is the persisted session marker: either a backend bearer
// token (online) or a locally signed token plus the offline user record.
// It is the file-based analog of the browser token/offline-user entries.
type StoredSession struct {
	Offline     bool      `json:"offline"`
	Token       string    `json:"token"`
	OfflineUser *User     `json:"offline_user,omitempty"`
	SavedAt     time.Time `json:"saved_at"`
}
