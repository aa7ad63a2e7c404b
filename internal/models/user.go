package models

import "time"

// User is an account that owns companies, clients, items and invoices.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Email    string `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Password string `gorm:"size:255;not null" json:"-"`
	Name     string `gorm:"size:100" json:"name"`

	// IsAdmin grants access to every tenant's records and to destroy endpoints.
	IsAdmin bool `gorm:"not null;default:false" json:"is_admin"`
}

// GetUserID implements policy.Ownable; a user owns itself.
func (u *User) GetUserID() uint {
	return u.ID
}
