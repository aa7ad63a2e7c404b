package models

import "time"

// Client is a billed party owned by a user.
type Client struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserID uint `gorm:"index;not null" json:"user_id"`
	User   User `gorm:"foreignKey:UserID" json:"-"`

	Name    string `gorm:"size:100;not null" json:"name"`
	Email   string `gorm:"size:255" json:"email,omitempty"`
	Phone   string `gorm:"size:15" json:"phone,omitempty"`
	Address string `gorm:"type:text" json:"address,omitempty"`
	GSTIN   string `gorm:"size:15" json:"gstin,omitempty"`
}

// GetUserID implements policy.Ownable.
func (c *Client) GetUserID() uint {
	return c.UserID
}

// HasEmail reports whether the client can receive invoice mail.
func (c *Client) HasEmail() bool {
	return c.Email != ""
}
