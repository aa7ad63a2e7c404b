package models

import "time"

// Company is an issuing entity owned by a user. An invoice is always
// issued by one company to one client.
type Company struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserID uint `gorm:"index;not null" json:"user_id"`
	User   User `gorm:"foreignKey:UserID" json:"-"`

	Name    string `gorm:"size:100;not null" json:"name"`
	Address string `gorm:"type:text" json:"address,omitempty"`
	GSTIN   string `gorm:"size:15" json:"gstin,omitempty"`
	Email   string `gorm:"size:255" json:"email,omitempty"`
	Phone   string `gorm:"size:15" json:"phone,omitempty"`
}

// GetUserID implements policy.Ownable.
func (c *Company) GetUserID() uint {
	return c.UserID
}
