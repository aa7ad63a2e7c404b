package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Item is a catalog entry owned by a user. Invoice lines copy its
// price and GST rate at creation; the catalog row itself may change
// afterwards without touching issued invoices.
type Item struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserID uint `gorm:"index;not null" json:"user_id"`
	User   User `gorm:"foreignKey:UserID" json:"-"`

	Name        string `gorm:"size:100;not null" json:"name"`
	Description string `gorm:"type:text" json:"description,omitempty"`

	Price decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	// GSTRate is a percentage, e.g. 18.00 for 18%.
	GSTRate decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"gst_rate"`
}

// GetUserID implements policy.Ownable.
func (i *Item) GetUserID() uint {
	return i.UserID
}

// GSTAmount returns the tax on a single unit at the catalog price.
func (i *Item) GSTAmount() decimal.Decimal {
	return i.Price.Mul(i.GSTRate).Shift(-2)
}

// PriceWithGST returns the unit price including tax.
func (i *Item) PriceWithGST() decimal.Decimal {
	return i.Price.Add(i.GSTAmount())
}
