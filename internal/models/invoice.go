package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceStatus represents the lifecycle state of an invoice.
type InvoiceStatus string

const (
	InvoiceStatusDue       InvoiceStatus = "due"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

// Valid reports whether s is a known status value.
func (s InvoiceStatus) Valid() bool {
	switch s {
	case InvoiceStatusDue, InvoiceStatusPaid, InvoiceStatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether s locks the invoice. Paid and cancelled are
// one-way: an invoice never transitions back to due.
func (s InvoiceStatus) Terminal() bool {
	return s == InvoiceStatusPaid || s == InvoiceStatusCancelled
}

// Invoice is a billing document issued by a company to a client.
// Subtotal, TaxTotal and GrandTotal are cached aggregates maintained by
// the invoice service inside the same transaction as any line mutation;
// they are never computed lazily at read time.
type Invoice struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserID uint `gorm:"index;not null" json:"user_id"`
	User   User `gorm:"foreignKey:UserID" json:"-"`

	CompanyID uint     `gorm:"index;not null" json:"company_id"`
	Company   *Company `gorm:"foreignKey:CompanyID" json:"company,omitempty"`
	ClientID  uint     `gorm:"index;not null" json:"client_id"`
	Client    *Client  `gorm:"foreignKey:ClientID" json:"client,omitempty"`

	// InvoiceNo is assigned once at creation (INV-<year>-NNNN) and is
	// immutable afterwards.
	InvoiceNo   string    `gorm:"size:20;uniqueIndex;not null" json:"invoice_no"`
	InvoiceDate time.Time `gorm:"not null" json:"invoice_date"`

	Status   InvoiceStatus `gorm:"size:20;not null;default:'due'" json:"status"`
	IsLocked bool          `gorm:"not null;default:false" json:"is_locked"`

	Subtotal   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"subtotal"`
	TaxTotal   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"tax_total"`
	GrandTotal decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"grand_total"`

	Items []InvoiceItem `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

// GetUserID implements policy.Ownable.
func (i *Invoice) GetUserID() uint {
	return i.UserID
}

// ComputeTotals derives the three aggregates from the loaded Items.
// The service persists the result; callers that only need display values
// can use it on a preloaded invoice.
func (i *Invoice) ComputeTotals() (subtotal, taxTotal, grandTotal decimal.Decimal) {
	for _, it := range i.Items {
		subtotal = subtotal.Add(it.Amount())
		taxTotal = taxTotal.Add(it.GSTAmount())
	}
	subtotal = subtotal.Round(2)
	taxTotal = taxTotal.Round(2)
	grandTotal = subtotal.Add(taxTotal)
	return subtotal, taxTotal, grandTotal
}

// InvoiceItem is a line on an invoice. Price and GSTRate are snapshots
// taken from the catalog item when the line is created, so later catalog
// edits do not rewrite history.
type InvoiceItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	InvoiceID uint     `gorm:"index;not null" json:"invoice_id"`
	Invoice   *Invoice `gorm:"foreignKey:InvoiceID" json:"-"`

	ItemID uint  `gorm:"index;not null" json:"item_id"`
	Item   *Item `gorm:"foreignKey:ItemID" json:"item,omitempty"`

	Quantity int             `gorm:"not null;default:1" json:"quantity"`
	Price    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	// GSTRate is a percentage, e.g. 18.00 for 18%.
	GSTRate decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"gst_rate"`
}

// Amount is the untaxed line value: quantity x price.
func (it *InvoiceItem) Amount() decimal.Decimal {
	return decimal.NewFromInt(int64(it.Quantity)).Mul(it.Price)
}

// GSTAmount is the tax on the line: amount x rate / 100.
func (it *InvoiceItem) GSTAmount() decimal.Decimal {
	return it.Amount().Mul(it.GSTRate).Shift(-2)
}

// LineTotal is the taxed line value.
func (it *InvoiceItem) LineTotal() decimal.Decimal {
	return it.Amount().Add(it.GSTAmount())
}
