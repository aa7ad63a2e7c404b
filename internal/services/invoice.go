package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kmehta/invoicehub/internal/models"
	"github.com/kmehta/invoicehub/internal/pdf"
)

// InvoiceService owns the invoice ledger: number allocation, the lock
// guard and aggregate recalculation. Every mutation runs in a single
// transaction so readers never observe an invoice whose totals disagree
// with its lines.
type InvoiceService struct {
	db *gorm.DB
	// now is injectable so year-scoped allocation is deterministic in tests.
	now func() time.Time
}

func NewInvoiceService(db *gorm.DB) *InvoiceService {
	return &InvoiceService{db: db, now: time.Now}
}

// CreateInvoiceInput carries the caller-supplied fields for Create.
// Ownership of company and client is verified by the caller.
type CreateInvoiceInput struct {
	UserID      uint
	CompanyID   uint
	ClientID    uint
	InvoiceDate time.Time
	Status      models.InvoiceStatus
}

// Create persists a new invoice with a freshly allocated number and zero
// totals. The unique index on invoice_no is the backstop against
// concurrent allocation in the same year: on a duplicate-key failure the
// whole transaction is re-run once before ErrNumberConflict surfaces.
func (s *InvoiceService) Create(ctx context.Context, in CreateInvoiceInput) (*models.Invoice, error) {
	status := in.Status
	if status == "" {
		status = models.InvoiceStatusDue
	}
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, in.Status)
	}
	date := in.InvoiceDate
	if date.IsZero() {
		date = s.now()
	}

	inv, err := s.createOnce(ctx, in, status, date)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		inv, err = s.createOnce(ctx, in, status, date)
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, ErrNumberConflict
	}
	return inv, err
}

func (s *InvoiceService) createOnce(ctx context.Context, in CreateInvoiceInput, status models.InvoiceStatus, date time.Time) (*models.Invoice, error) {
	inv := &models.Invoice{
		UserID:      in.UserID,
		CompanyID:   in.CompanyID,
		ClientID:    in.ClientID,
		InvoiceDate: date,
		Status:      status,
		IsLocked:    status.Terminal(),
		Subtotal:    decimal.Zero,
		TaxTotal:    decimal.Zero,
		GrandTotal:  decimal.Zero,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		no, err := nextInvoiceNumber(tx, s.now().Year())
		if err != nil {
			return err
		}
		inv.InvoiceNo = no
		return tx.Create(inv).Error
	})
	if err != nil {
		return nil, err
	}
	return inv, nil
}

// nextInvoiceNumber computes INV-<year>-NNNN from the highest existing
// number for the year. Sequences restart at 0001 each calendar year.
// The current max row is locked on dialects that support it; the unique
// index covers the rest.
func nextInvoiceNumber(tx *gorm.DB, year int) (string, error) {
	prefix := fmt.Sprintf("INV-%d-", year)
	var last models.Invoice
	// longer suffixes sort first so the numeric max wins once a year's
	// sequence grows past four digits
	err := lockForUpdate(tx).
		Where("invoice_no LIKE ?", prefix+"%").
		Order("LENGTH(invoice_no) DESC, invoice_no DESC").
		First(&last).Error
	seq := 1
	switch {
	case err == nil:
		n, convErr := strconv.Atoi(strings.TrimPrefix(last.InvoiceNo, prefix))
		if convErr != nil {
			return "", fmt.Errorf("malformed invoice number %q: %w", last.InvoiceNo, convErr)
		}
		seq = n + 1
	case errors.Is(err, gorm.ErrRecordNotFound):
		// first invoice of the year
	default:
		return "", err
	}
	return fmt.Sprintf("%s%04d", prefix, seq), nil
}

// lockForUpdate applies SELECT ... FOR UPDATE where the dialect supports
// it. SQLite serializes writers at the connection level instead.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

// Get loads an invoice with company, client and lines.
func (s *InvoiceService) Get(ctx context.Context, id uint) (*models.Invoice, error) {
	var inv models.Invoice
	err := s.db.WithContext(ctx).
		Preload("Company").
		Preload("Client").
		Preload("Items.Item").
		First(&inv, id).Error
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// InvoiceFilter scopes List. UserID zero means all tenants (admin).
type InvoiceFilter struct {
	UserID uint
	Limit  int
	Offset int
}

// List returns invoices newest-first plus the unpaginated total.
func (s *InvoiceService) List(ctx context.Context, f InvoiceFilter) ([]models.Invoice, int64, error) {
	limit := f.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	q := s.db.WithContext(ctx).Model(&models.Invoice{})
	if f.UserID != 0 {
		q = q.Where("user_id = ?", f.UserID)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var invoices []models.Invoice
	err := q.Preload("Client").Order("id DESC").Limit(limit).Offset(f.Offset).Find(&invoices).Error
	return invoices, total, err
}

// UpdateInvoiceInput carries optional field updates; nil means unchanged.
// InvoiceNo is deliberately absent: numbers are immutable once assigned.
type UpdateInvoiceInput struct {
	CompanyID   *uint
	ClientID    *uint
	InvoiceDate *time.Time
	Status      *models.InvoiceStatus
}

// Update applies field changes under the lock guard. Setting status to
// paid or cancelled locks the invoice in the same save; the transition
// is one-way and there is no unlock path.
func (s *InvoiceService) Update(ctx context.Context, id uint, in UpdateInvoiceInput) (*models.Invoice, error) {
	var inv models.Invoice
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).First(&inv, id).Error; err != nil {
			return err
		}
		if inv.IsLocked {
			return ErrInvoiceLocked
		}
		if in.Status != nil {
			if !in.Status.Valid() {
				return fmt.Errorf("%w: %q", ErrInvalidStatus, *in.Status)
			}
			inv.Status = *in.Status
			if in.Status.Terminal() {
				inv.IsLocked = true
			}
		}
		if in.CompanyID != nil {
			inv.CompanyID = *in.CompanyID
		}
		if in.ClientID != nil {
			inv.ClientID = *in.ClientID
		}
		if in.InvoiceDate != nil {
			inv.InvoiceDate = *in.InvoiceDate
		}
		return tx.Save(&inv).Error
	})
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// Delete removes an invoice and its lines. Destroy is admin-gated at the
// handler; the lock guard does not apply to whole-invoice deletion.
func (s *InvoiceService) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var inv models.Invoice
		if err := lockForUpdate(tx).First(&inv, id).Error; err != nil {
			return err
		}
		if err := tx.Where("invoice_id = ?", inv.ID).Delete(&models.InvoiceItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&inv).Error
	})
}

// lockInvoice loads the invoice row for update and enforces the lock
// guard before any line mutation.
func lockInvoice(tx *gorm.DB, invoiceID uint) (*models.Invoice, error) {
	var inv models.Invoice
	if err := lockForUpdate(tx).First(&inv, invoiceID).Error; err != nil {
		return nil, err
	}
	if inv.IsLocked {
		return nil, ErrInvoiceLocked
	}
	return &inv, nil
}

// AddItemInput carries the fields for a new invoice line.
type AddItemInput struct {
	InvoiceID uint
	ItemID    uint
	Quantity  int
}

// AddItem appends a line to an unlocked invoice, snapshotting price and
// GST rate from the catalog item, and recalculates the aggregates in
// the same transaction.
func (s *InvoiceService) AddItem(ctx context.Context, in AddItemInput) (*models.InvoiceItem, error) {
	qty := in.Quantity
	if qty <= 0 {
		qty = 1
	}
	var line models.InvoiceItem
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inv, err := lockInvoice(tx, in.InvoiceID)
		if err != nil {
			return err
		}
		var item models.Item
		if err := tx.First(&item, in.ItemID).Error; err != nil {
			return err
		}
		line = models.InvoiceItem{
			InvoiceID: inv.ID,
			ItemID:    item.ID,
			Quantity:  qty,
			Price:     item.Price,
			GSTRate:   item.GSTRate,
		}
		if err := tx.Create(&line).Error; err != nil {
			return err
		}
		return recalculate(tx, inv.ID)
	})
	if err != nil {
		return nil, err
	}
	return &line, nil
}

// GetItem loads one invoice line with its parent invoice, which the
// handler needs for ownership checks.
func (s *InvoiceService) GetItem(ctx context.Context, lineID uint) (*models.InvoiceItem, error) {
	var line models.InvoiceItem
	err := s.db.WithContext(ctx).Preload("Invoice").Preload("Item").First(&line, lineID).Error
	if err != nil {
		return nil, err
	}
	return &line, nil
}

// ListItems returns the lines of all invoices owned by userID, or of
// every invoice when userID is zero.
func (s *InvoiceService) ListItems(ctx context.Context, userID uint) ([]models.InvoiceItem, error) {
	q := s.db.WithContext(ctx).Model(&models.InvoiceItem{})
	if userID != 0 {
		q = q.Joins("JOIN invoices ON invoices.id = invoice_items.invoice_id").
			Where("invoices.user_id = ?", userID)
	}
	var lines []models.InvoiceItem
	err := q.Order("invoice_items.id").Find(&lines).Error
	return lines, err
}

// UpdateItemQuantity changes a line's quantity under the lock guard.
// The price/rate snapshot is preserved; swapping the catalog item means
// removing the line and adding a new one.
func (s *InvoiceService) UpdateItemQuantity(ctx context.Context, lineID uint, quantity int) (*models.InvoiceItem, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive, got %d", quantity)
	}
	var line models.InvoiceItem
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&line, lineID).Error; err != nil {
			return err
		}
		if _, err := lockInvoice(tx, line.InvoiceID); err != nil {
			return err
		}
		line.Quantity = quantity
		if err := tx.Save(&line).Error; err != nil {
			return err
		}
		return recalculate(tx, line.InvoiceID)
	})
	if err != nil {
		return nil, err
	}
	return &line, nil
}

// RemoveItem deletes a line under the lock guard and recalculates.
func (s *InvoiceService) RemoveItem(ctx context.Context, lineID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var line models.InvoiceItem
		if err := tx.First(&line, lineID).Error; err != nil {
			return err
		}
		if _, err := lockInvoice(tx, line.InvoiceID); err != nil {
			return err
		}
		if err := tx.Delete(&line).Error; err != nil {
			return err
		}
		return recalculate(tx, line.InvoiceID)
	})
}

// Recalculate recomputes the cached aggregates from the current lines.
// It is idempotent; the normal mutation paths call the transactional
// variant themselves, so this is only needed for repair jobs.
func (s *InvoiceService) Recalculate(ctx context.Context, invoiceID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return recalculate(tx, invoiceID)
	})
}

// recalculate writes the three aggregate columns and nothing else, so it
// can never re-trigger number allocation or status transitions.
func recalculate(tx *gorm.DB, invoiceID uint) error {
	var items []models.InvoiceItem
	if err := tx.Where("invoice_id = ?", invoiceID).Find(&items).Error; err != nil {
		return err
	}
	inv := models.Invoice{Items: items}
	subtotal, taxTotal, grandTotal := inv.ComputeTotals()
	return tx.Model(&models.Invoice{}).Where("id = ?", invoiceID).
		Updates(map[string]any{
			"subtotal":    subtotal,
			"tax_total":   taxTotal,
			"grand_total": grandTotal,
		}).Error
}

// RenderPDF renders the invoice document and returns its bytes plus a
// download filename.
func (s *InvoiceService) RenderPDF(ctx context.Context, id uint) ([]byte, string, error) {
	inv, err := s.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}
	out, err := pdfBytes(inv)
	if err != nil {
		return nil, "", err
	}
	return out, fmt.Sprintf("invoice_%s.pdf", inv.InvoiceNo), nil
}

func pdfBytes(inv *models.Invoice) ([]byte, error) {
	return pdf.InvoicePDF(buildPDFData(inv))
}

func buildPDFData(inv *models.Invoice) pdf.InvoiceData {
	data := pdf.InvoiceData{
		InvoiceNumber: inv.InvoiceNo,
		Date:          inv.InvoiceDate.Format("2006-01-02"),
		Status:        string(inv.Status),
		Subtotal:      inv.Subtotal.StringFixed(2),
		Tax:           inv.TaxTotal.StringFixed(2),
		GrandTotal:    inv.GrandTotal.StringFixed(2),
	}
	if inv.Company != nil {
		data.Company = pdf.PartyData{Name: inv.Company.Name, Address: inv.Company.Address, Email: inv.Company.Email}
	}
	if inv.Client != nil {
		data.Client = pdf.PartyData{Name: inv.Client.Name, Address: inv.Client.Address, Email: inv.Client.Email}
	}
	for _, line := range inv.Items {
		name := ""
		if line.Item != nil {
			name = line.Item.Name
		}
		data.Items = append(data.Items, pdf.LineData{
			Name:     name,
			Quantity: line.Quantity,
			Price:    line.Price.StringFixed(2),
			GST:      line.GSTAmount().Round(2).StringFixed(2),
			Total:    line.LineTotal().Round(2).StringFixed(2),
		})
	}
	return data
}
