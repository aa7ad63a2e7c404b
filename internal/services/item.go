package services

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/kmehta/invoicehub/internal/models"
)

// ItemService guards the catalog against deletes that would orphan
// invoice history. Plain reads and writes stay in the handlers.
type ItemService struct {
	db *gorm.DB
}

func NewItemService(db *gorm.DB) *ItemService {
	return &ItemService{db: db}
}

// Delete removes a catalog item unless any invoice line still references
// it, in which case ErrItemInUse is returned and nothing changes.
func (s *ItemService) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item models.Item
		if err := tx.First(&item, id).Error; err != nil {
			return err
		}
		var refs int64
		if err := tx.Model(&models.InvoiceItem{}).Where("item_id = ?", id).Count(&refs).Error; err != nil {
			return err
		}
		if refs > 0 {
			return fmt.Errorf("%w: %d invoice line(s)", ErrItemInUse, refs)
		}
		return tx.Delete(&item).Error
	})
}
