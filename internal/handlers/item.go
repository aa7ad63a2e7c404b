package handlers

import (
	"net/http"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/kmehta/invoicehub/internal/httpx"
	"github.com/kmehta/invoicehub/internal/models"
	"github.com/kmehta/invoicehub/internal/policy"
	"github.com/kmehta/invoicehub/internal/services"
	"github.com/kmehta/invoicehub/internal/validation"
)

type ItemHandler struct {
	db  *gorm.DB
	svc *services.ItemService
}

func NewItemHandler(db *gorm.DB, svc *services.ItemService) *ItemHandler {
	return &ItemHandler{db: db, svc: svc}
}

type itemRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	GSTRate     decimal.Decimal `json:"gst_rate"`
}

func (req itemRequest) validate() validation.Violations {
	v := make(validation.Violations)
	validation.Required("name", req.Name, v)
	validation.NonNegativeDecimal("price", req.Price, v)
	validation.DecimalRange("gst_rate", req.GSTRate, decimal.Zero, decimal.NewFromInt(100), v)
	return v
}

func (h *ItemHandler) List(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	q := h.db.WithContext(r.Context()).Model(&models.Item{})
	if !id.IsAdmin {
		q = q.Where("user_id = ?", id.UserID)
	}
	var items []models.Item
	if err := q.Order("name").Find(&items).Error; err != nil {
		serviceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, items)
}

func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	var req itemRequest
	if err := httpx.Decode(r, &req); err != nil {
		badRequest(w, "invalid_body")
		return
	}
	if v := req.validate(); !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	item := models.Item{
		UserID:      id.UserID,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		GSTRate:     req.GSTRate,
	}
	if err := h.db.WithContext(r.Context()).Create(&item).Error; err != nil {
		serviceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, item)
}

func (h *ItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	itemID, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid_id")
		return
	}
	var item models.Item
	if err := h.db.WithContext(r.Context()).First(&item, itemID).Error; err != nil {
		serviceError(w, err)
		return
	}
	if !policy.CanAccess(id, &item) {
		forbidden(w)
		return
	}
	httpx.JSON(w, http.StatusOK, item)
}

// Update edits the catalog entry only. Lines on existing invoices keep
// their snapshot of the old price and rate.
func (h *ItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	itemID, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid_id")
		return
	}
	var item models.Item
	if err := h.db.WithContext(r.Context()).First(&item, itemID).Error; err != nil {
		serviceError(w, err)
		return
	}
	if !policy.CanAccess(id, &item) {
		forbidden(w)
		return
	}
	var req itemRequest
	if err := httpx.Decode(r, &req); err != nil {
		badRequest(w, "invalid_body")
		return
	}
	if v := req.validate(); !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	item.Name = req.Name
	item.Description = req.Description
	item.Price = req.Price
	item.GSTRate = req.GSTRate
	if err := h.db.WithContext(r.Context()).Save(&item).Error; err != nil {
		serviceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, item)
}

// Delete refuses while invoice lines still reference the item.
func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	if !policy.CanDestroy(id) {
		forbidden(w)
		return
	}
	itemID, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid_id")
		return
	}
	if err := h.svc.Delete(r.Context(), itemID); err != nil {
		serviceError(w, err)
		return
	}
	noContent(w)
}
