package handlers

import (
	"net/http"

	"gorm.io/gorm"

	"github.com/kmehta/invoicehub/internal/httpx"
	"github.com/kmehta/invoicehub/internal/models"
	"github.com/kmehta/invoicehub/internal/policy"
	"github.com/kmehta/invoicehub/internal/services"
	"github.com/kmehta/invoicehub/internal/validation"
)

// InvoiceItemHandler manages invoice lines. Every mutation goes through
// the invoice service so the parent's totals stay in step.
type InvoiceItemHandler struct {
	db  *gorm.DB
	svc *services.InvoiceService
}

func NewInvoiceItemHandler(db *gorm.DB, svc *services.InvoiceService) *InvoiceItemHandler {
	return &InvoiceItemHandler{db: db, svc: svc}
}

func (h *InvoiceItemHandler) List(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	userID := id.UserID
	if id.IsAdmin {
		userID = 0
	}
	lines, err := h.svc.ListItems(r.Context(), userID)
	if err != nil {
		serviceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, lines)
}

type addLineRequest struct {
	InvoiceID uint `json:"invoice_id"`
	ItemID    uint `json:"item_id"`
	Quantity  int  `json:"quantity"`
}

func (h *InvoiceItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	var req addLineRequest
	if err := httpx.Decode(r, &req); err != nil {
		badRequest(w, "invalid_body")
		return
	}
	v := make(validation.Violations)
	if req.InvoiceID == 0 {
		v["invoice_id"] = "required"
	}
	if req.ItemID == 0 {
		v["item_id"] = "required"
	}
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}

	inv, err := h.svc.Get(r.Context(), req.InvoiceID)
	if err != nil {
		serviceError(w, err)
		return
	}
	if !policy.CanAccess(id, inv) {
		forbidden(w)
		return
	}

	// the catalog item must belong to the caller too, otherwise one
	// tenant could snapshot another tenant's price and GST rate
	var item models.Item
	if err := h.db.WithContext(r.Context()).First(&item, req.ItemID).Error; err != nil {
		serviceError(w, err)
		return
	}
	if !policy.CanAccess(id, &item) {
		forbidden(w)
		return
	}

	line, err := h.svc.AddItem(r.Context(), services.AddItemInput{
		InvoiceID: req.InvoiceID,
		ItemID:    req.ItemID,
		Quantity:  req.Quantity,
	})
	if err != nil {
		serviceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, line)
}

// load fetches the line and checks ownership through the parent invoice.
func (h *InvoiceItemHandler) load(w http.ResponseWriter, r *http.Request) (*models.InvoiceItem, bool) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return nil, false
	}
	lineID, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid_id")
		return nil, false
	}
	line, err := h.svc.GetItem(r.Context(), lineID)
	if err != nil {
		serviceError(w, err)
		return nil, false
	}
	if line.Invoice == nil || !policy.CanAccess(id, line.Invoice) {
		forbidden(w)
		return nil, false
	}
	return line, true
}

func (h *InvoiceItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	line, ok := h.load(w, r)
	if !ok {
		return
	}
	httpx.JSON(w, http.StatusOK, line)
}

type updateLineRequest struct {
	Quantity int `json:"quantity"`
}

func (h *InvoiceItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	line, ok := h.load(w, r)
	if !ok {
		return
	}
	var req updateLineRequest
	if err := httpx.Decode(r, &req); err != nil {
		badRequest(w, "invalid_body")
		return
	}
	v := make(validation.Violations)
	validation.PositiveInt("quantity", req.Quantity, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	updated, err := h.svc.UpdateItemQuantity(r.Context(), line.ID, req.Quantity)
	if err != nil {
		serviceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, updated)
}

func (h *InvoiceItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	line, ok := h.load(w, r)
	if !ok {
		return
	}
	if err := h.svc.RemoveItem(r.Context(), line.ID); err != nil {
		serviceError(w, err)
		return
	}
	noContent(w)
}
