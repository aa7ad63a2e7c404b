package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/kmehta/invoicehub/internal/httpx"
	"github.com/kmehta/invoicehub/internal/models"
	"github.com/kmehta/invoicehub/internal/policy"
	"github.com/kmehta/invoicehub/internal/services"
	"github.com/kmehta/invoicehub/internal/validation"
)

type InvoiceHandler struct {
	svc    *services.InvoiceService
	mailer *services.InvoiceMailer
}

func NewInvoiceHandler(svc *services.InvoiceService, mailer *services.InvoiceMailer) *InvoiceHandler {
	return &InvoiceHandler{svc: svc, mailer: mailer}
}

type createInvoiceRequest struct {
	CompanyID   uint   `json:"company_id"`
	ClientID    uint   `json:"client_id"`
	InvoiceDate string `json:"invoice_date"`
	Status      string `json:"status"`
}

type listInvoicesResponse struct {
	Invoices []models.Invoice `json:"invoices"`
	Total    int64            `json:"total"`
}

func (h *InvoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	filter := services.InvoiceFilter{Limit: limit, Offset: offset}
	if !id.IsAdmin {
		filter.UserID = id.UserID
	}
	invoices, total, err := h.svc.List(r.Context(), filter)
	if err != nil {
		serviceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, listInvoicesResponse{Invoices: invoices, Total: total})
}

func (h *InvoiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	var req createInvoiceRequest
	if err := httpx.Decode(r, &req); err != nil {
		badRequest(w, "invalid_body")
		return
	}

	v := make(validation.Violations)
	if req.CompanyID == 0 {
		v["company_id"] = "required"
	}
	if req.ClientID == 0 {
		v["client_id"] = "required"
	}
	var date time.Time
	if req.InvoiceDate != "" {
		var err error
		date, err = time.Parse("2006-01-02", req.InvoiceDate)
		if err != nil {
			v["invoice_date"] = "invalid_date"
		}
	}
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}

	inv, err := h.svc.Create(r.Context(), services.CreateInvoiceInput{
		UserID:      id.UserID,
		CompanyID:   req.CompanyID,
		ClientID:    req.ClientID,
		InvoiceDate: date,
		Status:      models.InvoiceStatus(req.Status),
	})
	if err != nil {
		serviceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, inv)
}

// load fetches the invoice and runs the ownership check, writing the
// error response itself on failure.
func (h *InvoiceHandler) load(w http.ResponseWriter, r *http.Request) (*models.Invoice, bool) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return nil, false
	}
	invoiceID, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid_id")
		return nil, false
	}
	inv, err := h.svc.Get(r.Context(), invoiceID)
	if err != nil {
		serviceError(w, err)
		return nil, false
	}
	if !policy.CanAccess(id, inv) {
		forbidden(w)
		return nil, false
	}
	return inv, true
}

func (h *InvoiceHandler) Get(w http.ResponseWriter, r *http.Request) {
	inv, ok := h.load(w, r)
	if !ok {
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

type updateInvoiceRequest struct {
	CompanyID   *uint   `json:"company_id"`
	ClientID    *uint   `json:"client_id"`
	InvoiceDate *string `json:"invoice_date"`
	Status      *string `json:"status"`
}

func (h *InvoiceHandler) Update(w http.ResponseWriter, r *http.Request) {
	inv, ok := h.load(w, r)
	if !ok {
		return
	}
	var req updateInvoiceRequest
	if err := httpx.Decode(r, &req); err != nil {
		badRequest(w, "invalid_body")
		return
	}

	input := services.UpdateInvoiceInput{CompanyID: req.CompanyID, ClientID: req.ClientID}
	if req.InvoiceDate != nil {
		date, err := time.Parse("2006-01-02", *req.InvoiceDate)
		if err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "validation_failed",
				validation.Violations{"invoice_date": "invalid_date"})
			return
		}
		input.InvoiceDate = &date
	}
	if req.Status != nil {
		status := models.InvoiceStatus(*req.Status)
		input.Status = &status
	}

	updated, err := h.svc.Update(r.Context(), inv.ID, input)
	if err != nil {
		serviceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, updated)
}

func (h *InvoiceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	if !policy.CanDestroy(id) {
		forbidden(w)
		return
	}
	invoiceID, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid_id")
		return
	}
	if err := h.svc.Delete(r.Context(), invoiceID); err != nil {
		serviceError(w, err)
		return
	}
	noContent(w)
}

func (h *InvoiceHandler) PDF(w http.ResponseWriter, r *http.Request) {
	inv, ok := h.load(w, r)
	if !ok {
		return
	}
	doc, filename, err := h.svc.RenderPDF(r.Context(), inv.ID)
	if err != nil {
		serviceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc)
}

func (h *InvoiceHandler) Send(w http.ResponseWriter, r *http.Request) {
	inv, ok := h.load(w, r)
	if !ok {
		return
	}
	if err := h.mailer.SendInvoice(r.Context(), inv.ID); err != nil {
		serviceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "sent", "invoice_no": inv.InvoiceNo})
}
