package handlers

import (
	"net/http"

	"gorm.io/gorm"

	"github.com/kmehta/invoicehub/internal/httpx"
	"github.com/kmehta/invoicehub/internal/models"
	"github.com/kmehta/invoicehub/internal/policy"
	"github.com/kmehta/invoicehub/internal/validation"
)

type CompanyHandler struct {
	db *gorm.DB
}

func NewCompanyHandler(db *gorm.DB) *CompanyHandler {
	return &CompanyHandler{db: db}
}

type companyRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	GSTIN   string `json:"gstin"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
}

func (req companyRequest) validate() validation.Violations {
	v := make(validation.Violations)
	validation.Required("name", req.Name, v)
	validation.Email("email", req.Email, v)
	return v
}

func (h *CompanyHandler) List(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	q := h.db.WithContext(r.Context()).Model(&models.Company{})
	if !id.IsAdmin {
		q = q.Where("user_id = ?", id.UserID)
	}
	var companies []models.Company
	if err := q.Order("name").Find(&companies).Error; err != nil {
		serviceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, companies)
}

func (h *CompanyHandler) Create(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	var req companyRequest
	if err := httpx.Decode(r, &req); err != nil {
		badRequest(w, "invalid_body")
		return
	}
	if v := req.validate(); !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	company := models.Company{
		UserID:  id.UserID,
		Name:    req.Name,
		Address: req.Address,
		GSTIN:   req.GSTIN,
		Email:   req.Email,
		Phone:   req.Phone,
	}
	if err := h.db.WithContext(r.Context()).Create(&company).Error; err != nil {
		serviceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, company)
}

func (h *CompanyHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	companyID, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid_id")
		return
	}
	var company models.Company
	if err := h.db.WithContext(r.Context()).First(&company, companyID).Error; err != nil {
		serviceError(w, err)
		return
	}
	if !policy.CanAccess(id, &company) {
		forbidden(w)
		return
	}
	httpx.JSON(w, http.StatusOK, company)
}

func (h *CompanyHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	companyID, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid_id")
		return
	}
	var company models.Company
	if err := h.db.WithContext(r.Context()).First(&company, companyID).Error; err != nil {
		serviceError(w, err)
		return
	}
	if !policy.CanAccess(id, &company) {
		forbidden(w)
		return
	}
	var req companyRequest
	if err := httpx.Decode(r, &req); err != nil {
		badRequest(w, "invalid_body")
		return
	}
	if v := req.validate(); !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	company.Name = req.Name
	company.Address = req.Address
	company.GSTIN = req.GSTIN
	company.Email = req.Email
	company.Phone = req.Phone
	if err := h.db.WithContext(r.Context()).Save(&company).Error; err != nil {
		serviceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, company)
}

func (h *CompanyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	if !policy.CanDestroy(id) {
		forbidden(w)
		return
	}
	companyID, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid_id")
		return
	}
	var company models.Company
	if err := h.db.WithContext(r.Context()).First(&company, companyID).Error; err != nil {
		serviceError(w, err)
		return
	}
	if err := h.db.WithContext(r.Context()).Delete(&company).Error; err != nil {
		serviceError(w, err)
		return
	}
	noContent(w)
}
