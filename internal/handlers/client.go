package handlers

import (
	"net/http"

	"gorm.io/gorm"

	"github.com/kmehta/invoicehub/internal/httpx"
	"github.com/kmehta/invoicehub/internal/models"
	"github.com/kmehta/invoicehub/internal/policy"
	"github.com/kmehta/invoicehub/internal/validation"
)

type ClientHandler struct {
	db *gorm.DB
}

func NewClientHandler(db *gorm.DB) *ClientHandler {
	return &ClientHandler{db: db}
}

type clientRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	GSTIN   string `json:"gstin"`
}

func (req clientRequest) validate() validation.Violations {
	v := make(validation.Violations)
	validation.Required("name", req.Name, v)
	validation.Email("email", req.Email, v)
	return v
}

func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	q := h.db.WithContext(r.Context()).Model(&models.Client{})
	if !id.IsAdmin {
		q = q.Where("user_id = ?", id.UserID)
	}
	if search := r.URL.Query().Get("q"); search != "" {
		q = q.Where("name LIKE ?", "%"+search+"%")
	}
	var clients []models.Client
	if err := q.Order("name").Find(&clients).Error; err != nil {
		serviceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, clients)
}

func (h *ClientHandler) Create(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	var req clientRequest
	if err := httpx.Decode(r, &req); err != nil {
		badRequest(w, "invalid_body")
		return
	}
	if v := req.validate(); !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	client := models.Client{
		UserID:  id.UserID,
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
		GSTIN:   req.GSTIN,
	}
	if err := h.db.WithContext(r.Context()).Create(&client).Error; err != nil {
		serviceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, client)
}

func (h *ClientHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	clientID, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid_id")
		return
	}
	var client models.Client
	if err := h.db.WithContext(r.Context()).First(&client, clientID).Error; err != nil {
		serviceError(w, err)
		return
	}
	if !policy.CanAccess(id, &client) {
		forbidden(w)
		return
	}
	httpx.JSON(w, http.StatusOK, client)
}

func (h *ClientHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	clientID, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid_id")
		return
	}
	var client models.Client
	if err := h.db.WithContext(r.Context()).First(&client, clientID).Error; err != nil {
		serviceError(w, err)
		return
	}
	if !policy.CanAccess(id, &client) {
		forbidden(w)
		return
	}
	var req clientRequest
	if err := httpx.Decode(r, &req); err != nil {
		badRequest(w, "invalid_body")
		return
	}
	if v := req.validate(); !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	client.Name = req.Name
	client.Email = req.Email
	client.Phone = req.Phone
	client.Address = req.Address
	client.GSTIN = req.GSTIN
	if err := h.db.WithContext(r.Context()).Save(&client).Error; err != nil {
		serviceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, client)
}

func (h *ClientHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	if !policy.CanDestroy(id) {
		forbidden(w)
		return
	}
	clientID, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid_id")
		return
	}
	var client models.Client
	if err := h.db.WithContext(r.Context()).First(&client, clientID).Error; err != nil {
		serviceError(w, err)
		return
	}
	if err := h.db.WithContext(r.Context()).Delete(&client).Error; err != nil {
		serviceError(w, err)
		return
	}
	noContent(w)
}
