package handlers

import (
	"errors"
	"net/http"

	"gorm.io/gorm"

	"github.com/kmehta/invoicehub/internal/auth"
	"github.com/kmehta/invoicehub/internal/config"
	"github.com/kmehta/invoicehub/internal/httpx"
	"github.com/kmehta/invoicehub/internal/models"
	"github.com/kmehta/invoicehub/internal/validation"
)

type AuthHandler struct {
	db  *gorm.DB
	cfg config.AuthConfig
}

func NewAuthHandler(db *gorm.DB, cfg config.AuthConfig) *AuthHandler {
	return &AuthHandler{db: db, cfg: cfg}
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := httpx.Decode(r, &req); err != nil {
		badRequest(w, "invalid_body")
		return
	}

	v := make(validation.Violations)
	validation.Required("email", req.Email, v)
	validation.Email("email", req.Email, v)
	validation.Required("password", req.Password, v)
	if req.Password != "" && len(req.Password) < 8 {
		v["password"] = "too_short"
	}
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		serviceError(w, err)
		return
	}
	user := models.User{Email: req.Email, Password: hash, Name: req.Name}
	if err := h.db.WithContext(r.Context()).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			httpx.JSONError(w, http.StatusConflict, "email_taken", nil)
			return
		}
		serviceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, user)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.Decode(r, &req); err != nil {
		badRequest(w, "invalid_body")
		return
	}

	var user models.User
	err := h.db.WithContext(r.Context()).Where("email = ?", req.Email).First(&user).Error
	if err != nil || !auth.CheckPassword(req.Password, user.Password) {
		// same reply for unknown email and wrong password
		httpx.JSONError(w, http.StatusUnauthorized, "invalid_credentials", nil)
		return
	}

	pair, err := auth.GenerateTokenPair(user.ID, user.IsAdmin, h.cfg.JWTSecret, h.cfg.AccessTTL, h.cfg.RefreshTTL)
	if err != nil {
		serviceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, pair)
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := httpx.Decode(r, &req); err != nil {
		badRequest(w, "invalid_body")
		return
	}

	claims, err := auth.ParseToken(req.Refresh, h.cfg.JWTSecret)
	if err != nil || claims.TokenType != auth.TokenTypeRefresh {
		httpx.JSONError(w, http.StatusUnauthorized, "invalid_token", nil)
		return
	}

	// re-read the user so revoked accounts and changed admin flags take
	// effect at rotation time
	var user models.User
	if err := h.db.WithContext(r.Context()).First(&user, claims.UserID).Error; err != nil {
		httpx.JSONError(w, http.StatusUnauthorized, "invalid_token", nil)
		return
	}

	pair, err := auth.GenerateTokenPair(user.ID, user.IsAdmin, h.cfg.JWTSecret, h.cfg.AccessTTL, h.cfg.RefreshTTL)
	if err != nil {
		serviceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, pair)
}
