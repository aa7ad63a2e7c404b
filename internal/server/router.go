// Package server wires handlers, middleware and health endpoints into
// the root http.Handler.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/kmehta/invoicehub/internal/auth"
	"github.com/kmehta/invoicehub/internal/config"
	"github.com/kmehta/invoicehub/internal/email"
	"github.com/kmehta/invoicehub/internal/handlers"
	"github.com/kmehta/invoicehub/internal/httpx"
	"github.com/kmehta/invoicehub/internal/services"
)

// New constructs the root handler with all routes and middleware applied.
func New(db *gorm.DB, cfg *config.Config) http.Handler {
	mux := http.NewServeMux()

	// RequireAuth consults this so tokens for deleted users stop working
	// before their expiry.
	auth.SetUserVerifier(func(ctx context.Context, uid uint) bool {
		var count int64
		err := db.WithContext(ctx).Table("users").Where("id = ?", uid).Limit(1).Count(&count).Error
		return err == nil && count > 0
	})

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := db.WithContext(r.Context()).Exec("SELECT 1").Error; err != nil {
			httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	invoiceSvc := services.NewInvoiceService(db)
	itemSvc := services.NewItemService(db)
	sender := email.NewSender(email.SMTPConfig{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	})
	mailer := services.NewInvoiceMailer(invoiceSvc, sender, cfg.SMTP.From)

	ah := handlers.NewAuthHandler(db, cfg.Auth)
	mux.HandleFunc("POST /auth/register", ah.Register)
	mux.HandleFunc("POST /auth/login", ah.Login)
	mux.HandleFunc("POST /auth/refresh", ah.Refresh)

	protected := func(h http.HandlerFunc) http.Handler {
		return auth.RequireAuth(h)
	}

	ch := handlers.NewCompanyHandler(db)
	mux.Handle("GET /companies", protected(ch.List))
	mux.Handle("POST /companies", protected(ch.Create))
	mux.Handle("GET /companies/{id}", protected(ch.Get))
	mux.Handle("PUT /companies/{id}", protected(ch.Update))
	mux.Handle("DELETE /companies/{id}", protected(ch.Delete))

	clh := handlers.NewClientHandler(db)
	mux.Handle("GET /clients", protected(clh.List))
	mux.Handle("POST /clients", protected(clh.Create))
	mux.Handle("GET /clients/{id}", protected(clh.Get))
	mux.Handle("PUT /clients/{id}", protected(clh.Update))
	mux.Handle("DELETE /clients/{id}", protected(clh.Delete))

	ith := handlers.NewItemHandler(db, itemSvc)
	mux.Handle("GET /items", protected(ith.List))
	mux.Handle("POST /items", protected(ith.Create))
	mux.Handle("GET /items/{id}", protected(ith.Get))
	mux.Handle("PUT /items/{id}", protected(ith.Update))
	mux.Handle("DELETE /items/{id}", protected(ith.Delete))

	ih := handlers.NewInvoiceHandler(invoiceSvc, mailer)
	mux.Handle("GET /invoices", protected(ih.List))
	mux.Handle("POST /invoices", protected(ih.Create))
	mux.Handle("GET /invoices/{id}", protected(ih.Get))
	mux.Handle("PUT /invoices/{id}", protected(ih.Update))
	mux.Handle("DELETE /invoices/{id}", protected(ih.Delete))
	mux.Handle("GET /invoices/{id}/pdf", protected(ih.PDF))
	mux.Handle("POST /invoices/{id}/send", protected(ih.Send))

	lh := handlers.NewInvoiceItemHandler(db, invoiceSvc)
	mux.Handle("GET /invoice-items", protected(lh.List))
	mux.Handle("POST /invoice-items", protected(lh.Create))
	mux.Handle("GET /invoice-items/{id}", protected(lh.Get))
	mux.Handle("PUT /invoice-items/{id}", protected(lh.Update))
	mux.Handle("DELETE /invoice-items/{id}", protected(lh.Delete))

	return withRequestLog(withRecover(auth.Middleware(cfg.Auth.JWTSecret)(mux)))
}

// statusRecorder captures the status code for the request log.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func withRequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := uuid.NewString()
		w.Header().Set("X-Request-ID", requestID)
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Info().
			Str("request_id", requestID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

func withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Error().Interface("panic", rec).Str("path", r.URL.Path).Msg("handler panicked")
				httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
