package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kmehta/invoicehub/internal/config"
	"github.com/kmehta/invoicehub/internal/db"
	"github.com/kmehta/invoicehub/internal/models"
)

func testConfig() *config.Config {
	return &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:  "test-secret",
			AccessTTL:  15 * time.Minute,
			RefreshTTL: time.Hour,
		},
		SMTP: config.SMTPConfig{From: "billing@test"},
	}
}

func newTestServer(t *testing.T) (http.Handler, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(conn))
	return New(conn, testConfig()), conn
}

func doJSON(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	r := httptest.NewRequest(method, path, reader)
	r.Header.Set("Content-Type", "application/json")
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), "body: %s", w.Body.String())
}

// registerAndLogin creates an account and returns its access token.
func registerAndLogin(t *testing.T, h http.Handler, email string) string {
	t.Helper()
	w := doJSON(t, h, http.MethodPost, "/auth/register", "", map[string]string{
		"email": email, "password": "secret-password", "name": "Test User",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(t, h, http.MethodPost, "/auth/login", "", map[string]string{
		"email": email, "password": "secret-password",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var pair struct {
		Access  string `json:"access"`
		Refresh string `json:"refresh"`
	}
	decodeBody(t, w, &pair)
	require.NotEmpty(t, pair.Access)
	return pair.Access
}

func TestHealthEndpoints(t *testing.T) {
	h, _ := newTestServer(t)
	for _, path := range []string{"/health", "/healthz"} {
		w := doJSON(t, h, http.MethodGet, path, "", nil)
		require.Equal(t, http.StatusOK, w.Code, path)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	h, _ := newTestServer(t)
	w := doJSON(t, h, http.MethodGet, "/invoices", "", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, h, http.MethodGet, "/invoices", "not-a-token", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestTokenRefresh(t *testing.T) {
	h, _ := newTestServer(t)
	w := doJSON(t, h, http.MethodPost, "/auth/register", "", map[string]string{
		"email": "refresh@test", "password": "secret-password",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	w = doJSON(t, h, http.MethodPost, "/auth/login", "", map[string]string{
		"email": "refresh@test", "password": "secret-password",
	})
	require.Equal(t, http.StatusOK, w.Code)
	var pair struct {
		Access  string `json:"access"`
		Refresh string `json:"refresh"`
	}
	decodeBody(t, w, &pair)

	// the refresh token turns into a fresh pair
	w = doJSON(t, h, http.MethodPost, "/auth/refresh", "", map[string]string{"refresh": pair.Refresh})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// an access token is not accepted as a refresh token
	w = doJSON(t, h, http.MethodPost, "/auth/refresh", "", map[string]string{"refresh": pair.Access})
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	h, _ := newTestServer(t)
	body := map[string]string{"email": "dup@test", "password": "secret-password"}
	w := doJSON(t, h, http.MethodPost, "/auth/register", "", body)
	require.Equal(t, http.StatusCreated, w.Code)
	w = doJSON(t, h, http.MethodPost, "/auth/register", "", body)
	require.Equal(t, http.StatusConflict, w.Code)
}

// The whole billing flow over HTTP: company, client, item, invoice,
// line, lock, pdf.
func TestInvoiceFlow(t *testing.T) {
	h, _ := newTestServer(t)
	token := registerAndLogin(t, h, "flow@test")

	w := doJSON(t, h, http.MethodPost, "/companies", token, map[string]any{
		"name": "Acme Traders", "gstin": "29ABCDE1234F1Z5",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var company models.Company
	decodeBody(t, w, &company)

	w = doJSON(t, h, http.MethodPost, "/clients", token, map[string]any{
		"name": "Globex", "email": "ap@globex.test",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var client models.Client
	decodeBody(t, w, &client)

	w = doJSON(t, h, http.MethodPost, "/items", token, map[string]any{
		"name": "Consulting", "price": "100.00", "gst_rate": "18.00",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var item models.Item
	decodeBody(t, w, &item)

	w = doJSON(t, h, http.MethodPost, "/invoices", token, map[string]any{
		"company_id": company.ID, "client_id": client.ID,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var invoice models.Invoice
	decodeBody(t, w, &invoice)
	require.True(t, strings.HasPrefix(invoice.InvoiceNo, "INV-"), invoice.InvoiceNo)
	require.Equal(t, models.InvoiceStatusDue, invoice.Status)

	w = doJSON(t, h, http.MethodPost, "/invoice-items", token, map[string]any{
		"invoice_id": invoice.ID, "item_id": item.ID, "quantity": 3,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(t, h, http.MethodGet, fmt.Sprintf("/invoices/%d", invoice.ID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeBody(t, w, &invoice)
	require.Equal(t, "300", invoice.Subtotal.String())
	require.Equal(t, "54", invoice.TaxTotal.String())
	require.Equal(t, "354", invoice.GrandTotal.String())

	w = doJSON(t, h, http.MethodPut, fmt.Sprintf("/invoices/%d", invoice.ID), token, map[string]any{
		"status": "paid",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decodeBody(t, w, &invoice)
	require.True(t, invoice.IsLocked)

	// locked invoices reject further lines with 409
	w = doJSON(t, h, http.MethodPost, "/invoice-items", token, map[string]any{
		"invoice_id": invoice.ID, "item_id": item.ID, "quantity": 1,
	})
	require.Equal(t, http.StatusConflict, w.Code, w.Body.String())

	w = doJSON(t, h, http.MethodGet, fmt.Sprintf("/invoices/%d/pdf", invoice.ID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	require.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")))

	// the logging sender is active without SMTP config, so send succeeds
	w = doJSON(t, h, http.MethodPost, fmt.Sprintf("/invoices/%d/send", invoice.ID), token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestTenantIsolation(t *testing.T) {
	h, conn := newTestServer(t)
	ownerToken := registerAndLogin(t, h, "owner@test")
	intruderToken := registerAndLogin(t, h, "intruder@test")

	w := doJSON(t, h, http.MethodPost, "/companies", ownerToken, map[string]any{"name": "Mine"})
	require.Equal(t, http.StatusCreated, w.Code)
	var company models.Company
	decodeBody(t, w, &company)

	w = doJSON(t, h, http.MethodGet, fmt.Sprintf("/companies/%d", company.ID), intruderToken, nil)
	require.Equal(t, http.StatusForbidden, w.Code)

	// destroy is admin-only, even for the owner
	w = doJSON(t, h, http.MethodDelete, fmt.Sprintf("/companies/%d", company.ID), ownerToken, nil)
	require.Equal(t, http.StatusForbidden, w.Code)

	require.NoError(t, conn.Model(&models.User{}).
		Where("email = ?", "intruder@test").Update("is_admin", true).Error)
	adminToken := func() string {
		w := doJSON(t, h, http.MethodPost, "/auth/login", "", map[string]string{
			"email": "intruder@test", "password": "secret-password",
		})
		require.Equal(t, http.StatusOK, w.Code)
		var pair struct {
			Access string `json:"access"`
		}
		decodeBody(t, w, &pair)
		return pair.Access
	}()

	// admins see and delete everything
	w = doJSON(t, h, http.MethodGet, fmt.Sprintf("/companies/%d", company.ID), adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, h, http.MethodDelete, fmt.Sprintf("/companies/%d", company.ID), adminToken, nil)
	require.Equal(t, http.StatusNoContent, w.Code)
}

func TestLineRejectsForeignCatalogItem(t *testing.T) {
	h, _ := newTestServer(t)
	ownerToken := registerAndLogin(t, h, "line-owner@test")
	otherToken := registerAndLogin(t, h, "line-other@test")

	// the other tenant's catalog item
	w := doJSON(t, h, http.MethodPost, "/items", otherToken, map[string]any{
		"name": "Foreign", "price": "500.00", "gst_rate": "18.00",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var foreign models.Item
	decodeBody(t, w, &foreign)

	w = doJSON(t, h, http.MethodPost, "/companies", ownerToken, map[string]any{"name": "Co"})
	require.Equal(t, http.StatusCreated, w.Code)
	var company models.Company
	decodeBody(t, w, &company)
	w = doJSON(t, h, http.MethodPost, "/clients", ownerToken, map[string]any{"name": "Cl"})
	require.Equal(t, http.StatusCreated, w.Code)
	var client models.Client
	decodeBody(t, w, &client)
	w = doJSON(t, h, http.MethodPost, "/invoices", ownerToken, map[string]any{
		"company_id": company.ID, "client_id": client.ID,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var invoice models.Invoice
	decodeBody(t, w, &invoice)

	// attaching someone else's item to your own invoice is forbidden
	w = doJSON(t, h, http.MethodPost, "/invoice-items", ownerToken, map[string]any{
		"invoice_id": invoice.ID, "item_id": foreign.ID, "quantity": 1,
	})
	require.Equal(t, http.StatusForbidden, w.Code, w.Body.String())

	// nothing was snapshotted
	w = doJSON(t, h, http.MethodGet, fmt.Sprintf("/invoices/%d", invoice.ID), ownerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeBody(t, w, &invoice)
	require.Empty(t, invoice.Items)
	require.True(t, invoice.Subtotal.IsZero())
}

func TestItemDeleteConflictOverHTTP(t *testing.T) {
	h, conn := newTestServer(t)
	token := registerAndLogin(t, h, "refs@test")
	require.NoError(t, conn.Model(&models.User{}).
		Where("email = ?", "refs@test").Update("is_admin", true).Error)
	token = func() string {
		w := doJSON(t, h, http.MethodPost, "/auth/login", "", map[string]string{
			"email": "refs@test", "password": "secret-password",
		})
		require.Equal(t, http.StatusOK, w.Code)
		var pair struct {
			Access string `json:"access"`
		}
		decodeBody(t, w, &pair)
		return pair.Access
	}()

	w := doJSON(t, h, http.MethodPost, "/companies", token, map[string]any{"name": "Co"})
	require.Equal(t, http.StatusCreated, w.Code)
	var company models.Company
	decodeBody(t, w, &company)
	w = doJSON(t, h, http.MethodPost, "/clients", token, map[string]any{"name": "Cl"})
	require.Equal(t, http.StatusCreated, w.Code)
	var client models.Client
	decodeBody(t, w, &client)
	w = doJSON(t, h, http.MethodPost, "/items", token, map[string]any{
		"name": "Widget", "price": "10.00", "gst_rate": "5.00",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var item models.Item
	decodeBody(t, w, &item)
	w = doJSON(t, h, http.MethodPost, "/invoices", token, map[string]any{
		"company_id": company.ID, "client_id": client.ID,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var invoice models.Invoice
	decodeBody(t, w, &invoice)
	w = doJSON(t, h, http.MethodPost, "/invoice-items", token, map[string]any{
		"invoice_id": invoice.ID, "item_id": item.ID,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, h, http.MethodDelete, fmt.Sprintf("/items/%d", item.ID), token, nil)
	require.Equal(t, http.StatusConflict, w.Code, w.Body.String())
}
