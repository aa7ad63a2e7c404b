package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kmehta/invoicehub/internal/auth"
	"github.com/kmehta/invoicehub/internal/config"
	"github.com/kmehta/invoicehub/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:handlers_%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&models.User{}, &models.Company{}, &models.Client{},
		&models.Item{}, &models.Invoice{}, &models.InvoiceItem{},
	))
	return conn
}

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{JWTSecret: "test-secret", AccessTTL: 15 * time.Minute, RefreshTTL: time.Hour}
}

func postJSON(t *testing.T, h http.HandlerFunc, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	r := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	r.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h(w, r)
	return w
}

func TestRegisterValidation(t *testing.T) {
	h := NewAuthHandler(setupTestDB(t), testAuthConfig())

	tests := []struct {
		name string
		body map[string]string
		want string
	}{
		{"missing email", map[string]string{"password": "secret-password"}, "email"},
		{"bad email", map[string]string{"email": "nope", "password": "secret-password"}, "email"},
		{"short password", map[string]string{"email": "a@b.test", "password": "short"}, "password"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(t, h.Register, "/auth/register", tt.body)
			require.Equal(t, http.StatusBadRequest, w.Code)

			var resp struct {
				Error   string            `json:"error"`
				Details map[string]string `json:"details"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			require.Equal(t, "validation_failed", resp.Error)
			require.Contains(t, resp.Details, tt.want)
		})
	}
}

func TestRegisterHashesPassword(t *testing.T) {
	conn := setupTestDB(t)
	h := NewAuthHandler(conn, testAuthConfig())

	w := postJSON(t, h.Register, "/auth/register", map[string]string{
		"email": "hash@test", "password": "secret-password",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var user models.User
	require.NoError(t, conn.Where("email = ?", "hash@test").First(&user).Error)
	require.NotEqual(t, "secret-password", user.Password)
	require.True(t, auth.CheckPassword("secret-password", user.Password))

	// the hash never leaves the server
	require.NotContains(t, w.Body.String(), user.Password)
}

func TestLoginWrongPassword(t *testing.T) {
	conn := setupTestDB(t)
	h := NewAuthHandler(conn, testAuthConfig())

	w := postJSON(t, h.Register, "/auth/register", map[string]string{
		"email": "login@test", "password": "secret-password",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = postJSON(t, h.Login, "/auth/login", map[string]string{
		"email": "login@test", "password": "wrong-password",
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = postJSON(t, h.Login, "/auth/login", map[string]string{
		"email": "missing@test", "password": "secret-password",
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
