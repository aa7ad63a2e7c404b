package policy

import (
	"testing"

	"github.com/kmehta/invoicehub/internal/auth"
	"github.com/kmehta/invoicehub/internal/models"
)

func TestCanAccess(t *testing.T) {
	owned := &models.Invoice{UserID: 5}

	tests := []struct {
		name     string
		identity auth.Identity
		resource any
		want     bool
	}{
		{"owner", auth.Identity{UserID: 5}, owned, true},
		{"other user", auth.Identity{UserID: 6}, owned, false},
		{"admin bypass", auth.Identity{UserID: 6, IsAdmin: true}, owned, true},
		{"non-ownable denied", auth.Identity{UserID: 5}, struct{}{}, false},
		{"non-ownable allowed for admin", auth.Identity{IsAdmin: true}, struct{}{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanAccess(tt.identity, tt.resource); got != tt.want {
				t.Errorf("CanAccess() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCanDestroy(t *testing.T) {
	if CanDestroy(auth.Identity{UserID: 1}) {
		t.Error("non-admin should not destroy")
	}
	if !CanDestroy(auth.Identity{UserID: 1, IsAdmin: true}) {
		t.Error("admin should destroy")
	}
}
