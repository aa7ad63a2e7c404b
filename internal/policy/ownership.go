// Package policy implements ownership-based authorization checks.
// Handlers call these after authentication; the ledger engine itself
// never looks at the caller.
package policy

import "github.com/kmehta/invoicehub/internal/auth"

// Ownable is implemented by models that belong to a user.
type Ownable interface {
	GetUserID() uint
}

// CanAccess reports whether the identity may read or modify the resource.
// Admins can access anything; everyone else only their own records.
// A resource that does not implement Ownable is denied by default.
func CanAccess(id auth.Identity, resource any) bool {
	if id.IsAdmin {
		return true
	}
	ownable, ok := resource.(Ownable)
	if !ok {
		return false
	}
	return ownable.GetUserID() == id.UserID
}

// CanDestroy reports whether the identity may hard-delete records.
// Destroy is reserved for admins.
func CanDestroy(id auth.Identity) bool {
	return id.IsAdmin
}
