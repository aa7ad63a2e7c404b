package services

import "errors"

var (
	// ErrInvoiceLocked is returned when a mutation targets a paid or
	// cancelled invoice. Nothing is applied.
	ErrInvoiceLocked = errors.New("invoice is locked")

	// ErrNumberConflict is returned when invoice number allocation
	// still collides after the internal retry.
	ErrNumberConflict = errors.New("invoice number already taken")

	// ErrMissingRecipient is returned when an invoice cannot be mailed
	// because its client has no email address.
	ErrMissingRecipient = errors.New("client has no email address")

	// ErrItemInUse is returned when deleting a catalog item that is
	// still referenced by invoice lines.
	ErrItemInUse = errors.New("item is referenced by existing invoices")

	// ErrInvalidStatus is returned for status values outside
	// due/paid/cancelled.
	ErrInvalidStatus = errors.New("invalid invoice status")
)
