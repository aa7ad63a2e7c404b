package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kmehta/invoicehub/internal/models"
)

type captureSender struct {
	to  []string
	msg []byte
	n   int
}

func (c *captureSender) Send(_ context.Context, to []string, raw []byte) error {
	c.to = to
	c.msg = raw
	c.n++
	return nil
}

func TestSendInvoiceAttachesPDF(t *testing.T) {
	conn := setupTestDB(t)
	f := seedFixtures(t, conn)
	invoices := newService(t, conn, 2026)
	sender := &captureSender{}
	mailer := NewInvoiceMailer(invoices, sender, "billing@acme.test")
	ctx := context.Background()

	inv := createInvoice(t, invoices, f)
	_, err := invoices.AddItem(ctx, AddItemInput{InvoiceID: inv.ID, ItemID: f.item.ID, Quantity: 3})
	require.NoError(t, err)

	require.NoError(t, mailer.SendInvoice(ctx, inv.ID))
	require.Equal(t, 1, sender.n)
	require.Equal(t, []string{f.client.Email}, sender.to)

	msg := string(sender.msg)
	require.Contains(t, msg, "Subject: Invoice INV-2026-0001")
	require.Contains(t, msg, "Hello Globex,")
	require.Contains(t, msg, "Total: 354.00")
	require.Contains(t, msg, `filename="invoice_INV-2026-0001.pdf"`)
	require.Contains(t, msg, "Content-Type: application/pdf")
}

func TestSendInvoiceRequiresClientEmail(t *testing.T) {
	conn := setupTestDB(t)
	f := seedFixtures(t, conn)
	invoices := newService(t, conn, 2026)
	sender := &captureSender{}
	mailer := NewInvoiceMailer(invoices, sender, "billing@acme.test")
	ctx := context.Background()

	require.NoError(t, conn.Model(&models.Client{}).Where("id = ?", f.client.ID).
		Update("email", "").Error)

	inv := createInvoice(t, invoices, f)
	err := mailer.SendInvoice(ctx, inv.ID)
	require.ErrorIs(t, err, ErrMissingRecipient)
	require.True(t, strings.Contains(err.Error(), inv.InvoiceNo))
	require.Zero(t, sender.n, "nothing must be sent without a recipient")
}
