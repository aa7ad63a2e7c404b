package services

import (
	"context"
	"fmt"

	"github.com/kmehta/invoicehub/internal/email"
)

// InvoiceMailer delivers rendered invoices to clients.
type InvoiceMailer struct {
	invoices *InvoiceService
	sender   email.Sender
	from     string
}

func NewInvoiceMailer(invoices *InvoiceService, sender email.Sender, from string) *InvoiceMailer {
	return &InvoiceMailer{invoices: invoices, sender: sender, from: from}
}

// SendInvoice mails the invoice PDF to the client. It refuses with
// ErrMissingRecipient before rendering anything when the client has no
// email address.
func (m *InvoiceMailer) SendInvoice(ctx context.Context, invoiceID uint) error {
	inv, err := m.invoices.Get(ctx, invoiceID)
	if err != nil {
		return err
	}
	if inv.Client == nil || !inv.Client.HasEmail() {
		return fmt.Errorf("%w: invoice %s", ErrMissingRecipient, inv.InvoiceNo)
	}

	doc, err := pdfBytes(inv)
	if err != nil {
		return err
	}

	subject := "Invoice " + inv.InvoiceNo
	body := fmt.Sprintf(
		"Hello %s,\n\nPlease find attached your invoice.\n\nInvoice No: %s\nTotal: %s\n\nThank you.",
		inv.Client.Name, inv.InvoiceNo, inv.GrandTotal.StringFixed(2),
	)
	msg, err := email.BuildMessage(m.from, []string{inv.Client.Email}, subject, body, email.Attachment{
		Name:        fmt.Sprintf("invoice_%s.pdf", inv.InvoiceNo),
		ContentType: "application/pdf",
		Data:        doc,
	})
	if err != nil {
		return err
	}
	return m.sender.Send(ctx, []string{inv.Client.Email}, msg)
}
