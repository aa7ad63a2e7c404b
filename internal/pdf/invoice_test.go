package pdf

import (
	"bytes"
	"testing"
)

func TestInvoicePDF(t *testing.T) {
	data := InvoiceData{
		InvoiceNumber: "INV-2026-0001",
		Date:          "2026-08-29",
		Status:        "due",
		Company:       PartyData{Name: "Acme Traders"},
		Client:        PartyData{Name: "Globex", Email: "ap@globex.test"},
		Items: []LineData{
			{Name: "Consulting", Quantity: 3, Price: "100.00", GST: "54.00", Total: "354.00"},
		},
		Subtotal:   "300.00",
		Tax:        "54.00",
		GrandTotal: "354.00",
	}
	out, err := InvoicePDF(data)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Errorf("output does not look like a PDF (starts with %q)", out[:min(8, len(out))])
	}
}

func TestInvoicePDFNoItems(t *testing.T) {
	out, err := InvoicePDF(InvoiceData{InvoiceNumber: "INV-2026-0002", Status: "due"})
	if err != nil {
		t.Fatalf("render empty invoice: %v", err)
	}
	if len(out) == 0 {
		t.Error("empty output")
	}
}
