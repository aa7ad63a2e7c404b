// Package pdf renders invoices as PDF documents. It consumes flat data
// structs so nothing outside the package depends on the layout, and the
// layout depends on nothing but the data handed in.
package pdf

import (
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// InvoiceData is everything the document shows. Monetary values arrive
// pre-formatted so the renderer stays ignorant of decimal semantics.
type InvoiceData struct {
	InvoiceNumber string
	Date          string
	Status        string
	Company       PartyData
	Client        PartyData
	Items         []LineData
	Subtotal      string
	Tax           string
	GrandTotal    string
}

// PartyData identifies one side of the invoice.
type PartyData struct {
	Name    string
	Address string
	Email   string
}

// LineData is one row of the item table.
type LineData struct {
	Name     string
	Quantity int
	Price    string
	GST      string
	Total    string
}

// InvoicePDF renders the document and returns its bytes.
func InvoicePDF(data InvoiceData) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(15).
		WithTopMargin(15).
		WithRightMargin(15).
		Build()
	m := maroto.New(cfg)

	m.AddRow(12, text.NewCol(12, "Invoice: "+data.InvoiceNumber, props.Text{Size: 16, Style: fontstyle.Bold}))
	m.AddRow(6, text.NewCol(12, "Date: "+data.Date+"    Status: "+data.Status, props.Text{Size: 9}))
	m.AddRow(6, text.NewCol(6, "Company: "+data.Company.Name, props.Text{Size: 10}))
	m.AddRow(6, text.NewCol(6, "Client: "+data.Client.Name, props.Text{Size: 10}))
	m.AddRow(4, text.NewCol(12, "", props.Text{}))

	headerStyle := props.Text{Size: 9, Style: fontstyle.Bold}
	m.AddRow(7,
		text.NewCol(4, "Item", headerStyle),
		text.NewCol(2, "Qty", headerStyle),
		text.NewCol(2, "Price", headerStyle),
		text.NewCol(2, "GST", headerStyle),
		text.NewCol(2, "Total", headerStyle),
	)
	cell := props.Text{Size: 9}
	for _, it := range data.Items {
		m.AddRow(6,
			text.NewCol(4, it.Name, cell),
			text.NewCol(2, fmt.Sprint(it.Quantity), cell),
			text.NewCol(2, it.Price, cell),
			text.NewCol(2, it.GST, cell),
			text.NewCol(2, it.Total, cell),
		)
	}

	m.AddRow(4, text.NewCol(12, "", props.Text{}))
	totalStyle := props.Text{Size: 10, Align: align.Right}
	m.AddRow(6, text.NewCol(12, "Subtotal: "+data.Subtotal, totalStyle))
	m.AddRow(6, text.NewCol(12, "GST: "+data.Tax, totalStyle))
	m.AddRow(7, text.NewCol(12, "Grand Total: "+data.GrandTotal, props.Text{Size: 11, Style: fontstyle.Bold, Align: align.Right}))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate invoice pdf: %w", err)
	}
	return doc.GetBytes(), nil
}
