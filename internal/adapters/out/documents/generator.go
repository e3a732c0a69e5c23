// Package documents renders the plain-text paperwork attached to
// fulfillment events: invoices, picking lists, packing slips, shipping
// labels, and the bay sheets handed to warehouse staff.
package documents

import (
	"bytes"
	"context"
	"text/template"
	"time"

	"marketplace/internal/core/domain/model/fulfillment"
	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/order"
	"marketplace/internal/core/ports"
	"marketplace/internal/pkg/errs"
)

const invoiceTemplateText = `INVOICE {{.Reference}}
Order:   {{.OrderNumber}}
Date:    {{.IssuedAt}}
Buyer:   {{.BuyerID}}
Vendor:  {{.VendorID}}

{{range .Lines -}}
{{printf "%-30s %-16s %4d x %8s = %10s" .ProductName .ProductSKU .Quantity .UnitPrice .LineTotal}}
{{end}}
{{printf "%52s %10s" "Subtotal:" .Subtotal}}
{{printf "%52s %10s" "Discount:" .Discount}}
{{printf "%52s %10s" "Shipping:" .Shipping}}
{{printf "%52s %10s" "Tax:" .Tax}}
{{printf "%52s %10s" "Total:" .Total}}
{{- if .PaymentDue}}

Payment due {{.PaymentDue}} on approved credit terms.
{{- end}}
`

const pickingListTemplateText = `PICKING LIST
Order:   {{.OrderNumber}}
Date:    {{.IssuedAt}}
{{- if .Refrigerated}}
KEEP REFRIGERATED
{{- end}}

{{range .Lines -}}
{{printf "%-16s %-30s %4d" .ProductSKU .ProductName .Quantity}}
{{end -}}
`

const packingSlipTemplateText = `PACKING SLIP
Order:    {{.OrderNumber}}
Buyer:    {{.BuyerID}}
Packages: {{.Packages}}

{{range .Lines -}}
{{printf "%-30s %-16s %4d" .ProductName .ProductSKU .Quantity}}
{{end -}}
`

const shippingLabelTemplateText = `SHIPPING LABEL
Order:    {{.OrderNumber}}
Buyer:    {{.BuyerID}}
Dest:     {{.Destination}}
Zone:     {{.Zone}}
Packages: {{.Packages}}
Weight:   {{printf "%.1f" .WeightKg}} kg
{{- if .Refrigerated}}
REFRIGERATED
{{- end}}
`

const pickupSheetTemplateText = `PICKUP SHEET {{.ConfirmationCode}}
Order:   {{.OrderNumber}}
Bay:     {{.Bay}}
Slot:    {{.SlotStart}} - {{.SlotEnd}}
Packages: {{.Packages}}
{{- if .Refrigerated}}
KEEP REFRIGERATED
{{- end}}

{{range .Lines -}}
{{printf "%-30s %-16s %4d" .ProductName .ProductSKU .Quantity}}
{{end -}}
`

type documentLine struct {
	ProductName string
	ProductSKU  string
	Quantity    int
	UnitPrice   kernel.Money
	LineTotal   kernel.Money
}

type invoiceData struct {
	Reference   string
	OrderNumber string
	IssuedAt    string
	BuyerID     string
	VendorID    string
	Lines       []documentLine
	Subtotal    kernel.Money
	Discount    kernel.Money
	Shipping    kernel.Money
	Tax         kernel.Money
	Total       kernel.Money
	PaymentDue  string
}

type pickingListData struct {
	OrderNumber  string
	IssuedAt     string
	Refrigerated bool
	Lines        []documentLine
}

type packingSlipData struct {
	OrderNumber string
	BuyerID     string
	Packages    int
	Lines       []documentLine
}

type shippingLabelData struct {
	OrderNumber  string
	BuyerID      string
	Destination  string
	Zone         string
	Packages     int
	WeightKg     float64
	Refrigerated bool
}

type pickupSheetData struct {
	ConfirmationCode string
	OrderNumber      string
	Bay              string
	SlotStart        string
	SlotEnd          string
	Packages         int
	Refrigerated     bool
	Lines            []documentLine
}

// TemplateGenerator renders documents from embedded text templates. A
// rendering service can replace it behind the same port when branded PDFs
// are needed.
type TemplateGenerator struct {
	invoice       *template.Template
	pickingList   *template.Template
	packingSlip   *template.Template
	shippingLabel *template.Template
	pickupSheet   *template.Template
	now           func() time.Time
}

// NewTemplateGenerator creates the generator with its templates parsed.
func NewTemplateGenerator() *TemplateGenerator {
	return &TemplateGenerator{
		invoice:       template.Must(template.New("invoice").Parse(invoiceTemplateText)),
		pickingList:   template.Must(template.New("picking_list").Parse(pickingListTemplateText)),
		packingSlip:   template.Must(template.New("packing_slip").Parse(packingSlipTemplateText)),
		shippingLabel: template.Must(template.New("shipping_label").Parse(shippingLabelTemplateText)),
		pickupSheet:   template.Must(template.New("pickup_sheet").Parse(pickupSheetTemplateText)),
		now:           time.Now,
	}
}

// Generate renders the document of the given kind for the order.
func (g *TemplateGenerator) Generate(
	_ context.Context, kind ports.DocumentKind, aggregate *order.Order,
) ([]byte, error) {
	if err := aggregate.Validate(); err != nil {
		return nil, err
	}

	switch kind {
	case ports.DocumentInvoice:
		return g.renderInvoice(aggregate)
	case ports.DocumentPickingList:
		return render(g.pickingList, pickingListData{
			OrderNumber:  aggregate.OrderNumber(),
			IssuedAt:     g.now().Format("2006-01-02"),
			Refrigerated: aggregate.RequiresRefrigeration(),
			Lines:        linesFor(aggregate),
		})
	case ports.DocumentPackingSlip:
		return render(g.packingSlip, packingSlipData{
			OrderNumber: aggregate.OrderNumber(),
			BuyerID:     aggregate.BuyerID().String(),
			Packages:    aggregate.PackageCount(),
			Lines:       linesFor(aggregate),
		})
	case ports.DocumentShippingLabel:
		return g.renderShippingLabel(aggregate)
	default:
		return nil, errs.NewValueIsInvalidError("document kind")
	}
}

func (g *TemplateGenerator) renderInvoice(aggregate *order.Order) ([]byte, error) {
	data := invoiceData{
		Reference:   aggregate.PaymentReference(),
		OrderNumber: aggregate.OrderNumber(),
		IssuedAt:    g.now().Format("2006-01-02"),
		BuyerID:     aggregate.BuyerID().String(),
		VendorID:    aggregate.VendorID().String(),
		Lines:       linesFor(aggregate),
		Subtotal:    aggregate.Subtotal(),
		Discount:    aggregate.Discount(),
		Shipping:    aggregate.Shipping(),
		Tax:         aggregate.Tax(),
		Total:       aggregate.Total(),
	}
	if due := aggregate.PaymentDue(); due != nil {
		data.PaymentDue = due.Format("2006-01-02")
	}
	return render(g.invoice, data)
}

func (g *TemplateGenerator) renderShippingLabel(aggregate *order.Order) ([]byte, error) {
	location := aggregate.DeliveryLocation()
	if location == nil {
		return nil, errs.NewValueIsRequiredError("delivery location")
	}

	return render(g.shippingLabel, shippingLabelData{
		OrderNumber:  aggregate.OrderNumber(),
		BuyerID:      aggregate.BuyerID().String(),
		Destination:  location.String(),
		Zone:         location.Zone(),
		Packages:     aggregate.PackageCount(),
		WeightKg:     aggregate.TotalWeightKg(),
		Refrigerated: aggregate.RequiresRefrigeration(),
	})
}

// GeneratePickupSheet renders the bay sheet handed to warehouse staff.
func (g *TemplateGenerator) GeneratePickupSheet(
	_ context.Context, aggregate *order.Order, booking *fulfillment.Booking,
) ([]byte, error) {
	if err := aggregate.Validate(); err != nil {
		return nil, err
	}
	if err := booking.Validate(); err != nil {
		return nil, err
	}

	data := pickupSheetData{
		ConfirmationCode: booking.ConfirmationCode(),
		OrderNumber:      aggregate.OrderNumber(),
		Bay:              booking.Bay(),
		SlotStart:        booking.SlotStart().Format("2006-01-02 15:04"),
		SlotEnd:          booking.SlotEnd().Format("15:04"),
		Packages:         aggregate.PackageCount(),
		Refrigerated:     aggregate.RequiresRefrigeration(),
		Lines:            linesFor(aggregate),
	}
	return render(g.pickupSheet, data)
}

func render(tmpl *template.Template, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func linesFor(aggregate *order.Order) []documentLine {
	lines := make([]documentLine, 0, len(aggregate.Items()))
	for _, item := range aggregate.Items() {
		lines = append(lines, documentLine{
			ProductName: item.ProductName(),
			ProductSKU:  item.ProductSKU(),
			Quantity:    item.Quantity(),
			UnitPrice:   item.UnitPrice(),
			LineTotal:   item.LineTotal(),
		})
	}
	return lines
}
