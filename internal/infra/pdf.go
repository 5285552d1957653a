package infra

// pdf.go — Invoice PDF rendering using go-pdf/fpdf.
// Generates an A4 invoice document with the invoice number, dates, line-item
// table from the frozen snapshot, and the amount summary. The output file is
// saved to storagePath/invoice_{number}.pdf.

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-pdf/fpdf"

	"retailpos/internal/model"
)

// InvoiceRenderer writes invoice PDFs into a storage directory.
type InvoiceRenderer struct {
	storagePath string
}

func NewInvoiceRenderer(storagePath string) *InvoiceRenderer {
	return &InvoiceRenderer{storagePath: storagePath}
}

// RenderInvoice generates the PDF for an invoice and returns the file path.
func (r *InvoiceRenderer) RenderInvoice(inv *model.Invoice) (string, error) {
	if err := os.MkdirAll(r.storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	fileName := fmt.Sprintf("invoice_%s.pdf", inv.InvoiceNumber)
	filePath := filepath.Join(r.storagePath, fileName)

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 30

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(contentW, 10, "INVOICE", "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(contentW, 6, inv.InvoiceNumber, "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	if inv.IssuedAt != nil {
		pdf.CellFormat(contentW, 5, "Issued: "+inv.IssuedAt.Format("02 Jan 2006"), "", 1, "L", false, 0, "")
	}
	if inv.DueDate != nil {
		pdf.CellFormat(contentW, 5, "Due: "+inv.DueDate.Format("02 Jan 2006"), "", 1, "L", false, 0, "")
	}
	pdf.CellFormat(contentW, 5, "Status: "+string(inv.Status), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	// ── Item table ───────────────────────────────────────────────────────────
	col1 := contentW * 0.44 // item
	col2 := contentW * 0.14 // sku
	col3 := contentW * 0.10 // qty
	col4 := contentW * 0.16 // unit
	col5 := contentW * 0.16 // total

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(col1, 7, "Item", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 7, "SKU", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col3, 7, "Qty", "B", 0, "C", false, 0, "")
	pdf.CellFormat(col4, 7, "Unit", "B", 0, "R", false, 0, "")
	pdf.CellFormat(col5, 7, "Total", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	for _, item := range inv.Items {
		name := item.Name
		if len(name) > 40 {
			name = name[:39] + "…"
		}
		pdf.CellFormat(col1, 6, name, "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 6, item.SKU, "", 0, "L", false, 0, "")
		pdf.CellFormat(col3, 6, fmt.Sprintf("%d", item.Quantity), "", 0, "C", false, 0, "")
		pdf.CellFormat(col4, 6, item.UnitPrice.String(), "", 0, "R", false, 0, "")
		pdf.CellFormat(col5, 6, item.LineTotal.String(), "", 1, "R", false, 0, "")
	}

	pdf.Ln(3)
	pdf.Line(15, pdf.GetY(), pageW-15, pdf.GetY())
	pdf.Ln(3)

	// ── Totals ───────────────────────────────────────────────────────────────
	labelW := col1 + col2 + col3
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(labelW, 6, "Subtotal", "", 0, "R", false, 0, "")
	pdf.CellFormat(col4+col5, 6, inv.Subtotal.String(), "", 1, "R", false, 0, "")
	if !inv.DiscountAmount.IsZero() {
		pdf.CellFormat(labelW, 6, "Discount", "", 0, "R", false, 0, "")
		pdf.CellFormat(col4+col5, 6, "-"+inv.DiscountAmount.String(), "", 1, "R", false, 0, "")
	}
	pdf.CellFormat(labelW, 6, "Tax", "", 0, "R", false, 0, "")
	pdf.CellFormat(col4+col5, 6, inv.TaxAmount.String(), "", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(labelW, 8, "TOTAL", "", 0, "R", false, 0, "")
	pdf.CellFormat(col4+col5, 8, inv.Total.String(), "", 1, "R", false, 0, "")

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}
	return filePath, nil
}
