package infra

// pdf.go — Internal PDF receipt generation using go-pdf/fpdf.
// Generates A7-size thermal receipt-style tickets with:
//   - Store name header
//   - Ticket number and timestamp
//   - Item table (product name, quantity/weight, subtotal)
//   - Discount line (if applicable)
//   - Bold total
//   - Tender breakdown
//
// The output file is saved to storagePath/receipt_{ticket}.pdf.

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-pdf/fpdf"
	"tillpos/internal/model"
)

// GenerateReceiptPDF renders a completed sale to a PDF receipt.
// storagePath is the directory where the PDF will be written (created if
// needed). Returns the absolute path to the generated file.
func GenerateReceiptPDF(sale *model.Sale, storeName, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	fileName := fmt.Sprintf("receipt_%d.pdf", sale.TicketNumber)
	filePath := filepath.Join(storagePath, fileName)

	// A7 ≈ 74mm × 105mm — close to thermal receipt paper
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: 74, Ht: 105},
	})
	pdf.SetMargins(4, 4, 4)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 8 // total margins = 8mm

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(contentW, 7, storeName, "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(contentW, 4, fmt.Sprintf("Ticket #%d", sale.TicketNumber), "", 1, "C", false, 0, "")
	pdf.CellFormat(contentW, 4, sale.CreatedAt.Format("2006-01-02 15:04"), "", 1, "C", false, 0, "")
	pdf.Ln(2)

	// ── Items ────────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "", 8)
	for _, item := range sale.Items {
		name := ""
		if item.Product != nil {
			name = item.Product.Name
		}
		qty := ""
		switch {
		case item.Weight != nil:
			qty = fmt.Sprintf("%s kg", item.Weight.StringFixed(3))
		case item.Quantity != nil:
			qty = fmt.Sprintf("%d x %s", *item.Quantity, item.UnitPrice)
		}
		pdf.CellFormat(contentW*0.6, 4, truncate(name, 24), "", 0, "L", false, 0, "")
		pdf.CellFormat(contentW*0.4, 4, item.Subtotal.String(), "", 1, "R", false, 0, "")
		if qty != "" {
			pdf.SetFont("Helvetica", "I", 7)
			pdf.CellFormat(contentW, 3, "  "+qty, "", 1, "L", false, 0, "")
			pdf.SetFont("Helvetica", "", 8)
		}
	}
	pdf.Ln(1)

	// ── Discount / total ─────────────────────────────────────────────────────
	if !sale.DiscountTotal.IsZero() {
		pdf.CellFormat(contentW*0.6, 4, "Discount", "T", 0, "L", false, 0, "")
		pdf.CellFormat(contentW*0.4, 4, "-"+sale.DiscountTotal.String(), "T", 1, "R", false, 0, "")
	}
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(contentW*0.6, 6, "TOTAL", "T", 0, "L", false, 0, "")
	pdf.CellFormat(contentW*0.4, 6, sale.Total.String(), "T", 1, "R", false, 0, "")

	// ── Tender breakdown ─────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "", 8)
	for _, p := range sale.Payments {
		pdf.CellFormat(contentW*0.6, 4, string(p.Method), "", 0, "L", false, 0, "")
		pdf.CellFormat(contentW*0.4, 4, p.Amount.String(), "", 1, "R", false, 0, "")
	}

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write %s: %w", filePath, err)
	}
	return filePath, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
