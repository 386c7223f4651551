package infra

// pdf.go — receipt generation using go-pdf/fpdf.
// Produces an A7-size thermal-style receipt: business header, sale number and
// timestamp, item table, tax/discount/prepaid lines and a bold total.
// The output file is saved to storagePath/receipt_{saleNumber}.pdf.

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/AssembleOrg/mistica-backend/internal/model"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ReceiptRenderer writes PDF receipts for sales.
type ReceiptRenderer struct {
	BusinessName string
	StoragePath  string
}

func NewReceiptRenderer(businessName, storagePath string) *ReceiptRenderer {
	return &ReceiptRenderer{BusinessName: businessName, StoragePath: storagePath}
}

// Render generates the PDF receipt for a sale and returns the absolute path
// to the generated file.
func (r *ReceiptRenderer) Render(sale *model.Sale) (string, error) {
	if err := os.MkdirAll(r.StoragePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	fileName := fmt.Sprintf("receipt_%s.pdf", sale.SaleNumber)
	filePath := filepath.Join(r.StoragePath, fileName)

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
	pdf.CellFormat(contentW, 7, r.BusinessName, "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(contentW, 5, "Comprobante de Compra", "", 1, "C", false, 0, "")
	pdf.Ln(2)

	// ── Sale info ────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 8)
	pdf.CellFormat(contentW, 5, sale.SaleNumber, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(contentW, 4, sale.CreatedAt.Format("02/01/2006  15:04"), "", 1, "L", false, 0, "")
	if sale.CustomerName != nil && *sale.CustomerName != "" {
		pdf.CellFormat(contentW, 4, "Cliente: "+*sale.CustomerName, "", 1, "L", false, 0, "")
	}
	pdf.Ln(2)

	pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
	pdf.Ln(2)

	// ── Items ────────────────────────────────────────────────────────────────
	col1 := contentW * 0.52 // product name
	col2 := contentW * 0.16 // qty
	col3 := contentW * 0.32 // subtotal

	pdf.SetFont("Helvetica", "B", 7)
	pdf.CellFormat(col1, 5, "Producto", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 5, "Cant", "B", 0, "C", false, 0, "")
	pdf.CellFormat(col3, 5, "Subtotal", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	for _, item := range sale.Items {
		name := item.ProductName
		if len(name) > 22 {
			name = name[:21] + "…"
		}
		pdf.CellFormat(col1, 5, name, "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 5, fmt.Sprintf("x%d", item.Quantity), "", 0, "C", false, 0, "")
		pdf.CellFormat(col3, 5, "$"+item.Subtotal.StringFixed(2), "", 1, "R", false, 0, "")
	}

	pdf.Ln(2)
	pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
	pdf.Ln(2)

	// ── Totals ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(col1+col2, 4, "Subtotal:", "", 0, "L", false, 0, "")
	pdf.CellFormat(col3, 4, "$"+sale.Subtotal.StringFixed(2), "", 1, "R", false, 0, "")
	if !sale.Tax.IsZero() {
		pdf.CellFormat(col1+col2, 4, "Impuesto ("+sale.Tax.StringFixed(0)+"%):", "", 0, "L", false, 0, "")
		pdf.CellFormat(col3, 4, "$"+sale.Subtotal.Mul(sale.Tax).Div(hundred).StringFixed(2), "", 1, "R", false, 0, "")
	}
	if !sale.Discount.IsZero() {
		pdf.CellFormat(col1+col2, 4, "Descuento ("+sale.Discount.StringFixed(0)+"%):", "", 0, "L", false, 0, "")
		pdf.CellFormat(col3, 4, "-$"+sale.Subtotal.Mul(sale.Discount).Div(hundred).StringFixed(2), "", 1, "R", false, 0, "")
	}
	if !sale.PrepaidUsed.IsZero() {
		pdf.CellFormat(col1+col2, 4, "Prepaid:", "", 0, "L", false, 0, "")
		pdf.CellFormat(col3, 4, "-$"+sale.PrepaidUsed.StringFixed(2), "", 1, "R", false, 0, "")
	}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(col1+col2, 6, "TOTAL:", "", 0, "L", false, 0, "")
	pdf.CellFormat(col3, 6, "$"+sale.Total.StringFixed(2), "", 1, "R", false, 0, "")

	pdf.Ln(2)
	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(col1+col2, 4, "Pago:", "", 0, "L", false, 0, "")
	pdf.CellFormat(col3, 4, sale.PaymentMethod, "", 1, "R", false, 0, "")

	// ── Footer ───────────────────────────────────────────────────────────────
	pdf.Ln(3)
	pdf.SetFont("Helvetica", "I", 7)
	pdf.CellFormat(contentW, 4, "¡Gracias por su compra!", "", 1, "C", false, 0, "")

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}

	return filePath, nil
}
