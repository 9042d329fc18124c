package render

import (
	"context"
	"io"
	"strings"

	"github.com/go-pdf/fpdf"

	"notes-backend/application/ports"
	pkgerrors "notes-backend/pkg/errors"
)

// PDFRenderer implements ports.DocumentRenderer with a simple one-page
// layout: centered title, a gray metadata block, a rule, then the body.
type PDFRenderer struct{}

// NewPDFRenderer creates a PDF document renderer
func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{}
}

// Render writes the document as a PDF to w
func (r *PDFRenderer) Render(ctx context.Context, doc ports.ExportDocument, w io.Writer) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 24)
	pdf.SetTextColor(0, 0, 0)
	pdf.MultiCell(0, 12, doc.Title, "", "C", false)
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(128, 128, 128)
	pdf.CellFormat(0, 6, "Category: "+doc.Category, "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, "Created: "+doc.CreatedAt.Format("January 2, 2006"), "", 1, "L", false, 0, "")
	if len(doc.TagNames) > 0 {
		pdf.CellFormat(0, 6, "Tags: "+strings.Join(doc.TagNames, ", "), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.4)
	left, _, right, _ := pdf.GetMargins()
	pageWidth, _ := pdf.GetPageSize()
	pdf.Line(left, pdf.GetY(), pageWidth-right, pdf.GetY())
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "", 12)
	pdf.SetTextColor(0, 0, 0)
	pdf.MultiCell(0, 6, doc.Body, "", "L", false)

	if err := pdf.Output(w); err != nil {
		return pkgerrors.NewInternalError("failed to render PDF").WithCause(err)
	}
	return nil
}
