package reporting

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/lcalzada-xor/factmap/internal/core/domain"
)

// PDFExporter renders the facts list as a printable document
type PDFExporter struct {
	now func() time.Time
}

// NewPDFExporter creates a new PDF exporter instance
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{now: time.Now}
}

// ExportFacts generates a PDF from a facts screen snapshot
func (e *PDFExporter) ExportFacts(state domain.FactsState) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	// Core fonts are cp1252; translate so accented text survives
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Random Facts", true)
	pdf.SetCreator("factmap", true)
	pdf.AddPage()

	e.addHeader(pdf, state)

	switch state.Status {
	case domain.FactsLoading:
		e.addNotice(pdf, "Facts are still loading.")
	case domain.FactsError:
		e.addNotice(pdf, tr(state.Error))
	default:
		e.addFacts(pdf, tr, state.Facts)
	}

	e.addFooter(pdf)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// addHeader adds the document title
func (e *PDFExporter) addHeader(pdf *gofpdf.Fpdf, state domain.FactsState) {
	pdf.SetFont("Arial", "B", 24)
	pdf.SetTextColor(0, 51, 102) // Dark blue
	pdf.CellFormat(0, 15, "Random Facts", "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Arial", "", 10)
	pdf.SetTextColor(120, 120, 120)
	pdf.CellFormat(0, 6, fmt.Sprintf("Generated: %s", e.now().Format("2006-01-02 15:04")), "", 1, "L", false, 0, "")
	if !state.UpdatedAt.IsZero() {
		pdf.CellFormat(0, 6, fmt.Sprintf("Fetched: %s", state.UpdatedAt.Format("2006-01-02 15:04")), "", 1, "L", false, 0, "")
	}
	pdf.Ln(6)
}

func (e *PDFExporter) addNotice(pdf *gofpdf.Fpdf, text string) {
	pdf.SetFont("Arial", "I", 11)
	pdf.SetTextColor(180, 40, 40)
	pdf.MultiCell(0, 6, text, "", "L", false)
}

// addFacts adds one card per fact
func (e *PDFExporter) addFacts(pdf *gofpdf.Fpdf, tr func(string) string, facts []domain.Fact) {
	if len(facts) == 0 {
		pdf.SetFont("Arial", "I", 10)
		pdf.SetTextColor(100, 100, 100)
		pdf.CellFormat(0, 7, "No facts could be fetched", "", 1, "L", false, 0, "")
		return
	}

	for _, f := range facts {
		if pdf.GetY() > 260 {
			pdf.AddPage()
		}

		pdf.SetFont("Arial", "", 11)
		pdf.SetTextColor(30, 30, 30)
		pdf.MultiCell(0, 6, tr(f.Text), "", "L", false)

		pdf.SetFont("Arial", "", 8)
		pdf.SetTextColor(110, 110, 110)
		pdf.CellFormat(0, 5, tr("Source: "+f.Source), "", 1, "L", false, 0, "")

		pdf.SetDrawColor(220, 220, 220)
		pdf.Line(10, pdf.GetY()+1, 200, pdf.GetY()+1)
		pdf.Ln(4)
	}
}

// addFooter adds the document footer
func (e *PDFExporter) addFooter(pdf *gofpdf.Fpdf) {
	pdf.SetY(-20)
	pdf.SetFont("Arial", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.CellFormat(0, 5, "Facts from uselessfacts.jsph.pl", "", 1, "C", false, 0, "")
}
