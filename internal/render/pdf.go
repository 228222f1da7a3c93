package render

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/fmuoria/resume-reviser/internal/models"
)

// PDFFileName is the download name of the rendered PDF
const PDFFileName = "Revised_Resume.pdf"

const fontFamily = "DejaVuSansCondensed"

// Embedded UTF-8 faces, one per FontStyle
var (
	//go:embed fonts/DejaVuSansCondensed.ttf
	fontRegular []byte
	//go:embed fonts/DejaVuSansCondensed-Bold.ttf
	fontBold []byte
	//go:embed fonts/DejaVuSansCondensed-Oblique.ttf
	fontItalic []byte
)

// fixedTime keeps generated documents byte-identical between runs
var fixedTime = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// fpdfMeasurer measures text with the embedded font metrics of a document
type fpdfMeasurer struct {
	pdf *fpdf.Fpdf
}

func (m fpdfMeasurer) Width(text string, font Font) float64 {
	m.pdf.SetFont(fontFamily, string(font.Style), font.Size)
	return m.pdf.GetStringWidth(text)
}

func newPDF(title string) *fpdf.Fpdf {
	pdf := fpdf.New("P", "pt", "Letter", "")
	pdf.SetMargins(Margin, Margin, Margin)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCreationDate(fixedTime)
	pdf.SetModificationDate(fixedTime)
	pdf.SetCatalogSort(true)
	pdf.SetCreator("resume-reviser", true)
	pdf.SetTitle(title, true)
	pdf.AddUTF8FontFromBytes(fontFamily, string(Regular), fontRegular)
	pdf.AddUTF8FontFromBytes(fontFamily, string(Bold), fontBold)
	pdf.AddUTF8FontFromBytes(fontFamily, string(Italic), fontItalic)
	return pdf
}

// NewPDFMeasurer returns a measurer backed by the embedded font metrics
func NewPDFMeasurer() Measurer {
	return fpdfMeasurer{pdf: newPDF("")}
}

// PDF renders the resume as a paginated US Letter PDF
func PDF(r models.StructuredResume) ([]byte, error) {
	var buf bytes.Buffer
	if err := WritePDF(&buf, r); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WritePDF renders the resume as a PDF into w
func WritePDF(w io.Writer, r models.StructuredResume) error {
	return writePDF(w, r, true)
}

func writePDF(w io.Writer, r models.StructuredResume, compress bool) error {
	pdf := newPDF(r.Contact.Name)
	pdf.SetCompression(compress)
	doc := Layout(r, fpdfMeasurer{pdf: pdf})

	for _, page := range doc.Pages {
		pdf.AddPage()
		for _, el := range page.Elements {
			switch el.Kind {
			case ElementRule:
				pdf.SetDrawColor(el.Gray, el.Gray, el.Gray)
				pdf.SetLineWidth(0.75)
				pdf.Line(el.X, el.Y, el.X2, el.Y)
			case ElementText:
				pdf.SetFont(fontFamily, string(el.Font.Style), el.Font.Size)
				pdf.Text(el.X, el.Y, el.Text)
			}
		}
	}

	if pdf.Err() {
		return fmt.Errorf("failed to render pdf: %w", pdf.Error())
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to write pdf: %w", err)
	}
	return nil
}
