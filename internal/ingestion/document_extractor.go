package ingestion

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"

	"github.com/fmuoria/resume-reviser/internal/apperr"
)

const (
	// ExtPDF and ExtDOCX are the supported upload extensions
	ExtPDF  = "pdf"
	ExtDOCX = "docx"
	// ExtDOC is accepted by the picker but rejected at parse time
	ExtDOC = "doc"
)

// AcceptedExtensions lists the extensions offered by file pickers
var AcceptedExtensions = []string{".pdf", ".doc", ".docx"}

var (
	errLegacyFormat = apperr.New(apperr.LegacyFormatUnsupported, ".doc files are not supported. Please save as .docx or .pdf.")
	errUnsupported  = apperr.New(apperr.UnsupportedFileType, "Unsupported file type. Please upload a .pdf or .docx file.")
)

// TextExtractor turns a document payload into plain text
type TextExtractor interface {
	ExtractText(data []byte) (string, error)
}

// Parser dispatches to an extractor by file extension
type Parser struct {
	extractors map[string]TextExtractor
}

// NewParser returns a parser for PDF and DOCX documents
func NewParser() *Parser {
	return &Parser{
		extractors: map[string]TextExtractor{
			ExtPDF:  PDFExtractor{},
			ExtDOCX: DOCXExtractor{},
		},
	}
}

// Extension returns the lower-case extension of name without the dot
func Extension(name string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
}

// Parse extracts text from data according to ext
func (p *Parser) Parse(ext string, data []byte) (string, error) {
	ext = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(ext)), ".")
	if ext == ExtDOC {
		return "", errLegacyFormat
	}

	extractor, ok := p.extractors[ext]
	if !ok {
		return "", errUnsupported
	}

	if !matchesSignature(ext, data) {
		return "", apperr.Wrap(apperr.UnsupportedFileType, errUnsupported.Message,
			fmt.Errorf("content does not look like a .%s file", ext))
	}

	text, err := extractor.ExtractText(data)
	if err != nil {
		return "", apperr.Wrap(apperr.DocumentUnreadable, "Failed to parse file.", err)
	}
	if strings.TrimSpace(text) == "" {
		return "", apperr.New(apperr.DocumentUnreadable, "No text could be extracted from the file. Scanned documents are not supported.")
	}
	return text, nil
}

// matchesSignature checks the leading magic bytes of the payload
func matchesSignature(ext string, data []byte) bool {
	switch ext {
	case ExtPDF:
		return bytes.HasPrefix(data, []byte("%PDF-"))
	case ExtDOCX:
		return bytes.HasPrefix(data, []byte("PK\x03\x04"))
	default:
		return true
	}
}

// PDFExtractor extracts text page by page, one trailing newline per page
type PDFExtractor struct{}

// ExtractText implements TextExtractor
func (PDFExtractor) ExtractText(data []byte) (text string, err error) {
	// the pdf library panics on some malformed inputs
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("failed to read pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to read pdf: %w", err)
	}

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("failed to read page %d: %w", i, err)
		}
		sb.WriteString(pageText)
		sb.WriteString("\n")
	}

	return sb.String(), nil
}

// DOCXExtractor extracts the raw text of the document body
type DOCXExtractor struct{}

// ExtractText implements TextExtractor
func (DOCXExtractor) ExtractText(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to parse docx: %w", err)
	}
	defer doc.Close()

	return docxBodyText(doc.Editable().GetContent())
}

// docxBodyText reduces document.xml to text. Paragraphs and breaks become
// newlines, tabs become tab characters.
func docxBodyText(raw string) (string, error) {
	decoder := xml.NewDecoder(strings.NewReader(raw))

	var sb strings.Builder
	inText, inTabStops := false, false
	for {
		tok, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to decode document.xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tabs":
				inTabStops = true
			case "tab":
				if !inTabStops {
					sb.WriteString("\t")
				}
			case "br", "cr":
				sb.WriteString("\n")
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "tabs":
				inTabStops = false
			case "p":
				sb.WriteString("\n")
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
	}

	return strings.TrimSpace(sb.String()), nil
}
