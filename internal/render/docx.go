package render

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/fmuoria/resume-reviser/internal/models"
)

// DOCXFileName is the download name of the rendered DOCX
const DOCXFileName = "Revised_Resume.docx"

const wordNS = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"

// Page setup in twentieths of a point
const (
	twipsPerPoint  = 20
	pageWidthTwips = int(PageWidth * twipsPerPoint)
	marginTwips    = int(Margin * twipsPerPoint)
	contentTwips   = pageWidthTwips - 2*marginTwips
)

const contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
	`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
	`<Default Extension="xml" ContentType="application/xml"/>` +
	`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>` +
	`<Override PartName="/word/styles.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"/>` +
	`<Override PartName="/word/numbering.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.numbering+xml"/>` +
	`</Types>`

const packageRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
	`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>` +
	`</Relationships>`

const documentRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
	`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles" Target="styles.xml"/>` +
	`<Relationship Id="rId2" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/numbering" Target="numbering.xml"/>` +
	`</Relationships>`

const numberingXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:numbering xmlns:w="` + wordNS + `">` +
	`<w:abstractNum w:abstractNumId="0"><w:multiLevelType w:val="hybridMultilevel"/>` +
	`<w:lvl w:ilvl="0"><w:start w:val="1"/><w:numFmt w:val="bullet"/><w:lvlText w:val="` + Bullet + `"/><w:lvlJc w:val="left"/>` +
	`<w:pPr><w:ind w:left="720" w:hanging="360"/></w:pPr></w:lvl></w:abstractNum>` +
	`<w:num w:numId="1"><w:abstractNumId w:val="0"/></w:num>` +
	`</w:numbering>`

// Paragraph styles
const (
	styleNormal         = "Normal"
	styleTitle          = "Title"
	styleContact        = "Contact"
	styleSectionHeading = "SectionHeading"
	styleJobTitle       = "JobTitle"
	styleCompany        = "Company"
	styleListBullet     = "ListBullet"
)

func stylesXML() string {
	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	sb.WriteString(`<w:styles xmlns:w="` + wordNS + `">`)
	sb.WriteString(`<w:docDefaults><w:rPrDefault><w:rPr>` +
		`<w:rFonts w:ascii="Calibri" w:hAnsi="Calibri" w:cs="Calibri"/><w:sz w:val="22"/><w:szCs w:val="22"/>` +
		`</w:rPr></w:rPrDefault><w:pPrDefault><w:pPr><w:spacing w:after="0" w:line="259" w:lineRule="auto"/></w:pPr></w:pPrDefault></w:docDefaults>`)

	sb.WriteString(`<w:style w:type="paragraph" w:default="1" w:styleId="Normal"><w:name w:val="Normal"/><w:qFormat/></w:style>`)
	sb.WriteString(`<w:style w:type="paragraph" w:styleId="Title"><w:name w:val="Title"/><w:basedOn w:val="Normal"/><w:next w:val="Contact"/><w:qFormat/>` +
		`<w:pPr><w:jc w:val="center"/></w:pPr><w:rPr><w:b/><w:sz w:val="52"/><w:szCs w:val="52"/></w:rPr></w:style>`)
	sb.WriteString(`<w:style w:type="paragraph" w:customStyle="1" w:styleId="Contact"><w:name w:val="Contact"/><w:basedOn w:val="Normal"/>` +
		`<w:pPr><w:jc w:val="center"/><w:spacing w:after="240"/></w:pPr><w:rPr><w:sz w:val="20"/><w:szCs w:val="20"/></w:rPr></w:style>`)
	sb.WriteString(`<w:style w:type="paragraph" w:customStyle="1" w:styleId="SectionHeading"><w:name w:val="Section Heading"/><w:basedOn w:val="Normal"/><w:next w:val="Normal"/><w:qFormat/>` +
		`<w:pPr><w:keepNext/><w:pBdr><w:bottom w:val="single" w:sz="6" w:space="1" w:color="auto"/></w:pBdr><w:spacing w:before="240" w:after="120"/><w:outlineLvl w:val="1"/></w:pPr>` +
		`<w:rPr><w:b/><w:caps/><w:sz w:val="24"/><w:szCs w:val="24"/></w:rPr></w:style>`)
	sb.WriteString(fmt.Sprintf(`<w:style w:type="paragraph" w:customStyle="1" w:styleId="JobTitle"><w:name w:val="Job Title"/><w:basedOn w:val="Normal"/>`+
		`<w:pPr><w:keepNext/><w:tabs><w:tab w:val="right" w:pos="%d"/></w:tabs><w:spacing w:before="120"/></w:pPr></w:style>`, contentTwips))
	sb.WriteString(`<w:style w:type="paragraph" w:customStyle="1" w:styleId="Company"><w:name w:val="Company"/><w:basedOn w:val="Normal"/>` +
		`<w:pPr><w:keepNext/><w:spacing w:after="60"/></w:pPr><w:rPr><w:i/></w:rPr></w:style>`)
	sb.WriteString(`<w:style w:type="paragraph" w:styleId="ListBullet"><w:name w:val="List Bullet"/><w:basedOn w:val="Normal"/>` +
		`<w:pPr><w:numPr><w:numId w:val="1"/></w:numPr><w:spacing w:after="40"/><w:ind w:left="720" w:hanging="360"/></w:pPr></w:style>`)
	sb.WriteString(`</w:styles>`)
	return sb.String()
}

// runProps are the inline formatting of a run
type runProps struct {
	bold   bool
	italic bool
}

// docWriter accumulates the document body
type docWriter struct {
	sb strings.Builder
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

func (w *docWriter) run(text string, props runProps) {
	w.sb.WriteString("<w:r>")
	if props.bold || props.italic {
		w.sb.WriteString("<w:rPr>")
		if props.bold {
			w.sb.WriteString("<w:b/>")
		}
		if props.italic {
			w.sb.WriteString("<w:i/>")
		}
		w.sb.WriteString("</w:rPr>")
	}
	w.sb.WriteString(`<w:t xml:space="preserve">`)
	w.sb.WriteString(escapeXML(text))
	w.sb.WriteString("</w:t></w:r>")
}

func (w *docWriter) tab() {
	w.sb.WriteString("<w:r><w:tab/></w:r>")
}

func (w *docWriter) paragraph(style string, body func()) {
	w.sb.WriteString(`<w:p><w:pPr><w:pStyle w:val="`)
	w.sb.WriteString(style)
	w.sb.WriteString(`"/></w:pPr>`)
	if body != nil {
		body()
	}
	w.sb.WriteString("</w:p>")
}

func (w *docWriter) textParagraph(style, text string, props runProps) {
	w.paragraph(style, func() {
		if text != "" {
			w.run(text, props)
		}
	})
}

// titled writes a bold title with a right-tabbed date
func (w *docWriter) titled(title, date string) {
	w.paragraph(styleJobTitle, func() {
		w.run(title, runProps{bold: true})
		if date != "" {
			w.tab()
			w.run(date, runProps{})
		}
	})
}

// skillsTable writes a borderless two-column table, 20% category and 80% skills
func (w *docWriter) skillsTable(skills []models.SkillCategory) {
	labelTwips := contentTwips / 5
	w.sb.WriteString(`<w:tbl><w:tblPr><w:tblW w:w="5000" w:type="pct"/><w:tblBorders>` +
		`<w:top w:val="nil"/><w:left w:val="nil"/><w:bottom w:val="nil"/><w:right w:val="nil"/>` +
		`<w:insideH w:val="nil"/><w:insideV w:val="nil"/></w:tblBorders><w:tblLayout w:type="fixed"/>` +
		`<w:tblLook w:val="0000" w:firstRow="0" w:lastRow="0" w:firstColumn="0" w:lastColumn="0" w:noHBand="1" w:noVBand="1"/></w:tblPr>`)
	w.sb.WriteString(fmt.Sprintf(`<w:tblGrid><w:gridCol w:w="%d"/><w:gridCol w:w="%d"/></w:tblGrid>`, labelTwips, contentTwips-labelTwips))

	for _, cat := range skills {
		if SkillsLine(cat) == "" {
			continue
		}
		w.sb.WriteString("<w:tr>")
		w.sb.WriteString(`<w:tc><w:tcPr><w:tcW w:w="1000" w:type="pct"/></w:tcPr>`)
		label := ""
		if strings.TrimSpace(cat.Category) != "" {
			label = cat.Category + ":"
		}
		w.textParagraph(styleNormal, label, runProps{bold: true})
		w.sb.WriteString("</w:tc>")
		w.sb.WriteString(`<w:tc><w:tcPr><w:tcW w:w="4000" w:type="pct"/></w:tcPr>`)
		w.textParagraph(styleNormal, strings.Join(cat.Skills, ", "), runProps{})
		w.sb.WriteString("</w:tc>")
		w.sb.WriteString("</w:tr>")
	}
	w.sb.WriteString("</w:tbl>")
}

func documentXML(r models.StructuredResume) string {
	w := &docWriter{}
	w.sb.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	w.sb.WriteString(`<w:document xmlns:w="` + wordNS + `"><w:body>`)

	w.textParagraph(styleTitle, strings.TrimSpace(r.Contact.Name), runProps{})
	if line := r.Contact.ContactLine(); line != "" {
		w.textParagraph(styleContact, line, runProps{})
	}

	for _, s := range sectionsOf(r) {
		w.textParagraph(styleSectionHeading, s.title, runProps{})

		switch s.kind {
		case sectionSummary:
			w.textParagraph(styleNormal, strings.TrimSpace(r.Summary), runProps{})
		case sectionSkills:
			w.skillsTable(r.Skills)
		case sectionExperience:
			for _, exp := range r.Experience {
				w.titled(exp.Role, exp.Dates)
				w.textParagraph(styleCompany, models.JoinNonEmpty(" | ", exp.Company, exp.Location), runProps{})
				for _, ach := range exp.Achievements {
					w.textParagraph(styleListBullet, ach, runProps{})
				}
			}
		case sectionEducation:
			for _, edu := range r.Education {
				w.titled(edu.Degree, edu.GraduationDate)
				w.textParagraph(styleCompany, models.JoinNonEmpty(" | ", edu.Institution, edu.Location), runProps{})
			}
		}
	}

	w.sb.WriteString(fmt.Sprintf(`<w:sectPr><w:pgSz w:w="%d" w:h="%d"/>`+
		`<w:pgMar w:top="%d" w:right="%d" w:bottom="%d" w:left="%d" w:header="720" w:footer="720" w:gutter="0"/></w:sectPr>`,
		pageWidthTwips, int(PageHeight*twipsPerPoint), marginTwips, marginTwips, marginTwips, marginTwips))
	w.sb.WriteString("</w:body></w:document>")
	return w.sb.String()
}

// DOCX renders the resume as a styled WordprocessingML package
func DOCX(r models.StructuredResume) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteDOCX(&buf, r); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteDOCX writes the DOCX package into w. Output is byte-identical for
// equal input.
func WriteDOCX(w io.Writer, r models.StructuredResume) error {
	parts := []struct {
		name    string
		content string
	}{
		{"[Content_Types].xml", contentTypesXML},
		{"_rels/.rels", packageRelsXML},
		{"word/document.xml", documentXML(r)},
		{"word/styles.xml", stylesXML()},
		{"word/numbering.xml", numberingXML},
		{"word/_rels/document.xml.rels", documentRelsXML},
	}

	zw := zip.NewWriter(w)
	for _, part := range parts {
		fw, err := zw.CreateHeader(&zip.FileHeader{
			Name:     part.name,
			Method:   zip.Deflate,
			Modified: fixedTime,
		})
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", part.name, err)
		}
		if _, err := io.WriteString(fw, part.content); err != nil {
			return fmt.Errorf("failed to write %s: %w", part.name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finalize docx: %w", err)
	}
	return nil
}
