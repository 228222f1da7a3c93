package render

import (
	"strings"

	"github.com/fmuoria/resume-reviser/internal/models"
)

// Page geometry in points, US Letter
const (
	PageWidth     = 612.0
	PageHeight    = 792.0
	Margin        = 50.0
	ContentWidth  = PageWidth - 2*Margin
	ContentHeight = PageHeight - 2*Margin

	skillsColumn = 120.0
	bulletIndent = 10.0
	lineHeight   = 12.0
)

// FontStyle is a font variant
type FontStyle string

const (
	Regular FontStyle = ""
	Bold    FontStyle = "B"
	Italic  FontStyle = "I"
)

// Font is a style and a size in points
type Font struct {
	Style FontStyle
	Size  float64
}

var (
	fontName    = Font{Bold, 26}
	fontContact = Font{Regular, 10}
	fontHeading = Font{Bold, 12}
	fontBody    = Font{Regular, 11}
	fontStrong  = Font{Bold, 11}
	fontEmph    = Font{Italic, 11}
)

// Measurer reports the rendered width of text in points
type Measurer interface {
	Width(text string, font Font) float64
}

// ElementKind distinguishes drawable elements
type ElementKind int

const (
	ElementText ElementKind = iota
	ElementRule
)

// Tag marks what an element represents
type Tag string

const (
	TagName     Tag = "name"
	TagContact  Tag = "contact"
	TagHeading  Tag = "heading"
	TagText     Tag = "text"
	TagCategory Tag = "category"
	TagSkills   Tag = "skills"
	TagRole     Tag = "role"
	TagDates    Tag = "dates"
	TagCompany  Tag = "company"
	TagBullet   Tag = "bullet"
	TagDegree   Tag = "degree"
	TagRule     Tag = "rule"
)

// Element is a positioned text run or horizontal rule. For text, X is the
// left edge and Y the baseline. For a rule, the line runs from X to X2 at Y.
type Element struct {
	Kind ElementKind
	Tag  Tag
	X, Y float64
	X2   float64
	Gray int
	Text string
	Font Font
}

// Page holds the elements drawn on one page
type Page struct {
	Elements []Element
}

// Document is a laid out resume
type Document struct {
	Pages []Page
}

// row is an unbreakable horizontal strip. Item Y values are relative to
// the top of the row's content area.
type row struct {
	before float64
	height float64
	items  []Element
	glue   bool // no page break between this row and the next
}

type block struct {
	rows         []row
	keepTogether bool
}

func (b block) height() float64 {
	h := 0.0
	for _, r := range b.rows {
		h += r.before + r.height
	}
	return h
}

// Layout positions the resume on pages. It reads r but never modifies it.
func Layout(r models.StructuredResume, m Measurer) Document {
	l := &layouter{m: m}
	return paginate(l.blocks(r))
}

type layouter struct {
	m Measurer
}

func (l *layouter) blocks(r models.StructuredResume) []block {
	blocks := []block{l.header(r.Contact)}

	for _, s := range sectionsOf(r) {
		blocks = append(blocks, l.heading(s.title))

		switch s.kind {
		case sectionSummary:
			blocks = append(blocks, l.paragraph(r.Summary))
		case sectionSkills:
			first := true
			for _, cat := range r.Skills {
				if SkillsLine(cat) == "" {
					continue
				}
				blocks = append(blocks, l.skillCategory(cat, first))
				first = false
			}
		case sectionExperience:
			for i, exp := range r.Experience {
				blocks = append(blocks, l.experience(exp, i == 0))
			}
		case sectionEducation:
			for i, edu := range r.Education {
				blocks = append(blocks, l.education(edu, i == 0))
			}
		}
	}

	return blocks
}

func (l *layouter) header(c models.Contact) block {
	var b block
	for _, line := range l.wrap(c.Name, fontName, ContentWidth) {
		b.rows = append(b.rows, row{height: 30, items: []Element{l.centered(line, fontName, 24, TagName)}})
	}
	for i, line := range l.wrap(c.ContactLine(), fontContact, ContentWidth) {
		r := row{height: 13, items: []Element{l.centered(line, fontContact, 10, TagContact)}}
		if i == 0 {
			r.before = 4
		}
		b.rows = append(b.rows, r)
	}
	b.rows = append(b.rows, row{height: 12, items: []Element{rule(7, 200)}})
	b.keepTogether = true
	return b
}

// heading is glued to the first row of the section content
func (l *layouter) heading(title string) block {
	return block{rows: []row{{
		before: 12,
		height: 24,
		items: []Element{
			{Kind: ElementText, Tag: TagHeading, X: Margin, Y: 12, Text: strings.ToUpper(title), Font: fontHeading},
			rule(17, 150),
		},
		glue: true,
	}}}
}

func (l *layouter) paragraph(text string) block {
	var b block
	for _, line := range l.wrap(text, fontBody, ContentWidth) {
		b.rows = append(b.rows, textRow(Margin, line, fontBody, TagText))
	}
	b.keepTogether = true
	return b
}

func (l *layouter) skillCategory(cat models.SkillCategory, first bool) block {
	var labels []string
	if strings.TrimSpace(cat.Category) != "" {
		labels = l.wrap(cat.Category+":", fontStrong, skillsColumn-8)
	}
	skills := l.wrap(strings.Join(cat.Skills, ", "), fontBody, ContentWidth-skillsColumn)

	n := len(labels)
	if len(skills) > n {
		n = len(skills)
	}

	var b block
	for i := 0; i < n; i++ {
		r := row{height: lineHeight}
		if i == 0 && !first {
			r.before = 4
		}
		if i < len(labels) {
			r.items = append(r.items, Element{Kind: ElementText, Tag: TagCategory, X: Margin, Y: 9, Text: labels[i], Font: fontStrong})
		}
		if i < len(skills) {
			r.items = append(r.items, Element{Kind: ElementText, Tag: TagSkills, X: Margin + skillsColumn, Y: 9, Text: skills[i], Font: fontBody})
		}
		b.rows = append(b.rows, r)
	}
	b.keepTogether = true
	return b
}

// titleRows lays out a bold title with a right-aligned date on its first line
func (l *layouter) titleRows(title, date string, titleTag Tag) []row {
	width := ContentWidth
	var dateEl *Element
	if date != "" {
		w := l.m.Width(date, fontBody)
		width = ContentWidth - w - 12
		dateEl = &Element{Kind: ElementText, Tag: TagDates, X: PageWidth - Margin - w, Y: 10, Text: date, Font: fontBody}
	}

	lines := l.wrap(title, fontStrong, width)
	if len(lines) == 0 {
		lines = []string{""}
	}

	rows := make([]row, 0, len(lines))
	for i, line := range lines {
		r := row{height: 14, glue: true}
		if line != "" {
			r.items = append(r.items, Element{Kind: ElementText, Tag: titleTag, X: Margin, Y: 10, Text: line, Font: fontStrong})
		}
		if i == 0 && dateEl != nil {
			r.items = append(r.items, *dateEl)
		}
		rows = append(rows, r)
	}
	return rows
}

// subtitleRows lays out the italic "Organization | Location" line
func (l *layouter) subtitleRows(org, location string) []row {
	var rows []row
	for _, line := range l.wrap(models.JoinNonEmpty(" | ", org, location), fontEmph, ContentWidth) {
		rows = append(rows, row{height: 14, glue: true, items: []Element{
			{Kind: ElementText, Tag: TagCompany, X: Margin, Y: 10, Text: line, Font: fontEmph},
		}})
	}
	return rows
}

func (l *layouter) experience(exp models.Experience, first bool) block {
	rows := l.titleRows(exp.Role, exp.Dates, TagRole)
	rows = append(rows, l.subtitleRows(exp.Company, exp.Location)...)

	for _, ach := range exp.Achievements {
		lines := l.wrap(ach, fontBody, ContentWidth-2*bulletIndent)
		for i, line := range lines {
			r := textRow(Margin+2*bulletIndent, line, fontBody, TagBullet)
			if i == 0 {
				r.before = 3
				r.items = append([]Element{{Kind: ElementText, Tag: TagBullet, X: Margin + bulletIndent, Y: 9, Text: Bullet, Font: fontBody}}, r.items...)
			}
			r.glue = i < len(lines)-1
			rows = append(rows, r)
		}
	}

	return entryBlock(rows, first, 8)
}

func (l *layouter) education(edu models.Education, first bool) block {
	rows := l.titleRows(edu.Degree, edu.GraduationDate, TagDegree)
	rows = append(rows, l.subtitleRows(edu.Institution, edu.Location)...)
	return entryBlock(rows, first, 6)
}

// entryBlock finishes an experience or education entry. The header rows
// stay glued to the first content row; the last row never glues onward.
func entryBlock(rows []row, first bool, gap float64) block {
	if len(rows) == 0 {
		return block{}
	}
	if !first {
		rows[0].before += gap
	}
	rows[len(rows)-1].glue = false
	return block{rows: rows, keepTogether: true}
}

func textRow(x float64, text string, font Font, tag Tag) row {
	return row{height: lineHeight, items: []Element{
		{Kind: ElementText, Tag: tag, X: x, Y: 9, Text: text, Font: font},
	}}
}

func rule(y float64, gray int) Element {
	return Element{Kind: ElementRule, Tag: TagRule, X: Margin, X2: PageWidth - Margin, Y: y, Gray: gray}
}

func (l *layouter) centered(text string, font Font, baseline float64, tag Tag) Element {
	w := l.m.Width(text, font)
	return Element{Kind: ElementText, Tag: tag, X: (PageWidth - w) / 2, Y: baseline, Text: text, Font: font}
}

// wrap breaks text into lines no wider than width. Words wider than the
// column are broken by character.
func (l *layouter) wrap(text string, font Font, width float64) []string {
	var lines []string
	cur := ""
	for _, word := range strings.Fields(text) {
		if l.m.Width(word, font) > width {
			if cur != "" {
				lines = append(lines, cur)
			}
			pieces := l.breakWord(word, font, width)
			lines = append(lines, pieces[:len(pieces)-1]...)
			cur = pieces[len(pieces)-1]
			continue
		}

		candidate := word
		if cur != "" {
			candidate = cur + " " + word
		}
		if l.m.Width(candidate, font) <= width {
			cur = candidate
			continue
		}
		lines = append(lines, cur)
		cur = word
	}
	if cur != "" {
		lines = append(lines, cur)
	}
	return lines
}

func (l *layouter) breakWord(word string, font Font, width float64) []string {
	var pieces []string
	cur := ""
	for _, r := range word {
		next := cur + string(r)
		if cur != "" && l.m.Width(next, font) > width {
			pieces = append(pieces, cur)
			next = string(r)
		}
		cur = next
	}
	return append(pieces, cur)
}

// paginate places rows top to bottom with a single cursor. A run of glued
// rows moves to a fresh page when it does not fit in the space left and
// does fit on an empty page; otherwise rows break individually, always
// keeping a glued row together with its successor.
func paginate(blocks []block) Document {
	var rows []row
	for _, b := range blocks {
		together := b.keepTogether && b.height() <= ContentHeight
		for i, r := range b.rows {
			if together && i < len(b.rows)-1 {
				r.glue = true
			}
			rows = append(rows, r)
		}
	}
	if len(rows) > 0 {
		rows[len(rows)-1].glue = false
	}

	doc := Document{Pages: []Page{{}}}
	y, fresh := Margin, true
	bottom := PageHeight - Margin

	newPage := func() {
		doc.Pages = append(doc.Pages, Page{})
		y, fresh = Margin, true
	}

	for start := 0; start < len(rows); {
		end := start
		for end < len(rows)-1 && rows[end].glue {
			end++
		}

		if !fresh {
			runHeight := unitHeight(rows[start:end+1], false)
			if y+runHeight > bottom && unitHeight(rows[start:end+1], true) <= ContentHeight {
				newPage()
			}
		}

		for i := start; i <= end; i++ {
			need := rowSpan(rows[i], fresh)
			if rows[i].glue && i+1 < len(rows) {
				need += rows[i+1].before + rows[i+1].height
			}
			if !fresh && y+need > bottom {
				newPage()
			}

			before := rows[i].before
			if fresh {
				before = 0
			}
			top := y + before
			page := &doc.Pages[len(doc.Pages)-1]
			for _, el := range rows[i].items {
				el.Y += top
				page.Elements = append(page.Elements, el)
			}
			y = top + rows[i].height
			fresh = false
		}

		start = end + 1
	}

	return doc
}

func rowSpan(r row, fresh bool) float64 {
	if fresh {
		return r.height
	}
	return r.before + r.height
}

func unitHeight(rows []row, fresh bool) float64 {
	h := 0.0
	for i, r := range rows {
		h += rowSpan(r, fresh && i == 0)
	}
	return h
}
