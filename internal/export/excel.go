package export

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/fmuoria/resume-reviser/internal/models"
)

// WorkbookFileName is the download name of the analysis workbook
const WorkbookFileName = "Resume_Analysis.xlsx"

// Sheet names
const (
	SheetSummary    = "Summary"
	SheetFeedback   = "Feedback"
	SheetSkills     = "Skills"
	SheetExperience = "Experience"
)

// band fill colours, matching the score donut in the desktop app
var bandColors = map[string]string{
	models.BandPoor: "FFC7CE",
	models.BandFair: "FFEB9C",
	models.BandGood: "C6EFCE",
}

var thinBorder = []excelize.Border{
	{Type: "left", Color: "000000", Style: 1},
	{Type: "right", Color: "000000", Style: 1},
	{Type: "top", Color: "000000", Style: 1},
	{Type: "bottom", Color: "000000", Style: 1},
}

// AnalysisWorkbook renders the analysis workbook in memory
func AnalysisWorkbook(result models.AnalysisResult) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteWorkbook(&buf, result); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteWorkbook writes the analysis workbook into w
func WriteWorkbook(w io.Writer, result models.AnalysisResult) error {
	f, err := newWorkbook(result)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write Excel workbook: %w", err)
	}
	return nil
}

func newWorkbook(result models.AnalysisResult) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}
	for _, name := range []string{SheetFeedback, SheetSkills, SheetExperience} {
		if _, err := f.NewSheet(name); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to create %s sheet: %w", name, err)
		}
	}

	steps := []struct {
		name string
		fn   func(*excelize.File, models.AnalysisResult) error
	}{
		{SheetSummary, createSummarySheet},
		{SheetFeedback, createFeedbackSheet},
		{SheetSkills, createSkillsSheet},
		{SheetExperience, createExperienceSheet},
	}
	for _, step := range steps {
		if err := step.fn(f, result); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to create %s sheet: %w", strings.ToLower(step.name), err)
		}
	}

	f.SetActiveSheet(0)
	return f, nil
}

// createSummarySheet creates the summary sheet with scores and bands
func createSummarySheet(f *excelize.File, result models.AnalysisResult) error {
	sheetName := SheetSummary
	f.SetColWidth(sheetName, "A", "A", 25)
	f.SetColWidth(sheetName, "B", "B", 40)
	f.SetColWidth(sheetName, "C", "C", 12)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
	})
	if err != nil {
		return err
	}

	labelStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return err
	}

	row := 1

	// Title
	f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), "Resume Analysis")
	f.SetCellStyle(sheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("C%d", row), headerStyle)
	f.MergeCell(sheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("C%d", row))
	row += 2

	scores := []struct {
		label string
		score int
	}{
		{"Original ATS Score:", result.OriginalScore},
		{"Revised ATS Score:", result.RevisedScore},
	}
	for _, s := range scores {
		band := models.ScoreBand(s.score)
		bandStyle, err := f.NewStyle(&excelize.Style{
			Fill:   excelize.Fill{Type: "pattern", Color: []string{bandColors[band]}, Pattern: 1},
			Border: thinBorder,
		})
		if err != nil {
			return err
		}

		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), s.label)
		f.SetCellStyle(sheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("A%d", row), labelStyle)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), s.score)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), band)
		f.SetCellStyle(sheetName, fmt.Sprintf("B%d", row), fmt.Sprintf("C%d", row), bandStyle)
		row++
	}

	f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), "Improvement:")
	f.SetCellStyle(sheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("A%d", row), labelStyle)
	f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), result.Improvement())
	row += 2

	f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), "Candidate:")
	f.SetCellStyle(sheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("A%d", row), labelStyle)
	f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), result.RevisedResume.Contact.Name)
	row++

	f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), "Generated:")
	f.SetCellStyle(sheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("A%d", row), labelStyle)
	f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), time.Now().Format("2006-01-02 15:04:05"))

	return nil
}

// headerRow writes bold column headers on row 1 and freezes it
func headerRow(f *excelize.File, sheetName string, headers []string, widths []float64) error {
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    thinBorder,
	})
	if err != nil {
		return err
	}

	for col, header := range headers {
		colName, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return err
		}
		cell := colName + "1"
		f.SetCellValue(sheetName, cell, header)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
		if col < len(widths) {
			f.SetColWidth(sheetName, colName, colName, widths[col])
		}
	}

	// Freeze top row
	return f.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		XSplit:      0,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func wrapStyle(f *excelize.File) (int, error) {
	return f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
		Border:    thinBorder,
	})
}

// createFeedbackSheet lists one feedback item per row
func createFeedbackSheet(f *excelize.File, result models.AnalysisResult) error {
	sheetName := SheetFeedback
	if err := headerRow(f, sheetName, []string{"#", "Feedback"}, []float64{6, 100}); err != nil {
		return err
	}
	style, err := wrapStyle(f)
	if err != nil {
		return err
	}

	for i, item := range result.FeedbackItems() {
		row := i + 2
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), i+1)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), item)
		f.SetCellStyle(sheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("B%d", row), style)
	}
	return nil
}

// createSkillsSheet lists one skill category per row
func createSkillsSheet(f *excelize.File, result models.AnalysisResult) error {
	sheetName := SheetSkills
	if err := headerRow(f, sheetName, []string{"Category", "Skills"}, []float64{25, 80}); err != nil {
		return err
	}
	if !result.RevisedResume.HasSkills() {
		return nil
	}
	style, err := wrapStyle(f)
	if err != nil {
		return err
	}

	row := 2
	for _, cat := range result.RevisedResume.Skills {
		if len(cat.Skills) == 0 && strings.TrimSpace(cat.Category) == "" {
			continue
		}
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), cat.Category)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), strings.Join(cat.Skills, ", "))
		f.SetCellStyle(sheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("B%d", row), style)
		row++
	}
	return nil
}

// createExperienceSheet lists one achievement per row
func createExperienceSheet(f *excelize.File, result models.AnalysisResult) error {
	sheetName := SheetExperience
	headers := []string{"Role", "Company", "Location", "Dates", "Achievement"}
	if err := headerRow(f, sheetName, headers, []float64{25, 25, 18, 18, 80}); err != nil {
		return err
	}
	style, err := wrapStyle(f)
	if err != nil {
		return err
	}

	row := 2
	for _, exp := range result.RevisedResume.Experience {
		achievements := exp.Achievements
		if len(achievements) == 0 {
			achievements = []string{""}
		}
		for _, ach := range achievements {
			f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), exp.Role)
			f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), exp.Company)
			f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), exp.Location)
			f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), exp.Dates)
			f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), ach)
			f.SetCellStyle(sheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("E%d", row), style)
			row++
		}
	}

	if row > 2 {
		f.AutoFilter(sheetName, fmt.Sprintf("A1:E%d", row-1), []excelize.AutoFilterOptions{})
	}
	return nil
}
