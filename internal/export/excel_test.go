package export

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/fmuoria/resume-reviser/internal/models"
	"github.com/fmuoria/resume-reviser/internal/render"
)

func testResult() models.AnalysisResult {
	return models.AnalysisResult{
		OriginalScore: 42,
		RevisedScore:  88,
		Feedback:      "* Added Kubernetes keywords\n* Quantified achievements",
		RevisedResume: models.StructuredResume{
			Contact: models.Contact{Name: "Jane Doe", Email: "jane@example.com"},
			Summary: "Backend engineer.",
			Skills: []models.SkillCategory{
				{Category: "Languages", Skills: []string{"Go", "SQL"}},
			},
			Experience: []models.Experience{
				{Role: "Senior Engineer", Company: "Acme", Dates: "2019 - 2023",
					Achievements: []string{"Cut latency by 30%", "Led migration"}},
				{Role: "Intern", Company: "Beta", Dates: "2018"},
			},
			Education: []models.Education{{Degree: "BSc", Institution: "University of Nairobi"}},
		},
	}
}

func openWorkbook(t *testing.T, data []byte) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

// TestAnalysisWorkbook_Sheets tests sheet names and contents
func TestAnalysisWorkbook_Sheets(t *testing.T) {
	data, err := AnalysisWorkbook(testResult())
	require.NoError(t, err)

	f := openWorkbook(t, data)
	assert.Equal(t, []string{SheetSummary, SheetFeedback, SheetSkills, SheetExperience}, f.GetSheetList())

	original, err := f.GetCellValue(SheetSummary, "B3")
	require.NoError(t, err)
	assert.Equal(t, "42", original)
	band, err := f.GetCellValue(SheetSummary, "C4")
	require.NoError(t, err)
	assert.Equal(t, models.BandGood, band)
	improvement, err := f.GetCellValue(SheetSummary, "B5")
	require.NoError(t, err)
	assert.Equal(t, "46", improvement)

	feedback, err := f.GetRows(SheetFeedback)
	require.NoError(t, err)
	require.Len(t, feedback, 3)
	assert.Equal(t, []string{"1", "Added Kubernetes keywords"}, feedback[1])

	skills, err := f.GetRows(SheetSkills)
	require.NoError(t, err)
	assert.Equal(t, []string{"Languages", "Go, SQL"}, skills[1])

	experience, err := f.GetRows(SheetExperience)
	require.NoError(t, err)
	// header, two achievements, one entry without achievements
	require.Len(t, experience, 4)
	assert.Equal(t, "Led migration", experience[2][4])
	assert.Equal(t, "Intern", experience[3][0])
}

// TestRenderAllAndWriteArtifacts tests concurrent rendering and file output
func TestRenderAllAndWriteArtifacts(t *testing.T) {
	artifacts, err := RenderAll(context.Background(), testResult())
	require.NoError(t, err)

	assert.Equal(t, render.PlainText(testResult().RevisedResume), artifacts.Text)
	assert.True(t, bytes.HasPrefix(artifacts.PDF, []byte("%PDF-")))
	assert.True(t, bytes.HasPrefix(artifacts.DOCX, []byte("PK\x03\x04")))
	assert.NotEmpty(t, artifacts.Workbook)

	dir := filepath.Join(t.TempDir(), "out")
	paths, err := WriteArtifacts(dir, artifacts)
	require.NoError(t, err)
	require.Len(t, paths, 4)

	for _, name := range []string{TextFileName, render.PDFFileName, render.DOCXFileName, WorkbookFileName} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}
}

// TestRenderAll_CanceledContext tests that a canceled context stops rendering
func TestRenderAll_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := RenderAll(ctx, testResult())
	assert.ErrorIs(t, err, context.Canceled)
}
