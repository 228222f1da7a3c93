package export

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/fmuoria/resume-reviser/internal/models"
	"github.com/fmuoria/resume-reviser/internal/render"
)

// TextFileName is the file name used when the plain text is written to disk
const TextFileName = "Revised_Resume.txt"

// Artifacts holds every rendering of one analysis result
type Artifacts struct {
	Text     string
	PDF      []byte
	DOCX     []byte
	Workbook []byte
}

// RenderAll renders the text, PDF, DOCX and workbook concurrently. The
// result is only read.
func RenderAll(ctx context.Context, result models.AnalysisResult) (*Artifacts, error) {
	artifacts := &Artifacts{
		Text: render.PlainText(result.RevisedResume),
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := gCtx.Err(); err != nil {
			return err
		}
		data, err := render.PDF(result.RevisedResume)
		if err != nil {
			return err
		}
		artifacts.PDF = data
		return nil
	})

	g.Go(func() error {
		if err := gCtx.Err(); err != nil {
			return err
		}
		data, err := render.DOCX(result.RevisedResume)
		if err != nil {
			return err
		}
		artifacts.DOCX = data
		return nil
	})

	g.Go(func() error {
		if err := gCtx.Err(); err != nil {
			return err
		}
		data, err := AnalysisWorkbook(result)
		if err != nil {
			return err
		}
		artifacts.Workbook = data
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to render artifacts: %w", err)
	}
	return artifacts, nil
}

// WriteArtifacts writes every artifact into dir with its fixed file name
// and returns the written paths
func WriteArtifacts(dir string, artifacts *Artifacts) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	files := []struct {
		name string
		data []byte
	}{
		{TextFileName, []byte(artifacts.Text)},
		{render.PDFFileName, artifacts.PDF},
		{render.DOCXFileName, artifacts.DOCX},
		{WorkbookFileName, artifacts.Workbook},
	}

	paths := make([]string, 0, len(files))
	for _, file := range files {
		if len(file.data) == 0 {
			continue
		}
		path := filepath.Join(dir, file.name)
		if err := os.WriteFile(path, file.data, 0644); err != nil {
			return paths, fmt.Errorf("failed to write %s: %w", file.name, err)
		}
		slog.Info("artifact written", "path", path, "bytes", len(file.data))
		paths = append(paths, path)
	}

	return paths, nil
}
