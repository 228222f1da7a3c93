package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/fmuoria/resume-reviser/internal/export"
	"github.com/fmuoria/resume-reviser/internal/ingestion"
	"github.com/fmuoria/resume-reviser/internal/models"
	"github.com/fmuoria/resume-reviser/internal/session"
)

var reviseCmd = &cobra.Command{
	Use:   "revise",
	Short: "Score and revise one resume against a job description",
	Long: "Revise reads a resume (.pdf or .docx) and a job description from a file or URL, " +
		"asks the model for an ATS analysis and writes the revised resume as text, PDF and DOCX " +
		"plus an analysis workbook.",
	RunE: runRevise,
}

type reviseOptions struct {
	resumePath string
	jobPath    string
	jobURL     string
	outDir     string
	copyText   bool
	maxBytes   int64
}

var reviseOpts reviseOptions

func init() {
	reviseCmd.Flags().StringVarP(&reviseOpts.resumePath, "resume", "r", "", "Path to the resume (.pdf or .docx)")
	reviseCmd.Flags().StringVarP(&reviseOpts.jobPath, "job", "j", "", "Path to a text file with the job description")
	reviseCmd.Flags().StringVarP(&reviseOpts.jobURL, "job-url", "u", "", "URL of the job posting")
	reviseCmd.Flags().StringVarP(&reviseOpts.outDir, "out", "o", "revised", "Output directory")
	reviseCmd.Flags().BoolVar(&reviseOpts.copyText, "copy", false, "Copy the revised resume text to the clipboard")

	reviseCmd.MarkFlagRequired("resume")
	reviseCmd.MarkFlagsMutuallyExclusive("job", "job-url")
	reviseCmd.MarkFlagsOneRequired("job", "job-url")

	rootCmd.AddCommand(reviseCmd)
}

func runRevise(cmd *cobra.Command, args []string) error {
	analyzer, err := newAnalyzer()
	if err != nil {
		return fmt.Errorf("failed to create analyzer: %w", err)
	}

	opts := reviseOpts
	opts.maxBytes = cfg.MaxUploadBytes
	return revise(cmd.Context(), opts, analyzer, session.ClipboardFunc(clipboard.WriteAll), cmd.OutOrStdout())
}

// revise runs one analysis through a session and writes every output
func revise(ctx context.Context, opts reviseOptions, analyzer session.Analyzer, cb session.Clipboard, out io.Writer) error {
	upload, err := readResume(opts.resumePath, opts.maxBytes)
	if err != nil {
		return err
	}

	jobDescription, err := readJobDescription(ctx, opts)
	if err != nil {
		return err
	}

	sess := session.New(ingestion.NewParser(), analyzer)
	if err := sess.SelectFile(ctx, upload); err != nil {
		return err
	}
	if err := sess.SetJobDescription(jobDescription); err != nil {
		return err
	}

	result, err := sess.Submit(ctx)
	if err != nil {
		return err
	}

	artifacts, err := sess.Artifacts(ctx)
	if err != nil {
		return err
	}
	paths, err := export.WriteArtifacts(opts.outDir, artifacts)
	if err != nil {
		return err
	}

	printSummary(out, result, paths)

	if opts.copyText {
		if err := sess.CopyText(cb); err != nil {
			return err
		}
		fmt.Fprintln(out, "Revised resume text copied to the clipboard.")
	}
	return nil
}

func readResume(path string, maxBytes int64) (models.UploadedFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return models.UploadedFile{}, fmt.Errorf("failed to open resume: %w", err)
	}
	defer f.Close()

	return ingestion.NewFileHandler(maxBytes).ReadUpload(path, f)
}

func readJobDescription(ctx context.Context, opts reviseOptions) (string, error) {
	if opts.jobURL != "" {
		text, err := ingestion.FetchJobPosting(ctx, nil, opts.jobURL)
		if err != nil {
			return "", fmt.Errorf("failed to ingest from URL: %w", err)
		}
		return text, nil
	}

	data, err := os.ReadFile(opts.jobPath)
	if err != nil {
		return "", fmt.Errorf("failed to read job description: %w", err)
	}
	return string(data), nil
}

func printSummary(out io.Writer, result models.AnalysisResult, paths []string) {
	fmt.Fprintf(out, "Original ATS score: %d (%s)\n", result.OriginalScore, models.ScoreBand(result.OriginalScore))
	fmt.Fprintf(out, "Revised ATS score:  %d (%s)\n", result.RevisedScore, models.ScoreBand(result.RevisedScore))
	fmt.Fprintf(out, "Improvement:        %+d\n", result.Improvement())

	if items := result.FeedbackItems(); len(items) > 0 {
		fmt.Fprintln(out, "\nFeedback:")
		for _, item := range items {
			fmt.Fprintf(out, "  - %s\n", item)
		}
	}

	fmt.Fprintln(out, "\nWritten:")
	fmt.Fprintf(out, "  %s\n", strings.Join(paths, "\n  "))
}
