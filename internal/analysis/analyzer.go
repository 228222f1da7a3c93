// Package analysis turns a resume and a job description into a scored,
// revised resume using a language model.
package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/xeipuuv/gojsonschema"

	"github.com/fmuoria/resume-reviser/internal/apperr"
	"github.com/fmuoria/resume-reviser/internal/llm"
	"github.com/fmuoria/resume-reviser/internal/models"
)

// User-facing messages
const (
	msgIncompleteInput = "Please provide both your resume and the job description."
	msgInvalidFormat   = "Failed to parse the AI's response. The format was invalid."
	msgAnalysisFailed  = "Failed to get analysis from the AI. The model may have returned an invalid response."
	msgRateLimited     = "The AI service is receiving too many requests. Please wait a minute and try again."
)

// ClientFactory opens a model client for one analysis. Credentials are
// resolved here, so a missing credential surfaces on submit.
type ClientFactory func(ctx context.Context) (llm.Client, error)

// Analyzer requests a revision from the model and checks the response
type Analyzer struct {
	newClient ClientFactory
	schema    *gojsonschema.Schema
	validate  *validator.Validate
}

// NewAnalyzer creates an analyzer that opens clients through factory
func NewAnalyzer(factory ClientFactory) (*Analyzer, error) {
	raw, err := ResponseSchema.JSONSchema()
	if err != nil {
		return nil, fmt.Errorf("failed to render response schema: %w", err)
	}

	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to compile response schema: %w", err)
	}

	return &Analyzer{
		newClient: factory,
		schema:    schema,
		validate:  validator.New(),
	}, nil
}

// wireResult mirrors the response before scores are normalized
type wireResult struct {
	OriginalScore float64                 `json:"originalAtsScore"`
	RevisedScore  float64                 `json:"revisedAtsScore"`
	Feedback      string                  `json:"feedback"`
	RevisedResume models.StructuredResume `json:"revisedResume"`
}

// Analyze scores the resume against the job description and returns the
// revised resume. Exactly one model request is made; nothing is retried.
func (a *Analyzer) Analyze(ctx context.Context, resumeText, jobDescription string) (models.AnalysisResult, error) {
	if strings.TrimSpace(resumeText) == "" || strings.TrimSpace(jobDescription) == "" {
		return models.AnalysisResult{}, apperr.New(apperr.IncompleteUserInput, msgIncompleteInput)
	}

	client, err := a.newClient(ctx)
	if err != nil {
		if apperr.KindOf(err) != apperr.Internal {
			return models.AnalysisResult{}, err
		}
		return models.AnalysisResult{}, apperr.Wrap(apperr.AnalysisFailed, msgAnalysisFailed, err)
	}
	defer client.Close()

	slog.InfoContext(ctx, "requesting resume analysis",
		"resume_chars", len(resumeText),
		"job_description_chars", len(jobDescription),
	)

	response, err := client.GenerateJSON(ctx, BuildPrompt(resumeText, jobDescription), ResponseSchema)
	if err != nil {
		slog.ErrorContext(ctx, "model request failed", "error", err)
		if isRateLimitError(err) {
			return models.AnalysisResult{}, apperr.Wrap(apperr.AnalysisFailed, msgRateLimited, err)
		}
		return models.AnalysisResult{}, apperr.Wrap(apperr.AnalysisFailed, msgAnalysisFailed, err)
	}

	result, err := a.decode(response)
	if err != nil {
		slog.ErrorContext(ctx, "model response rejected", "error", err)
		return models.AnalysisResult{}, err
	}

	slog.InfoContext(ctx, "resume analysis complete",
		"original_score", result.OriginalScore,
		"revised_score", result.RevisedScore,
		"experience_entries", len(result.RevisedResume.Experience),
	)
	return result, nil
}

// decode parses, validates and normalizes a model response
func (a *Analyzer) decode(response string) (models.AnalysisResult, error) {
	doc := llm.CleanJSONBlock(response)
	if !json.Valid([]byte(doc)) {
		return models.AnalysisResult{}, apperr.Wrap(apperr.MalformedModelResponse, msgInvalidFormat,
			fmt.Errorf("response is not valid JSON"))
	}

	check, err := a.schema.Validate(gojsonschema.NewStringLoader(doc))
	if err != nil {
		return models.AnalysisResult{}, apperr.Wrap(apperr.MalformedModelResponse, msgInvalidFormat, err)
	}
	if !check.Valid() {
		return models.AnalysisResult{}, apperr.Wrap(apperr.MalformedModelResponse, msgAnalysisFailed,
			schemaError(check.Errors()))
	}

	var wire wireResult
	if err := json.Unmarshal([]byte(doc), &wire); err != nil {
		return models.AnalysisResult{}, apperr.Wrap(apperr.MalformedModelResponse, msgInvalidFormat, err)
	}

	result := models.AnalysisResult{
		OriginalScore: normalizeScore(wire.OriginalScore),
		RevisedScore:  normalizeScore(wire.RevisedScore),
		Feedback:      strings.TrimSpace(wire.Feedback),
		RevisedResume: normalizeResume(wire.RevisedResume),
	}

	if err := a.validate.Struct(result); err != nil {
		return models.AnalysisResult{}, apperr.Wrap(apperr.MalformedModelResponse, msgAnalysisFailed,
			fmt.Errorf("response failed validation: %w", err))
	}

	return result, nil
}

func schemaError(errs []gojsonschema.ResultError) error {
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		field := e.Field()
		if field == "" {
			field = "(root)"
		}
		msgs = append(msgs, fmt.Sprintf("%s: %s", field, e.Description()))
	}
	return fmt.Errorf("response does not match schema: %s", strings.Join(msgs, "; "))
}

// normalizeScore rounds to the nearest integer and clamps to 0-100
func normalizeScore(score float64) int {
	if math.IsNaN(score) {
		return 0
	}
	return int(math.Max(0, math.Min(100, math.Round(score))))
}

// normalizeResume returns a copy with surrounding whitespace trimmed and
// blank list items dropped
func normalizeResume(r models.StructuredResume) models.StructuredResume {
	out := models.StructuredResume{
		Contact: models.Contact{
			Name:     strings.TrimSpace(r.Contact.Name),
			Email:    strings.TrimSpace(r.Contact.Email),
			Phone:    strings.TrimSpace(r.Contact.Phone),
			LinkedIn: strings.TrimSpace(r.Contact.LinkedIn),
			Location: strings.TrimSpace(r.Contact.Location),
		},
		Summary: strings.TrimSpace(r.Summary),
	}

	for _, cat := range r.Skills {
		skills := trimAll(cat.Skills)
		category := strings.TrimSpace(cat.Category)
		if category == "" && len(skills) == 0 {
			continue
		}
		out.Skills = append(out.Skills, models.SkillCategory{Category: category, Skills: skills})
	}

	for _, exp := range r.Experience {
		out.Experience = append(out.Experience, models.Experience{
			Role:         strings.TrimSpace(exp.Role),
			Company:      strings.TrimSpace(exp.Company),
			Location:     strings.TrimSpace(exp.Location),
			Dates:        strings.TrimSpace(exp.Dates),
			Achievements: trimAll(exp.Achievements),
		})
	}

	for _, edu := range r.Education {
		out.Education = append(out.Education, models.Education{
			Degree:         strings.TrimSpace(edu.Degree),
			Institution:    strings.TrimSpace(edu.Institution),
			Location:       strings.TrimSpace(edu.Location),
			GraduationDate: strings.TrimSpace(edu.GraduationDate),
		})
	}

	return out
}

func trimAll(items []string) []string {
	var out []string
	for _, item := range items {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// isRateLimitError checks if an error is due to provider rate limiting
func isRateLimitError(err error) bool {
	if err == nil {
		return false
	}

	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "resourceexhausted") ||
		strings.Contains(errStr, "resource exhausted") ||
		strings.Contains(errStr, "429") ||
		strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "quota")
}
