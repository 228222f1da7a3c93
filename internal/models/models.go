package models

import (
	"strings"
)

// Contact holds the candidate's identifying details. Only Name is required.
type Contact struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	LinkedIn string `json:"linkedin,omitempty"`
	Location string `json:"location,omitempty"`
}

// SkillCategory groups skills under a display category
type SkillCategory struct {
	Category string   `json:"category"`
	Skills   []string `json:"skills"`
}

// Experience is one role in the professional history.
// Dates is carried verbatim from the source resume.
type Experience struct {
	Role         string   `json:"role" validate:"required"`
	Company      string   `json:"company" validate:"required"`
	Location     string   `json:"location,omitempty"`
	Dates        string   `json:"dates"`
	Achievements []string `json:"achievements"`
}

// Education is one degree entry
type Education struct {
	Degree         string `json:"degree" validate:"required"`
	Institution    string `json:"institution" validate:"required"`
	Location       string `json:"location,omitempty"`
	GraduationDate string `json:"graduationDate,omitempty"`
}

// StructuredResume is the normalized, section-based resume used by every renderer
type StructuredResume struct {
	Contact    Contact         `json:"contact"`
	Summary    string          `json:"summary"`
	Skills     []SkillCategory `json:"skills" validate:"dive"`
	Experience []Experience    `json:"experience" validate:"dive"`
	Education  []Education     `json:"education" validate:"dive"`
}

// AnalysisResult is the decoded model response
type AnalysisResult struct {
	OriginalScore int              `json:"originalAtsScore"` // 0-100
	RevisedScore  int              `json:"revisedAtsScore"`  // 0-100
	Feedback      string           `json:"feedback" validate:"required"`
	RevisedResume StructuredResume `json:"revisedResume"`
}

// UploadedFile is a user-selected resume file held in memory
type UploadedFile struct {
	Name string
	Ext  string // lower-case, without the leading dot
	Data []byte
}

// ContactFields returns the non-empty contact fields in display order:
// location, phone, email, linkedin.
func (c Contact) ContactFields() []string {
	fields := make([]string, 0, 4)
	for _, f := range []string{c.Location, c.Phone, c.Email, c.LinkedIn} {
		if trimmed := strings.TrimSpace(f); trimmed != "" {
			fields = append(fields, trimmed)
		}
	}
	return fields
}

// ContactLine joins the non-empty contact fields with " | "
func (c Contact) ContactLine() string {
	return strings.Join(c.ContactFields(), " | ")
}

// JoinNonEmpty joins the trimmed non-empty parts with sep
func JoinNonEmpty(sep string, parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			kept = append(kept, trimmed)
		}
	}
	return strings.Join(kept, sep)
}

// HasSkills reports whether any category lists at least one skill
func (r StructuredResume) HasSkills() bool {
	for _, cat := range r.Skills {
		if len(cat.Skills) > 0 || strings.TrimSpace(cat.Category) != "" {
			return true
		}
	}
	return false
}

// FeedbackItems returns the bullet items of the feedback text with their
// markers removed. Feedback without any bullet lines yields its non-empty lines.
func (a AnalysisResult) FeedbackItems() []string {
	var bullets, plain []string
	for _, line := range strings.Split(a.Feedback, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, "*") || strings.HasPrefix(trimmed, "-") {
			item := strings.TrimSpace(strings.TrimLeft(trimmed, "*-"))
			if item != "" {
				bullets = append(bullets, item)
			}
			continue
		}
		plain = append(plain, trimmed)
	}
	if len(bullets) > 0 {
		return bullets
	}
	return plain
}

// Improvement is the score delta between the revised and original resume
func (a AnalysisResult) Improvement() int {
	return a.RevisedScore - a.OriginalScore
}

// Score bands used when presenting a score
const (
	BandPoor = "poor"
	BandFair = "fair"
	BandGood = "good"
)

// ScoreBand classifies a 0-100 score
func ScoreBand(score int) string {
	switch {
	case score < 50:
		return BandPoor
	case score < 75:
		return BandFair
	default:
		return BandGood
	}
}
