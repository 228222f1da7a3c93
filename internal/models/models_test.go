package models

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestContactLine tests that empty fields are dropped and no stray separators remain
func TestContactLine(t *testing.T) {
	tests := []struct {
		name    string
		contact Contact
		want    string
	}{
		{
			name:    "All fields",
			contact: Contact{Name: "Ada", Location: "London", Phone: "555", Email: "ada@example.com", LinkedIn: "linkedin.com/in/ada"},
			want:    "London | 555 | ada@example.com | linkedin.com/in/ada",
		},
		{
			name:    "Leading field missing",
			contact: Contact{Name: "Ada", Phone: "555", Email: "ada@example.com"},
			want:    "555 | ada@example.com",
		},
		{
			name:    "Trailing field missing",
			contact: Contact{Name: "Ada", Location: "London", Phone: "555"},
			want:    "London | 555",
		},
		{
			name:    "Whitespace-only fields",
			contact: Contact{Name: "Ada", Location: "  ", Email: "ada@example.com", LinkedIn: "\t"},
			want:    "ada@example.com",
		},
		{
			name:    "No fields",
			contact: Contact{Name: "Ada"},
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.contact.ContactLine()
			assert.Equal(t, tt.want, got)
			assert.False(t, strings.HasPrefix(got, " |") || strings.HasSuffix(got, "| "), "stray separator in %q", got)
		})
	}
}

// TestAnalysisResultJSONFieldNames tests the wire names used by the model response
func TestAnalysisResultJSONFieldNames(t *testing.T) {
	raw := `{
		"originalAtsScore": 41,
		"revisedAtsScore": 88,
		"feedback": "* Added Kubernetes",
		"revisedResume": {
			"contact": {"name": "Ada", "linkedin": "in/ada"},
			"summary": "Engineer",
			"skills": [{"category": "Cloud", "skills": ["GCP"]}],
			"experience": [{"role": "SRE", "company": "Acme", "dates": "2019 - 2023", "achievements": ["Cut latency 30%"]}],
			"education": [{"degree": "BSc", "institution": "MIT", "graduationDate": "2018"}]
		}
	}`

	var result AnalysisResult
	require.NoError(t, json.Unmarshal([]byte(raw), &result))

	assert.Equal(t, 41, result.OriginalScore)
	assert.Equal(t, 88, result.RevisedScore)
	assert.Equal(t, "in/ada", result.RevisedResume.Contact.LinkedIn)
	assert.Equal(t, "2018", result.RevisedResume.Education[0].GraduationDate)
	assert.Equal(t, 47, result.Improvement())
}

// TestFeedbackItems tests bullet extraction from markdown feedback
func TestFeedbackItems(t *testing.T) {
	tests := []struct {
		name     string
		feedback string
		want     []string
	}{
		{
			name:     "Star bullets",
			feedback: "* Infused 'Azure DevOps'\n* Added metrics\n",
			want:     []string{"Infused 'Azure DevOps'", "Added metrics"},
		},
		{
			name:     "Mixed with prose",
			feedback: "Key changes:\n- Rephrased bullets\n  * Reordered skills",
			want:     []string{"Rephrased bullets", "Reordered skills"},
		},
		{
			name:     "No bullets",
			feedback: "Rewrote the summary.\n\nAdded keywords.",
			want:     []string{"Rewrote the summary.", "Added keywords."},
		},
		{
			name:     "Empty",
			feedback: "",
			want:     nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := AnalysisResult{Feedback: tt.feedback}
			assert.Equal(t, tt.want, result.FeedbackItems())
		})
	}
}

// TestScoreBand tests the band thresholds
func TestScoreBand(t *testing.T) {
	assert.Equal(t, BandPoor, ScoreBand(0))
	assert.Equal(t, BandPoor, ScoreBand(49))
	assert.Equal(t, BandFair, ScoreBand(50))
	assert.Equal(t, BandFair, ScoreBand(74))
	assert.Equal(t, BandGood, ScoreBand(75))
	assert.Equal(t, BandGood, ScoreBand(100))
}

// TestJoinNonEmpty tests separator handling around blank parts
func TestJoinNonEmpty(t *testing.T) {
	assert.Equal(t, "Acme | 2020", JoinNonEmpty(" | ", "Acme", "", "2020"))
	assert.Equal(t, "", JoinNonEmpty(" | ", "", " "))
	assert.Equal(t, "Acme", JoinNonEmpty(" | ", " Acme "))
}
