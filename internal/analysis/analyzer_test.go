package analysis

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fmuoria/resume-reviser/internal/apperr"
	"github.com/fmuoria/resume-reviser/internal/llm"
)

const validResponse = `{
  "originalAtsScore": 41.6,
  "revisedAtsScore": 88,
  "feedback": "* Added Kubernetes keywords\n* Quantified achievements",
  "revisedResume": {
    "contact": {"name": " Jane Doe ", "email": "jane@example.com", "location": "Nairobi"},
    "summary": "Backend engineer focused on Go services.",
    "skills": [{"category": "Languages", "skills": ["Go", " SQL ", ""]}],
    "experience": [
      {"role": "Senior Engineer", "company": "Acme", "dates": "2019 - 2023",
       "achievements": ["Cut latency by 30%", "Led migration to Kubernetes"]}
    ],
    "education": [{"degree": "BSc Computer Science", "institution": "University of Nairobi"}]
  }
}`

// fakeClient records calls and returns a canned response
type fakeClient struct {
	response string
	err      error
	calls    int
	prompt   string
	closed   bool
}

func (f *fakeClient) GenerateJSON(ctx context.Context, prompt string, schema *llm.Schema) (string, error) {
	f.calls++
	f.prompt = prompt
	return f.response, f.err
}

func (f *fakeClient) Close() error {
	f.closed = true
	return nil
}

func newTestAnalyzer(t *testing.T, client *fakeClient) *Analyzer {
	t.Helper()
	a, err := NewAnalyzer(func(ctx context.Context) (llm.Client, error) {
		return client, nil
	})
	require.NoError(t, err)
	return a
}

// TestAnalyze_Success tests decoding and normalization of a valid response
func TestAnalyze_Success(t *testing.T) {
	client := &fakeClient{response: "```json\n" + validResponse + "\n```"}
	a := newTestAnalyzer(t, client)

	result, err := a.Analyze(context.Background(), "Jane Doe resume", "Go engineer wanted")
	require.NoError(t, err)

	assert.Equal(t, 1, client.calls)
	assert.True(t, client.closed)
	assert.Contains(t, client.prompt, "Jane Doe resume")
	assert.Contains(t, client.prompt, "Go engineer wanted")

	assert.Equal(t, 42, result.OriginalScore)
	assert.Equal(t, 88, result.RevisedScore)
	assert.Equal(t, "Jane Doe", result.RevisedResume.Contact.Name)
	assert.Equal(t, []string{"Go", "SQL"}, result.RevisedResume.Skills[0].Skills)
	assert.Equal(t, []string{"Cut latency by 30%", "Led migration to Kubernetes"}, result.RevisedResume.Experience[0].Achievements)
	assert.Equal(t, []string{"Added Kubernetes keywords", "Quantified achievements"}, result.FeedbackItems())
}

// TestAnalyze_IncompleteInput tests that blank input never reaches the model
func TestAnalyze_IncompleteInput(t *testing.T) {
	tests := []struct {
		name   string
		resume string
		job    string
	}{
		{name: "Empty resume", resume: "", job: "Go engineer"},
		{name: "Whitespace resume", resume: " \n\t", job: "Go engineer"},
		{name: "Empty job description", resume: "Jane Doe", job: "  "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeClient{response: validResponse}
			a := newTestAnalyzer(t, client)

			_, err := a.Analyze(context.Background(), tt.resume, tt.job)
			require.Error(t, err)
			assert.Equal(t, apperr.IncompleteUserInput, apperr.KindOf(err))
			assert.Equal(t, 0, client.calls)
		})
	}
}

// TestAnalyze_MalformedResponses tests rejection of unusable model output
func TestAnalyze_MalformedResponses(t *testing.T) {
	withoutFeedback := strings.Replace(validResponse, `"feedback": "* Added Kubernetes keywords\n* Quantified achievements",`, "", 1)
	blankFeedback := strings.Replace(validResponse, `"* Added Kubernetes keywords\n* Quantified achievements"`, `"   "`, 1)
	stringScore := strings.Replace(validResponse, `"revisedAtsScore": 88`, `"revisedAtsScore": "88"`, 1)
	blankRole := strings.Replace(validResponse, `"role": "Senior Engineer"`, `"role": ""`, 1)

	tests := []struct {
		name     string
		response string
		message  string
	}{
		{name: "Not JSON", response: "Sure! Here is your resume.", message: msgInvalidFormat},
		{name: "Truncated JSON", response: `{"originalAtsScore": 40`, message: msgInvalidFormat},
		{name: "Missing feedback", response: withoutFeedback, message: msgAnalysisFailed},
		{name: "Blank feedback", response: blankFeedback, message: msgAnalysisFailed},
		{name: "Score as string", response: stringScore, message: msgAnalysisFailed},
		{name: "Blank role", response: blankRole, message: msgAnalysisFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestAnalyzer(t, &fakeClient{response: tt.response})

			_, err := a.Analyze(context.Background(), "resume", "job")
			require.Error(t, err)
			assert.Equal(t, apperr.MalformedModelResponse, apperr.KindOf(err))
			assert.Equal(t, tt.message, apperr.UserMessage(err))
		})
	}
}

// TestAnalyze_ProviderErrors tests how client failures are surfaced
func TestAnalyze_ProviderErrors(t *testing.T) {
	t.Run("Rate limited", func(t *testing.T) {
		a := newTestAnalyzer(t, &fakeClient{err: errors.New("rpc error: code = ResourceExhausted")})
		_, err := a.Analyze(context.Background(), "resume", "job")
		assert.Equal(t, apperr.AnalysisFailed, apperr.KindOf(err))
		assert.Equal(t, msgRateLimited, apperr.UserMessage(err))
	})

	t.Run("Other failure", func(t *testing.T) {
		a := newTestAnalyzer(t, &fakeClient{err: errors.New("connection reset")})
		_, err := a.Analyze(context.Background(), "resume", "job")
		assert.Equal(t, apperr.AnalysisFailed, apperr.KindOf(err))
		assert.Equal(t, msgAnalysisFailed, apperr.UserMessage(err))
	})

	t.Run("Missing credential", func(t *testing.T) {
		a, err := NewAnalyzer(func(ctx context.Context) (llm.Client, error) {
			return nil, apperr.New(apperr.MissingCredential, "API key is not configured.")
		})
		require.NoError(t, err)

		_, err = a.Analyze(context.Background(), "resume", "job")
		assert.Equal(t, apperr.MissingCredential, apperr.KindOf(err))
	})
}

// TestNormalizeScore tests rounding and clamping
func TestNormalizeScore(t *testing.T) {
	tests := []struct {
		input float64
		want  int
	}{
		{0, 0},
		{49.5, 50},
		{49.4, 49},
		{-3, 0},
		{100.2, 100},
		{250, 100},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizeScore(tt.input), "normalizeScore(%v)", tt.input)
	}
}

// TestIsRateLimitError tests the rate limit error detection
func TestIsRateLimitError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{name: "Nil error", err: nil, expected: false},
		{name: "ResourceExhausted error", err: errors.New("rpc error: code = ResourceExhausted desc = Resource exhausted"), expected: true},
		{name: "HTTP 429 error", err: errors.New("HTTP 429: Too Many Requests"), expected: true},
		{name: "Rate limit error", err: errors.New("rate limit exceeded"), expected: true},
		{name: "Quota error", err: errors.New("quota exceeded for this project"), expected: true},
		{name: "Other error", err: errors.New("connection timeout"), expected: false},
		{name: "Invalid JSON error", err: errors.New("failed to parse JSON"), expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, isRateLimitError(tt.err))
		})
	}
}

// TestBuildPrompt tests that inputs are embedded verbatim and not re-expanded
func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt("uses {{JOB_DESCRIPTION}} literally", "100% remote")

	assert.Contains(t, prompt, "uses {{JOB_DESCRIPTION}} literally")
	assert.Contains(t, prompt, "100% remote")
	assert.Contains(t, prompt, "over 85%")
}
