package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fmuoria/resume-reviser/internal/analysis"
	"github.com/fmuoria/resume-reviser/internal/apperr"
	"github.com/fmuoria/resume-reviser/internal/ingestion"
	"github.com/fmuoria/resume-reviser/internal/llm"
	"github.com/fmuoria/resume-reviser/internal/models"
)

type fakeParser struct {
	text string
	err  error
}

func (p *fakeParser) Parse(ext string, data []byte) (string, error) {
	return p.text, p.err
}

// blockingParser holds Parse until release is closed
type blockingParser struct {
	text    string
	started chan struct{}
	release chan struct{}
}

func (p *blockingParser) Parse(ext string, data []byte) (string, error) {
	close(p.started)
	<-p.release
	return p.text, nil
}

type fakeAnalyzer struct {
	mu      sync.Mutex
	calls   int
	result  models.AnalysisResult
	err     error
	started chan struct{}
	release chan struct{}
}

func (a *fakeAnalyzer) Analyze(ctx context.Context, resumeText, jobDescription string) (models.AnalysisResult, error) {
	a.mu.Lock()
	a.calls++
	a.mu.Unlock()

	if a.started != nil {
		close(a.started)
	}
	if a.release != nil {
		<-a.release
	}
	return a.result, a.err
}

func (a *fakeAnalyzer) Calls() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls
}

type stubClient struct {
	response string
}

func (c *stubClient) GenerateJSON(ctx context.Context, prompt string, schema *llm.Schema) (string, error) {
	return c.response, nil
}

func (c *stubClient) Close() error { return nil }

func sampleResult() models.AnalysisResult {
	return models.AnalysisResult{
		OriginalScore: 40,
		RevisedScore:  85,
		Feedback:      "* Added keywords",
		RevisedResume: models.StructuredResume{
			Contact: models.Contact{Name: "Jane Doe", Email: "jane@example.com"},
			Summary: "Backend engineer.",
		},
	}
}

func pdfUpload() models.UploadedFile {
	return models.UploadedFile{Name: "resume.pdf", Ext: "pdf", Data: []byte("%PDF-1.4")}
}

// readySession returns a session with a parsed file and a job description
func readySession(t *testing.T, analyzer Analyzer) *Session {
	t.Helper()
	s := New(&fakeParser{text: "Jane Doe\nEngineer"}, analyzer)
	require.NoError(t, s.SelectFile(context.Background(), pdfUpload()))
	require.NoError(t, s.SetJobDescription("Go engineer with Kubernetes"))
	require.Equal(t, StateFileReady, s.Snapshot().State)
	return s
}

// TestTransitions tests the transition table
func TestTransitions(t *testing.T) {
	tests := []struct {
		from   State
		event  Event
		to     State
		wantOK bool
	}{
		{StateIdle, EventSelectFile, StateParsingFile, true},
		{StateIdle, EventSubmit, "", false},
		{StateParsingFile, EventParsed, StateFileReady, true},
		{StateParsingFile, EventParseFailed, StateError, true},
		{StateParsingFile, EventSubmit, "", false},
		{StateFileReady, EventSubmit, StateAnalyzing, true},
		{StateAnalyzing, EventSelectFile, "", false},
		{StateAnalyzing, EventEditJobDescription, "", false},
		{StateAnalyzing, EventAnalyzed, StateResultReady, true},
		{StateResultReady, EventEditJobDescription, StateFileReady, true},
		{StateError, EventSubmit, StateAnalyzing, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"/"+string(tt.event), func(t *testing.T) {
			to, ok := next(tt.from, tt.event)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.to, to)
		})
	}
}

// TestTransitions_ResetFromEveryState tests that reset always returns to idle
func TestTransitions_ResetFromEveryState(t *testing.T) {
	for from := range transitions {
		to, ok := next(from, EventReset)
		assert.True(t, ok, from)
		assert.Equal(t, StateIdle, to, from)
	}
}

// TestSelectFile_LegacyDoc tests that a .doc upload is rejected and cleared
func TestSelectFile_LegacyDoc(t *testing.T) {
	s := New(ingestion.NewParser(), &fakeAnalyzer{})

	err := s.SelectFile(context.Background(), models.UploadedFile{Name: "resume.doc", Ext: "doc", Data: []byte("legacy")})
	require.Error(t, err)
	assert.True(t, apperr.HasKind(err, apperr.LegacyFormatUnsupported))

	snap := s.Snapshot()
	assert.Equal(t, StateError, snap.State)
	assert.Equal(t, StateIdle, snap.RecoveryState)
	assert.Empty(t, snap.FileName)
	assert.Equal(t, 0, snap.ResumeTextLength)
	assert.Equal(t, apperr.LegacyFormatUnsupported, snap.ErrorKind)
	assert.NotEmpty(t, snap.ErrorMessage)
	assert.False(t, snap.CanSubmit)
}

// TestSelectFile_Success tests the parse path and change notifications
func TestSelectFile_Success(t *testing.T) {
	s := New(&fakeParser{text: "resume text"}, &fakeAnalyzer{})

	var states []State
	s.SetChangeCallback(func(snap Snapshot) {
		states = append(states, snap.State)
	})

	require.NoError(t, s.SelectFile(context.Background(), pdfUpload()))
	assert.Equal(t, []State{StateParsingFile, StateFileReady}, states)
	assert.Equal(t, "resume text", s.ResumeText())
	assert.Equal(t, "resume.pdf", s.Snapshot().FileName)
	assert.False(t, s.CanSubmit())
}

// TestSubmit_EmptyResumeText tests that blank resume text never reaches the analyzer
func TestSubmit_EmptyResumeText(t *testing.T) {
	analyzer := &fakeAnalyzer{result: sampleResult()}
	s := New(&fakeParser{text: "   "}, analyzer)
	require.NoError(t, s.SelectFile(context.Background(), pdfUpload()))
	require.NoError(t, s.SetJobDescription("Go engineer"))

	assert.False(t, s.CanSubmit())

	_, err := s.Submit(context.Background())
	assert.True(t, apperr.HasKind(err, apperr.IncompleteUserInput))
	assert.Equal(t, 0, analyzer.Calls())
	assert.Equal(t, StateFileReady, s.Snapshot().State)
}

// TestSubmit_Success tests a full analysis and the result accessors
func TestSubmit_Success(t *testing.T) {
	analyzer := &fakeAnalyzer{result: sampleResult()}
	s := readySession(t, analyzer)
	require.True(t, s.CanSubmit())

	result, err := s.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 85, result.RevisedScore)
	assert.Equal(t, 1, analyzer.Calls())

	snap := s.Snapshot()
	assert.Equal(t, StateResultReady, snap.State)
	require.NotNil(t, snap.Result)
	assert.Equal(t, "Jane Doe", snap.Result.RevisedResume.Contact.Name)

	text, err := s.RevisedText()
	require.NoError(t, err)
	assert.Contains(t, text, "Jane Doe")

	pdf, err := s.PDF()
	require.NoError(t, err)
	assert.NotEmpty(t, pdf)
}

// TestSubmit_MissingFeedback tests that an incomplete model response surfaces the generic failure
func TestSubmit_MissingFeedback(t *testing.T) {
	response := `{"originalAtsScore": 40, "revisedAtsScore": 80,
		"revisedResume": {"contact": {"name": "Jane"}, "summary": "", "skills": [], "experience": [], "education": []}}`
	analyzer, err := analysis.NewAnalyzer(func(ctx context.Context) (llm.Client, error) {
		return &stubClient{response: response}, nil
	})
	require.NoError(t, err)

	s := readySession(t, analyzer)
	_, err = s.Submit(context.Background())
	require.Error(t, err)
	assert.True(t, apperr.HasKind(err, apperr.MalformedModelResponse))

	snap := s.Snapshot()
	assert.Equal(t, StateError, snap.State)
	assert.Equal(t, StateFileReady, snap.RecoveryState)
	assert.Equal(t, "Failed to get analysis from the AI. The model may have returned an invalid response.", snap.ErrorMessage)
	assert.Nil(t, snap.Result)

	// the inputs survive, so the user can retry
	assert.True(t, snap.CanSubmit)
}

// TestSubmit_ResetDiscardsLateResult tests that a reset while analyzing drops the result
func TestSubmit_ResetDiscardsLateResult(t *testing.T) {
	analyzer := &fakeAnalyzer{
		result:  sampleResult(),
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	s := readySession(t, analyzer)

	done := make(chan error, 1)
	go func() {
		_, err := s.Submit(context.Background())
		done <- err
	}()

	select {
	case <-analyzer.started:
	case <-time.After(5 * time.Second):
		t.Fatal("analysis did not start")
	}

	assert.Equal(t, StateAnalyzing, s.Snapshot().State)
	_, err := s.Submit(context.Background())
	assert.True(t, apperr.HasKind(err, apperr.OperationInProgress))
	assert.True(t, apperr.HasKind(s.SetJobDescription("changed"), apperr.OperationInProgress))

	s.Reset()
	close(analyzer.release)

	select {
	case err := <-done:
		assert.True(t, errors.Is(err, ErrSuperseded))
	case <-time.After(5 * time.Second):
		t.Fatal("analysis did not finish")
	}

	snap := s.Snapshot()
	assert.Equal(t, StateIdle, snap.State)
	assert.Nil(t, snap.Result)
	assert.Empty(t, snap.JobDescription)
	_, err = s.Result()
	assert.True(t, apperr.HasKind(err, apperr.NotFound))
}

// TestSelectFile_ResetDiscardsLateParse tests that a parse finishing after a reset leaves the session idle
func TestSelectFile_ResetDiscardsLateParse(t *testing.T) {
	parser := &blockingParser{
		text:    "Jane Doe\nEngineer",
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	s := New(parser, &fakeAnalyzer{result: sampleResult()})

	done := make(chan error, 1)
	go func() {
		done <- s.SelectFile(context.Background(), pdfUpload())
	}()

	select {
	case <-parser.started:
	case <-time.After(5 * time.Second):
		t.Fatal("parse did not start")
	}

	snap := s.Snapshot()
	assert.Equal(t, StateParsingFile, snap.State)
	assert.Equal(t, "resume.pdf", snap.FileName)
	assert.True(t, apperr.HasKind(s.RemoveFile(), apperr.OperationInProgress))

	s.Reset()
	close(parser.release)

	select {
	case err := <-done:
		assert.True(t, errors.Is(err, ErrSuperseded))
	case <-time.After(5 * time.Second):
		t.Fatal("parse did not finish")
	}

	snap = s.Snapshot()
	assert.Equal(t, StateIdle, snap.State)
	assert.Empty(t, snap.FileName)
	assert.Zero(t, snap.ResumeTextLength)
	assert.Empty(t, s.ResumeText())
	assert.False(t, s.CanSubmit())
}

// TestSetJobDescription_DropsResult tests that editing after a result invalidates it
func TestSetJobDescription_DropsResult(t *testing.T) {
	s := readySession(t, &fakeAnalyzer{result: sampleResult()})
	_, err := s.Submit(context.Background())
	require.NoError(t, err)

	require.NoError(t, s.SetJobDescription("a different role"))
	snap := s.Snapshot()
	assert.Equal(t, StateFileReady, snap.State)
	assert.Nil(t, snap.Result)
	assert.True(t, snap.CanSubmit)
}

// TestRemoveFile tests that removing the file disables submit
func TestRemoveFile(t *testing.T) {
	s := readySession(t, &fakeAnalyzer{})
	require.NoError(t, s.RemoveFile())

	snap := s.Snapshot()
	assert.Equal(t, StateIdle, snap.State)
	assert.Empty(t, snap.FileName)
	assert.Equal(t, "Go engineer with Kubernetes", snap.JobDescription)
	assert.False(t, snap.CanSubmit)
}

// TestCopyText tests clipboard success and failure
func TestCopyText(t *testing.T) {
	s := readySession(t, &fakeAnalyzer{result: sampleResult()})

	err := s.CopyText(ClipboardFunc(func(string) error { return nil }))
	assert.True(t, apperr.HasKind(err, apperr.NotFound))

	_, err = s.Submit(context.Background())
	require.NoError(t, err)

	var copied string
	require.NoError(t, s.CopyText(ClipboardFunc(func(text string) error {
		copied = text
		return nil
	})))
	assert.Contains(t, copied, "Jane Doe")

	err = s.CopyText(ClipboardFunc(func(string) error { return errors.New("no clipboard") }))
	assert.True(t, apperr.HasKind(err, apperr.ClipboardWriteFailure))
	assert.Equal(t, StateResultReady, s.Snapshot().State)
}
