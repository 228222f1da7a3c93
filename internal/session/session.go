// Package session holds the state of one resume revision: the selected
// file, the job description, the in-flight operation and its result.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/fmuoria/resume-reviser/internal/apperr"
	"github.com/fmuoria/resume-reviser/internal/export"
	"github.com/fmuoria/resume-reviser/internal/models"
	"github.com/fmuoria/resume-reviser/internal/render"
)

// ErrSuperseded is returned when an operation finished after a reset or a
// newer operation. Its outcome was discarded.
var ErrSuperseded = errors.New("operation superseded")

// Parser extracts resume text from an uploaded file
type Parser interface {
	Parse(ext string, data []byte) (string, error)
}

// Analyzer produces an analysis from resume text and a job description
type Analyzer interface {
	Analyze(ctx context.Context, resumeText, jobDescription string) (models.AnalysisResult, error)
}

// Clipboard receives copied text
type Clipboard interface {
	WriteAll(text string) error
}

// ClipboardFunc adapts a function to Clipboard
type ClipboardFunc func(text string) error

// WriteAll implements Clipboard
func (f ClipboardFunc) WriteAll(text string) error {
	return f(text)
}

// ChangeCallback is called after every state change
type ChangeCallback func(Snapshot)

// Snapshot is a consistent copy of the session state
type Snapshot struct {
	State            State                  `json:"state"`
	RecoveryState    State                  `json:"recoveryState,omitempty"`
	FileName         string                 `json:"fileName,omitempty"`
	JobDescription   string                 `json:"jobDescription"`
	ResumeTextLength int                    `json:"resumeTextLength"`
	CanSubmit        bool                   `json:"canSubmit"`
	ErrorKind        apperr.Kind            `json:"errorKind,omitempty"`
	ErrorMessage     string                 `json:"errorMessage,omitempty"`
	Result           *models.AnalysisResult `json:"result,omitempty"`
	UpdatedAt        time.Time              `json:"updatedAt"`
}

// Session is safe for use from multiple goroutines. Parsing and analysis
// run outside the lock; only the session mutates its own state.
type Session struct {
	parser   Parser
	analyzer Analyzer

	mu             sync.RWMutex
	state          State
	recovery       State
	generation     uint64
	fileName       string
	resumeText     string
	jobDescription string
	result         *models.AnalysisResult
	err            error
	updatedAt      time.Time
	onChange       ChangeCallback
}

// New creates an idle session
func New(parser Parser, analyzer Analyzer) *Session {
	return &Session{
		parser:    parser,
		analyzer:  analyzer,
		state:     StateIdle,
		updatedAt: time.Now(),
	}
}

// SetChangeCallback sets the function called after each state change
func (s *Session) SetChangeCallback(cb ChangeCallback) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = cb
}

// notify calls the change callback if set
func (s *Session) notify() {
	s.mu.RLock()
	cb := s.onChange
	s.mu.RUnlock()

	if cb != nil {
		cb(s.Snapshot())
	}
}

// apply moves to the state reached on ev. Callers hold the lock.
func (s *Session) apply(ev Event) error {
	to, ok := next(s.state, ev)
	if !ok {
		if s.state.busy() {
			return apperr.New(apperr.OperationInProgress, "Please wait for the current operation to finish.")
		}
		return apperr.Wrap(apperr.Internal, "This action is not available right now.",
			fmt.Errorf("no transition from %s on %s", s.state, ev))
	}

	slog.Debug("session transition", "from", s.state, "event", ev, "to", to)
	if to != StateError {
		s.recovery = ""
		s.err = nil
	}
	s.state = to
	s.updatedAt = time.Now()
	return nil
}

// fail records err and enters the error state, returning later to recovery
func (s *Session) fail(ev Event, err error, recovery State) {
	if applyErr := s.apply(ev); applyErr != nil {
		slog.Error("session failure transition refused", "event", ev, "error", applyErr)
	}
	s.err = err
	s.recovery = recovery
}

// SelectFile replaces the current file and extracts its text. A file that
// cannot be parsed is cleared.
func (s *Session) SelectFile(ctx context.Context, file models.UploadedFile) error {
	s.mu.Lock()
	if err := s.apply(EventSelectFile); err != nil {
		s.mu.Unlock()
		return err
	}
	s.generation++
	ticket := s.generation
	s.fileName = file.Name
	s.resumeText = ""
	s.result = nil
	s.mu.Unlock()
	s.notify()

	slog.InfoContext(ctx, "parsing resume file", "file", file.Name, "bytes", len(file.Data))
	text, parseErr := s.parser.Parse(file.Ext, file.Data)

	s.mu.Lock()
	if ticket != s.generation {
		s.mu.Unlock()
		slog.InfoContext(ctx, "discarding stale parse result", "file", file.Name)
		return ErrSuperseded
	}
	if parseErr != nil {
		s.fileName = ""
		s.fail(EventParseFailed, parseErr, StateIdle)
		s.mu.Unlock()
		slog.WarnContext(ctx, "failed to parse resume file", "file", file.Name, "error", parseErr)
		s.notify()
		return parseErr
	}
	s.resumeText = text
	err := s.apply(EventParsed)
	s.mu.Unlock()
	s.notify()

	slog.InfoContext(ctx, "resume file parsed", "file", file.Name, "chars", len(text))
	return err
}

// RemoveFile clears the selected file and its text
func (s *Session) RemoveFile() error {
	s.mu.Lock()
	if err := s.apply(EventRemoveFile); err != nil {
		s.mu.Unlock()
		return err
	}
	s.generation++
	s.fileName = ""
	s.resumeText = ""
	s.result = nil
	s.mu.Unlock()
	s.notify()
	return nil
}

// SetJobDescription replaces the job description. A finished result is
// dropped because it no longer matches the inputs.
func (s *Session) SetJobDescription(text string) error {
	s.mu.Lock()
	if err := s.apply(EventEditJobDescription); err != nil {
		s.mu.Unlock()
		return err
	}
	s.jobDescription = text
	if s.state != StateResultReady {
		s.result = nil
	}
	s.mu.Unlock()
	s.notify()
	return nil
}

func (s *Session) canSubmitLocked() bool {
	if s.state.busy() {
		return false
	}
	if _, ok := next(s.state, EventSubmit); !ok {
		return false
	}
	return strings.TrimSpace(s.resumeText) != "" && strings.TrimSpace(s.jobDescription) != ""
}

// CanSubmit reports whether Submit would start an analysis
func (s *Session) CanSubmit() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.canSubmitLocked()
}

// Submit runs one analysis of the current resume text against the job
// description. It blocks until the analysis completes.
func (s *Session) Submit(ctx context.Context) (models.AnalysisResult, error) {
	s.mu.Lock()
	if s.state.busy() {
		s.mu.Unlock()
		return models.AnalysisResult{}, apperr.New(apperr.OperationInProgress, "Please wait for the current operation to finish.")
	}
	if !s.canSubmitLocked() {
		s.mu.Unlock()
		return models.AnalysisResult{}, apperr.New(apperr.IncompleteUserInput, "Please provide both your resume and the job description.")
	}
	if err := s.apply(EventSubmit); err != nil {
		s.mu.Unlock()
		return models.AnalysisResult{}, err
	}
	s.generation++
	ticket := s.generation
	resumeText, jobDescription := s.resumeText, s.jobDescription
	s.result = nil
	s.mu.Unlock()
	s.notify()

	result, err := s.analyzer.Analyze(ctx, resumeText, jobDescription)

	s.mu.Lock()
	if ticket != s.generation {
		s.mu.Unlock()
		slog.InfoContext(ctx, "discarding stale analysis result")
		return models.AnalysisResult{}, ErrSuperseded
	}
	if err != nil {
		s.fail(EventAnalysisFailed, err, StateFileReady)
		s.mu.Unlock()
		s.notify()
		return models.AnalysisResult{}, err
	}
	s.result = &result
	applyErr := s.apply(EventAnalyzed)
	s.mu.Unlock()
	s.notify()

	return result, applyErr
}

// Reset discards everything and returns to idle. An operation in flight
// keeps running but its outcome is discarded.
func (s *Session) Reset() {
	s.mu.Lock()
	if err := s.apply(EventReset); err != nil {
		slog.Error("reset refused", "error", err)
	}
	s.generation++
	s.fileName = ""
	s.resumeText = ""
	s.jobDescription = ""
	s.result = nil
	s.mu.Unlock()
	s.notify()
}

// Snapshot returns a copy of the current state
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		State:            s.state,
		RecoveryState:    s.recovery,
		FileName:         s.fileName,
		JobDescription:   s.jobDescription,
		ResumeTextLength: len(s.resumeText),
		CanSubmit:        s.canSubmitLocked(),
		UpdatedAt:        s.updatedAt,
	}
	if s.err != nil {
		snap.ErrorKind = apperr.KindOf(s.err)
		snap.ErrorMessage = apperr.UserMessage(s.err)
	}
	if s.result != nil {
		resultCopy := *s.result
		snap.Result = &resultCopy
	}
	return snap
}

// ResumeText returns the extracted resume text
func (s *Session) ResumeText() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.resumeText
}

// Result returns the analysis result when one is ready
func (s *Session) Result() (models.AnalysisResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.result == nil {
		return models.AnalysisResult{}, apperr.New(apperr.NotFound, "No revised resume is available yet.")
	}
	return *s.result, nil
}

// RevisedText returns the plain-text revised resume
func (s *Session) RevisedText() (string, error) {
	result, err := s.Result()
	if err != nil {
		return "", err
	}
	return render.PlainText(result.RevisedResume), nil
}

// CopyText writes the plain-text revised resume to cb
func (s *Session) CopyText(cb Clipboard) error {
	text, err := s.RevisedText()
	if err != nil {
		return err
	}
	if err := cb.WriteAll(text); err != nil {
		slog.Warn("failed to copy text to clipboard", "error", err)
		return apperr.Wrap(apperr.ClipboardWriteFailure, "Copy failed. Please try again.", err)
	}
	return nil
}

// PDF renders the revised resume as a PDF
func (s *Session) PDF() ([]byte, error) {
	result, err := s.Result()
	if err != nil {
		return nil, err
	}
	return render.PDF(result.RevisedResume)
}

// DOCX renders the revised resume as a DOCX
func (s *Session) DOCX() ([]byte, error) {
	result, err := s.Result()
	if err != nil {
		return nil, err
	}
	return render.DOCX(result.RevisedResume)
}

// Workbook renders the analysis workbook
func (s *Session) Workbook() ([]byte, error) {
	result, err := s.Result()
	if err != nil {
		return nil, err
	}
	return export.AnalysisWorkbook(result)
}

// Artifacts renders every output of the current result
func (s *Session) Artifacts(ctx context.Context) (*export.Artifacts, error) {
	result, err := s.Result()
	if err != nil {
		return nil, err
	}
	return export.RenderAll(ctx, result)
}
