// Package apperr defines the user-facing error kinds raised at the boundary
// of a user action (upload, submit, copy, download).
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for presentation
type Kind string

const (
	UnsupportedFileType     Kind = "unsupported_file_type"
	LegacyFormatUnsupported Kind = "legacy_format_unsupported"
	DocumentUnreadable      Kind = "document_unreadable"
	MissingCredential       Kind = "missing_credential"
	MalformedModelResponse  Kind = "malformed_model_response"
	AnalysisFailed          Kind = "analysis_failed"
	IncompleteUserInput     Kind = "incomplete_user_input"
	ClipboardWriteFailure   Kind = "clipboard_write_failure"
	OperationInProgress     Kind = "operation_in_progress"
	NotFound                Kind = "not_found"
	Internal                Kind = "internal"
)

// Error is an error with a kind and a message safe to show to the user
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// New returns an Error without an underlying cause
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap returns an Error that wraps cause
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error of the same kind, so errors.Is(err, apperr.New(kind, "")) works
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the kind of err, or Internal when err carries none
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// HasKind reports whether err is an *Error of the given kind
func HasKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// UserMessage returns the message to show for err
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "An unknown error occurred."
}

// HTTPStatus maps a kind to the status code used by the HTTP surface
func HTTPStatus(kind Kind) int {
	switch kind {
	case UnsupportedFileType, LegacyFormatUnsupported:
		return http.StatusUnsupportedMediaType
	case DocumentUnreadable, IncompleteUserInput, MalformedModelResponse:
		return http.StatusUnprocessableEntity
	case OperationInProgress:
		return http.StatusConflict
	case MissingCredential:
		return http.StatusServiceUnavailable
	case AnalysisFailed:
		return http.StatusBadGateway
	case NotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
