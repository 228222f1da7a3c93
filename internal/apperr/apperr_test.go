package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	cause := errors.New("zip: not a valid zip file")
	err := fmt.Errorf("parse resume.docx: %w", Wrap(UnsupportedFileType, "Unsupported file type.", cause))

	assert.Equal(t, UnsupportedFileType, KindOf(err))
	assert.True(t, HasKind(err, UnsupportedFileType))
	assert.False(t, HasKind(err, LegacyFormatUnsupported))
	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, New(UnsupportedFileType, ""))
	assert.Equal(t, Internal, KindOf(errors.New("plain")))
	assert.False(t, HasKind(nil, Internal))
}

func TestUserMessage(t *testing.T) {
	err := Wrap(AnalysisFailed, "Failed to get analysis from the AI.", errors.New("rpc error"))

	assert.Equal(t, "Failed to get analysis from the AI.", UserMessage(err))
	assert.Equal(t, "Failed to get analysis from the AI.: rpc error", err.Error())
	assert.Equal(t, "An unknown error occurred.", UserMessage(errors.New("boom")))
	assert.Equal(t, "", UserMessage(nil))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{UnsupportedFileType, http.StatusUnsupportedMediaType},
		{LegacyFormatUnsupported, http.StatusUnsupportedMediaType},
		{IncompleteUserInput, http.StatusUnprocessableEntity},
		{MalformedModelResponse, http.StatusUnprocessableEntity},
		{OperationInProgress, http.StatusConflict},
		{MissingCredential, http.StatusServiceUnavailable},
		{AnalysisFailed, http.StatusBadGateway},
		{NotFound, http.StatusNotFound},
		{Internal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.kind))
		})
	}
}
