package ingestion

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fmuoria/resume-reviser/internal/apperr"
)

func TestNewFileHandler(t *testing.T) {
	assert.Equal(t, DefaultMaxUploadBytes, NewFileHandler(0).MaxBytes())
	assert.Equal(t, int64(512), NewFileHandler(512).MaxBytes())
}

func TestReadUpload(t *testing.T) {
	fh := NewFileHandler(1024)

	file, err := fh.ReadUpload("uploads/../My Resume.PDF", strings.NewReader("%PDF-1.4 body"))
	require.NoError(t, err)

	assert.Equal(t, "My Resume.PDF", file.Name)
	assert.Equal(t, "pdf", file.Ext)
	assert.Equal(t, []byte("%PDF-1.4 body"), file.Data)
}

func TestReadUpload_TooLarge(t *testing.T) {
	fh := NewFileHandler(8)

	_, err := fh.ReadUpload("resume.pdf", strings.NewReader("0123456789"))
	require.Error(t, err)
	assert.Equal(t, apperr.UnsupportedFileType, apperr.KindOf(err))

	file, err := fh.ReadUpload("resume.pdf", strings.NewReader("01234567"))
	require.NoError(t, err)
	assert.Len(t, file.Data, 8)
}

func TestReadUpload_NoName(t *testing.T) {
	_, err := NewFileHandler(0).ReadUpload("  ", strings.NewReader("x"))
	assert.Equal(t, apperr.UnsupportedFileType, apperr.KindOf(err))
}

func TestIsAcceptedName(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"resume.pdf", true},
		{"resume.DOCX", true},
		{"resume.doc", true},
		{"resume.txt", false},
		{"resume", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsAcceptedName(tt.name))
		})
	}
}
