package ingestion

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/fmuoria/resume-reviser/internal/apperr"
	"github.com/fmuoria/resume-reviser/internal/models"
)

// DefaultMaxUploadBytes bounds an uploaded resume when no limit is configured
const DefaultMaxUploadBytes int64 = 10 << 20

// FileHandler reads uploaded resume files into memory. Nothing is written to disk.
type FileHandler struct {
	maxBytes int64
}

// NewFileHandler creates a new file handler with the given size limit
func NewFileHandler(maxBytes int64) *FileHandler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	return &FileHandler{
		maxBytes: maxBytes,
	}
}

// MaxBytes returns the configured upload limit
func (fh *FileHandler) MaxBytes() int64 {
	return fh.maxBytes
}

// ReadUpload reads an uploaded file, enforcing the size limit
func (fh *FileHandler) ReadUpload(filename string, content io.Reader) (models.UploadedFile, error) {
	name := filepath.Base(strings.TrimSpace(filename))
	if name == "." || name == string(filepath.Separator) || name == "" {
		return models.UploadedFile{}, apperr.New(apperr.UnsupportedFileType, "The uploaded file has no name.")
	}

	data, err := io.ReadAll(io.LimitReader(content, fh.maxBytes+1))
	if err != nil {
		return models.UploadedFile{}, fmt.Errorf("failed to read uploaded file: %w", err)
	}
	if int64(len(data)) > fh.maxBytes {
		return models.UploadedFile{}, apperr.New(apperr.UnsupportedFileType,
			fmt.Sprintf("File too large. The limit is %d MB.", fh.maxBytes>>20))
	}

	return models.UploadedFile{
		Name: name,
		Ext:  Extension(name),
		Data: data,
	}, nil
}

// IsAcceptedName reports whether a file picker should offer name
func IsAcceptedName(name string) bool {
	ext := "." + Extension(name)
	for _, accepted := range AcceptedExtensions {
		if ext == accepted {
			return true
		}
	}
	return false
}
