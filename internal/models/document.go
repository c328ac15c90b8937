package models

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

// Language is the language of the submitted document
type Language string

const (
	LanguagePolish  Language = "pl"
	LanguageEnglish Language = "en"
)

// AnalysisMode selects the backend analysis engine
type AnalysisMode string

const (
	ModeOffline AnalysisMode = "offline"
	ModeAI      AnalysisMode = "ai"
)

// Media types accepted by the analysis service
const (
	MediaTypePDF  = "application/pdf"
	MediaTypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MediaTypeJPEG = "image/jpeg"
	MediaTypePNG  = "image/png"
)

// IsValidLanguage checks if the language is supported by the service
func IsValidLanguage(l Language) bool {
	return l == LanguagePolish || l == LanguageEnglish
}

// IsValidAnalysisMode checks if the analysis mode is recognized
func IsValidAnalysisMode(m AnalysisMode) bool {
	return m == ModeOffline || m == ModeAI
}

// SubmissionRequest is one document submitted for analysis.
// It is a value type; the content opener is read-only and may be called once per upload.
type SubmissionRequest struct {
	FileName    string
	ContentType string
	Size        int64
	Language    Language
	Mode        AnalysisMode

	open func() (io.ReadCloser, error)
}

// NewSubmissionFromFile builds a SubmissionRequest for a file on disk.
// The content type is sniffed from the file's bytes, not taken from its extension.
func NewSubmissionFromFile(path string, language Language, mode AnalysisMode) (SubmissionRequest, error) {
	info, err := os.Stat(path)
	if err != nil {
		return SubmissionRequest{}, fmt.Errorf("failed to stat document: %w", err)
	}
	if info.IsDir() {
		return SubmissionRequest{}, fmt.Errorf("%s is a directory, not a document", path)
	}

	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return SubmissionRequest{}, fmt.Errorf("failed to detect document type: %w", err)
	}

	return SubmissionRequest{
		FileName:    filepath.Base(path),
		ContentType: normalizeMediaType(mt.String()),
		Size:        info.Size(),
		Language:    language,
		Mode:        mode,
		open: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
	}, nil
}

// NewSubmission builds a SubmissionRequest from in-memory content
func NewSubmission(fileName string, contentType string, data []byte, language Language, mode AnalysisMode) SubmissionRequest {
	content := append([]byte(nil), data...)
	return SubmissionRequest{
		FileName:    fileName,
		ContentType: contentType,
		Size:        int64(len(content)),
		Language:    language,
		Mode:        mode,
		open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(content)), nil
		},
	}
}

// Open returns a fresh reader over the document content
func (r SubmissionRequest) Open() (io.ReadCloser, error) {
	if r.open == nil {
		return nil, fmt.Errorf("submission %q has no content", r.FileName)
	}
	return r.open()
}

// normalizeMediaType strips parameters such as "; charset=binary"
func normalizeMediaType(mediaType string) string {
	if i := strings.Index(mediaType, ";"); i >= 0 {
		mediaType = mediaType[:i]
	}
	return strings.TrimSpace(strings.ToLower(mediaType))
}

// TaskReference is the server-side document created by an upload
type TaskReference struct {
	DocumentID string    `json:"document_id"`
	FileName   string    `json:"filename"`
	SizeBytes  int64     `json:"size_bytes"`
	Pages      *int      `json:"pages,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// DocumentResponse is the document resource returned by GET /documents/{id}
type DocumentResponse struct {
	DocumentID     string    `json:"document_id"`
	FileName       string    `json:"filename"`
	SizeBytes      int64     `json:"size_bytes"`
	Pages          *int      `json:"pages"`
	Language       string    `json:"language"`
	Status         string    `json:"status"`
	OCRRequired    bool      `json:"ocr_required"`
	OCRCompleted   bool      `json:"ocr_completed"`
	CreatedAt      time.Time `json:"created_at"`
	TaskIdentifier *string   `json:"task_identifier"`
	CeleryTaskID   *string   `json:"celery_task_id"`
}

// TaskID returns the background job identifier, or "" while the job is not registered yet
func (d DocumentResponse) TaskID() string {
	if d.TaskIdentifier != nil && strings.TrimSpace(*d.TaskIdentifier) != "" {
		return strings.TrimSpace(*d.TaskIdentifier)
	}
	if d.CeleryTaskID != nil && strings.TrimSpace(*d.CeleryTaskID) != "" {
		return strings.TrimSpace(*d.CeleryTaskID)
	}
	return ""
}
