package models

import (
	"strings"
)

// JobStatus defines the execution state of a background analysis job
type JobStatus string

const (
	JobStatusQueued     JobStatus = "queued"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// IsValidJobStatus checks if the job status is recognized
func IsValidJobStatus(s JobStatus) bool {
	switch s {
	case JobStatusQueued, JobStatusProcessing, JobStatusCompleted, JobStatusFailed:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further transition can occur
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// JobMeta carries progress hints reported while a job runs
type JobMeta struct {
	Stage      string `json:"stage,omitempty"`
	Error      string `json:"error,omitempty"`
	DocumentID string `json:"document_id,omitempty"`
}

// JobHandle is one snapshot of a background job as returned by GET /jobs/{id}.
// A new handle is decoded on every poll tick; handles are never merged.
type JobHandle struct {
	ID     string         `json:"job_id"`
	Status JobStatus      `json:"status"`
	Result map[string]any `json:"result"`
	Error  *string        `json:"error"`
	Meta   *JobMeta       `json:"meta"`
}

// Stage returns the server's stage hint, or "" when none was reported
func (h JobHandle) Stage() string {
	if h.Meta == nil {
		return ""
	}
	return h.Meta.Stage
}

// ErrorMessage returns the job's error text, or "" when none was reported
func (h JobHandle) ErrorMessage() string {
	if h.Error != nil && strings.TrimSpace(*h.Error) != "" {
		return *h.Error
	}
	if h.Meta != nil {
		return h.Meta.Error
	}
	return ""
}

// AnalysisID extracts the analysis identifier from a completed job's result.
// Lookup order: result.analysis_identifier, result.analysis.analysis_id, result.analysis_id.
func (h JobHandle) AnalysisID() string {
	if h.Result == nil {
		return ""
	}
	if id := stringField(h.Result, "analysis_identifier"); id != "" {
		return id
	}
	if nested, ok := h.Result["analysis"].(map[string]any); ok {
		if id := stringField(nested, "analysis_id"); id != "" {
			return id
		}
	}
	return stringField(h.Result, "analysis_id")
}

func stringField(m map[string]any, key string) string {
	v, ok := m[key].(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(v)
}

// StageDescription returns a human-readable description of a job stage hint
func StageDescription(stage string) string {
	switch strings.ToLower(strings.TrimSpace(stage)) {
	case "queued":
		return "Waiting in queue"
	case "downloading":
		return "Downloading file"
	case "parsing":
		return "Processing document"
	case "ocr":
		return "Recognising text"
	case "analyzing":
		return "Analysing clauses"
	default:
		return "Processing"
	}
}
