package models

import "time"

// RiskLevel classifies how abusive a flagged clause is
type RiskLevel string

const (
	RiskHigh   RiskLevel = "high"
	RiskMedium RiskLevel = "medium"
	RiskLow    RiskLevel = "low"
)

// IsValidRiskLevel checks if the risk level is recognized
func IsValidRiskLevel(r RiskLevel) bool {
	return r == RiskHigh || r == RiskMedium || r == RiskLow
}

// LegalReference points at the legal basis for a flagged clause
type LegalReference struct {
	ArticleCode  *string `json:"article_code" yaml:"article_code,omitempty"`
	ArticleTitle *string `json:"article_title" yaml:"article_title,omitempty"`
	LawName      *string `json:"law_name" yaml:"law_name,omitempty"`
	Description  *string `json:"description" yaml:"description,omitempty"`
}

// ClauseExplanation explains why a clause was flagged
type ClauseExplanation struct {
	ClauseText      string           `json:"clause_text" yaml:"clause_text"`
	LegalReferences []LegalReference `json:"legal_references" yaml:"legal_references,omitempty"`
	Notes           *string          `json:"notes" yaml:"notes,omitempty"`
	Tags            []string         `json:"tags" yaml:"tags,omitempty"`
}

// FlaggedClause is one matched abusive clause in the analysed document
type FlaggedClause struct {
	ID            string             `json:"id" yaml:"id"`
	ClauseID      *string            `json:"clause_id" yaml:"clause_id,omitempty"`
	MatchedText   string             `json:"matched_text" yaml:"matched_text"`
	StartPosition *int               `json:"start_position" yaml:"start_position,omitempty"`
	EndPosition   *int               `json:"end_position" yaml:"end_position,omitempty"`
	Confidence    float64            `json:"confidence" yaml:"confidence"`
	RiskLevel     RiskLevel          `json:"risk_level" yaml:"risk_level"`
	MatchType     string             `json:"match_type" yaml:"match_type"`
	Explanation   *ClauseExplanation `json:"explanation" yaml:"explanation,omitempty"`
	AIExplanation *string            `json:"ai_explanation" yaml:"ai_explanation,omitempty"`
	CreatedAt     time.Time          `json:"created_at" yaml:"created_at"`
}

// AnalysisSummary is the analysis header without flagged clauses
type AnalysisSummary struct {
	ID                string     `json:"id" yaml:"id"`
	DocumentID        string     `json:"document_id" yaml:"document_id"`
	Mode              string     `json:"mode" yaml:"mode"`
	Language          string     `json:"language" yaml:"language"`
	Status            string     `json:"status" yaml:"status"`
	TotalClausesFound int        `json:"total_clauses_found" yaml:"total_clauses_found"`
	HighRiskCount     int        `json:"high_risk_count" yaml:"high_risk_count"`
	MediumRiskCount   int        `json:"medium_risk_count" yaml:"medium_risk_count"`
	LowRiskCount      int        `json:"low_risk_count" yaml:"low_risk_count"`
	RiskScore         *int       `json:"risk_score" yaml:"risk_score,omitempty"`
	StartedAt         *time.Time `json:"started_at" yaml:"started_at,omitempty"`
	CompletedAt       *time.Time `json:"completed_at" yaml:"completed_at,omitempty"`
	DurationSeconds   *int       `json:"duration_seconds" yaml:"duration_seconds,omitempty"`
	CreatedAt         time.Time  `json:"created_at" yaml:"created_at"`
}

// AnalysisResult is the terminal payload fetched once a job completes
type AnalysisResult struct {
	AnalysisSummary `yaml:",inline"`
	FlaggedClauses  []FlaggedClause `json:"flagged_clauses" yaml:"flagged_clauses"`
	Summary         *string         `json:"summary" yaml:"summary,omitempty"`
	ErrorCode       *string         `json:"error_code" yaml:"error_code,omitempty"`
	ErrorMessage    *string         `json:"error_message" yaml:"error_message,omitempty"`
}

// DocumentAnalysis is the latest analysis for a document, from GET /analysis/document/{id}
type DocumentAnalysis struct {
	DocumentID     string           `json:"document_id" yaml:"document_id"`
	FileName       string           `json:"filename" yaml:"filename"`
	Status         string           `json:"status" yaml:"status"`
	Language       string           `json:"language" yaml:"language"`
	Pages          *int             `json:"pages" yaml:"pages,omitempty"`
	CreatedAt      time.Time        `json:"created_at" yaml:"created_at"`
	LatestAnalysis *AnalysisSummary `json:"latest_analysis" yaml:"latest_analysis,omitempty"`
}

// ClauseFilter narrows the flagged clauses returned for an analysis
type ClauseFilter struct {
	RiskLevel     RiskLevel
	MinConfidence float64
}
