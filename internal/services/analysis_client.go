package services

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/uzzysan/Klauzule-zakazane/internal/lib"
	"github.com/uzzysan/Klauzule-zakazane/internal/models"
)

// AnalysisClient reads finished analyses
type AnalysisClient struct {
	http   *HTTPClient
	logger *lib.Logger
}

// NewAnalysisClient creates an AnalysisClient using the given client
func NewAnalysisClient(httpClient *HTTPClient, logger *lib.Logger) *AnalysisClient {
	if logger == nil {
		logger = lib.DefaultLogger
	}
	return &AnalysisClient{
		http:   httpClient,
		logger: logger,
	}
}

// GetAnalysis fetches the full analysis result
func (c *AnalysisClient) GetAnalysis(ctx context.Context, analysisID string) (*models.AnalysisResult, error) {
	if strings.TrimSpace(analysisID) == "" {
		return nil, lib.ErrMissingReference("fetch", "result reference missing")
	}

	var result models.AnalysisResult
	if err := c.http.GetJSON(ctx, "fetch", "/analysis/"+url.PathEscape(analysisID), nil, &result); err != nil {
		return nil, err
	}

	c.logger.Info("Analysis fetched",
		"analysis_id", analysisID,
		"clauses", result.TotalClausesFound,
		"high_risk", result.HighRiskCount)

	return &result, nil
}

// ListClauses fetches the flagged clauses of an analysis, narrowed by filter
func (c *AnalysisClient) ListClauses(ctx context.Context, analysisID string, filter models.ClauseFilter) ([]models.FlaggedClause, error) {
	if strings.TrimSpace(analysisID) == "" {
		return nil, lib.ErrValidation("analysis id", "Analysis id is required")
	}
	if filter.RiskLevel != "" && !models.IsValidRiskLevel(filter.RiskLevel) {
		return nil, lib.ErrValidation("risk level", "Risk level must be high, medium, or low")
	}
	if filter.MinConfidence < 0 || filter.MinConfidence > 1 {
		return nil, lib.ErrValidation("minimum confidence", "Minimum confidence must be between 0 and 1")
	}

	query := url.Values{}
	if filter.RiskLevel != "" {
		query.Set("risk_level", string(filter.RiskLevel))
	}
	if filter.MinConfidence > 0 {
		query.Set("min_confidence", strconv.FormatFloat(filter.MinConfidence, 'f', -1, 64))
	}

	var clauses []models.FlaggedClause
	path := "/analysis/" + url.PathEscape(analysisID) + "/clauses"
	if err := c.http.GetJSON(ctx, "clauses", path, query, &clauses); err != nil {
		return nil, err
	}
	return clauses, nil
}

// GetDocumentAnalysis fetches a document together with its latest analysis summary
func (c *AnalysisClient) GetDocumentAnalysis(ctx context.Context, documentID string) (*models.DocumentAnalysis, error) {
	if strings.TrimSpace(documentID) == "" {
		return nil, lib.ErrValidation("document id", "Document id is required")
	}

	var doc models.DocumentAnalysis
	if err := c.http.GetJSON(ctx, "document_analysis", "/analysis/document/"+url.PathEscape(documentID), nil, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}
