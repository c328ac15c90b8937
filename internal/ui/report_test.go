package ui

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/uzzysan/Klauzule-zakazane/internal/models"
)

func sampleAnalysis() *models.AnalysisResult {
	summary := "Umowa zawiera 1 klauzulę niedozwoloną."
	return &models.AnalysisResult{
		AnalysisSummary: models.AnalysisSummary{
			ID:                "A1",
			DocumentID:        "D1",
			Mode:              "offline",
			Language:          "pl",
			Status:            "completed",
			TotalClausesFound: 1,
			HighRiskCount:     1,
		},
		FlaggedClauses: []models.FlaggedClause{{
			ID:          "C1",
			MatchedText: "Sprzedawca   nie ponosi\nodpowiedzialności",
			Confidence:  0.92,
			RiskLevel:   models.RiskHigh,
			MatchType:   "keyword",
		}},
		Summary: &summary,
	}
}

func TestParseOutputFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    OutputFormat
		wantErr bool
	}{
		{"", FormatTable, false},
		{"table", FormatTable, false},
		{" JSON ", FormatJSON, false},
		{"yaml", FormatYAML, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseOutputFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsTerminal_NonFileWriter(t *testing.T) {
	assert.False(t, IsTerminal(&bytes.Buffer{}))
}

func TestReport_WriteAnalysisTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewReport(&buf, FormatTable).WriteAnalysis(sampleAnalysis()))

	out := buf.String()
	assert.Contains(t, out, "A1")
	assert.Contains(t, out, "1 high / 0 medium / 0 low")
	assert.Contains(t, out, "Umowa zawiera 1 klauzulę niedozwoloną.")
	assert.Contains(t, out, "HIGH")
	assert.Contains(t, out, "92%")
	assert.Contains(t, out, "Sprzedawca nie ponosi odpowiedzialności")
	assert.NotContains(t, out, "\x1b[", "no colour when not writing to a terminal")
}

func TestReport_WriteAnalysisWithoutClauses(t *testing.T) {
	result := sampleAnalysis()
	result.FlaggedClauses = nil

	var buf bytes.Buffer
	require.NoError(t, NewReport(&buf, FormatTable).WriteAnalysis(result))
	assert.Contains(t, buf.String(), "No abusive clauses found.")
}

func TestReport_WriteAnalysisJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewReport(&buf, FormatJSON).WriteAnalysis(sampleAnalysis()))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "A1", decoded["id"])
	assert.Equal(t, "D1", decoded["document_id"])
	assert.Len(t, decoded["flagged_clauses"], 1)
}

func TestReport_WriteAnalysisYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewReport(&buf, FormatYAML).WriteAnalysis(sampleAnalysis()))

	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "A1", decoded["id"])
	assert.Equal(t, 1, decoded["total_clauses_found"])
	assert.Contains(t, buf.String(), "risk_level: high")
}

func TestReport_WriteClauses(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewReport(&buf, FormatTable).WriteClauses(nil))
	assert.Equal(t, "No flagged clauses match the filter.\n", buf.String())

	buf.Reset()
	require.NoError(t, NewReport(&buf, FormatJSON).WriteClauses(nil))
	assert.JSONEq(t, `[]`, buf.String())

	buf.Reset()
	require.NoError(t, NewReport(&buf, FormatTable).WriteClauses(sampleAnalysis().FlaggedClauses))
	assert.Contains(t, buf.String(), "keyword")
}

func TestReport_WriteJob(t *testing.T) {
	failure := "OCR failed"
	job := &models.JobHandle{
		ID:     "T1",
		Status: models.JobStatusFailed,
		Error:  &failure,
		Meta:   &models.JobMeta{Stage: "ocr"},
	}

	var buf bytes.Buffer
	require.NoError(t, NewReport(&buf, FormatTable).WriteJob(job))
	out := buf.String()
	assert.Contains(t, out, "T1")
	assert.Contains(t, out, "failed")
	assert.Contains(t, out, "Recognising text")
	assert.Contains(t, out, "OCR failed")
	assert.NotContains(t, out, "Analysis")
}

func TestReport_WriteDocumentAnalysis(t *testing.T) {
	doc := &models.DocumentAnalysis{DocumentID: "D1", FileName: "umowa.pdf", Status: "completed", Language: "pl"}

	var buf bytes.Buffer
	require.NoError(t, NewReport(&buf, FormatTable).WriteDocumentAnalysis(doc))
	assert.Contains(t, buf.String(), "umowa.pdf")
	assert.Contains(t, buf.String(), "none")

	doc.LatestAnalysis = &sampleAnalysis().AnalysisSummary
	buf.Reset()
	require.NoError(t, NewReport(&buf, FormatTable).WriteDocumentAnalysis(doc))
	assert.Contains(t, buf.String(), "A1")
	assert.NotContains(t, buf.String(), "none")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "a b c", truncate("a  b\n c", 10))
	assert.Equal(t, "abc…", truncate("abcdef", 4))
	assert.Equal(t, "zażó…", truncate("zażółć", 5))
}
