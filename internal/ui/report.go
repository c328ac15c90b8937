package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
	"gopkg.in/yaml.v3"

	"github.com/uzzysan/Klauzule-zakazane/internal/models"
)

// OutputFormat selects how results are printed
type OutputFormat string

const (
	FormatTable OutputFormat = "table"
	FormatJSON  OutputFormat = "json"
	FormatYAML  OutputFormat = "yaml"
)

// ParseOutputFormat validates a --output value
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatTable, FormatJSON, FormatYAML:
		return f, nil
	case "":
		return FormatTable, nil
	default:
		return "", fmt.Errorf("unknown output format %q (expected table, json or yaml)", s)
	}
}

// IsTerminal reports whether w is an interactive terminal
func IsTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Report prints analysis data in the chosen format
type Report struct {
	out          io.Writer
	format       OutputFormat
	colorEnabled bool
}

// NewReport creates a report writer; colour is used only for tables on a terminal
func NewReport(out io.Writer, format OutputFormat) *Report {
	return &Report{
		out:          out,
		format:       format,
		colorEnabled: format == FormatTable && IsTerminal(out),
	}
}

// WriteAnalysis prints a full analysis with its flagged clauses
func (r *Report) WriteAnalysis(result *models.AnalysisResult) error {
	if r.format != FormatTable {
		return r.encode(result)
	}

	summary := renderKeyValues([][2]string{
		{"Analysis", result.ID},
		{"Document", result.DocumentID},
		{"Status", result.Status},
		{"Mode", result.Mode},
		{"Language", result.Language},
		{"Clauses found", fmt.Sprintf("%d", result.TotalClausesFound)},
		{"Risk", fmt.Sprintf("%s / %s / %s",
			r.colorize(fmt.Sprintf("%d high", result.HighRiskCount), riskColor(models.RiskHigh)...),
			r.colorize(fmt.Sprintf("%d medium", result.MediumRiskCount), riskColor(models.RiskMedium)...),
			r.colorize(fmt.Sprintf("%d low", result.LowRiskCount), riskColor(models.RiskLow)...))},
		{"Risk score", optionalInt(result.RiskScore)},
		{"Duration", optionalSeconds(result.DurationSeconds)},
	})
	if _, err := fmt.Fprintln(r.out, summary); err != nil {
		return err
	}

	if result.Summary != nil && strings.TrimSpace(*result.Summary) != "" {
		if _, err := fmt.Fprintf(r.out, "\n%s\n", *result.Summary); err != nil {
			return err
		}
	}
	if result.ErrorMessage != nil && *result.ErrorMessage != "" {
		if _, err := fmt.Fprintf(r.out, "\n%s\n", r.colorize("Error: "+*result.ErrorMessage, color.FgRed)); err != nil {
			return err
		}
	}

	if len(result.FlaggedClauses) == 0 {
		_, err := fmt.Fprintln(r.out, "\nNo abusive clauses found.")
		return err
	}
	_, err := fmt.Fprintf(r.out, "\n%s\n", r.clauseTable(result.FlaggedClauses))
	return err
}

// WriteClauses prints a list of flagged clauses
func (r *Report) WriteClauses(clauses []models.FlaggedClause) error {
	if r.format != FormatTable {
		if clauses == nil {
			clauses = []models.FlaggedClause{}
		}
		return r.encode(clauses)
	}
	if len(clauses) == 0 {
		_, err := fmt.Fprintln(r.out, "No flagged clauses match the filter.")
		return err
	}
	_, err := fmt.Fprintln(r.out, r.clauseTable(clauses))
	return err
}

// WriteJob prints a job snapshot
func (r *Report) WriteJob(job *models.JobHandle) error {
	if r.format != FormatTable {
		return r.encode(job)
	}
	rows := [][2]string{
		{"Job", job.ID},
		{"Status", r.colorize(string(job.Status), statusColor(job.Status)...)},
		{"Stage", models.StageDescription(job.Stage())},
	}
	if id := job.AnalysisID(); id != "" {
		rows = append(rows, [2]string{"Analysis", id})
	}
	if msg := job.ErrorMessage(); msg != "" {
		rows = append(rows, [2]string{"Error", msg})
	}
	_, err := fmt.Fprintln(r.out, renderKeyValues(rows))
	return err
}

// WriteDocumentAnalysis prints a document with its latest analysis summary
func (r *Report) WriteDocumentAnalysis(doc *models.DocumentAnalysis) error {
	if r.format != FormatTable {
		return r.encode(doc)
	}
	rows := [][2]string{
		{"Document", doc.DocumentID},
		{"File", doc.FileName},
		{"Status", doc.Status},
		{"Language", doc.Language},
		{"Pages", optionalInt(doc.Pages)},
	}
	if a := doc.LatestAnalysis; a != nil {
		rows = append(rows,
			[2]string{"Latest analysis", a.ID},
			[2]string{"Analysis status", a.Status},
			[2]string{"Clauses found", fmt.Sprintf("%d", a.TotalClausesFound)},
			[2]string{"High risk", r.colorize(fmt.Sprintf("%d", a.HighRiskCount), riskColor(models.RiskHigh)...)},
		)
	} else {
		rows = append(rows, [2]string{"Latest analysis", "none"})
	}
	_, err := fmt.Fprintln(r.out, renderKeyValues(rows))
	return err
}

func (r *Report) encode(v any) error {
	switch r.format {
	case FormatYAML:
		enc := yaml.NewEncoder(r.out)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(r.out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to encode json: %w", err)
		}
		return nil
	}
}

func (r *Report) clauseTable(clauses []models.FlaggedClause) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"#", "Risk", "Confidence", "Match", "Clause"})

	for i, clause := range clauses {
		tw.AppendRow(table.Row{
			i + 1,
			r.colorize(strings.ToUpper(string(clause.RiskLevel)), riskColor(clause.RiskLevel)...),
			fmt.Sprintf("%.0f%%", clause.Confidence*100),
			clause.MatchType,
			truncate(clause.MatchedText, 70),
		})
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
		{Number: 5, WidthMax: 70},
	})
	return tw.Render()
}

func (r *Report) colorize(s string, attributes ...color.Attribute) string {
	if !r.colorEnabled || len(attributes) == 0 {
		return s
	}
	c := color.New(attributes...)
	c.EnableColor()
	return c.Sprint(s)
}

func renderKeyValues(rows [][2]string) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	for _, row := range rows {
		tw.AppendRow(table.Row{row[0], row[1]})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft},
	})
	return tw.Render()
}

func riskColor(level models.RiskLevel) []color.Attribute {
	switch level {
	case models.RiskHigh:
		return []color.Attribute{color.FgRed, color.Bold}
	case models.RiskMedium:
		return []color.Attribute{color.FgYellow}
	case models.RiskLow:
		return []color.Attribute{color.FgGreen}
	}
	return nil
}

func statusColor(status models.JobStatus) []color.Attribute {
	switch status {
	case models.JobStatusCompleted:
		return []color.Attribute{color.FgGreen}
	case models.JobStatusFailed:
		return []color.Attribute{color.FgRed}
	case models.JobStatusProcessing:
		return []color.Attribute{color.FgCyan}
	}
	return nil
}

func optionalInt(v *int) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *v)
}

func optionalSeconds(v *int) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%ds", *v)
}

func truncate(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
