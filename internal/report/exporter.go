package report

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Sir-Sloth-The-Lazy/VisionLint/internal/lint"
)

// Format names an output rendering.
type Format string

// Supported formats.
const (
	FormatTable Format = "table"
	FormatCSV   Format = "csv"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

const (
	csvHeaderLinterConstant        = "linter"
	csvHeaderAssetConstant         = "asset"
	csvHeaderRelatedAssetsConstant = "related_assets"
	csvHeaderSeverityConstant      = "severity"
	csvHeaderIssueTypeConstant     = "issue_type"
	csvHeaderMessageConstant       = "message"
	relatedAssetsSeparatorConstant = ";"
	jsonIndentConstant             = "  "
	yamlIndentConstant             = 2

	unsupportedFormatTemplateConstant = "%w: %q (expected table, csv, json, or yaml)"
	writeReportErrorTemplateConstant  = "write %s report: %w"
)

// ErrUnsupportedFormat reports an unknown output format.
var ErrUnsupportedFormat = errors.New("unsupported report format")

// ParseFormat converts textual input into a Format.
func ParseFormat(raw string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(raw))) {
	case FormatTable, "":
		return FormatTable, nil
	case FormatCSV:
		return FormatCSV, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatYAML, "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf(unsupportedFormatTemplateConstant, ErrUnsupportedFormat, raw)
	}
}

// Document is the persisted report layout shared by the JSON and YAML exporters.
type Document struct {
	Summary    Summary        `json:"summary" yaml:"summary"`
	BySeverity map[string]int `json:"by_severity" yaml:"by_severity"`
	Run        lint.RunRecord `json:"run" yaml:"run"`
}

// NewDocument builds the persisted report layout for a run.
func NewDocument(run *lint.LintRun) Document {
	severityCounts := make(map[string]int, len(lint.Severities()))
	for severity, count := range BySeverity(run) {
		severityCounts[severity.String()] = count
	}
	return Document{
		Summary:    Summarize(run),
		BySeverity: severityCounts,
		Run:        run.Record(),
	}
}

// RenderOptions tunes human-oriented output.
type RenderOptions struct {
	// Styled enables colors and rounded borders for terminal output.
	Styled bool
}

// Write renders the run in the requested format.
func Write(writer io.Writer, run *lint.LintRun, format Format, options RenderOptions) error {
	var writeError error
	switch format {
	case FormatTable:
		writeError = writeTable(writer, run, options)
	case FormatCSV:
		writeError = writeCSV(writer, run)
	case FormatJSON:
		writeError = writeJSON(writer, run)
	case FormatYAML:
		writeError = writeYAML(writer, run)
	default:
		return fmt.Errorf(unsupportedFormatTemplateConstant, ErrUnsupportedFormat, string(format))
	}
	if writeError != nil {
		return fmt.Errorf(writeReportErrorTemplateConstant, format, writeError)
	}
	return nil
}

func writeCSV(writer io.Writer, run *lint.LintRun) error {
	csvWriter := csv.NewWriter(writer)
	header := []string{
		csvHeaderLinterConstant,
		csvHeaderAssetConstant,
		csvHeaderRelatedAssetsConstant,
		csvHeaderSeverityConstant,
		csvHeaderIssueTypeConstant,
		csvHeaderMessageConstant,
	}
	if writeError := csvWriter.Write(header); writeError != nil {
		return writeError
	}
	for _, record := range run.Record().Findings {
		row := []string{
			record.Linter,
			record.Asset,
			strings.Join(record.RelatedAssets, relatedAssetsSeparatorConstant),
			record.Severity.String(),
			record.IssueType,
			record.Message,
		}
		if writeError := csvWriter.Write(row); writeError != nil {
			return writeError
		}
	}
	csvWriter.Flush()
	return csvWriter.Error()
}

func writeJSON(writer io.Writer, run *lint.LintRun) error {
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", jsonIndentConstant)
	return encoder.Encode(NewDocument(run))
}

func writeYAML(writer io.Writer, run *lint.LintRun) error {
	encoder := yaml.NewEncoder(writer)
	encoder.SetIndent(yamlIndentConstant)
	if encodeError := encoder.Encode(NewDocument(run)); encodeError != nil {
		return encodeError
	}
	return encoder.Close()
}
