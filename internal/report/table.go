package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/Sir-Sloth-The-Lazy/VisionLint/internal/lint"
)

const (
	tableHeaderSeverityConstant = "SEVERITY"
	tableHeaderLinterConstant   = "LINTER"
	tableHeaderAssetConstant    = "ASSET"
	tableHeaderIssueConstant    = "ISSUE"
	tableHeaderMessageConstant  = "MESSAGE"

	cleanDatasetMessageConstant   = "No issues found! Dataset is clean."
	issuesFoundMessageTemplate    = "Found %d issues."
	summaryLineTemplateConstant   = "Assets scanned: %d, errored: %d, state: %s, verdict: %s\n"
	severityLineTemplateConstant  = "Errors: %d, warnings: %d, info: %d\n"
	groupMembersSeparatorConstant = "\n"
	errorSeverityColorConstant    = "196"
	warningSeverityColorConstant  = "214"
	infoSeverityColorConstant     = "39"
	headerColorConstant           = "252"
	cellHorizontalPaddingConstant = 1
)

// HeadlineMessage returns the one-line outcome printed after a run.
func HeadlineMessage(run *lint.LintRun) string {
	findingCount := len(run.Findings())
	if findingCount == 0 {
		return cleanDatasetMessageConstant
	}
	return fmt.Sprintf(issuesFoundMessageTemplate, findingCount)
}

func writeTable(writer io.Writer, run *lint.LintRun, options RenderOptions) error {
	findings := run.Record().Findings
	if _, writeError := fmt.Fprintln(writer, HeadlineMessage(run)); writeError != nil {
		return writeError
	}

	if len(findings) > 0 {
		rows := make([][]string, 0, len(findings))
		severities := make([]lint.Severity, 0, len(findings))
		for _, record := range findings {
			asset := record.Asset
			if len(record.RelatedAssets) > 1 {
				asset = strings.Join(record.RelatedAssets, groupMembersSeparatorConstant)
			}
			rows = append(rows, []string{record.Severity.String(), record.Linter, asset, record.IssueType, record.Message})
			severities = append(severities, record.Severity)
		}

		findingTable := table.New().
			Headers(tableHeaderSeverityConstant, tableHeaderLinterConstant, tableHeaderAssetConstant, tableHeaderIssueConstant, tableHeaderMessageConstant).
			Rows(rows...)
		if options.Styled {
			findingTable = findingTable.
				Border(lipgloss.RoundedBorder()).
				StyleFunc(styledCell(severities))
		} else {
			findingTable = findingTable.
				Border(lipgloss.ASCIIBorder()).
				StyleFunc(plainCell)
		}
		if _, writeError := fmt.Fprintln(writer, findingTable.Render()); writeError != nil {
			return writeError
		}
	}

	summary := Summarize(run)
	severityCounts := BySeverity(run)
	if _, writeError := fmt.Fprintf(writer, severityLineTemplateConstant,
		severityCounts[lint.SeverityError], severityCounts[lint.SeverityWarning], severityCounts[lint.SeverityInfo]); writeError != nil {
		return writeError
	}
	_, writeError := fmt.Fprintf(writer, summaryLineTemplateConstant, summary.TotalAssets, summary.ErroredAssets, summary.State, summary.Verdict)
	return writeError
}

func plainCell(_ int, _ int) lipgloss.Style {
	return lipgloss.NewStyle().Padding(0, cellHorizontalPaddingConstant)
}

func styledCell(severities []lint.Severity) table.StyleFunc {
	return func(row int, column int) lipgloss.Style {
		cellStyle := lipgloss.NewStyle().Padding(0, cellHorizontalPaddingConstant)
		if row == table.HeaderRow {
			return cellStyle.Bold(true).Foreground(lipgloss.Color(headerColorConstant))
		}
		if column != 0 || row < 0 || row >= len(severities) {
			return cellStyle
		}
		switch severities[row] {
		case lint.SeverityError:
			return cellStyle.Foreground(lipgloss.Color(errorSeverityColorConstant))
		case lint.SeverityWarning:
			return cellStyle.Foreground(lipgloss.Color(warningSeverityColorConstant))
		default:
			return cellStyle.Foreground(lipgloss.Color(infoSeverityColorConstant))
		}
	}
}
