package report_test

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/Sir-Sloth-The-Lazy/VisionLint/internal/lint"
	"github.com/Sir-Sloth-The-Lazy/VisionLint/internal/report"
)

const (
	reportRunIdentifierConstant = "run-report"
	integrityIdentifierConstant = "integrity"
	duplicateIdentifierConstant = "duplicate"
	headlineIssuesConstant      = "Found 2 issues."
	headlineCleanConstant       = "No issues found! Dataset is clean."
)

var reportStartedAt = time.Date(2026, time.March, 4, 10, 0, 0, 0, time.UTC)

func fixtureAsset(identity string) lint.Asset {
	return lint.NewAsset(lint.AssetDescriptor{Identity: identity, Path: identity, Size: 128})
}

// buildDirtyRun records three assets: an empty b.png and a duplicate pair a.png and c.png.
func buildDirtyRun(testInstance *testing.T) *lint.LintRun {
	testInstance.Helper()
	recorder := lint.NewRunRecorder(reportRunIdentifierConstant, reportStartedAt, []string{integrityIdentifierConstant, duplicateIdentifierConstant}, 1)

	require.NoError(testInstance, recorder.CommitAsset(lint.AssetResult{Asset: fixtureAsset("a.png"), LintersRan: []string{integrityIdentifierConstant}}))
	require.NoError(testInstance, recorder.CommitAsset(lint.AssetResult{
		Asset:      fixtureAsset("b.png"),
		LintersRan: []string{integrityIdentifierConstant},
		Findings: []lint.Finding{lint.NewFinding(lint.FindingDescriptor{
			Linter:    integrityIdentifierConstant,
			Asset:     "b.png",
			Severity:  lint.SeverityError,
			IssueType: "empty_file",
			Message:   "file size is 0 bytes",
		})},
	}))
	require.NoError(testInstance, recorder.CommitAsset(lint.AssetResult{Asset: fixtureAsset("c.png"), LintersRan: []string{integrityIdentifierConstant}}))
	require.NoError(testInstance, recorder.CommitCorpus(duplicateIdentifierConstant, []lint.Finding{lint.NewGroupFinding(lint.FindingDescriptor{
		Linter:    duplicateIdentifierConstant,
		Severity:  lint.SeverityWarning,
		IssueType: "duplicate_group",
		Message:   "2 files have identical content: a.png, c.png",
	}, []string{"a.png", "c.png"})}, false))

	return recorder.Freeze(reportStartedAt.Add(time.Second))
}

func buildCleanRun(testInstance *testing.T) *lint.LintRun {
	testInstance.Helper()
	recorder := lint.NewRunRecorder(reportRunIdentifierConstant, reportStartedAt, []string{integrityIdentifierConstant}, 1)
	require.NoError(testInstance, recorder.CommitAsset(lint.AssetResult{Asset: fixtureAsset("a.png"), LintersRan: []string{integrityIdentifierConstant}}))
	return recorder.Freeze(reportStartedAt.Add(time.Second))
}

func TestSummarize(testInstance *testing.T) {
	summary := report.Summarize(buildDirtyRun(testInstance))
	require.Equal(testInstance, report.Summary{
		TotalAssets:   3,
		TotalFindings: 2,
		ErroredAssets: 0,
		State:         lint.RunStateCompleted,
		Verdict:       report.VerdictFail,
	}, summary)

	require.Equal(testInstance, report.VerdictPass, report.Summarize(buildCleanRun(testInstance)).Verdict)
}

func TestVerdictAt(testInstance *testing.T) {
	recorder := lint.NewRunRecorder(reportRunIdentifierConstant, reportStartedAt, []string{duplicateIdentifierConstant}, 1)
	require.NoError(testInstance, recorder.CommitCorpus(duplicateIdentifierConstant, []lint.Finding{lint.NewGroupFinding(lint.FindingDescriptor{
		Linter:    duplicateIdentifierConstant,
		Severity:  lint.SeverityWarning,
		IssueType: "duplicate_group",
	}, []string{"a.png", "b.png"})}, false))
	warningRun := recorder.Freeze(reportStartedAt)

	testCases := []struct {
		threshold       lint.Severity
		expectedVerdict report.Verdict
	}{
		{threshold: lint.SeverityError, expectedVerdict: report.VerdictPass},
		{threshold: lint.SeverityWarning, expectedVerdict: report.VerdictFail},
		{threshold: lint.SeverityInfo, expectedVerdict: report.VerdictFail},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf("%d_%s", testCaseIndex, testCase.threshold), func(subTest *testing.T) {
			require.Equal(subTest, testCase.expectedVerdict, report.VerdictAt(warningRun, testCase.threshold))
		})
	}
	require.Equal(testInstance, report.VerdictPass, report.Summarize(warningRun).Verdict)
}

func TestGroupings(testInstance *testing.T) {
	run := buildDirtyRun(testInstance)

	require.Equal(testInstance, map[lint.Severity]int{
		lint.SeverityInfo:    0,
		lint.SeverityWarning: 1,
		lint.SeverityError:   1,
	}, report.BySeverity(run))

	byLinter := report.ByLinter(run)
	require.Len(testInstance, byLinter[integrityIdentifierConstant], 1)
	require.Len(testInstance, byLinter[duplicateIdentifierConstant], 1)

	byAsset := report.ByAsset(run)
	require.Len(testInstance, byAsset["a.png"], 1)
	require.Len(testInstance, byAsset["b.png"], 1)
	require.Len(testInstance, byAsset["c.png"], 1)
	require.Equal(testInstance, "duplicate_group", byAsset["c.png"][0].IssueType())
}

func TestAggregationsAreIdempotent(testInstance *testing.T) {
	testCases := []struct {
		name      string
		aggregate func(*lint.LintRun) any
	}{
		{name: "summarize", aggregate: func(run *lint.LintRun) any { return report.Summarize(run) }},
		{name: "by_severity", aggregate: func(run *lint.LintRun) any { return report.BySeverity(run) }},
		{name: "by_linter", aggregate: func(run *lint.LintRun) any { return report.ByLinter(run) }},
		{name: "by_asset", aggregate: func(run *lint.LintRun) any { return report.ByAsset(run) }},
		{name: "linter_order", aggregate: func(run *lint.LintRun) any { return report.LinterOrder(run) }},
		{name: "verdict", aggregate: func(run *lint.LintRun) any { return report.VerdictAt(run, lint.SeverityWarning) }},
	}

	run := buildDirtyRun(testInstance)
	findingsBefore := run.Findings()

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf("%d_%s", testCaseIndex, testCase.name), func(subTest *testing.T) {
			first := testCase.aggregate(run)
			second := testCase.aggregate(run)
			require.Equal(subTest, first, second)
			require.Equal(subTest, findingsBefore, run.Findings())
		})
	}
}

func TestLinterOrderAppendsSyntheticIdentifiers(testInstance *testing.T) {
	recorder := lint.NewRunRecorder(reportRunIdentifierConstant, reportStartedAt, []string{integrityIdentifierConstant}, 1)
	require.NoError(testInstance, recorder.CommitAsset(lint.AssetResult{
		Asset:   fixtureAsset("locked.png"),
		Errored: true,
		Findings: []lint.Finding{lint.NewFinding(lint.FindingDescriptor{
			Linter:    lint.IOLinterIdentifier,
			Asset:     "locked.png",
			Severity:  lint.SeverityError,
			IssueType: lint.IssueTypeUnreadableAsset,
		})},
	}))
	run := recorder.Freeze(reportStartedAt)

	require.Equal(testInstance, []string{integrityIdentifierConstant, lint.IOLinterIdentifier}, report.LinterOrder(run))
	require.Equal(testInstance, 1, report.Summarize(run).ErroredAssets)
}

func TestParseFormat(testInstance *testing.T) {
	testCases := []struct {
		input          string
		expectedFormat report.Format
		expectError    bool
	}{
		{input: "", expectedFormat: report.FormatTable},
		{input: "TABLE", expectedFormat: report.FormatTable},
		{input: "csv", expectedFormat: report.FormatCSV},
		{input: " json ", expectedFormat: report.FormatJSON},
		{input: "yml", expectedFormat: report.FormatYAML},
		{input: "xml", expectError: true},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf("%d_%s", testCaseIndex, testCase.input), func(subTest *testing.T) {
			format, parseError := report.ParseFormat(testCase.input)
			if testCase.expectError {
				require.ErrorIs(subTest, parseError, report.ErrUnsupportedFormat)
				return
			}
			require.NoError(subTest, parseError)
			require.Equal(subTest, testCase.expectedFormat, format)
		})
	}
}

func TestWriteCSV(testInstance *testing.T) {
	var buffer bytes.Buffer
	require.NoError(testInstance, report.Write(&buffer, buildDirtyRun(testInstance), report.FormatCSV, report.RenderOptions{}))

	rows, readError := csv.NewReader(&buffer).ReadAll()
	require.NoError(testInstance, readError)
	require.Equal(testInstance, [][]string{
		{"linter", "asset", "related_assets", "severity", "issue_type", "message"},
		{"integrity", "b.png", "", "error", "empty_file", "file size is 0 bytes"},
		{"duplicate", "", "a.png;c.png", "warning", "duplicate_group", "2 files have identical content: a.png, c.png"},
	}, rows)
}

func TestWriteJSON(testInstance *testing.T) {
	var buffer bytes.Buffer
	require.NoError(testInstance, report.Write(&buffer, buildDirtyRun(testInstance), report.FormatJSON, report.RenderOptions{}))

	var document report.Document
	require.NoError(testInstance, json.Unmarshal(buffer.Bytes(), &document))
	require.Equal(testInstance, report.VerdictFail, document.Summary.Verdict)
	require.Equal(testInstance, map[string]int{"info": 0, "warning": 1, "error": 1}, document.BySeverity)
	require.Equal(testInstance, reportRunIdentifierConstant, document.Run.RunID)
	require.Len(testInstance, document.Run.Findings, 2)
	require.Equal(testInstance, []string{"a.png", "c.png"}, document.Run.Findings[1].RelatedAssets)
	require.Len(testInstance, document.Run.Linters, 2)
}

func TestWriteYAML(testInstance *testing.T) {
	var buffer bytes.Buffer
	require.NoError(testInstance, report.Write(&buffer, buildDirtyRun(testInstance), report.FormatYAML, report.RenderOptions{}))

	var document report.Document
	require.NoError(testInstance, yaml.Unmarshal(buffer.Bytes(), &document))
	require.Equal(testInstance, 3, document.Summary.TotalAssets)
	require.Equal(testInstance, lint.SeverityError, document.Run.Findings[0].Severity)
	require.Equal(testInstance, "empty_file", document.Run.Findings[0].IssueType)
	require.Contains(testInstance, buffer.String(), "issue_type: duplicate_group")
}

func TestWriteTable(testInstance *testing.T) {
	testCases := []struct {
		name             string
		run              *lint.LintRun
		styled           bool
		expectedContains []string
		expectedMissing  []string
	}{
		{
			name: "dirty_plain",
			run:  buildDirtyRun(testInstance),
			expectedContains: []string{
				headlineIssuesConstant,
				"SEVERITY",
				"empty_file",
				"duplicate_group",
				"Errors: 1, warnings: 1, info: 0",
				"verdict: fail",
			},
		},
		{
			name:             "dirty_styled",
			run:              buildDirtyRun(testInstance),
			styled:           true,
			expectedContains: []string{headlineIssuesConstant, "empty_file"},
		},
		{
			name:             "clean",
			run:              buildCleanRun(testInstance),
			expectedContains: []string{headlineCleanConstant, "Assets scanned: 1, errored: 0, state: completed, verdict: pass"},
			expectedMissing:  []string{"SEVERITY"},
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf("%d_%s", testCaseIndex, testCase.name), func(subTest *testing.T) {
			var buffer bytes.Buffer
			require.NoError(subTest, report.Write(&buffer, testCase.run, report.FormatTable, report.RenderOptions{Styled: testCase.styled}))
			for _, expected := range testCase.expectedContains {
				require.Contains(subTest, buffer.String(), expected)
			}
			for _, missing := range testCase.expectedMissing {
				require.NotContains(subTest, buffer.String(), missing)
			}
		})
	}
}

func TestWriteRejectsUnsupportedFormat(testInstance *testing.T) {
	writeError := report.Write(&bytes.Buffer{}, buildCleanRun(testInstance), report.Format("xml"), report.RenderOptions{})
	require.ErrorIs(testInstance, writeError, report.ErrUnsupportedFormat)
}

func TestHeadlineMessage(testInstance *testing.T) {
	require.Equal(testInstance, headlineIssuesConstant, report.HeadlineMessage(buildDirtyRun(testInstance)))
	require.Equal(testInstance, headlineCleanConstant, report.HeadlineMessage(buildCleanRun(testInstance)))
}
