package report

import (
	"github.com/Sir-Sloth-The-Lazy/VisionLint/internal/lint"
)

// Verdict is the overall pass/fail outcome of a run.
type Verdict string

// Verdicts.
const (
	VerdictPass Verdict = "pass"
	VerdictFail Verdict = "fail"
)

// Summary condenses a run into headline counts.
type Summary struct {
	TotalAssets   int           `json:"total_assets" yaml:"total_assets"`
	TotalFindings int           `json:"total_findings" yaml:"total_findings"`
	ErroredAssets int           `json:"errored_assets" yaml:"errored_assets"`
	State         lint.RunState `json:"state" yaml:"state"`
	Verdict       Verdict       `json:"verdict" yaml:"verdict"`
}

// BySeverity counts findings per severity. Every severity is present, including zero counts.
func BySeverity(run *lint.LintRun) map[lint.Severity]int {
	counts := make(map[lint.Severity]int, len(lint.Severities()))
	for _, severity := range lint.Severities() {
		counts[severity] = 0
	}
	for _, finding := range run.Findings() {
		counts[finding.Severity()]++
	}
	return counts
}

// ByLinter groups findings by linter identifier, preserving run order within each group.
func ByLinter(run *lint.LintRun) map[string][]lint.Finding {
	grouped := make(map[string][]lint.Finding)
	for _, finding := range run.Findings() {
		grouped[finding.Linter()] = append(grouped[finding.Linter()], finding)
	}
	return grouped
}

// ByAsset groups findings by every asset they cover, so a group finding appears under each member.
func ByAsset(run *lint.LintRun) map[string][]lint.Finding {
	grouped := make(map[string][]lint.Finding)
	for _, finding := range run.Findings() {
		for _, identity := range finding.RelatedAssets() {
			grouped[identity] = append(grouped[identity], finding)
		}
	}
	return grouped
}

// LinterOrder returns the linter identifiers in the order findings are reported: selected linters first,
// followed by synthetic identifiers that produced findings.
func LinterOrder(run *lint.LintRun) []string {
	order := run.LinterOrder()
	seen := make(map[string]struct{}, len(order))
	for _, identifier := range order {
		seen[identifier] = struct{}{}
	}
	for _, finding := range run.Findings() {
		if _, exists := seen[finding.Linter()]; exists {
			continue
		}
		seen[finding.Linter()] = struct{}{}
		order = append(order, finding.Linter())
	}
	return order
}

// Summarize computes the run summary. The verdict fails when any finding is an error.
func Summarize(run *lint.LintRun) Summary {
	findings := run.Findings()
	return Summary{
		TotalAssets:   run.AssetsScanned(),
		TotalFindings: len(findings),
		ErroredAssets: run.AssetsErrored(),
		State:         run.State(),
		Verdict:       verdictFor(findings, lint.SeverityError),
	}
}

// VerdictAt evaluates the verdict against a custom threshold: the run fails when any finding
// reaches the threshold severity.
func VerdictAt(run *lint.LintRun, threshold lint.Severity) Verdict {
	return verdictFor(run.Findings(), threshold)
}

func verdictFor(findings []lint.Finding, threshold lint.Severity) Verdict {
	for _, finding := range findings {
		if finding.Severity().AtLeast(threshold) {
			return VerdictFail
		}
	}
	return VerdictPass
}
