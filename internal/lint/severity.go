package lint

import (
	"fmt"
	"strings"
)

const (
	severityInfoStringConstant          = "info"
	severityWarningStringConstant       = "warning"
	severityErrorStringConstant         = "error"
	severityWarnAliasConstant           = "warn"
	severityCriticalAliasConstant       = "critical"
	unsupportedSeverityTemplateConstant = "unsupported severity: %s"
)

// Severity classifies how serious a Finding is.
type Severity string

// Supported severities, ordered from least to most serious.
const (
	SeverityInfo    Severity = Severity(severityInfoStringConstant)
	SeverityWarning Severity = Severity(severityWarningStringConstant)
	SeverityError   Severity = Severity(severityErrorStringConstant)
)

var severityRanks = map[Severity]int{
	SeverityInfo:    0,
	SeverityWarning: 1,
	SeverityError:   2,
}

// Severities lists every supported severity in ascending order.
func Severities() []Severity {
	return []Severity{SeverityInfo, SeverityWarning, SeverityError}
}

// ParseSeverity converts user input into a Severity, accepting common aliases.
func ParseSeverity(raw string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case severityInfoStringConstant:
		return SeverityInfo, nil
	case severityWarningStringConstant, severityWarnAliasConstant:
		return SeverityWarning, nil
	case severityErrorStringConstant, severityCriticalAliasConstant:
		return SeverityError, nil
	default:
		return "", fmt.Errorf(unsupportedSeverityTemplateConstant, raw)
	}
}

// Valid reports whether the severity is one of the supported values.
func (severity Severity) Valid() bool {
	_, known := severityRanks[severity]
	return known
}

// AtLeast reports whether the severity is as serious as the threshold.
func (severity Severity) AtLeast(threshold Severity) bool {
	return severityRanks[severity] >= severityRanks[threshold]
}

// String returns the canonical lowercase name.
func (severity Severity) String() string {
	return string(severity)
}
