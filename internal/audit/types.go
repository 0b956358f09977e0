package audit

import (
	"errors"

	"github.com/Sir-Sloth-The-Lazy/VisionLint/internal/engine"
	"github.com/Sir-Sloth-The-Lazy/VisionLint/internal/lint"
	"github.com/Sir-Sloth-The-Lazy/VisionLint/internal/report"
)

var (
	// ErrAuditFailed reports a run whose findings reach the configured failure severity.
	ErrAuditFailed = errors.New("dataset audit failed")
	// ErrAuditInterrupted reports a run cancelled before every asset was scanned.
	ErrAuditInterrupted = errors.New("dataset audit interrupted")
)

// CommandOptions captures the resolved parameters for one audit invocation.
type CommandOptions struct {
	// DatasetPath is an image directory, a single image, or a manifest file when Manifest is set.
	DatasetPath  string
	Manifest     bool
	Linters      []string
	Extensions   []string
	Engine       engine.Options
	OutputFormat report.Format
	OutputPath   string
	FailOn       lint.Severity
	MetricsFile  string
}
