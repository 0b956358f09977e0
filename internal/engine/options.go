package engine

import (
	"time"

	"github.com/Sir-Sloth-The-Lazy/VisionLint/internal/lint"
)

const (
	defaultMaxWorkersConstant       = 1
	defaultFailureThresholdConstant = 1
	reorderWindowFactorConstant     = 2
)

// Options tunes a single run.
type Options struct {
	// MaxWorkers bounds parallel per-asset inspection. Values below one mean strictly sequential.
	MaxWorkers int
	// FailFast stops dispatching after the first asset or linter fault and marks the run aborted.
	FailFast bool
	// SkipCorpusLinters disables the corpus phase; corpus linters are reported as skipped.
	SkipCorpusLinters bool
	// FailureThreshold is the number of faults after which a linter status becomes failed.
	FailureThreshold int
	// AllowEmptySource suppresses the error finding raised when the source yields no assets.
	AllowEmptySource bool
	// LinterOptions holds per-linter settings keyed by identifier.
	LinterOptions map[string]lint.Options
}

func (options Options) normalized() Options {
	normalized := options
	if normalized.MaxWorkers < 1 {
		normalized.MaxWorkers = defaultMaxWorkersConstant
	}
	if normalized.FailureThreshold < 1 {
		normalized.FailureThreshold = defaultFailureThresholdConstant
	}
	return normalized
}

func (options Options) reorderWindow() int64 {
	return int64(options.MaxWorkers * reorderWindowFactorConstant)
}

// Clock abstracts time-dependent functionality for deterministic testing.
type Clock interface {
	Now() time.Time
}

// SystemClock implements Clock using the standard library.
type SystemClock struct{}

// Now returns the current system time.
func (SystemClock) Now() time.Time {
	return time.Now()
}
