package engine

import (
	"time"

	"github.com/Sir-Sloth-The-Lazy/VisionLint/internal/lint"
)

// AssetEvent describes one committed asset.
type AssetEvent struct {
	RunID    string
	Asset    lint.Asset
	Findings []lint.Finding
	Errored  bool
	Duration time.Duration
}

// FaultEvent describes one linter fault or asset read fault.
type FaultEvent struct {
	RunID  string
	Linter string
	Asset  string
	Err    error
}

// CorpusEvent describes one finished corpus linter.
type CorpusEvent struct {
	RunID    string
	Linter   string
	Assets   int
	Findings []lint.Finding
	Duration time.Duration
	Err      error
}

// Observer receives run lifecycle notifications. Calls are serialized by the engine
// and arrive in commit order.
type Observer interface {
	RunStarted(runID string, linters []string)
	AssetCommitted(event AssetEvent)
	FaultRecorded(event FaultEvent)
	CorpusLinterFinished(event CorpusEvent)
	RunFinished(run *lint.LintRun)
}

// Observers fans notifications out to several observers in order.
type Observers []Observer

// RunStarted notifies every observer.
func (observers Observers) RunStarted(runID string, linters []string) {
	for _, observer := range observers {
		if observer != nil {
			observer.RunStarted(runID, linters)
		}
	}
}

// AssetCommitted notifies every observer.
func (observers Observers) AssetCommitted(event AssetEvent) {
	for _, observer := range observers {
		if observer != nil {
			observer.AssetCommitted(event)
		}
	}
}

// FaultRecorded notifies every observer.
func (observers Observers) FaultRecorded(event FaultEvent) {
	for _, observer := range observers {
		if observer != nil {
			observer.FaultRecorded(event)
		}
	}
}

// CorpusLinterFinished notifies every observer.
func (observers Observers) CorpusLinterFinished(event CorpusEvent) {
	for _, observer := range observers {
		if observer != nil {
			observer.CorpusLinterFinished(event)
		}
	}
}

// RunFinished notifies every observer.
func (observers Observers) RunFinished(run *lint.LintRun) {
	for _, observer := range observers {
		if observer != nil {
			observer.RunFinished(run)
		}
	}
}
