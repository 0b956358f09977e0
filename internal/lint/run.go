package lint

import (
	"errors"
	"time"
)

// ErrRunFrozen reports an attempt to mutate a run after it was frozen.
var ErrRunFrozen = errors.New("lint run is frozen")

// LinterStatus records how a linter fared during a run.
type LinterStatus string

// Linter statuses.
const (
	LinterStatusOK      LinterStatus = "ok"
	LinterStatusFailed  LinterStatus = "failed"
	LinterStatusSkipped LinterStatus = "skipped"
)

// RunState is the terminal state of a run.
type RunState string

// Run states.
const (
	RunStateCompleted RunState = "completed"
	RunStateCancelled RunState = "cancelled"
	RunStateAborted   RunState = "aborted"
)

// LintRun is the frozen result of executing linters across one asset source.
// Accessors return copies; a LintRun never changes after the engine hands it out.
type LintRun struct {
	runID          string
	startedAt      time.Time
	finishedAt     time.Time
	findings       []Finding
	linterOrder    []string
	linterStatuses map[string]LinterStatus
	linterFaults   map[string]int
	assetsScanned  int
	assetsErrored  int
	state          RunState
	abortReason    string
}

// RunID returns the unique run identifier.
func (run *LintRun) RunID() string {
	return run.runID
}

// StartedAt returns the time the run began.
func (run *LintRun) StartedAt() time.Time {
	return run.startedAt
}

// FinishedAt returns the time the run was frozen.
func (run *LintRun) FinishedAt() time.Time {
	return run.finishedAt
}

// Duration returns the wall-clock run time.
func (run *LintRun) Duration() time.Duration {
	return run.finishedAt.Sub(run.startedAt)
}

// Findings returns the ordered findings.
func (run *LintRun) Findings() []Finding {
	duplicated := make([]Finding, len(run.findings))
	copy(duplicated, run.findings)
	return duplicated
}

// LinterOrder returns the linter identifiers in the order they were selected.
func (run *LintRun) LinterOrder() []string {
	return copyStrings(run.linterOrder)
}

// LinterStatuses returns the status of every selected linter.
func (run *LintRun) LinterStatuses() map[string]LinterStatus {
	duplicated := make(map[string]LinterStatus, len(run.linterStatuses))
	for identifier, status := range run.linterStatuses {
		duplicated[identifier] = status
	}
	return duplicated
}

// LinterStatus returns the status of one linter.
func (run *LintRun) LinterStatus(identifier string) (LinterStatus, bool) {
	status, exists := run.linterStatuses[identifier]
	return status, exists
}

// LinterFaults returns the number of faults raised by each linter.
func (run *LintRun) LinterFaults() map[string]int {
	duplicated := make(map[string]int, len(run.linterFaults))
	for identifier, faults := range run.linterFaults {
		duplicated[identifier] = faults
	}
	return duplicated
}

// AssetsScanned returns the number of assets fully processed.
func (run *LintRun) AssetsScanned() int {
	return run.assetsScanned
}

// AssetsErrored returns the number of assets that could not be read.
func (run *LintRun) AssetsErrored() int {
	return run.assetsErrored
}

// State returns the terminal state.
func (run *LintRun) State() RunState {
	return run.state
}

// AbortReason describes the fault that aborted a fail-fast run.
func (run *LintRun) AbortReason() string {
	return run.abortReason
}

// Record projects the run onto exported fields for exporters.
func (run *LintRun) Record() RunRecord {
	findingRecords := make([]FindingRecord, 0, len(run.findings))
	for _, finding := range run.findings {
		findingRecords = append(findingRecords, finding.Record())
	}
	linterRecords := make([]LinterRecord, 0, len(run.linterOrder))
	for _, identifier := range run.linterOrder {
		linterRecords = append(linterRecords, LinterRecord{
			Identifier: identifier,
			Status:     run.linterStatuses[identifier],
			Faults:     run.linterFaults[identifier],
		})
	}
	return RunRecord{
		RunID:         run.runID,
		StartedAt:     run.startedAt,
		FinishedAt:    run.finishedAt,
		State:         run.state,
		AbortReason:   run.abortReason,
		AssetsScanned: run.assetsScanned,
		AssetsErrored: run.assetsErrored,
		Linters:       linterRecords,
		Findings:      findingRecords,
	}
}

// RunRecord is the exported projection of a LintRun.
type RunRecord struct {
	RunID         string          `json:"run_id" yaml:"run_id"`
	StartedAt     time.Time       `json:"started_at" yaml:"started_at"`
	FinishedAt    time.Time       `json:"finished_at" yaml:"finished_at"`
	State         RunState        `json:"state" yaml:"state"`
	AbortReason   string          `json:"abort_reason,omitempty" yaml:"abort_reason,omitempty"`
	AssetsScanned int             `json:"assets_scanned" yaml:"assets_scanned"`
	AssetsErrored int             `json:"assets_errored" yaml:"assets_errored"`
	Linters       []LinterRecord  `json:"linters" yaml:"linters"`
	Findings      []FindingRecord `json:"findings" yaml:"findings"`
}

// LinterRecord is the exported projection of one linter's outcome.
type LinterRecord struct {
	Identifier string       `json:"identifier" yaml:"identifier"`
	Status     LinterStatus `json:"status" yaml:"status"`
	Faults     int          `json:"faults" yaml:"faults"`
}
