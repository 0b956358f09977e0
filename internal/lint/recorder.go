package lint

import (
	"sync"
	"time"
)

// RunRecorder accumulates run state for the engine and freezes it into a LintRun.
// It is safe for concurrent use, but the engine commits asset results in enumeration order.
type RunRecorder struct {
	mutex            sync.Mutex
	runID            string
	startedAt        time.Time
	findings         []Finding
	linterOrder      []string
	linterFaults     map[string]int
	linterRan        map[string]bool
	linterSkipped    map[string]bool
	failureThreshold int
	assetsScanned    int
	assetsErrored    int
	state            RunState
	abortReason      string
	frozen           bool
}

// NewRunRecorder starts recording a run over the selected linters.
// failureThreshold is the number of faults after which a linter is reported as failed; values below one mean one.
func NewRunRecorder(runID string, startedAt time.Time, linterOrder []string, failureThreshold int) *RunRecorder {
	if failureThreshold < 1 {
		failureThreshold = 1
	}
	return &RunRecorder{
		runID:            runID,
		startedAt:        startedAt,
		linterOrder:      copyStrings(linterOrder),
		linterFaults:     make(map[string]int, len(linterOrder)),
		linterRan:        make(map[string]bool, len(linterOrder)),
		linterSkipped:    make(map[string]bool),
		failureThreshold: failureThreshold,
		state:            RunStateCompleted,
	}
}

// AssetResult is the outcome of inspecting one asset with every applicable per-asset linter.
type AssetResult struct {
	Asset        Asset
	Findings     []Finding
	Errored      bool
	LintersRan   []string
	LinterFaults []string
}

// CommitAsset appends one asset's findings and counters.
func (recorder *RunRecorder) CommitAsset(result AssetResult) error {
	recorder.mutex.Lock()
	defer recorder.mutex.Unlock()

	if recorder.frozen {
		return ErrRunFrozen
	}

	recorder.findings = append(recorder.findings, result.Findings...)
	recorder.assetsScanned++
	if result.Errored {
		recorder.assetsErrored++
	}
	for _, identifier := range result.LintersRan {
		recorder.linterRan[identifier] = true
	}
	for _, identifier := range result.LinterFaults {
		recorder.linterFaults[identifier]++
	}
	return nil
}

// CommitCorpus appends the findings of one corpus linter.
func (recorder *RunRecorder) CommitCorpus(identifier string, findings []Finding, faulted bool) error {
	recorder.mutex.Lock()
	defer recorder.mutex.Unlock()

	if recorder.frozen {
		return ErrRunFrozen
	}

	recorder.findings = append(recorder.findings, findings...)
	recorder.linterRan[identifier] = true
	if faulted {
		recorder.linterFaults[identifier]++
	}
	return nil
}

// AppendFindings appends run-level findings that belong to no linter.
func (recorder *RunRecorder) AppendFindings(findings ...Finding) error {
	recorder.mutex.Lock()
	defer recorder.mutex.Unlock()

	if recorder.frozen {
		return ErrRunFrozen
	}
	recorder.findings = append(recorder.findings, findings...)
	return nil
}

// MarkSkipped reports a linter as skipped regardless of earlier activity.
func (recorder *RunRecorder) MarkSkipped(identifier string) {
	recorder.mutex.Lock()
	defer recorder.mutex.Unlock()

	if recorder.frozen {
		return
	}
	recorder.linterSkipped[identifier] = true
}

// MarkCancelled records that the run stopped on an external cancellation signal.
func (recorder *RunRecorder) MarkCancelled() {
	recorder.mutex.Lock()
	defer recorder.mutex.Unlock()

	if recorder.frozen || recorder.state == RunStateAborted {
		return
	}
	recorder.state = RunStateCancelled
}

// MarkAborted records that a fail-fast fault stopped the run. The first reason wins.
func (recorder *RunRecorder) MarkAborted(reason string) {
	recorder.mutex.Lock()
	defer recorder.mutex.Unlock()

	if recorder.frozen || recorder.state == RunStateAborted {
		return
	}
	recorder.state = RunStateAborted
	recorder.abortReason = reason
}

// AssetsScanned returns the number of assets committed so far.
func (recorder *RunRecorder) AssetsScanned() int {
	recorder.mutex.Lock()
	defer recorder.mutex.Unlock()
	return recorder.assetsScanned
}

// State returns the state the run will freeze with.
func (recorder *RunRecorder) State() RunState {
	recorder.mutex.Lock()
	defer recorder.mutex.Unlock()
	return recorder.state
}

// Freeze resolves linter statuses and returns the immutable LintRun. Later mutations fail with ErrRunFrozen.
func (recorder *RunRecorder) Freeze(finishedAt time.Time) *LintRun {
	recorder.mutex.Lock()
	defer recorder.mutex.Unlock()

	recorder.frozen = true

	statuses := make(map[string]LinterStatus, len(recorder.linterOrder))
	faults := make(map[string]int, len(recorder.linterOrder))
	for _, identifier := range recorder.linterOrder {
		faultCount := recorder.linterFaults[identifier]
		faults[identifier] = faultCount
		switch {
		case faultCount >= recorder.failureThreshold:
			statuses[identifier] = LinterStatusFailed
		case recorder.linterSkipped[identifier]:
			statuses[identifier] = LinterStatusSkipped
		case !recorder.linterRan[identifier]:
			statuses[identifier] = LinterStatusSkipped
		default:
			statuses[identifier] = LinterStatusOK
		}
	}

	findings := make([]Finding, len(recorder.findings))
	copy(findings, recorder.findings)

	return &LintRun{
		runID:          recorder.runID,
		startedAt:      recorder.startedAt,
		finishedAt:     finishedAt,
		findings:       findings,
		linterOrder:    copyStrings(recorder.linterOrder),
		linterStatuses: statuses,
		linterFaults:   faults,
		assetsScanned:  recorder.assetsScanned,
		assetsErrored:  recorder.assetsErrored,
		state:          recorder.state,
		abortReason:    recorder.abortReason,
	}
}
