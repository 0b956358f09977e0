package engine

import (
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/Sir-Sloth-The-Lazy/VisionLint/internal/lint"
)

type pendingInspection struct {
	inspection assetInspection
	duration   time.Duration
}

// orderedCollector commits worker results in enumeration order regardless of completion order.
// Each commit releases one slot of the reorder window so dispatch never runs further ahead
// of the slowest in-flight asset than the window allows.
type orderedCollector struct {
	mutex        sync.Mutex
	runID        string
	recorder     *lint.RunRecorder
	observer     Observer
	window       *semaphore.Weighted
	nextSequence int
	pending      map[int]pendingInspection
	realized     []lint.Asset
	deferred     []lint.Finding
}

func newOrderedCollector(runID string, recorder *lint.RunRecorder, observer Observer, window *semaphore.Weighted) *orderedCollector {
	return &orderedCollector{
		runID:    runID,
		recorder: recorder,
		observer: observer,
		window:   window,
		pending:  make(map[int]pendingInspection),
	}
}

func (collector *orderedCollector) submit(sequence int, inspection assetInspection, duration time.Duration) {
	collector.mutex.Lock()
	defer collector.mutex.Unlock()

	collector.pending[sequence] = pendingInspection{inspection: inspection, duration: duration}
	for {
		next, ready := collector.pending[collector.nextSequence]
		if !ready {
			return
		}
		delete(collector.pending, collector.nextSequence)
		collector.nextSequence++
		collector.commit(next)
		collector.window.Release(1)
	}
}

func (collector *orderedCollector) commit(pending pendingInspection) {
	result := pending.inspection.result
	_ = collector.recorder.CommitAsset(result)
	if !result.Errored {
		collector.realized = append(collector.realized, result.Asset)
	}
	for _, fault := range pending.inspection.faults {
		collector.observer.FaultRecorded(FaultEvent{
			RunID:  collector.runID,
			Linter: fault.linter,
			Asset:  fault.asset,
			Err:    fault.err,
		})
	}
	collector.observer.AssetCommitted(AssetEvent{
		RunID:    collector.runID,
		Asset:    result.Asset,
		Findings: result.Findings,
		Errored:  result.Errored,
		Duration: pending.duration,
	})
}

// deferSourceFinding holds a source-level finding until every dispatched asset has been committed.
func (collector *orderedCollector) deferSourceFinding(finding lint.Finding) {
	collector.mutex.Lock()
	defer collector.mutex.Unlock()
	collector.deferred = append(collector.deferred, finding)
}

// finish appends deferred findings after the committed assets and returns the readable assets
// in enumeration order. It must be called once the worker group has drained.
func (collector *orderedCollector) finish() []lint.Asset {
	collector.mutex.Lock()
	defer collector.mutex.Unlock()

	if len(collector.deferred) > 0 {
		_ = collector.recorder.AppendFindings(collector.deferred...)
		collector.deferred = nil
	}
	realized := make([]lint.Asset, len(collector.realized))
	copy(realized, collector.realized)
	return realized
}
