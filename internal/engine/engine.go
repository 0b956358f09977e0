package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/Sir-Sloth-The-Lazy/VisionLint/internal/lint"
)

const (
	selectLintersReasonConstant        = "select linters"
	instantiateLinterReasonTemplate    = "instantiate linter %s"
	enumerateSourceReasonConstant      = "enumerate assets"
	missingSourceReasonConstant        = "asset source"
	runStartedMessageConstant          = "lint run started"
	runFinishedMessageConstant         = "lint run finished"
	enumerationStoppedMessageConstant  = "asset enumeration stopped"
	corpusPhaseSkippedMessageConstant  = "corpus linters skipped"
	noAssetsMessageConstant            = "no supported images found in the asset source"
	enumerationFailedMessageTemplate   = "asset enumeration stopped early: %v"
	enumerationFailedIssueTypeConstant = "enumeration_failed"
	logFieldRunIDConstant              = "run_id"
	logFieldLintersConstant            = "linters"
	logFieldWorkersConstant            = "max_workers"
	logFieldStateConstant              = "state"
	logFieldAssetsScannedConstant      = "assets_scanned"
	logFieldAssetsErroredConstant      = "assets_errored"
	logFieldFindingsConstant           = "findings"
	logFieldDurationConstant           = "duration"
	logFieldReasonConstant             = "reason"
	corpusDisabledReasonConstant       = "disabled"
)

// Dependencies configures collaborators shared by every run.
type Dependencies struct {
	Logger         *zap.Logger
	Observer       Observer
	Clock          Clock
	RunIDGenerator func() string
}

// Engine executes lint runs against linters resolved from a registry.
type Engine struct {
	registry       *lint.Registry
	logger         *zap.Logger
	observer       Observer
	clock          Clock
	runIDGenerator func() string
}

// NewEngine constructs an Engine bound to the provided registry.
func NewEngine(registry *lint.Registry, dependencies Dependencies) *Engine {
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	observer := dependencies.Observer
	if observer == nil {
		observer = Observers(nil)
	}
	clock := dependencies.Clock
	if clock == nil {
		clock = SystemClock{}
	}
	runIDGenerator := dependencies.RunIDGenerator
	if runIDGenerator == nil {
		runIDGenerator = uuid.NewString
	}
	return &Engine{
		registry:       registry,
		logger:         logger,
		observer:       observer,
		clock:          clock,
		runIDGenerator: runIDGenerator,
	}
}

type selectedLinter struct {
	identifier   string
	linter       lint.Linter
	assetLinter  lint.AssetLinter
	corpusLinter lint.CorpusLinter
}

// Run lints every asset from the source with the selected linters and returns the frozen run.
// Configuration problems are reported as *ConfigurationError before any asset is scanned;
// every other fault is recorded in the returned run.
func (engine *Engine) Run(executionContext context.Context, source lint.AssetSource, selected []string, options Options) (*lint.LintRun, error) {
	if source == nil {
		return nil, newConfigurationError(missingSourceReasonConstant, ErrMissingSource)
	}

	normalizedOptions := options.normalized()

	linters, selectionError := engine.instantiate(selected, normalizedOptions.LinterOptions)
	if selectionError != nil {
		return nil, selectionError
	}

	engine.registry.Freeze()

	iterator, enumerationError := source.Assets(executionContext)
	if enumerationError != nil {
		return nil, newConfigurationError(enumerateSourceReasonConstant, errors.Join(ErrSourceUnavailable, enumerationError))
	}
	defer iterator.Close()

	linterOrder := make([]string, 0, len(linters))
	for _, entry := range linters {
		linterOrder = append(linterOrder, entry.identifier)
	}

	runID := engine.runIDGenerator()
	recorder := lint.NewRunRecorder(runID, engine.clock.Now(), linterOrder, normalizedOptions.FailureThreshold)

	runLogger := engine.logger.With(zap.String(logFieldRunIDConstant, runID))
	runLogger.Info(runStartedMessageConstant,
		zap.Strings(logFieldLintersConstant, linterOrder),
		zap.Int(logFieldWorkersConstant, normalizedOptions.MaxWorkers),
	)
	engine.observer.RunStarted(runID, linterOrder)

	phase := &assetPhase{
		runID:    runID,
		source:   source,
		iterator: iterator,
		linters:  linters,
		options:  normalizedOptions,
		recorder: recorder,
		observer: engine.observer,
		logger:   runLogger,
		clock:    engine.clock,
	}
	realizedAssets, enumeratedCount := phase.execute(executionContext)

	if enumeratedCount == 0 && recorder.State() == lint.RunStateCompleted && !normalizedOptions.AllowEmptySource {
		_ = recorder.AppendFindings(lint.NewFinding(lint.FindingDescriptor{
			Linter:    lint.SourceLinterIdentifier,
			Severity:  lint.SeverityError,
			IssueType: lint.IssueTypeNoAssets,
			Message:   noAssetsMessageConstant,
		}))
	}

	engine.runCorpusPhase(executionContext, runID, source, linters, realizedAssets, normalizedOptions, recorder, runLogger)

	run := recorder.Freeze(engine.clock.Now())
	runLogger.Info(runFinishedMessageConstant,
		zap.String(logFieldStateConstant, string(run.State())),
		zap.Int(logFieldAssetsScannedConstant, run.AssetsScanned()),
		zap.Int(logFieldAssetsErroredConstant, run.AssetsErrored()),
		zap.Int(logFieldFindingsConstant, len(run.Findings())),
		zap.Duration(logFieldDurationConstant, run.Duration()),
	)
	engine.observer.RunFinished(run)

	return run, nil
}

func (engine *Engine) instantiate(selected []string, linterOptions map[string]lint.Options) ([]selectedLinter, error) {
	if len(selected) == 0 {
		return nil, newConfigurationError(selectLintersReasonConstant, ErrNoLinters)
	}

	seen := make(map[string]struct{}, len(selected))
	linters := make([]selectedLinter, 0, len(selected))
	for _, rawIdentifier := range selected {
		identifier := strings.TrimSpace(rawIdentifier)
		if _, duplicate := seen[identifier]; duplicate {
			return nil, newConfigurationError(selectLintersReasonConstant, fmt.Errorf("%w: %s", ErrDuplicateLinter, identifier))
		}
		seen[identifier] = struct{}{}

		registration, registered := engine.registry.Lookup(identifier)
		if !registered {
			return nil, newConfigurationError(selectLintersReasonConstant, fmt.Errorf("%w: %s", ErrUnknownLinter, identifier))
		}

		linter, factoryError := registration.Factory(linterOptions[identifier])
		if factoryError != nil {
			return nil, newConfigurationError(fmt.Sprintf(instantiateLinterReasonTemplate, identifier), factoryError)
		}

		entry := selectedLinter{identifier: identifier, linter: linter}
		entry.assetLinter, _ = linter.(lint.AssetLinter)
		entry.corpusLinter, _ = linter.(lint.CorpusLinter)
		if entry.assetLinter == nil && entry.corpusLinter == nil {
			return nil, newConfigurationError(fmt.Sprintf(instantiateLinterReasonTemplate, identifier), ErrUnsupportedLinter)
		}
		linters = append(linters, entry)
	}
	return linters, nil
}

type assetPhase struct {
	runID     string
	source    lint.AssetSource
	iterator  lint.AssetIterator
	linters   []selectedLinter
	options   Options
	recorder  *lint.RunRecorder
	observer  Observer
	logger    *zap.Logger
	clock     Clock
	collector *orderedCollector
}

// execute dispatches assets to the worker pool until the source is exhausted, the caller
// cancels, or a fail-fast fault stops dispatch. It returns the readable assets in
// enumeration order and the number of assets enumerated.
func (phase *assetPhase) execute(executionContext context.Context) ([]lint.Asset, int) {
	dispatchContext, stopDispatch := context.WithCancel(executionContext)
	defer stopDispatch()

	inspectionContext := context.WithoutCancel(executionContext)
	window := semaphore.NewWeighted(phase.options.reorderWindow())

	phase.collector = newOrderedCollector(phase.runID, phase.recorder, phase.observer, window)
	worker := newAssetWorker(phase.source, phase.linters, phase.logger)

	var workerGroup errgroup.Group
	workerGroup.SetLimit(phase.options.MaxWorkers)

	enumeratedCount := 0
	interrupted := false
	for {
		if dispatchContext.Err() != nil {
			interrupted = true
			break
		}

		asset, nextError := phase.iterator.Next(dispatchContext)
		if errors.Is(nextError, io.EOF) {
			break
		}
		if nextError != nil {
			interrupted = dispatchContext.Err() != nil
			if !interrupted {
				phase.logger.Warn(enumerationStoppedMessageConstant, zap.Error(nextError))
				phase.collector.deferSourceFinding(lint.NewFinding(lint.FindingDescriptor{
					Linter:    lint.SourceLinterIdentifier,
					Severity:  lint.SeverityError,
					IssueType: enumerationFailedIssueTypeConstant,
					Message:   fmt.Sprintf(enumerationFailedMessageTemplate, nextError),
				}))
			}
			break
		}

		if acquireError := window.Acquire(dispatchContext, 1); acquireError != nil {
			interrupted = true
			break
		}

		sequence := enumeratedCount
		enumeratedCount++
		dispatchedAsset := asset
		workerGroup.Go(func() error {
			startedAt := phase.clock.Now()
			result, fault := worker.inspect(inspectionContext, dispatchedAsset)
			if fault != nil && phase.options.FailFast {
				phase.recorder.MarkAborted(fault.Error())
				stopDispatch()
			}
			phase.collector.submit(sequence, result, phase.clock.Now().Sub(startedAt))
			return nil
		})
	}

	_ = workerGroup.Wait()

	if interrupted && executionContext.Err() != nil {
		phase.recorder.MarkCancelled()
	}

	return phase.collector.finish(), enumeratedCount
}

func (engine *Engine) runCorpusPhase(executionContext context.Context, runID string, source lint.AssetSource, linters []selectedLinter, realizedAssets []lint.Asset, options Options, recorder *lint.RunRecorder, runLogger *zap.Logger) {
	corpusLinters := make([]selectedLinter, 0, len(linters))
	for _, entry := range linters {
		if entry.corpusLinter != nil {
			corpusLinters = append(corpusLinters, entry)
		}
	}
	if len(corpusLinters) == 0 {
		return
	}

	if options.SkipCorpusLinters || recorder.State() != lint.RunStateCompleted {
		runLogger.Info(corpusPhaseSkippedMessageConstant, zap.String(logFieldReasonConstant, corpusSkipReason(options, recorder.State())))
		for _, entry := range corpusLinters {
			if entry.assetLinter == nil {
				recorder.MarkSkipped(entry.identifier)
			}
		}
		return
	}

	corpus := lint.NewCorpus(realizedAssets, source.Open)
	inspectionContext := context.WithoutCancel(executionContext)
	for _, entry := range corpusLinters {
		startedAt := engine.clock.Now()
		linterCorpus := corpus.Filter(safeApplicable(entry.linter, runLogger))
		findings, inspectError := safeInspectCorpus(inspectionContext, entry.corpusLinter, linterCorpus)
		if inspectError != nil {
			findings = []lint.Finding{linterFailureFinding(entry.identifier, "", inspectError)}
			engine.observer.FaultRecorded(FaultEvent{RunID: runID, Linter: entry.identifier, Err: inspectError})
		}
		_ = recorder.CommitCorpus(entry.identifier, findings, inspectError != nil)
		engine.observer.CorpusLinterFinished(CorpusEvent{
			RunID:    runID,
			Linter:   entry.identifier,
			Assets:   linterCorpus.Len(),
			Findings: findings,
			Duration: engine.clock.Now().Sub(startedAt),
			Err:      inspectError,
		})
	}
}

func corpusSkipReason(options Options, state lint.RunState) string {
	if options.SkipCorpusLinters {
		return corpusDisabledReasonConstant
	}
	return string(state)
}
