package engine_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/Sir-Sloth-The-Lazy/VisionLint/internal/engine"
	"github.com/Sir-Sloth-The-Lazy/VisionLint/internal/lint"
)

const (
	echoLinterIdentifier    = "echo"
	flakyLinterIdentifier   = "flaky"
	corpusLinterIdentifier  = "census"
	faultyCorpusIdentifier  = "tally"
	inertLinterIdentifier   = "inert"
	brokenLinterIdentifier  = "broken"
	echoIssueTypeConstant   = "seen"
	censusIssueTypeConstant = "census"
	fixedRunIdentifier      = "run-fixed"
)

var (
	errFlakyInspection  = errors.New("flaky inspection failed")
	errCorpusInspection = errors.New("corpus index unavailable")
)

type memoryEntry struct {
	identity string
	content  []byte
	openErr  error
}

// memorySource serves assets from memory in insertion order.
type memorySource struct {
	entries        []memoryEntry
	enumerationErr error
	failAfter      int
	iterationErr   error
	onExhausted    func()
}

func newMemorySource(count int) *memorySource {
	source := &memorySource{failAfter: -1}
	for index := 0; index < count; index++ {
		identity := fmt.Sprintf("asset-%02d.png", index)
		source.entries = append(source.entries, memoryEntry{identity: identity, content: []byte(identity)})
	}
	return source
}

func (source *memorySource) Assets(context.Context) (lint.AssetIterator, error) {
	if source.enumerationErr != nil {
		return nil, source.enumerationErr
	}
	return &memoryIterator{source: source}, nil
}

func (source *memorySource) Open(asset lint.Asset) (io.ReadCloser, error) {
	for _, entry := range source.entries {
		if entry.identity != asset.Identity() {
			continue
		}
		if entry.openErr != nil {
			return nil, entry.openErr
		}
		return io.NopCloser(bytes.NewReader(entry.content)), nil
	}
	return nil, fmt.Errorf("asset %s not found", asset.Identity())
}

type memoryIterator struct {
	source *memorySource
	index  int
}

func (iterator *memoryIterator) Next(executionContext context.Context) (lint.Asset, error) {
	if contextError := executionContext.Err(); contextError != nil {
		return lint.Asset{}, contextError
	}
	if iterator.source.failAfter >= 0 && iterator.index == iterator.source.failAfter {
		return lint.Asset{}, iterator.source.iterationErr
	}
	if iterator.index >= len(iterator.source.entries) {
		if iterator.source.onExhausted != nil {
			iterator.source.onExhausted()
		}
		return lint.Asset{}, io.EOF
	}
	entry := iterator.source.entries[iterator.index]
	iterator.index++
	return lint.NewAsset(lint.AssetDescriptor{Identity: entry.identity, Path: entry.identity, Size: int64(len(entry.content))}), nil
}

func (iterator *memoryIterator) Close() error {
	return nil
}

// echoLinter reports one info finding per asset after an optional per-asset delay.
type echoLinter struct {
	delays map[string]time.Duration
}

func (linter *echoLinter) Identifier() string {
	return echoLinterIdentifier
}

func (linter *echoLinter) Applicable(lint.Asset) bool {
	return true
}

func (linter *echoLinter) InspectAsset(_ context.Context, subject *lint.Subject) ([]lint.Finding, error) {
	if delay, delayed := linter.delays[subject.Asset().Identity()]; delayed {
		time.Sleep(delay)
	}
	content, contentError := subject.Content()
	if contentError != nil {
		return nil, contentError
	}
	return []lint.Finding{lint.NewFinding(lint.FindingDescriptor{
		Linter:    echoLinterIdentifier,
		Asset:     subject.Asset().Identity(),
		Severity:  lint.SeverityInfo,
		IssueType: echoIssueTypeConstant,
		Message:   string(content),
	})}, nil
}

// flakyLinter fails on some assets and panics on others.
type flakyLinter struct {
	failing   map[string]bool
	panicking map[string]bool
}

func (linter *flakyLinter) Identifier() string {
	return flakyLinterIdentifier
}

func (linter *flakyLinter) Applicable(lint.Asset) bool {
	return true
}

func (linter *flakyLinter) InspectAsset(_ context.Context, subject *lint.Subject) ([]lint.Finding, error) {
	identity := subject.Asset().Identity()
	if linter.panicking[identity] {
		panic("unexpected pixel layout")
	}
	if linter.failing[identity] {
		return nil, errFlakyInspection
	}
	return nil, nil
}

// censusLinter records the corpus it receives and reports its size.
type censusLinter struct {
	mutex    sync.Mutex
	received []string
}

func (linter *censusLinter) Identifier() string {
	return corpusLinterIdentifier
}

func (linter *censusLinter) Applicable(lint.Asset) bool {
	return true
}

func (linter *censusLinter) InspectCorpus(_ context.Context, corpus lint.Corpus) ([]lint.Finding, error) {
	linter.mutex.Lock()
	defer linter.mutex.Unlock()
	for asset := range corpus.All() {
		linter.received = append(linter.received, asset.Identity())
	}
	return []lint.Finding{lint.NewGroupFinding(lint.FindingDescriptor{
		Linter:    corpusLinterIdentifier,
		Severity:  lint.SeverityWarning,
		IssueType: censusIssueTypeConstant,
		Message:   fmt.Sprintf("%d assets", corpus.Len()),
	}, linter.received)}, nil
}

func (linter *censusLinter) receivedAssets() []string {
	linter.mutex.Lock()
	defer linter.mutex.Unlock()
	return append([]string(nil), linter.received...)
}

// faultyCorpusLinter fails its corpus inspection with an error or a panic.
type faultyCorpusLinter struct {
	panics bool
}

func (linter *faultyCorpusLinter) Identifier() string {
	return faultyCorpusIdentifier
}

func (linter *faultyCorpusLinter) Applicable(lint.Asset) bool {
	return true
}

func (linter *faultyCorpusLinter) InspectCorpus(context.Context, lint.Corpus) ([]lint.Finding, error) {
	if linter.panics {
		panic("corpus index corrupted")
	}
	return nil, errCorpusInspection
}

// inertLinter implements neither inspection capability.
type inertLinter struct{}

func (inertLinter) Identifier() string {
	return inertLinterIdentifier
}

func (inertLinter) Applicable(lint.Asset) bool {
	return true
}

func registerLinter(registry *lint.Registry, identifier string, linter lint.Linter) {
	if registrationError := registry.Register(lint.Registration{
		Identifier: identifier,
		Factory: func(lint.Options) (lint.Linter, error) {
			return linter, nil
		},
	}); registrationError != nil {
		panic(registrationError)
	}
}

func newTestEngine(registry *lint.Registry, observer engine.Observer) *engine.Engine {
	return engine.NewEngine(registry, engine.Dependencies{
		Observer:       observer,
		RunIDGenerator: func() string { return fixedRunIdentifier },
	})
}

func findingAssets(run *lint.LintRun) []string {
	assets := make([]string, 0, len(run.Findings()))
	for _, finding := range run.Findings() {
		assets = append(assets, finding.Linter()+":"+finding.Asset())
	}
	return assets
}

// cancellingObserver cancels the run context once a number of assets have been committed.
type cancellingObserver struct {
	engine.Observers
	cancelAfter int
	cancel      context.CancelFunc
	committed   int
}

func (observer *cancellingObserver) AssetCommitted(engine.AssetEvent) {
	observer.committed++
	if observer.committed == observer.cancelAfter {
		observer.cancel()
	}
}

// recordingObserver captures the order of lifecycle events.
type recordingObserver struct {
	events []string
}

func (observer *recordingObserver) RunStarted(runID string, linters []string) {
	observer.events = append(observer.events, "started:"+runID)
}

func (observer *recordingObserver) AssetCommitted(event engine.AssetEvent) {
	observer.events = append(observer.events, "asset:"+event.Asset.Identity())
}

func (observer *recordingObserver) FaultRecorded(event engine.FaultEvent) {
	observer.events = append(observer.events, "fault:"+event.Linter+":"+event.Asset)
}

func (observer *recordingObserver) CorpusLinterFinished(event engine.CorpusEvent) {
	observer.events = append(observer.events, "corpus:"+event.Linter)
}

func (observer *recordingObserver) RunFinished(run *lint.LintRun) {
	observer.events = append(observer.events, "finished:"+string(run.State()))
}
