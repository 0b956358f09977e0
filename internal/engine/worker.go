package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/Sir-Sloth-The-Lazy/VisionLint/internal/lint"
)

const (
	unreadableAssetMessageTemplate       = "asset could not be read: %v"
	linterFailedMessageTemplate          = "linter %s failed: %v"
	linterPanicTemplateConstant          = "panic: %v"
	applicablePanicMessageConstant       = "linter applicability check panicked; asset skipped"
	linterFaultMessageConstant           = "linter fault recorded"
	assetReadFaultMessageConstant        = "asset read failed"
	logFieldLinterConstant               = "linter"
	logFieldAssetConstant                = "asset"
	payloadErrorKeyConstant              = "error"
	initialContentBufferCapacityConstant = 64 * 1024
)

// ErrLinterPanicked marks a fault raised by a recovered linter panic.
var ErrLinterPanicked = errors.New("linter panicked")

type faultRecord struct {
	linter string
	asset  string
	err    error
}

type assetInspection struct {
	result lint.AssetResult
	faults []faultRecord
}

type assetWorker struct {
	source        lint.AssetSource
	assetLinters  []selectedLinter
	logger        *zap.Logger
	contentBuffer sync.Pool
}

func newAssetWorker(source lint.AssetSource, linters []selectedLinter, logger *zap.Logger) *assetWorker {
	assetLinters := make([]selectedLinter, 0, len(linters))
	for _, entry := range linters {
		if entry.assetLinter != nil {
			assetLinters = append(assetLinters, entry)
		}
	}
	worker := &assetWorker{source: source, assetLinters: assetLinters, logger: logger}
	worker.contentBuffer.New = func() any {
		return bytes.NewBuffer(make([]byte, 0, initialContentBufferCapacityConstant))
	}
	return worker
}

// inspect reads one asset and runs every applicable per-asset linter against it.
// The returned error is the first fault observed, used to trigger fail-fast.
func (worker *assetWorker) inspect(executionContext context.Context, asset lint.Asset) (assetInspection, error) {
	inspection := assetInspection{result: lint.AssetResult{Asset: asset}}
	if len(worker.assetLinters) == 0 {
		if openError := worker.probe(asset); openError != nil {
			return worker.unreadable(inspection, openError), openError
		}
		return inspection, nil
	}

	contentBuffer, readError := worker.read(asset)
	if readError != nil {
		return worker.unreadable(inspection, readError), readError
	}

	subject := lint.NewSubject(asset, contentBuffer.Bytes(), func() {
		contentBuffer.Reset()
		worker.contentBuffer.Put(contentBuffer)
	})
	defer subject.Release()

	var firstFault error
	for _, entry := range worker.assetLinters {
		if !safeApplicable(entry.linter, worker.logger)(asset) {
			continue
		}
		inspection.result.LintersRan = append(inspection.result.LintersRan, entry.identifier)

		findings, inspectError := safeInspectAsset(executionContext, entry.assetLinter, subject)
		if inspectError != nil {
			worker.logger.Warn(linterFaultMessageConstant,
				zap.String(logFieldLinterConstant, entry.identifier),
				zap.String(logFieldAssetConstant, asset.Identity()),
				zap.Error(inspectError),
			)
			inspection.result.LinterFaults = append(inspection.result.LinterFaults, entry.identifier)
			inspection.result.Findings = append(inspection.result.Findings, linterFailureFinding(entry.identifier, asset.Identity(), inspectError))
			inspection.faults = append(inspection.faults, faultRecord{linter: entry.identifier, asset: asset.Identity(), err: inspectError})
			if firstFault == nil {
				firstFault = fmt.Errorf(linterFailedMessageTemplate, entry.identifier, inspectError)
			}
			continue
		}
		inspection.result.Findings = append(inspection.result.Findings, findings...)
	}
	return inspection, firstFault
}

// unreadable records the single _io finding for an asset that could not be opened or read.
func (worker *assetWorker) unreadable(inspection assetInspection, readError error) assetInspection {
	asset := inspection.result.Asset
	worker.logger.Warn(assetReadFaultMessageConstant, zap.String(logFieldAssetConstant, asset.Identity()), zap.Error(readError))
	inspection.result.Errored = true
	inspection.result.Findings = []lint.Finding{lint.NewFinding(lint.FindingDescriptor{
		Linter:    lint.IOLinterIdentifier,
		Asset:     asset.Identity(),
		Severity:  lint.SeverityError,
		IssueType: lint.IssueTypeUnreadableAsset,
		Message:   fmt.Sprintf(unreadableAssetMessageTemplate, readError),
		Payload:   lint.Payload{payloadErrorKeyConstant: readError.Error()},
	})}
	inspection.faults = append(inspection.faults, faultRecord{linter: lint.IOLinterIdentifier, asset: asset.Identity(), err: readError})
	return inspection
}

// probe opens and closes an asset without reading it, for runs where no per-asset linter needs content.
func (worker *assetWorker) probe(asset lint.Asset) error {
	reader, openError := worker.source.Open(asset)
	if openError != nil {
		return openError
	}
	return reader.Close()
}

func (worker *assetWorker) read(asset lint.Asset) (*bytes.Buffer, error) {
	reader, openError := worker.source.Open(asset)
	if openError != nil {
		return nil, openError
	}
	defer reader.Close()

	contentBuffer := worker.contentBuffer.Get().(*bytes.Buffer)
	contentBuffer.Reset()
	if _, readError := contentBuffer.ReadFrom(reader); readError != nil {
		contentBuffer.Reset()
		worker.contentBuffer.Put(contentBuffer)
		return nil, readError
	}
	return contentBuffer, nil
}

func linterFailureFinding(linterIdentifier string, assetIdentity string, cause error) lint.Finding {
	return lint.NewFinding(lint.FindingDescriptor{
		Linter:    linterIdentifier,
		Asset:     assetIdentity,
		Severity:  lint.SeverityError,
		IssueType: lint.IssueTypeLinterFailed,
		Message:   fmt.Sprintf(linterFailedMessageTemplate, linterIdentifier, cause),
		Payload:   lint.Payload{payloadErrorKeyConstant: cause.Error()},
	})
}

func safeApplicable(linter lint.Linter, logger *zap.Logger) func(lint.Asset) bool {
	return func(asset lint.Asset) (applicable bool) {
		defer func() {
			if recovered := recover(); recovered != nil {
				logger.Warn(applicablePanicMessageConstant,
					zap.String(logFieldLinterConstant, linter.Identifier()),
					zap.String(logFieldAssetConstant, asset.Identity()),
					zap.Any(payloadErrorKeyConstant, recovered),
				)
				applicable = false
			}
		}()
		return linter.Applicable(asset)
	}
}

func safeInspectAsset(executionContext context.Context, linter lint.AssetLinter, subject *lint.Subject) (findings []lint.Finding, inspectError error) {
	defer recoverLinterPanic(&findings, &inspectError)
	return linter.InspectAsset(executionContext, subject)
}

func safeInspectCorpus(executionContext context.Context, linter lint.CorpusLinter, corpus lint.Corpus) (findings []lint.Finding, inspectError error) {
	defer recoverLinterPanic(&findings, &inspectError)
	return linter.InspectCorpus(executionContext, corpus)
}

func recoverLinterPanic(findings *[]lint.Finding, inspectError *error) {
	recovered := recover()
	if recovered == nil {
		return
	}
	*findings = nil
	*inspectError = fmt.Errorf("%w: %s", ErrLinterPanicked, fmt.Sprintf(linterPanicTemplateConstant, recovered))
}
