package ui

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Sir-Sloth-The-Lazy/VisionLint/internal/engine"
	"github.com/Sir-Sloth-The-Lazy/VisionLint/internal/lint"
)

const (
	runStartedMessageTemplateConstant        = "Linting with %s"
	assetCleanMessageTemplateConstant        = "Inspected %s"
	assetFindingsMessageTemplateConstant     = "Inspected %s: %d %s"
	assetUnreadableMessageTemplateConstant   = "Could not read %s"
	linterFaultMessageTemplateConstant       = "%s failed on %s: %s"
	corpusLinterFaultMessageTemplateConstant = "%s failed: %s"
	corpusLinterMessageTemplateConstant      = "Finished %s over %d assets: %d %s"
	runFinishedMessageTemplateConstant       = "Run %s: %d assets scanned, %d errored, %d %s"
	runAbortedSuffixTemplateConstant         = " (%s)"
	linterListSeparatorConstant              = ", "
	singularFindingConstant                  = "finding"
	pluralFindingsConstant                   = "findings"
	unknownFailureMessageConstant            = "unknown error"
)

// RunEventFormatter builds human-readable messages for lint run lifecycle events.
type RunEventFormatter struct{}

// BuildStartedMessage formats the message describing a run about to start.
func (formatter RunEventFormatter) BuildStartedMessage(linters []string) string {
	return fmt.Sprintf(runStartedMessageTemplateConstant, strings.Join(linters, linterListSeparatorConstant))
}

// BuildAssetMessage formats the message describing a committed asset.
func (formatter RunEventFormatter) BuildAssetMessage(event engine.AssetEvent) string {
	identity := event.Asset.Identity()
	if event.Errored {
		return fmt.Sprintf(assetUnreadableMessageTemplateConstant, identity)
	}
	if len(event.Findings) == 0 {
		return fmt.Sprintf(assetCleanMessageTemplateConstant, identity)
	}
	return fmt.Sprintf(assetFindingsMessageTemplateConstant, identity, len(event.Findings), findingNoun(len(event.Findings)))
}

// BuildFaultMessage formats the message describing a linter fault.
func (formatter RunEventFormatter) BuildFaultMessage(event engine.FaultEvent) string {
	failureMessage := unknownFailureMessageConstant
	if event.Err != nil {
		failureMessage = event.Err.Error()
	}
	if len(event.Asset) == 0 {
		return fmt.Sprintf(corpusLinterFaultMessageTemplateConstant, event.Linter, failureMessage)
	}
	return fmt.Sprintf(linterFaultMessageTemplateConstant, event.Linter, event.Asset, failureMessage)
}

// BuildCorpusMessage formats the message describing a finished corpus linter.
func (formatter RunEventFormatter) BuildCorpusMessage(event engine.CorpusEvent) string {
	return fmt.Sprintf(corpusLinterMessageTemplateConstant, event.Linter, event.Assets, len(event.Findings), findingNoun(len(event.Findings)))
}

// BuildFinishedMessage formats the message describing a frozen run.
func (formatter RunEventFormatter) BuildFinishedMessage(run *lint.LintRun) string {
	findingCount := len(run.Findings())
	message := fmt.Sprintf(runFinishedMessageTemplateConstant, run.State(), run.AssetsScanned(), run.AssetsErrored(), findingCount, findingNoun(findingCount))
	if len(run.AbortReason()) == 0 {
		return message
	}
	return message + fmt.Sprintf(runAbortedSuffixTemplateConstant, run.AbortReason())
}

func findingNoun(count int) string {
	if count == 1 {
		return singularFindingConstant
	}
	return pluralFindingsConstant
}

// ConsoleRunEventLogger renders run lifecycle events using a zap logger configured for human-readable output.
type ConsoleRunEventLogger struct {
	logger    *zap.Logger
	formatter RunEventFormatter
}

// NewConsoleRunEventLogger constructs a console event logger backed by the provided zap logger.
func NewConsoleRunEventLogger(logger *zap.Logger) *ConsoleRunEventLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConsoleRunEventLogger{logger: logger, formatter: RunEventFormatter{}}
}

// RunStarted implements engine.Observer by logging the selected linters.
func (eventLogger *ConsoleRunEventLogger) RunStarted(_ string, linters []string) {
	if eventLogger == nil {
		return
	}
	eventLogger.logger.Info(eventLogger.formatter.BuildStartedMessage(linters))
}

// AssetCommitted implements engine.Observer. Clean assets are logged at debug level.
func (eventLogger *ConsoleRunEventLogger) AssetCommitted(event engine.AssetEvent) {
	if eventLogger == nil {
		return
	}
	message := eventLogger.formatter.BuildAssetMessage(event)
	switch {
	case event.Errored:
		eventLogger.logger.Warn(message)
	case len(event.Findings) == 0:
		eventLogger.logger.Debug(message)
	default:
		eventLogger.logger.Info(message)
	}
}

// FaultRecorded implements engine.Observer by logging linter faults. Unreadable assets are
// already reported by AssetCommitted.
func (eventLogger *ConsoleRunEventLogger) FaultRecorded(event engine.FaultEvent) {
	if eventLogger == nil || event.Linter == lint.IOLinterIdentifier {
		return
	}
	eventLogger.logger.Error(eventLogger.formatter.BuildFaultMessage(event))
}

// CorpusLinterFinished implements engine.Observer by logging the corpus linter outcome.
func (eventLogger *ConsoleRunEventLogger) CorpusLinterFinished(event engine.CorpusEvent) {
	if eventLogger == nil {
		return
	}
	eventLogger.logger.Info(eventLogger.formatter.BuildCorpusMessage(event))
}

// RunFinished implements engine.Observer by logging the run totals.
func (eventLogger *ConsoleRunEventLogger) RunFinished(run *lint.LintRun) {
	if eventLogger == nil || run == nil {
		return
	}
	if run.State() == lint.RunStateCompleted {
		eventLogger.logger.Info(eventLogger.formatter.BuildFinishedMessage(run))
		return
	}
	eventLogger.logger.Warn(eventLogger.formatter.BuildFinishedMessage(run))
}
