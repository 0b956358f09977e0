package audit

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"go.uber.org/zap"

	"github.com/Sir-Sloth-The-Lazy/VisionLint/internal/engine"
	"github.com/Sir-Sloth-The-Lazy/VisionLint/internal/lint"
	"github.com/Sir-Sloth-The-Lazy/VisionLint/internal/metrics"
	"github.com/Sir-Sloth-The-Lazy/VisionLint/internal/report"
	"github.com/Sir-Sloth-The-Lazy/VisionLint/internal/source"
	"github.com/Sir-Sloth-The-Lazy/VisionLint/internal/ui"
)

const (
	lintRunErrorTemplate          = "lint %s: %w"
	createOutputErrorTemplate     = "create report file %s: %w"
	closeOutputErrorTemplate      = "close report file %s: %w"
	writeMetricsErrorTemplate     = "write metrics: %w"
	interruptedErrorTemplate      = "%w after %d assets"
	failedErrorTemplate           = "%w: findings at or above %s"
	reportWrittenMessageConstant  = "report written"
	metricsWrittenMessageConstant = "metrics written"
	logFieldPathConstant          = "path"
	logFieldFormatConstant        = "format"
	outputFilePermissionsConstant = 0o644
)

// TerminalDetector reports whether a writer is attached to an interactive terminal.
type TerminalDetector func(writer io.Writer) bool

// Service coordinates source construction, the lint engine, reporting, and metrics export.
type Service struct {
	registry           *lint.Registry
	logger             *zap.Logger
	consoleEventLogger *zap.Logger
	outputWriter       io.Writer
	errorWriter        io.Writer
	terminalDetector   TerminalDetector
	clock              engine.Clock
}

// NewService constructs a Service using the provided dependencies.
// consoleEventLogger may be nil, in which case run events are not rendered.
func NewService(registry *lint.Registry, logger *zap.Logger, consoleEventLogger *zap.Logger, outputWriter io.Writer, errorWriter io.Writer, terminalDetector TerminalDetector, clock engine.Clock) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if terminalDetector == nil {
		terminalDetector = IsTerminal
	}
	if clock == nil {
		clock = engine.SystemClock{}
	}
	return &Service{
		registry:           registry,
		logger:             logger,
		consoleEventLogger: consoleEventLogger,
		outputWriter:       outputWriter,
		errorWriter:        errorWriter,
		terminalDetector:   terminalDetector,
		clock:              clock,
	}
}

// Run lints the dataset described by the options and renders the report.
// The returned run is nil only when the engine rejected its configuration.
func (service *Service) Run(executionContext context.Context, options CommandOptions) (*lint.LintRun, error) {
	metricsRecorder := metrics.NewRecorder()
	observers := engine.Observers{metricsRecorder}
	if service.consoleEventLogger != nil {
		observers = append(observers, ui.NewConsoleRunEventLogger(service.consoleEventLogger))
	}

	lintEngine := engine.NewEngine(service.registry, engine.Dependencies{
		Logger:   service.logger,
		Observer: observers,
		Clock:    service.clock,
	})

	run, runError := lintEngine.Run(executionContext, service.buildSource(options), options.Linters, options.Engine)
	if runError != nil {
		return nil, fmt.Errorf(lintRunErrorTemplate, options.DatasetPath, runError)
	}

	if reportError := service.writeReport(run, options); reportError != nil {
		return run, reportError
	}

	if len(options.MetricsFile) > 0 {
		if metricsError := metricsRecorder.WriteTextfile(options.MetricsFile); metricsError != nil {
			return run, fmt.Errorf(writeMetricsErrorTemplate, metricsError)
		}
		service.logger.Debug(metricsWrittenMessageConstant, zap.String(logFieldPathConstant, options.MetricsFile))
	}

	if run.State() == lint.RunStateCancelled {
		return run, fmt.Errorf(interruptedErrorTemplate, ErrAuditInterrupted, run.AssetsScanned())
	}
	if report.VerdictAt(run, options.FailOn) == report.VerdictFail {
		return run, fmt.Errorf(failedErrorTemplate, ErrAuditFailed, options.FailOn)
	}
	return run, nil
}

func (service *Service) buildSource(options CommandOptions) lint.AssetSource {
	if options.Manifest {
		return source.NewManifest(options.DatasetPath, service.logger)
	}
	return source.NewDirectory(options.DatasetPath, source.DirectoryOptions{
		Extensions: options.Extensions,
		Logger:     service.logger,
	})
}

// writeReport renders the run to stdout or to the requested file. Machine-readable formats
// and file output print the headline separately so the report itself stays parseable.
func (service *Service) writeReport(run *lint.LintRun, options CommandOptions) error {
	if len(options.OutputPath) == 0 {
		renderOptions := report.RenderOptions{Styled: service.terminalDetector(service.outputWriter)}
		if writeError := report.Write(service.outputWriter, run, options.OutputFormat, renderOptions); writeError != nil {
			return writeError
		}
		if options.OutputFormat != report.FormatTable {
			fmt.Fprintln(service.errorWriter, report.HeadlineMessage(run))
		}
		return nil
	}

	outputFile, createError := os.OpenFile(options.OutputPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, outputFilePermissionsConstant)
	if createError != nil {
		return fmt.Errorf(createOutputErrorTemplate, options.OutputPath, createError)
	}
	writeError := report.Write(outputFile, run, options.OutputFormat, report.RenderOptions{})
	if closeError := outputFile.Close(); closeError != nil && writeError == nil {
		writeError = fmt.Errorf(closeOutputErrorTemplate, options.OutputPath, closeError)
	}
	if writeError != nil {
		return writeError
	}

	service.logger.Info(reportWrittenMessageConstant,
		zap.String(logFieldPathConstant, options.OutputPath),
		zap.String(logFieldFormatConstant, string(options.OutputFormat)),
	)
	fmt.Fprintln(service.outputWriter, report.HeadlineMessage(run))
	return nil
}

// IsTerminal reports whether the writer is a file descriptor attached to a terminal.
func IsTerminal(writer io.Writer) bool {
	file, isFile := writer.(*os.File)
	if !isFile {
		return false
	}
	return isatty.IsTerminal(file.Fd()) || isatty.IsCygwinTerminal(file.Fd())
}
