package audit

import (
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Sir-Sloth-The-Lazy/VisionLint/internal/engine"
	"github.com/Sir-Sloth-The-Lazy/VisionLint/internal/lint"
	"github.com/Sir-Sloth-The-Lazy/VisionLint/internal/linters"
	"github.com/Sir-Sloth-The-Lazy/VisionLint/internal/report"
	"github.com/Sir-Sloth-The-Lazy/VisionLint/internal/utils/flags"
	pathutils "github.com/Sir-Sloth-The-Lazy/VisionLint/internal/utils/path"
)

const (
	commandNameConstant        = "audit"
	commandAliasConstant       = "lint"
	commandUsageConstant       = commandNameConstant + " PATH"
	commandShortDescription    = "Lint an image dataset"
	commandLongDescription     = "audit runs the selected linters over every image in PATH, renders the findings, and exits non-zero when the dataset fails."
	flagLintersName            = "linters"
	flagLintersDescription     = "Comma-separated linter identifiers to run, in report order."
	flagWorkersName            = "workers"
	flagWorkersDescription     = "Maximum number of assets inspected in parallel."
	flagFailFastName           = "fail-fast"
	flagFailFastDescription    = "Stop dispatching assets after the first linter or read fault."
	flagCorpusName             = "corpus"
	flagCorpusDescription      = "Run dataset-wide linters such as duplicate detection."
	flagFormatName             = "format"
	flagFormatDescription      = "Report format."
	flagOutputName             = "output"
	flagOutputDescription      = "Write the report to this file instead of standard output."
	flagFailOnName             = "fail-on"
	flagFailOnDescription      = "Lowest finding severity that fails the audit."
	flagMetricsFileName        = "metrics-file"
	flagMetricsFileDescription = "Write Prometheus text-format run metrics to this file."
	flagManifestName           = "manifest"
	flagManifestDescription    = "Treat PATH as a YAML manifest listing the dataset images."
)

// LoggerProvider supplies a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider returns the current audit configuration.
type ConfigurationProvider func() CommandConfiguration

// CommandBuilder assembles the audit cobra command with configurable dependencies.
type CommandBuilder struct {
	LoggerProvider LoggerProvider
	// ConsoleEventLoggerProvider returns the logger used for human-readable run events, or nil to disable them.
	ConsoleEventLoggerProvider LoggerProvider
	ConfigurationProvider      ConfigurationProvider
	ToggleSet                  *flags.ToggleSet
	Registry                   *lint.Registry
	PathResolver               *pathutils.DatasetPathResolver
	TerminalDetector           TerminalDetector
	Clock                      engine.Clock
}

type commandFlagValues struct {
	linters     []string
	workers     int
	failFast    bool
	corpus      bool
	format      string
	output      string
	failOn      string
	metricsFile string
	manifest    bool
}

// Build constructs the cobra command for dataset audits.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	flagValues := &commandFlagValues{}
	defaults := DefaultCommandConfiguration()

	command := &cobra.Command{
		Use:     commandUsageConstant,
		Aliases: []string{commandAliasConstant},
		Short:   commandShortDescription,
		Long:    commandLongDescription,
		Args:    cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			return builder.run(command, arguments, flagValues)
		},
	}

	toggleSet := builder.ToggleSet
	if toggleSet == nil {
		toggleSet = flags.NewToggleSet()
	}

	command.Flags().StringSliceVar(&flagValues.linters, flagLintersName, nil, flagLintersDescription)
	command.Flags().IntVar(&flagValues.workers, flagWorkersName, defaults.MaxWorkers, flagWorkersDescription)
	toggleSet.Add(command.Flags(), &flagValues.failFast, flagFailFastName, "", defaults.FailFast, flagFailFastDescription)
	toggleSet.Add(command.Flags(), &flagValues.corpus, flagCorpusName, "", defaults.IncludeCorpusLinters, flagCorpusDescription)
	flags.AddChoiceFlag(command.Flags(), &flagValues.format, flagFormatName, defaults.OutputFormat,
		[]string{string(report.FormatTable), string(report.FormatCSV), string(report.FormatJSON), string(report.FormatYAML)},
		flagFormatDescription)
	command.Flags().StringVarP(&flagValues.output, flagOutputName, "o", "", flagOutputDescription)
	flags.AddChoiceFlag(command.Flags(), &flagValues.failOn, flagFailOnName, defaults.FailOn,
		[]string{string(lint.SeverityError), string(lint.SeverityWarning)},
		flagFailOnDescription)
	command.Flags().StringVar(&flagValues.metricsFile, flagMetricsFileName, "", flagMetricsFileDescription)
	command.Flags().BoolVar(&flagValues.manifest, flagManifestName, false, flagManifestDescription)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string, flagValues *commandFlagValues) error {
	options, optionsError := builder.parseOptions(command, arguments, flagValues)
	if optionsError != nil {
		return optionsError
	}

	registry, registryError := builder.resolveRegistry()
	if registryError != nil {
		return registryError
	}

	service := NewService(
		registry,
		builder.resolveLogger(),
		builder.resolveConsoleEventLogger(),
		command.OutOrStdout(),
		command.ErrOrStderr(),
		builder.TerminalDetector,
		builder.Clock,
	)
	_, runError := service.Run(command.Context(), options)
	return runError
}

// parseOptions merges configuration with explicitly changed flags; flags win.
func (builder *CommandBuilder) parseOptions(command *cobra.Command, arguments []string, flagValues *commandFlagValues) (CommandOptions, error) {
	configuration := builder.resolveConfiguration()
	changed := command.Flags().Changed

	if changed(flagLintersName) {
		configuration.Linters = flagValues.linters
	}
	if changed(flagWorkersName) {
		configuration.MaxWorkers = flagValues.workers
	}
	if changed(flagFailFastName) {
		configuration.FailFast = flagValues.failFast
	}
	if changed(flagCorpusName) {
		configuration.IncludeCorpusLinters = flagValues.corpus
	}
	if changed(flagFormatName) {
		configuration.OutputFormat = flagValues.format
	}
	if changed(flagFailOnName) {
		configuration.FailOn = flagValues.failOn
	}
	if changed(flagMetricsFileName) {
		configuration.MetricsFile = flagValues.metricsFile
	}
	configuration = configuration.sanitize()

	format, formatError := report.ParseFormat(configuration.OutputFormat)
	if formatError != nil {
		return CommandOptions{}, formatError
	}
	failOn, severityError := lint.ParseSeverity(configuration.FailOn)
	if severityError != nil {
		return CommandOptions{}, severityError
	}

	datasetPath, pathError := builder.resolvePathResolver().Resolve(arguments[0])
	if pathError != nil {
		return CommandOptions{}, pathError
	}

	options := CommandOptions{
		DatasetPath: datasetPath,
		Manifest:    flagValues.manifest,
		Linters:     configuration.Linters,
		Extensions:  configuration.Extensions,
		Engine: engine.Options{
			MaxWorkers:        configuration.MaxWorkers,
			FailFast:          configuration.FailFast,
			SkipCorpusLinters: !configuration.IncludeCorpusLinters,
			FailureThreshold:  configuration.FailureThreshold,
			LinterOptions:     configuration.engineLinterOptions(),
		},
		OutputFormat: format,
		OutputPath:   strings.TrimSpace(flagValues.output),
		FailOn:       failOn,
		MetricsFile:  configuration.MetricsFile,
	}
	return options, nil
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider()
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func (builder *CommandBuilder) resolveConsoleEventLogger() *zap.Logger {
	if builder.ConsoleEventLoggerProvider == nil {
		return nil
	}
	return builder.ConsoleEventLoggerProvider()
}

func (builder *CommandBuilder) resolvePathResolver() *pathutils.DatasetPathResolver {
	if builder.PathResolver == nil {
		return pathutils.NewDatasetPathResolver()
	}
	return builder.PathResolver
}

func (builder *CommandBuilder) resolveRegistry() (*lint.Registry, error) {
	if builder.Registry != nil {
		return builder.Registry, nil
	}
	return linters.NewBuiltinRegistry()
}
