package audit

import (
	"runtime"
	"strings"

	"github.com/Sir-Sloth-The-Lazy/VisionLint/internal/lint"
	"github.com/Sir-Sloth-The-Lazy/VisionLint/internal/linters"
	"github.com/Sir-Sloth-The-Lazy/VisionLint/internal/report"
)

const (
	configurationKeySeparatorConstant        = "."
	lintersConfigurationKeyConstant          = "linters"
	maxWorkersConfigurationKeyConstant       = "max_workers"
	failFastConfigurationKeyConstant         = "fail_fast"
	includeCorpusConfigurationKeyConstant    = "include_corpus_linters"
	failureThresholdConfigurationKeyConstant = "failure_threshold"
	outputFormatConfigurationKeyConstant     = "output_format"
	failOnConfigurationKeyConstant           = "fail_on"
	defaultFailureThresholdConstant          = 1
)

// CommandConfiguration captures persistent settings for the audit command.
type CommandConfiguration struct {
	Linters              []string                  `mapstructure:"linters"`
	MaxWorkers           int                       `mapstructure:"max_workers"`
	FailFast             bool                      `mapstructure:"fail_fast"`
	IncludeCorpusLinters bool                      `mapstructure:"include_corpus_linters"`
	FailureThreshold     int                       `mapstructure:"failure_threshold"`
	Extensions           []string                  `mapstructure:"extensions"`
	OutputFormat         string                    `mapstructure:"output_format"`
	FailOn               string                    `mapstructure:"fail_on"`
	MetricsFile          string                    `mapstructure:"metrics_file"`
	LinterOptions        map[string]map[string]any `mapstructure:"linter_options"`
}

// DefaultCommandConfiguration returns baseline configuration values for the audit command.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		Linters:              linters.DefaultLinterIdentifiers(),
		MaxWorkers:           runtime.NumCPU(),
		FailFast:             false,
		IncludeCorpusLinters: true,
		FailureThreshold:     defaultFailureThresholdConstant,
		OutputFormat:         string(report.FormatTable),
		FailOn:               string(lint.SeverityError),
	}
}

// DefaultConfigurationValues exposes the defaults as flat Viper keys beneath the provided prefix.
func DefaultConfigurationValues(prefix string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		prefixedKey(prefix, lintersConfigurationKeyConstant):          defaults.Linters,
		prefixedKey(prefix, maxWorkersConfigurationKeyConstant):       defaults.MaxWorkers,
		prefixedKey(prefix, failFastConfigurationKeyConstant):         defaults.FailFast,
		prefixedKey(prefix, includeCorpusConfigurationKeyConstant):    defaults.IncludeCorpusLinters,
		prefixedKey(prefix, failureThresholdConfigurationKeyConstant): defaults.FailureThreshold,
		prefixedKey(prefix, outputFormatConfigurationKeyConstant):     defaults.OutputFormat,
		prefixedKey(prefix, failOnConfigurationKeyConstant):           defaults.FailOn,
	}
}

func prefixedKey(prefix string, key string) string {
	trimmedPrefix := strings.TrimSpace(prefix)
	if len(trimmedPrefix) == 0 {
		return key
	}
	return trimmedPrefix + configurationKeySeparatorConstant + key
}

// sanitize trims whitespace and applies defaults to unset configuration values.
func (configuration CommandConfiguration) sanitize() CommandConfiguration {
	defaults := DefaultCommandConfiguration()
	sanitized := configuration

	sanitized.Linters = sanitizeValues(configuration.Linters)
	if len(sanitized.Linters) == 0 {
		sanitized.Linters = defaults.Linters
	}
	sanitized.Extensions = sanitizeValues(configuration.Extensions)
	if sanitized.MaxWorkers < 1 {
		sanitized.MaxWorkers = defaults.MaxWorkers
	}
	if sanitized.FailureThreshold < 1 {
		sanitized.FailureThreshold = defaults.FailureThreshold
	}
	sanitized.OutputFormat = strings.ToLower(strings.TrimSpace(configuration.OutputFormat))
	if len(sanitized.OutputFormat) == 0 {
		sanitized.OutputFormat = defaults.OutputFormat
	}
	sanitized.FailOn = strings.ToLower(strings.TrimSpace(configuration.FailOn))
	if len(sanitized.FailOn) == 0 {
		sanitized.FailOn = defaults.FailOn
	}
	sanitized.MetricsFile = strings.TrimSpace(configuration.MetricsFile)

	return sanitized
}

// engineLinterOptions converts decoded configuration maps into per-linter options.
func (configuration CommandConfiguration) engineLinterOptions() map[string]lint.Options {
	if len(configuration.LinterOptions) == 0 {
		return nil
	}
	converted := make(map[string]lint.Options, len(configuration.LinterOptions))
	for identifier, values := range configuration.LinterOptions {
		converted[strings.ToLower(strings.TrimSpace(identifier))] = lint.Options(values)
	}
	return converted
}

func sanitizeValues(raw []string) []string {
	sanitized := make([]string, 0, len(raw))
	for index := range raw {
		for _, part := range strings.Split(raw[index], ",") {
			trimmed := strings.TrimSpace(part)
			if len(trimmed) == 0 {
				continue
			}
			sanitized = append(sanitized, trimmed)
		}
	}
	return sanitized
}
