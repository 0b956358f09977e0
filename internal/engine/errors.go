package engine

import (
	"errors"
	"fmt"
)

const (
	configurationErrorTemplateConstant        = "invalid lint configuration: %s"
	configurationErrorWrappedTemplateConstant = "invalid lint configuration: %s: %v"
)

var (
	// ErrNoLinters reports a run requested without any linter.
	ErrNoLinters = errors.New("no linters selected")
	// ErrUnknownLinter reports a selected identifier missing from the registry.
	ErrUnknownLinter = errors.New("unknown linter")
	// ErrDuplicateLinter reports an identifier selected more than once.
	ErrDuplicateLinter = errors.New("linter selected more than once")
	// ErrUnsupportedLinter reports a linter implementing neither asset nor corpus inspection.
	ErrUnsupportedLinter = errors.New("linter implements no inspection capability")
	// ErrMissingSource reports a run requested without an asset source.
	ErrMissingSource = errors.New("asset source is required")
	// ErrSourceUnavailable reports an asset source that could not be enumerated.
	ErrSourceUnavailable = errors.New("asset source unavailable")
)

// ConfigurationError is returned by Run when the run cannot start. No assets have been scanned.
type ConfigurationError struct {
	Reason string
	Err    error
}

// Error describes the configuration problem.
func (configurationError *ConfigurationError) Error() string {
	if configurationError.Err == nil {
		return fmt.Sprintf(configurationErrorTemplateConstant, configurationError.Reason)
	}
	return fmt.Sprintf(configurationErrorWrappedTemplateConstant, configurationError.Reason, configurationError.Err)
}

// Unwrap exposes the underlying cause.
func (configurationError *ConfigurationError) Unwrap() error {
	return configurationError.Err
}

func newConfigurationError(reason string, cause error) *ConfigurationError {
	return &ConfigurationError{Reason: reason, Err: cause}
}
