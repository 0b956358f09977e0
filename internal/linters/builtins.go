package linters

import (
	"fmt"

	"github.com/Sir-Sloth-The-Lazy/VisionLint/internal/lint"
)

const (
	// IntegrityLinterIdentifier names the integrity linter.
	IntegrityLinterIdentifier = "integrity"
	// ConsistencyLinterIdentifier names the consistency linter.
	ConsistencyLinterIdentifier = "consistency"
	// DuplicateLinterIdentifier names the duplicate linter.
	DuplicateLinterIdentifier = "duplicate"

	integrityDescriptionConstant   = "detects empty, corrupted, truncated, and zero-area images"
	consistencyDescriptionConstant = "detects color mode and declared format inconsistencies"
	duplicateDescriptionConstant   = "groups exact or perceptually similar duplicate images"

	registerBuiltinErrorTemplateConstant = "register builtin linter %s: %w"
	payloadFormatKeyConstant             = "format"
	payloadWidthKeyConstant              = "width"
	payloadHeightKeyConstant             = "height"
)

// DefaultLinterIdentifiers lists the built-in linters selected when configuration names none.
func DefaultLinterIdentifiers() []string {
	return []string{IntegrityLinterIdentifier, ConsistencyLinterIdentifier, DuplicateLinterIdentifier}
}

// RegisterBuiltins registers every built-in linter with the registry.
func RegisterBuiltins(registry *lint.Registry) error {
	registrations := []lint.Registration{
		{
			Identifier:  IntegrityLinterIdentifier,
			Kind:        lint.KindAsset,
			Description: integrityDescriptionConstant,
			Factory:     NewIntegrityLinter,
		},
		{
			Identifier:  ConsistencyLinterIdentifier,
			Kind:        lint.KindAsset,
			Description: consistencyDescriptionConstant,
			Factory:     NewConsistencyLinter,
		},
		{
			Identifier:  DuplicateLinterIdentifier,
			Kind:        lint.KindCorpus,
			Description: duplicateDescriptionConstant,
			Factory:     NewDuplicateLinter,
		},
	}
	for _, registration := range registrations {
		if registrationError := registry.Register(registration); registrationError != nil {
			return fmt.Errorf(registerBuiltinErrorTemplateConstant, registration.Identifier, registrationError)
		}
	}
	return nil
}

// NewBuiltinRegistry returns a fresh registry holding every built-in linter.
func NewBuiltinRegistry() (*lint.Registry, error) {
	registry := lint.NewRegistry()
	if registrationError := RegisterBuiltins(registry); registrationError != nil {
		return nil, registrationError
	}
	return registry, nil
}

func applicableImage(asset lint.Asset) bool {
	return len(asset.Format()) > 0
}
