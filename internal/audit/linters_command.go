package audit

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Sir-Sloth-The-Lazy/VisionLint/internal/lint"
	"github.com/Sir-Sloth-The-Lazy/VisionLint/internal/linters"
)

const (
	lintersCommandNameConstant     = "linters"
	lintersCommandShortDescription = "List available linters"
	lintersCommandLongDescription  = "linters prints every registered linter with its kind and a short description."
	lintersListingHeaderConstant   = "IDENTIFIER\tKIND\tDESCRIPTION"
	lintersListingRowTemplate      = "%s\t%s\t%s\n"
	lintersListingMinimumWidth     = 0
	lintersListingTabWidth         = 4
	lintersListingPadding          = 2
	lintersListingPaddingCharacter = ' '
)

// LintersCommandBuilder assembles the command listing registered linters.
type LintersCommandBuilder struct {
	Registry *lint.Registry
}

// Build constructs the cobra command for linter listings.
func (builder *LintersCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   lintersCommandNameConstant,
		Short: lintersCommandShortDescription,
		Long:  lintersCommandLongDescription,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			registry, registryError := builder.resolveRegistry()
			if registryError != nil {
				return registryError
			}
			return WriteLinterListing(command.OutOrStdout(), registry)
		},
	}
	return command, nil
}

func (builder *LintersCommandBuilder) resolveRegistry() (*lint.Registry, error) {
	if builder.Registry != nil {
		return builder.Registry, nil
	}
	return linters.NewBuiltinRegistry()
}

// WriteLinterListing renders registrations as aligned columns sorted by identifier.
func WriteLinterListing(writer io.Writer, registry *lint.Registry) error {
	tabular := tabwriter.NewWriter(writer, lintersListingMinimumWidth, lintersListingTabWidth, lintersListingPadding, lintersListingPaddingCharacter, 0)
	if _, writeError := fmt.Fprintln(tabular, lintersListingHeaderConstant); writeError != nil {
		return writeError
	}
	for _, registration := range registry.Registrations() {
		if _, writeError := fmt.Fprintf(tabular, lintersListingRowTemplate, registration.Identifier, registration.Kind, registration.Description); writeError != nil {
			return writeError
		}
	}
	return tabular.Flush()
}
