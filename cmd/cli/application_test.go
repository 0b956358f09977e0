package cli_test

import (
	"testing"

	mapstructure "github.com/go-viper/mapstructure/v2"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/Sir-Sloth-The-Lazy/VisionLint/cmd/cli"
	"github.com/Sir-Sloth-The-Lazy/VisionLint/internal/audit"
	"github.com/Sir-Sloth-The-Lazy/VisionLint/internal/lint"
	"github.com/Sir-Sloth-The-Lazy/VisionLint/internal/linters"
)

const (
	embeddedConfigurationTypeConstant = "yaml"
	embeddedLintSectionConstant       = "lint"
	embeddedCommonSectionConstant     = "common"
)

func decodeEmbeddedSection(testInstance *testing.T, section string, target any) {
	testInstance.Helper()

	content, configurationType := cli.EmbeddedDefaultConfiguration()
	require.Equal(testInstance, embeddedConfigurationTypeConstant, configurationType)

	var document map[string]any
	require.NoError(testInstance, yaml.Unmarshal(content, &document))
	require.Contains(testInstance, document, section)
	require.NoError(testInstance, mapstructure.Decode(document[section], target))
}

func TestEmbeddedDefaultConfigurationReturnsPrivateCopies(testInstance *testing.T) {
	first, _ := cli.EmbeddedDefaultConfiguration()
	second, _ := cli.EmbeddedDefaultConfiguration()
	require.Equal(testInstance, first, second)

	first[0] = '#'
	third, _ := cli.EmbeddedDefaultConfiguration()
	require.Equal(testInstance, second, third)
	require.NotEqual(testInstance, first[0], third[0])
}

func TestEmbeddedDefaultsDecodeIntoLintConfiguration(testInstance *testing.T) {
	var configuration audit.CommandConfiguration
	decodeEmbeddedSection(testInstance, embeddedLintSectionConstant, &configuration)

	require.Equal(testInstance, linters.DefaultLinterIdentifiers(), configuration.Linters)
	require.Contains(testInstance, configuration.Linters, linters.ConsistencyLinterIdentifier)
	require.Equal(testInstance, "any", configuration.LinterOptions[linters.ConsistencyLinterIdentifier]["expected_mode"])
	require.Equal(testInstance, 4, configuration.MaxWorkers)
	require.False(testInstance, configuration.FailFast)
	require.True(testInstance, configuration.IncludeCorpusLinters)
	require.Equal(testInstance, 1, configuration.FailureThreshold)
	require.ElementsMatch(testInstance, lint.SupportedExtensions(), configuration.Extensions)
	require.Equal(testInstance, "table", configuration.OutputFormat)
	require.Equal(testInstance, string(lint.SeverityError), configuration.FailOn)
	require.Contains(testInstance, configuration.LinterOptions, linters.DuplicateLinterIdentifier)
	require.Equal(testInstance, "exact", configuration.LinterOptions[linters.DuplicateLinterIdentifier]["mode"])
}

func TestEmbeddedDefaultsDecodeIntoCommonConfiguration(testInstance *testing.T) {
	var configuration cli.ApplicationCommonConfiguration
	decodeEmbeddedSection(testInstance, embeddedCommonSectionConstant, &configuration)

	require.Equal(testInstance, "info", configuration.LogLevel)
	require.Equal(testInstance, "structured", configuration.LogFormat)
}

func TestEmbeddedDefaultsBuildEveryDefaultLinter(testInstance *testing.T) {
	var configuration audit.CommandConfiguration
	decodeEmbeddedSection(testInstance, embeddedLintSectionConstant, &configuration)

	registry, registryError := linters.NewBuiltinRegistry()
	require.NoError(testInstance, registryError)

	for identifier, options := range configuration.LinterOptions {
		registration, registered := registry.Lookup(identifier)
		require.True(testInstance, registered, identifier)
		_, factoryError := registration.Factory(lint.Options(options))
		require.NoError(testInstance, factoryError, identifier)
	}
}
