package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Sir-Sloth-The-Lazy/VisionLint/internal/audit"
	"github.com/Sir-Sloth-The-Lazy/VisionLint/internal/report"
)

const (
	testApplicationNameConstant         = "visionlint"
	testConfigurationFileNameConstant   = "config.yaml"
	testIntegrityOnlyConfiguration      = "lint:\n  linters:\n    - integrity\n"
	testInvalidLogFormatConfiguration   = "common:\n  log_format: fancy\n"
	testUnreadableImageFileNameConstant = "broken.png"
	testUnreadableImageContentConstant  = "definitely not a png"
	testVersionSentinelConstant         = "version-exit"
)

func prepareIsolatedEnvironment(testInstance *testing.T, arguments ...string) {
	testInstance.Helper()

	testInstance.Setenv("XDG_CONFIG_HOME", testInstance.TempDir())
	testInstance.Setenv("HOME", testInstance.TempDir())

	originalArguments := os.Args
	testInstance.Cleanup(func() {
		os.Args = originalArguments
	})
	os.Args = append([]string{testApplicationNameConstant}, arguments...)
}

func newCapturedApplication() (*Application, *bytes.Buffer) {
	application := NewApplication()
	outputBuffer := &bytes.Buffer{}
	application.rootCommand.SetOut(outputBuffer)
	application.rootCommand.SetErr(&bytes.Buffer{})
	return application, outputBuffer
}

func writeTestFile(testInstance *testing.T, directory string, name string, content string) string {
	testInstance.Helper()

	filePath := filepath.Join(directory, name)
	require.NoError(testInstance, os.WriteFile(filePath, []byte(content), 0o644))
	return filePath
}

func TestApplicationVersionFlagPrintsVersionAndExits(testInstance *testing.T) {
	prepareIsolatedEnvironment(testInstance, "--version")

	application, outputBuffer := newCapturedApplication()
	application.versionResolver = func(context.Context) string {
		return "2.0.0"
	}

	exitCode := -1
	application.exitFunction = func(code int) {
		exitCode = code
		panic(testVersionSentinelConstant)
	}

	require.PanicsWithValue(testInstance, testVersionSentinelConstant, func() {
		_ = application.Execute()
	})
	require.Equal(testInstance, 0, exitCode)
	require.Equal(testInstance, "VisionLint v2.0.0\n", outputBuffer.String())
}

func TestApplicationWithoutSubcommandShowsHelp(testInstance *testing.T) {
	prepareIsolatedEnvironment(testInstance)

	application, outputBuffer := newCapturedApplication()
	require.NoError(testInstance, application.Execute())
	require.Contains(testInstance, outputBuffer.String(), "audit")
	require.Contains(testInstance, outputBuffer.String(), "linters")
}

func TestApplicationAuditHonorsConfigurationFileAndToggleArguments(testInstance *testing.T) {
	datasetDirectory := testInstance.TempDir()
	writeTestFile(testInstance, datasetDirectory, testUnreadableImageFileNameConstant, testUnreadableImageContentConstant)
	configurationPath := writeTestFile(testInstance, testInstance.TempDir(), testConfigurationFileNameConstant, testIntegrityOnlyConfiguration)

	prepareIsolatedEnvironment(testInstance,
		"--config", configurationPath,
		"audit", datasetDirectory,
		"--format", "json",
		"--fail-fast", "no",
		"--corpus", "off",
	)

	application, outputBuffer := newCapturedApplication()
	executionError := application.Execute()
	require.ErrorIs(testInstance, executionError, audit.ErrAuditFailed)

	var document report.Document
	require.NoError(testInstance, json.Unmarshal(outputBuffer.Bytes(), &document))
	require.Len(testInstance, document.Run.Linters, 1)
	require.Equal(testInstance, "integrity", document.Run.Linters[0].Identifier)
	require.Len(testInstance, document.Run.Findings, 1)
	require.Equal(testInstance, testUnreadableImageFileNameConstant, document.Run.Findings[0].Asset)
	require.Equal(testInstance, "corrupted_image", document.Run.Findings[0].IssueType)

	require.False(testInstance, application.configuration.Lint.FailFast)
	require.Equal(testInstance, configurationPath, application.configurationMetadata.ConfigFileUsed)
}

func TestApplicationEnvironmentOverridesLogFormat(testInstance *testing.T) {
	prepareIsolatedEnvironment(testInstance, "linters")
	testInstance.Setenv("VISIONLINT_COMMON_LOG_FORMAT", "console")

	application, outputBuffer := newCapturedApplication()
	require.NoError(testInstance, application.Execute())
	require.Equal(testInstance, "console", application.configuration.Common.LogFormat)
	require.NotNil(testInstance, application.consoleEventLogger)
	require.True(testInstance, strings.HasPrefix(outputBuffer.String(), "IDENTIFIER"))
}

func TestApplicationRejectsInvalidLogFormat(testInstance *testing.T) {
	configurationPath := writeTestFile(testInstance, testInstance.TempDir(), testConfigurationFileNameConstant, testInvalidLogFormatConfiguration)
	prepareIsolatedEnvironment(testInstance, "--config", configurationPath, "linters")

	application, _ := newCapturedApplication()
	executionError := application.Execute()
	require.Error(testInstance, executionError)
	require.Contains(testInstance, executionError.Error(), "unsupported log format")
}
