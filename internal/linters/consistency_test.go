package linters_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Sir-Sloth-The-Lazy/VisionLint/internal/lint"
	"github.com/Sir-Sloth-The-Lazy/VisionLint/internal/linters"
)

func TestConsistencyLinterInspectAsset(testInstance *testing.T) {
	colorfulContent := encodeFixturePNG(testInstance, colorfulImage())
	grayContent := encodeFixturePNG(testInstance, grayImage())
	grayRGBContent := encodeFixturePNG(testInstance, gradientImage(false, 0))

	testCases := []struct {
		name               string
		expectedMode       string
		identity           string
		content            []byte
		expectedIssueTypes []string
	}{
		{name: "rgb_matches_default", identity: "color.png", content: colorfulContent},
		{name: "grayscale_against_rgb", identity: "gray.png", content: grayContent, expectedIssueTypes: []string{"mode_mismatch"}},
		{name: "rgb_against_grayscale", expectedMode: "grayscale", identity: "color.png", content: colorfulContent, expectedIssueTypes: []string{"mode_mismatch"}},
		{name: "grayscale_accepted_by_any", expectedMode: "any", identity: "gray.png", content: grayContent},
		{name: "grayscale_stored_as_rgb", expectedMode: "any", identity: "gradient.png", content: grayRGBContent, expectedIssueTypes: []string{"grayscale_as_rgb"}},
		{name: "declared_format_mismatch", identity: "color.jpg", content: colorfulContent, expectedIssueTypes: []string{"format_mismatch"}},
		{name: "mismatch_and_mode", expectedMode: "L", identity: "color.bmp", content: colorfulContent, expectedIssueTypes: []string{"format_mismatch", "mode_mismatch"}},
		{name: "undecodable_content_ignored", identity: "broken.png", content: []byte(corruptContentConstant)},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf("%d_%s", testCaseIndex, testCase.name), func(subTest *testing.T) {
			options := lint.Options{}
			if len(testCase.expectedMode) > 0 {
				options["expected_mode"] = testCase.expectedMode
			}
			linter, factoryError := linters.NewConsistencyLinter(options)
			require.NoError(subTest, factoryError)

			subject := newFixtureSubject(testCase.identity, testCase.content)
			defer subject.Release()

			findings, inspectError := linter.(lint.AssetLinter).InspectAsset(context.Background(), subject)
			require.NoError(subTest, inspectError)
			if len(testCase.expectedIssueTypes) == 0 {
				require.Empty(subTest, findings)
				return
			}
			require.Equal(subTest, testCase.expectedIssueTypes, findingIssueTypes(findings))
			for _, finding := range findings {
				require.Equal(subTest, lint.SeverityWarning, finding.Severity())
				require.Equal(subTest, testCase.identity, finding.Asset())
			}
		})
	}
}

func TestConsistencyLinterFormatMismatchPayload(testInstance *testing.T) {
	linter, factoryError := linters.NewConsistencyLinter(nil)
	require.NoError(testInstance, factoryError)

	subject := newFixtureSubject("color.webp", encodeFixturePNG(testInstance, colorfulImage()))
	defer subject.Release()

	findings, inspectError := linter.(lint.AssetLinter).InspectAsset(context.Background(), subject)
	require.NoError(testInstance, inspectError)
	require.Len(testInstance, findings, 1)
	require.Equal(testInstance, "webp", findings[0].Payload()["declared_format"])
	require.Equal(testInstance, "png", findings[0].Payload()["decoded_format"])
}

func TestParseColorMode(testInstance *testing.T) {
	testCases := []struct {
		input         string
		expectedMode  linters.ColorMode
		expectedError error
	}{
		{input: "RGB", expectedMode: linters.ColorModeRGB},
		{input: " grayscale ", expectedMode: linters.ColorModeGrayscale},
		{input: "gray", expectedMode: linters.ColorModeGrayscale},
		{input: "any", expectedMode: linters.ColorModeAny},
		{input: "cmyk", expectedError: linters.ErrInvalidColorMode},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf("%d_%s", testCaseIndex, testCase.input), func(subTest *testing.T) {
			mode, parseError := linters.ParseColorMode(testCase.input)
			if testCase.expectedError != nil {
				require.ErrorIs(subTest, parseError, testCase.expectedError)
				return
			}
			require.NoError(subTest, parseError)
			require.Equal(subTest, testCase.expectedMode, mode)
		})
	}
}

func TestNewConsistencyLinterRejectsInvalidOptions(testInstance *testing.T) {
	_, invalidModeError := linters.NewConsistencyLinter(lint.Options{"expected_mode": "sepia"})
	require.ErrorIs(testInstance, invalidModeError, linters.ErrInvalidColorMode)

	_, wrongTypeError := linters.NewConsistencyLinter(lint.Options{"expected_mode": 3})
	require.Error(testInstance, wrongTypeError)
}
