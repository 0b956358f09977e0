package linters_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Sir-Sloth-The-Lazy/VisionLint/internal/lint"
	"github.com/Sir-Sloth-The-Lazy/VisionLint/internal/linters"
)

const (
	zeroAreaGIFContentConstant = "GIF89a\x00\x00\x00\x00\x00\x00\x00"
	corruptContentConstant     = "definitely not an image"
)

func TestIntegrityLinterInspectAsset(testInstance *testing.T) {
	validContent := encodeFixturePNG(testInstance, colorfulImage())
	truncatedContent := validContent[:len(validContent)/2]

	testCases := []struct {
		name              string
		identity          string
		content           []byte
		expectedIssueType string
	}{
		{name: "valid_image", identity: "valid.png", content: validContent},
		{name: "empty_file", identity: "empty.png", content: nil, expectedIssueType: "empty_file"},
		{name: "corrupted_header", identity: "corrupt.jpg", content: []byte(corruptContentConstant), expectedIssueType: "corrupted_image"},
		{name: "truncated_data", identity: "truncated.png", content: truncatedContent, expectedIssueType: "truncated_image"},
		{name: "zero_pixel_area", identity: "zero.gif", content: []byte(zeroAreaGIFContentConstant), expectedIssueType: "zero_pixel_area"},
	}

	linter, factoryError := linters.NewIntegrityLinter(nil)
	require.NoError(testInstance, factoryError)
	assetLinter := linter.(lint.AssetLinter)

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf("%d_%s", testCaseIndex, testCase.name), func(subTest *testing.T) {
			subject := newFixtureSubject(testCase.identity, testCase.content)
			defer subject.Release()

			findings, inspectError := assetLinter.InspectAsset(context.Background(), subject)
			require.NoError(subTest, inspectError)
			if len(testCase.expectedIssueType) == 0 {
				require.Empty(subTest, findings)
				return
			}
			require.Len(subTest, findings, 1)
			require.Equal(subTest, testCase.expectedIssueType, findings[0].IssueType())
			require.Equal(subTest, linters.IntegrityLinterIdentifier, findings[0].Linter())
			require.Equal(subTest, testCase.identity, findings[0].Asset())
			require.Equal(subTest, lint.SeverityError, findings[0].Severity())
		})
	}
}

func TestIntegrityLinterApplicability(testInstance *testing.T) {
	linter, factoryError := linters.NewIntegrityLinter(lint.Options{})
	require.NoError(testInstance, factoryError)

	require.True(testInstance, linter.Applicable(newFixtureAsset("photo.JPEG", []byte{1})))
	require.False(testInstance, linter.Applicable(newFixtureAsset("notes.txt", []byte{1})))
}

func TestIntegrityLinterRejectsReleasedSubject(testInstance *testing.T) {
	linter, factoryError := linters.NewIntegrityLinter(nil)
	require.NoError(testInstance, factoryError)

	subject := newFixtureSubject("late.png", encodeFixturePNG(testInstance, grayImage()))
	subject.Release()

	_, inspectError := linter.(lint.AssetLinter).InspectAsset(context.Background(), subject)
	require.ErrorIs(testInstance, inspectError, lint.ErrContentUnavailable)
}
