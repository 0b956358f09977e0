package pathutils_test

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	pathutils "github.com/Sir-Sloth-The-Lazy/VisionLint/internal/utils/path"
)

const (
	testHomeDirectoryConstant    = "/home/annotator"
	testResolverSubtestTemplate  = "%d_%s"
	testDatasetDirectoryConstant = "datasets/coco"
)

func TestDatasetPathResolverExpandHome(testInstance *testing.T) {
	testCases := []struct {
		name         string
		candidate    string
		expectedPath string
	}{
		{name: "bare_tilde", candidate: "~", expectedPath: testHomeDirectoryConstant},
		{name: "tilde_prefix", candidate: "~/" + testDatasetDirectoryConstant, expectedPath: filepath.Join(testHomeDirectoryConstant, testDatasetDirectoryConstant)},
		{name: "other_user_untouched", candidate: "~other/images", expectedPath: "~other/images"},
		{name: "relative_untouched", candidate: testDatasetDirectoryConstant, expectedPath: testDatasetDirectoryConstant},
	}

	resolver := pathutils.NewDatasetPathResolverWithProvider(func() (string, error) {
		return testHomeDirectoryConstant, nil
	})

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(testResolverSubtestTemplate, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expectedPath, resolver.ExpandHome(testCase.candidate))
		})
	}
}

func TestDatasetPathResolverResolve(testInstance *testing.T) {
	resolver := pathutils.NewDatasetPathResolverWithProvider(func() (string, error) {
		return "", errors.New("no home")
	})

	_, emptyError := resolver.Resolve("   ")
	require.ErrorIs(testInstance, emptyError, pathutils.ErrEmptyDatasetPath)

	resolvedPath, resolveError := resolver.Resolve(testDatasetDirectoryConstant)
	require.NoError(testInstance, resolveError)
	require.True(testInstance, filepath.IsAbs(resolvedPath))
	require.Equal(testInstance, filepath.FromSlash(testDatasetDirectoryConstant), resolvedPath[len(resolvedPath)-len(filepath.FromSlash(testDatasetDirectoryConstant)):])

	require.Equal(testInstance, "~/images", resolver.ExpandHome("~/images"))
}
