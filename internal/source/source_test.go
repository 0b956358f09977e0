package source_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Sir-Sloth-The-Lazy/VisionLint/internal/lint"
)

const fixtureContentConstant = "not really an image"

func writeFixture(testInstance *testing.T, root string, relativePath string, content string) string {
	testInstance.Helper()

	fullPath := filepath.Join(root, filepath.FromSlash(relativePath))
	require.NoError(testInstance, os.MkdirAll(filepath.Dir(fullPath), 0o755))
	require.NoError(testInstance, os.WriteFile(fullPath, []byte(content), 0o644))
	return fullPath
}

func collectIdentities(testInstance *testing.T, source lint.AssetSource) []string {
	testInstance.Helper()

	iterator, enumerationError := source.Assets(context.Background())
	require.NoError(testInstance, enumerationError)
	defer iterator.Close()

	identities := []string{}
	for {
		asset, nextError := iterator.Next(context.Background())
		if errors.Is(nextError, io.EOF) {
			return identities
		}
		require.NoError(testInstance, nextError)
		identities = append(identities, asset.Identity())
	}
}
