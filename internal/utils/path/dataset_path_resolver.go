package pathutils

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const (
	tildeSymbolConstant             = "~"
	tildeForwardSlashPrefixConstant = "~/"
	resolvePathErrorTemplate        = "resolve dataset path %q: %w"
)

var tildeWithPathSeparatorPrefix = tildeSymbolConstant + string(os.PathSeparator)

// ErrEmptyDatasetPath reports a blank dataset path argument.
var ErrEmptyDatasetPath = errors.New("dataset path is required")

// HomeDirectoryProvider resolves the current user's home directory path.
type HomeDirectoryProvider func() (string, error)

// DatasetPathResolver expands home shortcuts and converts dataset paths to absolute form.
type DatasetPathResolver struct {
	homeDirectoryProvider HomeDirectoryProvider
	homeDirectory         string
	homeDirectoryError    error
	initializationGuard   sync.Once
}

// NewDatasetPathResolver constructs a resolver using the operating system home directory lookup.
func NewDatasetPathResolver() *DatasetPathResolver {
	return NewDatasetPathResolverWithProvider(os.UserHomeDir)
}

// NewDatasetPathResolverWithProvider constructs a resolver with a custom home directory provider.
func NewDatasetPathResolverWithProvider(provider HomeDirectoryProvider) *DatasetPathResolver {
	if provider == nil {
		provider = os.UserHomeDir
	}
	return &DatasetPathResolver{homeDirectoryProvider: provider}
}

// Resolve trims, expands, and absolutizes the candidate path.
func (resolver *DatasetPathResolver) Resolve(candidatePath string) (string, error) {
	trimmedPath := strings.TrimSpace(candidatePath)
	if len(trimmedPath) == 0 {
		return "", ErrEmptyDatasetPath
	}
	absolutePath, absoluteError := filepath.Abs(resolver.ExpandHome(trimmedPath))
	if absoluteError != nil {
		return "", fmt.Errorf(resolvePathErrorTemplate, candidatePath, absoluteError)
	}
	return absolutePath, nil
}

// ExpandHome resolves a leading tilde to the user's home directory. Paths such as "~other" are left untouched.
func (resolver *DatasetPathResolver) ExpandHome(candidatePath string) string {
	if resolver == nil || !strings.HasPrefix(candidatePath, tildeSymbolConstant) {
		return candidatePath
	}

	resolvedHomeDirectory := resolver.resolveHomeDirectory()
	if len(resolvedHomeDirectory) == 0 {
		return candidatePath
	}

	switch {
	case candidatePath == tildeSymbolConstant:
		return resolvedHomeDirectory
	case strings.HasPrefix(candidatePath, tildeForwardSlashPrefixConstant):
		return filepath.Join(resolvedHomeDirectory, strings.TrimPrefix(candidatePath, tildeForwardSlashPrefixConstant))
	case strings.HasPrefix(candidatePath, tildeWithPathSeparatorPrefix):
		return filepath.Join(resolvedHomeDirectory, strings.TrimPrefix(candidatePath, tildeWithPathSeparatorPrefix))
	default:
		return candidatePath
	}
}

func (resolver *DatasetPathResolver) resolveHomeDirectory() string {
	resolver.initializationGuard.Do(func() {
		resolver.homeDirectory, resolver.homeDirectoryError = resolver.homeDirectoryProvider()
	})
	if resolver.homeDirectoryError != nil {
		return ""
	}
	return resolver.homeDirectory
}
