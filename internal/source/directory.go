package source

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/Sir-Sloth-The-Lazy/VisionLint/internal/lint"
)

const (
	hiddenEntryPrefixConstant          = "."
	thumbnailDatabaseFileNameConstant  = "Thumbs.db"
	defaultDirectoryBufferSizeConstant = 64
	rootUnavailableErrorTemplate       = "dataset root %s is not readable: %w"
	walkEntrySkippedMessageConstant    = "skipping unreadable dataset entry"
	hiddenEntrySkippedMessageConstant  = "skipping hidden or system entry"
	logFieldPathConstant               = "path"
	currentDirectoryPathConstant       = "."
)

// DirectoryOptions configures a Directory source.
type DirectoryOptions struct {
	// Extensions restricts enumeration to these file extensions; empty means lint.SupportedExtensions.
	Extensions []string
	// BufferSize bounds how many enumerated assets may wait ahead of the consumer.
	BufferSize int
	Logger     *zap.Logger
}

// Directory enumerates image files beneath a root directory, or a single image file.
type Directory struct {
	root       string
	extensions map[string]struct{}
	bufferSize int
	logger     *zap.Logger
}

// NewDirectory constructs a Directory source rooted at the provided path.
func NewDirectory(root string, options DirectoryOptions) *Directory {
	extensions := options.Extensions
	if len(extensions) == 0 {
		extensions = lint.SupportedExtensions()
	}
	extensionSet := make(map[string]struct{}, len(extensions))
	for _, extension := range extensions {
		normalized := strings.ToLower(strings.TrimSpace(extension))
		if len(normalized) == 0 {
			continue
		}
		if !strings.HasPrefix(normalized, ".") {
			normalized = "." + normalized
		}
		extensionSet[normalized] = struct{}{}
	}

	bufferSize := options.BufferSize
	if bufferSize <= 0 {
		bufferSize = defaultDirectoryBufferSizeConstant
	}

	logger := options.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Directory{
		root:       filepath.Clean(root),
		extensions: extensionSet,
		bufferSize: bufferSize,
		logger:     logger,
	}
}

// Root returns the dataset root.
func (directory *Directory) Root() string {
	return directory.root
}

// Assets verifies the root is readable and starts a lazy walk.
func (directory *Directory) Assets(executionContext context.Context) (lint.AssetIterator, error) {
	rootInfo, statError := os.Stat(directory.root)
	if statError != nil {
		return nil, fmt.Errorf(rootUnavailableErrorTemplate, directory.root, statError)
	}

	if !rootInfo.IsDir() {
		assets := make([]lint.Asset, 0, 1)
		if directory.accepts(rootInfo.Name()) {
			assets = append(assets, lint.NewAsset(lint.AssetDescriptor{
				Identity:   rootInfo.Name(),
				Path:       directory.root,
				Size:       rootInfo.Size(),
				ModifiedAt: rootInfo.ModTime(),
			}))
		}
		return newSliceIterator(assets), nil
	}

	rootHandle, openError := os.Open(directory.root)
	if openError != nil {
		return nil, fmt.Errorf(rootUnavailableErrorTemplate, directory.root, openError)
	}
	if _, readError := rootHandle.ReadDir(1); readError != nil && readError != io.EOF {
		rootHandle.Close()
		return nil, fmt.Errorf(rootUnavailableErrorTemplate, directory.root, readError)
	}
	rootHandle.Close()

	walkContext, cancelWalk := context.WithCancel(executionContext)
	iterator := &channelIterator{
		assets: make(chan lint.Asset, directory.bufferSize),
		cancel: cancelWalk,
		done:   make(chan struct{}),
	}
	go directory.walk(walkContext, iterator)
	return iterator, nil
}

// Open opens the asset content from disk.
func (directory *Directory) Open(asset lint.Asset) (io.ReadCloser, error) {
	return os.Open(asset.Path())
}

func (directory *Directory) walk(walkContext context.Context, iterator *channelIterator) {
	defer close(iterator.done)
	defer close(iterator.assets)

	walkError := filepath.WalkDir(directory.root, func(path string, directoryEntry fs.DirEntry, walkError error) error {
		if walkContext.Err() != nil {
			return walkContext.Err()
		}

		if walkError != nil {
			directory.logger.Warn(walkEntrySkippedMessageConstant, zap.String(logFieldPathConstant, path), zap.Error(walkError))
			if directoryEntry != nil && directoryEntry.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if path == directory.root {
			return nil
		}

		if isHiddenOrSystemEntry(directoryEntry.Name()) {
			directory.logger.Debug(hiddenEntrySkippedMessageConstant, zap.String(logFieldPathConstant, path))
			if directoryEntry.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if directoryEntry.IsDir() || !directoryEntry.Type().IsRegular() {
			return nil
		}

		if !directory.accepts(directoryEntry.Name()) {
			return nil
		}

		descriptor := lint.AssetDescriptor{
			Identity: directory.identityFor(path),
			Path:     path,
		}
		if entryInfo, infoError := directoryEntry.Info(); infoError == nil {
			descriptor.Size = entryInfo.Size()
			descriptor.ModifiedAt = entryInfo.ModTime()
		}

		select {
		case iterator.assets <- lint.NewAsset(descriptor):
			return nil
		case <-walkContext.Done():
			return walkContext.Err()
		}
	})
	if walkError != nil && walkContext.Err() == nil {
		directory.logger.Warn(walkEntrySkippedMessageConstant, zap.String(logFieldPathConstant, directory.root), zap.Error(walkError))
	}
}

func (directory *Directory) accepts(fileName string) bool {
	_, accepted := directory.extensions[strings.ToLower(filepath.Ext(fileName))]
	return accepted
}

func (directory *Directory) identityFor(path string) string {
	relativePath, relativeError := filepath.Rel(directory.root, path)
	if relativeError != nil || relativePath == currentDirectoryPathConstant || strings.HasPrefix(relativePath, "..") {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(relativePath)
}

func isHiddenOrSystemEntry(name string) bool {
	return strings.HasPrefix(name, hiddenEntryPrefixConstant) || name == thumbnailDatabaseFileNameConstant
}
