package source

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/Sir-Sloth-The-Lazy/VisionLint/internal/lint"
)

const (
	manifestReadErrorTemplate       = "failed to read asset manifest %s: %w"
	manifestParseErrorTemplate      = "failed to parse asset manifest %s: %w"
	manifestEmptyEntryErrorTemplate = "asset manifest %s entry %d has no path"
	manifestStatFailedMessage       = "manifest asset is not accessible"
)

// ManifestDocument is the on-disk manifest layout. Paths are relative to Root, which is
// itself relative to the manifest file's directory when not absolute.
type ManifestDocument struct {
	Root   string   `yaml:"root" json:"root"`
	Assets []string `yaml:"assets" json:"assets"`
}

// Manifest enumerates the assets listed in a YAML or JSON manifest file, in listed order.
type Manifest struct {
	manifestPath string
	logger       *zap.Logger
}

// NewManifest constructs a Manifest source for the provided manifest file.
func NewManifest(manifestPath string, logger *zap.Logger) *Manifest {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manifest{manifestPath: filepath.Clean(manifestPath), logger: logger}
}

// Root returns the directory asset identities are relative to.
func (manifest *Manifest) Root() string {
	document, loadError := manifest.load()
	if loadError != nil {
		return filepath.Dir(manifest.manifestPath)
	}
	return manifest.resolveRoot(document)
}

// Assets parses the manifest and yields its entries lazily, statting each one on demand.
func (manifest *Manifest) Assets(executionContext context.Context) (lint.AssetIterator, error) {
	document, loadError := manifest.load()
	if loadError != nil {
		return nil, loadError
	}

	for entryIndex, entry := range document.Assets {
		if len(strings.TrimSpace(entry)) == 0 {
			return nil, fmt.Errorf(manifestEmptyEntryErrorTemplate, manifest.manifestPath, entryIndex)
		}
	}

	return &manifestIterator{
		root:    manifest.resolveRoot(document),
		entries: document.Assets,
		logger:  manifest.logger,
	}, nil
}

// Open opens the asset content from disk.
func (manifest *Manifest) Open(asset lint.Asset) (io.ReadCloser, error) {
	return os.Open(asset.Path())
}

func (manifest *Manifest) load() (ManifestDocument, error) {
	contentBytes, readError := os.ReadFile(manifest.manifestPath)
	if readError != nil {
		return ManifestDocument{}, fmt.Errorf(manifestReadErrorTemplate, manifest.manifestPath, readError)
	}

	var document ManifestDocument
	if unmarshalError := yaml.Unmarshal(contentBytes, &document); unmarshalError != nil {
		return ManifestDocument{}, fmt.Errorf(manifestParseErrorTemplate, manifest.manifestPath, unmarshalError)
	}
	return document, nil
}

func (manifest *Manifest) resolveRoot(document ManifestDocument) string {
	manifestDirectory := filepath.Dir(manifest.manifestPath)
	root := strings.TrimSpace(document.Root)
	if len(root) == 0 {
		return manifestDirectory
	}
	if filepath.IsAbs(root) {
		return filepath.Clean(root)
	}
	return filepath.Join(manifestDirectory, root)
}

type manifestIterator struct {
	root    string
	entries []string
	index   int
	logger  *zap.Logger
}

func (iterator *manifestIterator) Next(executionContext context.Context) (lint.Asset, error) {
	if contextError := executionContext.Err(); contextError != nil {
		return lint.Asset{}, contextError
	}
	if iterator.index >= len(iterator.entries) {
		return lint.Asset{}, io.EOF
	}

	entry := filepath.FromSlash(strings.TrimSpace(iterator.entries[iterator.index]))
	iterator.index++

	assetPath := entry
	if !filepath.IsAbs(assetPath) {
		assetPath = filepath.Join(iterator.root, entry)
	}

	descriptor := lint.AssetDescriptor{
		Identity: filepath.ToSlash(entry),
		Path:     assetPath,
	}
	assetInfo, statError := os.Stat(assetPath)
	if statError != nil {
		iterator.logger.Warn(manifestStatFailedMessage, zap.String(logFieldPathConstant, assetPath), zap.Error(statError))
	} else {
		descriptor.Size = assetInfo.Size()
		descriptor.ModifiedAt = assetInfo.ModTime()
	}
	return lint.NewAsset(descriptor), nil
}

func (iterator *manifestIterator) Close() error {
	return nil
}
