package lint

import (
	"context"
	"io"
	"path"
	"path/filepath"
	"strings"
	"time"
)

const (
	formatJPEGConstant = "jpeg"
	formatPNGConstant  = "png"
	formatGIFConstant  = "gif"
	formatBMPConstant  = "bmp"
	formatTIFFConstant = "tiff"
	formatWebPConstant = "webp"
)

var extensionFormats = map[string]string{
	".jpg":  formatJPEGConstant,
	".jpeg": formatJPEGConstant,
	".png":  formatPNGConstant,
	".gif":  formatGIFConstant,
	".bmp":  formatBMPConstant,
	".tif":  formatTIFFConstant,
	".tiff": formatTIFFConstant,
	".webp": formatWebPConstant,
}

// Asset describes one dataset member. Values are immutable once enumerated.
type Asset struct {
	identity   string
	path       string
	size       int64
	format     string
	modifiedAt time.Time
}

// AssetDescriptor carries the attributes used to construct an Asset.
type AssetDescriptor struct {
	Identity   string
	Path       string
	Size       int64
	ModifiedAt time.Time
}

// NewAsset builds an Asset, deriving the declared format from the file extension.
// An empty identity falls back to the slash-separated path.
func NewAsset(descriptor AssetDescriptor) Asset {
	identity := strings.TrimSpace(descriptor.Identity)
	if len(identity) == 0 {
		identity = filepath.ToSlash(descriptor.Path)
	}
	return Asset{
		identity:   identity,
		path:       descriptor.Path,
		size:       descriptor.Size,
		format:     DeclaredFormat(descriptor.Path),
		modifiedAt: descriptor.ModifiedAt,
	}
}

// Identity returns the stable identifier used to reference the asset in findings.
func (asset Asset) Identity() string {
	return asset.identity
}

// Path returns the filesystem location of the asset.
func (asset Asset) Path() string {
	return asset.path
}

// Size returns the byte size observed during enumeration.
func (asset Asset) Size() int64 {
	return asset.size
}

// Format returns the format declared by the file extension, or an empty string when unknown.
func (asset Asset) Format() string {
	return asset.format
}

// ModifiedAt returns the modification time observed during enumeration.
func (asset Asset) ModifiedAt() time.Time {
	return asset.modifiedAt
}

// DeclaredFormat maps a file name to the image format its extension claims.
func DeclaredFormat(fileName string) string {
	return extensionFormats[strings.ToLower(path.Ext(filepath.ToSlash(fileName)))]
}

// SupportedExtensions lists the file extensions VisionLint recognizes as images.
func SupportedExtensions() []string {
	return []string{".jpg", ".jpeg", ".png", ".gif", ".bmp", ".tif", ".tiff", ".webp"}
}

// AssetIterator yields assets lazily. Next returns io.EOF once the sequence is exhausted.
type AssetIterator interface {
	Next(executionContext context.Context) (Asset, error)
	Close() error
}

// AssetSource enumerates dataset members and opens their content.
// Assets may be called once per run; it fails when the dataset cannot be enumerated at all.
type AssetSource interface {
	Assets(executionContext context.Context) (AssetIterator, error)
	Open(asset Asset) (io.ReadCloser, error)
}
