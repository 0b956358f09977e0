package lint

import (
	"bytes"
	"errors"
	"image"
	"sync"

	// Decoders for every supported format register themselves with the image package.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrContentUnavailable reports that asset content was requested after release or without an opener.
var ErrContentUnavailable = errors.New("asset content unavailable")

// Subject is the transient view of one asset handed to per-asset linters.
// It is owned by a single worker and released once every linter has finished with the asset.
type Subject struct {
	asset   Asset
	content []byte
	release func()

	configOnce   sync.Once
	config       image.Config
	configFormat string
	configError  error

	decodeOnce    sync.Once
	decoded       image.Image
	decodedFormat string
	decodeError   error

	releaseOnce sync.Once
	released    bool
}

// NewSubject wraps the raw content of an asset. release, when non-nil, runs once on Release.
func NewSubject(asset Asset, content []byte, release func()) *Subject {
	return &Subject{asset: asset, content: content, release: release}
}

// Asset returns the asset being inspected.
func (subject *Subject) Asset() Asset {
	return subject.asset
}

// Content returns the raw bytes. The slice must not be retained after the inspection returns.
func (subject *Subject) Content() ([]byte, error) {
	if subject.released {
		return nil, ErrContentUnavailable
	}
	return subject.content, nil
}

// Config decodes the image header once and caches the result.
func (subject *Subject) Config() (image.Config, string, error) {
	subject.configOnce.Do(func() {
		if subject.released {
			subject.configError = ErrContentUnavailable
			return
		}
		subject.config, subject.configFormat, subject.configError = image.DecodeConfig(bytes.NewReader(subject.content))
	})
	return subject.config, subject.configFormat, subject.configError
}

// Image decodes the full image once and caches the result for the remaining linters.
func (subject *Subject) Image() (image.Image, string, error) {
	subject.decodeOnce.Do(func() {
		if subject.released {
			subject.decodeError = ErrContentUnavailable
			return
		}
		subject.decoded, subject.decodedFormat, subject.decodeError = image.Decode(bytes.NewReader(subject.content))
	})
	return subject.decoded, subject.decodedFormat, subject.decodeError
}

// Release drops the content and decoded image and hands the buffer back to its owner.
func (subject *Subject) Release() {
	subject.releaseOnce.Do(func() {
		subject.released = true
		subject.content = nil
		subject.decoded = nil
		if subject.release != nil {
			subject.release()
		}
	})
}
