package lint

import (
	"context"
	"io"
	"iter"
)

// Linter is the capability shared by every check: a stable identifier and an applicability predicate.
// Applicable must be pure; returning false skips the asset without counting a failure.
type Linter interface {
	Identifier() string
	Applicable(asset Asset) bool
}

// AssetLinter inspects assets one at a time and may run concurrently across assets.
type AssetLinter interface {
	Linter
	InspectAsset(executionContext context.Context, subject *Subject) ([]Finding, error)
}

// CorpusLinter inspects the full realized corpus once after the per-asset pass.
type CorpusLinter interface {
	Linter
	InspectCorpus(executionContext context.Context, corpus Corpus) ([]Finding, error)
}

// ContentOpener opens the raw bytes of an asset.
type ContentOpener func(asset Asset) (io.ReadCloser, error)

// Corpus exposes the assets realized by the per-asset pass, in enumeration order.
type Corpus struct {
	assets []Asset
	opener ContentOpener
}

// NewCorpus builds a corpus over the provided assets.
func NewCorpus(assets []Asset, opener ContentOpener) Corpus {
	duplicated := make([]Asset, len(assets))
	copy(duplicated, assets)
	return Corpus{assets: duplicated, opener: opener}
}

// Filter returns a corpus restricted to assets accepted by the predicate.
func (corpus Corpus) Filter(predicate func(Asset) bool) Corpus {
	if predicate == nil {
		return corpus
	}
	filtered := make([]Asset, 0, len(corpus.assets))
	for _, asset := range corpus.assets {
		if predicate(asset) {
			filtered = append(filtered, asset)
		}
	}
	return Corpus{assets: filtered, opener: corpus.opener}
}

// All iterates over the corpus assets in enumeration order.
func (corpus Corpus) All() iter.Seq[Asset] {
	return func(yield func(Asset) bool) {
		for _, asset := range corpus.assets {
			if !yield(asset) {
				return
			}
		}
	}
}

// Len returns the number of assets in the corpus.
func (corpus Corpus) Len() int {
	return len(corpus.assets)
}

// Open opens the content of one corpus asset.
func (corpus Corpus) Open(asset Asset) (io.ReadCloser, error) {
	if corpus.opener == nil {
		return nil, ErrContentUnavailable
	}
	return corpus.opener(asset)
}
