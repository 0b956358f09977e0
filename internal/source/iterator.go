package source

import (
	"context"
	"io"
	"sync"

	"github.com/Sir-Sloth-The-Lazy/VisionLint/internal/lint"
)

type channelIterator struct {
	assets    chan lint.Asset
	cancel    context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once
}

func (iterator *channelIterator) Next(executionContext context.Context) (lint.Asset, error) {
	select {
	case asset, open := <-iterator.assets:
		if !open {
			return lint.Asset{}, io.EOF
		}
		return asset, nil
	case <-executionContext.Done():
		return lint.Asset{}, executionContext.Err()
	}
}

func (iterator *channelIterator) Close() error {
	iterator.closeOnce.Do(func() {
		iterator.cancel()
		<-iterator.done
	})
	return nil
}

type sliceIterator struct {
	assets []lint.Asset
	index  int
}

func newSliceIterator(assets []lint.Asset) *sliceIterator {
	return &sliceIterator{assets: assets}
}

func (iterator *sliceIterator) Next(executionContext context.Context) (lint.Asset, error) {
	if contextError := executionContext.Err(); contextError != nil {
		return lint.Asset{}, contextError
	}
	if iterator.index >= len(iterator.assets) {
		return lint.Asset{}, io.EOF
	}
	asset := iterator.assets[iterator.index]
	iterator.index++
	return asset, nil
}

func (iterator *sliceIterator) Close() error {
	return nil
}
