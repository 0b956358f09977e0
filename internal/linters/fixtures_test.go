package linters_test

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Sir-Sloth-The-Lazy/VisionLint/internal/lint"
)

const (
	fixtureWidthConstant  = 72
	fixtureHeightConstant = 32
	gradientStepConstant  = 3
)

func encodeFixturePNG(testInstance *testing.T, source image.Image) []byte {
	testInstance.Helper()
	var buffer bytes.Buffer
	require.NoError(testInstance, png.Encode(&buffer, source))
	return buffer.Bytes()
}

// gradientImage brightens from left to right, or darkens when descending is set.
func gradientImage(descending bool, offset uint8) *image.RGBA {
	canvas := image.NewRGBA(image.Rect(0, 0, fixtureWidthConstant, fixtureHeightConstant))
	for y := 0; y < fixtureHeightConstant; y++ {
		for x := 0; x < fixtureWidthConstant; x++ {
			value := uint8(x*gradientStepConstant) + offset
			if descending {
				value = uint8((fixtureWidthConstant-1-x)*gradientStepConstant) + offset
			}
			canvas.SetRGBA(x, y, color.RGBA{R: value, G: value, B: value, A: 255})
		}
	}
	return canvas
}

func colorfulImage() *image.RGBA {
	canvas := image.NewRGBA(image.Rect(0, 0, fixtureWidthConstant, fixtureHeightConstant))
	for y := 0; y < fixtureHeightConstant; y++ {
		for x := 0; x < fixtureWidthConstant; x++ {
			canvas.SetRGBA(x, y, color.RGBA{R: uint8(x * 3), G: uint8(y * 7), B: uint8((x + y) % 251), A: 255})
		}
	}
	return canvas
}

func grayImage() *image.Gray {
	canvas := image.NewGray(image.Rect(0, 0, fixtureWidthConstant, fixtureHeightConstant))
	for y := 0; y < fixtureHeightConstant; y++ {
		for x := 0; x < fixtureWidthConstant; x++ {
			canvas.SetGray(x, y, color.Gray{Y: uint8((x * y) % 256)})
		}
	}
	return canvas
}

func newFixtureAsset(identity string, content []byte) lint.Asset {
	return lint.NewAsset(lint.AssetDescriptor{Identity: identity, Path: identity, Size: int64(len(content))})
}

func newFixtureSubject(identity string, content []byte) *lint.Subject {
	return lint.NewSubject(newFixtureAsset(identity, content), content, nil)
}

type fixtureEntry struct {
	identity string
	content  []byte
}

// newFixtureCorpus builds a corpus whose opener serves the entries from memory.
func newFixtureCorpus(entries ...fixtureEntry) lint.Corpus {
	contents := make(map[string][]byte, len(entries))
	assets := make([]lint.Asset, 0, len(entries))
	for _, entry := range entries {
		contents[entry.identity] = entry.content
		assets = append(assets, newFixtureAsset(entry.identity, entry.content))
	}
	return lint.NewCorpus(assets, func(asset lint.Asset) (io.ReadCloser, error) {
		content, exists := contents[asset.Identity()]
		if !exists {
			return nil, fmt.Errorf("missing fixture %s", asset.Identity())
		}
		return io.NopCloser(bytes.NewReader(content)), nil
	})
}

func findingIssueTypes(findings []lint.Finding) []string {
	issueTypes := make([]string, 0, len(findings))
	for _, finding := range findings {
		issueTypes = append(issueTypes, finding.IssueType())
	}
	return issueTypes
}
