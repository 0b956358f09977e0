package audit_test

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	fixtureImageWidthConstant   = 16
	fixtureImageHeightConstant  = 12
	validImageFileNameConstant  = "a.png"
	emptyImageFileNameConstant  = "b.png"
	copiedImageFileNameConstant = "c.png"
)

func encodeFixtureImage(testInstance *testing.T, seed uint8) []byte {
	testInstance.Helper()

	fixture := image.NewRGBA(image.Rect(0, 0, fixtureImageWidthConstant, fixtureImageHeightConstant))
	for y := 0; y < fixtureImageHeightConstant; y++ {
		for x := 0; x < fixtureImageWidthConstant; x++ {
			fixture.Set(x, y, color.RGBA{R: uint8(x*16) + seed, G: uint8(y*20) ^ seed, B: seed, A: 255})
		}
	}
	var encoded bytes.Buffer
	require.NoError(testInstance, png.Encode(&encoded, fixture))
	return encoded.Bytes()
}

func writeFixtureFile(testInstance *testing.T, directory string, name string, content []byte) string {
	testInstance.Helper()

	filePath := filepath.Join(directory, name)
	require.NoError(testInstance, os.WriteFile(filePath, content, 0o644))
	return filePath
}

// createDirtyDataset writes a valid image, a zero-byte image, and an exact copy of the first.
func createDirtyDataset(testInstance *testing.T) string {
	testInstance.Helper()

	datasetDirectory := testInstance.TempDir()
	content := encodeFixtureImage(testInstance, 7)
	writeFixtureFile(testInstance, datasetDirectory, validImageFileNameConstant, content)
	writeFixtureFile(testInstance, datasetDirectory, emptyImageFileNameConstant, nil)
	writeFixtureFile(testInstance, datasetDirectory, copiedImageFileNameConstant, content)
	return datasetDirectory
}

func createCleanDataset(testInstance *testing.T) string {
	testInstance.Helper()

	datasetDirectory := testInstance.TempDir()
	writeFixtureFile(testInstance, datasetDirectory, validImageFileNameConstant, encodeFixtureImage(testInstance, 7))
	writeFixtureFile(testInstance, datasetDirectory, copiedImageFileNameConstant, encodeFixtureImage(testInstance, 91))
	return datasetDirectory
}

// createDuplicateOnlyDataset contains two identical valid images and nothing else.
func createDuplicateOnlyDataset(testInstance *testing.T) string {
	testInstance.Helper()

	datasetDirectory := testInstance.TempDir()
	content := encodeFixtureImage(testInstance, 33)
	writeFixtureFile(testInstance, datasetDirectory, validImageFileNameConstant, content)
	writeFixtureFile(testInstance, datasetDirectory, copiedImageFileNameConstant, content)
	return datasetDirectory
}
