package linters

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/Sir-Sloth-The-Lazy/VisionLint/internal/lint"
)

// ColorMode is the color layout a dataset is expected to use.
type ColorMode string

// Supported color modes.
const (
	ColorModeRGB       ColorMode = "rgb"
	ColorModeGrayscale ColorMode = "grayscale"
	ColorModeAny       ColorMode = "any"
)

const (
	expectedModeOptionKeyConstant = "expected_mode"

	issueTypeModeMismatchConstant   = "mode_mismatch"
	issueTypeGrayscaleAsRGBConstant = "grayscale_as_rgb"
	issueTypeFormatMismatchConstant = "format_mismatch"

	modeMismatchMessageTemplate    = "image color mode %s differs from expected %s"
	grayscaleAsRGBMessageConstant  = "image is encoded as RGB but all pixels are grayscale (R=G=B)"
	formatMismatchMessageTemplate  = "file extension declares %s but content is %s"
	payloadExpectedModeKeyConstant = "expected_mode"
	payloadActualModeKeyConstant   = "actual_mode"
	payloadDeclaredKeyConstant     = "declared_format"
	payloadDecodedKeyConstant      = "decoded_format"
	invalidColorModeTemplate       = "%w: %q (expected rgb, grayscale, or any)"
)

// ErrInvalidColorMode reports an unsupported expected_mode option.
var ErrInvalidColorMode = errors.New("invalid expected_mode option")

// ConsistencyLinter reports images whose color layout or container format disagrees with the dataset.
type ConsistencyLinter struct {
	expectedMode ColorMode
}

// NewConsistencyLinter constructs the consistency linter from its options.
func NewConsistencyLinter(options lint.Options) (lint.Linter, error) {
	rawMode, provided, optionError := options.String(expectedModeOptionKeyConstant)
	if optionError != nil {
		return nil, optionError
	}
	expectedMode := ColorModeRGB
	if provided {
		parsedMode, parseError := ParseColorMode(rawMode)
		if parseError != nil {
			return nil, parseError
		}
		expectedMode = parsedMode
	}
	return &ConsistencyLinter{expectedMode: expectedMode}, nil
}

// ParseColorMode converts textual input into a ColorMode.
func ParseColorMode(raw string) (ColorMode, error) {
	switch ColorMode(strings.ToLower(strings.TrimSpace(raw))) {
	case ColorModeRGB:
		return ColorModeRGB, nil
	case ColorModeGrayscale, "gray", "l":
		return ColorModeGrayscale, nil
	case ColorModeAny:
		return ColorModeAny, nil
	default:
		return "", fmt.Errorf(invalidColorModeTemplate, ErrInvalidColorMode, raw)
	}
}

// Identifier returns the registry identifier.
func (*ConsistencyLinter) Identifier() string {
	return ConsistencyLinterIdentifier
}

// Applicable accepts assets with a supported image extension.
func (*ConsistencyLinter) Applicable(asset lint.Asset) bool {
	return applicableImage(asset)
}

// InspectAsset compares the decoded image against the expected mode and the declared format.
// Undecodable content yields no findings; integrity reports it.
func (linter *ConsistencyLinter) InspectAsset(_ context.Context, subject *lint.Subject) ([]lint.Finding, error) {
	decoded, decodedFormat, decodeError := subject.Image()
	if decodeError != nil {
		return nil, nil
	}

	asset := subject.Asset()
	var findings []lint.Finding

	declaredFormat := asset.Format()
	if len(declaredFormat) > 0 && len(decodedFormat) > 0 && declaredFormat != decodedFormat {
		findings = append(findings, linter.finding(asset, issueTypeFormatMismatchConstant,
			fmt.Sprintf(formatMismatchMessageTemplate, declaredFormat, decodedFormat),
			lint.Payload{payloadDeclaredKeyConstant: declaredFormat, payloadDecodedKeyConstant: decodedFormat},
		))
	}

	encodedGrayscale := isGrayscaleModel(decoded)
	if !encodedGrayscale && hasOnlyGrayPixels(decoded) {
		findings = append(findings, linter.finding(asset, issueTypeGrayscaleAsRGBConstant, grayscaleAsRGBMessageConstant, nil))
		return findings, nil
	}

	actualMode := ColorModeRGB
	if encodedGrayscale {
		actualMode = ColorModeGrayscale
	}
	if linter.expectedMode != ColorModeAny && linter.expectedMode != actualMode {
		findings = append(findings, linter.finding(asset, issueTypeModeMismatchConstant,
			fmt.Sprintf(modeMismatchMessageTemplate, actualMode, linter.expectedMode),
			lint.Payload{payloadExpectedModeKeyConstant: string(linter.expectedMode), payloadActualModeKeyConstant: string(actualMode)},
		))
	}
	return findings, nil
}

func (*ConsistencyLinter) finding(asset lint.Asset, issueType string, message string, payload lint.Payload) lint.Finding {
	return lint.NewFinding(lint.FindingDescriptor{
		Linter:    ConsistencyLinterIdentifier,
		Asset:     asset.Identity(),
		Severity:  lint.SeverityWarning,
		IssueType: issueType,
		Message:   message,
		Payload:   payload,
	})
}

func isGrayscaleModel(decoded image.Image) bool {
	switch model := decoded.ColorModel(); model {
	case color.GrayModel, color.Gray16Model:
		return true
	default:
		palette, isPalette := model.(color.Palette)
		if !isPalette {
			return false
		}
		for _, entry := range palette {
			if !isGrayColor(entry) {
				return false
			}
		}
		return true
	}
}

func hasOnlyGrayPixels(decoded image.Image) bool {
	bounds := decoded.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if !isGrayColor(decoded.At(x, y)) {
				return false
			}
		}
	}
	return true
}

func isGrayColor(pixel color.Color) bool {
	red, green, blue, _ := pixel.RGBA()
	return red == green && green == blue
}
