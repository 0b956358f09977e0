package linters

import (
	"context"
	"fmt"

	"github.com/Sir-Sloth-The-Lazy/VisionLint/internal/lint"
)

const (
	issueTypeEmptyFileConstant      = "empty_file"
	issueTypeCorruptedImageConstant = "corrupted_image"
	issueTypeTruncatedImageConstant = "truncated_image"
	issueTypeZeroPixelAreaConstant  = "zero_pixel_area"

	emptyFileMessageConstant      = "file size is 0 bytes"
	corruptedImageMessageTemplate = "image header cannot be decoded: %v"
	truncatedImageMessageTemplate = "image data cannot be fully decoded: %v"
	zeroPixelAreaMessageTemplate  = "image has invalid dimensions: %dx%d"
	payloadDecodeErrorKeyConstant = "decode_error"
)

// IntegrityLinter reports assets whose bytes do not form a usable image.
type IntegrityLinter struct{}

// NewIntegrityLinter constructs the integrity linter. It accepts no options.
func NewIntegrityLinter(_ lint.Options) (lint.Linter, error) {
	return IntegrityLinter{}, nil
}

// Identifier returns the registry identifier.
func (IntegrityLinter) Identifier() string {
	return IntegrityLinterIdentifier
}

// Applicable accepts assets with a supported image extension.
func (IntegrityLinter) Applicable(asset lint.Asset) bool {
	return applicableImage(asset)
}

// InspectAsset checks emptiness, header decoding, pixel area, and full decoding in that order.
// The first failing check ends the inspection.
func (linter IntegrityLinter) InspectAsset(_ context.Context, subject *lint.Subject) ([]lint.Finding, error) {
	content, contentError := subject.Content()
	if contentError != nil {
		return nil, contentError
	}
	asset := subject.Asset()

	if len(content) == 0 {
		return []lint.Finding{linter.finding(asset, issueTypeEmptyFileConstant, emptyFileMessageConstant, nil)}, nil
	}

	config, format, configError := subject.Config()
	if configError != nil {
		return []lint.Finding{linter.finding(asset, issueTypeCorruptedImageConstant,
			fmt.Sprintf(corruptedImageMessageTemplate, configError),
			lint.Payload{payloadDecodeErrorKeyConstant: configError.Error()},
		)}, nil
	}

	dimensions := lint.Payload{
		payloadFormatKeyConstant: format,
		payloadWidthKeyConstant:  config.Width,
		payloadHeightKeyConstant: config.Height,
	}
	if config.Width <= 0 || config.Height <= 0 {
		return []lint.Finding{linter.finding(asset, issueTypeZeroPixelAreaConstant,
			fmt.Sprintf(zeroPixelAreaMessageTemplate, config.Width, config.Height),
			dimensions,
		)}, nil
	}

	if _, _, decodeError := subject.Image(); decodeError != nil {
		dimensions[payloadDecodeErrorKeyConstant] = decodeError.Error()
		return []lint.Finding{linter.finding(asset, issueTypeTruncatedImageConstant,
			fmt.Sprintf(truncatedImageMessageTemplate, decodeError),
			dimensions,
		)}, nil
	}
	return nil, nil
}

func (IntegrityLinter) finding(asset lint.Asset, issueType string, message string, payload lint.Payload) lint.Finding {
	return lint.NewFinding(lint.FindingDescriptor{
		Linter:    IntegrityLinterIdentifier,
		Asset:     asset.Identity(),
		Severity:  lint.SeverityError,
		IssueType: issueType,
		Message:   message,
		Payload:   payload,
	})
}
