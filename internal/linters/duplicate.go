package linters

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/Sir-Sloth-The-Lazy/VisionLint/internal/lint"
)

// DuplicateMode selects how the duplicate linter compares assets.
type DuplicateMode string

// Supported duplicate modes.
const (
	DuplicateModeExact      DuplicateMode = "exact"
	DuplicateModePerceptual DuplicateMode = "perceptual"
)

const (
	modeOptionKeyConstant        = "mode"
	maxDistanceOptionKeyConstant = "max_distance"
	defaultMaxDistanceConstant   = 4
	maximumHashDistanceConstant  = 64

	issueTypeDuplicateGroupConstant     = "duplicate_group"
	issueTypeNearDuplicateGroupConstant = "near_duplicate_group"

	duplicateGroupMessageTemplate     = "%d files have identical content: %s"
	nearDuplicateGroupMessageTemplate = "%d files are perceptually similar: %s"
	payloadMembersKeyConstant         = "members"
	payloadFingerprintKeyConstant     = "fingerprint"
	payloadSizeKeyConstant            = "size"
	payloadMaxDistanceKeyConstant     = "max_distance"
	memberSeparatorConstant           = ", "

	invalidDuplicateModeTemplate = "%w: %q (expected exact or perceptual)"
	invalidMaxDistanceTemplate   = "%w: %d (expected 0 to 64)"
	hashAssetErrorTemplate       = "hash asset %s: %w"
)

var (
	// ErrInvalidDuplicateMode reports an unsupported mode option.
	ErrInvalidDuplicateMode = errors.New("invalid duplicate mode option")
	// ErrInvalidMaxDistance reports a max_distance option outside the hash width.
	ErrInvalidMaxDistance = errors.New("invalid max_distance option")
)

// DuplicateLinter groups assets with identical or near-identical content across the corpus.
// Its fingerprint index lives only for the duration of one InspectCorpus call.
type DuplicateLinter struct {
	mode        DuplicateMode
	maxDistance int
}

// NewDuplicateLinter constructs the duplicate linter from its options.
func NewDuplicateLinter(options lint.Options) (lint.Linter, error) {
	rawMode, modeProvided, modeError := options.String(modeOptionKeyConstant)
	if modeError != nil {
		return nil, modeError
	}
	mode := DuplicateModeExact
	if modeProvided {
		switch DuplicateMode(strings.ToLower(rawMode)) {
		case DuplicateModeExact:
			mode = DuplicateModeExact
		case DuplicateModePerceptual:
			mode = DuplicateModePerceptual
		default:
			return nil, fmt.Errorf(invalidDuplicateModeTemplate, ErrInvalidDuplicateMode, rawMode)
		}
	}

	maxDistance, distanceProvided, distanceError := options.Int(maxDistanceOptionKeyConstant)
	if distanceError != nil {
		return nil, distanceError
	}
	if !distanceProvided {
		maxDistance = defaultMaxDistanceConstant
	}
	if maxDistance < 0 || maxDistance > maximumHashDistanceConstant {
		return nil, fmt.Errorf(invalidMaxDistanceTemplate, ErrInvalidMaxDistance, maxDistance)
	}

	return &DuplicateLinter{mode: mode, maxDistance: maxDistance}, nil
}

// Identifier returns the registry identifier.
func (*DuplicateLinter) Identifier() string {
	return DuplicateLinterIdentifier
}

// Applicable accepts non-empty assets with a supported image extension. Empty files are reported by integrity.
func (*DuplicateLinter) Applicable(asset lint.Asset) bool {
	return applicableImage(asset) && asset.Size() > 0
}

// Mode returns the configured comparison mode.
func (linter *DuplicateLinter) Mode() DuplicateMode {
	return linter.mode
}

// InspectCorpus emits one finding per group of duplicate assets, ordered by the first member.
func (linter *DuplicateLinter) InspectCorpus(executionContext context.Context, corpus lint.Corpus) ([]lint.Finding, error) {
	if linter.mode == DuplicateModePerceptual {
		return linter.inspectPerceptual(executionContext, corpus)
	}
	return linter.inspectExact(executionContext, corpus)
}

type exactCandidate struct {
	asset lint.Asset
	order int
}

type exactGroup struct {
	members     []exactCandidate
	fingerprint string
}

// inspectExact narrows candidates by size, then by xxhash, and confirms every group with SHA-256.
func (linter *DuplicateLinter) inspectExact(executionContext context.Context, corpus lint.Corpus) ([]lint.Finding, error) {
	sizeBuckets := make(map[int64][]exactCandidate)
	var sizeOrder []int64
	order := 0
	for asset := range corpus.All() {
		if _, seen := sizeBuckets[asset.Size()]; !seen {
			sizeOrder = append(sizeOrder, asset.Size())
		}
		sizeBuckets[asset.Size()] = append(sizeBuckets[asset.Size()], exactCandidate{asset: asset, order: order})
		order++
	}

	var groups []exactGroup
	for _, size := range sizeOrder {
		bucket := sizeBuckets[size]
		if len(bucket) < 2 {
			continue
		}
		if contextError := executionContext.Err(); contextError != nil {
			return nil, contextError
		}

		fastBuckets, fastOrder, fastError := bucketCandidates(bucket, func(asset lint.Asset) (string, error) {
			return fastFingerprint(corpus, asset)
		})
		if fastError != nil {
			return nil, fastError
		}
		for _, fastKey := range fastOrder {
			fastBucket := fastBuckets[fastKey]
			if len(fastBucket) < 2 {
				continue
			}
			confirmedBuckets, confirmedOrder, confirmedError := bucketCandidates(fastBucket, func(asset lint.Asset) (string, error) {
				return strongFingerprint(corpus, asset)
			})
			if confirmedError != nil {
				return nil, confirmedError
			}
			for _, confirmedKey := range confirmedOrder {
				if len(confirmedBuckets[confirmedKey]) < 2 {
					continue
				}
				groups = append(groups, exactGroup{members: confirmedBuckets[confirmedKey], fingerprint: confirmedKey})
			}
		}
	}

	slices.SortFunc(groups, func(left exactGroup, right exactGroup) int {
		return left.members[0].order - right.members[0].order
	})

	findings := make([]lint.Finding, 0, len(groups))
	for _, group := range groups {
		members := candidateIdentities(group.members)
		findings = append(findings, lint.NewGroupFinding(lint.FindingDescriptor{
			Linter:    DuplicateLinterIdentifier,
			Severity:  lint.SeverityWarning,
			IssueType: issueTypeDuplicateGroupConstant,
			Message:   fmt.Sprintf(duplicateGroupMessageTemplate, len(members), strings.Join(members, memberSeparatorConstant)),
			Payload: lint.Payload{
				payloadMembersKeyConstant:     members,
				payloadFingerprintKeyConstant: group.fingerprint,
				payloadSizeKeyConstant:        group.members[0].asset.Size(),
			},
		}, members))
	}
	return findings, nil
}

// bucketCandidates groups candidates by key, preserving first-seen key order.
func bucketCandidates(candidates []exactCandidate, keyOf func(lint.Asset) (string, error)) (map[string][]exactCandidate, []string, error) {
	buckets := make(map[string][]exactCandidate, len(candidates))
	var keyOrder []string
	for _, candidate := range candidates {
		key, keyError := keyOf(candidate.asset)
		if keyError != nil {
			return nil, nil, keyError
		}
		if _, seen := buckets[key]; !seen {
			keyOrder = append(keyOrder, key)
		}
		buckets[key] = append(buckets[key], candidate)
	}
	return buckets, keyOrder, nil
}

func fastFingerprint(corpus lint.Corpus, asset lint.Asset) (string, error) {
	digest := xxhash.New()
	if hashError := hashContent(corpus, asset, digest); hashError != nil {
		return "", hashError
	}
	return fmt.Sprintf("%016x", digest.Sum64()), nil
}

func strongFingerprint(corpus lint.Corpus, asset lint.Asset) (string, error) {
	digest := sha256.New()
	if hashError := hashContent(corpus, asset, digest); hashError != nil {
		return "", hashError
	}
	return hex.EncodeToString(digest.Sum(nil)), nil
}

func hashContent(corpus lint.Corpus, asset lint.Asset, destination io.Writer) error {
	reader, openError := corpus.Open(asset)
	if openError != nil {
		return fmt.Errorf(hashAssetErrorTemplate, asset.Identity(), openError)
	}
	defer reader.Close()
	if _, copyError := io.Copy(destination, reader); copyError != nil {
		return fmt.Errorf(hashAssetErrorTemplate, asset.Identity(), copyError)
	}
	return nil
}

func candidateIdentities(candidates []exactCandidate) []string {
	identities := make([]string, 0, len(candidates))
	for _, candidate := range candidates {
		identities = append(identities, candidate.asset.Identity())
	}
	return identities
}
