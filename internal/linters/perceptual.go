package linters

import (
	"context"
	"fmt"
	"image"
	"math/bits"
	"slices"
	"strings"

	"golang.org/x/image/draw"

	"github.com/Sir-Sloth-The-Lazy/VisionLint/internal/lint"
)

const (
	differenceHashWidthConstant  = 9
	differenceHashHeightConstant = 8
	openAssetErrorTemplate       = "open asset %s: %w"
)

type perceptualEntry struct {
	asset lint.Asset
	hash  uint64
}

// inspectPerceptual groups assets whose difference hashes are within the configured hamming distance.
// Groups are the connected components of the "within distance" relation.
func (linter *DuplicateLinter) inspectPerceptual(executionContext context.Context, corpus lint.Corpus) ([]lint.Finding, error) {
	var entries []perceptualEntry
	index := &hashIndex{}
	for asset := range corpus.All() {
		if contextError := executionContext.Err(); contextError != nil {
			return nil, contextError
		}
		hash, decoded, hashError := perceptualFingerprint(corpus, asset)
		if hashError != nil {
			return nil, hashError
		}
		if !decoded {
			continue
		}
		entries = append(entries, perceptualEntry{asset: asset, hash: hash})
		index.insert(hash, len(entries)-1)
	}

	components := newDisjointSet(len(entries))
	for entryIndex, entry := range entries {
		for _, neighbor := range index.within(entry.hash, linter.maxDistance) {
			components.union(entryIndex, neighbor)
		}
	}

	grouped := make(map[int][]int)
	var rootOrder []int
	for entryIndex := range entries {
		root := components.find(entryIndex)
		if _, seen := grouped[root]; !seen {
			rootOrder = append(rootOrder, root)
		}
		grouped[root] = append(grouped[root], entryIndex)
	}

	var findings []lint.Finding
	for _, root := range rootOrder {
		memberIndexes := grouped[root]
		if len(memberIndexes) < 2 {
			continue
		}
		slices.Sort(memberIndexes)
		members := make([]string, 0, len(memberIndexes))
		for _, memberIndex := range memberIndexes {
			members = append(members, entries[memberIndex].asset.Identity())
		}
		findings = append(findings, lint.NewGroupFinding(lint.FindingDescriptor{
			Linter:    DuplicateLinterIdentifier,
			Severity:  lint.SeverityWarning,
			IssueType: issueTypeNearDuplicateGroupConstant,
			Message:   fmt.Sprintf(nearDuplicateGroupMessageTemplate, len(members), strings.Join(members, memberSeparatorConstant)),
			Payload: lint.Payload{
				payloadMembersKeyConstant:     members,
				payloadFingerprintKeyConstant: fmt.Sprintf("%016x", entries[memberIndexes[0]].hash),
				payloadMaxDistanceKeyConstant: linter.maxDistance,
			},
		}, members))
	}
	return findings, nil
}

// perceptualFingerprint hashes one asset. Assets that cannot be opened fail the inspection;
// assets that open but do not decode report decoded=false and are left out of grouping.
func perceptualFingerprint(corpus lint.Corpus, asset lint.Asset) (uint64, bool, error) {
	reader, openError := corpus.Open(asset)
	if openError != nil {
		return 0, false, fmt.Errorf(openAssetErrorTemplate, asset.Identity(), openError)
	}
	defer reader.Close()

	decodedImage, _, decodeError := image.Decode(reader)
	if decodeError != nil {
		return 0, false, nil
	}
	return DifferenceHash(decodedImage), true, nil
}

// DifferenceHash computes a 64-bit gradient hash: the image is scaled to 9x8 grayscale and each
// bit records whether a pixel is brighter than its right neighbor.
func DifferenceHash(source image.Image) uint64 {
	thumbnail := image.NewGray(image.Rect(0, 0, differenceHashWidthConstant, differenceHashHeightConstant))
	draw.BiLinear.Scale(thumbnail, thumbnail.Bounds(), source, source.Bounds(), draw.Src, nil)

	var hash uint64
	for y := 0; y < differenceHashHeightConstant; y++ {
		for x := 0; x < differenceHashWidthConstant-1; x++ {
			hash <<= 1
			if thumbnail.GrayAt(x, y).Y > thumbnail.GrayAt(x+1, y).Y {
				hash |= 1
			}
		}
	}
	return hash
}

// HammingDistance counts differing bits between two hashes.
func HammingDistance(left uint64, right uint64) int {
	return bits.OnesCount64(left ^ right)
}

// hashIndex is a BK-tree keyed by hamming distance.
type hashIndex struct {
	root *hashIndexNode
}

type hashIndexNode struct {
	hash     uint64
	entries  []int
	children map[int]*hashIndexNode
}

func (index *hashIndex) insert(hash uint64, entry int) {
	if index.root == nil {
		index.root = &hashIndexNode{hash: hash, entries: []int{entry}, children: make(map[int]*hashIndexNode)}
		return
	}
	node := index.root
	for {
		distance := HammingDistance(node.hash, hash)
		if distance == 0 {
			node.entries = append(node.entries, entry)
			return
		}
		child, exists := node.children[distance]
		if !exists {
			node.children[distance] = &hashIndexNode{hash: hash, entries: []int{entry}, children: make(map[int]*hashIndexNode)}
			return
		}
		node = child
	}
}

func (index *hashIndex) within(hash uint64, maxDistance int) []int {
	if index.root == nil {
		return nil
	}
	var matches []int
	pending := []*hashIndexNode{index.root}
	for len(pending) > 0 {
		node := pending[len(pending)-1]
		pending = pending[:len(pending)-1]

		distance := HammingDistance(node.hash, hash)
		if distance <= maxDistance {
			matches = append(matches, node.entries...)
		}
		for childDistance, child := range node.children {
			if childDistance >= distance-maxDistance && childDistance <= distance+maxDistance {
				pending = append(pending, child)
			}
		}
	}
	return matches
}

type disjointSet struct {
	parents []int
}

func newDisjointSet(size int) *disjointSet {
	parents := make([]int, size)
	for index := range parents {
		parents[index] = index
	}
	return &disjointSet{parents: parents}
}

func (set *disjointSet) find(element int) int {
	for set.parents[element] != element {
		set.parents[element] = set.parents[set.parents[element]]
		element = set.parents[element]
	}
	return element
}

// union keeps the smaller index as root so components are keyed by their first member.
func (set *disjointSet) union(left int, right int) {
	leftRoot := set.find(left)
	rightRoot := set.find(right)
	if leftRoot == rightRoot {
		return
	}
	if leftRoot < rightRoot {
		set.parents[rightRoot] = leftRoot
		return
	}
	set.parents[leftRoot] = rightRoot
}
