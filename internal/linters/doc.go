// Package linters provides the built-in VisionLint checks: per-asset integrity and
// consistency inspection and corpus-wide duplicate detection.
package linters
