// Package engine drives linters over an asset source and freezes the outcome
// into a lint.LintRun.
//
// Per-asset linters run on a bounded worker pool; completed asset results are
// committed strictly in enumeration order so the finding sequence does not depend
// on the worker count. Corpus linters run once, single-threaded, after the source
// is exhausted. Linter faults and unreadable assets become synthetic findings and
// never unwind past Run; only configuration errors are returned.
package engine
