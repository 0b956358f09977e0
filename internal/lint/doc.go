// Package lint defines the VisionLint data model and linter capability contracts.
//
// It exposes Asset and Finding values, the Severity scale, the frozen LintRun
// produced by the execution engine, the AssetLinter and CorpusLinter capability
// interfaces, and the Registry that maps linter identifiers to factories.
package lint
