// Package audit implements the dataset audit workflow used by the visionlint CLI.
//
// It exposes CommandBuilder for wiring the audit Cobra command, LintersCommandBuilder for
// listing registered linters, and Service for driving a lint run programmatically and
// rendering its report.
package audit
