// Package report projects a frozen lint run into summaries and renders it for people and tools.
package report
