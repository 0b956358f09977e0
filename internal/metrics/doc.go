// Package metrics records lint run statistics in a private Prometheus registry and persists
// them in the node exporter textfile format.
package metrics
