// Package metrics exposes Prometheus collectors for validation runs.
package metrics
