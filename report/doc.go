// Package report produces machine-readable summaries of a pipeline run
// for validation-harness consumers: per-stage byte/segment counts,
// checksum results, and elapsed time, marshaled to TOML or JSON.
package report
