// Package analyzer orchestrates a full directory analysis run: file
// enumeration, staleness-gated per-file passes, issue extraction, failure
// isolation, and project-level aggregation with bounded history persistence.
package analyzer
