// Package store persists analysis state between runs: the per-project
// incremental context (one FileAnalysis per file path, keyed by modification
// time for staleness) and the bounded run history document.
//
// Stores are not safe for concurrent use; a run owns its context exclusively.
package store
