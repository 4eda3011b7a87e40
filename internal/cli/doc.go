// Package cli wires together the Cobra command tree for the verdict binary.
//
// It defines the root command and all subcommands (analyze, fix, history,
// stats, config, models, version), binds flags, reads configuration, invokes
// the analysis engine, and returns deterministic exit codes for CI gating.
package cli
