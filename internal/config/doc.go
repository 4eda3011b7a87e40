// Package config loads and merges verdict configuration from multiple
// sources.
//
// Precedence (highest to lowest):
//  1. CLI flags
//  2. Environment variables (VERDICT_BACKEND, VERDICT_ANALYSIS_MODEL, etc.)
//  3. Config file ($XDG_CONFIG_HOME/verdict/config.json)
//  4. Built-in defaults
//
// Use [Load] to obtain a merged [Config] and [SetField] to update a single
// key in the config file.
package config
