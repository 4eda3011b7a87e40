// Package prompt assembles the system and user prompts for analysis passes,
// fix requests, and project-level aggregate reports.
package prompt
