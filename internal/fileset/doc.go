// Package fileset enumerates and loads the source files of a project:
// recursive walking with glob exclusions, extension-based language mapping,
// a stat-time size gate, binary detection, and line-count truncation.
package fileset
