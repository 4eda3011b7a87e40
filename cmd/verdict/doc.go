// Verdict is a local-first CLI for analyzing codebases with LLM backends.
//
// It walks a project directory, runs layered analysis passes against a
// configured backend, extracts and classifies issues, and tracks results
// across runs so unchanged files are not re-analyzed.
//
// Usage:
//
//	verdict analyze [path]      # analyze a project directory
//	verdict fix [path]          # generate and apply fixes for known issues
//	verdict history [project]   # show past analysis runs
//	verdict config show         # print effective configuration
//	verdict models doctor       # check backend connectivity
//
// See https://github.com/mgrantham/verdict for full documentation.
package main
