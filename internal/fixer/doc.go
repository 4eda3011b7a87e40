// Package fixer turns extracted issues back into code: it prompts the
// backend for a full fixed file, pulls the code out of the response, and
// gates it behind a balanced-delimiter sanity check before anything is
// written. A rejected fix always leaves the original content in place.
package fixer
