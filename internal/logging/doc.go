// Package logging configures the structured zap logger used across the
// application, with optional rotated file output.
package logging
