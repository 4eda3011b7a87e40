package fileset

import (
	"path/filepath"
	"strings"
)

// codeExtensions maps file extensions to the language name handed to the
// analysis prompts.
var codeExtensions = map[string]string{
	".py":    "python",
	".js":    "javascript",
	".jsx":   "javascript",
	".ts":    "typescript",
	".tsx":   "typescript",
	".html":  "html",
	".css":   "css",
	".java":  "java",
	".c":     "c",
	".cpp":   "cpp",
	".h":     "c",
	".hpp":   "cpp",
	".cs":    "csharp",
	".go":    "go",
	".rb":    "ruby",
	".php":   "php",
	".swift": "swift",
	".rs":    "rust",
	".kt":    "kotlin",
	".sh":    "bash",
	".bash":  "bash",
	".json":  "json",
	".yaml":  "yaml",
	".yml":   "yaml",
	".toml":  "toml",
	".xml":   "xml",
	".md":    "markdown",
}

// DefaultExcludes are the glob patterns skipped when walking a project.
var DefaultExcludes = []string{
	"**/node_modules/**",
	"**/.git/**",
	"**/venv/**",
	"**/__pycache__/**",
	"**/.DS_Store",
	"**/dist/**",
	"**/build/**",
	"**/*.min.js",
	"**/*.min.css",
}

// Language returns the language for a file path, or "" when the extension
// is not a recognized code extension.
func Language(path string) string {
	return codeExtensions[strings.ToLower(filepath.Ext(path))]
}
