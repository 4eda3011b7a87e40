package fileset

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"
)

// sniffLen is how many leading bytes are inspected for the binary check.
const sniffLen = 1024

// ErrBinary marks a file rejected by the binary sniff. Callers match it with
// errors.Is to count the file as skipped rather than failed.
var ErrBinary = errors.New("binary content")

// ErrTooLarge marks a file rejected by the size gate before its content was
// read. Matched with errors.Is, like ErrBinary.
var ErrTooLarge = errors.New("file too large")

// File is one enumerated source file with its content loaded.
type File struct {
	Path     string
	Language string
	Content  string
	Info     Info
}

// Info records the metadata the staleness check and size gates depend on.
type Info struct {
	Size      int64
	ModTime   time.Time
	LineCount int
}

// Walk enumerates the code files under root in lexical order, applying the
// exclusion patterns and the extension table. It returns relative paths. An
// unreadable root is an error; unreadable entries below it are skipped.
func Walk(root string, excludes []string) ([]string, error) {
	if len(excludes) == 0 {
		excludes = DefaultExcludes
	}

	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			if rel != "." && MatchesAny(rel+"/", excludes) {
				return filepath.SkipDir
			}
			return nil
		}
		if MatchesAny(rel, excludes) {
			return nil
		}
		if Language(rel) == "" {
			return nil
		}
		paths = append(paths, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}
	return paths, nil
}

// Load reads one file and stats it. A positive maxBytes caps the size of
// files worth reading: anything larger yields ErrTooLarge straight from the
// stat, without touching the content. Binary content yields ErrBinary.
// Callers match both sentinels to count the file as skipped.
func Load(root, rel string, maxBytes int64) (File, error) {
	full := filepath.Join(root, rel)
	st, err := os.Stat(full)
	if err != nil {
		return File{}, fmt.Errorf("stating %s: %w", rel, err)
	}
	if maxBytes > 0 && st.Size() > maxBytes {
		return File{}, fmt.Errorf("%s: size %d exceeds limit %d: %w", rel, st.Size(), maxBytes, ErrTooLarge)
	}

	data, err := os.ReadFile(full)
	if err != nil {
		return File{}, fmt.Errorf("reading %s: %w", rel, err)
	}
	if IsBinary(data) {
		return File{}, fmt.Errorf("%s: %w", rel, ErrBinary)
	}

	content := string(data)
	return File{
		Path:     rel,
		Language: Language(rel),
		Content:  content,
		Info: Info{
			Size:      st.Size(),
			ModTime:   st.ModTime(),
			LineCount: countLines(content),
		},
	}, nil
}

// IsBinary classifies content by its first kilobyte: a null byte or invalid
// UTF-8 marks it binary.
func IsBinary(data []byte) bool {
	if len(data) > sniffLen {
		data = data[:sniffLen]
		// Trim a rune sliced in half at the cut point.
		for len(data) > 0 && !utf8.Valid(data) {
			data = data[:len(data)-1]
			if len(data) < sniffLen-utf8.UTFMax {
				break
			}
		}
	}
	for _, b := range data {
		if b == 0 {
			return true
		}
	}
	return !utf8.Valid(data)
}

// Truncate caps content at maxLines, appending a marker comment when lines
// were dropped. The second return reports whether truncation happened.
func Truncate(content string, maxLines int) (string, bool) {
	if maxLines <= 0 {
		return content, false
	}
	lines := strings.Split(content, "\n")
	if len(lines) <= maxLines {
		return content, false
	}
	kept := lines[:maxLines]
	marker := fmt.Sprintf("// ... truncated %d lines ...", len(lines)-maxLines)
	return strings.Join(kept, "\n") + "\n" + marker, true
}

// countLines counts lines the way an editor shows them: a trailing newline
// terminates the last line rather than starting an empty one.
func countLines(content string) int {
	if content == "" {
		return 0
	}
	n := strings.Count(content, "\n")
	if !strings.HasSuffix(content, "\n") {
		n++
	}
	return n
}

// MatchesAny reports whether a slash-separated relative path matches any of
// the glob patterns. Patterns of the form **/name/** match a directory
// segment anywhere in the path; **/glob matches the base name.
func MatchesAny(path string, patterns []string) bool {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	base := segments[len(segments)-1]

	for _, pattern := range patterns {
		if matched, err := filepath.Match(pattern, path); err == nil && matched {
			return true
		}
		clean := strings.TrimPrefix(pattern, "**/")
		if dir := strings.TrimSuffix(clean, "/**"); dir != clean {
			for _, seg := range segments {
				if matched, err := filepath.Match(dir, seg); err == nil && matched {
					return true
				}
			}
			continue
		}
		if matched, err := filepath.Match(clean, base); err == nil && matched {
			return true
		}
		if matched, err := filepath.Match(clean, path); err == nil && matched {
			return true
		}
	}
	return false
}
