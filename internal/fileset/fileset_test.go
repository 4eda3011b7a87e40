package fileset

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	full := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestWalk_FiltersAndOrders(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.go", "package main\n")
	writeFile(t, root, "app.py", "print('hi')\n")
	writeFile(t, root, "notes.txt", "not code\n")
	writeFile(t, root, "node_modules/dep/index.js", "module.exports = 1\n")
	writeFile(t, root, "web/app.min.js", "var a=1\n")
	writeFile(t, root, "web/app.js", "var a = 1\n")

	paths, err := Walk(root, nil)
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	want := []string{"app.py", "main.go", "web/app.js"}
	if len(paths) != len(want) {
		t.Fatalf("paths = %v, want %v", paths, want)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Errorf("paths[%d] = %q, want %q", i, paths[i], want[i])
		}
	}
}

func TestWalk_MissingRoot(t *testing.T) {
	if _, err := Walk(filepath.Join(t.TempDir(), "absent"), nil); err == nil {
		t.Error("expected error for a missing root")
	}
}

func TestLoad(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.go", "package main\n\nfunc main() {}\n")

	f, err := Load(root, "main.go", 0)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if f.Language != "go" {
		t.Errorf("Language = %q", f.Language)
	}
	if f.Info.LineCount != 3 {
		t.Errorf("LineCount = %d, want 3", f.Info.LineCount)
	}
	if f.Info.Size != int64(len(f.Content)) {
		t.Errorf("Size = %d, want %d", f.Info.Size, len(f.Content))
	}
}

func TestLoad_SizeGate(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "big.go", "package big\n"+strings.Repeat("var x = 1\n", 100))

	_, err := Load(root, "big.go", 64)
	if err == nil {
		t.Fatal("expected error for oversized file")
	}
	if !errors.Is(err, ErrTooLarge) {
		t.Errorf("err = %v, want ErrTooLarge", err)
	}

	if _, err := Load(root, "big.go", 1<<20); err != nil {
		t.Errorf("Load under the limit: %v", err)
	}
}

func TestCountLines(t *testing.T) {
	tests := []struct {
		content string
		want    int
	}{
		{"", 0},
		{"package a", 1},
		{"package a\n", 1},
		{"package a\n\nvar x = 1\n", 3},
		{"a\nb", 2},
	}
	for _, tt := range tests {
		if got := countLines(tt.content); got != tt.want {
			t.Errorf("countLines(%q) = %d, want %d", tt.content, got, tt.want)
		}
	}
}

func TestLoad_BinaryRejected(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "blob.go", "package\x00main")

	_, err := Load(root, "blob.go", 0)
	if err == nil {
		t.Fatal("expected error for binary content")
	}
	if !errors.Is(err, ErrBinary) {
		t.Errorf("err = %v, want ErrBinary", err)
	}
}

func TestIsBinary(t *testing.T) {
	if IsBinary([]byte("plain text, nothing odd")) {
		t.Error("plain text flagged binary")
	}
	if !IsBinary([]byte{0x00, 0x01, 0x02}) {
		t.Error("null bytes not flagged binary")
	}
	if !IsBinary([]byte{0xff, 0xfe, 0xfd}) {
		t.Error("invalid UTF-8 not flagged binary")
	}
}

func TestTruncate(t *testing.T) {
	content := strings.Repeat("line\n", 9) + "line"
	got, truncated := Truncate(content, 3)
	if !truncated {
		t.Fatal("expected truncation")
	}
	lines := strings.Split(got, "\n")
	if len(lines) != 4 {
		t.Fatalf("lines = %d, want 3 kept + marker", len(lines))
	}
	if !strings.Contains(lines[3], "truncated 7 lines") {
		t.Errorf("marker = %q", lines[3])
	}

	if _, truncated := Truncate("a\nb", 10); truncated {
		t.Error("short content must not be truncated")
	}
}

func TestLanguage(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"x/y/main.go", "go"},
		{"app.PY", "python"},
		{"style.css", "css"},
		{"binary.exe", ""},
	}
	for _, tt := range tests {
		if got := Language(tt.path); got != tt.want {
			t.Errorf("Language(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestMatchesAny(t *testing.T) {
	excludes := DefaultExcludes
	tests := []struct {
		path string
		want bool
	}{
		{"node_modules/x.js", true},
		{"src/node_modules/x.js", true},
		{"vendor/app.min.js", true},
		{"src/app.js", false},
		{".git/config", true},
	}
	for _, tt := range tests {
		if got := MatchesAny(tt.path, excludes); got != tt.want {
			t.Errorf("MatchesAny(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}
