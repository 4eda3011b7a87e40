package llm

import (
	"testing"
)

func TestExtractCode_FencedBlocks(t *testing.T) {
	text := "Here is the fix:\n```go\nfunc fixed() error {\n\treturn nil\n}\n```\nAnd a helper:\n```\nvar helper = 1\n```"
	got := ExtractCode(text)
	want := "func fixed() error {\n\treturn nil\n}\n\nvar helper = 1"
	if got != want {
		t.Errorf("ExtractCode = %q, want %q", got, want)
	}
}

func TestExtractCode_ToggleFallback(t *testing.T) {
	// Unterminated fence: the regex cannot match a pair, so line toggling
	// collects everything after the opening marker.
	text := "explanation\n```python\nprint(\"hi\")\nprint(\"bye\")"
	got := ExtractCode(text)
	want := "print(\"hi\")\nprint(\"bye\")"
	if got != want {
		t.Errorf("ExtractCode = %q, want %q", got, want)
	}
}

func TestExtractCode_NoCode(t *testing.T) {
	if got := ExtractCode("no code in this reply, just prose"); got != "" {
		t.Errorf("ExtractCode = %q, want empty", got)
	}
}

func TestExtractJSON_FencedBlock(t *testing.T) {
	text := "Assessment:\n```json\n{\"summary\": \"fine\", \"score\": 7}\n```\ndone"
	obj, ok := ExtractJSON(text)
	if !ok {
		t.Fatal("ExtractJSON failed on fenced block")
	}
	if obj["summary"] != "fine" {
		t.Errorf("summary = %v", obj["summary"])
	}
}

func TestExtractJSON_EmbeddedObject(t *testing.T) {
	text := `The result is {"fixed": true, "note": "added {brace} in string"} as requested.`
	obj, ok := ExtractJSON(text)
	if !ok {
		t.Fatal("ExtractJSON failed on embedded object")
	}
	if obj["fixed"] != true {
		t.Errorf("fixed = %v", obj["fixed"])
	}
	if obj["note"] != "added {brace} in string" {
		t.Errorf("note = %v", obj["note"])
	}
}

func TestExtractJSON_NoObject(t *testing.T) {
	if _, ok := ExtractJSON("not json at all but useful"); ok {
		t.Error("expected no object from plain text")
	}
	if _, ok := ExtractJSON("almost {broken json here"); ok {
		t.Error("expected no object from unbalanced braces")
	}
}

func TestExtractJSON_PrefersFirstParseable(t *testing.T) {
	text := `{"bad": } then later {"good": 1}`
	obj, ok := ExtractJSON(text)
	if !ok {
		t.Fatal("ExtractJSON failed")
	}
	if _, has := obj["good"]; !has {
		t.Errorf("obj = %v, want the later parseable object", obj)
	}
}
