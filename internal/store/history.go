package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
)

// defaultHistoryLimit bounds how many runs are kept per project.
const defaultHistoryLimit = 10

// Run is one persisted analysis run. Results holds the serialized project
// result; the history store does not interpret it.
type Run struct {
	ID            string          `json:"id"`
	Timestamp     time.Time       `json:"timestamp"`
	UnixTimestamp int64           `json:"unixTimestamp"`
	IssueCount    int             `json:"issueCount"`
	FilesAnalyzed int             `json:"filesAnalyzed"`
	Results       json.RawMessage `json:"results"`
}

// HistoryStore persists analysis runs to a single JSON document keyed by
// project name, trimmed to the most recent runs per project on every write.
// Not safe for concurrent use.
type HistoryStore struct {
	path  string
	limit int
}

// NewHistoryStore creates a store backed by the document at path. A limit
// of zero or less uses the default retention of 10 runs per project.
func NewHistoryStore(path string, limit int) *HistoryStore {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	return &HistoryStore{path: path, limit: limit}
}

// Append records a run for a project and trims that project's history to
// the retention limit, newest first. The results value is serialized into
// the stored run.
func (h *HistoryStore) Append(project string, issueCount, filesAnalyzed int, results any) (Run, error) {
	raw, err := json.Marshal(results)
	if err != nil {
		return Run{}, fmt.Errorf("marshaling run results: %w", err)
	}
	now := time.Now()
	run := Run{
		ID:            uuid.NewString(),
		Timestamp:     now,
		UnixTimestamp: now.Unix(),
		IssueCount:    issueCount,
		FilesAnalyzed: filesAnalyzed,
		Results:       raw,
	}

	doc, err := h.load()
	if err != nil {
		return Run{}, err
	}
	runs := append(doc[project], run)
	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})
	if len(runs) > h.limit {
		runs = runs[:h.limit]
	}
	doc[project] = runs

	if err := h.save(doc); err != nil {
		return Run{}, err
	}
	return run, nil
}

// List returns a project's runs, newest first.
func (h *HistoryStore) List(project string) ([]Run, error) {
	doc, err := h.load()
	if err != nil {
		return nil, err
	}
	return doc[project], nil
}

// Latest returns the most recent run for a project, if any.
func (h *HistoryStore) Latest(project string) (Run, bool, error) {
	runs, err := h.List(project)
	if err != nil {
		return Run{}, false, err
	}
	if len(runs) == 0 {
		return Run{}, false, nil
	}
	return runs[0], true, nil
}

// Projects returns the names of all projects with recorded history.
func (h *HistoryStore) Projects() ([]string, error) {
	doc, err := h.load()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(doc))
	for name := range doc {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (h *HistoryStore) load() (map[string][]Run, error) {
	data, err := os.ReadFile(h.path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string][]Run), nil
		}
		return nil, fmt.Errorf("reading history file: %w", err)
	}
	var doc map[string][]Run
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing history file: %w", err)
	}
	if doc == nil {
		doc = make(map[string][]Run)
	}
	return doc, nil
}

func (h *HistoryStore) save(doc map[string][]Run) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling history: %w", err)
	}
	if dir := filepath.Dir(h.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating history directory: %w", err)
		}
	}
	if err := os.WriteFile(h.path, data, 0o644); err != nil {
		return fmt.Errorf("writing history file: %w", err)
	}
	return nil
}
