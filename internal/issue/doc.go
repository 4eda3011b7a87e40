// Package issue defines the structured records produced by code analysis and
// the extraction cascade that builds them from free-form model text.
//
// Extract tries progressively looser pattern families: structured
// "Issue #n (Lines a-b)" headings, keyword-anchored lines, list items, then
// bare substantial lines. It falls back to a single synthesized issue for
// any non-trivial analysis text, so a substantive model response never
// reports zero issues. Descriptions are deduplicated exactly within one call
// and pure praise is filtered out unless a contrast keyword signals a real
// complaint.
//
// Classify assigns severity and type from keyword heuristics and is fully
// deterministic.
package issue
