// Package llm implements the transport clients for text-generation backends
// and the parsers that pull code and JSON out of free-form model output.
//
// Two clients share the Client interface: Ollama speaks the native
// /api/generate and /api/chat wire formats, and OpenAICompat uses the
// go-openai library for any server exposing OpenAI-style chat completions.
// Both retry transport failures with exponential backoff and, when the
// budget is exhausted, degrade to a sentinel result value instead of
// returning an error, so batch callers never stop on a bad request.
//
// Response bodies are normalized across three shapes: a single JSON object,
// a newline-delimited stream of JSON fragments, and plain text with an
// estimated token count.
//
// ExtractCode and ExtractJSON are pure, deterministic functions with no
// I/O or state.
package llm
