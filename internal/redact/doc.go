// Package redact strips secrets from file content before it is sent to the
// analysis backend.
//
// Detection uses regex heuristics covering common secret shapes: API keys,
// JWTs, private key blocks, AWS credentials, bearer tokens, provider tokens,
// and connection strings with inline credentials.
//
// Path-based redaction is also supported: files matching configured glob
// patterns (.env files, key material) have their entire content withheld
// rather than scanned.
package redact
