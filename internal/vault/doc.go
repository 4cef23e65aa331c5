// Package vault implements the authenticated-encryption store for
// third-party credentials. Values are encrypted with AES-256-GCM under
// a process-wide master key that is never persisted, and read through a
// process-local TTL cache. Lookup and decryption failures are soft:
// callers receive "not configured" rather than an error, because a
// missing secret means a feature is switched off, not that a request
// should fail.
package vault
