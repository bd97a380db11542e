// Package store provides SQLite-backed execution history for datacube.
//
// Every query handed to a coverage server can be recorded with its text,
// content hashes, requested format, HTTP status, response size and
// timing. Response bodies are never stored.
//
// # Ordering
//
// Records carry an autoincrement seq column. Listings are ordered by
// seq DESC, newest first, and never by wall-clock time.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//
// Query and plan hashes are computed by internal/ir (SHA-256 with domain
// separation).
package store
