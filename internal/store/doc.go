// Package store provides SQLite-backed storage for mapped collections and
// the flush journal.
//
// Collection tables are created from a CollectionMapping and written only
// through statements compiled by package sqlgen. Each flush runs in one
// transaction together with its journal row, so a failed statement leaves
// both the collection and the journal untouched.
//
// # Deterministic Reads
//
//   - Collections load ORDER BY position ASC, rowid ASC
//   - Journal reads use ORDER BY seq ASC, id ASC
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
