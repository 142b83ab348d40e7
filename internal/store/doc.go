// Package store provides SQLite-backed history of compile passes.
//
// Every recorded pass keeps the patch hash, the environment it was compiled
// in, its outcome and the canonical JSON of the patch itself, so a pass can
// be inspected or recompiled later.
//
// # Ordering
//
//   - Passes are ordered by seq INTEGER, assigned on insert, never by
//     wall-clock time.
//   - Queries include ORDER BY seq so results are identical across runs.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
