// Package store keeps an optional SQLite history of harness runs.
//
// Each run records the bundle it ran against, the aggregate counts and one
// row per test case. Case rows are keyed by ir.CaseID so outcomes can be
// compared across runs of different bundles.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Reads are ordered deterministically: runs by started_at then id, cases by
// their position in the run.
package store
