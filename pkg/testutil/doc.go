// Package testutil provides shared fixtures for drivepool tests.
//
// Key components:
//   - NewTestFS: in-memory filesystem behind types.FS
//   - LedgerBuilder: declarative ledger setup
//   - FixedClock / StepClock: deterministic time for backup naming
//
// Usage guidelines:
//   - Prefer the in-memory filesystem; only the CLI tests touch real disk
//   - Define test data inline, not in external files
package testutil
