// Package ledger holds the in-memory model of which destination paths have
// been placed on which storage account.
//
// A Ledger is the root aggregate. Every mutation goes through Place or
// Release so the accounting invariants hold after each call:
//
//   - usedSpace + remainingSpace is constant for an account (its capacity)
//   - usedSpace equals the sum of the account's file sizes
//   - a destination path is owned by at most one account
//
// The JSON form is the on-disk ledger document:
//
//	{"accounts": {"<id>": {"used_space": 0, "remaining_space": 0, "files": {"<path>": {"size": 0}}}}}
package ledger
