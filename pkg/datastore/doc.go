// Package datastore persists the placement ledger. It is the only component
// that reads or writes the ledger file; planners work on in-memory copies.
package datastore
