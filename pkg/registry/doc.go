// Package registry holds the named lookup tables drivepool resolves from
// configuration: allocation orders, dedup strategies and include-list
// encodings each register themselves into a Registry at init time. It also
// discovers the set of storage accounts a run may use.
package registry
