// Package types defines the core types and interfaces shared across drivepool.
// This includes the FS abstraction used by every component that touches disk
// and the FileDescriptor values produced by source listers.
package types
