// Package filesystem provides filesystem implementations for drivepool.
//
// This package contains implementations of the types.FS interface:
// the standard OS filesystem and afero-backed filesystems used by dry
// runs and tests.
package filesystem
