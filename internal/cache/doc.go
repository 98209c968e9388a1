// Package cache manages the version-keyed mapping cache on disk.
//
// A cache file that exists and is non-empty is complete: files are written
// under a unique temporary name and published with a rename. Builds of the
// same file are serialized in-process with singleflight and across processes
// with an exclusive lock file next to the target, so concurrent first-time
// builds produce the file once and everybody else reads it.
package cache
