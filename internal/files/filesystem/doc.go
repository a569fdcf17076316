// Package filesystem abstracts the disk access of twbmig.
//
// Key interfaces:
//   - FileSystemProvider: reads workbooks, walks input directories and writes artifacts
//   - Directory: a directory tree that can be walked
//   - File: a discovered file with metadata and content
//
// Implementations:
//   - OSFileSystem: the local disk
//   - MemoryFileSystem: in-memory, for tests
package filesystem
