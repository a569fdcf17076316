// Package scanner discovers Tableau workbooks for batch runs.
//
// The scanner package is responsible for:
//   - Recursively discovering .twb and .twbx files in a directory tree
//   - Recording file metadata (path, depth, size, modification time, checksum)
//
// The scanner is filesystem-agnostic through the
// filesystem.FileSystemProvider interface, enabling both production use
// with the OS filesystem and testing with in-memory filesystems.
package scanner
