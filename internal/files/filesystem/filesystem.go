package filesystem

import (
	"io/fs"
)

// FileInfo is an alias for fs.FileInfo.
type FileInfo = fs.FileInfo

// File is a discovered file with its metadata and content accessor.
type File interface {
	// Path returns the absolute path to the file.
	Path() string

	// RelativePath returns the path relative to the walked directory.
	RelativePath() string

	// Info returns file metadata.
	Info() FileInfo

	// ReadContent returns the file's content.
	ReadContent() ([]byte, error)
}

// Directory is a directory tree that can be walked.
type Directory interface {
	// Path returns the absolute path to the directory.
	Path() string

	// Walk calls fn for every file and directory under the root in lexical
	// order. A non-nil error from fn stops the walk and is returned.
	Walk(fn func(File, error) error) error
}

// FileSystemProvider reads workbooks and writes artifacts.
// Missing paths are reported with errors wrapping fs.ErrNotExist.
type FileSystemProvider interface {
	// Open opens a directory for walking.
	Open(path string) (Directory, error)

	// ReadFile reads the file at path.
	ReadFile(path string) ([]byte, error)

	// Stat returns file information for path.
	Stat(path string) (FileInfo, error)

	// MkdirAll creates path and any missing parents.
	MkdirAll(path string) error

	// WriteFile creates or truncates the file at path. Parent directories must exist.
	WriteFile(path string, data []byte) error

	// RemoveAll removes path and everything under it. A missing path is not an error.
	RemoveAll(path string) error
}
