package twbmig

import (
	"context"
	"time"
)

// WorkbookScanner discovers Tableau workbooks under a directory tree.
// Implementations must be safe for concurrent use by multiple goroutines.
type WorkbookScanner interface {
	// ScanDirectory recursively scans a directory and returns one entry per
	// .twb or .twbx file, ordered by path.
	ScanDirectory(ctx context.Context, root string) (ScanResult, error)
}

// ScanResult contains the results of scanning a directory.
type ScanResult struct {
	Root      string         `json:"root"`
	Workbooks []WorkbookFile `json:"workbooks"`
}

// WorkbookFile describes one discovered workbook.
type WorkbookFile struct {
	// Path information (Unix forward slashes)
	Path      string `json:"path"`      // Relative path from the scan root: "./finance/Sales.twbx"
	AbsPath   string `json:"abs_path"`  // Path usable with the filesystem provider
	Name      string `json:"name"`      // Filename only: "Sales.twbx"
	Directory string `json:"directory"` // Parent directory: "./finance/"
	Depth     int    `json:"depth"`     // Nesting level (0 = root)

	// Packaged is true for .twbx archives
	Packaged bool `json:"packaged"`

	SizeBytes int64 `json:"size_bytes"`

	// Checksum is the SHA-256 of the file bytes
	Checksum string `json:"checksum"`

	ModifiedAt time.Time `json:"modified_at"`
}
