package scanner

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/vvka-141/twbmig/internal/checksum"
	"github.com/vvka-141/twbmig/internal/files/filesystem"
	"github.com/vvka-141/twbmig/pkg/twbmig"
)

// Scanner discovers Tableau workbooks in a directory tree.
// Scanner is safe for concurrent use by multiple goroutines as long as
// the provided calculator and fsProvider are also thread-safe.
type Scanner struct {
	calculator checksum.Calculator
	fsProvider filesystem.FileSystemProvider
}

// NewScanner creates a new workbook scanner with the given checksum calculator.
// Uses OS filesystem by default.
// Panics if calculator is nil.
func NewScanner(calculator checksum.Calculator) *Scanner {
	if calculator == nil {
		panic("calculator cannot be nil")
	}
	return &Scanner{
		calculator: calculator,
		fsProvider: filesystem.NewOSFileSystem(),
	}
}

// NewScannerWithFS creates a new workbook scanner with a custom filesystem provider.
// Panics if calculator or fsProvider is nil.
func NewScannerWithFS(calculator checksum.Calculator, fsProvider filesystem.FileSystemProvider) *Scanner {
	if calculator == nil {
		panic("calculator cannot be nil")
	}
	if fsProvider == nil {
		panic("fsProvider cannot be nil")
	}
	return &Scanner{
		calculator: calculator,
		fsProvider: fsProvider,
	}
}

// ScanDirectory recursively scans root for .twb and .twbx files.
// Hidden files and directories (leading dot) and Tableau lock/backup files
// (leading ~) are skipped. Cancellation is checked before each file.
func (s *Scanner) ScanDirectory(ctx context.Context, root string) (twbmig.ScanResult, error) {
	dir, err := s.fsProvider.Open(root)
	if err != nil {
		return twbmig.ScanResult{}, fmt.Errorf("failed to open directory: %w", err)
	}

	result := twbmig.ScanResult{Root: dir.Path()}

	err = dir.Walk(func(file filesystem.File, err error) error {
		if err != nil {
			return fmt.Errorf("error walking path: %w", err)
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		relPath := file.RelativePath()
		if relPath == "." {
			return nil
		}
		if skipped(relPath) {
			return nil
		}
		if file.Info().IsDir() || !IsWorkbookPath(relPath) {
			return nil
		}

		wb, err := s.processFile(file)
		if err != nil {
			return fmt.Errorf("failed to process file %s: %w", relPath, err)
		}
		result.Workbooks = append(result.Workbooks, wb)
		return nil
	})
	if err != nil {
		return twbmig.ScanResult{}, err
	}

	return result, nil
}

// IsWorkbookPath reports whether p names a .twb or .twbx file.
func IsWorkbookPath(p string) bool {
	switch strings.ToLower(filepath.Ext(p)) {
	case ".twb", ".twbx":
		return true
	}
	return false
}

// skipped reports whether any segment of relPath is hidden or a Tableau temp file.
func skipped(relPath string) bool {
	for _, segment := range strings.Split(filepath.ToSlash(relPath), "/") {
		if strings.HasPrefix(segment, ".") || strings.HasPrefix(segment, "~") {
			return true
		}
	}
	return false
}

func (s *Scanner) processFile(file filesystem.File) (twbmig.WorkbookFile, error) {
	content, err := file.ReadContent()
	if err != nil {
		return twbmig.WorkbookFile{}, fmt.Errorf("failed to read file: %w", err)
	}

	info := file.Info()

	unixPath := filepath.ToSlash(file.RelativePath())
	if !strings.HasPrefix(unixPath, "./") {
		unixPath = "./" + unixPath
	}

	// path.Dir would drop the ./ prefix
	directory := unixPath[:strings.LastIndex(unixPath, "/")+1]
	depth := strings.Count(directory, "/") - 1
	if depth < 0 {
		depth = 0
	}

	return twbmig.WorkbookFile{
		Path:       unixPath,
		AbsPath:    file.Path(),
		Name:       info.Name(),
		Directory:  directory,
		Depth:      depth,
		Packaged:   strings.EqualFold(filepath.Ext(info.Name()), ".twbx"),
		SizeBytes:  info.Size(),
		Checksum:   s.calculator.CalculateRaw(content),
		ModifiedAt: info.ModTime(),
	}, nil
}

// Verify Scanner implements the interface at compile time
var _ twbmig.WorkbookScanner = (*Scanner)(nil)
