package scanner

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/twbmig/internal/checksum"
	"github.com/vvka-141/twbmig/internal/files/filesystem"
)

func newTestScanner() (*Scanner, *filesystem.MemoryFileSystem) {
	fs := filesystem.NewMemoryFileSystem("/project")
	return NewScannerWithFS(checksum.New(), fs), fs
}

func TestNewScanner_NilCalculator(t *testing.T) {
	assert.Panics(t, func() { NewScanner(nil) })
}

func TestNewScannerWithFS_NilArgs(t *testing.T) {
	calc := checksum.New()
	fs := filesystem.NewMemoryFileSystem("/")

	tests := []struct {
		name string
		fn   func()
	}{
		{"nil calculator", func() { NewScannerWithFS(nil, fs) }},
		{"nil filesystem", func() { NewScannerWithFS(calc, nil) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Panics(t, tt.fn)
		})
	}
}

func TestScanDirectory(t *testing.T) {
	s, fs := newTestScanner()
	fs.AddFile("Sales.twb", "<workbook/>")
	fs.AddFile("finance/Budget.TWBX", "PK")
	fs.AddFile("finance/2024/Forecast.twbx", "PK")
	fs.AddFile("notes.txt", "ignore me")
	fs.AddFile("Data/extract.hyper", "binary")

	result, err := s.ScanDirectory(context.Background(), "/project")
	require.NoError(t, err)
	assert.Equal(t, "/project", result.Root)
	require.Len(t, result.Workbooks, 3)

	byName := map[string]int{}
	for i, wb := range result.Workbooks {
		byName[wb.Name] = i
		assert.True(t, strings.HasPrefix(wb.Path, "./"), wb.Path)
		assert.Len(t, wb.Checksum, 64)
	}

	sales := result.Workbooks[byName["Sales.twb"]]
	assert.Equal(t, "./Sales.twb", sales.Path)
	assert.Equal(t, "/project/Sales.twb", sales.AbsPath)
	assert.Equal(t, "./", sales.Directory)
	assert.Equal(t, 0, sales.Depth)
	assert.False(t, sales.Packaged)
	assert.Equal(t, int64(len("<workbook/>")), sales.SizeBytes)
	assert.Equal(t, checksum.New().CalculateRaw([]byte("<workbook/>")), sales.Checksum)

	budget := result.Workbooks[byName["Budget.TWBX"]]
	assert.True(t, budget.Packaged)
	assert.Equal(t, "./finance/", budget.Directory)
	assert.Equal(t, 1, budget.Depth)

	forecast := result.Workbooks[byName["Forecast.twbx"]]
	assert.Equal(t, "./finance/2024/Forecast.twbx", forecast.Path)
	assert.Equal(t, 2, forecast.Depth)
}

func TestScanDirectory_SkipsHiddenAndTempFiles(t *testing.T) {
	s, fs := newTestScanner()
	fs.AddFile("Keep.twb", "<workbook/>")
	fs.AddFile(".git/Old.twb", "<workbook/>")
	fs.AddFile("~Keep__12345.twbr.twb", "<workbook/>")
	fs.AddFile("~backup/Copy.twb", "<workbook/>")

	result, err := s.ScanDirectory(context.Background(), "/project")
	require.NoError(t, err)
	require.Len(t, result.Workbooks, 1)
	assert.Equal(t, "Keep.twb", result.Workbooks[0].Name)
}

func TestScanDirectory_EmptyDirectory(t *testing.T) {
	s, fs := newTestScanner()
	fs.AddFile("readme.md", "# nothing here")

	result, err := s.ScanDirectory(context.Background(), "/project")
	require.NoError(t, err)
	assert.Empty(t, result.Workbooks)
}

func TestScanDirectory_NonexistentPath(t *testing.T) {
	s, _ := newTestScanner()

	_, err := s.ScanDirectory(context.Background(), "/nonexistent")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestScanDirectory_Cancelled(t *testing.T) {
	s, fs := newTestScanner()
	fs.AddFile("a.twb", "<workbook/>")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.ScanDirectory(ctx, "/project")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestScanDirectory_OSFileSystem(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "nested", "Ops.twb"), []byte("<workbook/>"), 0o644))

	result, err := NewScanner(checksum.New()).ScanDirectory(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, result.Workbooks, 1)
	assert.Equal(t, "./nested/Ops.twb", result.Workbooks[0].Path)
	assert.Equal(t, filepath.Join(dir, "nested", "Ops.twb"), result.Workbooks[0].AbsPath)
}

func TestIsWorkbookPath(t *testing.T) {
	tests := map[string]bool{
		"a.twb":      true,
		"dir/a.TWBX": true,
		"a.tds":      false,
		"a.twb.bak":  false,
		"twb":        false,
		"a.hyper":    false,
	}
	for p, want := range tests {
		assert.Equal(t, want, IsWorkbookPath(p), p)
	}
}

func BenchmarkScanDirectory(b *testing.B) {
	fs := filesystem.NewMemoryFileSystem("/bench")
	for i := 0; i < 50; i++ {
		fs.AddFile(filepath.Join("dir", string(rune('a'+i%26)), "wb.twb"), strings.Repeat("<x/>", 256))
	}
	s := NewScannerWithFS(checksum.New(), fs)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := s.ScanDirectory(context.Background(), "/bench"); err != nil {
			b.Fatal(err)
		}
	}
}
