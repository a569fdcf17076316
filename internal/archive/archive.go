package archive

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klauspost/compress/zip"

	"github.com/vvka-141/twbmig/internal/files/filesystem"
	"github.com/vvka-141/twbmig/pkg/twbmig"
)

// ErrNoWorkbookInArchive is returned when a .twbx contains no .twb entry.
var ErrNoWorkbookInArchive = fmt.Errorf("no .twb entry in archive: %w", twbmig.ErrUnsupportedInput)

// EntryKind classifies a packaged file.
type EntryKind string

const (
	KindWorkbook EntryKind = "workbook"
	KindExtract  EntryKind = "extract"
	KindImage    EntryKind = "image"
	KindData     EntryKind = "data"
	KindOther    EntryKind = "other"
)

var kindsByExtension = map[string]EntryKind{
	".twb":   KindWorkbook,
	".hyper": KindExtract,
	".tde":   KindExtract,
	".png":   KindImage,
	".jpg":   KindImage,
	".jpeg":  KindImage,
	".gif":   KindImage,
	".svg":   KindImage,
	".csv":   KindData,
	".xlsx":  KindData,
	".xls":   KindData,
	".json":  KindData,
	".txt":   KindData,
}

// Entry is one file packaged in a .twbx.
type Entry struct {
	Path string    `json:"path"`
	Size uint64    `json:"size"`
	Kind EntryKind `json:"kind"`
}

// Document is the workbook XML located in an input file.
type Document struct {
	// Name is the .twb file name: the input's base name, or the archive entry path.
	Name     string
	Content  []byte
	Packaged bool
	Entries  []Entry
}

// Open reads a .twb or .twbx through fsys.
func Open(fsys filesystem.FileSystemProvider, filePath string) (*Document, error) {
	info, err := fsys.Stat(filePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", twbmig.ErrInputNotFound, filePath)
		}
		return nil, fmt.Errorf("stat %s: %w", filePath, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", twbmig.ErrUnsupportedInput, filePath)
	}
	if info.Size() > twbmig.MaxWorkbookSize {
		return nil, fmt.Errorf("%w: %s is %d bytes (limit %d)", twbmig.ErrUnsupportedInput, filePath, info.Size(), twbmig.MaxWorkbookSize)
	}

	data, err := fsys.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filePath, err)
	}
	return Read(data, filepath.Base(filePath))
}

// Read locates the workbook XML in data. name decides the format by extension:
// .twb content is returned as is, .twbx is unpacked.
func Read(data []byte, name string) (*Document, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".twb":
		return &Document{Name: name, Content: data}, nil
	case ".twbx":
		return readPackaged(data, name)
	default:
		return nil, fmt.Errorf("%w: %s (expected .twb or .twbx)", twbmig.ErrUnsupportedInput, name)
	}
}

func readPackaged(data []byte, name string) (*Document, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %s is not a valid archive: %v", twbmig.ErrUnsupportedInput, name, err)
	}

	doc := &Document{Packaged: true}
	var workbook *zip.File
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		entry := Entry{Path: f.Name, Size: f.UncompressedSize64, Kind: kindOf(f.Name)}
		doc.Entries = append(doc.Entries, entry)

		if entry.Kind != KindWorkbook {
			continue
		}
		if workbook == nil || (isRoot(f.Name) && !isRoot(workbook.Name)) {
			workbook = f
		}
	}
	sort.Slice(doc.Entries, func(i, j int) bool { return doc.Entries[i].Path < doc.Entries[j].Path })

	if workbook == nil {
		return nil, fmt.Errorf("%s: %w", name, ErrNoWorkbookInArchive)
	}
	if workbook.UncompressedSize64 > twbmig.MaxWorkbookSize {
		return nil, fmt.Errorf("%w: %s in %s exceeds %d bytes", twbmig.ErrUnsupportedInput, workbook.Name, name, twbmig.MaxWorkbookSize)
	}

	content, err := readEntry(workbook)
	if err != nil {
		return nil, fmt.Errorf("read %s from %s: %w", workbook.Name, name, err)
	}
	doc.Name = workbook.Name
	doc.Content = content
	return doc, nil
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	content, err := io.ReadAll(io.LimitReader(rc, twbmig.MaxWorkbookSize+1))
	if err != nil {
		return nil, err
	}
	if len(content) > twbmig.MaxWorkbookSize {
		return nil, fmt.Errorf("%w: entry exceeds %d bytes", twbmig.ErrUnsupportedInput, twbmig.MaxWorkbookSize)
	}
	return content, nil
}

func kindOf(name string) EntryKind {
	if kind, ok := kindsByExtension[strings.ToLower(path.Ext(name))]; ok {
		return kind
	}
	return KindOther
}

func isRoot(name string) bool {
	return !strings.Contains(strings.TrimPrefix(name, "./"), "/")
}

// WorkbookName is the workbook's display name: the file name without extension.
func WorkbookName(filePath string) string {
	base := filepath.Base(filePath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
