package render

import (
	"fmt"
	"path/filepath"

	"github.com/vvka-141/twbmig/internal/extract"
	"github.com/vvka-141/twbmig/internal/files/filesystem"
	"github.com/vvka-141/twbmig/internal/logging"
	"github.com/vvka-141/twbmig/pkg/twbmig"
)

// Options selects what Writer renders.
type Options struct {
	OutputDir     string
	Formats       []string
	IncludeUnused bool
}

// Writer renders results into <OutputDir>/<workbook>/.
type Writer struct {
	fsProvider filesystem.FileSystemProvider
	logger     twbmig.Logger
}

// NewWriter creates a writer. A nil logger discards progress messages.
func NewWriter(fsProvider filesystem.FileSystemProvider, logger twbmig.Logger) *Writer {
	if fsProvider == nil {
		panic("fsProvider cannot be nil")
	}
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	return &Writer{fsProvider: fsProvider, logger: logger}
}

// Artifact is one rendered file.
type Artifact struct {
	Name string
	Data []byte
}

// Render produces the artifacts for the selected formats without writing them.
func Render(r *extract.Result, opts Options) ([]Artifact, error) {
	formats := opts.Formats
	if len(formats) == 0 {
		formats = twbmig.DefaultFormats
	}

	var artifacts []Artifact
	for _, format := range formats {
		switch format {
		case twbmig.FormatJSON:
			data, err := JSON(r)
			if err != nil {
				return nil, fmt.Errorf("render %s: %w", WorkbookJSONFile, err)
			}
			artifacts = append(artifacts, Artifact{WorkbookJSONFile, data})

		case twbmig.FormatCSV:
			mapped := withFields(r)
			for _, d := range mapped {
				name := fieldMappingFileName(d.DisplayName(), len(mapped) == 1)
				data, err := FieldMappingCSV(d, opts.IncludeUnused)
				if err != nil {
					return nil, fmt.Errorf("render %s: %w", name, err)
				}
				artifacts = append(artifacts, Artifact{name, data})
			}
			if len(r.Worksheets)+len(r.Dashboards) > 0 {
				data, err := DashboardUsageCSV(r)
				if err != nil {
					return nil, fmt.Errorf("render %s: %w", DashboardUsageFile, err)
				}
				artifacts = append(artifacts, Artifact{DashboardUsageFile, data})
			}

		case twbmig.FormatXLSX:
			data, err := FieldInventoryXLSX(r, opts.IncludeUnused)
			if err != nil {
				return nil, fmt.Errorf("render %s: %w", FieldInventoryFile, err)
			}
			artifacts = append(artifacts, Artifact{FieldInventoryFile, data})

		case twbmig.FormatText:
			for _, d := range r.Datasources {
				if d.Parameters {
					continue
				}
				artifacts = append(artifacts, Artifact{setupGuideFileName(d.DisplayName()), SetupGuide(r, d)})
			}

		default:
			return nil, fmt.Errorf("unknown format %q: %w", format, twbmig.ErrInvalidConfig)
		}
	}
	return artifacts, nil
}

// Write renders r and writes every artifact under the workbook's directory.
// Returns the written paths in render order.
func (w *Writer) Write(r *extract.Result, opts Options) ([]string, error) {
	artifacts, err := Render(r, opts)
	if err != nil {
		return nil, err
	}

	dir := WorkbookDir(opts.OutputDir, r)
	if err := w.fsProvider.MkdirAll(dir); err != nil {
		return nil, fmt.Errorf("create output directory %s: %w", dir, err)
	}

	paths := make([]string, 0, len(artifacts))
	for _, a := range artifacts {
		path := filepath.Join(dir, a.Name)
		if err := w.fsProvider.WriteFile(path, a.Data); err != nil {
			return paths, fmt.Errorf("write %s: %w", path, err)
		}
		w.logger.Verbose("Wrote %s (%d bytes)", path, len(a.Data))
		paths = append(paths, path)
	}
	return paths, nil
}

// WorkbookDir is the directory Write puts the artifacts of r in.
func WorkbookDir(outputDir string, r *extract.Result) string {
	return filepath.Join(outputDir, SafeName(r.Workbook))
}

func withFields(r *extract.Result) []*extract.Datasource {
	var out []*extract.Datasource
	for _, d := range r.Datasources {
		if d.Fields != nil && d.Fields.Len() > 0 {
			out = append(out, d)
		}
	}
	return out
}
