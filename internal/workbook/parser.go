package workbook

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/vvka-141/twbmig/pkg/twbmig"
)

// Parse decodes .twb content.
//
// Parameters:
//   - content: raw XML of the workbook
//   - source: path or archive entry, used for error reporting
//
// Error cases:
//   - empty content or a root element other than <workbook> → ErrNotWorkbook
//   - malformed XML → *WorkbookError wrapping twbmig.ErrWorkbookParse
func Parse(content []byte, source string) (*Workbook, error) {
	if len(bytes.TrimSpace(content)) == 0 {
		return nil, fmt.Errorf("%s: %w", source, ErrNotWorkbook)
	}

	root, err := rootElement(content)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", twbmig.ErrWorkbookParse, wrapXMLError(err, source))
	}
	if root == "" {
		return nil, fmt.Errorf("%s: no root element: %w", source, ErrNotWorkbook)
	}
	if root != "workbook" {
		return nil, fmt.Errorf("%s: root element is <%s>: %w", source, root, ErrNotWorkbook)
	}

	var wb Workbook
	if err := xml.Unmarshal(content, &wb); err != nil {
		return nil, fmt.Errorf("%w: %w", twbmig.ErrWorkbookParse, wrapXMLError(err, source))
	}
	wb.Source = source
	return &wb, nil
}

// rootElement returns the local name of the first start element.
func rootElement(content []byte) (string, error) {
	dec := xml.NewDecoder(bytes.NewReader(content))
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return "", nil
		}
		if err != nil {
			return "", err
		}
		if start, ok := tok.(xml.StartElement); ok {
			return start.Name.Local, nil
		}
	}
}

// Datasource returns the datasource with the given name.
func (wb *Workbook) Datasource(name string) (*Datasource, bool) {
	for i := range wb.Datasources {
		if wb.Datasources[i].Name == name {
			return &wb.Datasources[i], true
		}
	}
	return nil, false
}

// Parameters returns the workbook's Parameters datasource, if it has one.
func (wb *Workbook) Parameters() (*Datasource, bool) {
	return wb.Datasource(twbmig.ParametersDatasource)
}

// DisplayName is the caption when set, the internal name otherwise.
func (ds *Datasource) DisplayName() string {
	if strings.TrimSpace(ds.Caption) != "" {
		return ds.Caption
	}
	return ds.Name
}

// IsParameters reports whether ds is the workbook's parameter container.
func (ds *Datasource) IsParameters() bool {
	return ds.Name == twbmig.ParametersDatasource
}
