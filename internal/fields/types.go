package fields

import (
	"fmt"

	"github.com/google/uuid"
)

// SourceKind identifies which metadata source produced a raw field record.
type SourceKind int

const (
	SourceColsMap SourceKind = iota
	SourceMetadataRecord
	SourceDocumentAPI
	SourceCalculationColumn
)

var sourceKindNames = map[SourceKind]string{
	SourceColsMap:           "xml-cols-map",
	SourceMetadataRecord:    "xml-metadata-record",
	SourceDocumentAPI:       "document-api",
	SourceCalculationColumn: "xml-calculation-column",
}

func (k SourceKind) String() string {
	if name, ok := sourceKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("source(%d)", int(k))
}

// MarshalText renders the kind by its wire name.
func (k SourceKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText parses a wire name written by MarshalText.
func (k *SourceKind) UnmarshalText(text []byte) error {
	for kind, name := range sourceKindNames {
		if name == string(text) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown source kind %q", text)
}

// Kind is the final classification of a resolved field.
//
// The zero value is KindUnclassified; a field only leaves that state when
// ingestion classifies it. Classification precedence is
// parameter > calculated > regular.
type Kind int

const (
	KindUnclassified Kind = iota
	KindRegular
	KindCalculated
	KindParameter
)

func (k Kind) String() string {
	switch k {
	case KindRegular:
		return "regular"
	case KindCalculated:
		return "calculated"
	case KindParameter:
		return "parameter"
	default:
		return "unclassified"
	}
}

// MarshalText renders the kind by name so JSON output stays readable.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText parses a name written by MarshalText.
func (k *Kind) UnmarshalText(text []byte) error {
	for _, kind := range []Kind{KindUnclassified, KindRegular, KindCalculated, KindParameter} {
		if kind.String() == string(text) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown field kind %q", text)
}

// ColumnMapping is one <map key="..." value="..."/> entry of a datasource <cols> block.
// Key and Value are taken verbatim from the XML and may still carry brackets.
type ColumnMapping struct {
	Key   string
	Value string
}

// MetadataRecord is one <metadata-record class="column"> entry.
// Every element is optional; nil means the element was absent.
type MetadataRecord struct {
	LocalName   *string
	LocalType   *string
	Aggregation *string
	ParentName  *string
	RemoteName  *string
}

// DocumentField is the workbook object model's view of a field: the merged
// picture of a datasource <column> and its metadata record, together with the
// worksheets that reference it.
type DocumentField struct {
	Name               string
	Caption            string
	Datatype           string
	Role               string
	Type               string
	Calculation        *string
	DefaultAggregation string
	Worksheets         []string

	// ParamDomainType is set when the underlying XML element carries
	// a param-domain-type attribute.
	ParamDomainType *string
	Value           *string
}

// CalculationColumn is a datasource <column> element with a <calculation> child.
type CalculationColumn struct {
	Name            string
	Caption         string
	Datatype        string
	Role            string
	Type            string
	Formula         string
	ParamDomainType *string
	Value           *string
}

// Sources groups the four independently keyed collections describing one datasource.
// Any of them may be empty.
type Sources struct {
	Cols               []ColumnMapping
	MetadataRecords    []MetadataRecord
	DocumentFields     []DocumentField
	CalculationColumns []CalculationColumn
}

// RawAttributes carries the semantic properties one source knows about a field.
// Nil pointers mean the source had nothing to say; they never overwrite.
type RawAttributes struct {
	Caption         *string
	Datatype        *string
	Role            *string
	Type            *string
	Aggregation     *string
	TableName       *string
	RemoteName      *string
	Calculation     *string
	ParamDomainType *string
	Value           *string
	Worksheets      []string
}

// RawFieldRecord is a field as one source describes it, before reconciliation.
type RawFieldRecord struct {
	SourceKey     string
	SourceKind    SourceKind
	CandidateName *string
	Attributes    RawAttributes

	// keyByCandidate makes the candidate name the canonical name of a newly
	// created entry. Calculated fields and parameters are keyed this way.
	keyByCandidate bool
}

// ResolvedField is one entry of the unified registry.
type ResolvedField struct {
	ID                  uuid.UUID    `json:"id"`
	CanonicalName       string       `json:"canonical_name"`
	Caption             string       `json:"caption,omitempty"`
	Kind                Kind         `json:"kind"`
	Datatype            string       `json:"datatype"`
	Role                string       `json:"role"`
	FieldType           string       `json:"field_type,omitempty"`
	Aggregation         *string      `json:"aggregation"`
	TableName           *string      `json:"table_name"`
	RemoteName          *string      `json:"remote_name"`
	CalculationFormula  string       `json:"calculation_formula,omitempty"`
	ParameterDomainType string       `json:"parameter_domain_type,omitempty"`
	CurrentValue        string       `json:"current_value,omitempty"`
	UsedInWorkbook      bool         `json:"used_in_workbook"`
	Worksheets          []string     `json:"worksheets,omitempty"`
	SourceKeys          []string     `json:"source_keys"`
	Sources             []SourceKind `json:"sources"`

	calculation     string
	paramDomainType *string
	calcColumnKeys  []string

	// captionKeyed is set once the canonical name comes from a caption.
	captionKeyed bool
}

// IsCalculated reports whether the field is a calculated field.
func (f *ResolvedField) IsCalculated() bool { return f.Kind == KindCalculated }

// IsParameter reports whether the field is a parameter.
func (f *ResolvedField) IsParameter() bool { return f.Kind == KindParameter }

// DiagnosticKind classifies non-fatal observations made during resolution.
type DiagnosticKind string

const (
	DiagMissingAttribute        DiagnosticKind = "missing-attribute"
	DiagUnresolvedReference     DiagnosticKind = "unresolved-reference"
	DiagClassificationAmbiguity DiagnosticKind = "classification-ambiguity"
	DiagUnmatchedUsage          DiagnosticKind = "unmatched-usage"
)

// Diagnostic records something the resolver recovered from.
type Diagnostic struct {
	Kind    DiagnosticKind `json:"kind"`
	Field   string         `json:"field,omitempty"`
	Message string         `json:"message"`
}

// Stats summarizes a registry.
type Stats struct {
	Total      int `json:"total"`
	Regular    int `json:"regular"`
	Calculated int `json:"calculated"`
	Parameters int `json:"parameters"`
	Used       int `json:"used"`
}
