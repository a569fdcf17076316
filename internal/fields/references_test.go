package fields

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveCalculationReferences_ReplacesInternalIDs(t *testing.T) {
	r := NewResolver("ds")
	reg := r.Ingest(Sources{
		DocumentFields: []DocumentField{
			{Name: "[Calculation_456]", Caption: "Total Price", Datatype: "real", Calculation: sp("[Calculation_123] + 1")},
		},
		CalculationColumns: []CalculationColumn{
			{Name: "[Calculation_123]", Caption: "Base Price", Datatype: "real", Formula: "[Sales] / [Quantity]"},
		},
	})

	n := r.ResolveCalculationReferences(reg)

	assert.Equal(t, 1, n)
	total, ok := reg.Get("Total Price")
	require.True(t, ok)
	assert.Equal(t, "[Base Price] + 1", total.CalculationFormula)

	base, _ := reg.Get("Base Price")
	assert.Equal(t, "[Sales] / [Quantity]", base.CalculationFormula)
}

func TestResolveCalculationReferences_ForwardReference(t *testing.T) {
	r := NewResolver("ds")
	reg := r.Ingest(Sources{
		CalculationColumns: []CalculationColumn{
			{Name: "[Calculation_1]", Caption: "Doubled", Formula: "[Calculation_2] * 2"},
			{Name: "[Calculation_2]", Caption: "Base", Formula: "[Sales]"},
		},
	})

	r.ResolveCalculationReferences(reg)

	f, _ := reg.Get("Doubled")
	assert.Equal(t, "[Base] * 2", f.CalculationFormula)
}

func TestResolveCalculationReferences_Idempotent(t *testing.T) {
	r := NewResolver("ds")
	reg := r.Ingest(Sources{
		CalculationColumns: []CalculationColumn{
			{Name: "[Calculation_1]", Caption: "A", Formula: "[Calculation_2] + [Calculation_3]"},
			{Name: "[Calculation_2]", Caption: "B", Formula: "[Calculation_3] * 2"},
			{Name: "[Calculation_3]", Caption: "C", Formula: "[Sales]"},
		},
	})

	first := r.ResolveCalculationReferences(reg)
	snapshot := map[string]string{}
	for _, f := range reg.Fields() {
		snapshot[f.CanonicalName] = f.CalculationFormula
	}
	second := r.ResolveCalculationReferences(reg)

	assert.Equal(t, 2, first)
	assert.Equal(t, 0, second)
	for _, f := range reg.Fields() {
		assert.Equal(t, snapshot[f.CanonicalName], f.CalculationFormula)
	}
	a, _ := reg.Get("A")
	assert.Equal(t, "[B] + [C]", a.CalculationFormula)
}

func TestResolveCalculationReferences_UnresolvedStaysAndIsDiagnosed(t *testing.T) {
	r := NewResolver("ds")
	reg := r.Ingest(Sources{
		CalculationColumns: []CalculationColumn{
			{Name: "[Calculation_1]", Caption: "Orphan", Formula: "[Calculation_999] - 1"},
		},
	})
	before := len(reg.Diagnostics())

	r.ResolveCalculationReferences(reg)

	f, _ := reg.Get("Orphan")
	assert.Equal(t, "[Calculation_999] - 1", f.CalculationFormula)
	diags := reg.Diagnostics()[before:]
	require.Len(t, diags, 1)
	assert.Equal(t, DiagUnresolvedReference, diags[0].Kind)
	assert.Equal(t, "Orphan", diags[0].Field)
}

func TestResolveCalculationReferences_ExternalParameters(t *testing.T) {
	params := NewResolver("Parameters").Ingest(Sources{
		CalculationColumns: []CalculationColumn{
			{Name: "[Parameter 1]", Caption: "Growth Rate", Datatype: "real", Formula: "0.05", ParamDomainType: sp("range"), Value: sp("0.05")},
		},
	})
	refs := params.ReferenceMap()
	require.Equal(t, map[string]string{"Parameter 1": "Growth Rate"}, refs)

	r := NewResolver("ds", WithExternalReferences(refs))
	reg := r.Ingest(Sources{
		DocumentFields: []DocumentField{
			{Name: "[Calculation_7]", Caption: "Projected", Calculation: sp("[Sales] * (1 + [Parameters].[Parameter 1])")},
		},
	})
	r.ResolveCalculationReferences(reg)

	f, _ := reg.Get("Projected")
	assert.Equal(t, "[Sales] * (1 + [Parameters].[Growth Rate])", f.CalculationFormula)
}

func TestReferenceMap_OmitsIdentityMappings(t *testing.T) {
	reg := NewResolver("ds").Ingest(Sources{
		CalculationColumns: []CalculationColumn{
			{Name: "[Margin]", Formula: "[Profit] - [Cost]"},
			{Name: "[Calculation_3]", Caption: "Ratio", Formula: "1"},
		},
	})

	assert.Equal(t, map[string]string{"Calculation_3": "Ratio"}, reg.ReferenceMap())
}

func TestResolve_FullPipeline(t *testing.T) {
	reg := NewResolver("federated.0abc").Resolve(Sources{
		Cols: []ColumnMapping{{Key: "[Sales]", Value: "[Orders].[sales_amount]"}},
		MetadataRecords: []MetadataRecord{
			{LocalName: sp("[Sales]"), LocalType: sp("real"), Aggregation: sp("Sum"), ParentName: sp("[Orders]"), RemoteName: sp("sales_amount")},
		},
		DocumentFields: []DocumentField{
			{Name: "[Calculation_2]", Caption: "Sales x2", Calculation: sp("[Calculation_1] * 2")},
		},
		CalculationColumns: []CalculationColumn{
			{Name: "[Calculation_1]", Caption: "Net Sales", Formula: "[Sales] - [Discount]"},
		},
	}, []string{"[federated.0abc].[sum:Sales:qk]"})

	sales, _ := reg.Get("Sales")
	assert.True(t, sales.UsedInWorkbook)
	assert.Equal(t, "measure", sales.Role)

	doubled, ok := reg.Get("Sales x2")
	require.True(t, ok)
	assert.Equal(t, "[Net Sales] * 2", doubled.CalculationFormula)
}
