package fields

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sp(s string) *string { return &s }

func TestIngest_Empty(t *testing.T) {
	reg := NewResolver("federated.empty").Ingest(Sources{})
	assert.Equal(t, 0, reg.Len())
	assert.Empty(t, reg.Diagnostics())
}

func TestIngest_ColsMapSeedsTableAndRemoteName(t *testing.T) {
	reg := NewResolver("federated.0abc").Ingest(Sources{
		Cols: []ColumnMapping{{Key: "Sales", Value: "Orders.sales_amount"}},
	})

	require.Equal(t, 1, reg.Len())
	f, ok := reg.Get("Sales")
	require.True(t, ok)
	require.NotNil(t, f.TableName)
	require.NotNil(t, f.RemoteName)
	assert.Equal(t, "Orders", *f.TableName)
	assert.Equal(t, "sales_amount", *f.RemoteName)
	assert.False(t, f.UsedInWorkbook)
	assert.Equal(t, KindRegular, f.Kind)
	assert.Equal(t, "Unknown", f.Datatype)
	assert.Equal(t, "Unknown", f.Role)
}

func TestIngest_ColsMapStripsBrackets(t *testing.T) {
	reg := NewResolver("ds").Ingest(Sources{
		Cols: []ColumnMapping{
			{Key: "[Order ID]", Value: "[Orders].[order_id]"},
			{Key: "[Region]", Value: "[Region]"},
		},
	})

	f, ok := reg.Get("Order ID")
	require.True(t, ok)
	assert.Equal(t, "Orders", *f.TableName)
	assert.Equal(t, "order_id", *f.RemoteName)

	region, ok := reg.Get("Region")
	require.True(t, ok)
	assert.Equal(t, "Region", *region.TableName)
	assert.Equal(t, "Region", *region.RemoteName, "value without a dot keeps the key as remote name")
}

func TestIngest_MetadataRecordsEnrichAndCreate(t *testing.T) {
	reg := NewResolver("ds").Ingest(Sources{
		Cols: []ColumnMapping{{Key: "[Sales]", Value: "[Orders].[sales_amount]"}},
		MetadataRecords: []MetadataRecord{
			{LocalName: sp("[Sales]"), LocalType: sp("real"), Aggregation: sp("Sum"), ParentName: sp("[Orders]"), RemoteName: sp("sales_amount")},
			{LocalName: sp("[Segment]"), LocalType: sp("string"), Aggregation: sp("Count"), ParentName: sp("[Customers]")},
			{LocalName: sp("[Ship Mode]")},
			{LocalType: sp("string")},
		},
	})

	require.Equal(t, 3, reg.Len())

	sales, _ := reg.Get("Sales")
	assert.Equal(t, "real", sales.Datatype)
	assert.Equal(t, "measure", sales.Role)
	assert.Equal(t, "Sum", *sales.Aggregation)
	assert.Equal(t, []SourceKind{SourceColsMap, SourceMetadataRecord}, sales.Sources)

	segment, _ := reg.Get("Segment")
	assert.Equal(t, "Customers", *segment.TableName)
	assert.Equal(t, "Segment", *segment.RemoteName, "remote name defaults to the local name")

	shipMode, _ := reg.Get("Ship Mode")
	assert.Equal(t, "dimension", shipMode.Role)
	assert.Equal(t, "None", *shipMode.Aggregation)
	assert.Equal(t, "Unknown", shipMode.Datatype)
	assert.Nil(t, shipMode.TableName)

	var missing int
	for _, d := range reg.Diagnostics() {
		if d.Kind == DiagMissingAttribute && d.Field == "" {
			missing++
		}
	}
	assert.Equal(t, 1, missing, "record without local-name is reported, not fatal")
}

func TestIngest_DocumentFieldsClassify(t *testing.T) {
	reg := NewResolver("ds").Ingest(Sources{
		Cols: []ColumnMapping{{Key: "[Profit]", Value: "[Orders].[profit]"}},
		DocumentFields: []DocumentField{
			{Name: "[Profit]", Caption: "Profit", Datatype: "real", Role: "measure", Type: "quantitative", Worksheets: []string{"Overview"}},
			{Name: "[Calculation_9]", Caption: "1. Profit Ratio", Datatype: "real", Calculation: sp("SUM([Profit])/SUM([Sales])"), Worksheets: []string{"Overview", "Detail"}},
			{Name: "[Parameter 1]", Caption: "Top N", Datatype: "integer", ParamDomainType: sp("range"), Value: sp("10")},
		},
	})

	require.Equal(t, 3, reg.Len())

	profit, _ := reg.Get("Profit")
	assert.Equal(t, KindRegular, profit.Kind)
	assert.True(t, profit.UsedInWorkbook)
	assert.Equal(t, "quantitative", profit.FieldType)

	ratio, ok := reg.Get("Profit Ratio")
	require.True(t, ok, "calculated fields are keyed by cleaned caption")
	assert.Equal(t, KindCalculated, ratio.Kind)
	assert.Equal(t, "SUM([Profit])/SUM([Sales])", ratio.CalculationFormula)
	assert.Equal(t, []string{"Detail", "Overview"}, ratio.Worksheets)
	assert.Contains(t, ratio.SourceKeys, "Calculation_9")

	topN, ok := reg.Get("Top N")
	require.True(t, ok)
	assert.Equal(t, KindParameter, topN.Kind)
	assert.Equal(t, "range", topN.ParameterDomainType)
	assert.Equal(t, "10", topN.CalculationFormula, "parameter without calculation uses its current value")
	assert.False(t, topN.UsedInWorkbook)
}

func TestIngest_ParameterOutranksCalculation(t *testing.T) {
	reg := NewResolver("Parameters").Ingest(Sources{
		DocumentFields: []DocumentField{
			{Name: "[Parameter 2]", Caption: "Threshold", Calculation: sp("[Parameter 3] * 2"), ParamDomainType: sp("any"), Value: sp("5")},
		},
	})

	f, ok := reg.Get("Threshold")
	require.True(t, ok)
	assert.Equal(t, KindParameter, f.Kind)
	assert.Equal(t, "[Parameter 3] * 2", f.CalculationFormula)

	var ambiguous bool
	for _, d := range reg.Diagnostics() {
		if d.Kind == DiagClassificationAmbiguity && d.Field == "Threshold" {
			ambiguous = true
		}
	}
	assert.True(t, ambiguous)
}

func TestIngest_ParameterMarkerFoundInLaterStage(t *testing.T) {
	reg := NewResolver("Parameters").Ingest(Sources{
		DocumentFields: []DocumentField{
			{Name: "[Parameter 1]", Caption: "Region Choice", Datatype: "string", Calculation: sp(`"West"`)},
		},
		CalculationColumns: []CalculationColumn{
			{Name: "[Parameter 1]", Caption: "Region Choice", Datatype: "string", Formula: `"West"`, ParamDomainType: sp("list"), Value: sp(`"West"`)},
		},
	})

	require.Equal(t, 1, reg.Len())
	f, _ := reg.Get("Region Choice")
	assert.Equal(t, KindParameter, f.Kind, "classification is only final after the last stage")
	assert.Equal(t, "list", f.ParameterDomainType)
	assert.Equal(t, []SourceKind{SourceDocumentAPI, SourceCalculationColumn}, f.Sources)
}

func TestIngest_CalculationColumnFallbackCreatesCaptionKeyedEntry(t *testing.T) {
	reg := NewResolver("ds").Ingest(Sources{
		CalculationColumns: []CalculationColumn{
			{Name: "[Calculation_123]", Caption: "Base Price", Datatype: "real", Role: "measure", Formula: "[Sales] / [Quantity]"},
		},
	})

	_, byID := reg.Get("Calculation_123")
	assert.False(t, byID, "internal IDs never become canonical names when a caption exists")

	f, ok := reg.Get("Base Price")
	require.True(t, ok)
	assert.Equal(t, KindCalculated, f.Kind)
	assert.Equal(t, "Base Price", f.Caption)
}

func TestIngest_CalculationColumnUpdatesExistingEntry(t *testing.T) {
	reg := NewResolver("ds").Ingest(Sources{
		DocumentFields: []DocumentField{
			{Name: "[Calculation_5]", Caption: "Margin", Datatype: "real", Calculation: sp("[Profit]"), Worksheets: []string{"Sheet 1"}},
		},
		CalculationColumns: []CalculationColumn{
			{Name: "[Calculation_5]", Caption: "Margin", Formula: "[Profit] - [Cost]"},
		},
	})

	require.Equal(t, 1, reg.Len())
	f, _ := reg.Get("Margin")
	assert.Equal(t, KindCalculated, f.Kind)
	assert.Equal(t, "[Profit] - [Cost]", f.CalculationFormula)
	assert.True(t, f.UsedInWorkbook)
	assert.Equal(t, "real", f.Datatype)
}

func TestResolve_ExtractSeededCalculationsTakeTheirCaption(t *testing.T) {
	// Workbooks with a data extract list calculations in cols and metadata
	// records under their internal IDs before the captioned definition.
	r := NewResolver("federated.0abc")
	reg := r.Resolve(Sources{
		Cols: []ColumnMapping{
			{Key: "[Calculation_123]", Value: "[Extract].[Calculation_123]"},
			{Key: "[Sales]", Value: "[Extract].[Sales]"},
		},
		MetadataRecords: []MetadataRecord{
			{LocalName: sp("[Calculation_123]"), LocalType: sp("real"), Aggregation: sp("Sum"), ParentName: sp("[Extract]")},
		},
		DocumentFields: []DocumentField{
			{Name: "[Calculation_123]", Caption: "Base Price", Datatype: "real", Calculation: sp("[Sales] / 2")},
			{Name: "[Calculation_456]", Caption: "Total", Datatype: "real", Calculation: sp("[Calculation_123] + 1")},
		},
	}, []string{"[federated.0abc].[sum:Calculation_123:qk]"})

	assert.Equal(t, []string{"Base Price", "Sales", "Total"}, reg.Names())
	for _, name := range reg.Names() {
		assert.False(t, IsCalculationID(name), "canonical name %q is an internal ID", name)
	}

	base, ok := reg.Get("Base Price")
	require.True(t, ok)
	assert.Equal(t, KindCalculated, base.Kind)
	assert.Equal(t, GenerateFieldID("federated.0abc", "Base Price"), base.ID)
	assert.Equal(t, []string{"Calculation_123"}, base.SourceKeys)
	assert.Equal(t, "Extract", *base.TableName)
	assert.True(t, base.UsedInWorkbook)

	total, _ := reg.Get("Total")
	assert.Equal(t, "[Base Price] + 1", total.CalculationFormula)

	_, stale := reg.Get("Calculation_123")
	assert.False(t, stale)
}

func TestIngest_InternalNameMatchingAnotherCaptionStaysSeparate(t *testing.T) {
	r := NewResolver("ds")
	reg := r.Ingest(Sources{
		CalculationColumns: []CalculationColumn{
			{Name: "[Calculation_1]", Caption: "Margin", Formula: "[Profit]/[Sales]"},
			{Name: "[Margin]", Caption: "Profit Margin", Formula: "[Calculation_1] * 100"},
		},
	})
	r.ResolveCalculationReferences(reg)

	require.Equal(t, []string{"Margin", "Profit Margin"}, reg.Names())

	margin, _ := reg.Get("Margin")
	assert.Equal(t, "[Profit]/[Sales]", margin.CalculationFormula)
	assert.Equal(t, []string{"Calculation_1"}, margin.SourceKeys)

	profitMargin, _ := reg.Get("Profit Margin")
	assert.Equal(t, "[Margin] * 100", profitMargin.CalculationFormula)
	assert.Equal(t, []string{"Margin"}, profitMargin.SourceKeys)

	assert.Equal(t, 0, r.ResolveCalculationReferences(reg), "second pass leaves formulas alone")
	assert.Equal(t, "[Margin] * 100", profitMargin.CalculationFormula)
}

func TestIngest_CalculationIDsNeverSubstringMatch(t *testing.T) {
	reg := NewResolver("ds").Ingest(Sources{
		CalculationColumns: []CalculationColumn{
			{Name: "[Calculation_12]", Caption: "Twelve", Formula: "12"},
			{Name: "[Calculation_1]", Caption: "One", Formula: "1"},
		},
	})
	assert.Equal(t, 2, reg.Len())
}

func TestIngest_SubstringFallbackMerges(t *testing.T) {
	// Known weakness kept on purpose: "Order Date" contains "Order".
	reg := NewResolver("ds").Ingest(Sources{
		Cols:            []ColumnMapping{{Key: "[Order Date]", Value: "[Orders].[order_date]"}},
		MetadataRecords: []MetadataRecord{{LocalName: sp("[Order]"), LocalType: sp("date")}},
	})

	require.Equal(t, 1, reg.Len())
	f, _ := reg.Get("Order Date")
	assert.Equal(t, "date", f.Datatype)
	assert.Equal(t, []string{"Order Date", "Order"}, f.SourceKeys)
}

func TestIngest_LastWriterWinsButBlankNeverOverwrites(t *testing.T) {
	reg := NewResolver("ds").Ingest(Sources{
		MetadataRecords: []MetadataRecord{{LocalName: sp("[Qty]"), LocalType: sp("integer"), ParentName: sp("[Orders]")}},
		DocumentFields: []DocumentField{
			{Name: "[Qty]", Datatype: "real", Role: "measure"},
			{Name: "[Qty]", Datatype: "", Role: ""},
		},
	})

	f, _ := reg.Get("Qty")
	assert.Equal(t, "real", f.Datatype)
	assert.Equal(t, "measure", f.Role)
	assert.Equal(t, "Orders", *f.TableName)
}

func TestIngest_Deterministic(t *testing.T) {
	src := Sources{
		Cols: []ColumnMapping{
			{Key: "[Sales]", Value: "[Orders].[sales]"},
			{Key: "[Sales Target]", Value: "[Targets].[target]"},
			{Key: "[Region]", Value: "[Orders].[region]"},
		},
		MetadataRecords: []MetadataRecord{
			{LocalName: sp("[Sales]"), LocalType: sp("real"), Aggregation: sp("Sum")},
			{LocalName: sp("[Region]"), LocalType: sp("string")},
			{LocalName: sp("[Sale]"), LocalType: sp("string")},
		},
		DocumentFields: []DocumentField{
			{Name: "[Calculation_1]", Caption: "Attainment", Calculation: sp("[Sales]/[Sales Target]"), Worksheets: []string{"B", "A"}},
		},
		CalculationColumns: []CalculationColumn{
			{Name: "[Calculation_2]", Caption: "Doubled", Formula: "[Calculation_1] * 2"},
		},
	}

	first := NewResolver("ds").Resolve(src, []string{"[ds].[sum:Sales:qk]"})
	second := NewResolver("ds").Resolve(src, []string{"[ds].[sum:Sales:qk]"})

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
	assert.Equal(t, first.Names(), second.Names())
}

func TestIngest_FieldIDsAreStable(t *testing.T) {
	reg := NewResolver("federated.0abc").Ingest(Sources{
		Cols: []ColumnMapping{{Key: "Sales", Value: "Orders.sales_amount"}},
	})
	f, _ := reg.Get("Sales")
	assert.Equal(t, GenerateFieldID("federated.0abc", "Sales"), f.ID)
	assert.Equal(t, GenerateFieldID("FEDERATED.0ABC", "Sales"), f.ID, "datasource name is case-folded")
	assert.NotEqual(t, GenerateFieldID("federated.0abc", "sales"), f.ID)
}

func TestRegistry_Stats(t *testing.T) {
	reg := NewResolver("ds").Resolve(Sources{
		Cols: []ColumnMapping{{Key: "[Amount]", Value: "[T].[amount]"}, {Key: "[Budget]", Value: "[T].[budget]"}},
		DocumentFields: []DocumentField{
			{Name: "[Calculation_1]", Caption: "Cost Ratio", Calculation: sp("[Amount]/[Budget]")},
			{Name: "[Parameter 1]", Caption: "Top N", ParamDomainType: sp("any"), Value: sp("1")},
		},
	}, []string{"[none:Amount:nk]"})

	assert.Equal(t, Stats{Total: 4, Regular: 2, Calculated: 1, Parameters: 1, Used: 1}, reg.Stats())
}

func TestRegistry_MarshalJSON(t *testing.T) {
	reg := NewResolver("ds").Ingest(Sources{
		Cols: []ColumnMapping{{Key: "Sales", Value: "Orders.sales_amount"}},
	})

	data, err := json.Marshal(reg)
	require.NoError(t, err)

	var decoded map[string]map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Contains(t, decoded, "Sales")
	assert.Equal(t, "regular", decoded["Sales"]["kind"])
	assert.Equal(t, "Orders", decoded["Sales"]["table_name"])
	assert.Equal(t, false, decoded["Sales"]["used_in_workbook"])
	assert.Equal(t, []interface{}{"xml-cols-map"}, decoded["Sales"]["sources"])
}

func TestKindText(t *testing.T) {
	for _, k := range []Kind{KindUnclassified, KindRegular, KindCalculated, KindParameter} {
		text, err := k.MarshalText()
		require.NoError(t, err)
		var got Kind
		require.NoError(t, got.UnmarshalText(text))
		assert.Equal(t, k, got)
	}
	var k Kind
	assert.Error(t, k.UnmarshalText([]byte("measure")))

	var s SourceKind
	require.NoError(t, s.UnmarshalText([]byte("document-api")))
	assert.Equal(t, SourceDocumentAPI, s)
	assert.Error(t, s.UnmarshalText([]byte("source(9)")))
}
