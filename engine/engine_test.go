package engine

import (
	"context"
	"encoding/json"
	"testing"

	"stickler/schema"
	"stickler/similarity"
)

func defaultReg() *similarity.Registry {
	return similarity.NewDefaultRegistry()
}

func strField(name string) schema.Field {
	return schema.Field{Name: name, Type: schema.Type{Kind: schema.KindPrim, Prim: schema.PrimString}, Config: schema.DefaultFieldConfig(schema.PrimString)}
}

func numField(name string, threshold float64) schema.Field {
	cfg := schema.DefaultFieldConfig(schema.PrimFloat)
	cfg.Threshold = threshold
	return schema.Field{Name: name, Type: schema.Type{Kind: schema.KindPrim, Prim: schema.PrimFloat}, Config: cfg}
}

func invoiceSchema() *schema.Schema {
	itemSchema := &schema.Schema{
		Fields: []schema.Field{
			strField("sku"),
			numField("qty", 0.5),
		},
		MatchThreshold: 0.7,
	}
	return &schema.Schema{
		Fields: []schema.Field{
			strField("invoice_number"),
			numField("total", 0.5),
			{
				Name:   "items",
				Type:   schema.Type{Kind: schema.KindListRecord, Elem: itemSchema},
				Config: schema.FieldConfig{ComparatorName: "structural", Weight: 1, IncludeInAggregate: true},
			},
		},
	}
}

func mustCompare(t *testing.T, gt, pred schema.Record, sch *schema.Schema, opts Options) *Result {
	t.Helper()
	res, err := Compare(context.Background(), gt, pred, sch, defaultReg(), opts)
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	return res
}

// S1: exact invoice.
func TestScenario1ExactInvoice(t *testing.T) {
	sch := invoiceSchema()
	rec := schema.Record{
		"invoice_number": "INV-1",
		"total":          100.0,
		"items": []any{
			schema.Record{"sku": "A", "qty": 2.0},
			schema.Record{"sku": "B", "qty": 1.0},
		},
	}
	opts := DefaultOptions()
	opts.DocumentNonMatches = true
	res := mustCompare(t, rec, rec, sch, opts)
	if res.Root.Overall.SimilarityScore != 1.0 {
		t.Fatalf("similarity_score = %v, want 1.0", res.Root.Overall.SimilarityScore)
	}
	if !res.Root.Overall.AllFieldsMatched {
		t.Fatal("all_fields_matched should be true")
	}
	if len(res.NonMatches) != 0 {
		t.Fatalf("non_matches = %v, want empty", res.NonMatches)
	}
}

// S2: numeric tolerance.
func TestScenario2NumericTolerance(t *testing.T) {
	sch := &schema.Schema{Fields: []schema.Field{numField("total", 0.95)}}
	res := mustCompare(t, schema.Record{"total": 1247.50}, schema.Record{"total": 1247.48}, sch, DefaultOptions())
	field, _ := res.Root.Fields.Get("total")
	if field.Overall.Counts.TP != 1 {
		t.Fatalf("total counts = %+v, want TP=1", field.Overall.Counts)
	}
	if field.RawSimilarityScore < 0.95 {
		t.Fatalf("raw = %v, want >= 0.95", field.RawSimilarityScore)
	}
}

func listSchema(threshold float64) *schema.Schema {
	cfg := schema.DefaultFieldConfig(schema.PrimString)
	cfg.Threshold = threshold
	return &schema.Schema{Fields: []schema.Field{
		{Name: "tags", Type: schema.Type{Kind: schema.KindListPrim, Prim: schema.PrimString}, Config: cfg},
	}}
}

// S3: reordered primitive list.
func TestScenario3ReorderedPrimitiveList(t *testing.T) {
	sch := listSchema(0.7)
	gt := schema.Record{"tags": []any{"red", "blue", "green"}}
	pred := schema.Record{"tags": []any{"blue", "green", "red"}}
	res := mustCompare(t, gt, pred, sch, DefaultOptions())
	field, _ := res.Root.Fields.Get("tags")
	if field.Overall.Counts.TP != 3 || field.Overall.Counts.FD+field.Overall.Counts.FN+field.Overall.Counts.FA != 0 {
		t.Fatalf("counts = %+v, want TP=3 and zero elsewhere", field.Overall.Counts)
	}
	if field.RawSimilarityScore != 1.0 {
		t.Fatalf("raw = %v, want 1.0", field.RawSimilarityScore)
	}
}

// S4: unequal primitive list with typo.
func TestScenario4PrimitiveListTypo(t *testing.T) {
	sch := listSchema(0.7)
	gt := schema.Record{"tags": []any{"apple", "banana", "cherry"}}
	pred := schema.Record{"tags": []any{"aple", "banana", "orange"}}
	res := mustCompare(t, gt, pred, sch, DefaultOptions())
	field, _ := res.Root.Fields.Get("tags")
	c := field.Overall.Counts
	if c.TP != 2 || c.FD != 1 || c.FN != 0 || c.FA != 0 {
		t.Fatalf("counts = %+v, want tp=2 fd=1 fn=0 fa=0", c)
	}
}

func productSchema() *schema.Schema {
	idCfg := schema.FieldConfig{ComparatorName: "exact", Threshold: 1.0, Weight: 3, IncludeInAggregate: true}
	nameCfg := schema.FieldConfig{ComparatorName: "edit_distance", Threshold: 0.7, Weight: 2, IncludeInAggregate: true}
	priceCfg := schema.FieldConfig{ComparatorName: "numeric_tolerance", Threshold: 0.9, Weight: 1, IncludeInAggregate: true}
	return &schema.Schema{
		MatchThreshold: 0.8,
		Fields: []schema.Field{
			{Name: "product_id", Type: schema.Type{Kind: schema.KindPrim, Prim: schema.PrimString}, Config: idCfg},
			{Name: "name", Type: schema.Type{Kind: schema.KindPrim, Prim: schema.PrimString}, Config: nameCfg},
			{Name: "price", Type: schema.Type{Kind: schema.KindPrim, Prim: schema.PrimFloat}, Config: priceCfg},
		},
	}
}

// S5: record list, threshold-gated.
func TestScenario5RecordListThresholdGated(t *testing.T) {
	elem := productSchema()
	sch := &schema.Schema{Fields: []schema.Field{
		{
			Name:   "products",
			Type:   schema.Type{Kind: schema.KindListRecord, Elem: elem},
			Config: schema.FieldConfig{ComparatorName: "structural", Weight: 1, IncludeInAggregate: true},
		},
	}}
	gt := schema.Record{"products": []any{
		schema.Record{"product_id": "001", "name": "Laptop", "price": 999.99},
		schema.Record{"product_id": "002", "name": "Mouse", "price": 29.99},
		schema.Record{"product_id": "003", "name": "Cable", "price": 14.99},
	}}
	pred := schema.Record{"products": []any{
		schema.Record{"product_id": "001", "name": "Laptop Computer", "price": 999.99},
		schema.Record{"product_id": "002", "name": "Different Product", "price": 99.99},
		schema.Record{"product_id": "004", "name": "New", "price": 19.99},
	}}
	opts := DefaultOptions()
	opts.DocumentNonMatches = true
	res := mustCompare(t, gt, pred, sch, opts)
	field, _ := res.Root.Fields.Get("products")
	c := field.Overall.Counts
	if c.TP != 1 || c.FD != 2 || c.FA != 0 || c.FN != 0 {
		t.Fatalf("products counts = %+v, want tp=1 fd=2 fa=0 fn=0", c)
	}
	pidField, ok := field.Fields.Get("product_id")
	if !ok {
		t.Fatal("expected a product_id field rollup from the single gated-in pair")
	}
	if pidField.Overall.Counts.TP != 1 {
		t.Fatalf("product_id rollup counts = %+v, want TP=1 from only the gated-in pair", pidField.Overall.Counts)
	}
	fdCount := 0
	for _, nm := range res.NonMatches {
		if nm.Kind == NonMatchFD {
			fdCount++
		}
	}
	if fdCount != 2 {
		t.Fatalf("non_matches FD count = %d, want 2", fdCount)
	}
}

func personSchema() *schema.Schema {
	return &schema.Schema{Fields: []schema.Field{strField("name"), strField("phone")}}
}

// S6: missing field.
func TestScenario6MissingField(t *testing.T) {
	sch := personSchema()
	opts := DefaultOptions()
	opts.DocumentNonMatches = true
	res := mustCompare(t, schema.Record{"name": "John", "phone": "555-1"}, schema.Record{"name": "John"}, sch, opts)
	if res.Root.Aggregate.TP != 1 || res.Root.Aggregate.FN != 1 {
		t.Fatalf("aggregate = %+v, want tp=1 fn=1", res.Root.Aggregate)
	}
	if res.Root.Overall.AllFieldsMatched {
		t.Fatal("all_fields_matched should be false")
	}
	if len(res.NonMatches) != 1 || res.NonMatches[0].Path != "phone" || res.NonMatches[0].Kind != NonMatchFN {
		t.Fatalf("non_matches = %+v, want one FN at \"phone\"", res.NonMatches)
	}
}

// S7: type mismatch.
func TestScenario7TypeMismatch(t *testing.T) {
	sch := &schema.Schema{Fields: []schema.Field{numField("age", 0.5)}}
	res := mustCompare(t, schema.Record{"age": 30.0}, schema.Record{"age": "thirty"}, sch, DefaultOptions())
	field, _ := res.Root.Fields.Get("age")
	if field.Overall.Counts.FD != 1 {
		t.Fatalf("age counts = %+v, want FD=1", field.Overall.Counts)
	}
	if field.RawSimilarityScore != 0.0 {
		t.Fatalf("raw = %v, want 0.0", field.RawSimilarityScore)
	}
}

// I1: fp == fd+fa at every node, checked via the JSON-facing Counts.
func TestInvariantFPDerivation(t *testing.T) {
	c := Counts{TP: 1, TN: 2, FD: 3, FA: 4, FN: 5}
	if c.FP() != c.FD+c.FA {
		t.Fatalf("FP() = %d, want %d", c.FP(), c.FD+c.FA)
	}
}

// I2 + I3: aggregate rollup at leaves and internal nodes.
func TestInvariantAggregateRollup(t *testing.T) {
	sch := invoiceSchema()
	gt := schema.Record{
		"invoice_number": "INV-1",
		"total":          100.0,
		"items": []any{
			schema.Record{"sku": "A", "qty": 2.0},
		},
	}
	pred := schema.Record{
		"invoice_number": "INV-1",
		"total":          90.0,
		"items": []any{
			schema.Record{"sku": "A", "qty": 2.0},
		},
	}
	res := mustCompare(t, gt, pred, sch, DefaultOptions())

	invoiceField, _ := res.Root.Fields.Get("invoice_number")
	if invoiceField.Aggregate != invoiceField.Overall.Counts {
		t.Fatalf("leaf aggregate (I2) = %+v, want %+v", invoiceField.Aggregate, invoiceField.Overall.Counts)
	}

	var want Counts
	res.Root.Fields.Range(func(_ string, child *Node) {
		want.Add(child.Aggregate)
	})
	if res.Root.Aggregate != want {
		t.Fatalf("root aggregate (I3) = %+v, want sum of children %+v", res.Root.Aggregate, want)
	}
}

// I4: self-comparison yields a perfect score and zero disagreements.
func TestInvariantSelfComparisonIsPerfect(t *testing.T) {
	sch := invoiceSchema()
	rec := schema.Record{
		"invoice_number": "INV-42",
		"total":          250.25,
		"items": []any{
			schema.Record{"sku": "Z", "qty": 9.0},
			schema.Record{"sku": "Y", "qty": 1.0},
		},
	}
	res := mustCompare(t, rec, rec, sch, DefaultOptions())
	if res.Root.Overall.SimilarityScore != 1.0 {
		t.Fatalf("similarity_score = %v, want 1.0", res.Root.Overall.SimilarityScore)
	}
	if !res.Root.Overall.AllFieldsMatched {
		t.Fatal("all_fields_matched should be true")
	}
	if res.Root.Aggregate.FD+res.Root.Aggregate.FA+res.Root.Aggregate.FN != 0 {
		t.Fatalf("aggregate = %+v, want zero fd+fa+fn", res.Root.Aggregate)
	}
}

// I5: null-equivalence: nil, "" and {} on both sides give the same score.
func TestInvariantNullEquivalence(t *testing.T) {
	sch := &schema.Schema{Fields: []schema.Field{strField("name")}}
	variants := []any{nil, "", map[string]any{}}
	var base *Result
	for _, v := range variants {
		res := mustCompare(t, schema.Record{"name": v}, schema.Record{"name": v}, sch, DefaultOptions())
		if base == nil {
			base = res
			continue
		}
		if res.Root.Overall.SimilarityScore != base.Root.Overall.SimilarityScore {
			t.Fatalf("null-equivalent variant %#v changed similarity_score: %v vs %v", v, res.Root.Overall.SimilarityScore, base.Root.Overall.SimilarityScore)
		}
	}
}

// I6: primitive-list order invariance.
func TestInvariantPrimitiveListOrderInvariance(t *testing.T) {
	sch := listSchema(0.7)
	gt := schema.Record{"tags": []any{"apple", "banana", "cherry"}}
	pred1 := schema.Record{"tags": []any{"aple", "banana", "orange"}}
	pred2 := schema.Record{"tags": []any{"orange", "aple", "banana"}}
	res1 := mustCompare(t, gt, pred1, sch, DefaultOptions())
	res2 := mustCompare(t, gt, pred2, sch, DefaultOptions())
	f1, _ := res1.Root.Fields.Get("tags")
	f2, _ := res2.Root.Fields.Get("tags")
	if f1.Overall.Counts != f2.Overall.Counts {
		t.Fatalf("shuffled counts differ: %+v vs %+v", f1.Overall.Counts, f2.Overall.Counts)
	}
	if f1.RawSimilarityScore != f2.RawSimilarityScore {
		t.Fatalf("shuffled raw scores differ: %v vs %v", f1.RawSimilarityScore, f2.RawSimilarityScore)
	}
}

// I7: record-list order invariance at the object level.
func TestInvariantRecordListOrderInvariance(t *testing.T) {
	elem := productSchema()
	sch := &schema.Schema{Fields: []schema.Field{
		{Name: "products", Type: schema.Type{Kind: schema.KindListRecord, Elem: elem}, Config: schema.FieldConfig{ComparatorName: "structural", Weight: 1, IncludeInAggregate: true}},
	}}
	gt := schema.Record{"products": []any{
		schema.Record{"product_id": "001", "name": "Laptop", "price": 999.99},
		schema.Record{"product_id": "002", "name": "Mouse", "price": 29.99},
	}}
	pred1 := schema.Record{"products": []any{
		schema.Record{"product_id": "001", "name": "Laptop Computer", "price": 999.99},
		schema.Record{"product_id": "002", "name": "Mouse", "price": 29.99},
	}}
	pred2 := schema.Record{"products": []any{
		schema.Record{"product_id": "002", "name": "Mouse", "price": 29.99},
		schema.Record{"product_id": "001", "name": "Laptop Computer", "price": 999.99},
	}}
	res1 := mustCompare(t, gt, pred1, sch, DefaultOptions())
	res2 := mustCompare(t, gt, pred2, sch, DefaultOptions())
	f1, _ := res1.Root.Fields.Get("products")
	f2, _ := res2.Root.Fields.Get("products")
	if f1.Overall.Counts != f2.Overall.Counts {
		t.Fatalf("shuffled object counts differ: %+v vs %+v", f1.Overall.Counts, f2.Overall.Counts)
	}
	if f1.RawSimilarityScore != f2.RawSimilarityScore {
		t.Fatalf("shuffled raw scores differ: %v vs %v", f1.RawSimilarityScore, f2.RawSimilarityScore)
	}
}

// I8: threshold-gating excludes below-threshold pairs from fields[*].
func TestInvariantThresholdGatingExcludesFields(t *testing.T) {
	elem := productSchema()
	sch := &schema.Schema{Fields: []schema.Field{
		{Name: "products", Type: schema.Type{Kind: schema.KindListRecord, Elem: elem}, Config: schema.FieldConfig{ComparatorName: "structural", Weight: 1, IncludeInAggregate: true}},
	}}
	gt := schema.Record{"products": []any{
		schema.Record{"product_id": "001", "name": "Laptop", "price": 999.99},
	}}
	pred := schema.Record{"products": []any{
		schema.Record{"product_id": "999", "name": "Totally Different Thing", "price": 1.0},
	}}
	res := mustCompare(t, gt, pred, sch, DefaultOptions())
	field, _ := res.Root.Fields.Get("products")
	if field.Fields.Len() != 0 {
		t.Fatalf("gated-out pair should contribute no field children, got %d", field.Fields.Len())
	}
}

// I9: all_fields_matched at the root iff the non-matches list is empty.
func TestInvariantAllFieldsMatchedIffNoNonMatches(t *testing.T) {
	sch := personSchema()
	opts := DefaultOptions()
	opts.DocumentNonMatches = true

	matched := mustCompare(t, schema.Record{"name": "John", "phone": "555-1"}, schema.Record{"name": "John", "phone": "555-1"}, sch, opts)
	if !matched.Root.Overall.AllFieldsMatched || len(matched.NonMatches) != 0 {
		t.Fatalf("exact match: all_fields_matched=%v non_matches=%v", matched.Root.Overall.AllFieldsMatched, matched.NonMatches)
	}

	mismatched := mustCompare(t, schema.Record{"name": "John", "phone": "555-1"}, schema.Record{"name": "John"}, sch, opts)
	if mismatched.Root.Overall.AllFieldsMatched || len(mismatched.NonMatches) == 0 {
		t.Fatalf("missing field: all_fields_matched=%v non_matches=%v", mismatched.Root.Overall.AllFieldsMatched, mismatched.NonMatches)
	}
}

// I10: include_in_aggregate=false excludes a top-level field from the
// root aggregate but not from its own node's counts.
func TestInvariantIncludeInAggregateFalse(t *testing.T) {
	excludedCfg := schema.DefaultFieldConfig(schema.PrimString)
	excludedCfg.IncludeInAggregate = false
	sch := &schema.Schema{Fields: []schema.Field{
		strField("name"),
		{Name: "internal_note", Type: schema.Type{Kind: schema.KindPrim, Prim: schema.PrimString}, Config: excludedCfg},
	}}
	res := mustCompare(t, schema.Record{"name": "John", "internal_note": "draft"}, schema.Record{"name": "John", "internal_note": "final"}, sch, DefaultOptions())

	note, _ := res.Root.Fields.Get("internal_note")
	if note.Overall.Counts.FD != 1 {
		t.Fatalf("internal_note's own counts = %+v, want FD=1 regardless of aggregate exclusion", note.Overall.Counts)
	}
	if res.Root.Aggregate.FD != 0 {
		t.Fatalf("root aggregate = %+v, want the excluded field's FD not rolled up", res.Root.Aggregate)
	}
}

func TestCancellation(t *testing.T) {
	sch := invoiceSchema()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Compare(ctx, schema.Record{"invoice_number": "x"}, schema.Record{"invoice_number": "x"}, sch, defaultReg(), DefaultOptions())
	if err == nil {
		t.Fatal("expected an error from a pre-cancelled context")
	}
}

// A schema decoded from JSON without an explicit x-comparator leaves
// FieldConfig.ComparatorName empty; the engine must resolve the same
// per-kind default schema.Validate uses, not look up "" in the registry.
func TestComparatorDefaultResolutionFromDecodedSchema(t *testing.T) {
	doc := []byte(`{
		"type": "object",
		"x-order": ["name"],
		"properties": {"name": {"type": "string"}}
	}`)
	sch, err := schema.Decode(doc)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if sch.Fields[0].Config.ComparatorName != "" {
		t.Fatalf("expected decoded schema to leave ComparatorName empty, got %q", sch.Fields[0].Config.ComparatorName)
	}
	res := mustCompare(t, schema.Record{"name": "hello"}, schema.Record{"name": "hello"}, sch, DefaultOptions())
	field, ok := res.Root.Fields.Get("name")
	if !ok {
		t.Fatal("missing name field in result")
	}
	if field.Overall.Counts.TP != 1 {
		t.Fatalf("counts = %+v, want TP=1 (default edit_distance comparator resolved)", field.Overall.Counts)
	}
}

func TestEvaluatorFormatNeverMixedWithStandardShape(t *testing.T) {
	sch := personSchema()
	opts := DefaultOptions()
	opts.EvaluatorFormat = true
	res := mustCompare(t, schema.Record{"name": "John", "phone": "555-1"}, schema.Record{"name": "John", "phone": "555-1"}, sch, opts)
	if res.Evaluator == nil {
		t.Fatal("expected Evaluator to be populated")
	}
	raw, err := json.Marshal(res)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var shape map[string]any
	if err := json.Unmarshal(raw, &shape); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if _, ok := shape["overall"]; ok {
		t.Fatalf("evaluator output carries the standard overall block: %s", raw)
	}
	if _, ok := shape["anls_score"]; !ok {
		t.Fatalf("evaluator output missing anls_score: %s", raw)
	}
}
