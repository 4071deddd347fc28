package engine

import "stickler/schema"

// compareLeaf is §4.2 step 2 (the 4-way null table) + §4.5 (primitive
// compare) for a declared Prim field.
func compareLeaf(cc *ctx, path string, prim schema.PrimKind, cfg schema.FieldConfig, gt, pred any) (*Node, []NonMatch, error) {
	gtNull := schema.IsNullEquivalent(gt)
	predNull := schema.IsNullEquivalent(pred)

	switch {
	case gtNull && predNull:
		return leafNode(Counts{TN: 1}, 1.0, 1.0, cfg.Weight), nil, nil

	case gtNull && !predNull:
		node := leafNode(Counts{FA: 1}, 0.0, 0.0, cfg.Weight)
		return node, nonMatchIf(cc, path, NonMatchFA, gt, pred, 0.0, "extra in prediction"), nil

	case !gtNull && predNull:
		node := leafNode(Counts{FN: 1}, 0.0, 0.0, cfg.Weight)
		return node, nonMatchIf(cc, path, NonMatchFN, gt, pred, 0.0, "missing in prediction"), nil
	}

	fn, err := cc.reg.Lookup(comparatorName(cfg, prim))
	if err != nil {
		return nil, nil, err
	}

	raw, cmpErr := fn(gt, pred)
	if cmpErr != nil {
		raw = 0.0
	}
	if raw < 0 {
		raw = 0
	} else if raw > 1 {
		raw = 1
	}

	classification := Counts{FD: 1}
	if raw >= cfg.Threshold-tauEpsilon {
		classification = Counts{TP: 1}
	}

	applied := raw
	if raw < cfg.Threshold-tauEpsilon && cfg.ClipUnderThreshold {
		applied = 0.0
	}

	node := leafNode(classification, raw, applied, cfg.Weight)
	var nm []NonMatch
	if classification.FD == 1 {
		nm = nonMatchIf(cc, path, NonMatchFD, gt, pred, raw, "below threshold")
	}
	return node, nm, nil
}

// compareRecordField is §4.2 step 3: a declared Record field. Both sides
// null collapses to a single TN object; one side null to a single FA/FN
// object — per §9's resolved open question, the null side contributes
// zero primitives to aggregate, which falls out naturally here because
// this leaf carries no Fields for the metrics builder to recurse into.
// Both sides present triggers a full recursive compare of the
// sub-record, whose overall.similarity_score is then classified against
// this field's own threshold.
func compareRecordField(cc *ctx, path string, cfg schema.FieldConfig, elem *schema.Schema, gt, pred any) (*Node, []NonMatch, error) {
	gtNull := schema.IsNullEquivalent(gt)
	predNull := schema.IsNullEquivalent(pred)

	switch {
	case gtNull && predNull:
		return leafNode(Counts{TN: 1}, 1.0, 1.0, cfg.Weight), nil, nil

	case gtNull && !predNull:
		node := leafNode(Counts{FA: 1}, 0.0, 0.0, cfg.Weight)
		return node, nonMatchIf(cc, path, NonMatchFA, gt, pred, 0.0, "extra in prediction"), nil

	case !gtNull && predNull:
		node := leafNode(Counts{FN: 1}, 0.0, 0.0, cfg.Weight)
		return node, nonMatchIf(cc, path, NonMatchFN, gt, pred, 0.0, "missing in prediction"), nil
	}

	gtRec, gok := asRecord(gt)
	predRec, pok := asRecord(pred)
	if !gok || !pok {
		node := leafNode(Counts{FD: 1}, 0.0, 0.0, cfg.Weight)
		reason := (&TypeMismatchError{Path: path, Expected: "record", Value: gt}).Error()
		if gok {
			reason = (&TypeMismatchError{Path: path, Expected: "record", Value: pred}).Error()
		}
		return node, nonMatchIf(cc, path, NonMatchFD, gt, pred, 0.0, reason), nil
	}

	child, childNonMatches, err := compareRecord(cc, elem, gtRec, predRec)
	if err != nil {
		return nil, nil, err
	}

	raw := child.Overall.SimilarityScore
	classification := Counts{FD: 1}
	if raw >= cfg.Threshold-tauEpsilon {
		classification = Counts{TP: 1}
	}
	applied := raw
	if raw < cfg.Threshold-tauEpsilon && cfg.ClipUnderThreshold {
		applied = 0.0
	}

	node := &Node{
		Overall: Overall{
			Counts:           classification,
			SimilarityScore:  raw,
			AllFieldsMatched: child.Overall.AllFieldsMatched,
		},
		Fields:                child.Fields,
		RawSimilarityScore:    raw,
		ThresholdAppliedScore: applied,
		Weight:                cfg.Weight,
	}

	var nm []NonMatch
	if cc.opts.DocumentNonMatches {
		nm = prefixNonMatches(path, childNonMatches)
	}
	return node, nm, nil
}

// comparatorName resolves §4.3's default: an explicit x-comparator wins,
// otherwise the declared primitive kind's conventional comparator. This
// mirrors the resolution schema.Validate performs when checking the name
// is registered; the engine must apply the identical rule at compare
// time or an unconfigured field would look up an empty string.
func comparatorName(cfg schema.FieldConfig, prim schema.PrimKind) string {
	if cfg.ComparatorName != "" {
		return cfg.ComparatorName
	}
	return prim.DefaultComparator()
}

func leafNode(counts Counts, raw, applied, weight float64) *Node {
	return &Node{
		Overall: Overall{
			Counts:           counts,
			SimilarityScore:  raw,
			AllFieldsMatched: counts.FD == 0 && counts.FA == 0 && counts.FN == 0,
		},
		RawSimilarityScore:    raw,
		ThresholdAppliedScore: applied,
		Weight:                weight,
	}
}

func nonMatchIf(cc *ctx, path string, kind NonMatchKind, gt, pred any, score float64, reason string) []NonMatch {
	if !cc.opts.DocumentNonMatches {
		return nil
	}
	return []NonMatch{{Path: path, Kind: kind, GroundTruth: gt, Predicted: pred, SimilarityScore: score, Reason: reason}}
}

func asRecord(v any) (schema.Record, bool) {
	r, ok := v.(schema.Record)
	if ok {
		return r, true
	}
	m, ok := v.(map[string]any)
	if ok {
		return schema.Record(m), true
	}
	return nil, false
}
