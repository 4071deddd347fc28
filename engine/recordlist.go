package engine

import (
	"stickler/assign"
	"stickler/schema"
	"stickler/similarity"
)

// trigramPruneThreshold is the n*m size above which compareRecordList
// shortlists pred candidates per gt row via a trigram index on the
// element schema's first string field, rather than recursively comparing
// every pair. Below it the full matrix is always built — correctness
// doesn't depend on the index, it's purely a cost control for large
// lists where most pairs are obviously unrelated.
const trigramPruneThreshold = 4096

// identityField returns the name of elem's first declared Prim/string
// field, used as the trigram-pruning key, or "" if none exists.
func identityField(elem *schema.Schema) string {
	for _, f := range elem.Fields {
		if f.Type.Kind == schema.KindPrim && f.Type.Prim == schema.PrimString {
			return f.Name
		}
	}
	return ""
}

// compareRecordList is §4.7, the central algorithm: optimal bipartite
// assignment over a full-recursive-compare similarity matrix, with
// threshold-gated recursion for field-level rollup. Object-level counts
// (stored at this node's overall) cover every assigned pair plus
// unmatched items; field-level children (stored under fields) are built
// only from pairs clearing the element schema's match_threshold — pairs
// below it are atomic FD, contributing no children.
func compareRecordList(cc *ctx, path string, typ schema.Type, cfg schema.FieldConfig, gt, pred any) (*Node, []NonMatch, error) {
	elem := typ.Elem
	tau := elem.MatchThreshold
	if tau <= 0 {
		tau = schema.DefaultMatchThreshold
	}

	gtList, gtNull, gtMismatch := listOrNull(gt)
	predList, predNull, predMismatch := listOrNull(pred)

	if gtMismatch || predMismatch {
		node := leafNode(Counts{FD: 1}, 0.0, 0.0, cfg.Weight)
		return node, nonMatchIf(cc, path, NonMatchFD, gt, pred, 0.0, "expected a list"), nil
	}

	if gtNull && predNull {
		return leafNode(Counts{TN: 1}, 1.0, 1.0, cfg.Weight), nil, nil
	}
	if gtNull && !predNull {
		node := leafNode(Counts{FA: len(predList)}, 0.0, 0.0, cfg.Weight)
		var nm []NonMatch
		if cc.opts.DocumentNonMatches {
			for j, v := range predList {
				nm = append(nm, NonMatch{Path: predIndexPath(path, j), Kind: NonMatchFA, Predicted: v, Reason: "extra in prediction"})
			}
		}
		return node, nm, nil
	}
	if !gtNull && predNull {
		node := leafNode(Counts{FN: len(gtList)}, 0.0, 0.0, cfg.Weight)
		var nm []NonMatch
		if cc.opts.DocumentNonMatches {
			for i, v := range gtList {
				nm = append(nm, NonMatch{Path: indexPath(path, i), Kind: NonMatchFN, GroundTruth: v, Reason: "missing in prediction"})
			}
		}
		return node, nm, nil
	}

	n, m := len(gtList), len(predList)
	gtRecs := make([]schema.Record, n)
	predRecs := make([]schema.Record, m)
	for i, v := range gtList {
		r, _ := asRecord(v)
		gtRecs[i] = r
	}
	for j, v := range predList {
		r, _ := asRecord(v)
		predRecs[j] = r
	}

	matrix := make([][]float64, n)
	children := make([][]*Node, n)
	for i := range matrix {
		matrix[i] = make([]float64, m)
		children[i] = make([]*Node, m)
	}

	candidates := func(i int) []int {
		all := make([]int, m)
		for j := range all {
			all[j] = j
		}
		return all
	}
	if idField := identityField(elem); idField != "" && n*m > trigramPruneThreshold {
		keys := make([]string, m)
		for j, r := range predRecs {
			if s, ok := r[idField].(string); ok {
				keys[j] = similarity.Normalize(s)
			}
		}
		index := similarity.BuildTrigramIndex(keys)
		candidates = func(i int) []int {
			if s, ok := gtRecs[i][idField].(string); ok {
				if c := index.Candidates(similarity.Normalize(s)); len(c) > 0 {
					return c
				}
			}
			all := make([]int, m)
			for j := range all {
				all[j] = j
			}
			return all
		}
	}

	for i := 0; i < n; i++ {
		for _, j := range candidates(i) {
			select {
			case <-cc.c.Done():
				return nil, nil, errCancelled(cc)
			default:
			}
			child, _, err := compareRecord(cc, elem, gtRecs[i], predRecs[j])
			if err != nil {
				return nil, nil, err
			}
			children[i][j] = child
			matrix[i][j] = child.Overall.SimilarityScore
		}
	}

	pairs := assign.Solve(matrix)
	matchedGT := make(map[int]bool, len(pairs))
	matchedPred := make(map[int]bool, len(pairs))
	gatedFields := make(map[string][]*Node)

	var tp, fd int
	var sum float64
	var fdNM []NonMatch

	for _, pr := range pairs {
		sum += pr.Score
		matchedGT[pr.Row] = true
		matchedPred[pr.Col] = true

		if pr.Score >= tau-tauEpsilon {
			tp++
			child := children[pr.Row][pr.Col]
			for _, f := range elem.Fields {
				if cf, ok := child.Fields.Get(f.Name); ok {
					gatedFields[f.Name] = append(gatedFields[f.Name], cf)
				}
			}
			continue
		}

		fd++
		if cc.opts.DocumentNonMatches {
			fdNM = append(fdNM, NonMatch{
				Path: indexPath(path, pr.Row), Kind: NonMatchFD,
				GroundTruth: gtList[pr.Row], Predicted: predList[pr.Col], SimilarityScore: pr.Score,
				Reason: "below match_threshold τ",
			})
		}
	}

	var fnNM []NonMatch
	fnCount := 0
	for i, v := range gtList {
		if matchedGT[i] {
			continue
		}
		fnCount++
		if cc.opts.DocumentNonMatches {
			fnNM = append(fnNM, NonMatch{Path: indexPath(path, i), Kind: NonMatchFN, GroundTruth: v, Reason: "missing in prediction"})
		}
	}
	var faNM []NonMatch
	faCount := 0
	for j, v := range predList {
		if matchedPred[j] {
			continue
		}
		faCount++
		if cc.opts.DocumentNonMatches {
			faNM = append(faNM, NonMatch{Path: predIndexPath(path, j), Kind: NonMatchFA, Predicted: v, Reason: "extra in prediction"})
		}
	}

	raw := sum / float64(maxInt(n, m))
	counts := Counts{TP: tp, FD: fd, FN: fnCount, FA: faCount}

	node := &Node{
		Overall: Overall{
			Counts:           counts,
			SimilarityScore:  raw,
			AllFieldsMatched: fd == 0 && fnCount == 0 && faCount == 0,
		},
		RawSimilarityScore:    raw,
		ThresholdAppliedScore: raw,
		Weight:                cfg.Weight,
	}
	if len(gatedFields) > 0 {
		node.Fields = NewFields()
		for _, f := range elem.Fields {
			if nodes, ok := gatedFields[f.Name]; ok {
				node.Fields.Set(f.Name, mergeFieldNodes(nodes, f.Config.Weight))
			}
		}
	}

	var nonMatches []NonMatch
	if cc.opts.DocumentNonMatches {
		nonMatches = append(nonMatches, fdNM...)
		nonMatches = append(nonMatches, fnNM...)
		nonMatches = append(nonMatches, faNM...)
	}
	return node, nonMatches, nil
}

// mergeFieldNodes combines the same declared field's recursed result
// across every gated-in pair into one synthetic Node: counts sum,
// scores average, and nested Fields merge recursively so a field that is
// itself a record or record-list keeps its own breakdown.
func mergeFieldNodes(nodes []*Node, weight float64) *Node {
	merged := &Node{Weight: weight}
	if len(nodes) == 0 {
		return merged
	}

	var scoreSum, appliedSum, rawSum float64
	allMatched := true
	for _, n := range nodes {
		merged.Overall.Counts.Add(n.Overall.Counts)
		scoreSum += n.Overall.SimilarityScore
		appliedSum += n.ThresholdAppliedScore
		rawSum += n.RawSimilarityScore
		if !n.Overall.AllFieldsMatched {
			allMatched = false
		}
	}
	count := float64(len(nodes))
	merged.Overall.SimilarityScore = scoreSum / count
	merged.Overall.AllFieldsMatched = allMatched
	merged.RawSimilarityScore = rawSum / count
	merged.ThresholdAppliedScore = appliedSum / count

	var order []string
	seen := make(map[string]bool)
	for _, n := range nodes {
		for _, name := range n.Fields.Names() {
			if !seen[name] {
				seen[name] = true
				order = append(order, name)
			}
		}
	}
	if len(order) > 0 {
		merged.Fields = NewFields()
		for _, name := range order {
			var group []*Node
			var w float64
			for _, n := range nodes {
				if cf, ok := n.Fields.Get(name); ok {
					group = append(group, cf)
					w = cf.Weight
				}
			}
			merged.Fields.Set(name, mergeFieldNodes(group, w))
		}
	}
	return merged
}
