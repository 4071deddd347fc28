package engine

import (
	"stickler/assign"
	"stickler/schema"
)

// comparePrimitiveList is §4.6: an order-irrelevant list of primitives,
// matched by optimal bipartite assignment over an element-level
// similarity matrix. Lists are never clipped (§9): threshold_applied_score
// always equals raw_similarity_score here.
func comparePrimitiveList(cc *ctx, path string, prim schema.PrimKind, cfg schema.FieldConfig, gt, pred any) (*Node, []NonMatch, error) {
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
		n := len(predList)
		node := leafNode(Counts{FA: n}, 0.0, 0.0, cfg.Weight)
		var nm []NonMatch
		if cc.opts.DocumentNonMatches {
			nm = make([]NonMatch, 0, n)
			for j, v := range predList {
				nm = append(nm, NonMatch{Path: predIndexPath(path, j), Kind: NonMatchFA, Predicted: v, Reason: "extra in prediction"})
			}
		}
		return node, nm, nil
	}

	if !gtNull && predNull {
		n := len(gtList)
		node := leafNode(Counts{FN: n}, 0.0, 0.0, cfg.Weight)
		var nm []NonMatch
		if cc.opts.DocumentNonMatches {
			nm = make([]NonMatch, 0, n)
			for i, v := range gtList {
				nm = append(nm, NonMatch{Path: indexPath(path, i), Kind: NonMatchFN, GroundTruth: v, Reason: "missing in prediction"})
			}
		}
		return node, nm, nil
	}

	fn, err := cc.reg.Lookup(comparatorName(cfg, prim))
	if err != nil {
		return nil, nil, err
	}

	n, m := len(gtList), len(predList)
	matrix := make([][]float64, n)
	for i := range matrix {
		matrix[i] = make([]float64, m)
		for j := range matrix[i] {
			select {
			case <-cc.c.Done():
				return nil, nil, errCancelled(cc)
			default:
			}
			s, cmpErr := fn(gtList[i], predList[j])
			if cmpErr != nil {
				s = 0.0
			}
			if s < 0 {
				s = 0
			} else if s > 1 {
				s = 1
			}
			matrix[i][j] = s
		}
	}

	pairs := assign.Solve(matrix)
	matchedGT := make(map[int]bool, len(pairs))
	matchedPred := make(map[int]bool, len(pairs))

	var tp, fd int
	var fdNM, fnNM, faNM []NonMatch
	var sum float64

	for _, pr := range pairs {
		sum += pr.Score
		matchedGT[pr.Row] = true
		matchedPred[pr.Col] = true
		if pr.Score >= cfg.Threshold-tauEpsilon {
			tp++
			continue
		}
		fd++
		if cc.opts.DocumentNonMatches {
			fdNM = append(fdNM, NonMatch{
				Path: indexPath(path, pr.Row), Kind: NonMatchFD,
				GroundTruth: gtList[pr.Row], Predicted: predList[pr.Col], SimilarityScore: pr.Score,
				Reason: "below threshold",
			})
		}
	}
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
	node := leafNode(counts, raw, raw, cfg.Weight)

	var nonMatches []NonMatch
	if cc.opts.DocumentNonMatches {
		nonMatches = append(nonMatches, fdNM...)
		nonMatches = append(nonMatches, fnNM...)
		nonMatches = append(nonMatches, faNM...)
	}
	return node, nonMatches, nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func errCancelled(cc *ctx) error {
	if err := cc.c.Err(); err != nil {
		return err
	}
	return ErrCancelled
}
