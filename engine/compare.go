package engine

import (
	"context"
	"encoding/json"
	"fmt"

	"stickler/schema"
	"stickler/similarity"
)

// Result is the top-level output of Compare: the root of the result
// tree, the flattened non-match list (when requested), and the
// evaluator-format reshape (when requested).
type Result struct {
	Root       *Node
	NonMatches []NonMatch
	Evaluator  *EvaluatorNode

	includeFields bool
}

// MarshalJSON renders the evaluator reshape when one was requested (§6:
// "never mixed with the standard shape"), otherwise the standard tree —
// trimmed to just overall/aggregate when include_confusion_matrix was
// not requested, since the caller asked only for the top-level score.
func (r *Result) MarshalJSON() ([]byte, error) {
	if r.Evaluator != nil {
		return json.Marshal(r.Evaluator)
	}
	out := struct {
		Overall          Overall    `json:"overall"`
		Fields           *Fields    `json:"fields,omitempty"`
		Aggregate        Counts     `json:"aggregate"`
		AggregateDerived *Derived   `json:"aggregate_derived,omitempty"`
		NonMatches       []NonMatch `json:"non_matches,omitempty"`
	}{
		Overall:          r.Root.Overall,
		Aggregate:        r.Root.Aggregate,
		AggregateDerived: r.Root.AggregateDerived,
		NonMatches:       r.NonMatches,
	}
	if r.includeFields {
		out.Fields = r.Root.Fields
	}
	return json.Marshal(out)
}

// ctx threads the pieces every dispatch/compare function needs without
// widening every signature: the cancellation context, the comparator
// registry, and the options governing non-match collection and clipping
// semantics that don't belong on FieldConfig.
type ctx struct {
	c    context.Context
	reg  *similarity.Registry
	opts Options
}

// tauEpsilon is the floating tolerance applied to match_threshold
// comparisons (§4.7) so a pair whose score equals τ up to rounding noise
// is not spuriously gated out.
const tauEpsilon = 1e-10

// Compare runs a single recursive traversal comparing pred against gt
// under sch, using reg to resolve named similarity functions. Both
// records must describe the same schema. Compare fails only on
// precondition violations (§7): an unresolvable comparator name found
// mid-traversal, or cancellation. Field-level disagreements are never
// fatal; they show up as classifications in the result tree.
func Compare(c context.Context, gt, pred schema.Record, sch *schema.Schema, reg *similarity.Registry, opts Options) (*Result, error) {
	cc := &ctx{c: c, reg: reg, opts: opts}

	root, nonMatches, err := compareRecord(cc, sch, gt, pred)
	if err != nil {
		if c.Err() != nil {
			return nil, fmt.Errorf("%w: %w", ErrCancelled, context.Cause(c))
		}
		return nil, err
	}

	fillAggregateRoot(root, sch)
	if opts.AddDerivedMetrics {
		attachDerived(root, opts.RecallWithFD)
	}

	result := &Result{Root: root, includeFields: opts.IncludeConfusionMatrix}
	if opts.DocumentNonMatches {
		root.NonMatches = nonMatches
		result.NonMatches = nonMatches
	}
	if opts.EvaluatorFormat {
		result.Evaluator = buildEvaluator(root, opts.RecallWithFD, opts.EvaluatorFormatAllNodes)
	}
	return result, nil
}

// compareRecord is §4.1: one traversal over sch's declared fields,
// dispatching each field pair and rolling the children's counts and
// weighted scores into this node's overall.
func compareRecord(cc *ctx, sch *schema.Schema, gt, pred schema.Record) (*Node, []NonMatch, error) {
	node := &Node{Fields: NewFields()}

	var totalScore, totalWeight float64
	allMatched := true
	var nonMatches []NonMatch

	for _, f := range sch.Fields {
		select {
		case <-cc.c.Done():
			return nil, nil, context.Cause(cc.c)
		default:
		}

		var gv, pv any
		if gt != nil {
			gv = gt[f.Name]
		}
		if pred != nil {
			pv = pred[f.Name]
		}

		path := f.Name
		child, childNonMatches, err := dispatchField(cc, path, f.Type, f.Config, gv, pv)
		if err != nil {
			return nil, nil, err
		}

		node.Fields.Set(f.Name, child)
		node.Overall.Counts.Add(child.Overall.Counts)
		totalScore += child.ThresholdAppliedScore * child.Weight
		totalWeight += child.Weight
		if child.RawSimilarityScore < f.Config.Threshold-tauEpsilon {
			allMatched = false
		}
		if cc.opts.DocumentNonMatches {
			nonMatches = append(nonMatches, childNonMatches...)
		}
	}

	if totalWeight > 0 {
		node.Overall.SimilarityScore = totalScore / totalWeight
	} else {
		node.Overall.SimilarityScore = boolToScore(schema.IsNullEquivalent(gt) && schema.IsNullEquivalent(pred))
	}
	node.Overall.AllFieldsMatched = allMatched
	node.RawSimilarityScore = node.Overall.SimilarityScore
	node.ThresholdAppliedScore = node.Overall.SimilarityScore

	return node, nonMatches, nil
}

func boolToScore(b bool) float64 {
	if b {
		return 1.0
	}
	return 0.0
}
