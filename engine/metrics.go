package engine

import "stickler/schema"

// fillAggregate is §4.8's post-order rollup: a leaf (no Fields) copies
// its own overall Counts; anything else sums its children's aggregate.
func fillAggregate(n *Node) {
	if n.Fields.Len() == 0 {
		n.Aggregate = n.Overall.Counts
		return
	}
	n.Fields.Range(func(_ string, child *Node) {
		fillAggregate(child)
		n.Aggregate.Add(child.Aggregate)
	})
}

// fillAggregateRoot rolls up the root node specially: include_in_aggregate
// is a top-level-only toggle (§3, I10) — a top-level field with it set to
// false still gets its own subtree's aggregate computed normally (for
// display), it just never contributes to the root's own aggregate sum.
func fillAggregateRoot(root *Node, sch *schema.Schema) {
	if root.Fields.Len() == 0 {
		root.Aggregate = root.Overall.Counts
		return
	}
	root.Fields.Range(func(_ string, child *Node) {
		fillAggregate(child)
	})
	for _, f := range sch.Fields {
		if !f.Config.IncludeInAggregate {
			continue
		}
		if child, ok := root.Fields.Get(f.Name); ok {
			root.Aggregate.Add(child.Aggregate)
		}
	}
}

// attachDerived computes precision/recall/F1/accuracy from each node's
// aggregate and attaches it recursively.
func attachDerived(n *Node, recallWithFD bool) {
	d := computeDerived(n.Aggregate, recallWithFD)
	n.AggregateDerived = &d
	n.Fields.Range(func(_ string, child *Node) {
		attachDerived(child, recallWithFD)
	})
}

func computeDerived(c Counts, recallWithFD bool) Derived {
	var d Derived

	if denom := c.TP + c.FP(); denom > 0 {
		d.Precision = float64(c.TP) / float64(denom)
	}

	recallDenom := c.TP + c.FN
	if recallWithFD {
		recallDenom += c.FD
	}
	if recallDenom > 0 {
		d.Recall = float64(c.TP) / float64(recallDenom)
	}

	if d.Precision+d.Recall > 0 {
		d.F1 = 2 * d.Precision * d.Recall / (d.Precision + d.Recall)
	}

	if denom := c.Total(); denom > 0 {
		d.Accuracy = float64(c.TP+c.TN) / float64(denom)
	}

	return d
}
