package engine

// Options controls optional behavior of Compare that does not affect the
// base Counts a node accumulates, only how those counts are reported.
type Options struct {
	// IncludeConfusionMatrix includes the hierarchical fields tree in the
	// serialized Result; without it only the root's overall and aggregate
	// blocks are written.
	IncludeConfusionMatrix bool

	// DocumentNonMatches populates the root node's NonMatches slice with
	// the disagreements found in the tree: primitive and record fields,
	// plus object-level FD/FN/FA entries for list elements. Field-level
	// disagreements inside record-list pairs that clear match_threshold
	// are not listed.
	DocumentNonMatches bool

	// EvaluatorFormat reshapes matching nodes into the derived-metrics +
	// anls_score view (§11) instead of the standard counts tree. When
	// EvaluatorFormatAllNodes is false (default), only the root is
	// reshaped; when true, every node in the tree is.
	EvaluatorFormat         bool
	EvaluatorFormatAllNodes bool

	// RecallWithFD changes the derived recall formula to count FD
	// (false descriptions) as well as FN in the denominator. It never
	// changes the base Counts, only the Derived block computed from them.
	RecallWithFD bool

	// AddDerivedMetrics computes the Derived precision/recall/F1/accuracy
	// block for every node. Defaults to true; DefaultOptions sets it.
	AddDerivedMetrics bool
}

// DefaultOptions returns the Options Compare uses when none are supplied.
func DefaultOptions() Options {
	return Options{
		AddDerivedMetrics: true,
	}
}
