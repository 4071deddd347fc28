// Package engine implements the recursive structured-comparison engine:
// given a schema, a ground-truth record, and a predicted record, it
// walks both trees in lockstep and produces a hierarchical result tree
// carrying per-node classification counts, similarity scores, and
// rolled-up aggregate metrics.
package engine

import "encoding/json"

// Counts is the base TP/TN/FD/FA/FN tally that every node in the result
// tree carries, both at "overall" (this node's own classification) and
// "aggregate" (the post-order rollup of every primitive reached under
// this node). FP (= FD+FA) is derived, never stored, but is always part
// of the serialized shape (§3) since it's the conventional name callers
// expect in a confusion matrix.
type Counts struct {
	TP int
	TN int
	FD int
	FA int
	FN int
}

// Add accumulates other into c in place.
func (c *Counts) Add(other Counts) {
	c.TP += other.TP
	c.TN += other.TN
	c.FD += other.FD
	c.FA += other.FA
	c.FN += other.FN
}

// Total is the number of classification units counted.
func (c Counts) Total() int {
	return c.TP + c.TN + c.FD + c.FA + c.FN
}

// FP is the conventional "false positive" union of FD and FA (I1).
func (c Counts) FP() int {
	return c.FD + c.FA
}

func (c Counts) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		TP int `json:"tp"`
		TN int `json:"tn"`
		FD int `json:"fd"`
		FA int `json:"fa"`
		FP int `json:"fp"`
		FN int `json:"fn"`
	}{c.TP, c.TN, c.FD, c.FA, c.FP(), c.FN})
}

// Overall is the per-node classification summary: this node's own
// counts (a single unit for a primitive/record-field node, one unit per
// matched pair for a list node), a similarity score, and whether every
// field under this node matched exactly.
type Overall struct {
	Counts           Counts  `json:"counts"`
	SimilarityScore  float64 `json:"similarity_score"`
	AllFieldsMatched bool    `json:"all_fields_matched"`
}

// Derived holds the precision/recall/F1/accuracy metrics computed from
// Counts. It is only populated when Options.AddDerivedMetrics is true
// (the default).
type Derived struct {
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	Accuracy  float64 `json:"accuracy"`
}

// NonMatchKind classifies why a leaf failed to match, for the top-level
// non_matches summary.
type NonMatchKind string

const (
	NonMatchFD NonMatchKind = "false_description" // predicted a value, gt had a different value
	NonMatchFA NonMatchKind = "false_addition"     // predicted a value, gt was null
	NonMatchFN NonMatchKind = "false_negative"     // gt had a value, predicted was null
)

// NonMatch is one leaf-level disagreement, reported with its full
// dotted path from the record root.
type NonMatch struct {
	Path            string       `json:"path"`
	Kind            NonMatchKind `json:"kind"`
	GroundTruth     any          `json:"ground_truth"`
	Predicted       any          `json:"predicted"`
	SimilarityScore float64      `json:"similarity_score"`
	Reason          string       `json:"reason,omitempty"`
}

// Node is the uniform shape every position in the result tree takes:
// fields, a list element, or the record root all produce the same
// structure, so a caller walking the tree never needs to special-case
// its position.
type Node struct {
	Overall               Overall    `json:"overall"`
	Fields                *Fields    `json:"fields,omitempty"`
	Aggregate             Counts     `json:"aggregate"`
	AggregateDerived      *Derived   `json:"aggregate_derived,omitempty"`
	NonMatches            []NonMatch `json:"non_matches,omitempty"`
	RawSimilarityScore    float64    `json:"raw_similarity_score"`
	ThresholdAppliedScore float64    `json:"threshold_applied_score"`
	Weight                float64    `json:"weight"`
}
