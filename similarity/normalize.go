package similarity

import (
	"sort"
	"strings"
)

// Lookalike character folding and token sorting, adapted from the
// teacher's internal/reconcile/service/normalize.go. There it unified
// Latin/Cyrillic look-alike glyphs before fuzzy-matching product names;
// here it is a reusable pre-processing step any string comparator's
// caller can apply to gt/pred before registry lookup.

var lookalikes = map[rune]rune{
	'A': 'А', 'B': 'В', 'C': 'С', 'E': 'Е', 'H': 'Н', 'K': 'К', 'M': 'М', 'O': 'О', 'P': 'Р', 'T': 'Т', 'X': 'Х', 'Y': 'У',
	'a': 'а', 'c': 'с', 'e': 'е', 'o': 'о', 'p': 'р', 'x': 'х',
}

// Normalize lowercases, folds visually-identical Latin/Cyrillic characters,
// and collapses whitespace. It is not wired into any comparator by
// default (comparators receive gt/pred as given); callers compose it
// explicitly, e.g. by wrapping EditDistance with a Normalize pre-pass
// when building a Registry for a particular schema.
func Normalize(s string) string {
	if s == "" {
		return s
	}
	b := make([]rune, 0, len(s))
	for _, r := range strings.ToLower(s) {
		switch r {
		case 'ё':
			r = 'е'
		case 'Ё':
			r = 'Е'
		case '×', '*', '·':
			r = ' '
		default:
			if rr, ok := lookalikes[r]; ok {
				r = rr
			}
		}
		b = append(b, r)
	}
	return collapseSpaces(string(b))
}

func tokenSort(s string) string {
	if s == "" {
		return s
	}
	f := strings.Fields(s)
	sort.Strings(f)
	return strings.Join(f, " ")
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// WithNormalize wraps a Func so both inputs are run through Normalize
// before delegating, preserving the wrapped Func's type-mismatch
// behavior for non-string values.
func WithNormalize(fn Func) Func {
	return func(gt, pred any) (float64, error) {
		if gs, ok := gt.(string); ok {
			gt = Normalize(gs)
		}
		if ps, ok := pred.(string); ok {
			pred = Normalize(ps)
		}
		return fn(gt, pred)
	}
}

// TrigramIndex is a candidate-pruning structure grounded on the teacher's
// buildIndexB/candidateNames/trigramSet in internal/reconcile/service/index.go.
// The record-list comparator (engine package) uses it to shortlist likely
// pred matches for a gt record before paying for a full recursive compare
// against every pred record, when the element schema supplies a string
// "identity" field and the lists are large enough to matter.
type TrigramIndex struct {
	byTrigram map[string]map[int]struct{}
	size      int
}

// BuildTrigramIndex indexes each of the given key strings (already
// normalized by the caller) by the set of character trigrams it contains.
func BuildTrigramIndex(keys []string) *TrigramIndex {
	idx := &TrigramIndex{byTrigram: make(map[string]map[int]struct{}), size: len(keys)}
	for i, k := range keys {
		for g := range trigramSet(k) {
			bucket, ok := idx.byTrigram[g]
			if !ok {
				bucket = make(map[int]struct{})
				idx.byTrigram[g] = bucket
			}
			bucket[i] = struct{}{}
		}
	}
	return idx
}

// Candidates returns the indices of keys sharing at least one trigram with
// query, sorted for determinism. An empty result means "no hint available"
// — callers should fall back to comparing against every index, not treat
// it as "no matches".
func (idx *TrigramIndex) Candidates(query string) []int {
	seen := make(map[int]struct{})
	for g := range trigramSet(query) {
		for i := range idx.byTrigram[g] {
			seen[i] = struct{}{}
		}
	}
	out := make([]int, 0, len(seen))
	for i := range seen {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

func trigramSet(s string) map[string]struct{} {
	m := make(map[string]struct{})
	if s == "" {
		return m
	}
	p := " " + s + " "
	r := []rune(p)
	if len(r) < 3 {
		m[p] = struct{}{}
		return m
	}
	for i := 0; i <= len(r)-3; i++ {
		m[string(r[i:i+3])] = struct{}{}
	}
	return m
}
