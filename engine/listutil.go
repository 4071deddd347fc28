package engine

import "stickler/schema"

// listOrNull classifies a value found at a declared list field: a real
// (possibly empty) []any, or something null-equivalent standing in for
// one (nil, "", an empty map), or a genuine type mismatch (a non-null
// scalar where a list was declared).
func listOrNull(v any) (list []any, isNull bool, typeMismatch bool) {
	if v == nil {
		return nil, true, false
	}
	if s, ok := v.([]any); ok {
		return s, len(s) == 0, false
	}
	if schema.IsNullEquivalent(v) {
		return nil, true, false
	}
	return nil, false, true
}
