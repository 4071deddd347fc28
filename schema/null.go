package schema

// IsNullEquivalent implements the null-equivalence rule of spec §3: nil,
// the empty string, the empty list, and the empty record are all
// semantically identical to "absent" and must never be distinguished from
// it anywhere in the engine.
func IsNullEquivalent(v any) bool {
	if v == nil {
		return true
	}
	switch t := v.(type) {
	case string:
		return t == ""
	case []any:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	default:
		return false
	}
}
