package similarity

import "fmt"

// Exact returns 1.0 when gt and pred are the same Go value after a
// light-touch type reconciliation (an int and an equal-valued float64 are
// considered equal, since JSON numbers all decode to float64), 0.0
// otherwise. It never errors — per §4.4 a cross-type mismatch simply
// scores 0.0.
func Exact(gt, pred any) (float64, error) {
	if gt == nil && pred == nil {
		return 1.0, nil
	}
	if gt == nil || pred == nil {
		return 0.0, nil
	}
	if gf, ok := asFloat(gt); ok {
		if pf, ok := asFloat(pred); ok {
			if gf == pf {
				return 1.0, nil
			}
			return 0.0, nil
		}
	}
	if fmt.Sprint(gt) == fmt.Sprint(pred) && sameKind(gt, pred) {
		return 1.0, nil
	}
	return 0.0, nil
}

// BooleanExact is the default comparator for bool fields (§4.3): 1.0 if
// both sides parse to the same boolean, 0.0 otherwise (including when
// either side is not a bool at all — a type mismatch per §4.4).
func BooleanExact(gt, pred any) (float64, error) {
	gb, gok := gt.(bool)
	pb, pok := pred.(bool)
	if !gok || !pok {
		return 0.0, nil
	}
	if gb == pb {
		return 1.0, nil
	}
	return 0.0, nil
}

// Structural is the default comparator for Record fields (§4.3): it is
// never actually invoked to produce a score, since Record fields recurse
// via the engine instead of calling a registered Func. It exists purely
// so schema.Validate's registry-membership check has a name to resolve
// when a record field omits x-comparator.
func Structural(gt, pred any) (float64, error) {
	return Exact(gt, pred)
}

func sameKind(a, b any) bool {
	switch a.(type) {
	case string:
		_, ok := b.(string)
		return ok
	case bool:
		_, ok := b.(bool)
		return ok
	default:
		return false
	}
}

func asFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	}
	return 0, false
}
