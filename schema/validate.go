package schema

import "fmt"

// ComparatorLookup is the minimal capability Validate needs from a
// similarity registry: answering whether a comparator name is bound. It
// is satisfied by *similarity.Registry without this package importing it,
// keeping schema free of a dependency on comparator implementations
// (§9 "Registry, not inheritance").
type ComparatorLookup interface {
	Has(name string) bool
}

// Validate walks a schema tree and rejects (per §6) any field whose
// declared type is structurally unrecognized or whose resolved comparator
// name is not bound in reg. It never mutates the schema.
func Validate(s *Schema, reg ComparatorLookup) error {
	return validate(s, "", reg, map[*Schema]bool{})
}

func validate(s *Schema, path string, reg ComparatorLookup, seen map[*Schema]bool) error {
	if s == nil {
		return &SchemaError{Path: path, Reason: "nil schema"}
	}
	if seen[s] {
		// Schemas form a DAG at worst (§9); a schema revisited via two
		// list fields is fine, a schema revisited via itself unchanged
		// is idempotent to re-validate, so just stop descending.
		return nil
	}
	seen[s] = true

	for _, f := range s.Fields {
		fieldPath := f.Name
		if path != "" {
			fieldPath = path + "." + f.Name
		}
		switch f.Type.Kind {
		case KindPrim, KindListPrim:
			name := f.Config.ComparatorName
			if name == "" {
				name = f.Type.Prim.DefaultComparator()
			}
			if reg != nil && !reg.Has(name) {
				return &UnknownComparatorError{Path: fieldPath, ComparatorName: name}
			}
		case KindRecord, KindListRecord:
			if f.Type.Elem == nil {
				return &SchemaError{Path: fieldPath, Reason: "record/list-record field missing element schema"}
			}
			name := f.Config.ComparatorName
			if name == "" {
				name = "structural"
			}
			if reg != nil && !reg.Has(name) {
				return &UnknownComparatorError{Path: fieldPath, ComparatorName: name}
			}
			if err := validate(f.Type.Elem, fieldPath, reg, seen); err != nil {
				return err
			}
		default:
			return &SchemaError{Path: fieldPath, Reason: fmt.Sprintf("unrecognized declared type kind %d", f.Type.Kind)}
		}
		if f.Config.Weight <= 0 {
			return &SchemaError{Path: fieldPath, Reason: "weight must be > 0"}
		}
	}
	return nil
}
