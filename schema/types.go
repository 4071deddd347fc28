// Package schema describes the structure of the records Stickler compares:
// ordered field descriptors, declared primitive/record/list types, and the
// per-field comparator/threshold/weight configuration that drives the
// comparison engine. It is an input contract only — it does not compare
// anything itself.
package schema

// Kind is the declared shape of a field's value.
type Kind int

const (
	KindPrim Kind = iota
	KindRecord
	KindListPrim
	KindListRecord
)

func (k Kind) String() string {
	switch k {
	case KindPrim:
		return "prim"
	case KindRecord:
		return "record"
	case KindListPrim:
		return "list_prim"
	case KindListRecord:
		return "list_record"
	default:
		return "unknown"
	}
}

// PrimKind is the scalar type of a Prim or ListPrim field.
type PrimKind int

const (
	PrimString PrimKind = iota
	PrimInt
	PrimFloat
	PrimBool
)

func (p PrimKind) String() string {
	switch p {
	case PrimString:
		return "string"
	case PrimInt:
		return "int"
	case PrimFloat:
		return "float"
	case PrimBool:
		return "bool"
	default:
		return "unknown"
	}
}

// DefaultComparator returns the comparator name implied by a field's
// declared type when none is configured explicitly (§4.3).
func (p PrimKind) DefaultComparator() string {
	switch p {
	case PrimString:
		return "edit_distance"
	case PrimInt, PrimFloat:
		return "numeric_tolerance"
	case PrimBool:
		return "boolean_exact"
	default:
		return "exact"
	}
}

// Type is a field's declared type: exactly one of the sum-type variants
// from spec §3 (Prim, Record, ListPrim, ListRecord), plus an Optional flag.
// Optional does not change dispatch (null-equivalence already subsumes it)
// but is kept for schema-exchange fidelity with §6.
type Type struct {
	Kind     Kind
	Prim     PrimKind // meaningful when Kind is KindPrim or KindListPrim
	Elem     *Schema  // meaningful when Kind is KindRecord or KindListRecord
	Optional bool
}

// FieldConfig holds the per-field comparator/threshold/weight/flags from
// spec §3 and the `x-*` schema-exchange keys from spec §6.
type FieldConfig struct {
	ComparatorName     string
	Threshold          float64
	Weight             float64
	ClipUnderThreshold bool
	IncludeInAggregate bool
}

// DefaultFieldConfig returns the zero-value-safe defaults for a field of
// the given prim kind: threshold 0.5 (1.0 for bool), weight 1.0,
// clip-under-threshold off, included in aggregate.
func DefaultFieldConfig(p PrimKind) FieldConfig {
	threshold := 0.5
	if p == PrimBool {
		threshold = 1.0
	}
	return FieldConfig{
		ComparatorName:     p.DefaultComparator(),
		Threshold:          threshold,
		Weight:             1.0,
		ClipUnderThreshold: false,
		IncludeInAggregate: true,
	}
}

// Field is one ordered field descriptor of a Schema.
type Field struct {
	Name   string
	Type   Type
	Config FieldConfig
}

// Schema is a named record type with ordered fields and the match
// threshold used when this type appears as the element type of a
// record-list (§4.7).
type Schema struct {
	Name           string
	Fields         []Field
	MatchThreshold float64
}

// DefaultMatchThreshold is applied when a Schema does not set one.
const DefaultMatchThreshold = 0.7

// Field looks up a field descriptor by name, in declared order.
func (s *Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Record is a schema-bound record value: a mapping from field name to
// value, conforming to the declared types of some Schema. Missing keys
// are treated identically to an explicit nil value (§3 Null equivalence).
type Record = map[string]any
