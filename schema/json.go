package schema

import (
	"encoding/json"
	"fmt"
	"sort"
)

// jsonSchema mirrors the JSON-Schema-like envelope from spec §6: a
// standard `type`/`properties`/`items`/`required` skeleton carrying
// namespaced `x-*` vendor extensions for comparator wiring.
type jsonSchema struct {
	Title      string                 `json:"title"`
	Type       string                 `json:"type"`
	Properties map[string]*jsonSchema `json:"properties,omitempty"`
	Items      *jsonSchema            `json:"items,omitempty"`
	Required   []string               `json:"required,omitempty"`

	XComparator          *string  `json:"x-comparator,omitempty"`
	XThreshold           *float64 `json:"x-threshold,omitempty"`
	XWeight              *float64 `json:"x-weight,omitempty"`
	XClipUnderThreshold  *bool    `json:"x-clip-under-threshold,omitempty"`
	XAggregate           *bool    `json:"x-aggregate,omitempty"`
	XMatchThreshold      *float64 `json:"x-match-threshold,omitempty"`
	XOrder               []string `json:"x-order,omitempty"`
}

// Decode parses the JSON schema-exchange format of spec §6 into a Schema.
// It rejects (returns a *SchemaError for) any `type` it does not
// recognize; comparator-name resolution against a registry happens
// separately in Validate, since Decode has no registry in scope.
func Decode(data []byte) (*Schema, error) {
	var js jsonSchema
	if err := json.Unmarshal(data, &js); err != nil {
		return nil, &SchemaError{Reason: fmt.Sprintf("invalid json: %v", err)}
	}
	if js.Type != "object" {
		return nil, &SchemaError{Reason: fmt.Sprintf("root schema type must be \"object\", got %q", js.Type)}
	}
	return decodeObject(&js, js.Title, "")
}

func decodeObject(js *jsonSchema, name, path string) (*Schema, error) {
	required := map[string]bool{}
	for _, r := range js.Required {
		required[r] = true
	}

	// encoding/json does not preserve object key order, so declared field
	// order (needed for §5's ordering guarantees) comes from an explicit
	// "x-order" list when present, falling back to alphabetical so Decode
	// is still deterministic without it.
	var names []string
	if len(js.XOrder) > 0 {
		names = js.XOrder
	} else {
		names = make([]string, 0, len(js.Properties))
		for k := range js.Properties {
			names = append(names, k)
		}
		sort.Strings(names)
	}

	s := &Schema{Name: name, MatchThreshold: DefaultMatchThreshold}
	if js.XMatchThreshold != nil {
		s.MatchThreshold = *js.XMatchThreshold
	}

	for _, fname := range names {
		fieldPath := fname
		if path != "" {
			fieldPath = path + "." + fname
		}
		prop, ok := js.Properties[fname]
		if !ok {
			return nil, &SchemaError{Path: fieldPath, Reason: "x-order references unknown property"}
		}
		f, err := decodeField(prop, fname, fieldPath, !required[fname])
		if err != nil {
			return nil, err
		}
		s.Fields = append(s.Fields, f)
	}
	return s, nil
}

func decodeField(js *jsonSchema, name, path string, optional bool) (Field, error) {
	var t Type
	t.Optional = optional

	switch js.Type {
	case "string":
		t.Kind = KindPrim
		t.Prim = PrimString
	case "integer":
		t.Kind = KindPrim
		t.Prim = PrimInt
	case "number":
		t.Kind = KindPrim
		t.Prim = PrimFloat
	case "boolean":
		t.Kind = KindPrim
		t.Prim = PrimBool
	case "object":
		sub, err := decodeObject(js, name, path)
		if err != nil {
			return Field{}, err
		}
		t.Kind = KindRecord
		t.Elem = sub
	case "array":
		if js.Items == nil {
			return Field{}, &SchemaError{Path: path, Reason: "array field missing \"items\""}
		}
		switch js.Items.Type {
		case "object":
			sub, err := decodeObject(js.Items, name, path)
			if err != nil {
				return Field{}, err
			}
			// x-match-threshold may sit on the array itself; an explicit
			// value on the items object takes precedence.
			if js.XMatchThreshold != nil && js.Items.XMatchThreshold == nil {
				sub.MatchThreshold = *js.XMatchThreshold
			}
			t.Kind = KindListRecord
			t.Elem = sub
		case "string":
			t.Kind = KindListPrim
			t.Prim = PrimString
		case "integer":
			t.Kind = KindListPrim
			t.Prim = PrimInt
		case "number":
			t.Kind = KindListPrim
			t.Prim = PrimFloat
		case "boolean":
			t.Kind = KindListPrim
			t.Prim = PrimBool
		default:
			return Field{}, &SchemaError{Path: path, Reason: fmt.Sprintf("unrecognized array item type %q", js.Items.Type)}
		}
	default:
		return Field{}, &SchemaError{Path: path, Reason: fmt.Sprintf("unrecognized declared type %q", js.Type)}
	}

	cfg := FieldConfig{
		ComparatorName:     "",
		Threshold:          0.5,
		Weight:             1.0,
		ClipUnderThreshold: false,
		IncludeInAggregate: true,
	}
	if t.Kind == KindPrim && t.Prim == PrimBool {
		cfg.Threshold = 1.0
	}
	if js.XComparator != nil {
		cfg.ComparatorName = *js.XComparator
	}
	if js.XThreshold != nil {
		cfg.Threshold = *js.XThreshold
	}
	if js.XWeight != nil {
		cfg.Weight = *js.XWeight
	}
	if js.XClipUnderThreshold != nil {
		cfg.ClipUnderThreshold = *js.XClipUnderThreshold
	}
	if js.XAggregate != nil {
		cfg.IncludeInAggregate = *js.XAggregate
	}

	return Field{Name: name, Type: t, Config: cfg}, nil
}
