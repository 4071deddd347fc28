package engine

import "stickler/schema"

// dispatchField is §4.2: deterministic routing of one field pair by its
// declared type. List kinds own their null/empty handling (§4.6/§4.7
// step 1); Prim and Record kinds are handled here directly.
func dispatchField(cc *ctx, path string, typ schema.Type, cfg schema.FieldConfig, gt, pred any) (*Node, []NonMatch, error) {
	switch typ.Kind {
	case schema.KindPrim:
		return compareLeaf(cc, path, typ.Prim, cfg, gt, pred)
	case schema.KindRecord:
		return compareRecordField(cc, path, cfg, typ.Elem, gt, pred)
	case schema.KindListPrim:
		return comparePrimitiveList(cc, path, typ.Prim, cfg, gt, pred)
	case schema.KindListRecord:
		return compareRecordList(cc, path, typ, cfg, gt, pred)
	default:
		// Declared type unrecognized; schema.Validate is expected to have
		// rejected this already, but defend against a hand-built schema
		// bypassing validation.
		return &Node{
			Overall: Overall{Counts: Counts{FD: 1}},
			Weight:  cfg.Weight,
		}, nil, nil
	}
}
