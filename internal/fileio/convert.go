package fileio

import (
	"strconv"
	"strings"

	"stickler/internal/utils"
	"stickler/schema"
)

// RowsToRecords coerces the string cells ReadAnyMaps returns into typed
// schema.Record values per sch's declared primitive kinds, so a CSV/XLS/
// XLSX fixture can feed straight into engine.Compare without a bespoke
// JSON layer. Nested record/list fields are left for the caller to
// populate separately (tabular fixtures only carry flat rows); unknown
// columns not declared on sch are dropped.
func RowsToRecords(rows []map[string]string, sch *schema.Schema) []schema.Record {
	out := make([]schema.Record, 0, len(rows))
	for _, row := range rows {
		out = append(out, rowToRecord(row, sch))
	}
	return out
}

func rowToRecord(row map[string]string, sch *schema.Schema) schema.Record {
	rec := schema.Record{}
	for _, f := range sch.Fields {
		raw, ok := row[f.Name]
		if !ok || strings.TrimSpace(raw) == "" {
			continue
		}
		if f.Type.Kind != schema.KindPrim {
			continue
		}
		rec[f.Name] = coercePrim(raw, f.Type.Prim)
	}
	return rec
}

func coercePrim(raw string, kind schema.PrimKind) any {
	raw = strings.TrimSpace(raw)
	switch kind {
	case schema.PrimInt:
		if n, err := strconv.Atoi(raw); err == nil {
			return n
		}
		if f, ok := utils.ParseFloatRU(raw); ok {
			return int(f)
		}
		return raw
	case schema.PrimFloat:
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			return f
		}
		if f, ok := utils.ParseFloatRU(raw); ok {
			return f
		}
		return raw
	case schema.PrimBool:
		if b, err := strconv.ParseBool(raw); err == nil {
			return b
		}
		return raw
	default:
		return raw
	}
}
