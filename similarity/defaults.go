package similarity

// NewDefaultRegistry returns a Registry pre-bound with every comparator
// this package ships, under both the §4.3 default names (resolved
// automatically when a field omits x-comparator) and a couple of
// explicit aliases schemas can opt into.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register("exact", Exact)
	r.Register("structural", Structural)
	r.Register("boolean_exact", BooleanExact)
	r.Register("edit_distance", EditDistance)
	r.Register("token_sort_edit_distance", TokenSortEditDistance)
	r.Register("numeric_tolerance", NumericTolerance)
	r.Register("embedding", NewExternalStub("embedding"))
	r.Register("llm", NewExternalStub("llm"))
	return r
}
