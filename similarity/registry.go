// Package similarity provides the Similarity Registry (spec §2) and a set
// of concrete similarity functions. The engine treats these as external
// collaborators reached strictly by name — it never imports a concrete
// comparator package directly (§9 "Registry, not inheritance").
package similarity

import "fmt"

// Func is a named similarity function: given a ground-truth and a
// predicted value, it returns a score in [0,1], or an error. Per §7, an
// error is treated by the engine as score 0.0 classified FD — it is never
// propagated as a fatal failure.
type Func func(gt, pred any) (float64, error)

// Registry is a name → Func table, owned by the caller and passed into
// Compare by reference (§9). It is read-only for the duration of a
// comparison; the engine never mutates it.
type Registry struct {
	funcs map[string]Func
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{funcs: make(map[string]Func)}
}

// Register binds a name to a similarity function, overwriting any
// previous binding. Intended for wiring in comparators this package does
// not ship (embedding/LLM backends, domain-specific scorers) without
// touching the engine (§1 "explicitly out of scope").
func (r *Registry) Register(name string, fn Func) {
	r.funcs[name] = fn
}

// Has reports whether name is bound. Satisfies schema.ComparatorLookup.
func (r *Registry) Has(name string) bool {
	_, ok := r.funcs[name]
	return ok
}

// Lookup returns the bound function, or an error if name is unregistered.
// §6: the engine MUST reject a schema whose comparator names are not in
// the registry — callers should validate via schema.Validate before
// relying on Lookup succeeding at comparison time.
func (r *Registry) Lookup(name string) (Func, error) {
	fn, ok := r.funcs[name]
	if !ok {
		return nil, fmt.Errorf("similarity: comparator %q not registered", name)
	}
	return fn, nil
}
