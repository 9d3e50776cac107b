package reconcile

import (
	"context"
	"fmt"

	"inventory-server/core/fieldbag"
)

// Reconciler converges the stored state of one asset category with a
// submission. Implementations are registered once at startup.
type Reconciler interface {
	// Category returns the category name this reconciler consumes.
	Category() string

	// Aliases returns alternative category labels used by other wire
	// encodings, nil when the category has only its primary name.
	Aliases() []string

	// CheckConf reports whether the category is enabled by configuration.
	CheckConf(conf Conf) bool

	// Prepare maps vendor field names onto canonical ones, applies rule
	// transforms and drops unusable items. Items are mutated in place;
	// the returned slice is the surviving batch in submission order.
	Prepare(rctx *Context, items []fieldbag.Item) []fieldbag.Item

	// Handle diffs the prepared batch against existing records and performs
	// the minimal create/update/delete set. Persistence failures propagate:
	// partial reconciliation must not be papered over.
	Handle(ctx context.Context, rctx *Context, items []fieldbag.Item) error
}

// Registry maps category names (and their aliases) to reconcilers. It is
// built once at startup and resolved by explicit lookup, never by runtime
// type construction from submission strings.
type Registry struct {
	order  []Reconciler
	byName map[string]Reconciler
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]Reconciler)}
}

// Register adds a reconciler under its category name and aliases.
// Registering a duplicate name is a programming error.
func (r *Registry) Register(rec Reconciler) error {
	names := append([]string{rec.Category()}, rec.Aliases()...)
	for _, name := range names {
		if _, dup := r.byName[name]; dup {
			return fmt.Errorf("category %q is already registered", name)
		}
		r.byName[name] = rec
	}
	r.order = append(r.order, rec)
	return nil
}

// Get resolves a reconciler by category name or alias.
func (r *Registry) Get(name string) (Reconciler, bool) {
	rec, ok := r.byName[name]
	return rec, ok
}

// All returns the reconcilers in registration order.
func (r *Registry) All() []Reconciler {
	return r.order
}
