// Package reconcile defines the shared machinery for inventory
// reconciliation: the Reconciler interface every category adapter
// implements, the registry that dispatches submissions to adapters,
// the per-run Context, the rule engine and the comparison index used
// to diff submitted items against database state.
package reconcile
