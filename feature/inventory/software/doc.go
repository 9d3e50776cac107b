// Package software reconciles installed-software submissions: field
// normalization and rule transforms, manufacturer-preferring batch
// dedup, diffing against the asset's dynamic install links, stale link
// cleanup, and resolve-or-create of the shared software catalog.
package software
