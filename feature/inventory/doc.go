// Package inventory is the agent-facing entry point: the HTTP handler
// and the service that negotiates the wire protocol, resolves the
// parent asset, and dispatches submissions through the reconciler
// registry.
//
// Subpackages implement the moving parts: protocol (codecs and wire
// encodings), models (persistence schema), compare (comparison keys),
// software/device/dbinstance/remotemgmt (category reconcilers) and
// archive (raw submission retention).
package inventory
