// Package device reconciles expansion card categories through a generic
// class-driven reconciler. Each class persists shared master records
// referenced by per-asset links; only the links are created and deleted
// during reconciliation.
package device
