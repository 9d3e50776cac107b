// Package fieldbag models the loosely typed records submitted by inventory
// agents.
//
// Agents send category-specific field bags whose field names and value types
// vary by agent version and platform. Instead of an open-ended dynamic object,
// the package represents each value as a small tagged union (string, number,
// boolean, nested map, sequence) with coercing accessors, and each record as
// an Item keyed by lowercased field names. Reconcilers declare the exact
// fields they read.
//
// The Document type is the canonical decoded submission produced by the
// protocol layer: device id, action, and the category to items mapping.
package fieldbag
