// Package compare builds the normalized comparison keys that match
// submitted inventory items against existing database records.
package compare
