// Package remotemgmt reconciles remote management accounts reported by
// agents against the parent asset's recorded accounts.
package remotemgmt
