// Package dbinstance reconciles database services reported by agents,
// including the nested list of databases each instance hosts.
package dbinstance
