// Package archive keeps the last raw inventory submission per device in
// object storage for later inspection.
package archive
