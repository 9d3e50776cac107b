// Package utils provides common utility functions for the inventory server.
// It includes helper functions for type conversion of loosely typed values
// coming from agent submissions and database rows.
package utils
