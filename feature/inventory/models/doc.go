// Package models defines the GORM models for the inventory schema:
// parent assets, the software catalog with its versions and install
// links, device master/link pairs, database instances with their hosted
// databases, and remote management accounts.
package models
