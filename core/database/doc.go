// Package database handles database connections and schema inspection.
//
// It provides a wrapper around GORM (Go Object Relational Mapping) to properly configure
// MySQL connections based on the application's configuration.
//
// # Connect
//
// The generic Connect function establishes a connection to the database. Connection
// pooling and timeouts are configured here; reconcilers receive the *gorm.DB handle
// through their call context.
//
// # Schema Inspection
//
// The package includes tools to inspect the database schema. VerifyTables is used
// at startup to check that the inventory tables the reconcilers read and write
// actually exist before the server starts accepting agent submissions.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
//
//	missing := database.VerifyTables(db, models.Tables())
package database
