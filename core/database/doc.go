// Package database handles the catalog database connection.
//
// It provides a wrapper around GORM to configure the connection based on
// the application's configuration. PostgreSQL is the primary backend (the
// change feed relies on LISTEN/NOTIFY); MySQL is supported for read-only
// deployments without a live feed, and in-memory SQLite is used by tests.
//
// # Connect
//
// Connect establishes the connection, configures the pool and verifies it
// with a ping. Callers decide whether a failed connection is fatal.
//
//	db, err := database.Connect(cfg.Database)
package database
