// Package database handles the MySQL connection used by the controller.
//
// It provides a wrapper around GORM (Go Object Relational Mapping) that
// configures connection pooling and timeouts based on the application's
// configuration. Model migrations are owned by the feature packages; this
// package only establishes and verifies the connection.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
package database
