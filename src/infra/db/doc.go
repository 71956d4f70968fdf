// Package db provides database connection management for PostgreSQL.
//
// This package is responsible for:
//   - PostgreSQL connection pool initialization
//   - Connection health checks
//   - Creating the jokes table on startup (EnsureSchema)
//   - Running work inside a transaction (InTx)
//
// Example usage:
//
//	pg, err := db.New(ctx, cfg.Database, log)
//	if err != nil {
//	    return err
//	}
//	defer pg.Close()
package db
