package db

import (
	"database/sql"
	"embed"
	"fmt"
)

//go:embed schema
var schemas embed.FS

// Migrate applies the schema for driver. Every statement is idempotent.
func Migrate(db *sql.DB, driver string) error {
	var name string
	switch driver {
	case DriverPostgres:
		name = "schema/postgres.sql"
	case DriverSQLite:
		name = "schema/sqlite.sql"
	default:
		return fmt.Errorf("no schema for driver %q", driver)
	}
	b, err := schemas.ReadFile(name)
	if err != nil {
		return err
	}
	_, err = db.Exec(string(b))
	return err
}
