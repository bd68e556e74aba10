package db

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
)

// IsUniqueViolation reports whether err is a unique constraint failure.
// A non-empty constraint narrows the match: for SQLite it is matched against
// the "table.column" list in the message, for Postgres against the
// constraint name or the detail text.
func IsUniqueViolation(err error, constraint string) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code != "23505" {
			return false
		}
		return constraint == "" ||
			strings.Contains(pgErr.ConstraintName, column(constraint)) ||
			strings.Contains(pgErr.Detail, column(constraint))
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		if liteErr.ExtendedCode != sqlite3.ErrConstraintUnique {
			return false
		}
		return constraint == "" || strings.Contains(liteErr.Error(), constraint)
	}
	return false
}

func column(constraint string) string {
	if i := strings.LastIndexByte(constraint, '.'); i >= 0 {
		return constraint[i+1:]
	}
	return constraint
}
