// Package store holds the SQL behind every page: groups, posts, comments
// and follows. Queries use $N placeholders, which both the pgx and the
// sqlite3 drivers accept.
package store

import (
	"database/sql"
	"errors"
	"time"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrSlugTaken = errors.New("group slug already taken")
)

type Store struct {
	DB  *sql.DB
	Now func() time.Time
}

func New(db *sql.DB) *Store {
	return &Store{
		DB:  db,
		Now: func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) now() time.Time {
	return s.Now().UTC()
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
