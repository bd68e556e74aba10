package store

import (
	"context"
)

// Follow subscribes user to author. Following twice or following yourself
// changes nothing; the (user, author) pair is unique in the schema.
func (s *Store) Follow(ctx context.Context, userID, authorID int64) error {
	if userID == authorID {
		return nil
	}
	_, err := s.DB.ExecContext(ctx, `
INSERT INTO follows (user_id, author_id, created_at)
VALUES ($1, $2, $3)
ON CONFLICT (user_id, author_id) DO NOTHING
`, userID, authorID, s.now())
	return err
}

// Unfollow removes the subscription if there is one.
func (s *Store) Unfollow(ctx context.Context, userID, authorID int64) error {
	_, err := s.DB.ExecContext(ctx,
		`DELETE FROM follows WHERE user_id = $1 AND author_id = $2`, userID, authorID)
	return err
}

func (s *Store) IsFollowing(ctx context.Context, userID, authorID int64) (bool, error) {
	var n int
	err := s.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM follows WHERE user_id = $1 AND author_id = $2`, userID, authorID,
	).Scan(&n)
	return n > 0, err
}

// CountFollows counts every follow row; userID narrows it to one follower.
// No page shows it; tests use it to check follow writes.
func (s *Store) CountFollows(ctx context.Context, userID int64) (int, error) {
	var n int
	var err error
	if userID == 0 {
		err = s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM follows`).Scan(&n)
	} else {
		err = s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM follows WHERE user_id = $1`, userID).Scan(&n)
	}
	return n, err
}
