package store

import (
	"context"
	"fmt"

	"yatube/internal/models"
)

func (s *Store) CreateComment(ctx context.Context, c *models.Comment) error {
	c.CreatedAt = s.now()
	return s.DB.QueryRowContext(ctx,
		`INSERT INTO comments (post_id, author_id, text, created_at)
         VALUES ($1, $2, $3, $4)
         RETURNING id`,
		c.PostID, c.AuthorID, c.Text, c.CreatedAt,
	).Scan(&c.ID)
}

// ListComments returns a post's comments in the order they were written.
func (s *Store) ListComments(ctx context.Context, postID int64) ([]models.Comment, error) {
	rows, err := s.DB.QueryContext(ctx, `
SELECT c.id, c.post_id, c.author_id, c.text, c.created_at, u.username
  FROM comments c
  JOIN users u ON u.id = c.author_id
 WHERE c.post_id = $1
 ORDER BY c.created_at ASC, c.id ASC
`, postID)
	if err != nil {
		return nil, fmt.Errorf("comments query: %w", err)
	}
	defer rows.Close()

	var comments []models.Comment
	for rows.Next() {
		var (
			c        models.Comment
			username string
		)
		if err := rows.Scan(&c.ID, &c.PostID, &c.AuthorID, &c.Text, &c.CreatedAt, &username); err != nil {
			return nil, fmt.Errorf("comments scan: %w", err)
		}
		c.Author = &models.User{ID: c.AuthorID, Username: username}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// CountComments is not used by any page; tests use it to check writes.
func (s *Store) CountComments(ctx context.Context, postID int64) (int, error) {
	var n int
	err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM comments WHERE post_id = $1`, postID).Scan(&n)
	return n, err
}
