package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"yatube/internal/models"
)

// PostFilter narrows a feed. Zero fields are ignored, so the zero value
// selects every post.
type PostFilter struct {
	GroupID    int64
	AuthorID   int64
	FollowerID int64 // only posts by authors this user follows
}

const postColumns = `
SELECT
  p.id, p.text, p.author_id, p.group_id, p.image, p.created_at,
  u.username,
  g.title, g.slug, g.description
FROM posts p
JOIN users u ON u.id = p.author_id
LEFT JOIN post_groups g ON g.id = p.group_id
`

func (f PostFilter) where() (string, []any) {
	var (
		sb   strings.Builder
		args []any
	)
	nextArg := func() string { return fmt.Sprintf("$%d", len(args)+1) }

	sb.WriteString("WHERE 1=1 ")
	if f.GroupID != 0 {
		sb.WriteString("AND p.group_id = " + nextArg() + " ")
		args = append(args, f.GroupID)
	}
	if f.AuthorID != 0 {
		sb.WriteString("AND p.author_id = " + nextArg() + " ")
		args = append(args, f.AuthorID)
	}
	if f.FollowerID != 0 {
		sb.WriteString("AND p.author_id IN (SELECT author_id FROM follows WHERE user_id = " + nextArg() + ") ")
		args = append(args, f.FollowerID)
	}
	return sb.String(), args
}

func (s *Store) CountPosts(ctx context.Context, f PostFilter) (int, error) {
	where, args := f.where()
	var n int
	err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts p `+where, args...).Scan(&n)
	return n, err
}

// ListPosts returns one window of a feed, newest first.
func (s *Store) ListPosts(ctx context.Context, f PostFilter, limit, offset int) ([]models.Post, error) {
	where, args := f.where()
	q := postColumns + where +
		fmt.Sprintf("ORDER BY p.created_at DESC, p.id DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("posts query: %w", err)
	}
	defer rows.Close()

	var posts []models.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("posts scan: %w", err)
		}
		posts = append(posts, *p)
	}
	return posts, rows.Err()
}

func (s *Store) PostByID(ctx context.Context, id int64) (*models.Post, error) {
	row := s.DB.QueryRowContext(ctx, postColumns+`WHERE p.id = $1`, id)
	p, err := scanPost(row)
	if err != nil {
		return nil, notFound(err)
	}
	return p, nil
}

func (s *Store) CreatePost(ctx context.Context, p *models.Post) error {
	p.CreatedAt = s.now()
	return s.DB.QueryRowContext(ctx,
		`INSERT INTO posts (text, author_id, group_id, image, created_at)
         VALUES ($1, $2, $3, $4, $5)
         RETURNING id`,
		p.Text, p.AuthorID, p.GroupID, nullString(p.Image), p.CreatedAt,
	).Scan(&p.ID)
}

// UpdatePost rewrites the editable fields; id, author and created_at stay.
func (s *Store) UpdatePost(ctx context.Context, p *models.Post) error {
	res, err := s.DB.ExecContext(ctx,
		`UPDATE posts SET text = $1, group_id = $2, image = $3 WHERE id = $4`,
		p.Text, p.GroupID, nullString(p.Image), p.ID,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeletePost is an administrative operation; comments go with the post.
func (s *Store) DeletePost(ctx context.Context, id int64) error {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPost(sc scanner) (*models.Post, error) {
	var (
		p                     models.Post
		groupID               sql.NullInt64
		image                 sql.NullString
		username              string
		gTitle, gSlug, gDescr sql.NullString
	)
	if err := sc.Scan(&p.ID, &p.Text, &p.AuthorID, &groupID, &image, &p.CreatedAt,
		&username, &gTitle, &gSlug, &gDescr); err != nil {
		return nil, err
	}
	p.Image = image.String
	p.Author = &models.User{ID: p.AuthorID, Username: username}
	if groupID.Valid {
		id := groupID.Int64
		p.GroupID = &id
		p.Group = &models.Group{ID: id, Title: gTitle.String, Slug: gSlug.String, Description: gDescr.String}
	}
	return &p, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
