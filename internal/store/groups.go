package store

import (
	"context"
	"fmt"
	"strings"

	"yatube/internal/db"
	"yatube/internal/models"
)

func (s *Store) CreateGroup(ctx context.Context, g *models.Group) error {
	g.Title = strings.TrimSpace(g.Title)
	g.Slug = strings.TrimSpace(g.Slug)
	if g.Title == "" || g.Slug == "" {
		return fmt.Errorf("group title and slug are required")
	}
	err := s.DB.QueryRowContext(ctx,
		`INSERT INTO post_groups (title, slug, description)
         VALUES ($1, $2, $3)
         RETURNING id`,
		g.Title, g.Slug, g.Description,
	).Scan(&g.ID)
	if db.IsUniqueViolation(err, "post_groups.slug") {
		return ErrSlugTaken
	}
	return err
}

// DeleteGroup removes a group; its posts stay, detached from any group.
func (s *Store) DeleteGroup(ctx context.Context, slug string) error {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM post_groups WHERE slug = $1`, slug)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) GroupBySlug(ctx context.Context, slug string) (*models.Group, error) {
	var g models.Group
	err := s.DB.QueryRowContext(ctx,
		`SELECT id, title, slug, description FROM post_groups WHERE slug = $1`, slug,
	).Scan(&g.ID, &g.Title, &g.Slug, &g.Description)
	if err != nil {
		return nil, notFound(err)
	}
	return &g, nil
}

func (s *Store) GroupByID(ctx context.Context, id int64) (*models.Group, error) {
	var g models.Group
	err := s.DB.QueryRowContext(ctx,
		`SELECT id, title, slug, description FROM post_groups WHERE id = $1`, id,
	).Scan(&g.ID, &g.Title, &g.Slug, &g.Description)
	if err != nil {
		return nil, notFound(err)
	}
	return &g, nil
}

func (s *Store) ListGroups(ctx context.Context) ([]models.Group, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT id, title, slug, description FROM post_groups ORDER BY title`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []models.Group
	for rows.Next() {
		var g models.Group
		if err := rows.Scan(&g.ID, &g.Title, &g.Slug, &g.Description); err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}
