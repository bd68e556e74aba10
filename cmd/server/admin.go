package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"yatube/internal/models"
	"yatube/internal/store"
)

func (c *cli) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conn, err := c.openDB()
			if err != nil {
				return err
			}
			defer conn.Close()
			c.log.Info("schema up to date", "driver", c.cfg.DatabaseDriver)
			return nil
		},
	}
}

// withStore runs fn against an open, migrated database.
func (c *cli) withStore(ctx context.Context, fn func(ctx context.Context, s *store.Store) error) error {
	conn, err := c.openDB()
	if err != nil {
		return err
	}
	defer conn.Close()
	return fn(ctx, store.New(conn))
}

func (c *cli) groupCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "group", Short: "Manage groups"}

	var description string
	create := &cobra.Command{
		Use:   "create <slug> <title>",
		Short: "Create a group",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(ctx context.Context, s *store.Store) error {
				g := &models.Group{Slug: args[0], Title: args[1], Description: description}
				if err := s.CreateGroup(ctx, g); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created group %d %s\n", g.ID, g.Slug)
				return nil
			})
		},
	}
	create.Flags().StringVarP(&description, "description", "d", "", "group description")

	del := &cobra.Command{
		Use:   "delete <slug>",
		Short: "Delete a group; its posts stay without a group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(ctx context.Context, s *store.Store) error {
				return s.DeleteGroup(ctx, args[0])
			})
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List groups",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withStore(cmd.Context(), func(ctx context.Context, s *store.Store) error {
				groups, err := s.ListGroups(ctx)
				if err != nil {
					return err
				}
				for _, g := range groups {
					fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\n", g.ID, g.Slug, g.Title)
				}
				return nil
			})
		},
	}

	cmd.AddCommand(create, del, list)
	return cmd
}

func (c *cli) postCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "post", Short: "Moderate posts"}
	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a post with its comments and image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("bad post id %q", args[0])
			}
			return c.withStore(cmd.Context(), func(ctx context.Context, s *store.Store) error {
				p, err := s.PostByID(ctx, id)
				if err != nil {
					return err
				}
				if err := s.DeletePost(ctx, id); err != nil {
					return err
				}
				if p.Image == "" {
					return nil
				}
				m, err := c.openMedia(ctx)
				if err != nil {
					return err
				}
				if err := m.Delete(ctx, p.Image); err != nil {
					c.log.Warn("post image left behind", "post", id, "image", p.Image, "err", err)
				}
				return nil
			})
		},
	})
	return cmd
}

func (c *cli) cacheCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "cache", Short: "Manage the page cache"}
	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Drop every cached page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if c.cfg.CacheBackend != "redis" {
				return errors.New("the memory cache lives inside the server process; nothing to clear from here")
			}
			pages, closeCache, err := c.openCache(cmd.Context())
			if err != nil {
				return err
			}
			defer closeCache()
			return pages.Clear(cmd.Context())
		},
	})
	return cmd
}
