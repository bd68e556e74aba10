package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"yatube/internal/app"
	"yatube/internal/cache"
	"yatube/internal/db"
	"yatube/internal/media"
)

// cli holds what every subcommand shares once flags and config are read.
type cli struct {
	v       *viper.Viper
	cfgFile string
	cfg     app.Config
	log     *slog.Logger
}

func main() {
	c := &cli{v: app.NewViper()}
	app.Must(c.rootCmd().Execute())
}

func (c *cli) rootCmd() *cobra.Command {
	serve := c.serveCmd()
	root := &cobra.Command{
		Use:           "server",
		Short:         "Yatube blogging platform",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := app.LoadConfig(c.v, c.cfgFile)
			if err != nil {
				return err
			}
			c.cfg = cfg
			c.log = app.NewLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat)
			slog.SetDefault(c.log)
			return nil
		},
		RunE: serve.RunE,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&c.cfgFile, "config", "", "path to a YAML config file")
	pf.String("addr", "", "listen address, e.g. :8080")
	pf.String("database-driver", "", "database driver (pgx or sqlite3)")
	pf.String("database-url", "", "database DSN or SQLite file path")
	pf.String("log-level", "", "log level (debug, info, warn, error)")
	bindFlags(c.v, pf, map[string]string{
		"addr":            "addr",
		"database.driver": "database-driver",
		"database.url":    "database-url",
		"log.level":       "log-level",
	})

	root.AddCommand(serve, c.migrateCmd(), c.groupCmd(), c.postCmd(), c.cacheCmd())
	return root
}

// bindFlags maps config keys to flags. A flag only overrides the config
// when it was set on the command line.
func bindFlags(v *viper.Viper, fs *pflag.FlagSet, keys map[string]string) {
	for key, name := range keys {
		_ = v.BindPFlag(key, fs.Lookup(name))
	}
}

func (c *cli) openDB() (*sql.DB, error) {
	conn, err := db.Open(c.cfg.DatabaseDriver, c.cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(conn, c.cfg.DatabaseDriver); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return conn, nil
}

func (c *cli) openCache(ctx context.Context) (cache.Store, func() error, error) {
	if c.cfg.CacheBackend != "redis" {
		return cache.NewMemory(), func() error { return nil }, nil
	}
	r := cache.NewRedis(c.cfg.CacheRedisAddr)
	if err := r.Ping(ctx); err != nil {
		r.Close()
		return nil, nil, fmt.Errorf("redis %s: %w", c.cfg.CacheRedisAddr, err)
	}
	return r, r.Close, nil
}

func (c *cli) openMedia(ctx context.Context) (media.Storage, error) {
	if c.cfg.MediaBackend != "s3" {
		return media.NewLocal(c.cfg.MediaRoot, "/media/"), nil
	}
	s, err := media.NewS3(media.S3Config{
		Endpoint:  c.cfg.S3Endpoint,
		AccessKey: c.cfg.S3AccessKey,
		SecretKey: c.cfg.S3SecretKey,
		UseSSL:    c.cfg.S3UseSSL,
		Bucket:    c.cfg.S3Bucket,
	})
	if err != nil {
		return nil, err
	}
	if err := s.EnsureBucket(ctx); err != nil {
		return nil, fmt.Errorf("bucket %s: %w", c.cfg.S3Bucket, err)
	}
	return s, nil
}
