package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"yatube/internal/app"
	"yatube/internal/events"
	httpx "yatube/internal/http"
	"yatube/internal/metrics"
)

func (c *cli) serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the web server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.serve(cmd.Context())
		},
	}
}

func (c *cli) serve(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := app.InitTracing(ctx, c.cfg.OTelEndpoint, "yatube")
	if err != nil {
		return err
	}
	defer shutdownTracing(context.Background())

	conn, err := c.openDB()
	if err != nil {
		return err
	}
	defer conn.Close()

	pages, closeCache, err := c.openCache(ctx)
	if err != nil {
		return err
	}
	defer closeCache()

	files, err := c.openMedia(ctx)
	if err != nil {
		return err
	}

	pub := events.NewKafka(c.cfg.KafkaBrokers, c.cfg.KafkaTopic)
	defer pub.Close()

	srv, err := httpx.NewServer(conn, c.cfg, httpx.Deps{
		Cache:   pages,
		Media:   files,
		Events:  pub,
		Metrics: metrics.New(),
		Log:     c.log,
	})
	if err != nil {
		return err
	}

	hs := &http.Server{
		Addr:              c.cfg.Addr,
		Handler:           srv,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		c.log.Info("listening", "addr", c.cfg.Addr,
			"db", c.cfg.DatabaseDriver, "cache", c.cfg.CacheBackend, "media", c.cfg.MediaBackend)
		errc <- hs.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	c.log.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return hs.Shutdown(sctx)
}
