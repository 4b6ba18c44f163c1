package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/cristianadrielbraun/kioskgallery/internal/handlers"
	"github.com/cristianadrielbraun/kioskgallery/internal/publish"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger := ctx.log()
			if err := cfg.EnsureDirectories(); err != nil {
				return err
			}
			if _, err := os.Stat(cfg.Paths.AssetDir); err != nil {
				logger.Warn("asset directory not found; sorting will fail until it exists", "dir", cfg.Paths.AssetDir)
			}
			if cfg.Publisher.APIKey == "" {
				logger.Warn("no image host API key configured; captures cannot be published")
			}

			publisher := publish.NewHostClient(cfg.Publisher.APIKey,
				publish.WithEndpoint(cfg.Publisher.Endpoint),
				// Zero leaves uploads unbounded.
				publish.WithHTTPClient(&http.Client{Timeout: time.Duration(cfg.Publisher.TimeoutSeconds) * time.Second}),
				publish.WithLogger(logger),
			)

			gin.SetMode(gin.ReleaseMode)
			h := handlers.New(cfg, publisher, logger)
			srv := &http.Server{
				Addr:              cfg.Server.Addr,
				Handler:           h.Router(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				logger.Info("kioskgallery listening", "addr", cfg.Server.Addr, "config", ctx.configPath, "assets", cfg.Paths.AssetDir)
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-runCtx.Done():
			}

			logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
}
