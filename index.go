package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/cristianadrielbraun/kioskgallery/internal/catalog"
)

func newIndexCommand(ctx *commandContext) *cobra.Command {
	var watch bool
	var window time.Duration

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Write the image manifest for the asset directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			manifest := cfg.ManifestPath()
			if manifest == "" {
				return errors.New("no manifest path configured")
			}

			if !watch {
				count, err := catalog.Rebuild(cfg.Paths.AssetDir, manifest)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d images to %s\n", count, manifest)
				return nil
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return catalog.Watch(runCtx, cfg.Paths.AssetDir, manifest, window, ctx.log())
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Keep the manifest in sync with the asset directory")
	cmd.Flags().DurationVar(&window, "window", 2*time.Second, "Quiet period before rewriting after changes")
	return cmd
}
