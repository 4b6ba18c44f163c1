package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var configFlag string

	ctx := newCommandContext(&configFlag)

	serveCmd := newServeCommand(ctx)
	rootCmd := &cobra.Command{
		Use:           "kioskgallery",
		Short:         "Kiosk gallery server: color-sorted catalog and QR sharing of captures",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_, err := ctx.ensureConfig()
			return err
		},
		// Running without a subcommand starts the server.
		RunE: serveCmd.RunE,
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path (TOML or YAML)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(newIndexCommand(ctx))
	rootCmd.AddCommand(newRankCommand(ctx))
	rootCmd.AddCommand(newQRCommand(ctx))

	return rootCmd
}
