package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/cristianadrielbraun/kioskgallery/internal/qrforge"
)

func newQRCommand(ctx *commandContext) *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "qr <url>",
		Short: "Write a QR code PNG for a URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			target, err := qrforge.NormalizeURL(args[0])
			if err != nil {
				return err
			}

			forger := qrforge.New(filepath.Dir(outPath), cfg.Server.QRPublicPath, ctx.log())
			forger.Version = cfg.QR.Version
			forger.ModuleSize = cfg.QR.ModuleSize
			forger.Border = cfg.QR.Border

			file, err := os.Create(outPath)
			if err != nil {
				return fmt.Errorf("create output: %w", err)
			}
			version, err := forger.Render(file, target)
			if closeErr := file.Close(); err == nil {
				err = closeErr
			}
			if err != nil {
				_ = os.Remove(outPath)
				return err
			}
			info, err := os.Stat(outPath)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"URL", "Version", "File", "Size"},
				[][]string{{target, strconv.Itoa(version), outPath, humanize.Bytes(uint64(info.Size()))}},
				[]columnAlignment{alignLeft, alignRight, alignLeft, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "qrcode.png", "Output PNG path")
	return cmd
}
