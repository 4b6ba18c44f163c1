package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/cristianadrielbraun/kioskgallery/internal/colorscore"
	"github.com/cristianadrielbraun/kioskgallery/internal/ranking"
)

func newRankCommand(ctx *commandContext) *cobra.Command {
	var metric string
	var category string

	cmd := &cobra.Command{
		Use:   "rank",
		Short: "Print the asset images ordered by a color metric",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			m := colorscore.ParseMetric(metric)
			ranked, err := ranking.New(ctx.log()).Rank(cmd.Context(), cfg.Paths.AssetDir, m, category)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(ranked) == 0 {
				fmt.Fprintln(out, "No images matched")
				return nil
			}
			rows := make([][]string, 0, len(ranked))
			for i, s := range ranked {
				rows = append(rows, []string{
					strconv.Itoa(i + 1),
					s.Name,
					strconv.FormatFloat(s.Score, 'f', 2, 64),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"#", "Image", string(m)},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().StringVarP(&metric, "metric", "m", string(colorscore.Luminance), "Metric: r, g, b or luminance")
	cmd.Flags().StringVar(&category, "category", "", "Only rank filenames containing this substring")
	return cmd
}
