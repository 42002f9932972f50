package main

import (
	"context"
	"os"
	"path/filepath"

	"imgclass/internal/config"
	"imgclass/internal/dataset"
	"imgclass/internal/visualize"
	"imgclass/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// plotCommand constructs the 'plot' subcommand that renders dataset charts to
// PNG files. Without --table it charts the class distribution of the
// configured manifest; with --table it renders per-column histograms and,
// when --x and --y are given, a scatter plot.
func plotCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plot",
		Short: "Renders dataset charts to PNG files",
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()

			tablePath, _ := cmd.Flags().GetString("table")
			outDir, _ := cmd.Flags().GetString("out-dir")
			cols, _ := cmd.Flags().GetStringSlice("cols")
			xCol, _ := cmd.Flags().GetString("x")
			yCol, _ := cmd.Flags().GetString("y")

			if err := os.MkdirAll(outDir, 0o750); err != nil {
				logger.Fatal(ctx, "could not create output directory", zap.Error(err))
			}

			if tablePath == "" {
				plotManifest(ctx, cfg, outDir)

				return
			}
			plotTable(ctx, tablePath, outDir, cols, xCol, yCol)
		},
	}

	cmd.Flags().String("table", "", "CSV table to chart (defaults to the dataset manifest)")
	cmd.Flags().String("out-dir", "plots", "Directory for rendered PNG files")
	cmd.Flags().StringSlice("cols", nil, "Columns to render histograms for (default all)")
	cmd.Flags().String("x", "", "Scatter plot X column")
	cmd.Flags().String("y", "", "Scatter plot Y column")

	return cmd
}

func plotManifest(ctx context.Context, cfg *config.Config, outDir string) {
	samples, err := dataset.LoadManifest(cfg.Dataset.ManifestPath)
	if err != nil {
		logger.Fatal(ctx, "could not load dataset manifest", zap.Error(err))
	}

	path := filepath.Join(outDir, "class_distribution.png")
	if err := visualize.ClassDistribution(dataset.ClassCounts(samples), path); err != nil {
		logger.Fatal(ctx, "could not render class distribution", zap.Error(err))
	}

	logger.Info(ctx, "chart rendered", zap.String("path", path))
}

func plotTable(ctx context.Context, tablePath, outDir string, cols []string, xCol, yCol string) {
	table, err := dataset.LoadTable(tablePath)
	if err != nil {
		logger.Fatal(ctx, "could not load table", zap.Error(err))
	}

	if len(cols) == 0 {
		cols = table.Columns
	}

	rendered := 0
	for _, name := range cols {
		values, ok := table.Column(name)
		if !ok {
			logger.Fatal(ctx, "no such column", zap.String("column", name))
		}

		path := filepath.Join(outDir, "hist_"+name+".png")
		if err := visualize.Histogram(values, name, path); err != nil {
			logger.Fatal(ctx, "could not render histogram",
				zap.String("column", name), zap.Error(err))
		}
		rendered++
	}

	if xCol != "" && yCol != "" {
		xs, ys, ok := table.PairedColumns(xCol, yCol)
		if !ok {
			logger.Fatal(ctx, "no such column pair",
				zap.String("x", xCol), zap.String("y", yCol))
		}

		path := filepath.Join(outDir, "scatter_"+xCol+"_"+yCol+".png")
		if err := visualize.Scatter(xs, ys, xCol, yCol, path); err != nil {
			logger.Fatal(ctx, "could not render scatter", zap.Error(err))
		}
		rendered++
	}

	logger.Info(ctx, "charts rendered",
		zap.Int("count", rendered),
		zap.String("outDir", outDir))
}
