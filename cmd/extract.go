package main

import (
	"context"

	"imgclass/internal/config"
	"imgclass/internal/dataset"
	"imgclass/internal/features"
	"imgclass/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// extractCommand constructs the 'extract' subcommand that walks the labeled
// image manifest and writes one feature vector per image to a CSV file.
func extractCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extracts feature vectors from the image dataset into a CSV file",
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()

			out, _ := cmd.Flags().GetString("out")

			samples, err := dataset.LoadManifest(cfg.Dataset.ManifestPath)
			if err != nil {
				logger.Fatal(ctx, "could not load dataset manifest", zap.Error(err))
			}

			vectors, skipped, err := features.ExtractAll(ctx, samples, cfg.Dataset.Workers)
			if err != nil {
				logger.Fatal(ctx, "could not extract features", zap.Error(err))
			}

			if err := features.WriteCSV(out, vectors); err != nil {
				logger.Fatal(ctx, "could not write features CSV", zap.Error(err))
			}

			logger.Info(ctx, "features extracted",
				zap.Int("images", len(vectors)),
				zap.Int("skipped", skipped),
				zap.String("out", out))
		},
	}

	cmd.Flags().String("out", "features.csv", "Output CSV path")

	return cmd
}
