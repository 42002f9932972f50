package main

import (
	"context"
	"os"

	"imgclass/internal/config"
	"imgclass/internal/features"
	"imgclass/internal/train"
	"imgclass/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// trainCommand constructs the 'train' subcommand that runs the full benchmark
// on the configured dataset, prints the evaluation report and writes the
// winning model to the model file. With --features the benchmark runs on a
// pre-extracted features CSV instead of decoding the images again.
func trainCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Benchmarks classifiers on the dataset and writes the best model",
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()

			out, _ := cmd.Flags().GetString("out")
			if out == "" {
				out = cfg.Model.Path
			}

			var (
				res *train.Result
				err error
			)
			if featuresPath, _ := cmd.Flags().GetString("features"); featuresPath != "" {
				vectors, names, readErr := features.ReadCSV(featuresPath)
				if readErr != nil {
					logger.Fatal(ctx, "could not read features file", zap.Error(readErr))
				}
				res, err = train.Benchmark(ctx, vectors, names, 0, train.SpecFromConfig(cfg))
			} else {
				engine := train.NewEngine(train.NewOptions(cfg))
				res, err = engine.Run(ctx, train.SpecFromConfig(cfg))
			}
			if err != nil {
				logger.Fatal(ctx, "could not run benchmark", zap.Error(err))
			}

			if err := train.WriteReport(os.Stdout, res.Report); err != nil {
				logger.Fatal(ctx, "could not print report", zap.Error(err))
			}

			if err := train.SaveArtifact(out, res.Artifact); err != nil {
				logger.Fatal(ctx, "could not save model artifact", zap.Error(err))
			}

			logger.Info(ctx, "model artifact saved",
				zap.String("out", out),
				zap.String("family", res.Report.Winner.Family),
				zap.Float64("testAccuracy", res.Report.Test.Accuracy))
		},
	}

	cmd.Flags().String("out", "", "Model file path (defaults to the configured model path)")
	cmd.Flags().String("features", "", "Benchmark a features CSV written by extract instead of the image manifest")

	return cmd
}
