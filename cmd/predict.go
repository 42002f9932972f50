package main

import (
	"context"
	"encoding/json"
	"fmt"

	"imgclass/internal/config"
	"imgclass/internal/train"
	"imgclass/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// predictCommand constructs the 'predict' subcommand that classifies a single
// image file with a trained model and prints the prediction as JSON.
func predictCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "predict <image>",
		Short: "Classifies an image with a trained model",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()

			modelPath, _ := cmd.Flags().GetString("model")
			if modelPath == "" {
				modelPath = cfg.Model.Path
			}

			model, err := train.LoadArtifact(modelPath)
			if err != nil {
				logger.Fatal(ctx, "could not load model artifact", zap.Error(err))
			}

			pred, err := model.PredictFile(args[0])
			if err != nil {
				logger.Fatal(ctx, "could not classify image", zap.Error(err))
			}

			out, err := json.MarshalIndent(pred, "", "  ")
			if err != nil {
				logger.Fatal(ctx, "could not encode prediction", zap.Error(err))
			}

			fmt.Println(string(out)) //nolint: forbidigo
		},
	}

	cmd.Flags().String("model", "", "Model file path (defaults to the configured model path)")

	return cmd
}
