package train_test

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"imgclass/internal/train"
	"imgclass/pkg/domain"
)

func writeSolidPNG(t *testing.T, path string, c color.NRGBA) {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			img.SetNRGBA(x, y, c)
		}
	}

	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
}

// writeColorDataset generates eight red and eight blue images of slightly
// varying shades plus a manifest row for a file that does not exist.
func writeColorDataset(t *testing.T, dir string) string {
	t.Helper()

	rows := []string{"image,label"}
	for i := 0; i < 8; i++ {
		name := fmt.Sprintf("red-%d.png", i)
		writeSolidPNG(t, filepath.Join(dir, name), color.NRGBA{R: uint8(200 + 5*i), G: 30, B: 30, A: 255})
		rows = append(rows, name+",red")

		name = fmt.Sprintf("blue-%d.png", i)
		writeSolidPNG(t, filepath.Join(dir, name), color.NRGBA{R: 30, G: 30, B: uint8(200 + 5*i), A: 255})
		rows = append(rows, name+",blue")
	}
	rows = append(rows, "ghost.png,red")

	manifest := filepath.Join(dir, "manifest.csv")
	require.NoError(t, os.WriteFile(manifest, []byte(strings.Join(rows, "\n")+"\n"), 0o600))

	return manifest
}

func TestEngine_Run(t *testing.T) {
	dir := t.TempDir()
	manifest := writeColorDataset(t, dir)

	eng := train.NewEngine(train.Options{ManifestPath: manifest, Workers: 2})

	spec := domain.TrainSpec{
		TestFraction: 0.25,
		Folds:        2,
		Seed:         3,
		TopK:         5,
		KNN:          domain.KNNGrid{K: []int{1}, Weights: []string{"uniform"}},
	}

	res, err := eng.Run(context.Background(), spec)
	require.NoError(t, err)

	require.Equal(t, 16, res.Report.Dataset.Images)
	require.Equal(t, 1, res.Report.Dataset.Skipped)
	require.Equal(t, []string{"blue", "red"}, res.Report.Dataset.Classes)
	require.Equal(t, 1.0, res.Report.Test.Accuracy)

	pred, err := res.Artifact.PredictFile(filepath.Join(dir, "red-0.png"))
	require.NoError(t, err)
	require.Equal(t, "red", pred.Class)
	require.Equal(t, 1.0, pred.Confidence)
}

func TestEngine_Run_MissingManifest(t *testing.T) {
	eng := train.NewEngine(train.Options{ManifestPath: filepath.Join(t.TempDir(), "absent.csv")})

	_, err := eng.Run(context.Background(), knnSpec())
	require.ErrorContains(t, err, "could not load manifest")
}
