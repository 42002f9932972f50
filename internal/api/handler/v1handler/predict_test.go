package v1handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"imgclass/internal/api/handler/v1handler"
	"imgclass/internal/classifier"
	"imgclass/internal/features"
	"imgclass/internal/train"
	"imgclass/pkg/domain"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// newPredictServer mounts the v1 routes with a manual metric reader so tests
// can assert on the predictions counter. Predict is unauthenticated, so the
// runs service stays nil.
func newPredictServer(t *testing.T, model *train.Artifact) (*http.ServeMux, *sdkmetric.ManualReader) {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	h, err := v1handler.New(v1handler.Deps{Model: model}, mp)
	require.NoError(t, err, "New failed")

	_, pubPEM := genRSAKeys(t)
	mux := http.NewServeMux()
	h.Register(mux, newSecHandlerForTest(t, pubPEM))

	return mux, reader
}

// testPNG encodes a small gradient image so extracted features are not
// degenerate.
func testPNG(t *testing.T) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 8), G: uint8(y * 8), B: 0x40, A: 0xff})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	return buf.Bytes()
}

// predictArtifact fits a model on two synthetic clusters, one centered on the
// feature vector of pngBytes and one far away, so a prediction for pngBytes
// lands on "moss" deterministically.
func predictArtifact(t *testing.T, pngBytes []byte) *train.Artifact {
	t.Helper()

	plane, err := features.Decode(bytes.NewReader(pngBytes))
	require.NoError(t, err)
	base := features.Extract(plane)
	names := features.Names()

	var vectors []domain.LabeledVector
	for i := 0; i < 8; i++ {
		moss := make(domain.FeatureVector, len(names))
		sand := make(domain.FeatureVector, len(names))
		for d := range names {
			moss[d] = base[d] + 0.1*float64(i%5)
			sand[d] = base[d] + 50 + 0.1*float64(i%5)
		}
		vectors = append(vectors,
			domain.LabeledVector{Sample: domain.Sample{Path: fmt.Sprintf("moss-%02d.png", i), Label: "moss"}, Values: moss},
			domain.LabeledVector{Sample: domain.Sample{Path: fmt.Sprintf("sand-%02d.png", i), Label: "sand"}, Values: sand},
		)
	}

	spec := domain.TrainSpec{
		TestFraction: 0.25,
		Folds:        2,
		Seed:         7,
		TopK:         3,
		KNN:          domain.KNNGrid{K: []int{3}, Weights: []string{classifier.WeightsUniform}},
	}
	res, err := train.Benchmark(context.Background(), vectors, names, 0, spec)
	require.NoError(t, err)

	return res.Artifact
}

func multipartBody(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	return &buf, mw.FormDataContentType()
}

func TestPredict_ClassifiesUpload(t *testing.T) {
	pngBytes := testPNG(t)
	mux, reader := newPredictServer(t, predictArtifact(t, pngBytes))

	body, contentType := multipartBody(t, "image", "tile.png", pngBytes)
	req := httptest.NewRequest(http.MethodPost, "/v1/predict", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var pred domain.Prediction
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&pred))
	require.Equal(t, "moss", pred.Class)
	require.Greater(t, pred.Confidence, 0.5)
	require.Len(t, pred.Scores, 2)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	require.Len(t, rm.ScopeMetrics, 1)
	require.Len(t, rm.ScopeMetrics[0].Metrics, 1)
	require.Equal(t, "imgclass.predictions", rm.ScopeMetrics[0].Metrics[0].Name)

	sum, ok := rm.ScopeMetrics[0].Metrics[0].Data.(metricdata.Sum[int64])
	require.True(t, ok, "predictions metric should be an int64 sum")
	require.Len(t, sum.DataPoints, 1)
	require.Equal(t, int64(1), sum.DataPoints[0].Value)

	class, found := sum.DataPoints[0].Attributes.Value(attribute.Key("class"))
	require.True(t, found)
	require.Equal(t, "moss", class.AsString())
}

func TestPredict_NoModelLoaded(t *testing.T) {
	mux, _ := newPredictServer(t, nil)

	body, contentType := multipartBody(t, "image", "tile.png", testPNG(t))
	req := httptest.NewRequest(http.MethodPost, "/v1/predict", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.JSONEq(t, `{"code":"UNAVAILABLE","message":"no model loaded"}`, rec.Body.String())
}

func TestPredict_MissingImageField(t *testing.T) {
	pngBytes := testPNG(t)
	mux, _ := newPredictServer(t, predictArtifact(t, pngBytes))

	body, contentType := multipartBody(t, "file", "tile.png", pngBytes)
	req := httptest.NewRequest(http.MethodPost, "/v1/predict", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.JSONEq(t, `{"code":"BAD_REQUEST","message":"missing image form field"}`, rec.Body.String())
}

func TestPredict_UndecodableImage(t *testing.T) {
	pngBytes := testPNG(t)
	mux, _ := newPredictServer(t, predictArtifact(t, pngBytes))

	body, contentType := multipartBody(t, "image", "notes.txt", []byte("not an image"))
	req := httptest.NewRequest(http.MethodPost, "/v1/predict", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.JSONEq(t, `{"code":"BAD_REQUEST","message":"could not decode image"}`, rec.Body.String())
}

func TestPredict_NotMultipart(t *testing.T) {
	pngBytes := testPNG(t)
	mux, _ := newPredictServer(t, predictArtifact(t, pngBytes))

	req := httptest.NewRequest(http.MethodPost, "/v1/predict", bytes.NewReader([]byte("plain body")))
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.JSONEq(t, `{"code":"BAD_REQUEST","message":"could not parse multipart form"}`, rec.Body.String())
}
