package v1handler

import (
	"fmt"
	"net/http"

	"imgclass/internal/features"
	"imgclass/pkg/logger"
	"imgclass/pkg/serrors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// maxUploadBytes bounds the multipart form size of predict requests.
const maxUploadBytes = 10 << 20

// Predict classifies an image uploaded in the "image" multipart field using
// the model artifact loaded at server start.
func (h *Handler) Predict(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.deps.Model == nil {
		writeError(ctx, w, serrors.With(serrors.ErrUnavailable, "no model loaded"))

		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(ctx, w, serrors.Wrap(serrors.ErrBadRequest, err, "could not parse multipart form"))

		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(ctx, w, serrors.Wrap(serrors.ErrBadRequest, err, "missing image form field"))

		return
	}
	defer func() { _ = file.Close() }()

	plane, err := features.Decode(file)
	if err != nil {
		writeError(ctx, w, serrors.Wrap(serrors.ErrBadRequest, err, "could not decode image"))

		return
	}

	pred, err := h.deps.Model.Predict(features.Extract(plane))
	if err != nil {
		writeError(ctx, w, fmt.Errorf("could not classify image: %w", err))

		return
	}

	h.predictions.Add(ctx, 1, metric.WithAttributes(attribute.String("class", pred.Class)))
	logger.Info(ctx, "image classified",
		zap.String("filename", header.Filename),
		zap.String("class", pred.Class),
		zap.Float64("confidence", pred.Confidence))

	writeJSON(ctx, w, http.StatusOK, pred)
}
