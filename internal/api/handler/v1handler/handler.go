package v1handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"imgclass/internal/runs"
	"imgclass/internal/train"
	"imgclass/pkg/domain"
	"imgclass/pkg/logger"
	"imgclass/pkg/serrors"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// DefaultLimit is the page size used when a list request carries no limit.
const DefaultLimit = 20

// Deps bundles the dependencies of the v1 handlers.
type Deps struct {
	// Runs manages training runs.
	Runs runs.Service
	// Model is the trained artifact that serves predictions.
	Model *train.Artifact
	// DefaultSpec is submitted when a create-run request carries no spec.
	DefaultSpec domain.TrainSpec
}

// Handler implements the v1 routes.
type Handler struct {
	deps Deps

	// predictions counts served predictions by predicted class.
	predictions metric.Int64Counter
}

// New creates the v1 handler set. The meter provider backs the
// predictions-by-class counter.
func New(deps Deps, provider metric.MeterProvider) (*Handler, error) {
	meter := provider.Meter("imgclass/api/v1")

	predictions, err := meter.Int64Counter("imgclass.predictions",
		metric.WithDescription("Number of predictions served, by predicted class."))
	if err != nil {
		return nil, fmt.Errorf("could not create prediction counter: %w", err)
	}

	return &Handler{deps: deps, predictions: predictions}, nil
}

// Register mounts the v1 routes on mux. Run routes require bearer
// authentication through sec.
func (h *Handler) Register(mux *http.ServeMux, sec *SecHandler) {
	mux.Handle("POST /v1/predict", http.HandlerFunc(h.Predict))
	mux.Handle("POST /v1/runs", sec.WithBearerAuth(http.HandlerFunc(h.CreateRun)))
	mux.Handle("GET /v1/runs", sec.WithBearerAuth(http.HandlerFunc(h.ListRuns)))
	mux.Handle("GET /v1/runs/{runID}", sec.WithBearerAuth(http.HandlerFunc(h.GetRun)))
	mux.Handle("DELETE /v1/runs/{runID}", sec.WithBearerAuth(http.HandlerFunc(h.DeleteRun)))
}

// Run is the wire form of a training run.
type Run struct {
	ID       uuid.UUID        `json:"id"`
	SpecHash string           `json:"specHash"`
	Spec     domain.TrainSpec `json:"spec"`
	Status   domain.RunStatus `json:"status"`
	// Report is only present once the run completed.
	Report    *domain.Report `json:"report,omitempty"`
	Attempts  uint           `json:"attempts"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt *time.Time     `json:"updatedAt,omitempty"`
}

// RunList is a page of runs together with the cursor of the next page.
type RunList struct {
	Items      []Run   `json:"items"`
	NextCursor *string `json:"nextCursor,omitempty"`
}

// DomainRunToV1 converts a domain run into its wire form.
func DomainRunToV1(in *domain.Run) *Run {
	out := &Run{
		ID:        uuid.UUID(in.ID),
		SpecHash:  in.SpecHash,
		Spec:      in.Spec,
		Status:    in.Status,
		Attempts:  in.Attempts,
		CreatedAt: in.CreatedAt,
	}
	if in.Status == domain.RunStatusCompleted {
		out.Report = &in.Report
	}
	if !in.UpdatedAt.IsZero() {
		updatedAt := in.UpdatedAt
		out.UpdatedAt = &updatedAt
	}

	return out
}

// ErrorResponse is the JSON body written for failed requests.
type ErrorResponse struct {
	// Code is the semantic error category.
	Code string `json:"code"`
	// Message is a human-readable description safe to show to clients.
	Message string `json:"message"`
}

// writeJSON encodes v as the JSON response body with the given status code.
func writeJSON(ctx context.Context, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error(ctx, "could not encode response", zap.Error(err))
	}
}

// writeError maps err's semantic kind to an HTTP status and writes a JSON
// error body. Unexpected errors are logged and reported as internal without
// leaking details.
func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	status := serrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		logger.Error(ctx, err.Error())
		writeJSON(ctx, w, status, ErrorResponse{
			Code:    serrors.ErrInternal.Error(),
			Message: "internal error",
		})

		return
	}

	resp := ErrorResponse{Code: serrors.ErrInternal.Error(), Message: http.StatusText(status)}
	var k serrors.Kind
	if errors.As(err, &k) {
		resp.Code = k.Error()
	}
	var serr *serrors.Error
	if errors.As(err, &serr) && serr.Message() != "" {
		resp.Message = serr.Message()
	}

	writeJSON(ctx, w, status, resp)
}
