package v1handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"imgclass/pkg/domain"
	"imgclass/pkg/serrors"

	"github.com/google/uuid"
)

// CreateRunRequest is the body of a create-run request. A missing spec
// submits the server's default training spec.
type CreateRunRequest struct {
	Spec *domain.TrainSpec `json:"spec"`
}

// CreateRun schedules a new training run for the authenticated user.
func (h *Handler) CreateRun(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(ctx, w, serrors.Wrap(serrors.ErrBadRequest, err, "invalid request body"))

		return
	}

	spec := h.deps.DefaultSpec
	if req.Spec != nil {
		spec = *req.Spec
	}

	run, err := h.deps.Runs.Submit(ctx, GetUserIDFromContext(ctx), spec)
	if err != nil {
		writeError(ctx, w, err)

		return
	}

	writeJSON(ctx, w, http.StatusCreated, DomainRunToV1(run))
}

// ListRuns returns a paginated list of the authenticated user's runs.
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	status := domain.RunStatus(r.URL.Query().Get("status"))
	switch status {
	case "", domain.RunStatusPending, domain.RunStatusCompleted, domain.RunStatusFailed:
	default:
		writeError(ctx, w, serrors.With(serrors.ErrBadRequest, "invalid status"))

		return
	}

	limit := uint(DefaultLimit)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || parsed == 0 {
			writeError(ctx, w, serrors.With(serrors.ErrBadRequest, "invalid limit"))

			return
		}
		limit = uint(parsed)
	}

	userRuns, nextCursor, err := h.deps.Runs.UserRuns(ctx,
		GetUserIDFromContext(ctx),
		status,
		r.URL.Query().Get("cursor"),
		limit)
	if err != nil {
		writeError(ctx, w, err)

		return
	}

	items := make([]Run, 0, len(userRuns))
	for i := range userRuns {
		items = append(items, *DomainRunToV1(&userRuns[i]))
	}

	resp := RunList{Items: items}
	if nextCursor != "" {
		resp.NextCursor = &nextCursor
	}

	writeJSON(ctx, w, http.StatusOK, resp)
}

// GetRun returns details of a run by ID.
func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	runID, err := uuid.Parse(r.PathValue("runID"))
	if err != nil {
		writeError(ctx, w, serrors.Wrap(serrors.ErrBadRequest, err, "invalid run ID"))

		return
	}

	run, err := h.deps.Runs.Result(ctx, GetUserIDFromContext(ctx), domain.RunID(runID))
	if err != nil {
		writeError(ctx, w, err)

		return
	}

	writeJSON(ctx, w, http.StatusOK, DomainRunToV1(run))
}

// DeleteRun deletes a run by ID.
func (h *Handler) DeleteRun(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	runID, err := uuid.Parse(r.PathValue("runID"))
	if err != nil {
		writeError(ctx, w, serrors.Wrap(serrors.ErrBadRequest, err, "invalid run ID"))

		return
	}

	if err := h.deps.Runs.Delete(ctx, GetUserIDFromContext(ctx), domain.RunID(runID)); err != nil {
		writeError(ctx, w, err)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}
