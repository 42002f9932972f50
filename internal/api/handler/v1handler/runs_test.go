package v1handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"imgclass/internal/api/handler/v1handler"
	"imgclass/internal/train"
	"imgclass/pkg/domain"
	"imgclass/pkg/serrors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestCreateRun_EmptyBodySubmitsDefaultSpec(t *testing.T) {
	ts := newTestServer(t, nil)

	run := sampleRun(ts.userID, domain.RunStatusPending)
	ts.service.EXPECT().
		Submit(gomock.Any(), ts.userID, train.DefaultSpec()).
		Return(run, nil)

	rec := ts.do(ts.authed(httptest.NewRequest(http.MethodPost, "/v1/runs", nil)))
	require.Equal(t, http.StatusCreated, rec.Code)

	var got v1handler.Run
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	require.Equal(t, uuid.UUID(run.ID), got.ID)
	require.Equal(t, domain.RunStatusPending, got.Status)
	require.Nil(t, got.Report)
}

func TestCreateRun_BodySpecOverridesDefault(t *testing.T) {
	ts := newTestServer(t, nil)

	spec := train.DefaultSpec()
	spec.Folds = 4

	run := sampleRun(ts.userID, domain.RunStatusCompleted)
	run.Spec = spec
	ts.service.EXPECT().
		Submit(gomock.Any(), ts.userID, spec).
		Return(run, nil)

	body, err := json.Marshal(v1handler.CreateRunRequest{Spec: &spec})
	require.NoError(t, err)

	rec := ts.do(ts.authed(httptest.NewRequest(http.MethodPost, "/v1/runs", bytes.NewReader(body))))
	require.Equal(t, http.StatusCreated, rec.Code)

	var got v1handler.Run
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	require.Equal(t, 4, got.Spec.Folds)
	// completed runs carry their report on the wire
	require.NotNil(t, got.Report)
}

func TestCreateRun_MalformedBody(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(ts.authed(httptest.NewRequest(http.MethodPost, "/v1/runs", bytes.NewReader([]byte("{")))))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.JSONEq(t, `{"code":"BAD_REQUEST","message":"invalid request body"}`, rec.Body.String())
}

func TestListRuns_ForwardsFilters(t *testing.T) {
	ts := newTestServer(t, nil)

	userRuns := []domain.Run{
		*sampleRun(ts.userID, domain.RunStatusCompleted),
		*sampleRun(ts.userID, domain.RunStatusCompleted),
	}
	ts.service.EXPECT().
		UserRuns(gomock.Any(), ts.userID, domain.RunStatusCompleted, "2025-01-02T03:04:05Z", uint(2)).
		Return(userRuns, "2025-01-01T00:00:00Z", nil)

	rec := ts.do(ts.authed(httptest.NewRequest(http.MethodGet,
		"/v1/runs?status=COMPLETED&cursor=2025-01-02T03%3A04%3A05Z&limit=2", nil)))
	require.Equal(t, http.StatusOK, rec.Code)

	var got v1handler.RunList
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	require.Len(t, got.Items, 2)
	require.NotNil(t, got.NextCursor)
	require.Equal(t, "2025-01-01T00:00:00Z", *got.NextCursor)
}

func TestListRuns_Defaults(t *testing.T) {
	ts := newTestServer(t, nil)

	ts.service.EXPECT().
		UserRuns(gomock.Any(), ts.userID, domain.RunStatus(""), "", uint(v1handler.DefaultLimit)).
		Return(nil, "", nil)

	rec := ts.do(ts.authed(httptest.NewRequest(http.MethodGet, "/v1/runs", nil)))
	require.Equal(t, http.StatusOK, rec.Code)

	var got v1handler.RunList
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	require.Empty(t, got.Items)
	require.Nil(t, got.NextCursor)
}

func TestListRuns_InvalidStatus(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(ts.authed(httptest.NewRequest(http.MethodGet, "/v1/runs?status=RUNNING", nil)))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.JSONEq(t, `{"code":"BAD_REQUEST","message":"invalid status"}`, rec.Body.String())
}

func TestListRuns_InvalidLimit(t *testing.T) {
	ts := newTestServer(t, nil)

	for _, limit := range []string{"0", "-3", "abc"} {
		rec := ts.do(ts.authed(httptest.NewRequest(http.MethodGet, "/v1/runs?limit="+limit, nil)))
		require.Equal(t, http.StatusBadRequest, rec.Code, "limit %q", limit)
		require.JSONEq(t, `{"code":"BAD_REQUEST","message":"invalid limit"}`, rec.Body.String())
	}
}

func TestGetRun_Success(t *testing.T) {
	ts := newTestServer(t, nil)

	run := sampleRun(ts.userID, domain.RunStatusCompleted)
	ts.service.EXPECT().
		Result(gomock.Any(), ts.userID, run.ID).
		Return(run, nil)

	rec := ts.do(ts.authed(httptest.NewRequest(http.MethodGet, "/v1/runs/"+uuid.UUID(run.ID).String(), nil)))
	require.Equal(t, http.StatusOK, rec.Code)

	var got v1handler.Run
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	require.Equal(t, uuid.UUID(run.ID), got.ID)
	require.NotNil(t, got.Report)
	require.Equal(t, run.Report.Dataset.Images, got.Report.Dataset.Images)
}

func TestGetRun_InvalidID(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(ts.authed(httptest.NewRequest(http.MethodGet, "/v1/runs/not-a-uuid", nil)))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.JSONEq(t, `{"code":"BAD_REQUEST","message":"invalid run ID"}`, rec.Body.String())
}

func TestDeleteRun_Success(t *testing.T) {
	ts := newTestServer(t, nil)

	id := uuid.New()
	ts.service.EXPECT().
		Delete(gomock.Any(), ts.userID, domain.RunID(id)).
		Return(nil)

	rec := ts.do(ts.authed(httptest.NewRequest(http.MethodDelete, "/v1/runs/"+id.String(), nil)))
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Empty(t, rec.Body.String())
}

func TestDeleteRun_NotFound(t *testing.T) {
	ts := newTestServer(t, nil)

	id := uuid.New()
	ts.service.EXPECT().
		Delete(gomock.Any(), ts.userID, domain.RunID(id)).
		Return(serrors.With(serrors.ErrNotFound, "run not found"))

	rec := ts.do(ts.authed(httptest.NewRequest(http.MethodDelete, "/v1/runs/"+id.String(), nil)))
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.JSONEq(t, `{"code":"NOT_FOUND","message":"run not found"}`, rec.Body.String())
}

func TestRunRoutes_RequireAuth(t *testing.T) {
	ts := newTestServer(t, nil)

	id := uuid.NewString()
	reqs := []*http.Request{
		httptest.NewRequest(http.MethodPost, "/v1/runs", nil),
		httptest.NewRequest(http.MethodGet, "/v1/runs", nil),
		httptest.NewRequest(http.MethodGet, "/v1/runs/"+id, nil),
		httptest.NewRequest(http.MethodDelete, "/v1/runs/"+id, nil),
	}
	for _, req := range reqs {
		rec := ts.do(req)
		require.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", req.Method, req.URL.Path)
	}
}
