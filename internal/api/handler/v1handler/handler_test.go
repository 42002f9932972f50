package v1handler_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"imgclass/internal/api/handler/v1handler"
	"imgclass/internal/train"
	"imgclass/pkg/domain"
	"imgclass/pkg/logger"
	"imgclass/pkg/serrors"

	mockruns "imgclass/internal/runs/mock"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

func TestMain(m *testing.M) {
	// Initialize logger to avoid nil pointer deref during tests
	logger.Setup(logger.DevelopmentEnvironment)
	m.Run()
}

// testServer bundles a v1 route mux with a mocked runs service and a signed
// bearer token accepted by the mux's sec handler.
type testServer struct {
	service *mockruns.MockService
	mux     *http.ServeMux
	token   string
	userID  domain.UserID
}

func newTestServer(t *testing.T, model *train.Artifact) *testServer {
	t.Helper()

	ctrl := gomock.NewController(t)
	service := mockruns.NewMockService(ctrl)

	priv, pubPEM := genRSAKeys(t)
	sh := newSecHandlerForTest(t, pubPEM)

	h, err := v1handler.New(v1handler.Deps{
		Runs:        service,
		Model:       model,
		DefaultSpec: train.DefaultSpec(),
	}, sdkmetric.NewMeterProvider())
	require.NoError(t, err, "New failed")

	mux := http.NewServeMux()
	h.Register(mux, sh)

	uid := uuid.New()
	now := time.Now()

	return &testServer{
		service: service,
		mux:     mux,
		token:   signJWTRS256(t, priv, uid.String(), now, now.Add(time.Hour)),
		userID:  domain.UserID(uid),
	}
}

func (ts *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	ts.mux.ServeHTTP(rec, req)

	return rec
}

func (ts *testServer) authed(req *http.Request) *http.Request {
	req.Header.Set("Authorization", "Bearer "+ts.token)

	return req
}

func sampleRun(userID domain.UserID, status domain.RunStatus) *domain.Run {
	return &domain.Run{
		ID:        domain.RunID(uuid.New()),
		UserID:    userID,
		SpecHash:  "cafebabe",
		Spec:      train.DefaultSpec(),
		Status:    status,
		Report:    domain.Report{Dataset: domain.DatasetSummary{Images: 42}},
		Attempts:  1,
		CreatedAt: time.Now().Add(-time.Minute),
		UpdatedAt: time.Now(),
	}
}

func TestDomainRunToV1_PendingHidesReport(t *testing.T) {
	in := sampleRun(domain.UserID(uuid.New()), domain.RunStatusPending)

	out := v1handler.DomainRunToV1(in)
	require.Equal(t, uuid.UUID(in.ID), out.ID)
	require.Equal(t, in.SpecHash, out.SpecHash)
	require.Equal(t, in.Status, out.Status)
	require.Equal(t, in.Attempts, out.Attempts)
	// the report column is zero-valued until the run completes, hide it
	require.Nil(t, out.Report)
	require.NotNil(t, out.UpdatedAt)
	require.Equal(t, in.UpdatedAt, *out.UpdatedAt)
}

func TestDomainRunToV1_CompletedCarriesReport(t *testing.T) {
	in := sampleRun(domain.UserID(uuid.New()), domain.RunStatusCompleted)

	out := v1handler.DomainRunToV1(in)
	require.NotNil(t, out.Report)
	require.Equal(t, in.Report, *out.Report)
}

func TestDomainRunToV1_ZeroUpdatedAtOmitted(t *testing.T) {
	in := sampleRun(domain.UserID(uuid.New()), domain.RunStatusPending)
	in.UpdatedAt = time.Time{}

	out := v1handler.DomainRunToV1(in)
	require.Nil(t, out.UpdatedAt)
}

func TestErrorBody_InternalOnPlainError(t *testing.T) {
	ts := newTestServer(t, nil)

	id := uuid.New()
	ts.service.EXPECT().
		Result(gomock.Any(), ts.userID, domain.RunID(id)).
		Return(nil, errors.New("pool exhausted"))

	rec := ts.do(ts.authed(httptest.NewRequest(http.MethodGet, "/v1/runs/"+id.String(), nil)))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	// plain errors must not leak their message to clients
	require.JSONEq(t, `{"code":"INTERNAL","message":"internal error"}`, rec.Body.String())
}

func TestErrorBody_SemanticWithMessage(t *testing.T) {
	ts := newTestServer(t, nil)

	id := uuid.New()
	ts.service.EXPECT().
		Result(gomock.Any(), ts.userID, domain.RunID(id)).
		Return(nil, serrors.With(serrors.ErrNotFound, "run not found"))

	rec := ts.do(ts.authed(httptest.NewRequest(http.MethodGet, "/v1/runs/"+id.String(), nil)))
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.JSONEq(t, `{"code":"NOT_FOUND","message":"run not found"}`, rec.Body.String())
}

func TestErrorBody_KindOnlyFallsBackToStatusText(t *testing.T) {
	ts := newTestServer(t, nil)

	id := uuid.New()
	ts.service.EXPECT().
		Result(gomock.Any(), ts.userID, domain.RunID(id)).
		Return(nil, serrors.KindOnly(serrors.ErrForbidden))

	rec := ts.do(ts.authed(httptest.NewRequest(http.MethodGet, "/v1/runs/"+id.String(), nil)))
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.JSONEq(t, `{"code":"FORBIDDEN","message":"Forbidden"}`, rec.Body.String())
}
