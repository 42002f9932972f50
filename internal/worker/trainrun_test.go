package worker_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"imgclass/internal/runs"
	mockruns "imgclass/internal/runs/mock"
	"imgclass/internal/train"
	"imgclass/internal/worker"
	"imgclass/pkg/domain"
	"imgclass/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.Setup(logger.DevelopmentEnvironment)
	m.Run()
}

func makeJob(id int64, hash string, spec domain.TrainSpec) *river.Job[runs.JobArgs] {
	return &river.Job[runs.JobArgs]{
		JobRow: &rivertype.JobRow{ID: id},
		Args:   runs.JobArgs{SpecHash: hash, Spec: spec},
	}
}

func TestTrainRunWorker_Work_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mock := mockruns.NewMockService(ctrl)
	w := worker.NewTrainRunWorker(mock)

	spec := train.DefaultSpec()
	mock.EXPECT().Execute(gomock.Any(), "hash-ok", spec).Return(nil)

	require.NoError(t, w.Work(context.Background(), makeJob(1, "hash-ok", spec)))
}

func TestTrainRunWorker_Work_BadSpecCancels(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mock := mockruns.NewMockService(ctrl)
	w := worker.NewTrainRunWorker(mock)

	spec := train.DefaultSpec()
	mock.EXPECT().Execute(gomock.Any(), "hash-bad", spec).
		Return(fmt.Errorf("could not run benchmark: %w", train.ErrBadSpec))

	err := w.Work(context.Background(), makeJob(2, "hash-bad", spec))
	require.Error(t, err)
	var cancelErr *river.JobCancelError
	require.ErrorAs(t, err, &cancelErr)
}

func TestTrainRunWorker_Work_EmptyGridCancels(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mock := mockruns.NewMockService(ctrl)
	w := worker.NewTrainRunWorker(mock)

	spec := train.DefaultSpec()
	mock.EXPECT().Execute(gomock.Any(), "hash-empty", spec).
		Return(fmt.Errorf("could not run benchmark: %w", train.ErrEmptyGrid))

	err := w.Work(context.Background(), makeJob(3, "hash-empty", spec))
	require.Error(t, err)
	var cancelErr *river.JobCancelError
	require.ErrorAs(t, err, &cancelErr)
}

func TestTrainRunWorker_Work_GenericErrorWrapped(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mock := mockruns.NewMockService(ctrl)
	w := worker.NewTrainRunWorker(mock)

	spec := train.DefaultSpec()
	execErr := errors.New("boom")
	mock.EXPECT().Execute(gomock.Any(), "hash-err", spec).Return(execErr)

	err := w.Work(context.Background(), makeJob(4, "hash-err", spec))
	require.Error(t, err)
	require.ErrorIs(t, err, execErr)
	var cancelErr *river.JobCancelError
	require.NotErrorAs(t, err, &cancelErr, "did not expect JobCancelError")
}
