package runs

import (
	"context"
	"imgclass/pkg/domain"
)

//go:generate mockgen -package mockruns -source=interface.go -destination=mock/mockruns.go *
type Service interface {
	Submit(ctx context.Context, userID domain.UserID, spec domain.TrainSpec) (*domain.Run, error)
	UserRuns(ctx context.Context,
		userID domain.UserID,
		status domain.RunStatus,
		cursor string,
		limit uint) ([]domain.Run, string, error)
	Result(ctx context.Context, userID domain.UserID, runID domain.RunID) (*domain.Run, error)
	Delete(ctx context.Context, userID domain.UserID, runID domain.RunID) error
	Execute(ctx context.Context, specHash string, spec domain.TrainSpec) error
}
