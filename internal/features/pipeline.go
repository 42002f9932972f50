package features

import (
	"context"
	"fmt"
	"imgclass/pkg/domain"
	"imgclass/pkg/logger"
	"runtime"
	"sync"

	"go.uber.org/zap"
)

// ExtractAll computes descriptors for every sample using a bounded pool of
// worker goroutines. Images that cannot be read or decoded are skipped with
// a warning rather than failing the batch; the skip count is returned
// alongside the vectors, which keep manifest order. A canceled context
// aborts the batch and returns the context error.
func ExtractAll(ctx context.Context, samples []domain.Sample, workers int) ([]domain.LabeledVector, int, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(samples) {
		workers = len(samples)
	}

	results := make([]*domain.LabeledVector, len(samples))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				vec, err := ExtractFile(samples[i].Path)
				if err != nil {
					logger.Warn(ctx, "skipping unreadable image",
						zap.String("path", samples[i].Path),
						zap.Error(err))

					continue
				}
				results[i] = &domain.LabeledVector{Sample: samples[i], Values: vec}
			}
		}()
	}

	var ctxErr error
feed:
	for i := range samples {
		select {
		case jobs <- i:
		case <-ctx.Done():
			ctxErr = ctx.Err()

			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if ctxErr != nil {
		return nil, 0, fmt.Errorf("extraction canceled: %w", ctxErr)
	}

	out := make([]domain.LabeledVector, 0, len(samples))
	skipped := 0
	for _, r := range results {
		if r == nil {
			skipped++

			continue
		}
		out = append(out, *r)
	}

	return out, skipped, nil
}
