package ai

import (
	"context"
	"fmt"

	"golang.org/x/sync/semaphore"
)

// LimitedMarker bounds the number of in-flight requests to the underlying
// marker. The marking backend is an external rate-limited service, so bursts
// of grading requests must not pass through uncoordinated.
type LimitedMarker struct {
	inner Marker
	sem   *semaphore.Weighted
}

// NewLimitedMarker wraps inner with a concurrency bound.
func NewLimitedMarker(inner Marker, maxConcurrent int64) *LimitedMarker {
	if maxConcurrent <= 0 {
		maxConcurrent = 4
	}
	return &LimitedMarker{
		inner: inner,
		sem:   semaphore.NewWeighted(maxConcurrent),
	}
}

// GenerateDraftFeedback acquires a slot before delegating.
func (l *LimitedMarker) GenerateDraftFeedback(ctx context.Context, input DraftInput) (DraftResult, error) {
	if err := l.sem.Acquire(ctx, 1); err != nil {
		return DraftResult{}, fmt.Errorf("waiting for marker slot: %w", err)
	}
	defer l.sem.Release(1)

	return l.inner.GenerateDraftFeedback(ctx, input)
}

// MarkFinalSubmission acquires a slot before delegating.
func (l *LimitedMarker) MarkFinalSubmission(ctx context.Context, input FinalInput) (FinalResult, error) {
	if err := l.sem.Acquire(ctx, 1); err != nil {
		return FinalResult{}, fmt.Errorf("waiting for marker slot: %w", err)
	}
	defer l.sem.Release(1)

	return l.inner.MarkFinalSubmission(ctx, input)
}
