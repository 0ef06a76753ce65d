package domain

import (
	"context"
	"time"
)

// AnalysisClient defines the interface for the remote analysis service
type AnalysisClient interface {
	Analyze(ctx context.Context, req AnalysisRequest) (*AnalysisResult, error)
	Chat(ctx context.Context, question string) (*ChatResult, error)
}

// VisitRepository stores live per-page workflow instances
type VisitRepository interface {
	Get(ctx context.Context, key string) (interface{}, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Touch(ctx context.Context, key string, ttl time.Duration) error
}
