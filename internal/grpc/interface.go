package grpc

import (
	"context"
	"time"

	"github.com/godilite/ticket-qc/internal/service"
)

// Cacher defines the interface for cache operations.
type Cacher interface {
	Close() error
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
}

type ScoringService interface {
	CurrentRunID() string
	GetOverallScore(ctx context.Context, start, end time.Time) (float64, error)
	GetScoresByTicket(ctx context.Context, start, end time.Time) ([]service.TicketScores, error)
	GetPeriodOverPeriodScoreChange(ctx context.Context, start, end time.Time) (service.PeriodChange, error)
	GetAggregatedCheckpointScores(ctx context.Context, start, end time.Time) ([]service.AggregatedCheckpointScores, error)
	GetAgentSummary(ctx context.Context, start, end time.Time) ([]service.AgentSummary, error)
	GetKPIs(ctx context.Context, start, end time.Time) (service.KPIs, error)
	GetTicketReport(ctx context.Context, number string) (service.TicketReport, error)
}
