package service

import (
	"context"
	"time"

	"github.com/godilite/ticket-qc/internal/repository/models"
)

// ScoredTicketRepository defines the storage operations the service needs
// for the output table of a run.
type ScoredTicketRepository interface {
	Replace(ctx context.Context, runID string, tickets []models.ScoredTicket) error
	RunID() string
	GetOverallScore(ctx context.Context, start, end time.Time) (models.OverallScoreResult, error)
	GetCheckpointScoresInPeriod(ctx context.Context, start, end time.Time, isWeekly bool) ([]models.AggregatedCheckpointData, error)
	GetScoresByTicket(ctx context.Context, start, end time.Time) ([]models.TicketCheckpointScore, error)
	ListTickets(ctx context.Context, start, end time.Time) ([]models.ScoredTicket, error)
	GetTicket(ctx context.Context, number string) (models.ScoredTicket, error)
}
