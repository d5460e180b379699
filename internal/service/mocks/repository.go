package mocks

import (
	"context"
	"errors"
	"time"

	"github.com/godilite/ticket-qc/internal/repository/models"
)

// MockScoredTicketRepository is a mock implementation of the ScoredTicketRepository interface
// for testing the service layer.
type MockScoredTicketRepository struct {
	ReplaceFunc                     func(ctx context.Context, runID string, tickets []models.ScoredTicket) error
	RunIDFunc                       func() string
	GetOverallScoreFunc             func(ctx context.Context, start, end time.Time) (models.OverallScoreResult, error)
	GetCheckpointScoresInPeriodFunc func(ctx context.Context, start, end time.Time, isWeekly bool) ([]models.AggregatedCheckpointData, error)
	GetScoresByTicketFunc           func(ctx context.Context, start, end time.Time) ([]models.TicketCheckpointScore, error)
	ListTicketsFunc                 func(ctx context.Context, start, end time.Time) ([]models.ScoredTicket, error)
	GetTicketFunc                   func(ctx context.Context, number string) (models.ScoredTicket, error)
}

// Replace implements the ScoredTicketRepository interface
func (m *MockScoredTicketRepository) Replace(ctx context.Context, runID string, tickets []models.ScoredTicket) error {
	if m.ReplaceFunc != nil {
		return m.ReplaceFunc(ctx, runID, tickets)
	}
	return errors.New("ReplaceFunc not implemented")
}

// RunID implements the ScoredTicketRepository interface
func (m *MockScoredTicketRepository) RunID() string {
	if m.RunIDFunc != nil {
		return m.RunIDFunc()
	}
	return ""
}

// GetOverallScore implements the ScoredTicketRepository interface
func (m *MockScoredTicketRepository) GetOverallScore(ctx context.Context, start, end time.Time) (models.OverallScoreResult, error) {
	if m.GetOverallScoreFunc != nil {
		return m.GetOverallScoreFunc(ctx, start, end)
	}
	return models.OverallScoreResult{}, errors.New("GetOverallScoreFunc not implemented")
}

// GetCheckpointScoresInPeriod implements the ScoredTicketRepository interface
func (m *MockScoredTicketRepository) GetCheckpointScoresInPeriod(ctx context.Context, start, end time.Time, isWeekly bool) ([]models.AggregatedCheckpointData, error) {
	if m.GetCheckpointScoresInPeriodFunc != nil {
		return m.GetCheckpointScoresInPeriodFunc(ctx, start, end, isWeekly)
	}
	return nil, errors.New("GetCheckpointScoresInPeriodFunc not implemented")
}

// GetScoresByTicket implements the ScoredTicketRepository interface
func (m *MockScoredTicketRepository) GetScoresByTicket(ctx context.Context, start, end time.Time) ([]models.TicketCheckpointScore, error) {
	if m.GetScoresByTicketFunc != nil {
		return m.GetScoresByTicketFunc(ctx, start, end)
	}
	return nil, errors.New("GetScoresByTicketFunc not implemented")
}

// ListTickets implements the ScoredTicketRepository interface
func (m *MockScoredTicketRepository) ListTickets(ctx context.Context, start, end time.Time) ([]models.ScoredTicket, error) {
	if m.ListTicketsFunc != nil {
		return m.ListTicketsFunc(ctx, start, end)
	}
	return nil, errors.New("ListTicketsFunc not implemented")
}

// GetTicket implements the ScoredTicketRepository interface
func (m *MockScoredTicketRepository) GetTicket(ctx context.Context, number string) (models.ScoredTicket, error) {
	if m.GetTicketFunc != nil {
		return m.GetTicketFunc(ctx, number)
	}
	return models.ScoredTicket{}, errors.New("GetTicketFunc not implemented")
}
