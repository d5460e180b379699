package mocks

import (
	"context"
	"errors"
	"time"

	"github.com/godilite/ticket-qc/internal/service"
)

// MockScoringService is a mock implementation of the ScoringService interface
// for testing the handler layer. It uses function-based mocking for flexibility.
type MockScoringService struct {
	RunID                              string
	GetOverallScoreFunc                func(ctx context.Context, start, end time.Time) (float64, error)
	GetScoresByTicketFunc              func(ctx context.Context, start, end time.Time) ([]service.TicketScores, error)
	GetPeriodOverPeriodScoreChangeFunc func(ctx context.Context, start, end time.Time) (service.PeriodChange, error)
	GetAggregatedCheckpointScoresFunc  func(ctx context.Context, start, end time.Time) ([]service.AggregatedCheckpointScores, error)
	GetAgentSummaryFunc                func(ctx context.Context, start, end time.Time) ([]service.AgentSummary, error)
	GetKPIsFunc                        func(ctx context.Context, start, end time.Time) (service.KPIs, error)
	GetTicketReportFunc                func(ctx context.Context, number string) (service.TicketReport, error)
}

// CurrentRunID implements the ScoringService interface
func (m *MockScoringService) CurrentRunID() string {
	return m.RunID
}

// GetOverallScore implements the ScoringService interface
func (m *MockScoringService) GetOverallScore(ctx context.Context, start, end time.Time) (float64, error) {
	if m.GetOverallScoreFunc != nil {
		return m.GetOverallScoreFunc(ctx, start, end)
	}
	return 0, errors.New("GetOverallScoreFunc not implemented")
}

// GetScoresByTicket implements the ScoringService interface
func (m *MockScoringService) GetScoresByTicket(ctx context.Context, start, end time.Time) ([]service.TicketScores, error) {
	if m.GetScoresByTicketFunc != nil {
		return m.GetScoresByTicketFunc(ctx, start, end)
	}
	return nil, errors.New("GetScoresByTicketFunc not implemented")
}

// GetPeriodOverPeriodScoreChange implements the ScoringService interface
func (m *MockScoringService) GetPeriodOverPeriodScoreChange(ctx context.Context, start, end time.Time) (service.PeriodChange, error) {
	if m.GetPeriodOverPeriodScoreChangeFunc != nil {
		return m.GetPeriodOverPeriodScoreChangeFunc(ctx, start, end)
	}
	return service.PeriodChange{}, errors.New("GetPeriodOverPeriodScoreChangeFunc not implemented")
}

// GetAggregatedCheckpointScores implements the ScoringService interface
func (m *MockScoringService) GetAggregatedCheckpointScores(ctx context.Context, start, end time.Time) ([]service.AggregatedCheckpointScores, error) {
	if m.GetAggregatedCheckpointScoresFunc != nil {
		return m.GetAggregatedCheckpointScoresFunc(ctx, start, end)
	}
	return nil, errors.New("GetAggregatedCheckpointScoresFunc not implemented")
}

// GetAgentSummary implements the ScoringService interface
func (m *MockScoringService) GetAgentSummary(ctx context.Context, start, end time.Time) ([]service.AgentSummary, error) {
	if m.GetAgentSummaryFunc != nil {
		return m.GetAgentSummaryFunc(ctx, start, end)
	}
	return nil, errors.New("GetAgentSummaryFunc not implemented")
}

// GetKPIs implements the ScoringService interface
func (m *MockScoringService) GetKPIs(ctx context.Context, start, end time.Time) (service.KPIs, error) {
	if m.GetKPIsFunc != nil {
		return m.GetKPIsFunc(ctx, start, end)
	}
	return service.KPIs{}, errors.New("GetKPIsFunc not implemented")
}

// GetTicketReport implements the ScoringService interface
func (m *MockScoringService) GetTicketReport(ctx context.Context, number string) (service.TicketReport, error) {
	if m.GetTicketReportFunc != nil {
		return m.GetTicketReportFunc(ctx, number)
	}
	return service.TicketReport{}, errors.New("GetTicketReportFunc not implemented")
}
