package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/godilite/ticket-qc/internal/repository/models"
	"github.com/godilite/ticket-qc/internal/service"
	"github.com/godilite/ticket-qc/internal/service/mocks"
)

func TestGetKPIs(t *testing.T) {
	svc, _, batch := scoreFixture(t)
	ctx := context.Background()

	t.Run("unbounded window", func(t *testing.T) {
		kpis, err := svc.GetKPIs(ctx, time.Time{}, time.Time{})
		require.NoError(t, err)

		assert.Equal(t, 3, kpis.TicketCount)
		assert.InDelta(t, 100.0/3, kpis.ReopenRate, 1e-9)
		require.True(t, kpis.MedianMTTR.Valid)
		assert.Equal(t, 17.0, kpis.MedianMTTR.Value)

		var sum float64
		for _, st := range batch.Tickets {
			sum += st.Record.Percent
		}
		assert.InDelta(t, sum/3, kpis.MeanPercent, 1e-9)
	})

	t.Run("windowed", func(t *testing.T) {
		start := time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC)
		end := time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)

		kpis, err := svc.GetKPIs(ctx, start, end)
		require.NoError(t, err)
		assert.Equal(t, 1, kpis.TicketCount)
		assert.Equal(t, 100.0, kpis.ReopenRate)
		assert.Equal(t, 24.0, kpis.MedianMTTR.Value)
	})

	t.Run("empty window", func(t *testing.T) {
		start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		_, err := svc.GetKPIs(ctx, start, start.Add(time.Hour))
		assert.ErrorIs(t, err, service.ErrNoTickets)
	})
}

func TestGetAgentSummary(t *testing.T) {
	svc, _, batch := scoreFixture(t)

	summary, err := svc.GetAgentSummary(context.Background(), time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Len(t, summary, 3)

	byAgent := make(map[string]service.AgentSummary)
	for _, a := range summary {
		byAgent[a.Agent] = a
	}
	require.Contains(t, byAgent, "Alice")
	require.Contains(t, byAgent, "Bob")
	require.Contains(t, byAgent, "unassigned")

	alice := byAgent["Alice"]
	assert.Equal(t, 1, alice.TicketCount)
	assert.Equal(t, batch.Tickets[0].Record.Percent, alice.MeanPercent)
	assert.Equal(t, 5.0, alice.CheckpointMeans["qc_category"])
	assert.Len(t, alice.CheckpointMeans, 13)

	for i := 1; i < len(summary); i++ {
		assert.GreaterOrEqual(t, summary[i-1].MeanPercent, summary[i].MeanPercent)
	}
}

func TestGetTicketReport(t *testing.T) {
	svc, _, batch := scoreFixture(t)
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		report, err := svc.GetTicketReport(ctx, "INC002")
		require.NoError(t, err)

		inc2 := batch.Tickets[1]
		assert.Equal(t, "INC002", report.Number)
		assert.Equal(t, "Bob", report.Agent)
		assert.Equal(t, "P1 - Critical", report.Priority)
		assert.Equal(t, inc2.Record.Total, report.Total)
		assert.Equal(t, inc2.Record.Percent, report.Percent)
		require.Len(t, report.Scores, 13)
		assert.Equal(t, "qc_category", report.Scores[0].ID)
		assert.Equal(t, "Priority Validation", report.Scores[6].Label)
		assert.Equal(t, 2, report.Scores[6].Score)
		assert.NotEmpty(t, report.Recommendations)
		assert.Contains(t, report.Recommendations, "Route the ticket to the correct queue the first time.")
	})

	t.Run("not found", func(t *testing.T) {
		_, err := svc.GetTicketReport(ctx, "INC404")
		assert.ErrorIs(t, err, service.ErrNotFound)
	})

	t.Run("storage failure", func(t *testing.T) {
		mockRepo := &mocks.MockScoredTicketRepository{
			GetTicketFunc: func(ctx context.Context, number string) (models.ScoredTicket, error) {
				return models.ScoredTicket{}, errors.New("store closed")
			},
		}
		svc := service.NewScoringService(mockRepo, newScorer(t), zap.NewNop())

		_, err := svc.GetTicketReport(ctx, "INC001")
		assert.ErrorIs(t, err, service.ErrStorageFailure)
		assert.NotErrorIs(t, err, service.ErrNotFound)
	})
}

func TestListBasedReports_StorageFailure(t *testing.T) {
	mockRepo := &mocks.MockScoredTicketRepository{
		ListTicketsFunc: func(ctx context.Context, start, end time.Time) ([]models.ScoredTicket, error) {
			return nil, errors.New("store closed")
		},
	}
	svc := service.NewScoringService(mockRepo, newScorer(t), zap.NewNop())

	_, err := svc.GetKPIs(context.Background(), time.Time{}, time.Time{})
	assert.ErrorIs(t, err, service.ErrStorageFailure)

	_, err = svc.GetAgentSummary(context.Background(), time.Time{}, time.Time{})
	assert.ErrorIs(t, err, service.ErrStorageFailure)
}

func TestReports_EndToEnd(t *testing.T) {
	svc, _, _ := scoreFixture(t)
	ctx := context.Background()
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 3, 7, 0, 0, 0, 0, time.UTC)

	overall, err := svc.GetOverallScore(ctx, start, end)
	require.NoError(t, err)
	assert.Positive(t, overall)

	scores, err := svc.GetScoresByTicket(ctx, start, end)
	require.NoError(t, err)
	require.Len(t, scores, 2, "undated tickets are only part of unbounded windows")
	assert.Equal(t, "INC001", scores[0].Number)
	assert.Len(t, scores[0].CheckpointScores, 13)

	checkpoints, err := svc.GetAggregatedCheckpointScores(ctx, start, end)
	require.NoError(t, err)
	require.Len(t, checkpoints, 13)
	assert.Equal(t, "qc_category", checkpoints[0].CheckpointID)
	assert.Len(t, checkpoints[0].PeriodScores, 2)
	assert.Equal(t, "2025-03-03", checkpoints[0].PeriodScores[0].Period)

	change, err := svc.GetPeriodOverPeriodScoreChange(ctx, start, end)
	require.NoError(t, err)
	assert.Equal(t, 100.0, change.ChangePercentage)
}
