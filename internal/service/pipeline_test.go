package service_test

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/godilite/ticket-qc/internal/ingest"
	"github.com/godilite/ticket-qc/internal/qc"
	"github.com/godilite/ticket-qc/internal/repository"
	"github.com/godilite/ticket-qc/internal/repository/models"
	"github.com/godilite/ticket-qc/internal/service"
	"github.com/godilite/ticket-qc/internal/service/mocks"
	"github.com/godilite/ticket-qc/internal/ticket"
)

func newScorer(t testing.TB) *qc.Scorer {
	t.Helper()
	s, err := qc.NewScorer(qc.DefaultRuleSet())
	require.NoError(t, err)
	return s
}

func loadTable(t testing.TB) *ticket.Table {
	t.Helper()
	table, err := ingest.ReadFile(filepath.Join("testdata", "tickets.csv"))
	require.NoError(t, err)
	return table
}

func scoreFixture(t *testing.T) (*service.ScoringService, *repository.ScoredTicketRepository, *service.Batch) {
	t.Helper()
	repo := repository.NewScoredTicketRepository()
	svc := service.NewScoringService(repo, newScorer(t), zaptest.NewLogger(t), service.WithWorkers(2))

	batch, err := svc.ScoreBatch(context.Background(), loadTable(t))
	require.NoError(t, err)
	return svc, repo, batch
}

func TestScoreBatch(t *testing.T) {
	svc, repo, batch := scoreFixture(t)

	assert.Equal(t, service.StateAggregated, batch.State())
	_, err := uuid.Parse(batch.RunID)
	require.NoError(t, err)
	assert.Equal(t, batch.RunID, repo.RunID())
	assert.Equal(t, batch.RunID, svc.CurrentRunID())

	require.Len(t, batch.Tickets, 3)
	assert.Equal(t, "INC001", batch.Tickets[0].Ticket.Number)
	assert.Equal(t, "INC002", batch.Tickets[1].Ticket.Number)
	assert.Equal(t, "INC003", batch.Tickets[2].Ticket.Number)

	inc1 := batch.Tickets[0]
	assert.Equal(t, 10.0, inc1.MTTR.Value)
	assert.Equal(t, 1.0, inc1.ResponseTime.Value)
	assert.Contains(t, inc1.UnifiedText, "Probable Cause")
	assert.Equal(t, 5, inc1.Record.Score(qc.CheckpointCategory))
	assert.Equal(t, 5, inc1.Record.Score(qc.CheckpointSubcategory))
	assert.Equal(t, 3, inc1.Record.Score(qc.CheckpointEmailFormat))
	assert.Equal(t, 5, inc1.Record.Score(qc.CheckpointPriority))
	assert.Equal(t, 5, inc1.Record.Score(qc.CheckpointTimely))
	assert.Equal(t, 5, inc1.Record.Score(qc.CheckpointCompliance))
	assert.Equal(t, 5, inc1.Record.Score(qc.CheckpointClientNotes))

	inc2 := batch.Tickets[1]
	assert.Equal(t, 24.0, inc2.MTTR.Value)
	assert.Equal(t, 0, inc2.Record.Score(qc.CheckpointRouting))
	assert.Equal(t, 3, inc2.Record.Score(qc.CheckpointTimely))
	assert.Equal(t, 2, inc2.Record.Score(qc.CheckpointPriority))
	assert.Equal(t, 2, inc2.Record.Score(qc.CheckpointCompliance))

	inc3 := batch.Tickets[2]
	assert.False(t, inc3.MTTR.Valid)
	assert.False(t, inc3.ResponseTime.Valid)
	assert.Equal(t, 3, inc3.Record.Score(qc.CheckpointPriority))

	for _, st := range batch.Tickets {
		assert.True(t, st.Record.Consistent(), st.Ticket.Number)
		assert.Equal(t, st.Record.Percent, st.Record.WeightedPercent)
	}
}

func TestScoreBatch_WorkerCountDoesNotChangeResults(t *testing.T) {
	table := loadTable(t)
	scorer := newScorer(t)

	var records [][]qc.Record
	for _, workers := range []int{1, 2, 8} {
		svc := service.NewScoringService(repository.NewScoredTicketRepository(), scorer, zap.NewNop(), service.WithWorkers(workers))
		batch, err := svc.ScoreBatch(context.Background(), table)
		require.NoError(t, err)

		var got []qc.Record
		for _, st := range batch.Tickets {
			got = append(got, st.Record)
		}
		records = append(records, got)
	}
	assert.Equal(t, records[0], records[1])
	assert.Equal(t, records[0], records[2])
}

func TestScoreBatch_MissingColumn(t *testing.T) {
	table, err := ingest.ReadCSV(strings.NewReader("number,category\nINC1,Network\n"))
	require.NoError(t, err)
	table.Columns = []string{"category"}

	mockRepo := &mocks.MockScoredTicketRepository{
		ReplaceFunc: func(ctx context.Context, runID string, tickets []models.ScoredTicket) error {
			t.Fatal("batch with a missing column must not reach storage")
			return nil
		},
	}
	svc := service.NewScoringService(mockRepo, newScorer(t), zap.NewNop())

	_, err = svc.ScoreBatch(context.Background(), table)
	assert.ErrorIs(t, err, ticket.ErrMissingColumn)

	_, err = svc.ScoreBatch(context.Background(), nil)
	assert.ErrorIs(t, err, ticket.ErrMissingColumn)
}

func TestScoreBatch_StorageFailure(t *testing.T) {
	mockRepo := &mocks.MockScoredTicketRepository{
		ReplaceFunc: func(ctx context.Context, runID string, tickets []models.ScoredTicket) error {
			return errors.New("disk full")
		},
	}
	svc := service.NewScoringService(mockRepo, newScorer(t), zap.NewNop())

	_, err := svc.ScoreBatch(context.Background(), loadTable(t))
	assert.ErrorIs(t, err, service.ErrStorageFailure)
	assert.Contains(t, err.Error(), "disk full")
}

func TestScoreBatch_Cancelled(t *testing.T) {
	svc := service.NewScoringService(repository.NewScoredTicketRepository(), newScorer(t), zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.ScoreBatch(ctx, loadTable(t))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBatch_Transitions(t *testing.T) {
	svc := service.NewScoringService(repository.NewScoredTicketRepository(), newScorer(t), zap.NewNop())

	batch, err := service.NewBatch(loadTable(t))
	require.NoError(t, err)
	assert.Equal(t, service.StateLoaded, batch.State())
	assert.Equal(t, "LOADED", batch.State().String())

	assert.ErrorIs(t, svc.Aggregate(batch), service.ErrInvalidTransition)

	require.NoError(t, svc.Evaluate(context.Background(), batch))
	assert.Equal(t, service.StateScored, batch.State())
	assert.Zero(t, batch.Tickets[0].Record.Total, "totals are attached by Aggregate")

	assert.ErrorIs(t, svc.Evaluate(context.Background(), batch), service.ErrInvalidTransition)

	require.NoError(t, svc.Aggregate(batch))
	assert.Equal(t, service.StateAggregated, batch.State())
	assert.Equal(t, "AGGREGATED", batch.State().String())
	assert.Positive(t, batch.Tickets[0].Record.Total)

	assert.ErrorIs(t, svc.Aggregate(batch), service.ErrInvalidTransition)
}

func TestBatch_Empty(t *testing.T) {
	svc := service.NewScoringService(repository.NewScoredTicketRepository(), newScorer(t), zap.NewNop())

	batch, err := svc.ScoreBatch(context.Background(), &ticket.Table{Columns: []string{ticket.FieldNumber}})
	require.NoError(t, err)
	assert.Empty(t, batch.Tickets)
	assert.Equal(t, service.StateAggregated, batch.State())
}
