package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/godilite/ticket-qc/internal/qc"
	"github.com/godilite/ticket-qc/internal/repository"
	"github.com/godilite/ticket-qc/internal/ticket"
)

func benchTable(n int) *ticket.Table {
	base := time.Date(2025, 10, 15, 10, 30, 0, 0, time.UTC)
	table := &ticket.Table{Columns: []string{ticket.FieldNumber}}
	for i := range n {
		opened := base.Add(time.Duration(i) * time.Hour)
		resolved := opened.Add(6 * time.Hour)
		table.Tickets = append(table.Tickets, ticket.Ticket{
			Number:          fmt.Sprintf("INC%06d", i),
			Category:        "Network",
			Priority:        "P2 - High",
			Opened:          &opened,
			ResolvedAt:      &resolved,
			ResolutionNotes: "Issue Reported: VPN down. Probable Cause: driver. Resolution Provided: reinstalled driver.",
			WorkNotes:       "I have placed the ticket on hold. Strike 1 sent. Reach us via Connect Chat.",
		})
	}
	return table
}

func setupScoredRepo(tb testing.TB) (*ScoringService, *repository.ScoredTicketRepository) {
	tb.Helper()

	scorer, err := qc.NewScorer(qc.DefaultRuleSet())
	if err != nil {
		tb.Fatalf("failed to build scorer: %v", err)
	}
	repo := repository.NewScoredTicketRepository()
	svc := NewScoringService(repo, scorer, zap.NewNop())
	if _, err := svc.ScoreBatch(context.Background(), benchTable(500)); err != nil {
		tb.Fatalf("failed to score fixture: %v", err)
	}
	return svc, repo
}

func BenchmarkGetOverallScore(b *testing.B) {
	svc, _ := setupScoredRepo(b)
	start := time.Date(2025, 10, 15, 0, 0, 0, 0, time.UTC)
	end := start.Add(72 * time.Hour)

	b.ReportAllocs()

	for b.Loop() {
		_, _ = svc.GetOverallScore(context.Background(), start, end)
	}
}

func BenchmarkScoreBatch(b *testing.B) {
	svc, _ := setupScoredRepo(b)
	table := benchTable(1000)

	b.ReportAllocs()

	for b.Loop() {
		_, _ = svc.ScoreBatch(context.Background(), table)
	}
}
