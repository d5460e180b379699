package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/godilite/ticket-qc/internal/qc"
	"github.com/godilite/ticket-qc/internal/repository/models"
	"github.com/godilite/ticket-qc/internal/ticket"
)

var ErrInvalidTransition = errors.New("invalid batch state transition")

// BatchState tracks how far a batch has progressed. States only move forward.
type BatchState int

const (
	StateLoaded BatchState = iota
	StateScored
	StateAggregated
)

func (s BatchState) String() string {
	switch s {
	case StateLoaded:
		return "LOADED"
	case StateScored:
		return "SCORED"
	case StateAggregated:
		return "AGGREGATED"
	default:
		return fmt.Sprintf("BatchState(%d)", int(s))
	}
}

// Batch is one scoring run over a ticket table. Tickets keep input order.
type Batch struct {
	RunID   string
	Columns []string
	Tickets []models.ScoredTicket

	state BatchState
}

// NewBatch checks the required columns and loads the table.
func NewBatch(table *ticket.Table) (*Batch, error) {
	if table == nil {
		return nil, fmt.Errorf("%w: %s (no table)", ticket.ErrMissingColumn, strings.Join(ticket.RequiredColumns, ", "))
	}
	if missing := table.MissingColumns(); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ticket.ErrMissingColumn, strings.Join(missing, ", "))
	}

	rows := make([]models.ScoredTicket, len(table.Tickets))
	for i, t := range table.Tickets {
		rows[i].Ticket = t
	}
	return &Batch{
		RunID:   uuid.NewString(),
		Columns: table.Columns,
		Tickets: rows,
		state:   StateLoaded,
	}, nil
}

func (b *Batch) State() BatchState {
	return b.state
}

// Evaluate derives the unified text and time metrics of every row and runs
// the checkpoints. Rows are split into contiguous chunks, one per worker.
func (s *ScoringService) Evaluate(ctx context.Context, b *Batch) error {
	if b.state != StateLoaded {
		return fmt.Errorf("%w: evaluate from %s", ErrInvalidTransition, b.state)
	}

	n := len(b.Tickets)
	workers := min(s.workers, n)
	if workers < 1 {
		workers = 1
	}
	chunk := (n + workers - 1) / workers

	g, gctx := errgroup.WithContext(ctx)
	for lo := 0; lo < n; lo += chunk {
		hi := min(lo+chunk, n)
		g.Go(func() error {
			for i := lo; i < hi; i++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				row := &b.Tickets[i]
				in := qc.NewInput(row.Ticket)
				row.UnifiedText = in.UnifiedText
				row.MTTR = in.MTTR
				row.ResponseTime = in.ResponseTime
				row.Record = qc.Record{Tiers: s.scorer.Evaluate(in)}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("evaluate batch %s: %w", b.RunID, err)
	}

	b.state = StateScored
	return nil
}

// Aggregate attaches totals and percentages to a scored batch.
func (s *ScoringService) Aggregate(b *Batch) error {
	if b.state != StateScored {
		return fmt.Errorf("%w: aggregate from %s", ErrInvalidTransition, b.state)
	}
	for i := range b.Tickets {
		b.Tickets[i].Record = s.scorer.Aggregate(b.Tickets[i].Record.Tiers)
	}
	b.state = StateAggregated
	return nil
}

// ScoreBatch runs the whole pipeline over table and stores the result as
// the current run.
func (s *ScoringService) ScoreBatch(ctx context.Context, table *ticket.Table) (*Batch, error) {
	started := time.Now()

	b, err := NewBatch(table)
	if err != nil {
		s.logger.Error("rejected batch", zap.Error(err))
		return nil, err
	}
	if err := s.Evaluate(ctx, b); err != nil {
		return nil, err
	}
	if err := s.Aggregate(b); err != nil {
		return nil, err
	}

	if err := s.storage.Replace(ctx, b.RunID, b.Tickets); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	s.logger.Info("scored batch",
		zap.String("run_id", b.RunID),
		zap.Int("tickets", len(b.Tickets)),
		zap.Int("workers", s.workers),
		zap.Duration("elapsed", time.Since(started)))

	return b, nil
}

// CurrentRunID returns the id of the run the reports are computed from.
func (s *ScoringService) CurrentRunID() string {
	return s.storage.RunID()
}
