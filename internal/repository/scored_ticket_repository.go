package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/godilite/ticket-qc/internal/qc"
	"github.com/godilite/ticket-qc/internal/repository/models"
)

var ErrNotFound = errors.New("ticket not found")

// ScoredTicketRepository holds the output table of the most recent run.
// Replacing the table is atomic; readers see either the old or the new run.
type ScoredTicketRepository struct {
	mu      sync.RWMutex
	runID   string
	tickets []models.ScoredTicket
}

func NewScoredTicketRepository() *ScoredTicketRepository {
	return &ScoredTicketRepository{}
}

// Replace swaps in the table of a new run.
func (r *ScoredTicketRepository) Replace(ctx context.Context, runID string, tickets []models.ScoredTicket) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	cp := make([]models.ScoredTicket, len(tickets))
	copy(cp, tickets)

	r.mu.Lock()
	r.runID = runID
	r.tickets = cp
	r.mu.Unlock()
	return nil
}

// RunID returns the id of the stored run, empty before the first Replace.
func (r *ScoredTicketRepository) RunID() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.runID
}

// inWindow matches tickets opened within [start, end]. A zero bound is
// open. Tickets without an opened timestamp only match the unbounded window.
func inWindow(st *models.ScoredTicket, start, end time.Time) bool {
	if start.IsZero() && end.IsZero() {
		return true
	}
	opened := st.Ticket.Opened
	if opened == nil {
		return false
	}
	if !start.IsZero() && opened.Before(start) {
		return false
	}
	if !end.IsZero() && opened.After(end) {
		return false
	}
	return true
}

// each calls fn with the position and row of every ticket in the window.
func (r *ScoredTicketRepository) each(ctx context.Context, start, end time.Time, fn func(i int, st *models.ScoredTicket)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := range r.tickets {
		if inWindow(&r.tickets[i], start, end) {
			fn(i, &r.tickets[i])
		}
	}
	return nil
}

// GetOverallScore returns the mean qc_percent of tickets opened in the window.
func (r *ScoredTicketRepository) GetOverallScore(ctx context.Context, start, end time.Time) (models.OverallScoreResult, error) {
	var sum float64
	var count int64
	err := r.each(ctx, start, end, func(_ int, st *models.ScoredTicket) {
		sum += st.Record.Percent
		count++
	})
	if err != nil {
		return models.OverallScoreResult{}, fmt.Errorf("query GetOverallScore: %w", err)
	}

	result := models.OverallScoreResult{Count: count}
	if count > 0 {
		result.Score = sum / float64(count)
	}
	return result, nil
}

// GetCheckpointScoresInPeriod averages checkpoint points by daily or weekly
// period, ordered by checkpoint and then period.
func (r *ScoredTicketRepository) GetCheckpointScoresInPeriod(ctx context.Context, start, end time.Time, isWeekly bool) ([]models.AggregatedCheckpointData, error) {
	type key struct {
		checkpoint qc.Checkpoint
		period     string
	}
	groups := make(map[key]*models.AggregatedCheckpointData)

	err := r.each(ctx, start, end, func(_ int, st *models.ScoredTicket) {
		// Undated tickets only reach here through an unbounded window.
		period := UnknownPeriod
		if st.Ticket.Opened != nil {
			period = PeriodOf(*st.Ticket.Opened, isWeekly)
		}
		for _, c := range qc.Checkpoints() {
			k := key{c, period}
			g, ok := groups[k]
			if !ok {
				g = &models.AggregatedCheckpointData{Checkpoint: c.ID(), Period: period}
				groups[k] = g
			}
			g.TotalPoints += st.Record.Score(c)
			g.TicketCount++
		}
	})
	if err != nil {
		return nil, fmt.Errorf("query GetCheckpointScoresInPeriod: %w", err)
	}

	keys := make([]key, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].checkpoint != keys[j].checkpoint {
			return keys[i].checkpoint < keys[j].checkpoint
		}
		return keys[i].period < keys[j].period
	})

	results := make([]models.AggregatedCheckpointData, 0, len(keys))
	for _, k := range keys {
		g := groups[k]
		g.PeriodScore = float64(g.TotalPoints) / float64(g.TicketCount)
		results = append(results, *g)
	}
	return results, nil
}

// GetScoresByTicket returns one row per ticket and checkpoint in input order.
func (r *ScoredTicketRepository) GetScoresByTicket(ctx context.Context, start, end time.Time) ([]models.TicketCheckpointScore, error) {
	var results []models.TicketCheckpointScore
	err := r.each(ctx, start, end, func(i int, st *models.ScoredTicket) {
		for _, c := range qc.Checkpoints() {
			results = append(results, models.TicketCheckpointScore{
				Position:   i,
				Number:     st.Ticket.Number,
				Checkpoint: c.ID(),
				Score:      st.Record.Score(c),
				Total:      st.Record.Total,
				Percent:    st.Record.Percent,
			})
		}
	})
	if err != nil {
		return nil, fmt.Errorf("query GetScoresByTicket: %w", err)
	}
	return results, nil
}

// ListTickets returns the scored rows opened in the window, in input order.
func (r *ScoredTicketRepository) ListTickets(ctx context.Context, start, end time.Time) ([]models.ScoredTicket, error) {
	var results []models.ScoredTicket
	err := r.each(ctx, start, end, func(_ int, st *models.ScoredTicket) {
		results = append(results, *st)
	})
	if err != nil {
		return nil, fmt.Errorf("query ListTickets: %w", err)
	}
	return results, nil
}

// GetTicket returns the first row with the given number.
func (r *ScoredTicketRepository) GetTicket(ctx context.Context, number string) (models.ScoredTicket, error) {
	if err := ctx.Err(); err != nil {
		return models.ScoredTicket{}, fmt.Errorf("query GetTicket: %w", err)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, st := range r.tickets {
		if st.Ticket.Number == number {
			return st, nil
		}
	}
	return models.ScoredTicket{}, fmt.Errorf("%w: %s", ErrNotFound, number)
}

// UnknownPeriod labels tickets without a parseable opened timestamp. It
// sorts after every dated period.
const UnknownPeriod = "unknown"

// PeriodOf labels t with its day ("2006-01-02") or its Monday-based week
// of the year ("2006-W05"). Days before the first Monday fall in week 00.
func PeriodOf(t time.Time, weekly bool) string {
	t = t.UTC()
	if !weekly {
		return t.Format(time.DateOnly)
	}
	weekday := (int(t.Weekday()) + 6) % 7
	week := (t.YearDay() - 1 + 7 - weekday) / 7
	return fmt.Sprintf("%d-W%02d", t.Year(), week)
}
