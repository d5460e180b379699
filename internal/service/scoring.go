package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/godilite/ticket-qc/internal/qc"
)

const (
	storageTimeout = 1 * time.Second
)

// ScoringService runs the scoring pipeline and answers report queries over
// the stored output table.
type ScoringService struct {
	storage ScoredTicketRepository
	scorer  *qc.Scorer
	workers int
	logger  *zap.Logger
}

// Option configures a ScoringService.
type Option func(*ScoringService)

// WithWorkers sets how many goroutines score rows. Values below 1 are ignored.
func WithWorkers(n int) Option {
	return func(s *ScoringService) {
		if n >= 1 {
			s.workers = n
		}
	}
}

// NewScoringService creates a new ScoringService instance.
func NewScoringService(storage ScoredTicketRepository, scorer *qc.Scorer, logger *zap.Logger, opts ...Option) *ScoringService {
	if storage == nil {
		panic("storage must not be nil")
	}
	if scorer == nil {
		panic("scorer must not be nil")
	}
	if logger == nil {
		l, _ := zap.NewProduction()
		logger = l
	}
	s := &ScoringService{
		storage: storage,
		scorer:  scorer,
		workers: runtime.GOMAXPROCS(0),
		logger:  logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var (
	ErrNoTickets      = errors.New("no tickets found")
	ErrNotFound       = errors.New("not found")
	ErrStorageFailure = errors.New("storage failure")
)

func isAtLeastOneMonth(start, end time.Time) bool {
	s := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	e := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	oneMonthLater := s.AddDate(0, 1, 0)
	return !oneMonthLater.After(e)
}

func isWeeklyAggregation(start, end time.Time) bool {
	if start.IsZero() || end.IsZero() {
		return true
	}
	if isAtLeastOneMonth(start, end) {
		return true
	}
	if end.Sub(start) >= 28*24*time.Hour {
		return true
	}
	return false
}

// GetOverallScore returns the mean qc_percent for the requested window.
func (s *ScoringService) GetOverallScore(ctx context.Context, start, end time.Time) (float64, error) {
	dbCtx, cancel := context.WithTimeout(ctx, storageTimeout)
	defer cancel()

	result, err := s.storage.GetOverallScore(dbCtx, start, end)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	if result.Count == 0 {
		return 0, ErrNoTickets
	}

	s.logger.Info("fetched overall score",
		zap.Float64("score", result.Score),
		zap.Int64("count", result.Count),
		zap.Time("start", start),
		zap.Time("end", end))

	return result.Score, nil
}

// GetAggregatedCheckpointScores returns per-checkpoint (daily or weekly)
// mean points in checkpoint order.
func (s *ScoringService) GetAggregatedCheckpointScores(ctx context.Context, start, end time.Time) ([]AggregatedCheckpointScores, error) {
	dbCtx, cancel := context.WithTimeout(ctx, storageTimeout)
	defer cancel()

	weekly := isWeeklyAggregation(start, end)
	rows, err := s.storage.GetCheckpointScoresInPeriod(dbCtx, start, end, weekly)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	if len(rows) == 0 {
		return nil, ErrNoTickets
	}

	resultsMap := make(map[string]*AggregatedCheckpointScores)
	totals := make(map[string]int)

	for _, r := range rows {
		id := r.Checkpoint
		if _, ok := resultsMap[id]; !ok {
			resultsMap[id] = &AggregatedCheckpointScores{
				CheckpointID: id,
				PeriodScores: make([]PeriodScore, 0),
			}
			if c, ok := qc.ParseCheckpoint(id); ok {
				resultsMap[id].Label = c.Label()
			}
		}

		resultsMap[id].PeriodScores = append(resultsMap[id].PeriodScores, PeriodScore{
			Period: r.Period,
			Score:  r.PeriodScore,
		})
		resultsMap[id].TicketCount += r.TicketCount
		totals[id] += r.TotalPoints
	}

	results := make([]AggregatedCheckpointScores, 0, len(resultsMap))
	for id, v := range resultsMap {
		sort.Slice(v.PeriodScores, func(i, j int) bool {
			return v.PeriodScores[i].Period < v.PeriodScores[j].Period
		})
		if v.TicketCount > 0 {
			v.OverallScore = float64(totals[id]) / float64(v.TicketCount)
		}
		results = append(results, *v)
	}
	sort.Slice(results, func(i, j int) bool {
		return checkpointOrder(results[i].CheckpointID) < checkpointOrder(results[j].CheckpointID)
	})
	return results, nil
}

func checkpointOrder(id string) int {
	c, ok := qc.ParseCheckpoint(id)
	if !ok {
		return len(qc.Checkpoints())
	}
	return int(c)
}

// GetScoresByTicket pivots per-checkpoint rows into TicketScores, keeping
// input order.
func (s *ScoringService) GetScoresByTicket(ctx context.Context, start, end time.Time) ([]TicketScores, error) {
	dbCtx, cancel := context.WithTimeout(ctx, storageTimeout)
	defer cancel()

	rows, err := s.storage.GetScoresByTicket(dbCtx, start, end)
	if err != nil {
		s.logger.Error("failed to fetch scores by ticket", zap.Error(err))
		return nil, fmt.Errorf("%w: fetch scores by ticket: %v", ErrStorageFailure, err)
	}
	if len(rows) == 0 {
		return nil, ErrNoTickets
	}

	index := make(map[int]int)
	var out []TicketScores
	for _, r := range rows {
		i, ok := index[r.Position]
		if !ok {
			i = len(out)
			index[r.Position] = i
			out = append(out, TicketScores{
				Number:           r.Number,
				CheckpointScores: make(map[string]int),
				Total:            r.Total,
				Percent:          r.Percent,
			})
		}
		out[i].CheckpointScores[r.Checkpoint] = r.Score
	}
	return out, nil
}

// GetPeriodOverPeriodScoreChange calculates the score change vs the previous period.
func (s *ScoringService) GetPeriodOverPeriodScoreChange(ctx context.Context, start, end time.Time) (PeriodChange, error) {
	currentScore, err := s.GetOverallScore(ctx, start, end)
	if err != nil {
		return PeriodChange{}, fmt.Errorf("current score: %w", err)
	}

	duration := end.Sub(start)
	prevEnd := start.Add(-time.Nanosecond)
	prevStart := prevEnd.Add(-duration + time.Nanosecond)

	previousScore, err := s.GetOverallScore(ctx, prevStart, prevEnd)
	if err != nil {
		if errors.Is(err, ErrNoTickets) {
			return PeriodChange{
				CurrentPeriodScore:  currentScore,
				PreviousPeriodScore: 0,
				ChangePercentage:    100.0,
			}, nil
		}
		return PeriodChange{}, fmt.Errorf("previous score: %w", err)
	}

	var change float64
	if previousScore > 0 {
		change = ((currentScore - previousScore) / previousScore) * 100.0
	} else if currentScore > 0 {
		change = 100.0
	}

	return PeriodChange{
		CurrentPeriodScore:  currentScore,
		PreviousPeriodScore: previousScore,
		ChangePercentage:    change,
	}, nil
}
