package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/godilite/ticket-qc/internal/qc"
	"github.com/godilite/ticket-qc/internal/repository"
	"github.com/godilite/ticket-qc/internal/repository/models"
	"github.com/godilite/ticket-qc/internal/ticket"
)

const unassignedAgent = "unassigned"

func (s *ScoringService) listTickets(ctx context.Context, start, end time.Time) ([]models.ScoredTicket, error) {
	dbCtx, cancel := context.WithTimeout(ctx, storageTimeout)
	defer cancel()

	rows, err := s.storage.ListTickets(dbCtx, start, end)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	if len(rows) == 0 {
		return nil, ErrNoTickets
	}
	return rows, nil
}

// GetKPIs summarizes the tickets opened in the window.
func (s *ScoringService) GetKPIs(ctx context.Context, start, end time.Time) (KPIs, error) {
	rows, err := s.listTickets(ctx, start, end)
	if err != nil {
		return KPIs{}, err
	}

	pass := s.scorer.Rules().Thresholds.PassPercent
	var reopened, passed int
	var percentSum float64
	mttrs := make([]float64, 0, len(rows))
	for _, r := range rows {
		if r.Ticket.ReopenCount > 0 {
			reopened++
		}
		if r.Record.Percent >= pass {
			passed++
		}
		percentSum += r.Record.Percent
		if r.MTTR.Valid {
			mttrs = append(mttrs, r.MTTR.Value)
		}
	}

	n := float64(len(rows))
	return KPIs{
		TicketCount: len(rows),
		ReopenRate:  float64(reopened) / n * 100,
		PassRate:    float64(passed) / n * 100,
		MedianMTTR:  median(mttrs),
		MeanPercent: percentSum / n,
	}, nil
}

func median(values []float64) ticket.Hours {
	if len(values) == 0 {
		return ticket.Undefined
	}
	sort.Float64s(values)
	mid := len(values) / 2
	if len(values)%2 == 1 {
		return ticket.HoursOf(values[mid])
	}
	return ticket.HoursOf((values[mid-1] + values[mid]) / 2)
}

// GetAgentSummary groups the window by agent, best mean percent first.
func (s *ScoringService) GetAgentSummary(ctx context.Context, start, end time.Time) ([]AgentSummary, error) {
	rows, err := s.listTickets(ctx, start, end)
	if err != nil {
		return nil, err
	}

	type acc struct {
		count   int
		percent float64
		points  map[string]int
	}
	byAgent := make(map[string]*acc)
	for _, r := range rows {
		name := strings.TrimSpace(r.Ticket.AgentName)
		if name == "" {
			name = unassignedAgent
		}
		a, ok := byAgent[name]
		if !ok {
			a = &acc{points: make(map[string]int)}
			byAgent[name] = a
		}
		a.count++
		a.percent += r.Record.Percent
		for id, p := range r.Record.Scores() {
			a.points[id] += p
		}
	}

	out := make([]AgentSummary, 0, len(byAgent))
	for name, a := range byAgent {
		means := make(map[string]float64, len(a.points))
		for id, p := range a.points {
			means[id] = float64(p) / float64(a.count)
		}
		out = append(out, AgentSummary{
			Agent:           name,
			TicketCount:     a.count,
			MeanPercent:     a.percent / float64(a.count),
			CheckpointMeans: means,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].MeanPercent != out[j].MeanPercent {
			return out[i].MeanPercent > out[j].MeanPercent
		}
		return out[i].Agent < out[j].Agent
	})
	return out, nil
}

// GetTicketReport builds the report card of one ticket.
func (s *ScoringService) GetTicketReport(ctx context.Context, number string) (TicketReport, error) {
	dbCtx, cancel := context.WithTimeout(ctx, storageTimeout)
	defer cancel()

	st, err := s.storage.GetTicket(dbCtx, number)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return TicketReport{}, fmt.Errorf("%w: ticket %s", ErrNotFound, number)
		}
		s.logger.Error("failed to fetch ticket", zap.String("number", number), zap.Error(err))
		return TicketReport{}, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	scores := make([]CheckpointScore, 0, len(qc.Checkpoints()))
	for _, c := range qc.Checkpoints() {
		scores = append(scores, CheckpointScore{ID: c.ID(), Label: c.Label(), Score: st.Record.Score(c)})
	}

	return TicketReport{
		Number:          st.Ticket.Number,
		Agent:           st.Ticket.AgentName,
		Category:        st.Ticket.Category,
		Subcategory:     st.Ticket.Subcategory,
		Priority:        st.Ticket.Priority,
		MTTR:            st.MTTR,
		ResponseTime:    st.ResponseTime,
		Scores:          scores,
		Total:           st.Record.Total,
		Percent:         st.Record.Percent,
		WeightedPercent: st.Record.WeightedPercent,
		Recommendations: qc.Recommend(st.Record, s.scorer.Rules().Thresholds.PassPercent),
	}, nil
}
