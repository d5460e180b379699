// Package export renders the scored output table for downstream consumers.
package export

import (
	"time"

	"github.com/godilite/ticket-qc/internal/qc"
	"github.com/godilite/ticket-qc/internal/repository/models"
	"github.com/godilite/ticket-qc/internal/ticket"
)

// Record is the JSON document published for one scored ticket.
type Record struct {
	RunID             string         `json:"run_id"`
	Number            string         `json:"number"`
	Agent             string         `json:"agent_name,omitempty"`
	Category          string         `json:"category,omitempty"`
	Priority          string         `json:"priority,omitempty"`
	Opened            *time.Time     `json:"opened,omitempty"`
	MTTRHours         ticket.Hours   `json:"mttr_hours"`
	ResponseTimeHours ticket.Hours   `json:"response_time_hours"`
	Scores            map[string]int `json:"scores"`
	Total             int            `json:"qc_total"`
	Percent           float64        `json:"qc_percent"`
	WeightedPercent   float64        `json:"qc_weighted_percent"`
	Recommendations   []string       `json:"recommendations"`
}

// NewRecord builds the published form of st.
func NewRecord(runID string, st models.ScoredTicket, passPercent float64) Record {
	return Record{
		RunID:             runID,
		Number:            st.Ticket.Number,
		Agent:             st.Ticket.AgentName,
		Category:          st.Ticket.Category,
		Priority:          st.Ticket.Priority,
		Opened:            st.Ticket.Opened,
		MTTRHours:         st.MTTR,
		ResponseTimeHours: st.ResponseTime,
		Scores:            st.Record.Scores(),
		Total:             st.Record.Total,
		Percent:           st.Record.Percent,
		WeightedPercent:   st.Record.WeightedPercent,
		Recommendations:   qc.Recommend(st.Record, passPercent),
	}
}

// Records converts rows in order.
func Records(runID string, rows []models.ScoredTicket, passPercent float64) []Record {
	out := make([]Record, len(rows))
	for i, st := range rows {
		out[i] = NewRecord(runID, st, passPercent)
	}
	return out
}
