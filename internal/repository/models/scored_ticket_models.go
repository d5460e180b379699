package models

import (
	"github.com/godilite/ticket-qc/internal/qc"
	"github.com/godilite/ticket-qc/internal/ticket"
)

// ScoredTicket is one row of the augmented output table.
type ScoredTicket struct {
	Ticket       ticket.Ticket
	UnifiedText  string
	MTTR         ticket.Hours
	ResponseTime ticket.Hours
	Record       qc.Record
}

type OverallScoreResult struct {
	Score float64
	Count int64
}

type AggregatedCheckpointData struct {
	Checkpoint  string
	Period      string
	PeriodScore float64
	TotalPoints int
	TicketCount int
}

type TicketCheckpointScore struct {
	Position   int
	Number     string
	Checkpoint string
	Score      int
	Total      int
	Percent    float64
}
