package service

import "github.com/godilite/ticket-qc/internal/ticket"

type PeriodScore struct {
	Period string
	Score  float64
}

type AggregatedCheckpointScores struct {
	CheckpointID string
	Label        string
	TicketCount  int
	OverallScore float64
	PeriodScores []PeriodScore
}

type TicketScores struct {
	Number           string
	CheckpointScores map[string]int
	Total            int
	Percent          float64
}

type PeriodChange struct {
	CurrentPeriodScore  float64
	PreviousPeriodScore float64
	ChangePercentage    float64
}

type AgentSummary struct {
	Agent           string
	TicketCount     int
	MeanPercent     float64
	CheckpointMeans map[string]float64
}

type KPIs struct {
	TicketCount int
	ReopenRate  float64
	PassRate    float64
	MedianMTTR  ticket.Hours
	MeanPercent float64
}

type CheckpointScore struct {
	ID    string
	Label string
	Score int
}

type TicketReport struct {
	Number          string
	Agent           string
	Category        string
	Subcategory     string
	Priority        string
	MTTR            ticket.Hours
	ResponseTime    ticket.Hours
	Scores          []CheckpointScore
	Total           int
	Percent         float64
	WeightedPercent float64
	Recommendations []string
}
