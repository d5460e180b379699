package qc

import (
	"strings"
	"unicode/utf8"

	"github.com/godilite/ticket-qc/internal/ticket"
)

// Input is everything a checkpoint may read for one ticket.
type Input struct {
	Category        string
	Subcategory     string
	Priority        string
	Timeline        string
	ResolutionNotes string
	UnifiedText     string
	MTTR            ticket.Hours
	ResponseTime    ticket.Hours
}

// NewInput derives the unified text and time metrics of t.
func NewInput(t ticket.Ticket) Input {
	return Input{
		Category:        t.Category,
		Subcategory:     t.Subcategory,
		Priority:        t.Priority,
		Timeline:        t.Timeline,
		ResolutionNotes: t.ResolutionNotes,
		UnifiedText:     ticket.UnifiedText(t),
		MTTR:            ticket.MTTR(t),
		ResponseTime:    ticket.ResponseTime(t),
	}
}

// Tiers holds one tier per checkpoint, indexed by Checkpoint.
type Tiers [numCheckpoints]Tier

// Scorer applies a rule set to inputs.
type Scorer struct {
	rules    RuleSet
	detector *Detector
	agg      Aggregator
}

// NewScorer validates rules and prepares the detector.
func NewScorer(rules RuleSet) (*Scorer, error) {
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	d, err := NewDetector(rules)
	if err != nil {
		return nil, err
	}
	return &Scorer{
		rules:    rules,
		detector: d,
		agg:      NewAggregator(rules),
	}, nil
}

// Rules returns the rule set the scorer was built with.
func (s *Scorer) Rules() RuleSet {
	return s.rules
}

// Detector exposes the underlying signal detectors.
func (s *Scorer) Detector() *Detector {
	return s.detector
}

// Score evaluates and aggregates in one step.
func (s *Scorer) Score(in Input) Record {
	return s.Aggregate(s.Evaluate(in))
}

// Evaluate runs all thirteen checkpoints.
func (s *Scorer) Evaluate(in Input) Tiers {
	var out Tiers
	for _, c := range allCheckpoints {
		out[c] = s.Check(c, in)
	}
	return out
}

// Aggregate attaches totals to a set of tiers.
func (s *Scorer) Aggregate(t Tiers) Record {
	return s.agg.Aggregate(t)
}

// Check evaluates a single checkpoint.
func (s *Scorer) Check(c Checkpoint, in Input) Tier {
	switch c {
	case CheckpointCategory:
		return s.termInNotes(in.Category, in.ResolutionNotes)
	case CheckpointSubcategory:
		return s.termInNotes(in.Subcategory, in.ResolutionNotes)
	case CheckpointReadPrevious:
		return s.readPrevious(in.UnifiedText)
	case CheckpointRouting:
		return s.routing(in.UnifiedText)
	case CheckpointOwnership:
		return s.ownership(in.UnifiedText)
	case CheckpointTimely:
		return s.timely(in.ResponseTime)
	case CheckpointPriority:
		return s.priority(in.Priority, in.MTTR)
	case CheckpointEmailFormat:
		return s.emailFormat(in.UnifiedText, in.ResolutionNotes)
	case CheckpointTeams:
		return s.detector.TeamsConfirmation(in.UnifiedText)
	case CheckpointScreenshot:
		return s.screenshot(in.UnifiedText)
	case CheckpointDocumentShare:
		return s.documentShare(in.UnifiedText)
	case CheckpointCompliance:
		return s.compliance(in.UnifiedText, in.MTTR, in.Timeline)
	case CheckpointClientNotes:
		return s.clientNotes(in.UnifiedText)
	default:
		return TierNone
	}
}

// termInNotes backs the category and subcategory checkpoints.
func (s *Scorer) termInNotes(term, notes string) Tier {
	term = strings.TrimSpace(term)
	if term == "" {
		return TierNone
	}
	if strings.Contains(strings.ToLower(notes), strings.ToLower(term)) {
		return TierStrong
	}
	if utf8.RuneCountInString(notes) > s.rules.Thresholds.ElaborationChars {
		return TierNeutral
	}
	return TierNone
}

func (s *Scorer) readPrevious(text string) Tier {
	if Contains(text, s.rules.ReadPrevious) {
		return TierStrong
	}
	if utf8.RuneCountInString(text) > s.rules.Thresholds.ReadPreviousChars {
		return TierNeutral
	}
	return TierNone
}

// routing scores lower the more routing complaints the notes mention.
func (s *Scorer) routing(text string) Tier {
	hits := CountHits(text, s.rules.Routing)
	switch {
	case hits == 0:
		return TierStrong
	case hits <= s.rules.Thresholds.RoutingHitsPartial:
		return TierNeutral
	default:
		return TierNone
	}
}

// ownership penalizes an early handover before crediting engagement.
func (s *Scorer) ownership(text string) Tier {
	if Contains(text, s.rules.Handover) {
		return TierWeak
	}
	if Contains(text, s.rules.Engagement) {
		return TierStrong
	}
	return TierNeutral
}

func (s *Scorer) timely(response ticket.Hours) Tier {
	if !response.Valid {
		return TierNeutral
	}
	th := s.rules.Thresholds
	switch {
	case response.Value <= th.TimelyStrongHours:
		return TierStrong
	case response.Value <= th.TimelyNeutralHours:
		return TierNeutral
	default:
		return TierNone
	}
}

func (s *Scorer) priority(priority string, mttr ticket.Hours) Tier {
	if !mttr.Valid {
		return TierNeutral
	}
	th := s.rules.Thresholds
	p := strings.ToLower(priority)
	switch {
	case strings.Contains(p, "p1"):
		if mttr.Value <= th.P1MaxHours {
			return TierStrong
		}
		return TierWeak
	case strings.Contains(p, "p2"):
		if mttr.Value <= th.P2MaxHours {
			return TierStrong
		}
		return TierNeutral
	default:
		if mttr.Value <= th.DefaultMaxHours {
			return TierStrong
		}
		return TierWeak
	}
}

// emailFormat needs the resolution headers, the escalation workflow and
// the contact block for full marks; any one of them earns partial credit.
func (s *Scorer) emailFormat(text, resolutionNotes string) Tier {
	signals := 0
	if s.detector.ResolutionStructure(resolutionNotes) {
		signals++
	}
	if s.detector.EscalationWorkflow(text) {
		signals++
	}
	if s.detector.ContactInfo(text) {
		signals++
	}
	switch signals {
	case 3:
		return TierStrong
	case 0:
		return TierNone
	default:
		return TierNeutral
	}
}

// screenshot evidence becomes mandatory once an escalation was triggered.
func (s *Scorer) screenshot(text string) Tier {
	if s.detector.Screenshot(text) {
		return TierStrong
	}
	if s.detector.EscalationWorkflow(text) {
		return TierNone
	}
	return TierNeutral
}

func (s *Scorer) documentShare(text string) Tier {
	if Contains(text, s.rules.DocumentShare) {
		return TierStrong
	}
	return TierNone
}

// compliance checks language first; the SLA only matters for clean text.
func (s *Scorer) compliance(text string, mttr ticket.Hours, timeline string) Tier {
	if Contains(text, s.rules.Profanity) {
		return TierNone
	}
	tl := strings.ToLower(timeline)
	if strings.Contains(tl, "met") {
		return TierStrong
	}
	if strings.Contains(tl, "breach") {
		return TierWeak
	}
	if mttr.Valid && mttr.Value > s.rules.Thresholds.SLAFallbackMaxHours {
		return TierWeak
	}
	return TierStrong
}

func (s *Scorer) clientNotes(text string) Tier {
	if Contains(text, s.rules.ClientConfirmation) {
		return TierStrong
	}
	return TierNone
}
