// Package ticket holds the normalized helpdesk ticket record and the
// values derived from it before scoring.
package ticket

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

// Canonical column names produced by ingestion.
const (
	FieldNumber               = "number"
	FieldCategory             = "category"
	FieldSubcategory          = "subcategory"
	FieldPriority             = "priority"
	FieldAgentName            = "agent_name"
	FieldAssignmentGroup      = "assignment_group"
	FieldShortDescription     = "short_description"
	FieldOpened               = "opened"
	FieldUpdated              = "updated"
	FieldResolvedAt           = "resolved_at"
	FieldClosedAt             = "closed_at"
	FieldResolutionNotes      = "resolution_notes"
	FieldWorkNotes            = "work_notes"
	FieldComments             = "comments"
	FieldCommentsAndWorkNotes = "comments_and_work_notes"
	FieldTimeline             = "timeline"
	FieldReassignmentCount    = "reassignment_count"
	FieldReopenCount          = "reopen_count"
)

// RequiredColumns must be present in every batch before scoring starts.
var RequiredColumns = []string{FieldNumber}

var ErrMissingColumn = errors.New("missing required column")

// Ticket is one normalized export row. Text fields are never nil, absent
// values are empty strings. Timestamps are nil when missing or unparseable.
type Ticket struct {
	Number           string
	Category         string
	Subcategory      string
	Priority         string
	AgentName        string
	AssignmentGroup  string
	ShortDescription string

	Opened     *time.Time
	Updated    *time.Time
	ResolvedAt *time.Time
	ClosedAt   *time.Time

	ResolutionNotes      string
	WorkNotes            string
	Comments             string
	CommentsAndWorkNotes string
	Timeline             string

	ReassignmentCount int
	ReopenCount       int

	// Raw keeps every input column by normalized name so exports can
	// re-emit the original row.
	Raw map[string]string
}

// FromFields builds a Ticket from a normalized column → value map.
func FromFields(fields map[string]string) Ticket {
	get := func(key string) string {
		return Sanitize(fields[key])
	}

	return Ticket{
		Number:               strings.TrimSpace(get(FieldNumber)),
		Category:             get(FieldCategory),
		Subcategory:          get(FieldSubcategory),
		Priority:             get(FieldPriority),
		AgentName:            strings.TrimSpace(get(FieldAgentName)),
		AssignmentGroup:      strings.TrimSpace(get(FieldAssignmentGroup)),
		ShortDescription:     get(FieldShortDescription),
		Opened:               ParseTimestamp(fields[FieldOpened]),
		Updated:              ParseTimestamp(fields[FieldUpdated]),
		ResolvedAt:           ParseTimestamp(fields[FieldResolvedAt]),
		ClosedAt:             ParseTimestamp(fields[FieldClosedAt]),
		ResolutionNotes:      get(FieldResolutionNotes),
		WorkNotes:            get(FieldWorkNotes),
		Comments:             get(FieldComments),
		CommentsAndWorkNotes: get(FieldCommentsAndWorkNotes),
		Timeline:             get(FieldTimeline),
		ReassignmentCount:    parseCount(fields[FieldReassignmentCount]),
		ReopenCount:          parseCount(fields[FieldReopenCount]),
		Raw:                  fields,
	}
}

// parseCount accepts integers and integral floats ("2.0" from spreadsheet
// exports). Anything else, including negatives, becomes 0.
func parseCount(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 {
			return 0
		}
		return n
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 || f != float64(int(f)) {
		return 0
	}
	return int(f)
}

// Table is a batch of tickets together with the normalized header it was read with.
type Table struct {
	Columns []string
	Tickets []Ticket
}

// HasColumn reports whether the header contains name.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// MissingColumns lists the required columns absent from the header.
func (t *Table) MissingColumns() []string {
	var missing []string
	for _, c := range RequiredColumns {
		if !t.HasColumn(c) {
			missing = append(missing, c)
		}
	}
	return missing
}
