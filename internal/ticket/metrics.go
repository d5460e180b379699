package ticket

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// Hours is an optional duration expressed in hours.
type Hours struct {
	Value float64
	Valid bool
}

// Undefined is the zero Hours.
var Undefined = Hours{}

// HoursOf wraps a defined value.
func HoursOf(v float64) Hours {
	return Hours{Value: v, Valid: true}
}

// String formats the full-precision value, or "" when undefined.
func (h Hours) String() string {
	if !h.Valid {
		return ""
	}
	return strconv.FormatFloat(h.Value, 'f', -1, 64)
}

// Format rounds to four decimals for tabular output.
func (h Hours) Format() string {
	if !h.Valid {
		return ""
	}
	s := strconv.FormatFloat(h.Value, 'f', 4, 64)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

func (h Hours) MarshalJSON() ([]byte, error) {
	if !h.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(h.Value)
}

func (h *Hours) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*h = Undefined
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*h = HoursOf(v)
	return nil
}

var nullTokens = map[string]bool{
	"":     true,
	"nan":  true,
	"nat":  true,
	"null": true,
	"none": true,
	"n/a":  true,
}

// ParseTimestamp parses the many date layouts found in helpdesk exports.
// Values without a zone are read as UTC. Missing or unparseable input
// yields nil, never an error.
func ParseTimestamp(s string) *time.Time {
	s = strings.TrimSpace(s)
	if nullTokens[strings.ToLower(s)] {
		return nil
	}
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return nil
	}
	return &t
}

// Between returns to − from in hours. Negative intervals are kept as-is.
func Between(from, to *time.Time) Hours {
	if from == nil || to == nil {
		return Undefined
	}
	return HoursOf(to.Sub(*from).Seconds() / 3600)
}

// MTTR is resolved_at − opened.
func MTTR(t Ticket) Hours {
	return Between(t.Opened, t.ResolvedAt)
}

// ResponseTime is updated − opened.
func ResponseTime(t Ticket) Hours {
	return Between(t.Opened, t.Updated)
}
