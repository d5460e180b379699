package ticket

import "strings"

// Sanitize normalizes line endings and drops NUL bytes that some helpdesk
// exports leave in note fields.
func Sanitize(s string) string {
	if s == "" {
		return s
	}
	s = strings.ReplaceAll(s, "\x00", "")
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// Unify joins text fields with a newline. Empty fields are kept so the
// separator count never depends on the data.
func Unify(fields ...string) string {
	return strings.Join(fields, "\n")
}

// UnifiedText is the single text blob every text-based detector reads:
// resolution notes, work notes, combined comments, comments, in that order.
func UnifiedText(t Ticket) string {
	return Unify(t.ResolutionNotes, t.WorkNotes, t.CommentsAndWorkNotes, t.Comments)
}
