// Package ingest reads helpdesk exports into normalized ticket tables.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/godilite/ticket-qc/internal/ticket"
)

// aliases maps export-specific header names onto canonical ones. An alias
// is only applied when the canonical column is absent.
var aliases = map[string][]string{
	ticket.FieldResolutionNotes: {"close_notes", "resolution"},
	ticket.FieldOpened:          {"opened_at", "sys_created_on"},
	ticket.FieldAgentName:       {"assigned_to"},
	ticket.FieldNumber:          {"ticket_number"},
	ticket.FieldUpdated:         {"sys_updated_on"},
}

var headerReplacer = strings.NewReplacer(" ", "_", "/", "_", "-", "_")

// NormalizeColumn trims, lowercases and snake-cases a header name.
func NormalizeColumn(name string) string {
	name = strings.TrimPrefix(name, "\ufeff")
	return headerReplacer.Replace(strings.ToLower(strings.TrimSpace(name)))
}

// NormalizeColumns normalizes every header and then applies aliases.
func NormalizeColumns(header []string) []string {
	out := make([]string, len(header))
	present := make(map[string]bool, len(header))
	for i, h := range header {
		out[i] = NormalizeColumn(h)
		present[out[i]] = true
	}

	for canonical, names := range aliases {
		if present[canonical] {
			continue
		}
		for _, alias := range names {
			idx := indexOf(out, alias)
			if idx < 0 {
				continue
			}
			out[idx] = canonical
			present[canonical] = true
			break
		}
	}
	return out
}

func indexOf(cols []string, name string) int {
	for i, c := range cols {
		if c == name {
			return i
		}
	}
	return -1
}

// ReadCSV parses an export. The header row is required; rows may be
// shorter or longer than the header. The batch fails only when a required
// column is missing.
func ReadCSV(r io.Reader) (*ticket.Table, error) {
	cr := csv.NewReader(r)
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %s (empty input)", ticket.ErrMissingColumn, strings.Join(ticket.RequiredColumns, ", "))
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	table := &ticket.Table{Columns: NormalizeColumns(header)}
	if missing := table.MissingColumns(); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ticket.ErrMissingColumn, strings.Join(missing, ", "))
	}

	line := 1
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", line, err)
		}
		table.Tickets = append(table.Tickets, ticket.FromFields(rowFields(table.Columns, record)))
	}
	return table, nil
}

func rowFields(columns, record []string) map[string]string {
	fields := make(map[string]string, len(columns))
	for i, col := range columns {
		if i < len(record) {
			fields[col] = record[i]
		} else {
			fields[col] = ""
		}
	}
	return fields
}

// ReadFile opens path and parses it with ReadCSV.
func ReadFile(path string) (*ticket.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	table, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("ingest %s: %w", path, err)
	}
	return table, nil
}
