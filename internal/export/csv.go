package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"

	"github.com/godilite/ticket-qc/internal/qc"
	"github.com/godilite/ticket-qc/internal/repository/models"
)

// Derived output columns appended after the input columns.
const (
	ColumnUnifiedText       = "unified_text"
	ColumnMTTRHours         = "mttr_hours"
	ColumnResponseTimeHours = "response_time_hours"
	ColumnTotal             = "qc_total"
	ColumnPercent           = "qc_percent"
	ColumnWeightedPercent   = "qc_weighted_percent"
)

func derivedColumns() []string {
	out := []string{ColumnUnifiedText, ColumnMTTRHours, ColumnResponseTimeHours}
	for _, c := range qc.Checkpoints() {
		out = append(out, c.ID())
	}
	return append(out, ColumnTotal, ColumnPercent, ColumnWeightedPercent)
}

// InputColumns drops input columns that a derived column would overwrite,
// as when re-scoring an already scored export.
func InputColumns(columns []string) []string {
	derived := derivedColumns()
	out := make([]string, 0, len(columns))
	for _, col := range columns {
		if !slices.Contains(derived, col) {
			out = append(out, col)
		}
	}
	return out
}

// Header lists the kept input columns followed by every derived column.
func Header(columns []string) []string {
	return append(InputColumns(columns), derivedColumns()...)
}

func row(columns []string, st models.ScoredTicket) []string {
	out := make([]string, 0, len(columns)+19)
	for _, col := range columns {
		out = append(out, st.Ticket.Raw[col])
	}
	out = append(out, st.UnifiedText, st.MTTR.Format(), st.ResponseTime.Format())
	for _, c := range qc.Checkpoints() {
		out = append(out, strconv.Itoa(st.Record.Score(c)))
	}
	return append(out,
		strconv.Itoa(st.Record.Total),
		strconv.FormatFloat(st.Record.Percent, 'f', 1, 64),
		strconv.FormatFloat(st.Record.WeightedPercent, 'f', 1, 64),
	)
}

// WriteCSV writes the augmented table in input order.
func WriteCSV(w io.Writer, columns []string, rows []models.ScoredTicket) error {
	kept := InputColumns(columns)
	cw := csv.NewWriter(w)
	if err := cw.Write(append(slices.Clone(kept), derivedColumns()...)); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, st := range rows {
		if err := cw.Write(row(kept, st)); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile writes the augmented table to path, replacing any existing file.
func WriteFile(path string, columns []string, rows []models.ScoredTicket) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteCSV(f, columns, rows); err != nil {
		f.Close()
		return fmt.Errorf("export %s: %w", path, err)
	}
	return f.Close()
}
