// Package report writes the analysis tables as semicolon-separated CSV
// files and surfaces missing-value counts.
package report

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/semrd/sdmxclgen/internal/analysis"
	"github.com/semrd/sdmxclgen/internal/domain"
)

// similarSeparator joins the ids of the Similar Codelists column.
const similarSeparator = ", "

// WriteSummary writes the codelist summary table to path. Column order
// follows domain.SummaryColumns.
func WriteSummary(path string, t *analysis.Tables) error {
	rows := make([][]string, 0, len(t.Summary))
	for _, row := range t.Summary {
		rows = append(rows, []string{
			row.CodelistID,
			row.GroupType,
			row.SchemeID,
			row.Name,
			row.Description,
			row.Agency,
			row.ShortID,
			row.Version,
			strconv.Itoa(row.TotalCodes),
			strconv.Itoa(row.UniqueCodes),
			strconv.Itoa(row.GenericCodes),
			strconv.Itoa(row.SharedCodes),
			strings.Join(row.Similar, similarSeparator),
			row.URL,
		})
	}
	return writeCSV(path, domain.SummaryColumns, rows)
}

// WriteCodes writes the flat code detail table to path. Column order
// follows domain.CodeColumns.
func WriteCodes(path string, codes []domain.CodeEntry) error {
	rows := make([][]string, 0, len(codes))
	for _, code := range codes {
		rows = append(rows, []string{code.CodelistID, code.Agency, code.Value, code.Description})
	}
	return writeCSV(path, domain.CodeColumns, rows)
}

// LogMissingValues logs one line per summary column with at least one
// empty cell. Silent when the table is complete.
func LogMissingValues(t *analysis.Tables) {
	counts := t.MissingValueCounts()
	if len(counts) == 0 {
		slog.Info("No missing values in summary table", "rows", len(t.Summary))
		return
	}
	for _, col := range domain.SummaryColumns {
		if n, ok := counts[col]; ok {
			slog.Warn("Missing values in summary column", "column", col, "count", n, "rows", len(t.Summary))
		}
	}
}

func writeCSV(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Comma = ';'

	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write header to %s: %w", path, err)
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write row to %s: %w", path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	return nil
}
