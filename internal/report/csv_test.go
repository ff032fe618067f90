package report

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/semrd/sdmxclgen/internal/analysis"
	"github.com/semrd/sdmxclgen/internal/domain"
)

func readSemicolonCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Failed to open %s: %v", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = ';'
	records, err := r.ReadAll()
	if err != nil {
		t.Fatalf("Failed to read %s: %v", path, err)
	}
	return records
}

func TestWriteSummary(t *testing.T) {
	tables := &analysis.Tables{Summary: []analysis.SummaryRow{
		{
			CodelistID:   "SDMX:CL_FREQ(2.1)",
			GroupType:    "SINGLE",
			SchemeID:     "FREQ",
			Name:         "Frequency",
			Description:  "Time interval; semicolons must survive",
			Agency:       "SDMX",
			ShortID:      "CL_FREQ",
			Version:      "2.1",
			TotalCodes:   9,
			UniqueCodes:  2,
			GenericCodes: 1,
			SharedCodes:  6,
			Similar:      []string{"SDMX:CL_FREQ(2.0)", "SDMX:CL_FREQ(2.1)"},
			URL:          "https://registry.sdmx.org/sdmx/v2/structure/codelist/SDMX/CL_FREQ/2.1",
		},
		{CodelistID: "ESTAT:CL_UNIT(1.0)", Name: "Unit", Agency: "ESTAT", ShortID: "CL_UNIT", Version: "1.0"},
	}}
	path := filepath.Join(t.TempDir(), "summary.csv")

	if err := WriteSummary(path, tables); err != nil {
		t.Fatalf("WriteSummary failed: %v", err)
	}

	records := readSemicolonCSV(t, path)
	if len(records) != 3 {
		t.Fatalf("Expected header plus 2 rows, got %d records", len(records))
	}
	if !reflect.DeepEqual(records[0], domain.SummaryColumns) {
		t.Errorf("Header = %v, want %v", records[0], domain.SummaryColumns)
	}

	row := records[1]
	if row[0] != "SDMX:CL_FREQ(2.1)" || row[1] != "SINGLE" || row[2] != "FREQ" {
		t.Errorf("Unexpected identity columns: %v", row[:3])
	}
	if row[4] != "Time interval; semicolons must survive" {
		t.Errorf("Separator inside a field was not quoted: %q", row[4])
	}
	if row[8] != "9" || row[9] != "2" || row[10] != "1" || row[11] != "6" {
		t.Errorf("Unexpected count columns: %v", row[8:12])
	}
	if row[12] != "SDMX:CL_FREQ(2.0), SDMX:CL_FREQ(2.1)" {
		t.Errorf("Similar column = %q, want comma-space join", row[12])
	}
}

func TestWriteSummary_EmptyTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.csv")

	if err := WriteSummary(path, &analysis.Tables{}); err != nil {
		t.Fatalf("WriteSummary failed: %v", err)
	}

	records := readSemicolonCSV(t, path)
	if len(records) != 1 {
		t.Errorf("Expected header only, got %d records", len(records))
	}
}

func TestWriteCodes(t *testing.T) {
	codes := []domain.CodeEntry{
		{CodelistID: "SDMX:CL_FREQ(2.1)", Agency: "SDMX", Value: "A", Description: "Annual"},
		{CodelistID: "SDMX:CL_FREQ(2.1)", Agency: "SDMX", Value: "M", Description: "Monthly"},
	}
	path := filepath.Join(t.TempDir(), "codes.csv")

	if err := WriteCodes(path, codes); err != nil {
		t.Fatalf("WriteCodes failed: %v", err)
	}

	records := readSemicolonCSV(t, path)
	if len(records) != 3 {
		t.Fatalf("Expected header plus 2 rows, got %d records", len(records))
	}
	if !reflect.DeepEqual(records[0], domain.CodeColumns) {
		t.Errorf("Header = %v, want %v", records[0], domain.CodeColumns)
	}
	want := []string{"SDMX:CL_FREQ(2.1)", "SDMX", "A", "Annual"}
	if !reflect.DeepEqual(records[1], want) {
		t.Errorf("Row = %v, want %v", records[1], want)
	}
}

func TestWriteSummary_BadPath(t *testing.T) {
	err := WriteSummary(filepath.Join(t.TempDir(), "missing", "summary.csv"), &analysis.Tables{})
	if err == nil {
		t.Fatal("Expected error for unwritable path")
	}
}
