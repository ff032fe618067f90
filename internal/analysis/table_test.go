package analysis

import (
	"testing"

	"github.com/semrd/sdmxclgen/internal/domain"
)

func TestBuildTables(t *testing.T) {
	codelists := []*domain.Codelist{
		makeCodelist("SDMX:CL_FREQ(2.1)", "A", "M", "_Z", "ONLY"),
		makeCodelist("ESTAT:CL_UNIT(1.0)", "A", "M", "KG"),
	}

	tables := BuildTables(codelists)

	if len(tables.Summary) != 2 {
		t.Fatalf("Expected 2 summary rows, got %d", len(tables.Summary))
	}
	if len(tables.Codes) != 7 {
		t.Errorf("Expected 7 code entries, got %d", len(tables.Codes))
	}

	row := tables.Row("SDMX:CL_FREQ(2.1)")
	if row == nil {
		t.Fatal("Summary row missing")
	}
	want := SummaryRow{TotalCodes: 4, UniqueCodes: 1, GenericCodes: 1, SharedCodes: 2}
	if row.TotalCodes != want.TotalCodes || row.UniqueCodes != want.UniqueCodes ||
		row.GenericCodes != want.GenericCodes || row.SharedCodes != want.SharedCodes {
		t.Errorf("Row counts = %+v, want %+v", *row, want)
	}
	if row.Agency != "SDMX" || row.ShortID != "CL_FREQ" {
		t.Errorf("Row metadata not carried over: %+v", *row)
	}
	if row.GroupType != "" || row.SchemeID != "" {
		t.Errorf("Expected classification columns empty before classification, got %+v", *row)
	}
}

func TestBuildTables_DuplicateCodesCountedOnce(t *testing.T) {
	codelists := []*domain.Codelist{
		makeCodelist("SDMX:CL_FREQ(2.1)", "A", "A", "M"),
	}

	tables := BuildTables(codelists)

	row := tables.Row("SDMX:CL_FREQ(2.1)")
	if row.TotalCodes != 2 {
		t.Errorf("Expected duplicate counted once in statistics, got total %d", row.TotalCodes)
	}
	// the detail table still carries every entry
	if len(tables.Codes) != 3 {
		t.Errorf("Expected 3 detail entries, got %d", len(tables.Codes))
	}
}

func TestRow_Unknown(t *testing.T) {
	tables := BuildTables(nil)
	if tables.Row("SDMX:CL_NOPE(1.0)") != nil {
		t.Error("Expected nil for unknown codelist id")
	}
}

func TestMissingValueCounts(t *testing.T) {
	tables := &Tables{Summary: []SummaryRow{
		{CodelistID: "a", Name: "A", Description: "", Agency: "SDMX", ShortID: "CL_A", Version: "1.0", URL: ""},
		{CodelistID: "b", Name: "", Description: "  ", Agency: "ESTAT", ShortID: "CL_B", Version: "1.0", URL: "http://x"},
	}}

	counts := tables.MissingValueCounts()

	if counts["Codelist Description"] != 2 {
		t.Errorf("Expected 2 missing descriptions (whitespace counts as missing), got %d", counts["Codelist Description"])
	}
	if counts["CL Name"] != 1 {
		t.Errorf("Expected 1 missing name, got %d", counts["CL Name"])
	}
	if counts["URL"] != 1 {
		t.Errorf("Expected 1 missing URL, got %d", counts["URL"])
	}
	if _, ok := counts["GroupType"]; ok {
		t.Error("Classification columns must not be counted")
	}
	if counts["CodelistID"] != 0 {
		t.Errorf("Expected no missing ids, got %d", counts["CodelistID"])
	}
}
