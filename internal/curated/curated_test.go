package curated

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleYAML = `singles:
  - "SDMX:CL_FREQ(2.1)"
  - "SDMX:CL_DECIMALS(1.0)"
  - "SDMX:CL_FREQ(2.1)"
groups:
  area:
    name: "Countries"
    codelists:
      - "SDMX:CL_AREA(2.0.1)"
      - "ESTAT:CL_AREA(1.8)"
  obsStatus:
    name: "Observation status"
    codelists:
      - "SDMX:CL_OBS_STATUS(2.2)"
      - "SDMX:CL_DECIMALS(1.0)"
`

func writeTables(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "curated.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write curated file: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	tables, err := Load(writeTables(t, sampleYAML))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(tables.Singles) != 3 {
		t.Errorf("Expected 3 single entries, got %d", len(tables.Singles))
	}
	if len(tables.Groups) != 2 {
		t.Fatalf("Expected 2 groups, got %d", len(tables.Groups))
	}
	area := tables.Groups["area"]
	if area.Name != "Countries" {
		t.Errorf("Expected group name Countries, got %q", area.Name)
	}
	if len(area.Codelists) != 2 {
		t.Errorf("Expected 2 area members, got %d", len(area.Codelists))
	}
}

func TestLoad_MissingFile(t *testing.T) {
	tables, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Expected empty tables for missing file, got error: %v", err)
	}
	if len(tables.Singles) != 0 || len(tables.Groups) != 0 {
		t.Errorf("Expected empty tables, got %+v", tables)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeTables(t, "singles: [unterminated"))
	if err == nil {
		t.Fatal("Expected error for invalid YAML")
	}
}

func TestClone_Isolation(t *testing.T) {
	tables, err := Load(writeTables(t, sampleYAML))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	clone := tables.Clone()
	clone.Singles[0] = "mutated"
	clone.Groups["area"] = Group{Name: "mutated", Codelists: []string{"mutated"}}

	if tables.Singles[0] == "mutated" {
		t.Error("Clone shares the singles slice with the original")
	}
	if tables.Groups["area"].Name == "mutated" {
		t.Error("Clone shares the groups map with the original")
	}
}

func TestDuplicateSingles(t *testing.T) {
	tables := &Tables{Singles: []string{"a", "b", "a", "c", "b", "a"}}

	dups := tables.DuplicateSingles()
	if len(dups) != 2 {
		t.Fatalf("Expected 2 duplicates, got %v", dups)
	}
	if dups[0] != "a" || dups[1] != "b" {
		t.Errorf("Expected first-occurrence order [a b], got %v", dups)
	}
}

func TestConflicts(t *testing.T) {
	tables, err := Load(writeTables(t, sampleYAML))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	conflicts := tables.Conflicts()
	if len(conflicts) != 1 {
		t.Fatalf("Expected 1 conflict, got %v", conflicts)
	}
	if conflicts["SDMX:CL_DECIMALS(1.0)"] != "obsStatus" {
		t.Errorf("Expected decimals conflict with obsStatus, got %v", conflicts)
	}
}
