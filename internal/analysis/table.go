package analysis

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/semrd/sdmxclgen/internal/domain"
)

// SummaryRow is one row of the codelist summary table. GroupType and
// SchemeID stay empty until the classification engine back-fills them.
type SummaryRow struct {
	CodelistID   string
	GroupType    string
	SchemeID     string
	Name         string
	Description  string
	Agency       string
	ShortID      string
	Version      string
	TotalCodes   int
	UniqueCodes  int
	GenericCodes int
	SharedCodes  int
	Similar      []string
	URL          string
}

// Tables bundles the two analysis outputs, the per-codelist summary
// table and the flat code detail table, together with the universe
// they were computed from.
type Tables struct {
	Summary  []SummaryRow
	Codes    []domain.CodeEntry
	Universe Universe
}

// BuildTables computes overlap statistics for every codelist and
// assembles the summary and code detail tables. Duplicate code values
// inside a codelist are flagged (the detail table still carries every
// entry; the statistics count distinct values).
func BuildTables(codelists []*domain.Codelist) *Tables {
	universe := BuildUniverse(codelists)
	globalDistinct := universe.DistinctCount()

	slog.Info("Code universe built",
		"codelists", len(codelists),
		"total_codes", len(universe.AllCodes),
		"distinct_codes", globalDistinct,
		"generic_codes", sortedKeys(universe.Generic))

	t := &Tables{Universe: universe}

	for _, cl := range codelists {
		codeSet, duplicates := CodeSet(cl)
		if len(duplicates) > 0 {
			slog.Warn("Duplicate codes in codelist", "codelist", cl.ID, "codes", duplicates)
		}

		t.Codes = append(t.Codes, cl.Codes...)

		total := len(codeSet)
		_, genericSubset, uniqueSubset := Partition(codelists, universe.Generic, globalDistinct, cl.ID, codeSet)

		t.Summary = append(t.Summary, SummaryRow{
			CodelistID:   cl.ID,
			Name:         cl.Name,
			Description:  cl.Description,
			Agency:       cl.Agency,
			ShortID:      cl.ShortID,
			Version:      cl.Version,
			TotalCodes:   total,
			UniqueCodes:  len(uniqueSubset),
			GenericCodes: len(genericSubset),
			SharedCodes:  total - len(uniqueSubset) - len(genericSubset),
			Similar:      cl.Similar,
			URL:          cl.SourceURL,
		})
	}

	return t
}

// Row returns the summary row for a codelist id, or nil.
func (t *Tables) Row(codelistID string) *SummaryRow {
	for i := range t.Summary {
		if t.Summary[i].CodelistID == codelistID {
			return &t.Summary[i]
		}
	}
	return nil
}

// MissingValueCounts reports, per summary column, how many rows carry an
// empty value. GroupType and SchemeID are legitimately empty for
// unclassified codelists and are skipped.
func (t *Tables) MissingValueCounts() map[string]int {
	counts := make(map[string]int)
	add := func(col, val string) {
		if strings.TrimSpace(val) == "" {
			counts[col]++
		}
	}
	for _, row := range t.Summary {
		add("CodelistID", row.CodelistID)
		add("CL Name", row.Name)
		add("Codelist Description", row.Description)
		add("Agency", row.Agency)
		add("CLID", row.ShortID)
		add("Ver", row.Version)
		add("URL", row.URL)
	}
	return counts
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
