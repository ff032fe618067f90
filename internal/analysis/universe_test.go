package analysis

import (
	"strings"
	"testing"

	"github.com/semrd/sdmxclgen/internal/domain"
)

// makeCodelist builds a minimal codelist for analysis tests. The id must
// follow the "AGENCY:SHORTNAME(VERSION)" layout.
func makeCodelist(id string, codes ...string) *domain.Codelist {
	agency, rest, _ := strings.Cut(id, ":")
	shortID, _, _ := strings.Cut(rest, "(")
	cl := &domain.Codelist{
		ID:      id,
		Name:    shortID,
		Agency:  agency,
		ShortID: shortID,
	}
	for _, code := range codes {
		cl.Codes = append(cl.Codes, domain.CodeEntry{
			CodelistID:  id,
			Agency:      agency,
			Value:       code,
			Description: "desc " + code,
		})
	}
	return cl
}

func TestBuildUniverse(t *testing.T) {
	codelists := []*domain.Codelist{
		makeCodelist("SDMX:CL_FREQ(2.1)", "A", "M", "_Z"),
		makeCodelist("ESTAT:CL_UNIT(1.0)", "M", "_T", "KG"),
	}

	u := BuildUniverse(codelists)

	if len(u.AllCodes) != 6 {
		t.Errorf("Expected 6 code occurrences, got %d", len(u.AllCodes))
	}
	if u.DistinctCount() != 5 {
		t.Errorf("Expected 5 distinct codes, got %d", u.DistinctCount())
	}
}

func TestBuildUniverse_GenericCodes(t *testing.T) {
	u := BuildUniverse([]*domain.Codelist{
		makeCodelist("SDMX:CL_FREQ(2.1)", "_Z", "_T", "_XX", "A", "10"),
	})

	tests := []struct {
		code string
		want bool
	}{
		{"_Z", true},
		{"_T", true},
		{"_XX", false}, // two chars after the underscore
		{"A", false},
		{"10", true},
	}
	for _, tt := range tests {
		if got := u.IsGeneric(tt.code); got != tt.want {
			t.Errorf("IsGeneric(%q) = %v, want %v", tt.code, got, tt.want)
		}
	}
}

func TestBuildUniverse_NumericLiteralsAlwaysGeneric(t *testing.T) {
	u := BuildUniverse([]*domain.Codelist{makeCodelist("SDMX:CL_FREQ(2.1)", "A")})

	for _, code := range []string{"1", "5", "10"} {
		if !u.IsGeneric(code) {
			t.Errorf("Expected literal %q to be generic even when absent from the corpus", code)
		}
	}
	if u.IsGeneric("11") {
		t.Error("Expected literal 11 outside the 1-10 range to be non-generic")
	}
	if u.IsGeneric("0") {
		t.Error("Expected literal 0 outside the 1-10 range to be non-generic")
	}
}

func TestBuildUniverse_Empty(t *testing.T) {
	u := BuildUniverse(nil)

	if len(u.AllCodes) != 0 {
		t.Errorf("Expected empty universe, got %d codes", len(u.AllCodes))
	}
	if u.DistinctCount() != 0 {
		t.Errorf("Expected 0 distinct codes, got %d", u.DistinctCount())
	}
	// the ten numeric literals are still seeded
	if len(u.Generic) != 10 {
		t.Errorf("Expected 10 generic literals, got %d", len(u.Generic))
	}
}
