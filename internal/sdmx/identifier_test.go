package sdmx

import (
	"errors"
	"testing"
)

func TestParseRef(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		want    Ref
		wantErr bool
	}{
		{
			name: "plain codelist",
			id:   "ESTAT:CL_COVERAGE_POP(1.1.0)",
			want: Ref{Agency: "ESTAT", AgencyRank: 1, Name: "COVERAGE_POP", Version: "1.1.0", VersionParts: []int{1, 1, 0}},
		},
		{
			name: "simple codelist prefix",
			id:   "ESTAT:SCL_WSTATUS(1.0)",
			want: Ref{Agency: "ESTAT", AgencyRank: 1, Name: "WSTATUS", Version: "1.0", VersionParts: []int{1, 0}},
		},
		{
			name: "trailing digits absorbed",
			id:   "ESTAT:CL_SECTOR93(1.4)",
			want: Ref{Agency: "ESTAT", AgencyRank: 1, Name: "SECTOR", Version: "1.4", VersionParts: []int{1, 4}},
		},
		{
			name: "digits after trailing underscore",
			id:   "SDMX:CL_COFOG_1999(1.0)",
			want: Ref{Agency: "SDMX", AgencyRank: 0, Name: "COFOG_", Version: "1.0", VersionParts: []int{1, 0}},
		},
		{
			name: "unknown agency ranks after known ones",
			id:   "WB:CL_INCOME(2.0)",
			want: Ref{Agency: "WB", AgencyRank: len(AgencyOrder), Name: "INCOME", Version: "2.0", VersionParts: []int{2, 0}},
		},
		{
			name:    "missing version parentheses",
			id:      "ESTAT:CL_FREQ",
			wantErr: true,
		},
		{
			name:    "non-integer version segment",
			id:      "ESTAT:CL_FREQ(1.x)",
			wantErr: true,
		},
		{
			name:    "lowercase short name rejected",
			id:      "ESTAT:CL_freq(1.0)",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRef(tt.id)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Expected error for %q", tt.id)
				}
				if !errors.Is(err, ErrInvalidIdentifier) {
					t.Errorf("Expected ErrInvalidIdentifier, got %v", err)
				}
				if got.AgencyRank != len(AgencyOrder) {
					t.Errorf("Expected sentinel rank %d, got %d", len(AgencyOrder), got.AgencyRank)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseRef(%q) failed: %v", tt.id, err)
			}
			if got.Agency != tt.want.Agency || got.AgencyRank != tt.want.AgencyRank || got.Name != tt.want.Name || got.Version != tt.want.Version {
				t.Errorf("ParseRef(%q) = %+v, want %+v", tt.id, got, tt.want)
			}
			if len(got.VersionParts) != len(tt.want.VersionParts) {
				t.Fatalf("VersionParts = %v, want %v", got.VersionParts, tt.want.VersionParts)
			}
			for i := range got.VersionParts {
				if got.VersionParts[i] != tt.want.VersionParts[i] {
					t.Errorf("VersionParts = %v, want %v", got.VersionParts, tt.want.VersionParts)
					break
				}
			}
		})
	}
}

func TestRefLess(t *testing.T) {
	mustParse := func(id string) Ref {
		t.Helper()
		ref, err := ParseRef(id)
		if err != nil {
			t.Fatalf("ParseRef(%q) failed: %v", id, err)
		}
		return ref
	}

	tests := []struct {
		name string
		a, b string
		want bool
	}{
		{"agency rank wins", "SDMX:CL_AREA(2.0.1)", "ESTAT:CL_AREA(1.8)", true},
		{"same agency lower version first", "ESTAT:CL_AREA(1.8)", "ESTAT:CL_AREA(1.17)", true},
		{"version prefix sorts first", "SDMX:CL_FREQ(2)", "SDMX:CL_FREQ(2.1)", true},
		{"equal refs not less", "SDMX:CL_FREQ(2.1)", "SDMX:CL_FREQ(2.1)", false},
		{"unknown agency after known", "UNSD:CL_AREA(1.0)", "WB:CL_AREA(1.0)", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mustParse(tt.a).Less(mustParse(tt.b)); got != tt.want {
				t.Errorf("Less(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestRefLess_SentinelRanksLast(t *testing.T) {
	valid, err := ParseRef("UIS:CL_AREA(1.0)")
	if err != nil {
		t.Fatalf("ParseRef failed: %v", err)
	}
	sentinel, _ := ParseRef("not-an-id")

	if !valid.Less(sentinel) {
		t.Error("Expected valid ref to sort before sentinel")
	}
	if sentinel.Less(valid) {
		t.Error("Expected sentinel to sort after valid ref")
	}
}
