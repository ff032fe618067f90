package analysis

import (
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/semrd/sdmxclgen/internal/domain"
)

// StatParams tunes the read-only group statistics report.
type StatParams struct {
	// TopPercent selects the share of codelists, by total code volume,
	// shown in the top-volume table. Valid range 1 to 100.
	TopPercent int

	// FrequentCount is the number of most frequent codes reported.
	FrequentCount int

	// NonspecificThreshold is the occurrence count a nonspecific code
	// must strictly exceed to be reported.
	NonspecificThreshold int
}

// InitialStatParams are the parameters for the report over the full corpus.
func InitialStatParams() StatParams {
	return StatParams{TopPercent: 10, FrequentCount: 20, NonspecificThreshold: 4}
}

// FilteredStatParams are the parameters for the report over the active
// set left after classification. Small active sets are shown whole.
func FilteredStatParams(codelistCount int) StatParams {
	p := StatParams{TopPercent: 50, FrequentCount: 50, NonspecificThreshold: 1}
	if codelistCount <= 6 {
		p.TopPercent = 100
	}
	return p
}

// CodeFrequency is one code value with its occurrence count across the
// analyzed codelists.
type CodeFrequency struct {
	Value string
	Count int
}

// TopByVolume returns the ids of the top percent of summary rows ranked
// by total code count, largest first. Ties break on codelist id so the
// report is stable. The row count is rounded up, so a non-zero percent
// over a non-empty table always selects at least one row.
func TopByVolume(t *Tables, percent int) ([]string, error) {
	if percent < 1 || percent > 100 {
		return nil, fmt.Errorf("top percent must be between 1 and 100, got %d", percent)
	}
	if len(t.Summary) == 0 {
		return nil, nil
	}

	rows := make([]SummaryRow, len(t.Summary))
	copy(rows, t.Summary)
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].TotalCodes != rows[j].TotalCodes {
			return rows[i].TotalCodes > rows[j].TotalCodes
		}
		return rows[i].CodelistID < rows[j].CodelistID
	})

	n := int(math.Ceil(float64(len(rows)) * float64(percent) / 100))
	ids := make([]string, 0, n)
	for _, row := range rows[:n] {
		ids = append(ids, row.CodelistID)
	}
	return ids, nil
}

// MostFrequentCodes returns the n most frequent code values in the
// universe, most frequent first, ties broken by value ascending.
func MostFrequentCodes(u Universe, n int) []CodeFrequency {
	freqs := codeFrequencies(u)
	if n < len(freqs) {
		freqs = freqs[:n]
	}
	return freqs
}

// NonspecificCodes returns the nonspecific code values whose occurrence
// count strictly exceeds the threshold, ordered like MostFrequentCodes.
// A code is nonspecific when it is all digits, or when it starts with an
// underscore and contains an upper-case letter.
func NonspecificCodes(u Universe, threshold int) []CodeFrequency {
	var out []CodeFrequency
	for _, f := range codeFrequencies(u) {
		if f.Count > threshold && isNonspecific(f.Value) {
			out = append(out, f)
		}
	}
	return out
}

// CodeUniquenessRatio counts the non-generic code occurrences in the
// universe and the values among them occurring exactly once. The ratio
// is singletons over total occurrences, 0 when the non-generic universe
// is empty.
func CodeUniquenessRatio(u Universe) (total, singletons int, ratio float64) {
	counts := make(map[string]int)
	for _, code := range u.AllCodes {
		if u.IsGeneric(code) {
			continue
		}
		counts[code]++
		total++
	}
	for _, count := range counts {
		if count == 1 {
			singletons++
		}
	}
	if total > 0 {
		ratio = float64(singletons) / float64(total)
	}
	return total, singletons, ratio
}

// GroupSummary aggregates the classification outcome over the
// back-filled summary rows.
type GroupSummary struct {
	// Groups is the number of distinct group scheme ids.
	Groups int

	// Grouped is the total number of codelists across all groups.
	Grouped int

	// PerGroup maps each group scheme id to its member count.
	PerGroup map[string]int

	// Singles is the number of SINGLE codelists.
	Singles int
}

// GroupStatistics counts groups, group members and singles over the
// summary rows. Rows not yet classified carry an empty GroupType and
// are left out.
func GroupStatistics(t *Tables) GroupSummary {
	s := GroupSummary{PerGroup: make(map[string]int)}
	for _, row := range t.Summary {
		switch row.GroupType {
		case string(domain.ClassGroup):
			s.PerGroup[row.SchemeID]++
			s.Grouped++
		case string(domain.ClassSingle):
			s.Singles++
		}
	}
	s.Groups = len(s.PerGroup)
	return s
}

// ReportStatistics logs the read-only statistics report for one set of
// tables: top codelists by volume, most frequent codes and nonspecific
// codes.
func ReportStatistics(t *Tables, params StatParams) error {
	top, err := TopByVolume(t, params.TopPercent)
	if err != nil {
		return err
	}
	slog.Info("Top codelists by code volume", "percent", params.TopPercent, "codelists", top)

	frequent := MostFrequentCodes(t.Universe, params.FrequentCount)
	slog.Info("Most frequent codes", "count", len(frequent), "codes", formatFrequencies(frequent))

	nonspecific := NonspecificCodes(t.Universe, params.NonspecificThreshold)
	slog.Info("Nonspecific codes above threshold",
		"threshold", params.NonspecificThreshold, "codes", formatFrequencies(nonspecific))

	return nil
}

func codeFrequencies(u Universe) []CodeFrequency {
	counts := make(map[string]int)
	for _, code := range u.AllCodes {
		counts[code]++
	}
	freqs := make([]CodeFrequency, 0, len(counts))
	for value, count := range counts {
		freqs = append(freqs, CodeFrequency{Value: value, Count: count})
	}
	sort.Slice(freqs, func(i, j int) bool {
		if freqs[i].Count != freqs[j].Count {
			return freqs[i].Count > freqs[j].Count
		}
		return freqs[i].Value < freqs[j].Value
	})
	return freqs
}

func isNonspecific(code string) bool {
	if code == "" {
		return false
	}
	allDigits := true
	for _, r := range code {
		if !unicode.IsDigit(r) {
			allDigits = false
			break
		}
	}
	if allDigits {
		return true
	}
	return strings.HasPrefix(code, "_") && strings.ContainsFunc(code, unicode.IsUpper)
}

func formatFrequencies(freqs []CodeFrequency) []string {
	out := make([]string, len(freqs))
	for i, f := range freqs {
		out[i] = fmt.Sprintf("%s=%d", f.Value, f.Count)
	}
	return out
}
