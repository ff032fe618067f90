// Package analysis implements the codelist analysis core: the code
// universe, per-codelist overlap partitioning, the iterative
// classification engine and the read-only statistics reporters.
package analysis

import (
	"regexp"
	"strconv"

	"github.com/semrd/sdmxclgen/internal/domain"
)

// genericPattern matches placeholder codes of the form underscore plus a
// single word character, e.g. "_Z" (not applicable) or "_T" (total).
var genericPattern = regexp.MustCompile(`^_\w$`)

// Universe is the multiset of all code values across all codelists plus
// the derived set of generic codes. Generic codes recur by convention
// (placeholders, totals, small numerics), so they are excluded from
// overlap reasoning as noise.
type Universe struct {
	// AllCodes is every code value in codelist-then-entry order,
	// duplicates included.
	AllCodes []string

	// Generic holds codes matching the placeholder pattern plus the
	// literals "1" through "10". The numeric literals are added
	// unconditionally, whether or not they occur in AllCodes.
	Generic map[string]struct{}
}

// BuildUniverse collects the code universe over the given codelists.
func BuildUniverse(codelists []*domain.Codelist) Universe {
	u := Universe{Generic: make(map[string]struct{})}

	for _, cl := range codelists {
		for _, entry := range cl.Codes {
			u.AllCodes = append(u.AllCodes, entry.Value)
		}
	}

	seen := make(map[string]struct{}, len(u.AllCodes))
	for _, code := range u.AllCodes {
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}
		if genericPattern.MatchString(code) {
			u.Generic[code] = struct{}{}
		}
	}

	for n := 1; n <= 10; n++ {
		u.Generic[strconv.Itoa(n)] = struct{}{}
	}

	return u
}

// DistinctCount returns the number of distinct code values in AllCodes.
func (u Universe) DistinctCount() int {
	seen := make(map[string]struct{}, len(u.AllCodes))
	for _, code := range u.AllCodes {
		seen[code] = struct{}{}
	}
	return len(seen)
}

// IsGeneric reports whether a code value belongs to the generic set.
func (u Universe) IsGeneric(code string) bool {
	_, ok := u.Generic[code]
	return ok
}
