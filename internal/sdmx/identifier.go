package sdmx

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	// ErrInvalidIdentifier indicates the id does not match the codelist
	// identifier grammar AGENCY:(S)CL_SHORTNAME(VERSION).
	ErrInvalidIdentifier = errors.New("invalid codelist identifier format")

	// Matches: ESTAT:CL_COVERAGE_POP(1.1.0) or ESTAT:SCL_WSTATUS(1.0).
	// A trailing digit run before the parenthesis (CL_ACTIVITY93,
	// CL_COFOG_1999) is absorbed outside the short name, matching how the
	// curated tables were authored.
	identifierPattern = regexp.MustCompile(`^(.*?):S?CL_([A-Z_]+?)(?:\d+)?\(([^)]+)\)$`)
)

// AgencyOrder is the canonical agency precedence used when ranking
// codelists that share a short name. Agencies not listed rank last.
var AgencyOrder = []string{"SDMX", "ESTAT", "IMF", "UNSD", "IAEG-SDGs", "UIS"}

// Ref is a decomposed codelist identifier.
type Ref struct {
	// Agency is the agency prefix, e.g. "ESTAT".
	Agency string

	// AgencyRank is the agency's position in AgencyOrder, or
	// len(AgencyOrder) for unknown agencies and parse failures.
	AgencyRank int

	// Name is the grammar short name, e.g. "COVERAGE_POP".
	Name string

	// Version is the version string as written, e.g. "1.1.0".
	Version string

	// VersionParts is the version split into integers, e.g. [1 1 0].
	// Empty for parse failures.
	VersionParts []int
}

// ParseRef parses a full codelist identifier into its parts.
// On failure it returns ErrInvalidIdentifier together with a sentinel Ref
// that ranks after every well-formed identifier, so callers can keep
// sorting and joining without special cases.
func ParseRef(id string) (Ref, error) {
	matches := identifierPattern.FindStringSubmatch(id)
	if matches == nil {
		return sentinelRef(), fmt.Errorf("%w: %q", ErrInvalidIdentifier, id)
	}

	version := matches[3]
	parts, err := parseVersion(version)
	if err != nil {
		return sentinelRef(), fmt.Errorf("%w: %q: %v", ErrInvalidIdentifier, id, err)
	}

	return Ref{
		Agency:       matches[1],
		AgencyRank:   agencyRank(matches[1]),
		Name:         matches[2],
		Version:      version,
		VersionParts: parts,
	}, nil
}

// sentinelRef is the degraded result for unparseable identifiers.
// It sorts strictly after every valid Ref; ties between sentinels are
// left to input order.
func sentinelRef() Ref {
	return Ref{AgencyRank: len(AgencyOrder)}
}

// agencyRank returns the agency's position in AgencyOrder, or
// len(AgencyOrder) if the agency is not listed.
func agencyRank(agency string) int {
	for i, a := range AgencyOrder {
		if a == agency {
			return i
		}
	}
	return len(AgencyOrder)
}

// parseVersion splits a dot-separated version into integers.
func parseVersion(version string) ([]int, error) {
	if version == "" {
		return []int{0}, nil
	}
	segments := strings.Split(version, ".")
	parts := make([]int, len(segments))
	for i, seg := range segments {
		n, err := strconv.Atoi(seg)
		if err != nil {
			return nil, fmt.Errorf("non-integer version segment %q", seg)
		}
		parts[i] = n
	}
	return parts, nil
}

// Less orders refs by (agency rank, version tuple). Used when sorting
// similar codelists: canonical agencies first, then ascending versions.
func (r Ref) Less(other Ref) bool {
	if r.AgencyRank != other.AgencyRank {
		return r.AgencyRank < other.AgencyRank
	}
	return compareVersions(r.VersionParts, other.VersionParts) < 0
}

// compareVersions compares two version tuples segment by segment;
// a shorter tuple that is a prefix of the longer one sorts first.
func compareVersions(a, b []int) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}
