package analysis

import (
	"log/slog"

	"github.com/semrd/sdmxclgen/internal/domain"
)

// CodeSet builds the set of distinct code values of one codelist and
// reports the values that occur more than once. Duplicates are flagged,
// never silently merged.
func CodeSet(cl *domain.Codelist) (set map[string]struct{}, duplicates []string) {
	set = make(map[string]struct{}, len(cl.Codes))
	dupSeen := make(map[string]struct{})
	for _, entry := range cl.Codes {
		if _, ok := set[entry.Value]; ok {
			if _, reported := dupSeen[entry.Value]; !reported {
				dupSeen[entry.Value] = struct{}{}
				duplicates = append(duplicates, entry.Value)
			}
			continue
		}
		set[entry.Value] = struct{}{}
	}
	return set, duplicates
}

// Partition splits the target codelist's code set into three disjoint
// parts: generic codes, codes unique to the target, and (implicitly) the
// shared remainder. Generic membership is decided first and never
// revisited, so a code that is both generic and otherwise unique counts
// as generic.
//
// remaining is codeSet with the generic subset removed; uniqueSubset are
// the remaining codes absent from every other codelist. The caller
// derives shared = total - len(genericSubset) - len(uniqueSubset).
//
// globalDistinct is the distinct-code count of the whole universe; when
// the union of other codelists' codes exceeds it, an upstream
// inconsistency is logged but execution continues; the statistics are
// advisory.
func Partition(codelists []*domain.Codelist, generic map[string]struct{}, globalDistinct int, targetID string, codeSet map[string]struct{}) (remaining, genericSubset, uniqueSubset map[string]struct{}) {
	genericSubset = make(map[string]struct{})
	remaining = make(map[string]struct{}, len(codeSet))
	for code := range codeSet {
		if _, ok := generic[code]; ok {
			genericSubset[code] = struct{}{}
		} else {
			remaining[code] = struct{}{}
		}
	}

	otherCodes := make(map[string]struct{})
	for _, cl := range codelists {
		if cl.ID == targetID {
			continue
		}
		for _, entry := range cl.Codes {
			otherCodes[entry.Value] = struct{}{}
		}
	}

	if len(otherCodes) > globalDistinct {
		slog.Error("Inconsistent code counts: other codelists exceed the global distinct count",
			"codelist", targetID, "other_codes", len(otherCodes), "global_distinct", globalDistinct)
	}

	uniqueSubset = make(map[string]struct{})
	for code := range remaining {
		if _, ok := otherCodes[code]; !ok {
			uniqueSubset[code] = struct{}{}
		}
	}

	return remaining, genericSubset, uniqueSubset
}

// Stats computes the overlap statistics of one codelist against the
// given active set. The partition invariant
// Unique + Generic + Shared == Total holds by construction.
func Stats(codelists []*domain.Codelist, universe Universe, target *domain.Codelist) domain.OverlapStats {
	codeSet, _ := CodeSet(target)
	total := len(codeSet)
	_, genericSubset, uniqueSubset := Partition(codelists, universe.Generic, universe.DistinctCount(), target.ID, codeSet)
	return domain.OverlapStats{
		TotalCodes:   total,
		UniqueCodes:  len(uniqueSubset),
		GenericCodes: len(genericSubset),
		SharedCodes:  total - len(uniqueSubset) - len(genericSubset),
	}
}
