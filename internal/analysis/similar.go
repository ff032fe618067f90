package analysis

import (
	"log/slog"
	"sort"

	"github.com/semrd/sdmxclgen/internal/domain"
	"github.com/semrd/sdmxclgen/internal/sdmx"
)

// ComputeSimilar back-fills each codelist's Similar field with the ids
// of codelists sharing its grammar short name (same subject, different
// version or agency). The list includes the codelist's own id and is
// sorted by (agency rank, version tuple); codelists whose id fails the
// identifier grammar get no similar list. Returns the distinct similar
// groups for reporting.
func ComputeSimilar(codelists []*domain.Codelist) [][]string {
	names := make(map[string]string, len(codelists))
	refs := make(map[string]sdmx.Ref, len(codelists))
	for _, cl := range codelists {
		ref, err := sdmx.ParseRef(cl.ID)
		if err != nil {
			slog.Error("Identifier grammar mismatch", "id", cl.ID, "error", err)
			refs[cl.ID] = ref
			continue
		}
		names[cl.ID] = ref.Name
		refs[cl.ID] = ref
	}

	seen := make(map[string]bool)
	var groups [][]string

	for _, cl := range codelists {
		name, ok := names[cl.ID]
		if !ok {
			cl.Similar = nil
			continue
		}

		var similar []string
		for _, other := range codelists {
			if other.ID != cl.ID && names[other.ID] == name {
				similar = append(similar, other.ID)
			}
		}
		if len(similar) == 0 {
			cl.Similar = nil
			continue
		}

		similar = append(similar, cl.ID)
		sort.SliceStable(similar, func(i, j int) bool {
			return refs[similar[i]].Less(refs[similar[j]])
		})
		cl.Similar = similar

		key := joinKey(similar)
		if !seen[key] {
			seen[key] = true
			groups = append(groups, similar)
		}
	}

	sort.Slice(groups, func(i, j int) bool {
		return joinKey(groups[i]) < joinKey(groups[j])
	})
	return groups
}

func joinKey(ids []string) string {
	key := ""
	for _, id := range ids {
		key += id + "\x00"
	}
	return key
}
