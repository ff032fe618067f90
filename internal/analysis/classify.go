package analysis

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/semrd/sdmxclgen/internal/curated"
	"github.com/semrd/sdmxclgen/internal/domain"
	"github.com/semrd/sdmxclgen/internal/sdmx"
)

// Engine applies the curated classification tables and then eliminates
// zero-overlap codelists iteratively until a fixed point. The engine
// owns a private clone of the curated tables, so one Engine can serve
// several runs without cross-talk.
type Engine struct {
	curated *curated.Tables
}

// NewEngine builds an engine over a clone of the given curated tables.
func NewEngine(tables *curated.Tables) *Engine {
	return &Engine{curated: tables.Clone()}
}

// Result is the outcome of one classification run.
type Result struct {
	// Excluded are the ids removed from overlap analysis: curated
	// singles, curated group members and auto-eliminated codelists.
	Excluded map[string]struct{}

	// AutoExcluded are the excluded ids not covered by curation, sorted.
	AutoExcluded []string

	// Active are the codelists that survived elimination, input order.
	Active []*domain.Codelist

	// Rounds is the number of elimination passes, the seeding pass over
	// the full-corpus statistics included.
	Rounds int

	// Filtered holds the tables recomputed over the active set.
	Filtered *Tables
}

// Classify runs the full classification: curated singles, curated
// groups, then the elimination loop. full must be the tables built over
// the complete corpus; its rows are back-filled with the resulting
// classifications.
func (e *Engine) Classify(codelists []*domain.Codelist, full *Tables) *Result {
	byID := make(map[string]*domain.Codelist, len(codelists))
	for _, cl := range codelists {
		byID[cl.ID] = cl
	}

	if dups := e.curated.DuplicateSingles(); len(dups) > 0 {
		slog.Warn("Duplicate entries in curated singles", "codelists", dups)
	}
	conflicts := e.curated.Conflicts()
	for id, groupID := range conflicts {
		slog.Warn("Codelist curated as both SINGLE and group member; SINGLE takes precedence",
			"codelist", id, "group", groupID)
	}

	excluded := make(map[string]struct{})

	e.applySingles(byID, excluded)
	e.applyGroups(byID, excluded, conflicts)

	result := &Result{Excluded: excluded}
	e.eliminate(codelists, full, result)

	curatedIDs := e.curatedSet()
	for _, id := range sortedIDs(excluded) {
		if _, isCurated := curatedIDs[id]; !isCurated {
			result.AutoExcluded = append(result.AutoExcluded, id)
			if cl, ok := byID[id]; ok {
				cl.AutoExcluded = true
			}
		}
	}

	for _, cl := range codelists {
		if _, ok := excluded[cl.ID]; !ok {
			result.Active = append(result.Active, cl)
		}
	}

	result.Filtered = BuildTables(result.Active)
	backfill(full, byID)
	backfill(result.Filtered, byID)

	slog.Info("Classification finished",
		"total", len(codelists),
		"excluded", len(excluded),
		"auto_excluded", result.AutoExcluded,
		"active", len(result.Active),
		"rounds", result.Rounds)

	return result
}

// applySingles marks every curated singleton present in the corpus as
// SINGLE. The scheme id is the grammar short name; when two singletons
// resolve to the same short name the later one is disambiguated with
// its agency prefix.
func (e *Engine) applySingles(byID map[string]*domain.Codelist, excluded map[string]struct{}) {
	schemeOwner := make(map[string]string)

	for _, id := range e.curated.Singles {
		cl, ok := byID[id]
		if !ok {
			slog.Warn("Curated single not present in corpus", "codelist", id)
			continue
		}
		if cl.Classification == domain.ClassSingle {
			continue
		}

		ref, err := sdmx.ParseRef(id)
		schemeID := ref.Name
		if err != nil {
			slog.Error("Curated single does not match the identifier grammar", "codelist", id, "error", err)
			schemeID = cl.ShortID
		}
		if owner, taken := schemeOwner[schemeID]; taken && owner != id {
			disambiguated := fmt.Sprintf("%s_%s", cl.Agency, schemeID)
			slog.Warn("Scheme id collision between curated singles",
				"codelist", id, "conflicts_with", owner, "scheme", schemeID, "renamed", disambiguated)
			schemeID = disambiguated
		}
		schemeOwner[schemeID] = id

		cl.Classification = domain.ClassSingle
		cl.SchemeID = schemeID
		excluded[id] = struct{}{}
	}
}

// applyGroups marks curated group members as GROUP with the group id as
// scheme id. Members already classified SINGLE keep that classification.
func (e *Engine) applyGroups(byID map[string]*domain.Codelist, excluded map[string]struct{}, conflicts map[string]string) {
	for _, groupID := range sortedGroupIDs(e.curated.Groups) {
		group := e.curated.Groups[groupID]
		seen := make(map[string]bool, len(group.Codelists))
		for _, id := range group.Codelists {
			if seen[id] {
				slog.Warn("Duplicate member in curated group", "group", groupID, "codelist", id)
				continue
			}
			seen[id] = true

			cl, ok := byID[id]
			if !ok {
				slog.Warn("Curated group member not present in corpus", "group", groupID, "codelist", id)
				continue
			}
			if _, conflicting := conflicts[id]; conflicting {
				continue
			}

			cl.Classification = domain.ClassGroup
			cl.SchemeID = groupID
			excluded[id] = struct{}{}
		}
	}
}

// eliminate removes zero-overlap codelists round by round. The first
// round reads the pre-computed full-corpus statistics; every later
// round recomputes overlap over the shrinking active set, because a
// codelist that only shared codes with now-excluded peers becomes
// eligible itself. Terminates when a round excludes nothing: each round
// either shrinks the active set or stops.
func (e *Engine) eliminate(codelists []*domain.Codelist, full *Tables, result *Result) {
	result.Rounds = 1
	newlyExcluded := 0
	for _, row := range full.Summary {
		if _, done := result.Excluded[row.CodelistID]; done {
			continue
		}
		if row.SharedCodes == 0 {
			result.Excluded[row.CodelistID] = struct{}{}
			newlyExcluded++
		}
	}

	for newlyExcluded > 0 {
		var active []*domain.Codelist
		for _, cl := range codelists {
			if _, done := result.Excluded[cl.ID]; !done {
				active = append(active, cl)
			}
		}

		universe := BuildUniverse(active)
		newlyExcluded = 0
		for _, cl := range active {
			stats := Stats(active, universe, cl)
			if stats.SharedCodes == 0 {
				result.Excluded[cl.ID] = struct{}{}
				newlyExcluded++
			}
		}
		result.Rounds++
	}
}

// backfill copies classification outcomes into the summary rows.
func backfill(t *Tables, byID map[string]*domain.Codelist) {
	for i := range t.Summary {
		if cl, ok := byID[t.Summary[i].CodelistID]; ok {
			t.Summary[i].GroupType = string(cl.Classification)
			t.Summary[i].SchemeID = cl.SchemeID
		}
	}
}

// curatedSet is the union of curated singles and group members.
func (e *Engine) curatedSet() map[string]struct{} {
	set := make(map[string]struct{}, len(e.curated.Singles))
	for _, id := range e.curated.Singles {
		set[id] = struct{}{}
	}
	for _, g := range e.curated.Groups {
		for _, id := range g.Codelists {
			set[id] = struct{}{}
		}
	}
	return set
}

func sortedIDs(set map[string]struct{}) []string {
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func sortedGroupIDs(groups map[string]curated.Group) []string {
	ids := make([]string, 0, len(groups))
	for id := range groups {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
