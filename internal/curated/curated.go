// Package curated loads the hand-maintained classification tables: the
// flat list of singleton codelists and the thematic groups. Both are
// supplied as static YAML configuration and override automatic
// elimination in the classification engine.
package curated

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Group is one thematic group of codelists merged into a single scheme.
type Group struct {
	// Name is the human-readable group name, e.g. "Countries".
	Name string `yaml:"name"`

	// Codelists are the member codelist ids. Authored as a list; member
	// semantics are a set, so duplicates are collapsed with a log line.
	Codelists []string `yaml:"codelists"`
}

// Tables holds both curated classification tables.
type Tables struct {
	// Singles are codelist ids that stand alone as one scheme each.
	Singles []string `yaml:"singles"`

	// Groups maps group id (the scheme id) to its definition.
	Groups map[string]Group `yaml:"groups"`
}

// Load reads curated tables from a YAML file. A missing path returns
// empty tables, not an error: runs without curation are legitimate.
func Load(path string) (*Tables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Tables{Groups: map[string]Group{}}, nil
		}
		return nil, fmt.Errorf("failed to read curated tables: %w", err)
	}

	var tables Tables
	if err := yaml.Unmarshal(data, &tables); err != nil {
		return nil, fmt.Errorf("failed to parse curated tables: %w", err)
	}
	if tables.Groups == nil {
		tables.Groups = map[string]Group{}
	}
	return &tables, nil
}

// Clone returns a deep copy. Every pipeline invocation works on its own
// copy so repeated runs (and tests) cannot leak state through shared
// slices.
func (t *Tables) Clone() *Tables {
	out := &Tables{
		Singles: append([]string(nil), t.Singles...),
		Groups:  make(map[string]Group, len(t.Groups)),
	}
	for id, g := range t.Groups {
		out.Groups[id] = Group{
			Name:      g.Name,
			Codelists: append([]string(nil), g.Codelists...),
		}
	}
	return out
}

// DuplicateSingles returns ids that appear more than once in the
// singleton list, each reported once, in first-occurrence order.
func (t *Tables) DuplicateSingles() []string {
	seen := make(map[string]int, len(t.Singles))
	var dups []string
	for _, id := range t.Singles {
		seen[id]++
		if seen[id] == 2 {
			dups = append(dups, id)
		}
	}
	return dups
}

// Conflicts returns ids present both in the singleton list and in some
// group, mapped to the conflicting group id. The engine resolves these
// in favor of SINGLE; this surfaces the configuration defect.
func (t *Tables) Conflicts() map[string]string {
	singles := make(map[string]bool, len(t.Singles))
	for _, id := range t.Singles {
		singles[id] = true
	}

	conflicts := make(map[string]string)
	for groupID, g := range t.Groups {
		for _, id := range g.Codelists {
			if singles[id] {
				conflicts[id] = groupID
			}
		}
	}
	return conflicts
}
