package app

import "github.com/spf13/pflag"

// RegisterFlags registers all CLI flags on the given FlagSet
func RegisterFlags(flags *pflag.FlagSet) {
	// Stage toggles
	flags.BoolP("download", "d", false, "Download codelist XML files listed in the source CSV")
	flags.BoolP("analyze", "a", false, "Run the codelist overlap analysis and classification")
	flags.BoolP("generate", "g", false, "Generate SKOS/Turtle files for classified schemes")
	flags.BoolP("index", "i", false, "Build the full-text search index over parsed codes")

	// Workspace layout
	flags.StringP("workspace", "w", "", "Workspace base directory")
	flags.String("source-csv", "", "Source CSV listing codelists to download")
	flags.String("xml-dir", "", "Directory holding the codelist XML files")
	flags.String("analysis-dir", "", "Directory receiving the analysis CSV tables")
	flags.String("output-dir", "", "Directory receiving the generated Turtle files")
	flags.String("index-dir", "", "Directory holding the search index")
	flags.String("curated-file", "", "YAML file with the curated classification tables")

	// Tuning knobs
	flags.Duration("download-timeout", 0, "Per-request timeout for XML downloads")
	flags.Int("top-percent", 0, "Share of codelists shown in the top-volume report (1-100)")
	flags.Int("frequent-count", 0, "Number of most frequent codes reported")
	flags.Int("nonspecific-threshold", 0, "Occurrence threshold for nonspecific code reporting")
	flags.Int("max-results", 0, "Maximum number of search results")
}

// Stages are the pipeline stages selected on the command line.
type Stages struct {
	Download bool
	Analyze  bool
	Generate bool
	Index    bool
}

// StagesFromFlags reads the stage toggles from the flag set.
func StagesFromFlags(flags *pflag.FlagSet) Stages {
	var s Stages
	s.Download, _ = flags.GetBool("download")
	s.Analyze, _ = flags.GetBool("analyze")
	s.Generate, _ = flags.GetBool("generate")
	s.Index, _ = flags.GetBool("index")
	return s
}

// Any reports whether at least one stage is selected.
func (s Stages) Any() bool {
	return s.Download || s.Analyze || s.Generate || s.Index
}
