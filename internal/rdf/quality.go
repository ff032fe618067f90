package rdf

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"
)

// QualityReport is the structural quality assessment of one Turtle file.
type QualityReport struct {
	MissingPrefixes     []string
	UnusedPrefixes      []string
	MissingLabels       []string
	MissingAgencyLinks  int
	InconsistentClasses []string

	DiverseNotationCount  int
	DescriptiveLabelCount int
	ExternalLinkCount     int

	UniqueSubjects   int
	UniquePredicates int
	UniqueObjects    int

	QualityScore   int
	QualityScore10 float64
	ValueScore10   int
}

// HighQuality reports whether both 10-point scores exceed 9.5, in which
// case the full report is suppressed in favor of a one-line summary.
func (r *QualityReport) HighQuality() bool {
	return r.QualityScore10 > 9.5 && float64(r.ValueScore10) > 9.5
}

// Log prints the short or the full report depending on the scores.
func (r *QualityReport) Log(path string) {
	if r.HighQuality() {
		slog.Info("RDF quality check passed",
			"file", path, "quality_score_10", r.QualityScore10, "value_score_10", r.ValueScore10)
		return
	}
	slog.Warn("RDF quality check report",
		"file", path,
		"missing_prefixes", r.MissingPrefixes,
		"unused_prefixes", r.UnusedPrefixes,
		"missing_labels", r.MissingLabels,
		"missing_agency_links", r.MissingAgencyLinks,
		"inconsistent_classes", r.InconsistentClasses,
		"diverse_notation_count", r.DiverseNotationCount,
		"descriptive_labels_count", r.DescriptiveLabelCount,
		"external_links_count", r.ExternalLinkCount,
		"unique_subjects", r.UniqueSubjects,
		"unique_predicates", r.UniquePredicates,
		"unique_objects", r.UniqueObjects,
		"quality_score", r.QualityScore,
		"quality_score_10", r.QualityScore10,
		"value_score_10", r.ValueScore10)
}

var prefixLinePattern = regexp.MustCompile(`^@prefix\s+([\w-]*):\s+<([^>]+)>\s+\.$`)

// CheckQuality scans a generated Turtle file and scores it. The scanner
// understands the line-oriented subset this package emits; it is a
// self-check of the generator's output, not a general Turtle parser.
func CheckQuality(path string) (*QualityReport, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	prefixes := make(map[string]string)
	subjects := make(map[string]struct{})
	predicates := make(map[string]struct{})
	objects := make(map[string]struct{})
	notations := make(map[string]struct{})

	// Classes declared as subclasses of skos:Concept, tracked for the
	// prefLabel/inScheme/comment checks.
	classSubjects := make(map[string]bool)
	classHasLabel := make(map[string]bool)
	classInScheme := make(map[string]bool)
	classHasComment := make(map[string]bool)

	externalLinks := 0
	agencyNodes := 0
	agencyNodesWithLabel := 0

	var subject string
	usedPrefix := make(map[string]bool)

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		if m := prefixLinePattern.FindStringSubmatch(trimmed); m != nil {
			prefixes[m[1]] = m[2]
			continue
		}

		for name := range prefixes {
			if strings.Contains(trimmed, name+":") {
				usedPrefix[name] = true
			}
		}

		indented := strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t")
		fields := strings.Fields(trimmed)
		if len(fields) < 2 {
			continue
		}

		var predicate, rest string
		if indented {
			predicate = fields[0]
			rest = strings.TrimSpace(trimmed[len(fields[0]):])
		} else {
			subject = fields[0]
			subjects[subject] = struct{}{}
			predicate = fields[1]
			rest = strings.TrimSpace(trimmed[len(fields[0])+1+len(fields[1]):])
		}
		if predicate == "a" {
			predicate = "rdf:type"
		}
		predicates[predicate] = struct{}{}

		object := strings.TrimRight(rest, " .;")
		if object != "" {
			objects[object] = struct{}{}
		}

		switch predicate {
		case "rdfs:subClassOf":
			if object == "skos:Concept" {
				classSubjects[subject] = true
			}
		case "skos:prefLabel":
			classHasLabel[subject] = true
		case "skos:inScheme":
			classInScheme[subject] = true
		case "rdfs:comment":
			classHasComment[subject] = true
		case "skos:notation":
			notations[object] = struct{}{}
		case "rdfs:seeAlso", "skos:exactMatch":
			externalLinks++
		}

		if strings.Contains(trimmed, Prefix+":hasAgencyLabel") {
			agencyNodes += strings.Count(trimmed, "[")
			agencyNodesWithLabel += strings.Count(trimmed, "rdfs:label")
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", path, err)
	}

	report := &QualityReport{
		DiverseNotationCount: len(notations),
		ExternalLinkCount:    externalLinks,
		UniqueSubjects:       len(subjects),
		UniquePredicates:     len(predicates),
		UniqueObjects:        len(objects),
	}

	required := []prefixDecl{
		{"rdfs", "http://www.w3.org/2000/01/rdf-schema#"},
		{"skos", "http://www.w3.org/2004/02/skos/core#"},
		{PrefixCode, CodeURI},
	}
	for _, req := range required {
		if _, ok := prefixes[req.Name]; !ok {
			report.MissingPrefixes = append(report.MissingPrefixes, req.Name)
		} else if !usedPrefix[req.Name] {
			report.UnusedPrefixes = append(report.UnusedPrefixes, req.Name)
		}
	}

	for subj := range classSubjects {
		if !classHasLabel[subj] {
			report.MissingLabels = append(report.MissingLabels, subj)
		}
		if !classInScheme[subj] {
			report.InconsistentClasses = append(report.InconsistentClasses, subj)
		}
		if classHasComment[subj] {
			report.DescriptiveLabelCount++
		}
	}
	report.MissingAgencyLinks = agencyNodes - agencyNodesWithLabel
	if report.MissingAgencyLinks < 0 {
		report.MissingAgencyLinks = 0
	}

	report.score()
	return report, nil
}

// score applies the weighted deductions and derives the 10-point scores.
func (r *QualityReport) score() {
	score := 100
	if len(r.MissingPrefixes) > 0 {
		score -= 10
	}
	if len(r.UnusedPrefixes) > 0 {
		score -= 10
	}
	if len(r.MissingLabels) > 0 {
		score -= 30
	}
	if r.MissingAgencyLinks > 0 {
		score -= 20
	}
	if len(r.InconsistentClasses) > 0 {
		score -= 30
	}
	if r.DiverseNotationCount < 5 {
		score -= 10
	}
	if r.DescriptiveLabelCount == 0 {
		score -= 15
	}
	if r.ExternalLinkCount == 0 {
		score -= 15
	}
	r.QualityScore = score

	deductions := len(r.MissingPrefixes)*1 +
		len(r.UnusedPrefixes)*1 +
		len(r.MissingLabels)*3 +
		len(r.InconsistentClasses)*2
	r.QualityScore10 = float64(100-deductions) / 10
	if r.QualityScore10 > 10 {
		r.QualityScore10 = 10
	}

	r.ValueScore10 = (r.UniqueSubjects + r.UniquePredicates + r.UniqueObjects) / 10
	if r.ValueScore10 > 10 {
		r.ValueScore10 = 10
	}
}
