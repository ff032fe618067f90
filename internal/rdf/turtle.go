package rdf

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/semrd/sdmxclgen/internal/analysis"
	"github.com/semrd/sdmxclgen/internal/domain"
	"github.com/semrd/sdmxclgen/internal/sdmx"
)

// Generator writes one Turtle file per concept scheme plus a catalog
// file listing every scheme.
type Generator struct {
	// OutDir receives the generated files.
	OutDir string

	// Now supplies the catalog issue date; defaults to time.Now.
	Now func() time.Time
}

// GeneratedFile describes one emitted scheme file.
type GeneratedFile struct {
	Path     string
	SchemeID string

	// Label is the scheme's primary label (the first member name).
	Label string

	// HasAgencyLabels is true when the scheme spans agencies and codes
	// carry per-agency blank-node labels.
	HasAgencyLabels bool
}

// agencyEntry is one agency's description of a code value.
type agencyEntry struct {
	Agency      string
	Description string
}

// CatalogFileName is the summary file listing every generated scheme.
const CatalogFileName = "code.ttl"

// Generate emits one Turtle file per scheme present in the summary
// table, then the catalog. Rows with an empty SchemeID (unclassified
// codelists) are skipped. Returns the scheme files in emission order;
// the catalog path is OutDir/code.ttl.
func (g *Generator) Generate(t *analysis.Tables) ([]GeneratedFile, error) {
	var files []GeneratedFile
	var catalog strings.Builder

	g.writeCatalogHeader(&catalog)

	for _, schemeID := range schemeOrder(t) {
		members := memberRows(t, schemeID)
		codes := codeDescriptions(t.Codes, members)

		file, definition, err := g.generateScheme(schemeID, members, codes)
		if err != nil {
			return files, err
		}
		files = append(files, file)

		g.writeCatalogEntry(&catalog, schemeID, file.Label, definition)
	}

	catalogPath := filepath.Join(g.OutDir, CatalogFileName)
	if err := os.WriteFile(catalogPath, []byte(catalog.String()), 0o644); err != nil {
		return files, fmt.Errorf("failed to write catalog: %w", err)
	}
	return files, nil
}

// generateScheme writes the Turtle file of one scheme and returns its
// descriptor together with the skos:definition sentence (reused by the
// catalog entry).
func (g *Generator) generateScheme(schemeID string, members []analysis.SummaryRow, codes map[string][]agencyEntry) (GeneratedFile, string, error) {
	hasAgencyLabels := false
	for _, agencies := range codes {
		if len(agencies) > 1 {
			hasAgencyLabels = true
			break
		}
	}

	prefixes := append([]prefixDecl(nil), commonPrefixes...)
	prefixes = append(prefixes,
		prefixDecl{"sdmx-concept", SDMXConceptURI},
		prefixDecl{SDMXCodePrefix, SDMXCodeURI},
		prefixDecl{Prefix + "-concept", BaseURI + "/concept/"},
		prefixDecl{PrefixCode, CodeURI},
		prefixDecl{Prefix, BaseURI},
	)
	if hasAgencyLabels {
		prefixes = append(prefixes, prefixDecl{Prefix + "-agency", BaseURI + "/agency/"})
	}

	var b strings.Builder
	writePrefixes(&b, prefixes)

	label, definition := writeConceptScheme(&b, schemeID, members)
	writeConcepts(&b, schemeID, codes, hasAgencyLabels)

	path := filepath.Join(g.OutDir, fmt.Sprintf("%s-code-%s.ttl", Prefix, schemeID))
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return GeneratedFile{}, "", fmt.Errorf("failed to write scheme file: %w", err)
	}

	return GeneratedFile{
		Path:            path,
		SchemeID:        schemeID,
		Label:           label,
		HasAgencyLabels: hasAgencyLabels,
	}, definition, nil
}

// writeConceptScheme emits the skos:ConceptScheme block and its
// companion rdfs:Class. Returns the primary label and the definition
// sentence.
func writeConceptScheme(b *strings.Builder, schemeID string, members []analysis.SummaryRow) (label, definition string) {
	className := classifyName(schemeID)
	schemeRef := PrefixCode + ":" + schemeID
	classRef := PrefixCode + ":" + className

	fmt.Fprintf(b, "#####################################################\n")
	fmt.Fprintf(b, "# CL_%s Scheme Definition\n", strings.ToUpper(schemeID))
	fmt.Fprintf(b, "#####################################################\n\n")

	fmt.Fprintf(b, "%s a skos:ConceptScheme ;\n", schemeRef)
	fmt.Fprintf(b, "    rdfs:subClassOf %s:ConceptScheme ;\n", SDMXCodePrefix)

	for i, name := range distinctLabels(members) {
		if i == 0 {
			label = name
			fmt.Fprintf(b, "    skos:prefLabel %s@en ;\n", literal(name+" - codelist scheme"))
			fmt.Fprintf(b, "    rdfs:label %s@en ;\n", literal(name+" - codelist scheme"))
		} else {
			fmt.Fprintf(b, "    skos:altLabel %s@en ;\n", literal(name+" - codelist scheme"))
		}
	}
	fmt.Fprintf(b, "    skos:notation %s ;\n", literal("CL_"+strings.ToUpper(schemeID)))

	ids := make([]string, len(members))
	for i, m := range members {
		ids[i] = m.CodelistID
	}
	switch {
	case len(ids) > 1:
		definition = fmt.Sprintf("A reference %s codelist combining %s", schemeID, strings.Join(ids, ", "))
	case len(ids) == 1:
		definition = fmt.Sprintf("A reference %s codelist based on %s", schemeID, ids[0])
	}
	if definition != "" {
		fmt.Fprintf(b, "    skos:definition %s@en ;\n", literal(definition))
	}

	for _, m := range members {
		if m.URL != "" {
			fmt.Fprintf(b, "    rdfs:seeAlso <%s> ;\n", m.URL)
		}
	}

	for _, m := range members {
		if m.Description == sdmx.DescriptionNotAvail {
			continue
		}
		fmt.Fprintf(b, "    skos:note %s@en ;\n", literal(m.CodelistID+": "+m.Description))
	}

	if concepts := schemeConcepts[schemeID]; len(concepts) > 0 {
		refs := make([]string, len(concepts))
		for i, c := range concepts {
			refs[i] = Prefix + "-concept:" + c
		}
		joined := strings.Join(refs, ", ")
		fmt.Fprintf(b, "    rdfs:seeAlso %s ;\n", joined)
		fmt.Fprintf(b, "    skos:related %s ;\n", joined)
	}

	fmt.Fprintf(b, "    rdfs:seeAlso %s .\n\n", classRef)

	if _, ok := sdmxConceptSchemes[schemeID]; ok {
		fmt.Fprintf(b, "%s skos:exactMatch %s:%s .\n\n", schemeRef, SDMXCodePrefix, schemeID)
	}

	fmt.Fprintf(b, "%s a rdfs:Class ;\n", classRef)
	fmt.Fprintf(b, "    rdfs:subClassOf skos:Concept ;\n")
	fmt.Fprintf(b, "    skos:prefLabel %s@en ;\n", literal(label+" - codelist class"))
	fmt.Fprintf(b, "    rdfs:label %s@en ;\n", literal(label+" - codelist class"))
	fmt.Fprintf(b, "    rdfs:isDefinedBy %s ;\n", schemeRef)
	fmt.Fprintf(b, "    skos:inScheme %s .\n\n", schemeRef)

	return label, definition
}

// writeConcepts emits one skos:Concept per code value. When the scheme
// spans agencies, each code carries blank-node labels grouped by
// description instead of a plain rdfs:label.
func writeConcepts(b *strings.Builder, schemeID string, codes map[string][]agencyEntry, hasAgencyLabels bool) {
	schemeRef := PrefixCode + ":" + schemeID
	classRef := PrefixCode + ":" + classifyName(schemeID)

	fmt.Fprintf(b, "########################################\n")
	fmt.Fprintf(b, "# CL_%s Codes\n", strings.ToUpper(schemeID))
	fmt.Fprintf(b, "########################################\n")

	for _, code := range sortedCodes(codes) {
		agencies := codes[code]
		conceptRef := fmt.Sprintf("%s:%s-%s", PrefixCode, schemeID, code)

		fmt.Fprintf(b, "\n%s a skos:Concept, %s ;\n", conceptRef, classRef)
		fmt.Fprintf(b, "    skos:topConceptOf %s ;\n", schemeRef)
		fmt.Fprintf(b, "    skos:inScheme %s ;\n", schemeRef)
		fmt.Fprintf(b, "    skos:notation %s ;\n", literal(code))
		fmt.Fprintf(b, "    skos:prefLabel %s@en ;\n", literal(agencies[0].Description))

		if hasAgencyLabels {
			fmt.Fprintf(b, "    %s:hasAgencyLabel %s .\n", Prefix, strings.Join(agencyLabelNodes(agencies), ",\n        "))
		} else {
			fmt.Fprintf(b, "    rdfs:label %s@en .\n", literal(agencies[0].Description))
		}

		if aligned, ok := sdmxCodes[schemeID]; ok {
			if _, ok := aligned[code]; ok {
				fmt.Fprintf(b, "%s skos:exactMatch <%s%s-%s> .\n", conceptRef, SDMXCodeURI, schemeID, code)
			}
		}
		fmt.Fprintf(b, "%s skos:hasTopConcept %s .\n", schemeRef, conceptRef)
	}
}

// agencyLabelNodes groups agencies by description and renders one blank
// node per distinct description.
func agencyLabelNodes(agencies []agencyEntry) []string {
	var order []string
	groups := make(map[string][]string)
	for _, a := range agencies {
		if _, ok := groups[a.Description]; !ok {
			order = append(order, a.Description)
		}
		groups[a.Description] = append(groups[a.Description], Prefix+"-agency:"+a.Agency)
	}

	nodes := make([]string, 0, len(order))
	for _, desc := range order {
		nodes = append(nodes, fmt.Sprintf("[ %s-agency:agenciesID %s ; rdfs:label %s@en ]",
			Prefix, strings.Join(groups[desc], ", "), literal(desc)))
	}
	return nodes
}

func (g *Generator) writeCatalogHeader(b *strings.Builder) {
	prefixes := append([]prefixDecl(nil), commonPrefixes...)
	prefixes = append(prefixes,
		prefixDecl{"dct", "http://purl.org/dc/terms/"},
		prefixDecl{"rdf", "http://www.w3.org/1999/02/22-rdf-syntax-ns#"},
		prefixDecl{PrefixCode, CodeURI},
	)
	writePrefixes(b, prefixes)

	now := time.Now
	if g.Now != nil {
		now = g.Now
	}

	fmt.Fprintf(b, "%s: a skos:ConceptScheme ;\n", PrefixCode)
	fmt.Fprintf(b, "    rdfs:label %s@en ;\n", literal("List of available code lists"))
	fmt.Fprintf(b, "    dct:creator %s ;\n", literal("SemanticPro SDMX Extension"))
	fmt.Fprintf(b, "    dct:issued %s^^xsd:date ;\n", literal(now().Format("2006-01-02")))
	fmt.Fprintf(b, "    dct:description %s@en .\n\n", literal("A general code list with links to all available code schemes."))
	fmt.Fprintf(b, "# CODE LISTS\n")
}

func (g *Generator) writeCatalogEntry(b *strings.Builder, schemeID, label, definition string) {
	fmt.Fprintf(b, "\n%s:%s a skos:ConceptScheme ;\n", PrefixCode, schemeID)
	fmt.Fprintf(b, "    rdfs:label %s@en ;\n", literal(label))
	if definition != "" {
		fmt.Fprintf(b, "    dct:description %s@en ;\n", literal(definition))
	}
	fmt.Fprintf(b, "    dct:source <%s/code/%s> .\n", BaseURI, schemeID)
}

// WriteAgencyLabelIndex writes a CSV listing the scheme files whose
// codes carry per-agency labels. Silent no-op output (header only) when
// no scheme spans agencies.
func WriteAgencyLabelIndex(path string, files []GeneratedFile) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create agency label index: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"TTL File", "ConceptScheme Label"}); err != nil {
		return fmt.Errorf("failed to write agency label index: %w", err)
	}
	for _, file := range files {
		if !file.HasAgencyLabels {
			continue
		}
		if err := w.Write([]string{file.Path, file.Label}); err != nil {
			return fmt.Errorf("failed to write agency label index: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush agency label index: %w", err)
	}
	return f.Close()
}

// schemeOrder returns the distinct non-empty scheme ids in
// first-occurrence order of the summary table.
func schemeOrder(t *analysis.Tables) []string {
	seen := make(map[string]bool)
	var order []string
	for _, row := range t.Summary {
		if row.SchemeID == "" || seen[row.SchemeID] {
			continue
		}
		seen[row.SchemeID] = true
		order = append(order, row.SchemeID)
	}
	return order
}

func memberRows(t *analysis.Tables, schemeID string) []analysis.SummaryRow {
	var members []analysis.SummaryRow
	for _, row := range t.Summary {
		if row.SchemeID == schemeID {
			members = append(members, row)
		}
	}
	return members
}

// codeDescriptions groups the member codelists' codes by value.
func codeDescriptions(codes []domain.CodeEntry, members []analysis.SummaryRow) map[string][]agencyEntry {
	ids := make(map[string]bool, len(members))
	for _, m := range members {
		ids[m.CodelistID] = true
	}

	out := make(map[string][]agencyEntry)
	for _, code := range codes {
		if ids[code.CodelistID] {
			out[code.Value] = append(out[code.Value], agencyEntry{Agency: code.Agency, Description: code.Description})
		}
	}
	return out
}

func sortedCodes(codes map[string][]agencyEntry) []string {
	values := make([]string, 0, len(codes))
	for v := range codes {
		values = append(values, v)
	}
	sort.Strings(values)
	return values
}

// distinctLabels returns the member names deduplicated in
// first-occurrence order.
func distinctLabels(members []analysis.SummaryRow) []string {
	seen := make(map[string]bool)
	var labels []string
	for _, m := range members {
		if !seen[m.Name] {
			seen[m.Name] = true
			labels = append(labels, m.Name)
		}
	}
	return labels
}

// classifyName upper-cases the first letter of a scheme id, producing
// the companion class name ("freq" -> "Freq").
func classifyName(schemeID string) string {
	if schemeID == "" {
		return ""
	}
	return strings.ToUpper(schemeID[:1]) + schemeID[1:]
}

func writePrefixes(b *strings.Builder, prefixes []prefixDecl) {
	for _, p := range prefixes {
		fmt.Fprintf(b, "@prefix %s: <%s> .\n", p.Name, p.URI)
	}
	b.WriteString("\n")
}

// literal renders a quoted Turtle literal with N-Triples escaping.
func literal(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
