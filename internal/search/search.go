package search

import (
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
	"github.com/semrd/sdmxclgen/internal/domain"
)

// Params defines search parameters.
type Params struct {
	// Query is the full-text query (supports wildcards and phrases).
	Query string

	// Codelist filters by full codelist identifier.
	Codelist string

	// Agency filters by agency identifier.
	Agency string

	// MaxResults caps the number of hits returned.
	MaxResults int
}

// Searcher executes queries against the code index.
type Searcher struct {
	indexer *Indexer
}

// NewSearcher creates a searcher over the given indexer.
func NewSearcher(indexer *Indexer) *Searcher {
	return &Searcher{indexer: indexer}
}

// Search runs the query and returns the formatted results.
func (s *Searcher) Search(params Params) (result string, err error) {
	if strings.TrimSpace(params.Query) == "" {
		return "", fmt.Errorf("query cannot be empty")
	}
	if !s.indexer.IndexExists() {
		return "", fmt.Errorf("no code index found; run the pipeline with --index first")
	}

	index, err := s.indexer.OpenForRead()
	if err != nil {
		return "", err
	}
	defer func() {
		if cerr := index.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	searchReq := bleve.NewSearchRequest(buildQuery(params))
	searchReq.Size = params.MaxResults
	searchReq.Fields = []string{domain.CodeFieldCodelist, domain.CodeFieldAgency, domain.CodeFieldValue, domain.CodeFieldDescription}
	searchReq.Highlight = bleve.NewHighlight()
	searchReq.Highlight.AddField(domain.CodeFieldDescription)

	results, err := index.Search(searchReq)
	if err != nil {
		return "", fmt.Errorf("search failed: %w", err)
	}

	return formatResults(results, params.Query), nil
}

// buildQuery constructs a Bleve query from search parameters.
func buildQuery(params Params) query.Query {
	// Description query - full-text match
	descQuery := bleve.NewMatchQuery(params.Query)
	descQuery.SetField(domain.CodeFieldDescription)

	// Code value query with boost: an exact code hit outranks a
	// description hit
	valueQuery := bleve.NewMatchQuery(params.Query)
	valueQuery.SetField(domain.CodeFieldValue)
	valueQuery.SetBoost(5.0)

	// Combined search query (Disjunction - OR)
	searchQuery := bleve.NewDisjunctionQuery(descQuery, valueQuery)

	if params.Codelist == "" && params.Agency == "" {
		return searchQuery
	}

	must := []query.Query{searchQuery}

	if params.Codelist != "" {
		codelistQuery := bleve.NewTermQuery(params.Codelist)
		codelistQuery.SetField(domain.CodeFieldCodelist)
		must = append(must, codelistQuery)
	}

	if params.Agency != "" {
		agencyQuery := bleve.NewTermQuery(params.Agency)
		agencyQuery.SetField(domain.CodeFieldAgency)
		must = append(must, agencyQuery)
	}

	return bleve.NewConjunctionQuery(must...)
}

// formatResults formats Bleve search results for terminal output.
func formatResults(results *bleve.SearchResult, queryStr string) string {
	if results.Total == 0 {
		return fmt.Sprintf("No results found for query: %s", queryStr)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d results for '%s':\n\n", results.Total, queryStr))

	for i, hit := range results.Hits {
		codelist := ""
		value := ""
		agency := ""
		if val, ok := hit.Fields[domain.CodeFieldCodelist].(string); ok {
			codelist = val
		}
		if val, ok := hit.Fields[domain.CodeFieldValue].(string); ok {
			value = val
		}
		if val, ok := hit.Fields[domain.CodeFieldAgency].(string); ok {
			agency = val
		}

		sb.WriteString(fmt.Sprintf("### %d. %s [%s] %s\n", i+1, codelist, agency, value))
		sb.WriteString(fmt.Sprintf("**Score**: %.4f\n\n", hit.Score))

		if len(hit.Fragments) > 0 {
			if fragments, ok := hit.Fragments[domain.CodeFieldDescription]; ok {
				sb.WriteString("```\n")
				for _, fragment := range fragments {
					sb.WriteString(fragment)
					sb.WriteString("\n")
				}
				sb.WriteString("```\n")
			}
		}

		sb.WriteString("\n")
	}

	if results.Total > uint64(len(results.Hits)) {
		sb.WriteString(fmt.Sprintf("... and %d more results\n", results.Total-uint64(len(results.Hits))))
	}

	return sb.String()
}
