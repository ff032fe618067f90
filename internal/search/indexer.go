// Package search maintains a Bleve full-text index over parsed code
// entries and serves queries against it.
package search

import (
	"fmt"
	"os"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/semrd/sdmxclgen/internal/domain"
)

const (
	// MaxBatchSize is the maximum number of documents per batch
	MaxBatchSize = 100

	// MaxBatchBytes is the maximum bytes per batch (10MB)
	MaxBatchBytes = 10 * 1024 * 1024
)

// CodeDocument is one code entry as stored in the index.
type CodeDocument struct {
	ID          string `json:"id"`
	CodelistID  string `json:"codelist_id"`
	Agency      string `json:"agency"`
	Value       string `json:"value"`
	Description string `json:"description"`
}

// Indexer manages the Bleve index over code entries.
type Indexer struct {
	indexPath string
}

// NewIndexer creates an indexer rooted at indexPath.
func NewIndexer(indexPath string) *Indexer {
	return &Indexer{indexPath: indexPath}
}

// CreateIndexMapping creates the Bleve index mapping for code documents.
func CreateIndexMapping() mapping.IndexMapping {
	docMapping := bleve.NewDocumentMapping()

	// Description field - analyzed for full-text search
	descField := bleve.NewTextFieldMapping()
	descField.Analyzer = standard.Name
	descField.Store = true
	descField.IncludeTermVectors = true
	docMapping.AddFieldMappingsAt(domain.CodeFieldDescription, descField)

	// Codelist id - keyword (not analyzed), stored for retrieval
	codelistField := bleve.NewTextFieldMapping()
	codelistField.Analyzer = keyword.Name
	codelistField.Store = true
	docMapping.AddFieldMappingsAt(domain.CodeFieldCodelist, codelistField)

	// Agency - keyword, stored
	agencyField := bleve.NewTextFieldMapping()
	agencyField.Analyzer = keyword.Name
	agencyField.Store = true
	docMapping.AddFieldMappingsAt(domain.CodeFieldAgency, agencyField)

	// Code value - keyword, stored
	valueField := bleve.NewTextFieldMapping()
	valueField.Analyzer = keyword.Name
	valueField.Store = true
	docMapping.AddFieldMappingsAt(domain.CodeFieldValue, valueField)

	// ID - stored but not indexed (we use the document ID)
	idField := bleve.NewTextFieldMapping()
	idField.Index = false
	idField.Store = true
	docMapping.AddFieldMappingsAt(domain.CodeFieldID, idField)

	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultMapping = docMapping
	indexMapping.DefaultAnalyzer = standard.Name

	return indexMapping
}

// OpenForWrite opens or creates the index for writing.
func (i *Indexer) OpenForWrite() (bleve.Index, error) {
	index, err := bleve.Open(i.indexPath)
	if err == nil {
		return index, nil
	}

	index, err = bleve.New(i.indexPath, CreateIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create index: %w", err)
	}
	return index, nil
}

// OpenForRead opens the existing index for reading.
func (i *Indexer) OpenForRead() (bleve.Index, error) {
	index, err := bleve.Open(i.indexPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open index: %w", err)
	}
	return index, nil
}

// IndexExists checks if the index exists on disk.
func (i *Indexer) IndexExists() bool {
	_, err := os.Stat(i.indexPath)
	return err == nil
}

// DeleteIndex removes the index from disk.
func (i *Indexer) DeleteIndex() error {
	return os.RemoveAll(i.indexPath)
}

// IndexCodes rebuilds the index from the given code entries in batches.
// Returns the number of documents indexed.
func (i *Indexer) IndexCodes(codes []domain.CodeEntry) (count int, err error) {
	index, err := i.OpenForWrite()
	if err != nil {
		return 0, err
	}
	defer func() {
		if cerr := index.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	batch := index.NewBatch()
	batchSize := 0
	batchBytes := 0
	totalIndexed := 0

	for n, code := range codes {
		doc := CodeDocument{
			ID:          fmt.Sprintf("%s/%d-%s", code.CodelistID, n, code.Value),
			CodelistID:  code.CodelistID,
			Agency:      code.Agency,
			Value:       code.Value,
			Description: code.Description,
		}

		if err := batch.Index(doc.ID, doc); err != nil {
			continue // Skip on indexing error
		}
		batchSize++
		batchBytes += len(doc.Description) + len(doc.Value)

		if batchSize >= MaxBatchSize || batchBytes >= MaxBatchBytes {
			if err := index.Batch(batch); err != nil {
				return totalIndexed, fmt.Errorf("batch index failed: %w", err)
			}
			totalIndexed += batchSize
			batch = index.NewBatch()
			batchSize = 0
			batchBytes = 0
		}
	}

	if batchSize > 0 {
		if err := index.Batch(batch); err != nil {
			return totalIndexed, fmt.Errorf("final batch index failed: %w", err)
		}
		totalIndexed += batchSize
	}

	return totalIndexed, nil
}

// GetDocumentCount returns the number of documents in the index.
func (i *Indexer) GetDocumentCount() (count uint64, err error) {
	index, err := i.OpenForRead()
	if err != nil {
		return 0, err
	}
	defer func() {
		if cerr := index.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	return index.DocCount()
}
