package domain

// Classification is the final category assigned to a codelist.
type Classification string

const (
	// ClassSingle marks a codelist that stands on its own as one concept scheme.
	ClassSingle Classification = "SINGLE"

	// ClassGroup marks a codelist merged with others into a thematic scheme.
	ClassGroup Classification = "GROUP"

	// ClassUnclassified marks a codelist not yet assigned to a scheme.
	ClassUnclassified Classification = ""
)

// CodeEntry is one code value within a codelist.
// Multiple entries across different codelists may share the same Value;
// that overlap is the basis of the cross-codelist analysis.
type CodeEntry struct {
	// CodelistID is the full identifier of the owning codelist.
	CodelistID string

	// Agency is the agency responsible for the code.
	Agency string

	// Value is the case-sensitive code value.
	Value string

	// Description is the resolved English-preferred description.
	Description string
}

// Codelist is one SDMX code list with its parsed metadata and codes.
// Similar and the classification fields are back-filled by later
// pipeline stages; everything else is set once by the parser.
type Codelist struct {
	// ID is the full identifier, format "AGENCY:SHORTNAME(VERSION)".
	ID string

	// Name is the codelist display name.
	Name string

	// Agency is the owning agency identifier.
	Agency string

	// ShortID is the short identifier from the document (e.g. "CL_FREQ").
	ShortID string

	// Version is the dot-separated version string.
	Version string

	// Description is the codelist description.
	Description string

	// SourceURL is the SDMX registry URL derived from the document URN.
	SourceURL string

	// Codes holds every code entry in document order, duplicates included.
	Codes []CodeEntry

	// Similar lists ids of codelists sharing the same short name but a
	// different version, sorted by (agency rank, version tuple). Includes
	// this codelist's own id. Nil when no similar codelist exists.
	Similar []string

	// Classification is SINGLE, GROUP or unclassified.
	Classification Classification

	// SchemeID is the concept scheme id, set when SINGLE or GROUP.
	SchemeID string

	// AutoExcluded is true when the elimination loop removed this codelist
	// because it shares no codes with any other active codelist.
	AutoExcluded bool
}

// OverlapStats summarizes how one codelist's code set relates to the rest
// of the universe. UniqueCodes + GenericCodes + SharedCodes == TotalCodes
// at every point of the elimination loop.
type OverlapStats struct {
	TotalCodes   int
	UniqueCodes  int
	GenericCodes int
	SharedCodes  int
}

// Bleve field name constants for consistent field references in queries
// and mappings on the code search index.
const (
	CodeFieldID          = "id"
	CodeFieldCodelist    = "codelist_id"
	CodeFieldAgency      = "agency"
	CodeFieldValue       = "value"
	CodeFieldDescription = "description"
)

// SummaryColumns is the exact column order of the codelist summary table.
// Consumed as a join contract by the Turtle generator; do not reorder.
var SummaryColumns = []string{
	"CodelistID", "GroupType", "SchemeID", "CL Name", "Codelist Description",
	"Agency", "CLID", "Ver", "Total Codes", "Unique Codes",
	"Common codes", "Shared Codes", "Similar Codelists", "URL",
}

// CodeColumns is the exact column order of the code detail table.
var CodeColumns = []string{"CodelistID", "Agency", "Code", "Code Description"}
