// Package rdf generates SKOS/Turtle representations of classified
// codelist schemes and scores the generated files for quality.
package rdf

// Prefixes and base URIs of the generated model.
const (
	Prefix     = "srd"
	PrefixCode = "srd-code"
	BaseURI    = "http://purl.org/semrd/sdmx"
	CodeURI    = BaseURI + "/code#"

	SDMXCodePrefix = "sdmx-code"
	SDMXCodeURI    = "http://purl.org/linked-data/sdmx/2009/code#"
	SDMXConceptURI = "http://purl.org/linked-data/sdmx/2009/concept#"
)

// prefixDecl is one @prefix declaration. Declarations are kept as a
// slice so the emitted prefix block has a stable order.
type prefixDecl struct {
	Name string
	URI  string
}

// commonPrefixes open every generated file.
var commonPrefixes = []prefixDecl{
	{"rdfs", "http://www.w3.org/2000/01/rdf-schema#"},
	{"skos", "http://www.w3.org/2004/02/skos/core#"},
	{"xsd", "http://www.w3.org/2001/XMLSchema#"},
	{"owl", "http://www.w3.org/2002/07/owl#"},
}

// sdmxConceptSchemes are the scheme names defined by the SDMX content
// oriented guidelines; schemes with these names get a skos:exactMatch
// to the corresponding sdmx-code scheme.
var sdmxConceptSchemes = map[string]struct{}{
	"confStatus": {}, "obsStatus": {}, "area": {}, "decimals": {},
	"currency": {}, "sex": {}, "timeFormat": {}, "unitMult": {}, "freq": {},
}

// sdmxCodes are the code values published per SDMX concept; aligned
// codes get a skos:exactMatch to the published code URI.
var sdmxCodes = map[string]map[string]struct{}{
	"decimals":   set("0", "1", "2", "3", "4", "5", "6", "7", "8", "9"),
	"unitMult":   set("0", "1", "2", "3", "4", "6", "9", "12", "15"),
	"freq":       set("A", "B", "D", "M", "N", "Q", "S", "W"),
	"obsStatus":  set("A", "B", "E", "F", "I", "M", "P", "S"),
	"confStatus": set("C", "D", "F", "N", "S"),
	"sex":        set("F", "M", "N", "T", "U"),
	"timeFormat": set("P1D", "P7D", "P1M", "P3M", "P6M", "P1Y", "PT1M",
		"102", "203", "602", "604", "608", "610", "616",
		"702", "704", "708", "710", "711", "716", "719"),
}

// schemeConcepts maps a scheme name to the COG concepts it codes, used
// for rdfs:seeAlso and skos:related links on the concept scheme.
var schemeConcepts = map[string][]string{
	"activity":          {"ACTIVITY"},
	"age":               {"AGE"},
	"agency":            {"AGENCY"},
	"area":              {"REF_AREA", "COUNTERPART_AREA"},
	"basePer":           {"BASE_PER"},
	"baseWeight":        {"BASE_WEIGHT"},
	"civilStatus":       {"CIVIL_STATUS"},
	"expenditureCofog":  {"EXPENDITURE"},
	"expenditureCoicop": {"EXPENDITURE"},
	"expenditureCopni":  {"EXPENDITURE"},
	"expenditureCopp":   {"EXPENDITURE"},
	"confStatus":        {"CONF_STATUS"},
	"currency":          {"CURRENCY"},
	"decimals":          {"DECIMALS"},
	"educationLev":      {"EDUCATION_LEV"},
	"freq":              {"FREQ_COLL", "FREQ_DISS", "FREQ"},
	"obsStatus":         {"OBS_STATUS"},
	"occupation":        {"OCCUPATION"},
	"compilingOrg":      {"COMPILING_ORG", "DATA_PROVIDER", "REP_AGENCY"},
	"priceAdjust":       {"PRICE_ADJUST"},
	"seasonalAdjust":    {"SEASONAL_ADJUST"},
	"sex":               {"SEX"},
	"timeFormat":        {"TIME_FORMAT"},
	"timePerCollect":    {"TIME_PER_COLLECT"},
	"transformation":    {"TRANSFORMATION"},
	"unitMeasure":       {"UNIT_MEASURE"},
	"unitMult":          {"UNIT_MULT"},
	"valuation":         {"VALUATION"},
}

func set(values ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(values))
	for _, v := range values {
		m[v] = struct{}{}
	}
	return m
}
