package sdmx

import (
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/semrd/sdmxclgen/internal/domain"
)

// Default strings used when a source document omits a field.
// These match what the analysis tables and Turtle generator test against.
const (
	UnknownID            = "Unknown"
	NoNameAvailable      = "No name available"
	DescriptionNotAvail  = "Description not available"
	NoCodeDescription    = "No description"
	descriptionSeparator = " | "
)

// SDMX-ML 3.0 message shape, down to the parts this tool reads.
// The root element name varies between registry endpoints, so only the
// Structures path below it is constrained.
type structureMessage struct {
	Structures struct {
		Codelists struct {
			Codelists []codelistElem `xml:"http://www.sdmx.org/resources/sdmxml/schemas/v3_0/structure Codelist"`
		} `xml:"http://www.sdmx.org/resources/sdmxml/schemas/v3_0/structure Codelists"`
	} `xml:"http://www.sdmx.org/resources/sdmxml/schemas/v3_0/message Structures"`
}

type codelistElem struct {
	URN         string         `xml:"urn,attr"`
	AgencyID    string         `xml:"agencyID,attr"`
	ID          string         `xml:"id,attr"`
	Names       []localizedStr `xml:"http://www.sdmx.org/resources/sdmxml/schemas/v3_0/common Name"`
	Description []localizedStr `xml:"http://www.sdmx.org/resources/sdmxml/schemas/v3_0/common Description"`
	Codes       []codeElem     `xml:"http://www.sdmx.org/resources/sdmxml/schemas/v3_0/structure Code"`
}

type codeElem struct {
	ID    string         `xml:"id,attr"`
	Names []localizedStr `xml:"http://www.sdmx.org/resources/sdmxml/schemas/v3_0/common Name"`
}

type localizedStr struct {
	Lang string `xml:"http://www.w3.org/XML/1998/namespace lang,attr"`
	Text string `xml:",chardata"`
}

// ParseCodelist reads one SDMX-ML 3.0 structure document and extracts its
// codelist. A document without a locatable Codelist element yields a
// placeholder record (ID "Unknown", no codes) instead of an error, so one
// malformed file never fails a whole batch; the caller is expected to log
// and skip such records. Only XML syntax errors are returned as errors.
func ParseCodelist(r io.Reader, source string) (*domain.Codelist, error) {
	var msg structureMessage
	dec := xml.NewDecoder(r)
	if err := dec.Decode(&msg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", source, err)
	}

	if len(msg.Structures.Codelists.Codelists) == 0 {
		slog.Warn("No Codelist element found", "source", source)
		return &domain.Codelist{
			ID:          UnknownID,
			Name:        UnknownID,
			Agency:      UnknownID,
			ShortID:     UnknownID,
			Description: DescriptionNotAvail,
		}, nil
	}
	elem := msg.Structures.Codelists.Codelists[0]

	id := URNID(elem.URN)
	if id == "" {
		id = UnknownID
	}

	cl := &domain.Codelist{
		ID:          id,
		Name:        firstText(elem.Names, NoNameAvailable),
		Agency:      orDefault(elem.AgencyID, UnknownID),
		ShortID:     orDefault(elem.ID, UnknownID),
		Description: firstText(elem.Description, DescriptionNotAvail),
	}

	if ref, err := ParseRef(id); err == nil {
		cl.Version = ref.Version
	} else {
		slog.Error("Codelist identifier does not match grammar", "source", source, "id", id)
	}

	if url, err := URNToRegistryURL(elem.URN); err == nil {
		cl.SourceURL = url
	} else if elem.URN != "" {
		slog.Warn("Cannot derive registry URL from URN", "source", source, "urn", elem.URN)
	}

	cl.Codes = make([]domain.CodeEntry, 0, len(elem.Codes))
	for _, code := range elem.Codes {
		cl.Codes = append(cl.Codes, domain.CodeEntry{
			CodelistID:  id,
			Agency:      cl.Agency,
			Value:       orDefault(code.ID, UnknownID),
			Description: resolveDescription(code.Names),
		})
	}

	return cl, nil
}

// resolveDescription picks a code description from its localized names:
// English names first (en and en-* variants, joined), then names with no
// language tag, then any name, then the "No description" fallback.
func resolveDescription(names []localizedStr) string {
	var english, untagged, any []string
	for _, n := range names {
		text := strings.TrimSpace(n.Text)
		if text == "" {
			continue
		}
		any = append(any, text)
		lang := strings.ToLower(n.Lang)
		switch {
		case lang == "en" || strings.HasPrefix(lang, "en-"):
			english = append(english, text)
		case lang == "":
			untagged = append(untagged, text)
		}
	}

	switch {
	case len(english) > 0:
		return strings.Join(english, descriptionSeparator)
	case len(untagged) > 0:
		return strings.Join(untagged, descriptionSeparator)
	case len(any) > 0:
		return strings.Join(any, descriptionSeparator)
	default:
		return NoCodeDescription
	}
}

// firstText returns the first non-empty localized string, preferring
// English entries, or the fallback when none is present.
func firstText(names []localizedStr, fallback string) string {
	for _, n := range names {
		lang := strings.ToLower(n.Lang)
		if text := strings.TrimSpace(n.Text); text != "" && (lang == "en" || strings.HasPrefix(lang, "en-")) {
			return text
		}
	}
	for _, n := range names {
		if text := strings.TrimSpace(n.Text); text != "" {
			return text
		}
	}
	return fallback
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
