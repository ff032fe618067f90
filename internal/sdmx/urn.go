package sdmx

import (
	"errors"
	"fmt"
	"regexp"
)

var (
	// ErrInvalidURN indicates the URN is not a valid SDMX codelist URN.
	ErrInvalidURN = errors.New("invalid SDMX codelist URN format")

	// Matches: urn:sdmx:org.sdmx.infomodel.codelist.Codelist=ESTAT:CL_COVERAGE_POP(1.1.0)
	urnPattern = regexp.MustCompile(`^urn:sdmx:org\.sdmx\.infomodel\.codelist\.Codelist=([^:]+):([^()]+)\(([\d.]+)\)$`)
)

// registryBaseURL is the SDMX global registry v2 structure endpoint.
const registryBaseURL = "https://registry.sdmx.org/sdmx/v2/structure/codelist"

// ParseURN extracts the agency, short id and version from a codelist URN.
func ParseURN(urn string) (agency, id, version string, err error) {
	matches := urnPattern.FindStringSubmatch(urn)
	if matches == nil {
		return "", "", "", fmt.Errorf("%w: %q", ErrInvalidURN, urn)
	}
	return matches[1], matches[2], matches[3], nil
}

// URNToRegistryURL converts a codelist URN into the SDMX v2 REST API URL
// serving that codelist.
//
// Example:
//   - urn:sdmx:org.sdmx.infomodel.codelist.Codelist=ESTAT:CL_COVERAGE_POP(1.1.0)
//     -> https://registry.sdmx.org/sdmx/v2/structure/codelist/ESTAT/CL_COVERAGE_POP/1.1.0
func URNToRegistryURL(urn string) (string, error) {
	agency, id, version, err := ParseURN(urn)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/%s/%s/%s", registryBaseURL, agency, id, version), nil
}

// URNID extracts the full codelist identifier ("AGENCY:SHORTNAME(VERSION)")
// embedded in a Codelist URN. Returns "" when no identifier is present.
func URNID(urn string) string {
	m := regexp.MustCompile(`Codelist=([^:]+:[^)]+\))`).FindStringSubmatch(urn)
	if m == nil {
		return ""
	}
	return m[1]
}
