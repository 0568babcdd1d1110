package builtin

import (
	"fmt"
	"regexp"
	"strings"

	"transform/internal/config"
	"transform/internal/registry"
	"transform/internal/table"
)

// houseNumberPattern locates the house number inside a street address.
// Lookarounds are not available, so the required context is matched as
// capture groups and sliced back out:
//
//	group 1: the letter-or-period plus space preceding the number (keeps a
//	         leading number like "7 Juni plassen" inside the street name)
//	group 2: the house number itself: a range ("1-3", "10/12") or digits
//	         with an optional single letter ("6", "100a", "100 a")
//	group 3: the following separator: end of string, space or comma,
//	         optionally preceded by a lone letter
//
// The range alternative comes first so "1-3" wins over a bare "1".
var houseNumberPattern = regexp.MustCompile(`([a-zA-Z.] )(\d+[-/]\d+|\d+ ?[a-zA-Z]?)((?: [a-zA-Z] )?(?:$| |,))`)

// postalCodePattern matches Norwegian postal codes: "4790" or "N-4790".
var postalCodePattern = regexp.MustCompile(`^(?:\d{4}|N-\d{4})$`)

// splitAddress splits a Norwegian-style address field into street, house
// number, suffix, postal code and city columns. The last comma-separated
// part is taken as "postal_code city"; everything before it is the street
// address. An address with no comma goes entirely into the street column.
func splitAddress(in registry.Input, output []string, opts config.Options) (*table.Table, registry.Metadata, error) {
	if len(in.Fields) != 1 {
		return nil, nil, fmt.Errorf("split_address requires exactly one input field, got %v", in.Fields)
	}
	if len(output) != 5 {
		return nil, nil, fmt.Errorf("split_address requires exactly five output fields (street, house number, suffix, postal code, city), got %v", output)
	}

	values, _ := in.Table.Column(in.Fields[0])
	streets := make([]any, len(values))
	houseNumbers := make([]any, len(values))
	suffixes := make([]any, len(values))
	postalCodes := make([]any, len(values))
	cities := make([]any, len(values))

	for i, v := range values {
		addr := cell(v)
		street, houseNumber, suffix, postalCode, city := splitOneAddress(addr)
		streets[i] = street
		houseNumbers[i] = houseNumber
		suffixes[i] = suffix
		postalCodes[i] = postalCode
		cities[i] = city
	}

	out := table.New()
	cols := [][]any{streets, houseNumbers, suffixes, postalCodes, cities}
	for i, name := range output {
		if err := out.AppendColumn(name, cols[i]); err != nil {
			return nil, nil, err
		}
	}
	return out, nil, nil
}

func splitOneAddress(addr string) (street, houseNumber, suffix, postalCode, city string) {
	parts := strings.Split(addr, ",")
	if len(parts) < 2 {
		return strings.TrimSpace(parts[0]), "", "", "", ""
	}

	postalCodeCity := strings.TrimSpace(parts[len(parts)-1])
	streetAddress := strings.TrimSpace(strings.Join(parts[:len(parts)-1], ","))

	if m := houseNumberPattern.FindStringSubmatchIndex(streetAddress); m != nil {
		numStart, numEnd := m[4], m[5]
		street = strings.TrimSpace(streetAddress[:numStart])
		houseNumber = streetAddress[numStart:numEnd]
		suffix = strings.Trim(streetAddress[numEnd:], ", ")
	} else {
		// No house number found: keep the whole thing as the street name.
		street = streetAddress
	}

	city = postalCodeCity
	if head, rest, ok := strings.Cut(postalCodeCity, " "); ok && postalCodePattern.MatchString(head) {
		postalCode = head
		city = rest
	}
	return street, houseNumber, suffix, postalCode, city
}
