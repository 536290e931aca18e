package postcode

import "regexp"

// space is whitespace in the Unicode sense, not just ASCII \s: it adds
// vertical tab, the Z separators (no-break space among them), NEL and the
// information separators.
const space = `[\s\v\p{Z}\x{85}\x{1c}-\x{1f}]`

// rePostcode finds the last outward/inward pair in an address. The leading
// greedy .* pushes the match as far right as it can go, and the outward part
// must follow a comma or whitespace.
var rePostcode = regexp.MustCompile(`^.*(?:,|` + space + `)([a-zA-Z]{1,2}[0-9]{1,2})` + space + `?([0-9]{1,2}[a-zA-Z]{1,2})`)

// Postcode is a UK-style postcode split into its outward and inward parts
type Postcode struct {
	Outward string
	Inward  string
}

// String returns the lookup form: outward and inward with no separator
func (p Postcode) String() string {
	return p.Outward + p.Inward
}

// Extract pulls the rightmost postcode-shaped token out of a free-text address.
// Case is kept exactly as it appears in the address.
func Extract(address string) (Postcode, bool) {
	m := rePostcode.FindStringSubmatch(address)
	if len(m) != 3 {
		return Postcode{}, false
	}
	return Postcode{Outward: m[1], Inward: m[2]}, true
}
