package resolver

import (
	"context"
	"io"
)

// Record holds the administrative areas returned for a single postcode.
// A nil field means the lookup reported no value for it.
type Record struct {
	AdminCounty   *string
	AdminDistrict *string
}

// Resolver looks a postcode up and returns its administrative areas
type Resolver interface {
	Resolve(ctx context.Context, postcode string) (*Record, error)
}

// Session is a Resolver that holds connections for the length of a run
// and must be closed at the end of it.
type Session interface {
	Resolver
	io.Closer
}

// Key picks the tally key for a record: the county when there is one,
// otherwise the district. Reports false when neither is set.
func Key(rec *Record) (string, bool) {
	if rec == nil {
		return "", false
	}
	if rec.AdminCounty != nil {
		return *rec.AdminCounty, true
	}
	if rec.AdminDistrict != nil {
		return *rec.AdminDistrict, true
	}
	return "", false
}
