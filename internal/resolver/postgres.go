package resolver

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"regexp"

	"github.com/lib/pq"
)

// DefaultPostcodeTable is the lookup table used when none is configured
const DefaultPostcodeTable = "postcode_lookup"

var reTableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// ErrUnknownPostcode means the lookup table has no row for a postcode
var ErrUnknownPostcode = errors.New("postcode not found")

type rowScanner interface {
	Scan(dest ...interface{}) error
}

type queryRowFunc func(ctx context.Context, query string, args ...interface{}) rowScanner

// PostgresResolver looks postcodes up in a local postcode directory table
// with postcode, admin_county and admin_district columns. Postcodes are
// compared upper-cased with spaces removed.
type PostgresResolver struct {
	query    string
	queryRow queryRowFunc
	closer   io.Closer
}

// NewPostgresResolver prepares lookups against table, which may be
// schema-qualified.
func NewPostgresResolver(db *sql.DB, table string) (*PostgresResolver, error) {
	if db == nil {
		return nil, errors.New("postgres resolver: nil database")
	}
	query, err := lookupQuery(table)
	if err != nil {
		return nil, err
	}
	return &PostgresResolver{
		query: query,
		queryRow: func(ctx context.Context, query string, args ...interface{}) rowScanner {
			return db.QueryRowContext(ctx, query, args...)
		},
		closer: db,
	}, nil
}

func lookupQuery(table string) (string, error) {
	if table == "" {
		table = DefaultPostcodeTable
	}
	m := reTableName.FindStringSubmatch(table)
	if m == nil {
		return "", fmt.Errorf("postgres resolver: invalid table name %q", table)
	}

	quoted := pq.QuoteIdentifier(table)
	if m[1] != "" {
		schema := table[:len(table)-len(m[1])]
		quoted = pq.QuoteIdentifier(schema) + "." + pq.QuoteIdentifier(m[1][1:])
	}

	return fmt.Sprintf(`
		SELECT admin_county, admin_district
		FROM %s
		WHERE REPLACE(UPPER(postcode), ' ', '') = UPPER($1)
		LIMIT 1
	`, quoted), nil
}

// Resolve returns the county and district stored for the postcode. A postcode
// with no row and any database failure are both a *TransportError.
func (r *PostgresResolver) Resolve(ctx context.Context, postcode string) (*Record, error) {
	var county, district sql.NullString
	err := r.queryRow(ctx, r.query, postcode).Scan(&county, &district)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &TransportError{Postcode: postcode, Err: ErrUnknownPostcode}
	}
	if err != nil {
		return nil, &TransportError{Postcode: postcode, Err: err}
	}

	rec := &Record{}
	if county.Valid {
		rec.AdminCounty = &county.String
	}
	if district.Valid {
		rec.AdminDistrict = &district.String
	}
	return rec, nil
}

// Close releases the underlying connection pool
func (r *PostgresResolver) Close() error {
	return r.closer.Close()
}
