package engine

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/county-report/internal/debug"
	"github.com/county-report/internal/postcode"
	"github.com/county-report/internal/resolver"
	"github.com/county-report/internal/source"
	"github.com/county-report/internal/tally"
)

// Counter tallies CSV address rows by the county their postcode resolves to.
// Rows are handled one at a time; each row is extracted, looked up and
// recorded before the next is read.
type Counter struct {
	resolver resolver.Resolver
	trace    *debug.Tracer
}

// NewCounter creates a counter that looks postcodes up with r
func NewCounter(r resolver.Resolver, trace *debug.Tracer) *Counter {
	return &Counter{resolver: r, trace: trace}
}

// Run reads every row from r and returns the filled table. A missing field in
// a lookup result leaves that row unresolved; any other lookup error aborts
// the run and no table is returned.
func (c *Counter) Run(ctx context.Context, r io.Reader) (*tally.Table, error) {
	defer c.trace.Timing("county count")()

	table := tally.NewTable()
	rows, err := source.EachAddress(r, func(address string) error {
		key, ok, err := c.resolveAddress(ctx, address)
		if err != nil {
			return err
		}
		table.Record(key, ok)
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.trace.Printf("Processed %d rows: %d resolved, %d without data", rows, table.Resolved(), table.Unresolved())
	return table, nil
}

func (c *Counter) resolveAddress(ctx context.Context, address string) (string, bool, error) {
	pc, found := postcode.Extract(address)
	if !found {
		c.trace.Printf("No postcode in %q", address)
		return "", false, nil
	}

	rec, err := c.resolver.Resolve(ctx, pc.String())
	if err != nil {
		var mfe *resolver.MissingFieldError
		if errors.As(err, &mfe) {
			c.trace.Printf("Skipping %s: %v", pc, err)
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to resolve postcode %s: %w", pc, err)
	}

	key, ok := resolver.Key(rec)
	if ok {
		c.trace.Printf("%s -> %s", pc, key)
	} else {
		c.trace.Printf("%s has no county or district", pc)
	}
	return key, ok, nil
}
