package engine

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/county-report/internal/debug"
	"github.com/county-report/internal/report"
	"github.com/county-report/internal/resolver"
	"github.com/county-report/internal/tally"
)

// stubResolver answers from a map; postcodes listed in errs fail instead
type stubResolver struct {
	records map[string]*resolver.Record
	errs    map[string]error
	calls   []string
}

func (s *stubResolver) Resolve(_ context.Context, postcode string) (*resolver.Record, error) {
	s.calls = append(s.calls, postcode)
	if err, ok := s.errs[postcode]; ok {
		return nil, err
	}
	rec, ok := s.records[postcode]
	if !ok {
		return nil, &resolver.MissingFieldError{Postcode: postcode, Field: "result"}
	}
	return rec, nil
}

func strPtr(s string) *string { return &s }

func TestCounterRunEndToEnd(t *testing.T) {
	stub := &stubResolver{records: map[string]*resolver.Record{
		"AB12CD": {AdminCounty: strPtr("Countyshire"), AdminDistrict: strPtr("Borough")},
		"EF34GH": {AdminCounty: strPtr("Countyshire")},
		"IJ56KL": {AdminDistrict: strPtr("Districtville")},
	}}

	input := strings.Join([]string{
		`"1 High Street, AB1 2CD"`,
		`"2 Low Road, EF3 4GH"`,
		`"3 Mill Lane, IJ5 6KL"`,
		`No postcode here`,
	}, "\n")

	table, err := NewCounter(stub, nil).Run(context.Background(), strings.NewReader(input))
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	var buf bytes.Buffer
	if err := report.Render(&buf, table); err != nil {
		t.Fatalf("Render() error: %v", err)
	}

	want := "Countyshire: 2 (50.00%)\n" +
		"Districtville: 1 (25.00%)\n" +
		"\n" +
		"No data: 1 (25.00%)\n" +
		"Total: 4 (100.00%)\n"
	if buf.String() != want {
		t.Errorf("report =\n%s\nwant\n%s", buf.String(), want)
	}

	if want := []string{"AB12CD", "EF34GH", "IJ56KL"}; !reflect.DeepEqual(stub.calls, want) {
		t.Errorf("lookups = %v, want %v", stub.calls, want)
	}
}

func TestCounterRunNoData(t *testing.T) {
	stub := &stubResolver{records: map[string]*resolver.Record{
		"AB12CD": {},
	}}

	input := "\"1 Road, AB1 2CD\"\n\"2 Road, ZZ9 9ZZ\"\nnothing\n"
	table, err := NewCounter(stub, nil).Run(context.Background(), strings.NewReader(input))
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if got := table.Buckets(); len(got) != 0 {
		t.Errorf("Buckets() = %v, want none", got)
	}
	if table.Unresolved() != 3 || table.Total() != 3 {
		t.Errorf("unresolved=%d total=%d, want 3/3", table.Unresolved(), table.Total())
	}
}

func TestCounterRunQuotedTextInAddress(t *testing.T) {
	stub := &stubResolver{records: map[string]*resolver.Record{
		"AB12CD": {AdminCounty: strPtr("Countyshire")},
		"EF34GH": {AdminDistrict: strPtr("Districtville")},
	}}

	input := "\"1 Road, AB1 2CD\"\n" +
		"Flat 2 \"Rose Cottage\" High St\n" +
		"Flat 3 \"The Mews\" Mill Lane EF3 4GH\n"
	table, err := NewCounter(stub, nil).Run(context.Background(), strings.NewReader(input))
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if table.Total() != 3 {
		t.Errorf("Total() = %d, want 3", table.Total())
	}
	if table.Unresolved() != 1 {
		t.Errorf("Unresolved() = %d, want 1", table.Unresolved())
	}
	want := []tally.Bucket{{Key: "Countyshire", Count: 1}, {Key: "Districtville", Count: 1}}
	if !reflect.DeepEqual(table.Buckets(), want) {
		t.Errorf("Buckets() = %v, want %v", table.Buckets(), want)
	}
}

func TestCounterRunTransportErrorAborts(t *testing.T) {
	fatal := &resolver.TransportError{
		Postcode: "EF34GH",
		Err:      &resolver.HTTPStatusError{URL: "http://example/postcodes/EF34GH", StatusCode: 500},
	}
	stub := &stubResolver{
		records: map[string]*resolver.Record{"AB12CD": {AdminCounty: strPtr("Countyshire")}},
		errs:    map[string]error{"EF34GH": fatal},
	}

	input := "\"1 Road, AB1 2CD\"\n\"2 Road, EF3 4GH\"\n\"3 Road, IJ5 6KL\"\n"
	table, err := NewCounter(stub, nil).Run(context.Background(), strings.NewReader(input))
	if err == nil {
		t.Fatal("expected run to abort")
	}
	if table != nil {
		t.Error("no table should be returned from an aborted run")
	}

	var se *resolver.HTTPStatusError
	if !errors.As(err, &se) || se.StatusCode != 500 {
		t.Errorf("error = %v, want wrapped HTTP 500", err)
	}
	if len(stub.calls) != 2 {
		t.Errorf("lookups after failure: got %d calls, want 2", len(stub.calls))
	}
}

func TestCounterTraces(t *testing.T) {
	stub := &stubResolver{records: map[string]*resolver.Record{
		"AB12CD": {AdminCounty: strPtr("Countyshire")},
	}}

	var buf bytes.Buffer
	counter := NewCounter(stub, debug.New(true, &buf))
	if _, err := counter.Run(context.Background(), strings.NewReader("\"x, AB1 2CD\"\nnope\n")); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"AB12CD -> Countyshire", `No postcode in "nope"`, "Processed 2 rows"} {
		if !strings.Contains(out, want) {
			t.Errorf("trace %q missing %q", out, want)
		}
	}
}

func TestSumInvariant(t *testing.T) {
	stub := &stubResolver{records: map[string]*resolver.Record{
		"AB12CD": {AdminCounty: strPtr("A")},
		"CD34EF": {AdminDistrict: strPtr("B")},
	}}

	input := "\"r, AB1 2CD\"\n\"r, CD3 4EF\"\n\"r, XX1 1XX\"\nnone\n\"r, AB1 2CD\"\n"
	table, err := NewCounter(stub, nil).Run(context.Background(), strings.NewReader(input))
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	sum := 0
	for _, b := range table.Buckets() {
		sum += b.Count
	}
	if sum+table.Unresolved() != table.Total() || table.Total() != 5 {
		t.Errorf("sum=%d unresolved=%d total=%d", sum, table.Unresolved(), table.Total())
	}
	want := []tally.Bucket{{Key: "A", Count: 2}, {Key: "B", Count: 1}}
	if !reflect.DeepEqual(table.Buckets(), want) {
		t.Errorf("Buckets() = %v, want %v", table.Buckets(), want)
	}
}
