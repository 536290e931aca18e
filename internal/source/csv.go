package source

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
)

// EachAddress calls fn with the first field of every CSV row in r, in order.
// There is no header row. Rows may have differing field counts and quotes may
// appear inside unquoted fields; blank lines are skipped by the reader and are
// not rows. Returns the number of rows read.
// Reading stops at the first malformed row or the first error from fn.
func EachAddress(r io.Reader, fn func(address string) error) (int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return rows, fmt.Errorf("failed to read CSV record: %w", err)
		}

		rows++
		if err := fn(record[0]); err != nil {
			return rows, err
		}
	}
	return rows, nil
}

// Open opens a CSV file for EachAddress
func Open(filename string) (*os.File, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", filename, err)
	}
	return file, nil
}
