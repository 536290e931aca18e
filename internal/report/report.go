package report

import (
	"bufio"
	"fmt"
	"io"

	"github.com/county-report/internal/tally"
)

// Percent returns part as a percentage of whole, or 0 when whole is 0
func Percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return 100 * float64(part) / float64(whole)
}

// Render writes one line per bucket in first-seen order, a blank line,
// then the No data and Total lines.
func Render(w io.Writer, table *tally.Table) error {
	bw := bufio.NewWriter(w)
	total := table.Total()

	for _, b := range table.Buckets() {
		writeLine(bw, b.Key, b.Count, total)
	}
	fmt.Fprintln(bw)

	writeLine(bw, "No data", table.Unresolved(), total)
	writeLine(bw, "Total", total, total)

	return bw.Flush()
}

func writeLine(w io.Writer, lead string, num, total int) {
	fmt.Fprintf(w, "%s: %d (%.2f%%)\n", lead, num, Percent(num, total))
}
