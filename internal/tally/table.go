package tally

// Bucket is one key and how many rows resolved to it
type Bucket struct {
	Key   string
	Count int
}

// Table counts rows per key in first-seen order. Every row is recorded
// exactly once, resolved or not, so Total is the input row count.
type Table struct {
	order  []string
	counts map[string]int
	rows   int
}

// NewTable creates an empty table
func NewTable() *Table {
	return &Table{counts: make(map[string]int)}
}

// Record counts one row. When ok is false the row only adds to the total.
func (t *Table) Record(key string, ok bool) {
	t.rows++
	if !ok {
		return
	}
	if _, seen := t.counts[key]; !seen {
		t.order = append(t.order, key)
	}
	t.counts[key]++
}

// Buckets returns the counts in the order keys were first recorded
func (t *Table) Buckets() []Bucket {
	buckets := make([]Bucket, 0, len(t.order))
	for _, key := range t.order {
		buckets = append(buckets, Bucket{Key: key, Count: t.counts[key]})
	}
	return buckets
}

// Count returns the rows recorded against key
func (t *Table) Count(key string) int {
	return t.counts[key]
}

// Total returns every row recorded
func (t *Table) Total() int {
	return t.rows
}

// Resolved returns the rows that landed in a bucket
func (t *Table) Resolved() int {
	sum := 0
	for _, n := range t.counts {
		sum += n
	}
	return sum
}

// Unresolved returns the rows that did not
func (t *Table) Unresolved() int {
	return t.rows - t.Resolved()
}
