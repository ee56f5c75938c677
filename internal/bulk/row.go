package bulk

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmptyBatch   = errors.New("batch has no rows or no columns")
	ErrMalformedRow = errors.New("row columns differ from the first row")
	ErrMissingKey   = errors.New("row is missing a key column")
)

// Raw is a pre-formatted SQL fragment that is emitted without quoting or
// escaping, e.g. Raw("NOW()").
type Raw string

// Field is a single column/value pair of a Row.
type Field struct {
	Column string
	Value  any
}

// Row is an ordered record. Values are nil, string, []byte, Raw or a
// numeric/bool Go value.
type Row []Field

// Columns returns the column names in row order.
func (r Row) Columns() []string {
	cols := make([]string, len(r))
	for i, f := range r {
		cols[i] = f.Column
	}
	return cols
}

// Get returns the value stored for col.
func (r Row) Get(col string) (any, bool) {
	for _, f := range r {
		if f.Column == col {
			return f.Value, true
		}
	}
	return nil, false
}

// Batch is an ordered set of rows. Row 0 defines the column set.
type Batch []Row

// Validate checks that every row carries the same columns, in the same
// order, as the first row. The builders themselves do not call it.
func (b Batch) Validate() error {
	if len(b) == 0 || len(b[0]) == 0 {
		return ErrEmptyBatch
	}

	want := b[0].Columns()
	for i, row := range b[1:] {
		got := row.Columns()
		if !sameColumns(want, got) {
			return fmt.Errorf("%w: row %d has (%s), want (%s)",
				ErrMalformedRow, i+1, strings.Join(got, ", "), strings.Join(want, ", "))
		}
	}
	return nil
}

// ValidateKeys checks that every row supplies all key columns.
func (b Batch) ValidateKeys(keys KeySet) error {
	for i, row := range b {
		for _, key := range keys.Sorted() {
			if _, ok := row.Get(key); !ok {
				return fmt.Errorf("%w: row %d has no %q", ErrMissingKey, i, key)
			}
		}
	}
	return nil
}

// Chunk splits the batch into consecutive batches of at most size rows.
// A size below 1 returns the whole batch as a single chunk.
func Chunk(rows Batch, size int) []Batch {
	if len(rows) == 0 {
		return nil
	}
	if size < 1 || size >= len(rows) {
		return []Batch{rows}
	}

	chunks := make([]Batch, 0, (len(rows)+size-1)/size)
	for i := 0; i < len(rows); i += size {
		end := min(i+size, len(rows))
		chunks = append(chunks, rows[i:end])
	}
	return chunks
}

func sameColumns(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
