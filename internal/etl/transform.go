package etl

import (
	"fmt"

	"github.com/pixperk/bulksql/internal/bulk"
)

type Kind int

const (
	KindInsert Kind = iota
	KindUpdate
)

func (k Kind) String() string {
	if k == KindUpdate {
		return "update"
	}
	return "insert"
}

// BuildOptions controls how a batch is turned into statements.
type BuildOptions struct {
	Kind      Kind
	Keys      bulk.KeySet
	BatchSize int
	// Strict rejects batches whose rows differ from the first row, and
	// update batches with rows missing a key column.
	Strict bool
}

// BuildStatements renders one statement per chunk of at most BatchSize rows.
// Chunks that produce no statement are skipped.
func BuildStatements(table string, rows bulk.Batch, opts BuildOptions) ([]string, error) {
	if !bulk.IsValidIdentifier(table) {
		return nil, fmt.Errorf("invalid table name: %s", table)
	}
	if opts.Kind == KindUpdate && len(opts.Keys) == 0 && opts.Strict {
		return nil, fmt.Errorf("update of %s needs at least one key column", table)
	}
	if opts.Strict {
		if err := rows.Validate(); err != nil {
			return nil, err
		}
		if opts.Kind == KindUpdate {
			if err := rows.ValidateKeys(opts.Keys); err != nil {
				return nil, err
			}
		}
	}

	var stmts []string
	for _, chunk := range bulk.Chunk(rows, opts.BatchSize) {
		var stmt string
		switch opts.Kind {
		case KindUpdate:
			stmt = bulk.Update(table, chunk, opts.Keys)
		default:
			stmt = bulk.Insert(table, chunk)
		}
		if stmt != "" {
			stmts = append(stmts, stmt)
		}
	}
	return stmts, nil
}
