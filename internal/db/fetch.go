package db

import (
	"context"

	"github.com/pixperk/bulksql/internal/bulk"
)

// FetchScalar returns the first column of the first row. The bool is false
// when the query returned no rows.
func FetchScalar(ctx context.Context, c Connection, query string) (any, bool, error) {
	row, ok, err := FetchRecord(ctx, c, query)
	if err != nil || !ok || len(row) == 0 {
		return nil, false, err
	}
	return row[0].Value, true, nil
}

// FetchRecord returns the first row of the result.
func FetchRecord(ctx context.Context, c Connection, query string) (bulk.Row, bool, error) {
	set, err := c.Query(ctx, query)
	if err != nil {
		return nil, false, err
	}
	if len(set.Rows) == 0 {
		return nil, false, nil
	}
	return set.Rows[0], true, nil
}

// FetchAll returns every row of the result.
func FetchAll(ctx context.Context, c Connection, query string) (bulk.Batch, error) {
	set, err := c.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	return set.Rows, nil
}
