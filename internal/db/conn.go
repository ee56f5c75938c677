package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/pixperk/bulksql/internal/bulk"
	"go.uber.org/zap"
)

var (
	ErrConnect    = errors.New("failed to connect")
	ErrEmptyQuery = errors.New("query is empty")
)

// Connection is the capability the rest of bulksql needs from a database.
type Connection interface {
	// Exec runs a statement that does not return rows.
	Exec(ctx context.Context, query string) (Result, error)

	// Query runs a statement and materializes every returned row.
	Query(ctx context.Context, query string) (*RowSet, error)

	// EscapeNative escapes s the way the connected server expects.
	EscapeNative(s string) string

	Close() error
}

// Result mirrors sql.Result without the error returns.
type Result struct {
	RowsAffected int64
	LastInsertID int64
}

// RowSet is a fully read query result.
type RowSet struct {
	Columns []string
	Rows    bulk.Batch
}

// Conn is a Connection backed by database/sql.
type Conn struct {
	db     *sql.DB
	driver string
	escape func(string) string
	retry  RetryConfig
	logger *zap.Logger
}

type Option func(*Conn)

func WithLogger(l *zap.Logger) Option {
	return func(c *Conn) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithRetry retries Exec calls that failed to reach the server. Statements
// are not idempotent, so errors reported by the server are returned at once
// unless cfg.Retryable says otherwise. Query is never retried.
func WithRetry(cfg RetryConfig) Option {
	return func(c *Conn) {
		if cfg.Retryable == nil {
			cfg.Retryable = IsConnectionError
		}
		c.retry = cfg
	}
}

func withEscaper(fn func(string) string) Option {
	return func(c *Conn) {
		c.escape = fn
	}
}

// New wraps an already opened *sql.DB.
func New(db *sql.DB, driver string, opts ...Option) *Conn {
	c := &Conn{
		db:     db,
		driver: driver,
		escape: bulk.Escape,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Driver returns the driver name the connection was opened with.
func (c *Conn) Driver() string {
	return c.driver
}

func (c *Conn) Exec(ctx context.Context, query string) (Result, error) {
	if query == "" {
		return Result{}, ErrEmptyQuery
	}

	var res sql.Result
	run := func() error {
		var err error
		res, err = c.db.ExecContext(ctx, query)
		return err
	}

	var err error
	if c.retry.MaxAttempts > 1 {
		err = Retry(ctx, c.logger, c.retry, run)
	} else {
		err = run()
	}
	if err != nil {
		return Result{}, fmt.Errorf("exec failed: %w", err)
	}

	var out Result
	// some drivers (clickhouse) do not report either value
	if n, err := res.RowsAffected(); err == nil {
		out.RowsAffected = n
	}
	if id, err := res.LastInsertId(); err == nil {
		out.LastInsertID = id
	}

	c.logger.Debug("Executed statement",
		zap.String("driver", c.driver),
		zap.Int("bytes", len(query)),
		zap.Int64("rows_affected", out.RowsAffected),
	)
	return out, nil
}

func (c *Conn) Query(ctx context.Context, query string) (*RowSet, error) {
	if query == "" {
		return nil, ErrEmptyQuery
	}

	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("could not get columns: %w", err)
	}

	set := &RowSet{Columns: cols}
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("could not read row values: %w", err)
		}

		row := make(bulk.Row, len(cols))
		for i, col := range cols {
			v := values[i]
			// text protocol drivers hand back []byte for most columns
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			row[i] = bulk.Field{Column: col, Value: v}
		}
		set.Rows = append(set.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return set, nil
}

func (c *Conn) EscapeNative(s string) string {
	return c.escape(s)
}

// Ping verifies the connection is alive.
func (c *Conn) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

func (c *Conn) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}
