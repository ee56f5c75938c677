package source

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pixperk/bulksql/internal/bulk"
	"go.uber.org/zap"
)

// Postgres reads whole tables out of PostgreSQL for dumping as MySQL INSERTs.
type Postgres struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func ConnectPostgres(ctx context.Context, pgURL string, logger *zap.Logger) (*Postgres, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	config, err := pgxpool.ParseConfig(pgURL)
	if err != nil {
		return nil, fmt.Errorf("invalid postgres url: %w", err)
	}
	config.MaxConns = 4

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	return &Postgres{pool: pool, logger: logger}, nil
}

func (p *Postgres) Close() {
	p.pool.Close()
}

// Extract reads up to limit rows of table (all rows when limit < 1).
func (p *Postgres) Extract(ctx context.Context, table string, limit int) (bulk.Batch, error) {
	var rows pgx.Rows
	var err error

	query := "SELECT * FROM " + tableIdentifier(table)
	if limit > 0 {
		rows, err = p.pool.Query(ctx, query+" LIMIT $1", limit)
	} else {
		rows, err = p.pool.Query(ctx, query)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query table data: %w", err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	var batch bulk.Batch
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("failed to get row values: %w", err)
		}

		row := make(bulk.Row, len(values))
		for i, v := range values {
			row[i] = bulk.Field{Column: fields[i].Name, Value: Normalize(v)}
		}
		batch = append(batch, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	p.logger.Info("Extracted table",
		zap.String("table", table),
		zap.Int("rows", len(batch)),
		zap.Int("columns", len(fields)),
	)
	return batch, nil
}

// tableIdentifier quotes each part of a possibly schema-qualified name.
func tableIdentifier(table string) string {
	return pgx.Identifier(strings.Split(table, ".")).Sanitize()
}

// Normalize maps pgx values to ones the bulk builder renders as valid MySQL
// literals. Numbers and bools stay as they are, NUMERIC becomes a raw decimal,
// json and arrays become JSON text and everything else a quoted string.
// Values MySQL cannot store (NaN, infinities) become NULL.
func Normalize(v any) any {
	switch val := v.(type) {
	case nil, string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64:
		return val
	case float32:
		return finite(float64(val), val)
	case float64:
		return finite(val, val)
	case time.Time:
		return val.UTC().Format("2006-01-02 15:04:05.999999")
	case [16]byte:
		return uuid.UUID(val).String()
	case []byte:
		return string(val)
	case pgtype.Numeric:
		if !val.Valid || val.NaN || val.InfinityModifier != pgtype.Finite {
			return nil
		}
		text, err := val.Value()
		if err != nil {
			return nil
		}
		if s, ok := text.(string); ok {
			return bulk.Raw(s)
		}
		return nil
	case driver.Valuer:
		inner, err := val.Value()
		if err != nil {
			return fmt.Sprint(val)
		}
		return Normalize(inner)
	case fmt.Stringer:
		return val.String()
	}

	switch reflect.ValueOf(v).Kind() {
	case reflect.Map, reflect.Slice, reflect.Array:
		if b, err := json.Marshal(v); err == nil {
			return string(b)
		}
	}
	return fmt.Sprint(v)
}

func finite(f float64, v any) any {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return v
}
