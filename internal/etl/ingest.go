package etl

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/pixperk/bulksql/internal/bulk"
	"github.com/pixperk/bulksql/internal/config"
	"github.com/pixperk/bulksql/internal/sink"
	"go.uber.org/zap"
)

var ErrNothingToWrite = errors.New("batch produced no statement")

// Extractor supplies the rows of a table.
type Extractor interface {
	Extract(ctx context.Context, table string, limit int) (bulk.Batch, error)
}

// TableResult represents the result of processing a single table
type TableResult struct {
	TableName  string
	Success    bool
	Error      error
	RowCount   int
	Statements int
	Duration   time.Duration
}

// Options contains optional callbacks for logging/monitoring
type Options struct {
	Logger          *zap.Logger
	OnTableStart    func(tableName string)
	OnBuilt         func(tableName string, statements int)
	OnTableComplete func(tableName string, result TableResult)
	OnTableError    func(tableName string, err error)
}

func (o *Options) logger() *zap.Logger {
	if o == nil || o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

// Job is one table worth of rows bound for a sink.
type Job struct {
	Table    config.ResolvedTableConfig
	Rows     bulk.Batch
	Kind     Kind
	Strict   bool
	FileName string
}

func (j Job) target() sink.Target {
	name := j.FileName
	if name == "" {
		name = j.Table.FileName
	}
	return sink.Target{Table: j.Table.Name, Name: name}
}

// RunJob builds the statements for a job and writes them to s.
func RunJob(ctx context.Context, s sink.Sink, job Job, opts *Options) TableResult {
	startTime := time.Now()
	name := job.Table.Name
	result := TableResult{TableName: name, RowCount: len(job.Rows)}

	fail := func(err error) TableResult {
		result.Error = err
		result.Duration = time.Since(startTime)
		if opts != nil && opts.OnTableError != nil {
			opts.OnTableError(name, err)
		}
		return result
	}

	if opts != nil && opts.OnTableStart != nil {
		opts.OnTableStart(name)
	}

	stmts, err := BuildStatements(name, job.Rows, BuildOptions{
		Kind:      job.Kind,
		Keys:      bulk.NewKeySet(job.Table.Keys...),
		BatchSize: job.Table.BatchSize,
		Strict:    job.Strict,
	})
	if err != nil {
		return fail(fmt.Errorf("build failed: %w", err))
	}
	if len(stmts) == 0 {
		return fail(fmt.Errorf("%s %s: %w", job.Kind, name, ErrNothingToWrite))
	}

	if opts != nil && opts.OnBuilt != nil {
		opts.OnBuilt(name, len(stmts))
	}

	written, err := LoadStatements(ctx, s, job.target(), stmts, opts.logger())
	result.Statements = written
	if err != nil {
		return fail(fmt.Errorf("load failed: %w", err))
	}

	result.Success = true
	result.Duration = time.Since(startTime)

	opts.logger().Info("Processed table",
		zap.String("table", name),
		zap.String("kind", job.Kind.String()),
		zap.Int("rows", result.RowCount),
		zap.Int("statements", result.Statements),
		zap.Duration("duration", result.Duration),
	)
	if opts != nil && opts.OnTableComplete != nil {
		opts.OnTableComplete(name, result)
	}
	return result
}

// DumpTables extracts every table and writes INSERT statements for it to s.
// Tables are processed in parallel; results come back in input order. An
// empty table succeeds with no statements and leaves the sink untouched.
func DumpTables(
	ctx context.Context,
	src Extractor,
	s sink.Sink,
	tables []config.ResolvedTableConfig,
	limit int,
	strict bool,
	opts *Options,
) []TableResult {
	results := make([]TableResult, len(tables))
	var wg sync.WaitGroup

	for i, tc := range tables {
		wg.Add(1)
		go func(i int, tableConfig config.ResolvedTableConfig) {
			defer wg.Done()

			rows, err := src.Extract(ctx, tableConfig.Name, limit)
			if err != nil {
				err = fmt.Errorf("extraction failed: %w", err)
				if opts != nil && opts.OnTableError != nil {
					opts.OnTableError(tableConfig.Name, err)
				}
				results[i] = TableResult{TableName: tableConfig.Name, Error: err}
				return
			}

			if len(rows) == 0 {
				opts.logger().Warn("Table is empty, nothing to dump", zap.String("table", tableConfig.Name))
				results[i] = TableResult{TableName: tableConfig.Name, Success: true}
				if opts != nil && opts.OnTableComplete != nil {
					opts.OnTableComplete(tableConfig.Name, results[i])
				}
				return
			}

			results[i] = RunJob(ctx, s, Job{
				Table:  tableConfig,
				Rows:   rows,
				Kind:   KindInsert,
				Strict: strict,
			}, opts)
		}(i, tc)
	}

	wg.Wait()
	return results
}
