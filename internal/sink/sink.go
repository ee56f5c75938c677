package sink

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/pixperk/bulksql/internal/db"
	"go.uber.org/zap"
)

var (
	ErrEmptyStatement = errors.New("no statement to write")
	ErrNoTarget       = errors.New("target has neither table nor name")
)

// Target names what a statement belongs to. Name selects the output file and
// falls back to Table.
type Target struct {
	Table string
	Name  string
}

func (t Target) FileName() string {
	if t.Name != "" {
		return t.Name
	}
	return t.Table
}

// Sink consumes generated SQL text.
type Sink interface {
	Write(ctx context.Context, target Target, stmt string) error
}

type Mode int

const (
	// Append adds statements to the end of <dir>/<name>.sql.
	Append Mode = iota
	// Overwrite truncates <dir>/<name>.sql on the first write of the sink,
	// later writes to the same file append.
	Overwrite
)

func (m Mode) String() string {
	if m == Overwrite {
		return "overwrite"
	}
	return "append"
}

// File writes statements to <dir>/<name>.sql.
type File struct {
	dir    string
	mode   Mode
	logger *zap.Logger

	mu      sync.Mutex
	touched map[string]bool
}

func NewFile(dir string, mode Mode, logger *zap.Logger) *File {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &File{
		dir:     dir,
		mode:    mode,
		logger:  logger,
		touched: make(map[string]bool),
	}
}

// Path returns the file a target is written to.
func (f *File) Path(target Target) string {
	return filepath.Join(f.dir, target.FileName()+".sql")
}

func (f *File) Write(ctx context.Context, target Target, stmt string) error {
	if stmt == "" {
		return ErrEmptyStatement
	}
	if target.FileName() == "" {
		return ErrNoTarget
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return fmt.Errorf("could not create output directory '%s': %w", f.dir, err)
	}

	path := f.Path(target)
	flags := os.O_CREATE | os.O_WRONLY | os.O_APPEND
	if f.mode == Overwrite && !f.touched[path] {
		flags = os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	}

	file, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return fmt.Errorf("could not open output file '%s': %w", path, err)
	}
	defer file.Close()

	n, err := file.WriteString(stmt)
	if err != nil {
		return fmt.Errorf("could not write to '%s': %w", path, err)
	}
	f.touched[path] = true

	f.logger.Info("Wrote statement to file",
		zap.String("table", target.Table),
		zap.String("path", path),
		zap.String("mode", f.mode.String()),
		zap.Int("bytes", n),
	)
	return nil
}

// Exec runs statements on a connection.
type Exec struct {
	conn   db.Connection
	logger *zap.Logger
}

func NewExec(conn db.Connection, logger *zap.Logger) *Exec {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Exec{conn: conn, logger: logger}
}

func (e *Exec) Write(ctx context.Context, target Target, stmt string) error {
	if stmt == "" {
		return ErrEmptyStatement
	}

	res, err := e.conn.Exec(ctx, stmt)
	if err != nil {
		return fmt.Errorf("failed to execute statement for %s: %w", target.Table, err)
	}

	e.logger.Info("Executed statement",
		zap.String("table", target.Table),
		zap.Int64("rows_affected", res.RowsAffected),
	)
	return nil
}

// Writer streams statements to an io.Writer, one per line group.
type Writer struct {
	mu sync.Mutex
	w  io.Writer
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

func (w *Writer) Write(ctx context.Context, target Target, stmt string) error {
	if stmt == "" {
		return ErrEmptyStatement
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := io.WriteString(w.w, stmt); err != nil {
		return fmt.Errorf("failed to write to writer: %w", err)
	}
	return nil
}
