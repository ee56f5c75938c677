package etl

import (
	"context"
	"fmt"

	"github.com/pixperk/bulksql/internal/sink"
	"go.uber.org/zap"
)

// LoadStatements hands every statement to s in order and stops at the
// first failure. It returns how many statements were written.
func LoadStatements(ctx context.Context, s sink.Sink, target sink.Target, stmts []string, logger *zap.Logger) (int, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	for i, stmt := range stmts {
		if err := s.Write(ctx, target, stmt); err != nil {
			return i, fmt.Errorf("statement %d/%d for %s: %w", i+1, len(stmts), target.Table, err)
		}
		logger.Debug("Loaded statement",
			zap.String("table", target.Table),
			zap.Int("index", i+1),
			zap.Int("total", len(stmts)),
		)
	}
	return len(stmts), nil
}
