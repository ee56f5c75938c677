package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/pixperk/bulksql/internal/config"
	"github.com/pixperk/bulksql/internal/db"
	"github.com/pixperk/bulksql/internal/logx"
	"github.com/pixperk/bulksql/internal/sink"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	modeOverwrite = "overwrite"
	modeAppend    = "append"
	modeExec      = "exec"
	modeStdout    = "stdout"
)

// connFlags are the connection overrides shared by every command that may
// talk to the target database.
type connFlags struct {
	driver string
	dsn    string
}

func (f *connFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.driver, "driver", "", "Target driver: mysql or clickhouse")
	cmd.Flags().StringVar(&f.dsn, "dsn", "", "Target DSN (mysql DSN or clickhouse URL)")
}

func (f *connFlags) apply(cfg *config.Config) {
	if f.driver != "" {
		cfg.Driver = f.driver
	}
	if f.dsn != "" {
		cfg.DSN = f.dsn
	}
}

// outputFlags select where generated statements go.
type outputFlags struct {
	mode      string
	outDir    string
	name      string
	batchSize int
	strict    bool
}

func (f *outputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.mode, "mode", modeOverwrite, "Where to write: overwrite, append, exec or stdout")
	cmd.Flags().StringVar(&f.outDir, "out", "", "Output directory for .sql files (default from config, then 'sql')")
	cmd.Flags().StringVar(&f.name, "name", "", "Output file name without .sql (defaults to the table name)")
	cmd.Flags().IntVar(&f.batchSize, "batch-size", 0, "Rows per statement (default from config, then 500)")
	cmd.Flags().BoolVar(&f.strict, "strict", true, "Reject rows whose columns differ from the first row")
}

func (f *outputFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	if f.outDir != "" {
		cfg.OutputDir = f.outDir
	}
	if f.batchSize != 0 {
		cfg.BatchSize = f.batchSize
	}
	if cmd.Flags().Changed("strict") || cfg.Strict == nil {
		strict := f.strict
		cfg.Strict = &strict
	}
}

// loadConfig reads the config file and falls back to an empty config when
// there is none.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if errors.Is(err, config.ErrNotFound) && configPath == "" {
		logx.StyledLog.Debug("No config file, using flags only")
		return &config.Config{}, nil
	}
	return cfg, err
}

func openConnection(ctx context.Context, cfg *config.Config) (*db.Conn, error) {
	opts := []db.Option{db.WithLogger(logx.Logger)}
	if cfg.Retry.MaxAttempts > 1 {
		opts = append(opts, db.WithRetry(db.RetryConfig{
			MaxAttempts: cfg.Retry.MaxAttempts,
			BaseDelay:   cfg.Retry.BaseDelay(),
			MaxDelay:    cfg.Retry.MaxDelay(),
			Jitter:      cfg.Retry.Jitter,
		}))
	}

	switch cfg.EffectiveDriver() {
	case db.DriverClickHouse:
		if cfg.DSN == "" {
			return nil, fmt.Errorf("clickhouse needs a dsn")
		}
		return db.OpenClickHouse(ctx, cfg.DSN, opts...)
	default:
		if !cfg.HasConnection() {
			return nil, fmt.Errorf("no database configured: set dsn or host")
		}
		return db.OpenMySQL(ctx, db.MySQLConfig{
			DSN:      cfg.DSN,
			Host:     cfg.Host,
			Port:     cfg.Port,
			User:     cfg.User,
			Password: cfg.Password,
			Database: cfg.Database,
			Charset:  cfg.Charset,
		}, opts...)
	}
}

// openSink returns the sink for mode plus a cleanup func.
func openSink(ctx context.Context, mode string, cfg *config.Config) (sink.Sink, func(), error) {
	switch mode {
	case modeOverwrite:
		return sink.NewFile(cfg.EffectiveOutputDir(), sink.Overwrite, logx.Logger), func() {}, nil
	case modeAppend:
		return sink.NewFile(cfg.EffectiveOutputDir(), sink.Append, logx.Logger), func() {}, nil
	case modeStdout:
		return sink.NewWriter(os.Stdout), func() {}, nil
	case modeExec:
		conn, err := openConnection(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		return sink.NewExec(conn, logx.Logger), func() {
			if err := conn.Close(); err != nil {
				logx.Logger.Warn("Failed to close connection", zap.Error(err))
			}
		}, nil
	default:
		return nil, nil, fmt.Errorf("unknown mode %q (want overwrite, append, exec or stdout)", mode)
	}
}
