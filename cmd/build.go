package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/pixperk/bulksql/internal/etl"
	"github.com/pixperk/bulksql/internal/logx"
	"github.com/pixperk/bulksql/internal/rows"
	"github.com/pixperk/bulksql/internal/ui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type buildFlags struct {
	table string
	input string
	keys  []string
	conn  connFlags
	out   outputFlags
}

// newBuildCommand wires the shared insert/update command.
func newBuildCommand(kind etl.Kind, use, short string) *cobra.Command {
	var f buildFlags

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd, kind, &f)
		},
	}

	cmd.Flags().StringVar(&f.table, "table", "", "Target table name")
	cmd.Flags().StringVar(&f.input, "input", "", "Rows file (.yaml, .yml, .json or .csv)")
	if kind == etl.KindUpdate {
		cmd.Flags().StringSliceVar(&f.keys, "keys", nil, "Key columns identifying each row (default from config)")
	}
	f.conn.register(cmd)
	f.out.register(cmd)

	_ = cmd.MarkFlagRequired("table")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func runBuild(cmd *cobra.Command, kind etl.Kind, f *buildFlags) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	log := logx.StyledLog.With(zap.String("table", f.table), zap.String("kind", kind.String()))

	cfg, err := loadConfig()
	if err != nil {
		log.Error("Could not load config", zap.Error(err))
		return err
	}
	f.conn.apply(cfg)
	f.out.apply(cmd, cfg)

	batch, err := rows.Load(f.input)
	if err != nil {
		log.Error("Could not read rows", zap.String("input", f.input), zap.Error(err))
		return err
	}
	log.Info(fmt.Sprintf("Read %d rows from %s", len(batch), f.input))

	table := cfg.ResolveTableConfig(f.table)
	if len(f.keys) > 0 {
		table.Keys = f.keys
	}

	s, closeSink, err := openSink(ctx, f.out.mode, cfg)
	if err != nil {
		log.Error("Could not open output", zap.String("mode", f.out.mode), zap.Error(err))
		return err
	}
	defer closeSink()

	result := etl.RunJob(ctx, s, etl.Job{
		Table:    table,
		Rows:     batch,
		Kind:     kind,
		Strict:   cfg.IsStrict(),
		FileName: f.out.name,
	}, &etl.Options{Logger: logx.Logger})
	if result.Error != nil {
		log.Error("Failed to write statements", zap.Error(result.Error))
		return result.Error
	}

	log.Success(fmt.Sprintf("Wrote %d %s statement(s) for %d rows", result.Statements, strings.ToUpper(kind.String()), result.RowCount))
	if !log.Quiet() && f.out.mode != modeStdout {
		ui.PrintBox("Result", fmt.Sprintf(
			"Table: %s\nRows: %d\nStatements: %d\nMode: %s\nDuration: %s",
			table.Name, result.RowCount, result.Statements, f.out.mode, result.Duration,
		))
	}
	return nil
}

func init() {
	rootCmd.AddCommand(newBuildCommand(etl.KindInsert, "insert", "Build multi-row INSERT statements from a rows file"))
	rootCmd.AddCommand(newBuildCommand(etl.KindUpdate, "update", "Build a CASE/WHEN bulk UPDATE from a rows file"))
}
