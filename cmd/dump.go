package cmd

import (
	"fmt"
	"strings"

	"github.com/pixperk/bulksql/internal/config"
	"github.com/pixperk/bulksql/internal/etl"
	"github.com/pixperk/bulksql/internal/logx"
	"github.com/pixperk/bulksql/internal/source"
	"github.com/pixperk/bulksql/internal/ui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	dumpPgURL  string
	dumpTables []string
	dumpLimit  int
	dumpConn   connFlags
	dumpOut    outputFlags
)

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Dump Postgres tables as MySQL bulk INSERT statements",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		log := logx.StyledLog

		cfg, err := loadConfig()
		if err != nil {
			log.Error("Could not load config", zap.Error(err))
			return err
		}
		if dumpPgURL != "" {
			cfg.PgURL = dumpPgURL
		}
		dumpConn.apply(cfg)
		dumpOut.apply(cmd, cfg)

		if cfg.PgURL == "" {
			err := fmt.Errorf("missing postgres url: set pg_url or --pg-url")
			log.Error(err.Error())
			return err
		}

		names := dumpTables
		if len(names) == 0 {
			for _, t := range cfg.Tables {
				names = append(names, t.Name)
			}
		}
		if len(names) == 0 {
			err := fmt.Errorf("no tables to dump: pass --table or list tables in the config")
			log.Error(err.Error())
			return err
		}

		tables := make([]config.ResolvedTableConfig, len(names))
		for i, name := range names {
			tables[i] = cfg.ResolveTableConfig(name)
			if dumpOut.name != "" {
				tables[i].FileName = dumpOut.name
			}
		}

		pg, err := source.ConnectPostgres(ctx, cfg.PgURL, logx.Logger)
		if err != nil {
			log.Error("Failed to connect to PostgreSQL", zap.Error(err))
			return err
		}
		defer pg.Close()

		s, closeSink, err := openSink(ctx, dumpOut.mode, cfg)
		if err != nil {
			log.Error("Could not open output", zap.Error(err))
			return err
		}
		defer closeSink()

		log.Highlight(fmt.Sprintf("Dumping %d table(s)", len(tables)))
		results := etl.DumpTables(ctx, pg, s, tables, dumpLimit, cfg.IsStrict(), &etl.Options{
			Logger:       logx.Logger,
			OnTableStart: func(name string) { log.Debug("Dumping table", zap.String("table", name)) },
			OnTableError: func(name string, err error) {
				log.Error("Table failed", zap.String("table", name), zap.Error(err))
			},
		})

		var failed []string
		var lines []string
		for _, r := range results {
			status := "ok"
			if !r.Success {
				status = "failed"
				failed = append(failed, r.TableName)
			}
			lines = append(lines, fmt.Sprintf("%s: %s (%d rows, %d statements)", r.TableName, status, r.RowCount, r.Statements))
		}
		if !log.Quiet() {
			ui.PrintBox("Dump Result", strings.Join(lines, "\n"))
		}

		if len(failed) > 0 {
			return fmt.Errorf("dump failed for: %s", strings.Join(failed, ", "))
		}
		log.Success("Dump completed successfully")
		return nil
	},
}

func init() {
	dumpCmd.Flags().StringVar(&dumpPgURL, "pg-url", "", "Postgres connection URL")
	dumpCmd.Flags().StringSliceVar(&dumpTables, "table", nil, "Table(s) to dump (default: tables from config)")
	dumpCmd.Flags().IntVar(&dumpLimit, "limit", 0, "Max rows per table (0 for all)")
	dumpConn.register(dumpCmd)
	dumpOut.register(dumpCmd)

	rootCmd.AddCommand(dumpCmd)
}
