package cmd

import (
	"fmt"
	"os"

	"github.com/pixperk/bulksql/internal/bulk"
	"github.com/pixperk/bulksql/internal/db"
	"github.com/pixperk/bulksql/internal/logx"
	"github.com/pixperk/bulksql/internal/ui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	querySQL  string
	queryMode string
	queryConn connFlags
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Run a query and print a scalar, the first record or all rows",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		log := logx.StyledLog

		cfg, err := loadConfig()
		if err != nil {
			log.Error("Could not load config", zap.Error(err))
			return err
		}
		queryConn.apply(cfg)

		conn, err := openConnection(ctx, cfg)
		if err != nil {
			log.Error("Failed to connect", zap.Error(err))
			return err
		}
		defer conn.Close()

		switch queryMode {
		case "scalar":
			v, ok, err := db.FetchScalar(ctx, conn, querySQL)
			if err != nil {
				log.Error("Query failed", zap.Error(err))
				return err
			}
			if !ok {
				log.Warn("Query returned no rows")
				return nil
			}
			fmt.Fprintln(os.Stdout, formatCell(v))
		case "record":
			row, ok, err := db.FetchRecord(ctx, conn, querySQL)
			if err != nil {
				log.Error("Query failed", zap.Error(err))
				return err
			}
			if !ok {
				log.Warn("Query returned no rows")
				return nil
			}
			ui.DisplayTable(os.Stdout, row.Columns(), toCells(bulk.Batch{row}))
		case "all":
			all, err := db.FetchAll(ctx, conn, querySQL)
			if err != nil {
				log.Error("Query failed", zap.Error(err))
				return err
			}
			if len(all) == 0 {
				log.Warn("Query returned no rows")
				return nil
			}
			ui.DisplayTable(os.Stdout, all[0].Columns(), toCells(all))
			log.Info(fmt.Sprintf("%d row(s)", len(all)))
		default:
			return fmt.Errorf("unknown mode %q (want scalar, record or all)", queryMode)
		}
		return nil
	},
}

func formatCell(v any) string {
	if v == nil {
		return ui.NullText
	}
	return fmt.Sprint(v)
}

func toCells(batch bulk.Batch) [][]*string {
	out := make([][]*string, len(batch))
	for i, row := range batch {
		cells := make([]*string, len(row))
		for j, f := range row {
			if f.Value != nil {
				s := fmt.Sprint(f.Value)
				cells[j] = &s
			}
		}
		out[i] = cells
	}
	return out
}

func init() {
	queryCmd.Flags().StringVar(&querySQL, "sql", "", "SQL to run")
	queryCmd.Flags().StringVar(&queryMode, "mode", "all", "Result shape: scalar, record or all")
	queryConn.register(queryCmd)
	_ = queryCmd.MarkFlagRequired("sql")

	rootCmd.AddCommand(queryCmd)
}
