package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/pixperk/bulksql/internal/logx"
	"github.com/pixperk/bulksql/internal/ui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configPath     string
	verboseLogging bool
	quietOutput    bool
)

var rootCmd = &cobra.Command{
	Use:   "bulksql",
	Short: "bulksql builds multi-row INSERT and CASE-based UPDATE statements",
	Long: `bulksql turns rows from YAML, JSON, CSV or a Postgres table into
escaped multi-row MySQL statements, then writes them to .sql files,
stdout or straight to the database.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Initialize logger with verbosity level
		logx.InitLoggerWithLevel(verboseLogging)
		logx.SetQuiet(quietOutput)
	},
	Run: func(cmd *cobra.Command, args []string) {
		showLogo()
		_ = cmd.Help()
	},
}

// showLogo displays the application logo and header
func showLogo() {
	ui.PrintLogo()
	ui.PrintTitle("bulksql: bulk statement builder")
	ui.PrintSubtitle("rows in, escaped SQL out")
	fmt.Fprintln(ui.Out)
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	defer logx.Sync()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logx.StyledLog.Error("Command execution failed", zap.Error(err))
		logx.Sync()
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config file (default: .bulksql.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verboseLogging, "verbose", "v", false, "Enable verbose logging (shows all operations)")
	rootCmd.PersistentFlags().BoolVarP(&quietOutput, "quiet", "q", false, "Only print errors to the terminal")
}
