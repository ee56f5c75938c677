package cmd

import (
	"errors"
	"os"

	"github.com/pixperk/bulksql/internal/config"
	"github.com/pixperk/bulksql/internal/logx"
	"github.com/pixperk/bulksql/internal/ui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var sampleConfigForce bool

var sampleConfigCmd = &cobra.Command{
	Use:   "sample-config",
	Short: "Generate a sample config file (.bulksql.yaml)",
	RunE: func(cmd *cobra.Command, args []string) error {
		ui.PrintTitle("Configuration Generator")
		ui.PrintSubtitle("Creating a sample configuration file")

		log := logx.StyledLog
		path := configPath
		if path == "" {
			path = config.DefaultPath
		}

		if _, err := os.Stat(path); err == nil && !sampleConfigForce {
			err := errors.New(path + " already exists, pass --force to replace it")
			log.Error(err.Error())
			return err
		}

		log.Info("Creating sample configuration file...")
		if err := os.WriteFile(path, []byte(config.Sample), 0o644); err != nil {
			log.Error("Failed to write "+path, zap.Error(err))
			return err
		}

		log.Success("Sample config written to " + path)

		ui.PrintBox("Next Steps",
			"1. Edit "+path+" with your database credentials\n"+
				"2. List your tables and their key columns\n"+
				"3. Run 'bulksql insert --table <t> --input rows.yaml'")
		return nil
	},
}

func init() {
	sampleConfigCmd.Flags().BoolVar(&sampleConfigForce, "force", false, "Overwrite an existing config file")
	rootCmd.AddCommand(sampleConfigCmd)
}
