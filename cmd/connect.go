package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/pixperk/bulksql/internal/db"
	"github.com/pixperk/bulksql/internal/logx"
	"github.com/pixperk/bulksql/internal/source"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	connectConn  connFlags
	connectPgURL string
)

var connectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Test the target database (and Postgres source) connections",
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logx.StyledLog
		ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
		defer cancel()

		cfg, err := loadConfig()
		if err != nil {
			log.Error("Could not load config", zap.Error(err))
			return err
		}
		connectConn.apply(cfg)
		if connectPgURL != "" {
			cfg.PgURL = connectPgURL
		}

		var failed bool

		log.Info(fmt.Sprintf("Testing %s connection...", cfg.EffectiveDriver()))
		conn, err := openConnection(ctx, cfg)
		if err != nil {
			log.Error(fmt.Sprintf("%s connection failed", cfg.EffectiveDriver()), zap.Error(err))
			failed = true
		} else {
			version, _, verr := db.FetchScalar(ctx, conn, "SELECT version()")
			conn.Close()
			if verr != nil {
				log.Warn("Connected, but could not read server version", zap.Error(verr))
			}
			log.Success(fmt.Sprintf("%s connected (server %v)", cfg.EffectiveDriver(), version))
		}

		if cfg.PgURL != "" {
			log.Info("Testing Postgres connection...")
			pg, err := source.ConnectPostgres(ctx, cfg.PgURL, logx.Logger)
			if err != nil {
				log.Error("Postgres connection failed", zap.Error(err))
				failed = true
			} else {
				pg.Close()
				log.Success("Postgres connected")
			}
		}

		if failed {
			return fmt.Errorf("one or more connections failed")
		}
		return nil
	},
}

func init() {
	connectConn.register(connectCmd)
	connectCmd.Flags().StringVar(&connectPgURL, "pg-url", "", "Postgres connection string")
	rootCmd.AddCommand(connectCmd)
}
