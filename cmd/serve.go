package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/vijaikiren/portfolio/internal/config"
	"github.com/vijaikiren/portfolio/internal/content"
	"github.com/vijaikiren/portfolio/internal/session"
	"github.com/vijaikiren/portfolio/internal/store"
	"github.com/vijaikiren/portfolio/internal/web"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the portfolio over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if serveAddr != "" {
			cfg.Addr = serveAddr
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		logger := cfg.NewLogger()
		if lvl, _ := cfg.LogLevel(); lvl > slog.LevelDebug {
			gin.SetMode(gin.ReleaseMode)
		}

		catalog, err := content.Default()
		if err != nil {
			return err
		}

		var analytics *store.DB
		if cfg.Analytics.Enabled {
			analytics, err = store.Open(cfg.Analytics.DBPath)
			if err != nil {
				return fmt.Errorf("opening analytics store: %w", err)
			}
			defer analytics.Close()
			logger.Info("visit analytics enabled with hashed IP addresses", "db", cfg.Analytics.DBPath)
		}

		sessions := session.NewStore(cfg.Session.TTL, logger)
		srv, err := web.New(cfg, catalog, sessions, analytics, logger)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return srv.Run(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config)")
	rootCmd.AddCommand(serveCmd)
}
