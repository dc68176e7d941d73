package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/lilalabs/keygate/internal/server"
	"github.com/lilalabs/keygate/internal/service"
)

func newServeCmd() *cobra.Command {
	var (
		host string
		port int
		dev  bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the Keygate HTTP server",
		Long:  "Start the HTTP server that issues API keys, registers users, and serves the admin API.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, host, port, dev)
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "HTTP listen host (overrides config)")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "HTTP listen port (overrides config)")
	cmd.Flags().BoolVar(&dev, "dev", false, "Enable development mode (debug logging)")

	return cmd
}

func runServe(cmd *cobra.Command, host string, port int, dev bool) error {
	logLevel := slog.LevelInfo
	if dev {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("host") {
		cfg.Server.Host = host
	}
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = port
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	st, err := openStore(&cfg)
	if err != nil {
		return err
	}
	defer st.Close()
	logger.Info("store ready", "driver", cfg.Database.Driver)

	hasAdmin, err := st.HasAnyAdmin(context.Background())
	if err != nil {
		logger.Warn("failed to check for admin accounts", "error", err)
	} else if !hasAdmin {
		logger.Warn("no admin account exists - run: keygate admin create")
	}

	authSvc := service.NewAuthService(st, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	keySvc := service.NewKeyService(st, cfg.Keys.Prefix, cfg.Keys.TTL)

	srv := server.New(cfg.Server, st, authSvc, keySvc, logger)

	fmt.Printf("→ Keygate listening on http://%s:%d\n", cfg.Server.Host, cfg.Server.Port)
	fmt.Printf("→ Health: http://%s:%d/healthz\n", cfg.Server.Host, cfg.Server.Port)
	fmt.Println()

	return srv.ListenAndServe()
}
