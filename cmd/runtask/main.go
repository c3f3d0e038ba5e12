// Package main runs the report bot once for a single task, outside of the
// webhook server.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"crosstab/internal/config"
	appctx "crosstab/internal/core/context"
	"crosstab/internal/core/id"
	"crosstab/internal/domain/auth"
	"crosstab/internal/domain/bot"
	"crosstab/internal/domain/runs"
	"crosstab/internal/infrastructure/pyrus"
	"crosstab/pkg/logger"
)

var configPath string

func main() {
	root := rootCmd()
	root.AddCommand(tokenCmd())
	if err := root.Execute(); err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var taskID int
	cmd := &cobra.Command{
		Use:           "runtask",
		Short:         "Rebuild the report tables of one task",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if taskID <= 0 {
				return errors.New("--task is required")
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := cfg.ValidateCLI(); err != nil {
				return err
			}
			run, err := runTask(cmd.Context(), cfg, taskID)
			if err != nil {
				return err
			}
			if err := printJSON(run); err != nil {
				return err
			}
			if run.Status == runs.StatusFailed {
				return fmt.Errorf("run failed: %s", run.Error)
			}
			return nil
		},
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", os.Getenv("CROSSTAB_CONFIG"), "path to config file (json or yaml)")
	cmd.Flags().IntVarP(&taskID, "task", "t", 0, "task id")
	return cmd
}

func tokenCmd() *cobra.Command {
	var (
		userID string
		ttl    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an admin token for the run journal API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.Server.AdminJWTSecret == "" {
				return errors.New("server.admin_jwt_secret is not configured")
			}
			jwtCfg := auth.DefaultJWTConfig(cfg.Server.AdminJWTSecret)
			if ttl > 0 {
				jwtCfg.AccessTokenTTL = ttl
			}
			token, expiresAt, err := auth.NewJWTService(jwtCfg).GenerateAccessToken(userID, []string{auth.RoleAdmin})
			if err != nil {
				return err
			}
			return printJSON(map[string]any{"token": token, "expiresAt": expiresAt})
		},
	}
	cmd.Flags().StringVar(&userID, "user", "operator", "user id recorded in the token")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (default from config)")
	return cmd
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func runTask(ctx context.Context, cfg *config.Config, taskID int) (*runs.Run, error) {
	log, err := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Development: cfg.Log.Development,
		OutputPaths: []string{"stderr"},
	})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = log.Sync() }()
	ctx = logger.WithLogger(ctx, log.WithComponent("runtask"))

	connector := pyrus.NewConnector(pyrus.Config{
		BaseURL:    cfg.Pyrus.BaseURL,
		AuthURL:    cfg.Pyrus.AuthURL,
		Timeout:    cfg.Pyrus.Timeout,
		RetryCount: cfg.Pyrus.RetryCount,
	}, cfg.Pyrus.Login, cfg.Pyrus.SecurityKey)

	journal := runs.NewService(runs.NewMemoryRepository(1))
	runner := bot.NewRunner(cfg.Bot.Runner(), connector, bot.NewReportsFactory(cfg.Bot.Reports()), journal)

	return runner.Run(ctx, bot.Job{
		TaskID:  taskID,
		Session: appctx.Session{SessionID: id.NewSession()},
	}), nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
