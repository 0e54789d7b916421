package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/studyloop/internal/config"
	"github.com/abhisek/studyloop/internal/logger"
	"github.com/abhisek/studyloop/internal/store"
)

var (
	appCfg config.Config
	appLog = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:           "studyloop",
	Short:         "Practice tests and mistake revision",
	Long:          "studyloop generates practice tests, remembers the questions you got wrong and builds revision tests from them.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig(cmd)
	},
}

func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintln(rootCmd.ErrOrStderr(), "Error:", err)
	}
	_ = appLog.Sync()
	return err
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("db", "", "Path to SQLite database file (overrides STUDYLOOP_DB)")
	pf.String("config", "", "Path to config file (default $XDG_CONFIG_HOME/studyloop/config.yaml)")
	pf.StringP("user", "u", "", "Learner ID (overrides config and STUDYLOOP_USER)")
	pf.String("log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(testCmd)
	rootCmd.AddCommand(reviseCmd)
	rootCmd.AddCommand(progressCmd)
	rootCmd.AddCommand(leaderboardCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig resolves the config file, then lets flags win over it.
func loadConfig(cmd *cobra.Command) error {
	path, _ := cmd.Flags().GetString("config")
	optional := path == ""
	if optional {
		p, err := config.DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}

	cfg, err := config.Load(path, optional)
	if err != nil {
		return err
	}
	if v, _ := cmd.Flags().GetString("db"); v != "" {
		cfg.DB = v
	}
	if v, _ := cmd.Flags().GetString("user"); v != "" {
		cfg.User = v
	}
	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		cfg.Log.Level = v
	}

	log, err := logger.New(cfg.Log.Mode, cfg.Log.Level)
	if err != nil {
		return err
	}
	appCfg = cfg
	appLog = log
	return nil
}

// resolveDBPath returns the database path from --db or config (highest
// priority), then the default XDG path.
func resolveDBPath() (string, error) {
	if appCfg.DB != "" {
		return appCfg.DB, store.EnsureDir(appCfg.DB)
	}
	return store.DefaultDBPath()
}

// openStore opens the configured database.
func openStore() (*store.Store, error) {
	dbPath, err := resolveDBPath()
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(dbPath, store.WithLogger(appLog))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}
