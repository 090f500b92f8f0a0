// Package cli implements the nuka-memory commands.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/nidhogg/nuka-memory/internal/config"
)

var (
	configPath string
	userID     string
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:           "nuka-memory",
	Short:         "Memory retrieval engine with decay, focus and privacy filters",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: $CONFIG_PATH or configs/nuka-memory.json)")
	RootCmd.PersistentFlags().StringVarP(&userID, "user", "u", "", "User id (default: $NUKA_USER)")

	RootCmd.AddCommand(serveCmd)
	RootCmd.AddCommand(migrateCmd)
	RootCmd.AddCommand(rememberCmd)
	RootCmd.AddCommand(recallCmd)
	RootCmd.AddCommand(statsCmd)
	RootCmd.AddCommand(modeCmd)
	RootCmd.AddCommand(focusCmd)
	RootCmd.AddCommand(unfocusCmd)
	RootCmd.AddCommand(eventsCmd)
}

// Execute runs the root command until it finishes or the process receives
// SIGINT or SIGTERM.
func Execute() error {
	// .env is optional
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return RootCmd.ExecuteContext(ctx)
}

func getConfigPath() string {
	if configPath != "" {
		return configPath
	}
	if env := os.Getenv("CONFIG_PATH"); env != "" {
		return env
	}
	return "configs/nuka-memory.json"
}

func getUserID() (string, error) {
	if userID != "" {
		return userID, nil
	}
	if env := os.Getenv("NUKA_USER"); env != "" {
		return env, nil
	}
	return "", fmt.Errorf("no user: pass --user or set NUKA_USER")
}

func loadConfig() (*config.Config, error) {
	path := getConfigPath()
	if _, err := os.Stat(path); os.IsNotExist(err) && configPath == "" {
		cfg := config.Default()
		return &cfg, nil
	}
	return config.Load(path)
}

// newLogger builds a console logger on stderr at the given level.
func newLogger(level string) (*zap.Logger, error) {
	lvl := zapcore.InfoLevel
	if level != "" {
		var err error
		if lvl, err = zapcore.ParseLevel(level); err != nil {
			return nil, fmt.Errorf("log level %q: %w", level, err)
		}
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.DisableStacktrace = lvl > zapcore.DebugLevel
	return cfg.Build()
}

// splitList splits comma separated flag values, dropping blanks.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
