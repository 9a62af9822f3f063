package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/Vi-N-Tran/synthetic-data-generation-web/internal/config"
	"github.com/Vi-N-Tran/synthetic-data-generation-web/internal/models"
)

// v holds flag and TRAJGEN_* environment overrides.
var v = newViper()

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("TRAJGEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

var rootCmd = &cobra.Command{
	Use:   "trajgen",
	Short: "Synthetic browser trajectory generator",
	Long:  "Generates, validates, deduplicates and summarises synthetic web-browsing trajectories for agent training.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.InitLogger(models.LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		}); err != nil {
			return eris.Wrap(err, "init logger")
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "console", "log format (console, json)")
	_ = v.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = v.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
}

func main() {
	os.Exit(run())
}

func run() int {
	// Setup context with manual signal handling
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	defer func() {
		signal.Stop(sigChan)
		cancel()
	}()

	go func() {
		sig := <-sigChan
		zap.L().Info("interrupt received, shutting down gracefully...", zap.String("signal", sig.String()))
		cancel()
	}()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		return 1
	}
	return 0
}
