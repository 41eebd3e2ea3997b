// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the papertool CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/novucs/papertool/internal/httputil"
	"github.com/novucs/papertool/internal/secrets"
	"github.com/novucs/papertool/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds values loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// logger is built in PersistentPreRunE from --verbose.
var logger = zap.NewNop()

// rootCmd is the base command for the papertool CLI.
var rootCmd = &cobra.Command{
	Use:   "papertool",
	Short: "Find and format references for a paper",
	Long: `papertool looks a paper up by title (or by the URL of its PDF) on arXiv,
doi.org and the web, normalizes every bibtex record it finds into a Harvard
style reference, removes duplicates and ranks the rest by how closely their
titles match.

Use "harvest" for a one-off lookup and "serve" to expose the same lookup
over HTTP.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(secrets.DefaultDir, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(cmd.ErrOrStderr(), "Loaded secrets: %v\n", keys)
		}

		verbose, _ := cmd.Flags().GetBool("verbose")
		l, err := newLogger(verbose)
		if err != nil {
			return fmt.Errorf("building logger: %w", err)
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./papertool.yaml or ~/.config/papertool/papertool.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log every source request")
	rootCmd.PersistentFlags().Duration("timeout", 0, "HTTP request timeout (default 30s)")
	rootCmd.PersistentFlags().Int("workers", 0, "concurrent source requests (default 8)")
	rootCmd.PersistentFlags().Duration("task-timeout", 0, "deadline for each source request (default 20s)")
	rootCmd.PersistentFlags().Int("max-pages", 0, "web search results to scrape (default 10)")

	_ = viper.BindPFlag("http.timeout", rootCmd.PersistentFlags().Lookup("timeout"))
	_ = viper.BindPFlag("harvest.workers", rootCmd.PersistentFlags().Lookup("workers"))
	_ = viper.BindPFlag("harvest.task_timeout", rootCmd.PersistentFlags().Lookup("task-timeout"))
	_ = viper.BindPFlag("harvest.max_pages", rootCmd.PersistentFlags().Lookup("max-pages"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("papertool")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "papertool"))
		}
	}

	viper.SetEnvPrefix("PAPERTOOL")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// newLogger returns a development logger when verbose, otherwise a
// production logger that only reports warnings.
func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return cfg.Build()
}

// harvestConfig assembles the harvest settings from config file, env and
// flags, filling gaps with defaults.
func harvestConfig() types.HarvestConfig {
	cfg := types.HarvestConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:    viper.GetDuration("http.timeout"),
			UserAgent:  httputil.UserAgent(viper.GetString("http.user_agent"), secrets.ContactEmail(loadedSecrets)),
			MaxRetries: viper.GetInt("harvest.max_retries"),
		},
		Workers:     viper.GetInt("harvest.workers"),
		TaskTimeout: viper.GetDuration("harvest.task_timeout"),
		MaxPages:    viper.GetInt("harvest.max_pages"),
	}
	return cfg.WithDefaults()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
