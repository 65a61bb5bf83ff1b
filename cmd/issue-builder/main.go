// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the issue-builder CLI.
// Subcommands build weekly issues from an outline and OCR transcripts,
// convert PDFs to transcripts, run the summarization proxy, and maintain
// the local catalog of built issues.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/issue-builder/internal/logging"
	"github.com/pdiddy/issue-builder/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// logger is built from --log-level and --log-format before any subcommand runs.
var logger = logging.Discard()

// rootCmd is the base command for the issue-builder CLI.
var rootCmd = &cobra.Command{
	Use:   "issue-builder",
	Short: "Build weekly magazine issues from an outline and OCR transcripts",
	Long: `issue-builder turns an editorial outline and the OCR Markdown of a
magazine issue into per-article records, a clean Markdown rendering, and the
issue JSON the reader front end loads.

build segments and assembles one issue, optionally asking the summarization
service for a summary and insight per article. convert produces transcripts
from PDFs through an OCR container. proxy serves the summarization endpoint
in front of a chat-completion API. library indexes built issues and writes
the front-end issue list.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, _ := cmd.Flags().GetString("log-level")
		format, _ := cmd.Flags().GetString("log-format")
		l, err := logging.New(logging.Options{Level: level, Format: format})
		if err != nil {
			return err
		}
		logger = l
		slog.SetDefault(l)

		s, err := secrets.Load(".secrets/", secrets.Keys...)
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
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./issue-builder.yaml or ~/.config/issue-builder/issue-builder.yaml)")
	rootCmd.PersistentFlags().String("log-level", "warn", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "text", "log format: text or json")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("issue-builder")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "issue-builder"))
		}
	}

	viper.SetEnvPrefix("ISSUE_BUILDER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// configKey returns the viper key for a flag of cmd: the command path below
// the root joined with dots, then the flag name. "build --oss-base-url"
// reads build.oss-base-url from the config file and
// ISSUE_BUILDER_BUILD_OSS_BASE_URL from the environment.
func configKey(cmd *cobra.Command, flag string) string {
	path := strings.TrimPrefix(cmd.CommandPath(), rootCmd.Name())
	parts := append(strings.Fields(path), flag)
	return strings.Join(parts, ".")
}

// stringSetting returns the flag value when it was set on the command line,
// then the config or environment value, then the flag default.
func stringSetting(cmd *cobra.Command, flag string) string {
	v, _ := cmd.Flags().GetString(flag)
	if cmd.Flags().Changed(flag) {
		return v
	}
	if key := configKey(cmd, flag); viper.IsSet(key) {
		return viper.GetString(key)
	}
	return v
}

func intSetting(cmd *cobra.Command, flag string) int {
	v, _ := cmd.Flags().GetInt(flag)
	if cmd.Flags().Changed(flag) {
		return v
	}
	if key := configKey(cmd, flag); viper.IsSet(key) {
		return viper.GetInt(key)
	}
	return v
}

func durationSetting(cmd *cobra.Command, flag string) time.Duration {
	v, _ := cmd.Flags().GetDuration(flag)
	if cmd.Flags().Changed(flag) {
		return v
	}
	if key := configKey(cmd, flag); viper.IsSet(key) {
		return viper.GetDuration(key)
	}
	return v
}

func stringSliceSetting(cmd *cobra.Command, flag string) []string {
	v, _ := cmd.Flags().GetStringSlice(flag)
	if cmd.Flags().Changed(flag) {
		return v
	}
	if key := configKey(cmd, flag); viper.IsSet(key) {
		return viper.GetStringSlice(key)
	}
	return v
}

// exitError carries a process exit status other than 1.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		var ee *exitError
		if errors.As(err, &ee) {
			os.Exit(ee.code)
		}
		os.Exit(1)
	}
}
