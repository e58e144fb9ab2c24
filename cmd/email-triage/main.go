package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/email-triage/internal/config"
	"github.com/mikey/email-triage/internal/core"
	"github.com/mikey/email-triage/internal/di"
)

// flagKeys maps command line flags onto configuration keys
var flagKeys = map[string]string{
	"llm":           "llm.enabled",
	"provider":      "llm.provider",
	"vip":           "triage.vip_domains",
	"concurrency":   "triage.batch_concurrency",
	"cache":         "cache.type",
	"dry-run":       "imap.dry_run",
	"folder-prefix": "imap.folder_prefix",
	"imap-address":  "imap.address",
	"imap-user":     "imap.username",
}

type app struct {
	flags di.CLIFlags
	cfg   *config.Config
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "email-triage",
		Short:         "Classify email into Meetings, Deliveries, Important and Phishing",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.loadConfig(cmd)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&a.flags.ConfigFile, "config", "", "Path to config file")
	pf.BoolVarP(&a.flags.Verbose, "verbose", "v", false, "Enable verbose logging")
	pf.BoolVar(&a.flags.JSONLog, "json-log", false, "Output logs in JSON format")
	pf.Bool("llm", false, "Consult the configured LLM delegate for non-phishing mail")
	pf.String("provider", "openai", "LLM provider (bedrock, gemini, openai)")
	pf.StringSlice("vip", nil, "VIP sender domains")
	pf.String("cache", "memory", "Delegate verdict cache (memory, sqlite, mysql, redis)")

	rootCmd.AddCommand(newClassifyCmd(a), newImportCmd(a))
	return rootCmd
}

// loadConfig reads the config file and layers explicitly set flags on top
func (a *app) loadConfig(cmd *cobra.Command) error {
	cfg, err := config.NewFromFile(a.flags.ConfigFile)
	if err != nil {
		return err
	}

	v := cfg.GetViper()
	for name, key := range flagKeys {
		f := cmd.Flags().Lookup(name)
		if f == nil || !f.Changed {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}

	a.cfg = cfg
	return nil
}

// invoke builds the CLI container and runs fn with its dependencies
func (a *app) invoke(fn interface{}) error {
	container, err := di.BuildCLIContainer(&a.flags, a.cfg)
	if err != nil {
		return fmt.Errorf("failed to build dependency container: %w", err)
	}
	defer release(container)
	return dig.RootCause(container.Invoke(fn))
}

// release closes the categorization client and stops the cache
func release(container *dig.Container) {
	_ = container.Invoke(func(logger *zap.Logger, delegate core.Categorizer, cache core.CacheRepository) {
		if closer, ok := delegate.(interface{ Close() error }); ok {
			if err := closer.Close(); err != nil {
				logger.Error("Failed to close categorization client", zap.Error(err))
			}
		}
		if stopper, ok := cache.(interface{ Stop() }); ok {
			stopper.Stop()
		}
		_ = logger.Sync()
	})
}
