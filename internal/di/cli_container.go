package di

import (
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/email-triage/internal/config"
	"github.com/mikey/email-triage/internal/logging"
)

// CLIFlags contains the global command line flags of the CLI application
type CLIFlags struct {
	ConfigFile string
	Verbose    bool
	JSONLog    bool
}

// BuildCLIContainer creates the CLI container. cfg already carries the
// command line overrides bound into its viper instance.
func BuildCLIContainer(flags *CLIFlags, cfg *config.Config) (*dig.Container, error) {
	container := dig.New()

	// Register flags and configuration
	if err := container.Provide(func() *CLIFlags { return flags }); err != nil {
		return nil, err
	}
	if err := container.Provide(func() *config.Config { return cfg }); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(func(flags *CLIFlags) (*zap.Logger, error) {
		return logging.InitConsoleLogger(flags.Verbose, flags.JSONLog)
	}); err != nil {
		return nil, err
	}

	if err := provideTriage(container); err != nil {
		return nil, err
	}

	return container, nil
}
