package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/deedsync/deedsync/service/config"
)

var (
	// Version information (set via ldflags during build)
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	app := &cli.App{
		Name:  "deedsync",
		Usage: "Property registry client CLI",
		Description: `A command-line client for an on-chain property registry.

Connects to a wallet provider daemon, mirrors registry state into a local
snapshot, and submits purchase and availability transactions.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		Commands: []*cli.Command{
			accountCommand(),
			propertiesCommands(),
			purchasesCommands(),
			buyCommand(),
			setAvailabilityCommand(),
			watchCommand(),
		},
		// Global flags available to all commands
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "provider-url",
				Usage:   "Wallet provider JSON-RPC endpoint",
				EnvVars: []string{"PROVIDER_RPC_URL"},
			},
			&cli.StringFlag{
				Name:    "registry-address",
				Usage:   "Registry contract address",
				EnvVars: []string{"REGISTRY_ADDRESS"},
			},
			&cli.StringFlag{
				Name:    "deed-ledger-address",
				Usage:   "Deed ledger contract address",
				EnvVars: []string{"DEED_LEDGER_ADDRESS"},
			},
			&cli.StringFlag{
				Name:    "registry-descriptor",
				Usage:   "Path to registry ABI descriptor (built-in default when unset)",
				EnvVars: []string{"REGISTRY_DESCRIPTOR_PATH"},
			},
			&cli.StringFlag{
				Name:    "deed-ledger-descriptor",
				Usage:   "Path to deed ledger ABI descriptor (built-in default when unset)",
				EnvVars: []string{"DEED_LEDGER_DESCRIPTOR_PATH"},
			},
			&cli.DurationFlag{
				Name:    "timeout",
				Usage:   "Provider request timeout",
				EnvVars: []string{"REQUEST_TIMEOUT"},
				Value:   30 * time.Second,
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"LOG_LEVEL"},
				Value:   "warn",
			},
			&cli.BoolFlag{
				Name:    "json",
				Aliases: []string{"j"},
				Usage:   "Output in JSON format",
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// configFromFlags builds the core config from the global CLI flags.
func configFromFlags(c *cli.Context) (*config.Config, error) {
	cfg := &config.Config{
		ProviderRPCURL:           c.String("provider-url"),
		RequestTimeout:           c.Duration("timeout"),
		RegistryAddress:          c.String("registry-address"),
		DeedLedgerAddress:        c.String("deed-ledger-address"),
		RegistryDescriptorPath:   c.String("registry-descriptor"),
		DeedLedgerDescriptorPath: c.String("deed-ledger-descriptor"),
		AccountPollInterval:      5 * time.Second,
		LogLevel:                 c.String("log-level"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger builds a text logger writing to stderr so stdout stays clean
// for command output.
func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelWarn
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
