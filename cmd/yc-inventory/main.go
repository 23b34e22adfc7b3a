package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/nholik/devops-course/internal/compute"
	"github.com/nholik/devops-course/internal/config"
	"github.com/nholik/devops-course/internal/inventory"
	"github.com/nholik/devops-course/internal/logging"
	"github.com/rs/zerolog"
)

const (
	modeList = "list"
	modeHost = "host"
	modeStub = "stub"
)

func main() {
	logger, cfg, rules := setup(os.Stderr)

	source := compute.NewCLISource(logger,
		compute.WithBinary(cfg.YCPath),
		compute.WithFolderID(cfg.FolderID),
		compute.WithTimeout(cfg.Timeout),
		compute.WithRetries(cfg.Retries),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdout, logger, source, rules)
	stop()
	if err != nil {
		logger.Error().Err(err).Msg("write inventory")
		os.Exit(1)
	}
}

// setup loads configuration and rules. Invalid values are logged and replaced
// by defaults so Ansible always receives a document.
func setup(stderr io.Writer) (zerolog.Logger, config.InventoryConfig, inventory.Rules) {
	cfg, cfgErr := config.LoadInventory()
	if cfgErr != nil {
		cfg = config.DefaultInventory()
	}

	logger := logging.NewWithWriter(stderr, cfg.LogLevel)
	if cfgErr != nil {
		logger.Warn().Err(cfgErr).Msg("invalid inventory configuration, using defaults")
	}

	rules, err := config.LoadRulesFile(cfg.RulesPath)
	if err != nil {
		logger.Warn().Err(err).Str("path", cfg.RulesPath).Msg("invalid rules file, using defaults")
		rules = inventory.DefaultRules()
	}

	return logger, cfg, rules
}

func run(ctx context.Context, args []string, w io.Writer, logger zerolog.Logger, source compute.Source, rules inventory.Rules) error {
	switch mode(args) {
	case modeList:
		return inventory.Encode(w, list(ctx, logger, source, rules))
	case modeHost:
		return inventory.Encode(w, inventory.HostDocument())
	default:
		return inventory.Encode(w, inventory.EmptyStub())
	}
}

// mode maps argv (without the program name) to an output mode. --host accepts
// an optional host name, which is ignored.
func mode(args []string) string {
	switch {
	case len(args) == 1 && args[0] == "--list":
		return modeList
	case (len(args) == 1 || len(args) == 2) && args[0] == "--host":
		return modeHost
	default:
		return modeStub
	}
}

func list(ctx context.Context, logger zerolog.Logger, source compute.Source, rules inventory.Rules) inventory.Document {
	result := source.List(ctx)
	if !result.Available() {
		logger.Warn().
			Err(result.Err).
			Str("op", result.Op()).
			Msg("compute instances unavailable, returning empty inventory")
	}

	builder := inventory.NewBuilder(rules, inventory.WithSkipHook(func(instance inventory.Instance, reason inventory.SkipReason) {
		logger.Debug().
			Str("instance", instance.Name).
			Str("id", instance.ID).
			Str("reason", string(reason)).
			Msg("instance skipped")
	}))

	doc := builder.Build(result.InstancesOrEmpty())
	logger.Debug().Int("hosts", len(doc.All.Hosts)).Msg("inventory built")
	return doc
}
