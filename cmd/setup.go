package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/muzik/internal/shared"
	"github.com/urfave/cli/v3"
)

// Setup loads the configuration named by --config, applies MUZIK_* overrides and the log level.
//
// A missing file is not an error: defaults are used and the path is remembered so settings
// changed from the menu can create it.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	path := cmd.String("config")

	config, err := shared.LoadOrDefault(path)
	if err != nil {
		return ctx, err
	}
	config.ApplyEnv(os.Getenv)
	r.SetConfig(path, config)

	level := shared.ParseLogLevel(config.Logging.Level)
	if cmd.Bool("verbose") {
		level = log.DebugLevel
	}
	shared.SetLogLevel(r.logger, level)

	r.logger.Debug("configuration loaded", "path", path, "configured", config.Catalog.Configured())
	return ctx, nil
}

// ConfigInit writes the default configuration file.
func (r *Runner) ConfigInit(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("config")
	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}
	return r.writePlain("✓ Created %s\n", path)
}

// ConfigGet prints one configuration value. Secrets are masked.
func (r *Runner) ConfigGet(ctx context.Context, cmd *cli.Command) error {
	key := cmd.StringArg("key")
	if key == "" {
		return fmt.Errorf("%w: key", shared.ErrMissingArgument)
	}

	value, err := r.config.Get(key)
	if err != nil {
		return err
	}
	return r.writePlain("%s\n", displayValue(key, value))
}

// ConfigSet stores one configuration value and saves the file.
func (r *Runner) ConfigSet(ctx context.Context, cmd *cli.Command) error {
	key, value := cmd.StringArg("key"), cmd.StringArg("value")
	if key == "" {
		return fmt.Errorf("%w: key", shared.ErrMissingArgument)
	}

	if err := r.config.Set(key, value); err != nil {
		return err
	}
	if err := r.saveConfig(); err != nil {
		return err
	}
	return r.writePlain("✓ %s = %s\n", key, displayValue(key, value))
}

// ConfigKeys lists every configuration key with its current value.
func (r *Runner) ConfigKeys(ctx context.Context, cmd *cli.Command) error {
	for _, key := range r.config.Keys() {
		value, err := r.config.Get(key)
		if err != nil {
			return err
		}
		if err := r.writePlain("%-28s %s\n", key, displayValue(key, value)); err != nil {
			return err
		}
	}
	return nil
}

// secretKeys are masked whenever a value is printed.
var secretKeys = map[string]bool{
	"catalog.client_secret": true,
	"catalog.access_token":  true,
	"catalog.refresh_token": true,
}

func displayValue(key, value string) string {
	if secretKeys[key] {
		return shared.MaskSecret(value)
	}
	return value
}
