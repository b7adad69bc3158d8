package main

import (
	"context"

	"github.com/desertthunder/muzik/internal/menu"
	"github.com/desertthunder/muzik/internal/ui"
)

func (r *Runner) settingsMenu(ctx context.Context) error {
	m := r.newMenu("Settings")
	m.AddEntry("Show configuration", r.showConfig)
	m.AddEntry("Set client ID", r.setValue("catalog.client_id", "Client ID"))
	m.AddEntry("Set client secret", r.setValue("catalog.client_secret", "Client secret"))
	m.AddEntry("Set market", r.setValue("catalog.market", "Market (ISO 3166-1 alpha-2)"))
	m.AddSeparator()
	m.AddEntry("Test connection", func(ctx context.Context) error {
		if err := r.Client().TestConnection(ctx); err != nil {
			return err
		}
		return r.report("Connection OK")
	}, menu.WithShortcut('t'))
	m.AddEntry("Clear credentials", func(ctx context.Context) error {
		ok, err := ui.Confirm(ctx, r.keys, r.output, "Remove client credentials and tokens?", false)
		if err != nil || !ok {
			return err
		}
		r.config.Catalog.ClearCredentials()
		if err := r.saveConfig(); err != nil {
			return err
		}
		r.logger.Info("credentials cleared")
		return r.report("Credentials cleared")
	})
	m.AddSeparator()
	m.AddBack("Back")
	return m.Run(ctx)
}

func (r *Runner) showConfig(ctx context.Context) error {
	r.writePlainHeader("Configuration")
	if r.configPath != "" {
		r.writePlain("%-28s %s\n", "(file)", r.configPath)
	}
	for _, key := range r.config.Keys() {
		value, err := r.config.Get(key)
		if err != nil {
			return err
		}
		r.writePlain("%-28s %s\n", key, displayValue(key, value))
	}
	return r.pause()
}

// setValue prompts for a config value and saves it. Blank input leaves the value unchanged.
func (r *Runner) setValue(key, label string) menu.Action {
	return func(ctx context.Context) error {
		current, err := r.config.Get(key)
		if err != nil {
			return err
		}

		value, err := r.ask(ctx, label, displayValue(key, current))
		if err != nil || value == "" {
			return err
		}
		if err := r.config.Set(key, value); err != nil {
			return err
		}
		if err := r.saveConfig(); err != nil {
			return err
		}

		r.logger.Info("setting updated", "key", key)
		return r.report("Saved %s", key)
	}
}
