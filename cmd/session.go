package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/desertthunder/muzik/internal/menu"
	"github.com/desertthunder/muzik/internal/services"
	"github.com/desertthunder/muzik/internal/shared"
	"github.com/desertthunder/muzik/internal/ui"
	"github.com/urfave/cli/v3"
)

// errForceExit is returned when a second interrupt arrives at the exit confirmation.
var errForceExit = errors.New("forced exit")

// Interactive starts the menu session. Logs go to the configured file so they never
// interleave with menu frames.
func (r *Runner) Interactive(ctx context.Context, cmd *cli.Command) error {
	if path := r.config.Logging.File; path != "" {
		fileLogger, err := shared.NewFileLogger(path)
		if err != nil {
			return fmt.Errorf("failed to create file logger: %w", err)
		}
		shared.SetLogLevel(fileLogger, r.logger.GetLevel())
		r.SetLogger(shared.WithLogger(fileLogger, "session", shared.GenerateID()[:8]))
	}

	r.logger.Info("session started", "configured", r.config.Catalog.Configured())
	return r.session(ctx)
}

// session runs the main menu until the user leaves it.
//
// An interrupt anywhere below unwinds to a single exit confirmation; declining restarts the
// main menu and a second interrupt at the confirmation forces the exit.
func (r *Runner) session(ctx context.Context) error {
	for {
		runCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
		err := r.mainMenu().Run(runCtx)
		stop()

		if err == nil {
			r.logger.Info("session ended")
			return nil
		}
		if !errors.Is(err, menu.ErrInterrupted) {
			return err
		}
		if ctx.Err() != nil {
			return errForceExit
		}

		r.logger.Info("interrupted")
		exit, err := ui.Confirm(ctx, r.keys, r.output, "\nDo you really want to exit?", true)
		switch {
		case errors.Is(err, menu.ErrInterrupted):
			r.logger.Warn("second interrupt, forcing exit")
			return errForceExit
		case err != nil:
			return err
		case exit:
			r.logger.Info("session ended")
			return nil
		}
		r.logger.Debug("restarting main menu")
	}
}

// newMenu builds a menu wired to the runner's input, output, palette and logger.
func (r *Runner) newMenu(title string) *menu.Menu {
	opts := []menu.Option{
		menu.WithOutput(r.output),
		menu.WithKeyReader(r.keys),
		menu.WithStyles(r.palette.MenuStyles()),
		menu.WithLogger(r.logger),
	}
	if _, ok := r.keys.(*menu.TerminalReader); !ok {
		opts = append(opts, menu.WithoutClear())
	}
	return menu.New(title, opts...)
}

// ask prompts for one line. Backing out with Esc or running out of input yields "".
func (r *Runner) ask(ctx context.Context, label, placeholder string) (string, error) {
	answer, err := r.prompt.Prompt(ctx, label, placeholder)
	if errors.Is(err, ui.ErrCancelled) || errors.Is(err, io.EOF) {
		return "", nil
	}
	return answer, err
}

// askLimit prompts for a page size, clamped to 1..50 with 20 as the default.
func (r *Runner) askLimit(ctx context.Context) (int, error) {
	text, err := r.ask(ctx, "Results per page (1-50)", "20")
	if err != nil {
		return 0, err
	}
	return parseLimit(text), nil
}

func parseLimit(text string) int {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return 20
	}
	return max(1, min(n, services.MaxPageLimit))
}

// pause waits for any key so a message stays on screen before the next frame.
func (r *Runner) pause() error {
	return menu.WaitForKey(r.keys, r.output, r.palette.Help("Press any key to continue..."))
}

// report prints a success message and waits for a key.
func (r *Runner) report(format string, args ...any) error {
	if err := r.writePlain("\n%s\n", r.palette.OK(fmt.Sprintf(format, args...))); err != nil {
		return err
	}
	return r.pause()
}

// warn prints a warning and waits for a key.
func (r *Runner) warn(format string, args ...any) error {
	if err := r.writePlain("\n%s\n", r.palette.Warn(fmt.Sprintf(format, args...))); err != nil {
		return err
	}
	return r.pause()
}

// writeStatus prints the catalog status block.
func (r *Runner) writeStatus(s services.Status) {
	token := "none"
	switch {
	case s.TokenFresh:
		token = "valid"
	case s.HasToken:
		token = "expired (refreshed on next request)"
	}

	r.writePlainHeader("Catalog status")
	r.writePlain("%-14s %s\n", "Configured", yesNo(s.Configured))
	r.writePlain("%-14s %s\n", "Client ID", s.ClientID)
	r.writePlain("%-14s %s\n", "Client secret", s.ClientSecret)
	r.writePlain("%-14s %s\n", "Token", token)
	if !s.TokenExpiry.IsZero() {
		r.writePlain("%-14s %s\n", "Expires", s.TokenExpiry.Local().Format("2006-01-02 15:04:05"))
	}
	r.writePlain("%-14s %s\n", "Base URL", s.BaseURL)
	r.writePlain("%-14s %s\n", "Market", s.Market)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
