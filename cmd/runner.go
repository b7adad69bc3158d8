package main

import (
	"database/sql"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/muzik/internal/menu"
	"github.com/desertthunder/muzik/internal/repositories"
	"github.com/desertthunder/muzik/internal/services"
	"github.com/desertthunder/muzik/internal/shared"
	"github.com/desertthunder/muzik/internal/ui"
	"golang.org/x/oauth2"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	configPath string
	config     *shared.Config
	client     *services.CatalogClient
	db         *sql.DB
	library    *repositories.SavedTrackRepository
	playlists  *repositories.LocalPlaylistRepository
	logger     *log.Logger
	output     io.Writer
	input      *os.File
	keys       menu.KeyReader
	prompt     ui.Prompter
	palette    *ui.Palette
	browse     func(url string) error
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	ConfigPath string
	Config     *shared.Config
	Client     *services.CatalogClient
	DB         *sql.DB
	Logger     *log.Logger
	Output     io.Writer
	Input      *os.File
	Keys       menu.KeyReader
	Prompt     ui.Prompter
	Palette    *ui.Palette
	Browse     func(url string) error
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Input == nil {
		opts.Input = os.Stdin
	}
	if opts.Keys == nil {
		opts.Keys = menu.NewKeyReader(opts.Input)
	}
	if opts.Palette == nil {
		opts.Palette = ui.Styles
		if !opts.Config.Display.Colors {
			opts.Palette = ui.Plain()
		}
	}
	if opts.Prompt == nil {
		opts.Prompt = ui.NewPrompter(opts.Keys, opts.Input, opts.Output, opts.Palette)
	}
	if opts.Browse == nil {
		opts.Browse = shared.OpenBrowser
	}

	r := &Runner{
		configPath: opts.ConfigPath,
		config:     opts.Config,
		client:     opts.Client,
		logger:     opts.Logger,
		output:     opts.Output,
		input:      opts.Input,
		keys:       opts.Keys,
		prompt:     opts.Prompt,
		palette:    opts.Palette,
		browse:     opts.Browse,
	}
	if opts.DB != nil {
		r.useDB(opts.DB)
	}
	return r
}

// SetLogger replaces the logger, e.g. when the interactive session redirects logs to a file.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

// SetConfig replaces the loaded configuration and drops the client built from the old one.
func (r *Runner) SetConfig(path string, config *shared.Config) {
	r.configPath = path
	r.config = config
	r.client = nil
}

// Client lazily builds the catalog client from the current config.
//
// Newly issued tokens are written back to the config file when one is in use.
func (r *Runner) Client() *services.CatalogClient {
	if r.client != nil {
		return r.client
	}

	r.client = services.FromConfig(r.config.Catalog, r.logger)
	r.client.SetTokenCallback(r.persistToken)
	return r.client
}

func (r *Runner) persistToken(token *oauth2.Token) {
	if err := r.config.Catalog.UpdateToken(token); err != nil {
		r.logger.Warn("failed to store token", "error", err)
		return
	}
	if r.configPath == "" {
		return
	}
	if err := shared.SaveConfig(r.configPath, r.config); err != nil {
		r.logger.Warn("failed to persist token", "path", r.configPath, "error", err)
		return
	}
	r.logger.Debug("token persisted", "path", r.configPath, "expiry", token.Expiry)
}

// saveConfig writes the current config back to disk.
func (r *Runner) saveConfig() error {
	if r.configPath == "" {
		return fmt.Errorf("%w: no config file in use", shared.ErrMissingConfig)
	}
	if err := shared.SaveConfig(r.configPath, r.config); err != nil {
		return err
	}
	r.client = nil
	return nil
}

// Library opens the library database on first use.
func (r *Runner) Library() (*repositories.SavedTrackRepository, *repositories.LocalPlaylistRepository, error) {
	if r.db == nil {
		db, err := shared.OpenLibrary(r.config.Database.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open library: %w", err)
		}
		r.logger.Debug("library opened", "path", r.config.Database.Path)
		r.useDB(db)
	}
	return r.library, r.playlists, nil
}

func (r *Runner) useDB(db *sql.DB) {
	r.db = db
	r.library = repositories.NewSavedTrackRepository(db)
	r.playlists = repositories.NewLocalPlaylistRepository(db)
}

// Close releases the library database.
func (r *Runner) Close() error {
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	return err
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	rule := strings.Repeat("═", 39)
	r.writePlain("%s\n", rule)
	r.writePlain("%v\n", r.palette.Title(title))
	r.writePlain("%s\n", rule)
}
