// submodule cmd contains command definitions
package main

import (
	"github.com/desertthunder/muzik/internal/formatter"
	"github.com/desertthunder/muzik/internal/models"
	"github.com/urfave/cli/v3"
)

// newApp builds the root command. Without a subcommand it starts the interactive menu.
func newApp(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "muzik",
		Usage:   "Browse a remote music catalog from the terminal",
		Version: "0.3.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
				Sources: cli.EnvVars("MUZIK_CONFIG"),
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Enable debug logging",
			},
		},
		Before:   r.Setup,
		Action:   r.Interactive,
		Commands: r.register(),
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		menuCommand, searchCommand, exportCommand, libraryCommand, statusCommand, configCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// menuCommand starts the interactive menu explicitly
func menuCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "menu",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive catalog menu",
		Action:  r.Interactive,
	}
}

// searchCommand handles one-shot catalog searches
func searchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "search",
		Usage: "Search the catalog and print the results",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "query"},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "type",
				Aliases: []string{"t"},
				Usage:   "Record kind: track, album, artist or playlist",
				Value:   string(models.KindTrack),
			},
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"l"},
				Usage:   "Maximum number of results (1-50)",
				Value:   20,
			},
			&cli.IntFlag{
				Name:  "offset",
				Usage: "Index of the first result",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
				Value: true,
			},
		},
		Action: r.Search,
	}
}

// exportCommand writes the tracks of an album, playlist or the library to a file
func exportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export album, playlist or library tracks",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "type",
				Usage: "Source kind: album, playlist or library",
				Value: "playlist",
			},
			&cli.StringFlag{
				Name:  "id",
				Usage: "Catalog ID of the album or playlist",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Export format: csv, json, m3u or md",
				Value:   string(formatter.CSV),
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output file path (directory for md)",
			},
		},
		Action: r.Export,
	}
}

// libraryCommand lists the personal library
func libraryCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "library",
		Aliases: []string{"lib"},
		Usage:   "Personal library operations",
		Commands: []*cli.Command{
			{
				Name:  "tracks",
				Usage: "List saved tracks",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "query",
						Aliases: []string{"q"},
						Usage:   "Filter by name, artist or album",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output JSON",
					},
				},
				Action: r.LibraryTracks,
			},
			{
				Name:   "playlists",
				Usage:  "List local playlists",
				Action: r.LibraryPlaylists,
			},
			{
				Name:  "export",
				Usage: "Export saved tracks and every local playlist into one directory",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format: csv, json, m3u or md",
						Value:   string(formatter.CSV),
					},
					&cli.StringFlag{
						Name:    "dir",
						Aliases: []string{"d"},
						Usage:   "Output directory (default: muzik_export_{timestamp})",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent exports (1-8)",
						Value: 4,
					},
				},
				Action: r.LibraryExport,
			},
		},
	}
}

// statusCommand reports credential and token state
func statusCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Show catalog credential and token status",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "check",
				Usage: "Also test the connection with a live request",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output JSON",
			},
		},
		Action: r.Status,
	}
}

// configCommand manages the configuration file
func configCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Manage the configuration file",
		Commands: []*cli.Command{
			{
				Name:   "init",
				Usage:  "Create a configuration file from the defaults",
				Action: r.ConfigInit,
			},
			{
				Name:  "get",
				Usage: "Print a value by dot path, e.g. catalog.market",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "key"},
				},
				Action: r.ConfigGet,
			},
			{
				Name:  "set",
				Usage: "Store a value by dot path",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "key"},
					&cli.StringArg{Name: "value"},
				},
				Action: r.ConfigSet,
			},
			{
				Name:   "keys",
				Usage:  "List every configuration key",
				Action: r.ConfigKeys,
			},
		},
	}
}
