package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/muzik/internal/formatter"
	"github.com/desertthunder/muzik/internal/models"
	"github.com/desertthunder/muzik/internal/shared"
	"github.com/urfave/cli/v3"
)

// Search runs a single catalog search and prints one line per result, or JSON.
func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	query := strings.TrimSpace(cmd.StringArg("query"))
	if query == "" {
		return fmt.Errorf("%w: query", shared.ErrMissingArgument)
	}

	kind, err := models.ParseKind(cmd.String("type"))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}

	page, err := r.Client().SearchPage(ctx, query, kind, int(cmd.Int("limit")), int(cmd.Int("offset")))
	if err != nil {
		return err
	}
	r.logger.Debug("search complete", "query", query, "kind", kind, "results", len(page.Items), "total", page.Total)

	if cmd.Bool("json") {
		return r.writeJSON(page.Items, cmd.Bool("pretty"))
	}

	if len(page.Items) == 0 {
		return r.writePlain("No %s results for %q\n", kind.Plural(), query)
	}

	r.writePlainHeader(fmt.Sprintf("%s results for %q", titleCase(kind.Plural()), query))
	for i, rec := range page.Items {
		if err := r.writePlain("%3d. %s\n", page.Offset+i+1, formatter.Summary(rec)); err != nil {
			return err
		}
	}
	if page.HasNext {
		r.writePlain("\nShowing %d-%d of %d, use --offset %d for more\n",
			page.Offset+1, page.NextOffset(), page.Total, page.NextOffset())
	}
	return nil
}

// LibraryTracks prints the saved tracks.
func (r *Runner) LibraryTracks(ctx context.Context, cmd *cli.Command) error {
	library, _, err := r.Library()
	if err != nil {
		return err
	}

	saved, err := library.List(map[string]any{"query": cmd.String("query")})
	if err != nil {
		return err
	}

	tracks := make([]models.Track, 0, len(saved))
	for _, s := range saved {
		tracks = append(tracks, s.Track())
	}

	if cmd.Bool("json") {
		return r.writeJSON(tracks, true)
	}
	if len(tracks) == 0 {
		return r.writePlain("Library is empty\n")
	}

	r.writePlainHeader(fmt.Sprintf("Saved tracks (%d)", len(tracks)))
	for i, t := range tracks {
		if err := r.writePlain("%3d. %s\n", i+1, formatter.Summary(t)); err != nil {
			return err
		}
	}
	return nil
}

// LibraryPlaylists prints the local playlists with their track counts.
func (r *Runner) LibraryPlaylists(ctx context.Context, cmd *cli.Command) error {
	_, playlists, err := r.Library()
	if err != nil {
		return err
	}

	all, err := playlists.List(nil)
	if err != nil {
		return err
	}
	if len(all) == 0 {
		return r.writePlain("No local playlists\n")
	}

	r.writePlainHeader(fmt.Sprintf("Local playlists (%d)", len(all)))
	for _, p := range all {
		if err := r.writePlain("• %s (%d tracks)\n", p.Name(), len(p.TrackIDs())); err != nil {
			return err
		}
	}
	return nil
}

// Status prints credential and token state, optionally testing the connection.
func (r *Runner) Status(ctx context.Context, cmd *cli.Command) error {
	client := r.Client()

	var checkErr error
	if cmd.Bool("check") {
		checkErr = client.TestConnection(ctx)
	}
	status := client.Status()

	if cmd.Bool("json") {
		out := struct {
			Catalog    any    `json:"catalog"`
			Connection string `json:"connection,omitempty"`
		}{Catalog: status}
		if cmd.Bool("check") {
			out.Connection = connectionResult(checkErr)
		}
		return r.writeJSON(out, true)
	}

	r.writeStatus(status)
	if cmd.Bool("check") {
		r.writePlain("%-14s %s\n", "Connection", connectionResult(checkErr))
	}
	return checkErr
}

func connectionResult(err error) string {
	if err != nil {
		return "failed: " + err.Error()
	}
	return "ok"
}
