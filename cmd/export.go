package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/muzik/internal/formatter"
	"github.com/desertthunder/muzik/internal/models"
	"github.com/desertthunder/muzik/internal/services"
	"github.com/desertthunder/muzik/internal/shared"
	"github.com/urfave/cli/v3"
)

// maxExportPages bounds how many pages an export follows.
const maxExportPages = 50

type pageFunc func(ctx context.Context, offset int) (*models.Page, error)

// collectTracks follows fetch until the listing is exhausted and keeps the tracks.
func collectTracks(ctx context.Context, fetch pageFunc) ([]models.Track, error) {
	tracks := []models.Track{}
	offset := 0
	for range maxExportPages {
		page, err := fetch(ctx, offset)
		if err != nil {
			return nil, err
		}
		for _, rec := range page.Items {
			if t, ok := rec.(models.Track); ok {
				tracks = append(tracks, t)
			}
		}
		if !page.HasNext || len(page.Items) == 0 {
			break
		}
		offset = page.NextOffset()
	}
	return tracks, nil
}

func coverURL(images []models.Image) string {
	if len(images) == 0 {
		return ""
	}
	return images[0].URL
}

// albumCollection gathers every track of an album. Album tracks come back without album fields.
func (r *Runner) albumCollection(ctx context.Context, album models.Album) (*formatter.Collection, error) {
	client := r.Client()
	tracks, err := collectTracks(ctx, func(ctx context.Context, offset int) (*models.Page, error) {
		return client.AlbumTracks(ctx, album.ID, services.MaxPageLimit, offset)
	})
	if err != nil {
		return nil, err
	}
	for i := range tracks {
		tracks[i].Album = album.Name
		tracks[i].AlbumID = album.ID
	}

	c := formatter.NewCollection(album.Name, strings.Join(album.Artists, ", "), tracks)
	c.Source = album.ExternalURL
	return c, nil
}

// playlistCollection gathers every track of a catalog playlist.
func (r *Runner) playlistCollection(ctx context.Context, playlist models.Playlist) (*formatter.Collection, error) {
	client := r.Client()
	tracks, err := collectTracks(ctx, func(ctx context.Context, offset int) (*models.Page, error) {
		return client.PlaylistTracks(ctx, playlist.ID, services.MaxPlaylistTracks, offset)
	})
	if err != nil {
		return nil, err
	}

	c := formatter.NewCollection(playlist.Name, playlist.Description, tracks)
	c.Source = playlist.ExternalURL
	return c, nil
}

// libraryCollection exports saved tracks.
func (r *Runner) libraryCollection() (*formatter.Collection, error) {
	library, _, err := r.Library()
	if err != nil {
		return nil, err
	}
	saved, err := library.List(nil)
	if err != nil {
		return nil, err
	}

	tracks := make([]models.Track, 0, len(saved))
	for _, s := range saved {
		tracks = append(tracks, s.Track())
	}
	return formatter.NewCollection("Library", "Saved tracks", tracks), nil
}

// resolveTracks turns catalog track ids into tracks, preferring saved copies and fetching the
// rest in batches. Order follows ids; ids the catalog no longer knows are skipped.
func (r *Runner) resolveTracks(ctx context.Context, ids []string) ([]models.Track, error) {
	if len(ids) == 0 {
		return []models.Track{}, nil
	}

	library, _, err := r.Library()
	if err != nil {
		return nil, err
	}
	saved, err := library.List(map[string]any{"catalog_ids": ids})
	if err != nil {
		return nil, err
	}

	known := make(map[string]models.Track, len(ids))
	for _, s := range saved {
		known[s.CatalogID()] = s.Track()
	}

	missing := []string{}
	for _, id := range ids {
		if _, ok := known[id]; !ok {
			missing = append(missing, id)
		}
	}

	for start := 0; start < len(missing); start += services.MaxBatchTracks {
		end := min(start+services.MaxBatchTracks, len(missing))
		records, err := r.Client().GetManyByID(ctx, models.KindTrack, missing[start:end])
		if err != nil {
			return nil, err
		}
		for _, rec := range records {
			if t, ok := rec.(models.Track); ok {
				known[t.ID] = t
			}
		}
	}

	tracks := make([]models.Track, 0, len(ids))
	for _, id := range ids {
		if t, ok := known[id]; ok {
			tracks = append(tracks, t)
		}
	}
	return tracks, nil
}

// localPlaylistCollection resolves a local playlist's tracks for export.
func (r *Runner) localPlaylistCollection(ctx context.Context, p *models.LocalPlaylist) (*formatter.Collection, error) {
	tracks, err := r.resolveTracks(ctx, p.TrackIDs())
	if err != nil {
		return nil, err
	}
	return formatter.NewCollection(p.Name(), p.Description(), tracks), nil
}

// writeCollection writes c in format f and returns the paths it created.
func (r *Runner) writeCollection(ctx context.Context, c *formatter.Collection, f formatter.Format, path, imageURL string) ([]string, error) {
	return formatter.WriteCollection(ctx, c, f, path, imageURL, r.output)
}

// Export writes an album, playlist or the library to a file.
func (r *Runner) Export(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	var (
		collection *formatter.Collection
		imageURL   string
	)

	switch kind := strings.ToLower(cmd.String("type")); kind {
	case "library":
		collection, err = r.libraryCollection()
	case "album", "playlist":
		id := cmd.String("id")
		if id == "" {
			return fmt.Errorf("%w: --id is required for %s exports", shared.ErrMissingArgument, kind)
		}

		var rec models.Record
		if rec, err = r.Client().GetByID(ctx, models.Kind(kind), id); err != nil {
			return err
		}
		switch v := rec.(type) {
		case models.Album:
			imageURL = coverURL(v.Images)
			collection, err = r.albumCollection(ctx, v)
		case models.Playlist:
			imageURL = coverURL(v.Images)
			collection, err = r.playlistCollection(ctx, v)
		}
	default:
		return fmt.Errorf("%w: export type %q", shared.ErrInvalidArgument, kind)
	}
	if err != nil {
		return err
	}

	files, err := r.writeCollection(ctx, collection, format, cmd.String("output"), imageURL)
	if err != nil {
		return err
	}

	r.logger.Info("export complete", "name", collection.Name, "tracks", len(collection.Tracks), "format", format)
	for _, f := range files {
		if err := r.writePlain("✓ %s\n", f); err != nil {
			return err
		}
	}
	return nil
}
