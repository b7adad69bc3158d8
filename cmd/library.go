package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/desertthunder/muzik/internal/formatter"
	"github.com/desertthunder/muzik/internal/menu"
	"github.com/desertthunder/muzik/internal/models"
	"github.com/desertthunder/muzik/internal/shared"
	"github.com/desertthunder/muzik/internal/ui"
)

func (r *Runner) saveTrack(t models.Track) error {
	library, _, err := r.Library()
	if err != nil {
		return err
	}
	if err := library.Create(models.NewSavedTrack(t)); err != nil {
		return err
	}
	r.logger.Info("track saved", "id", t.ID, "name", t.Name)
	return nil
}

func (r *Runner) removeTrack(t models.Track) error {
	library, _, err := r.Library()
	if err != nil {
		return err
	}
	if err := library.DeleteByCatalogID(t.ID); err != nil {
		return err
	}
	r.logger.Info("track removed", "id", t.ID, "name", t.Name)
	return nil
}

// addToPlaylist lets the user pick a local playlist for t, or create one.
func (r *Runner) addToPlaylist(ctx context.Context, t models.Track) error {
	_, playlists, err := r.Library()
	if err != nil {
		return err
	}
	all, err := playlists.List(nil)
	if err != nil {
		return err
	}

	m := r.newMenu("Add " + t.Name + " to")
	for _, p := range all {
		m.AddEntry(p.Name(), func(ctx context.Context) error {
			added, err := playlists.AddTrack(p.ID(), t.ID)
			if err != nil {
				return err
			}
			m.RequestStop()
			if !added {
				return r.warn("%s is already in %s", t.Name, p.Name())
			}
			return r.report("Added %s to %s", t.Name, p.Name())
		}, menu.WithHint(fmt.Sprintf("%d tracks", len(p.TrackIDs()))))
	}
	m.AddEntry("New playlist...", func(ctx context.Context) error {
		p, err := r.createPlaylist(ctx)
		if err != nil || p == nil {
			return err
		}
		if _, err := playlists.AddTrack(p.ID(), t.ID); err != nil {
			return err
		}
		m.RequestStop()
		return r.report("Added %s to %s", t.Name, p.Name())
	}, menu.WithShortcut('+'))
	m.AddSeparator()
	m.AddBack("Back")
	return m.Run(ctx)
}

// createPlaylist prompts for a name and description. A blank name creates nothing.
func (r *Runner) createPlaylist(ctx context.Context) (*models.LocalPlaylist, error) {
	name, err := r.ask(ctx, "Playlist name", "")
	if err != nil || name == "" {
		return nil, err
	}
	description, err := r.ask(ctx, "Description", "optional")
	if err != nil {
		return nil, err
	}

	_, playlists, err := r.Library()
	if err != nil {
		return nil, err
	}
	p := models.NewLocalPlaylist(name, description)
	if err := playlists.Create(p); err != nil {
		return nil, err
	}
	r.logger.Info("playlist created", "id", p.ID(), "name", name)
	return p, nil
}

func (r *Runner) libraryMenu(ctx context.Context) error {
	if _, _, err := r.Library(); err != nil {
		return err
	}

	m := r.newMenu("Library")
	m.AddEntry("Saved tracks", func(ctx context.Context) error {
		return r.savedTracks(ctx, "")
	})
	m.AddEntry("Search saved tracks", func(ctx context.Context) error {
		query, err := r.ask(ctx, "Filter saved tracks", "name, artist or album")
		if err != nil || query == "" {
			return err
		}
		return r.savedTracks(ctx, query)
	})
	m.AddEntry("Local playlists", r.localPlaylists)
	m.AddEntry("New local playlist", func(ctx context.Context) error {
		p, err := r.createPlaylist(ctx)
		if err != nil || p == nil {
			return err
		}
		return r.report("Created playlist %s", p.Name())
	}, menu.WithShortcut('+'))
	m.AddEntry("Export library", func(ctx context.Context) error {
		return r.exportMenu(ctx, "library", func(context.Context) (*formatter.Collection, string, error) {
			c, err := r.libraryCollection()
			return c, "", err
		})
	}, menu.WithShortcut('e'))
	m.AddEntry("Back up everything", r.backupMenu, menu.WithShortcut('b'))
	m.AddSeparator()
	m.AddBack("Back")
	return m.Run(ctx)
}

// savedTracks lists the library, reloading after each visit since details can remove tracks.
func (r *Runner) savedTracks(ctx context.Context, query string) error {
	library, _, err := r.Library()
	if err != nil {
		return err
	}

	for {
		saved, err := library.List(map[string]any{"query": query})
		if err != nil {
			return err
		}
		if len(saved) == 0 {
			if query != "" {
				return r.warn("No saved tracks match %q", query)
			}
			return r.warn("Library is empty")
		}

		title := fmt.Sprintf("Saved tracks (%d)", len(saved))
		if query != "" {
			title = fmt.Sprintf("Saved tracks matching %q (%d)", query, len(saved))
		}

		reload := false
		m := r.newMenu(title)
		for _, s := range saved {
			m.AddEntry(formatter.Summary(s.Track()), func(ctx context.Context) error {
				reload = true
				m.RequestStop()
				return r.details(ctx, s.Track())
			})
		}
		m.AddSeparator()
		m.AddBack("Back")

		if err := m.Run(ctx); err != nil || !reload {
			return err
		}
	}
}

func (r *Runner) localPlaylists(ctx context.Context) error {
	_, playlists, err := r.Library()
	if err != nil {
		return err
	}

	for {
		all, err := playlists.List(nil)
		if err != nil {
			return err
		}

		reload := false
		m := r.newMenu(fmt.Sprintf("Local playlists (%d)", len(all)))
		for _, p := range all {
			m.AddEntry(p.Name(), func(ctx context.Context) error {
				reload = true
				m.RequestStop()
				return r.localPlaylistMenu(ctx, p)
			}, menu.WithHint(fmt.Sprintf("%d tracks", len(p.TrackIDs()))))
		}
		if len(all) > 0 {
			m.AddSeparator()
		}
		m.AddEntry("New local playlist", func(ctx context.Context) error {
			p, err := r.createPlaylist(ctx)
			if p != nil {
				reload = true
				m.RequestStop()
			}
			return err
		}, menu.WithShortcut('+'))
		m.AddBack("Back")

		if err := m.Run(ctx); err != nil || !reload {
			return err
		}
	}
}

func (r *Runner) localPlaylistMenu(ctx context.Context, p *models.LocalPlaylist) error {
	_, playlists, err := r.Library()
	if err != nil {
		return err
	}

	title := p.Name()
	if p.Description() != "" {
		title += "\n" + r.palette.Help(p.Description())
	}

	m := r.newMenu(title)
	m.AddEntry("Tracks", func(ctx context.Context) error {
		tracks, err := r.resolveTracks(ctx, p.TrackIDs())
		if err != nil {
			return err
		}
		return r.browseRecords(ctx, p.Name(), staticPage(trackRecords(tracks)))
	}, menu.WithHint(fmt.Sprintf("%d tracks", len(p.TrackIDs()))))

	m.AddEntry("Remove a track", func(ctx context.Context) error {
		tracks, err := r.resolveTracks(ctx, p.TrackIDs())
		if err != nil {
			return err
		}

		pick := r.newMenu("Remove from " + p.Name())
		for _, t := range tracks {
			pick.AddEntry(formatter.Summary(t), func(ctx context.Context) error {
				if err := playlists.RemoveTrack(p.ID(), t.ID); err != nil {
					return err
				}
				p.RemoveTrack(t.ID)
				pick.RequestStop()
				return r.report("Removed %s", t.Name)
			})
		}
		pick.AddSeparator()
		pick.AddBack("Back")
		return pick.Run(ctx)
	}, disabledWhen(len(p.TrackIDs()) == 0))

	m.AddEntry("Rename", func(ctx context.Context) error {
		name, err := r.ask(ctx, "New name", p.Name())
		if err != nil || name == "" {
			return err
		}
		description, err := r.ask(ctx, "Description", p.Description())
		if err != nil {
			return err
		}
		p.Rename(name, description)
		if err := playlists.Update(p); err != nil {
			return err
		}
		m.RequestStop()
		return r.report("Renamed to %s", name)
	})

	m.AddEntry("Export", func(ctx context.Context) error {
		return r.exportMenu(ctx, p.Name(), func(ctx context.Context) (*formatter.Collection, string, error) {
			c, err := r.localPlaylistCollection(ctx, p)
			return c, "", err
		})
	}, menu.WithShortcut('e'))

	m.AddEntry("Delete playlist", func(ctx context.Context) error {
		ok, err := ui.Confirm(ctx, r.keys, r.output, fmt.Sprintf("Delete %s?", p.Name()), false)
		if err != nil || !ok {
			return err
		}
		if err := playlists.Delete(p.ID()); err != nil && !errors.Is(err, shared.ErrPlaylistNotFound) {
			return err
		}
		r.logger.Info("playlist deleted", "id", p.ID(), "name", p.Name())
		m.RequestStop()
		return nil
	}, menu.WithShortcut('x'))

	m.AddSeparator()
	m.AddBack("Back")
	return m.Run(ctx)
}

func disabledWhen(cond bool) menu.EntryOption {
	if cond {
		return menu.Disabled()
	}
	return func(*menu.Entry) {}
}

func trackRecords(tracks []models.Track) []models.Record {
	records := make([]models.Record, len(tracks))
	for i, t := range tracks {
		records[i] = t
	}
	return records
}
