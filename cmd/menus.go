package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/muzik/internal/formatter"
	"github.com/desertthunder/muzik/internal/menu"
	"github.com/desertthunder/muzik/internal/models"
	"github.com/desertthunder/muzik/internal/services"
)

func (r *Runner) mainMenu() *menu.Menu {
	catalogHint := ""
	if !r.config.Catalog.Configured() {
		catalogHint = "set credentials in Settings first"
	}

	m := r.newMenu("muzik")
	m.AddEntry("Search", r.searchMenu, menu.WithShortcut('/'), menu.WithHint(catalogHint))
	m.AddEntry("Browse", r.browseMenu, menu.WithShortcut('b'), menu.WithHint(catalogHint))
	m.AddEntry("Library", r.libraryMenu, menu.WithShortcut('l'))
	m.AddSeparator()
	m.AddEntry("Settings", r.settingsMenu, menu.WithShortcut('c'))
	m.AddEntry("Status", r.showStatus, menu.WithShortcut('i'))
	m.AddSeparator()
	m.AddBack("Exit")
	return m
}

func (r *Runner) searchMenu(ctx context.Context) error {
	m := r.newMenu("Search")
	for _, kind := range models.Kinds {
		m.AddEntry(titleCase(kind.Plural()), func(ctx context.Context) error {
			return r.search(ctx, kind)
		})
	}
	m.AddSeparator()
	m.AddBack("Back")
	return m.Run(ctx)
}

func (r *Runner) search(ctx context.Context, kind models.Kind) error {
	query, err := r.ask(ctx, "Search "+kind.Plural(), "query")
	if err != nil || query == "" {
		return err
	}
	limit, err := r.askLimit(ctx)
	if err != nil {
		return err
	}

	r.logger.Debug("search", "query", query, "kind", kind, "limit", limit)
	title := fmt.Sprintf("%s matching %q", titleCase(kind.Plural()), query)
	return r.browseRecords(ctx, title, func(ctx context.Context, offset int) (*models.Page, error) {
		return r.Client().SearchPage(ctx, query, kind, limit, offset)
	})
}

// browseRecords shows one page of records at a time with previous/next entries.
func (r *Runner) browseRecords(ctx context.Context, title string, fetch pageFunc) error {
	offset := 0
	for {
		page, err := fetch(ctx, offset)
		if err != nil {
			return err
		}

		m := r.newMenu(pageTitle(title, page))
		for _, rec := range page.Items {
			m.AddEntry(formatter.Summary(rec), func(ctx context.Context) error {
				return r.details(ctx, rec)
			})
		}

		next := -1
		if page.Offset > 0 {
			step := page.Limit
			if step == 0 {
				step = len(page.Items)
			}
			m.AddEntry("Previous page", func(ctx context.Context) error {
				next = max(0, page.Offset-step)
				m.RequestStop()
				return nil
			}, menu.WithShortcut('p'))
		}
		if page.HasNext && len(page.Items) > 0 {
			m.AddEntry("Next page", func(ctx context.Context) error {
				next = page.NextOffset()
				m.RequestStop()
				return nil
			}, menu.WithShortcut('n'))
		}
		m.AddSeparator()
		m.AddBack("Back")

		if err := m.Run(ctx); err != nil {
			return err
		}
		if next < 0 {
			return nil
		}
		offset = next
	}
}

func pageTitle(title string, page *models.Page) string {
	if len(page.Items) == 0 {
		return title + " (no results)"
	}
	first := page.Offset + 1
	last := page.Offset + len(page.Items)
	if page.Total > 0 {
		return fmt.Sprintf("%s (%d-%d of %d)", title, first, last, page.Total)
	}
	return fmt.Sprintf("%s (%d-%d)", title, first, last)
}

// staticPage serves a fixed record list as a single page.
func staticPage(records []models.Record) pageFunc {
	return func(context.Context, int) (*models.Page, error) {
		return &models.Page{Items: records, Total: len(records), Limit: len(records)}, nil
	}
}

func detailsTitle(rec models.Record) string {
	fields := formatter.Details(rec)
	width := formatter.FieldWidth(fields)

	var b strings.Builder
	b.WriteString(formatter.Summary(rec))
	b.WriteString("\n")
	for _, f := range fields {
		fmt.Fprintf(&b, "\n  %-*s  %s", width, f.Label, f.Value)
	}
	return b.String()
}

// details shows a record with the follow-up actions its kind supports.
func (r *Runner) details(ctx context.Context, rec models.Record) error {
	for {
		m := r.newMenu(detailsTitle(rec))
		refresh := false

		switch v := rec.(type) {
		case models.Track:
			r.trackActions(m, v, &refresh)
		case models.Album:
			r.albumActions(m, v)
		case models.Artist:
			r.artistActions(m, v)
		case models.Playlist:
			r.playlistActions(m, v)
		}
		m.AddSeparator()
		m.AddBack("Back")

		if err := m.Run(ctx); err != nil || !refresh {
			return err
		}
	}
}

func (r *Runner) openEntry(m *menu.Menu, label, url string, shortcut rune) {
	opts := []menu.EntryOption{menu.WithShortcut(shortcut)}
	if url == "" {
		opts = append(opts, menu.Disabled(), menu.WithHint("not available"))
	}
	m.AddEntry(label, func(ctx context.Context) error {
		r.logger.Debug("opening browser", "url", url)
		return r.browse(url)
	}, opts...)
}

func (r *Runner) trackActions(m *menu.Menu, t models.Track, refresh *bool) {
	saved := false
	if library, _, err := r.Library(); err == nil {
		saved, _ = library.Exists(t.ID)
	}

	if saved {
		m.AddEntry("Remove from library", func(ctx context.Context) error {
			if err := r.removeTrack(t); err != nil {
				return err
			}
			*refresh = true
			m.RequestStop()
			return nil
		}, menu.WithShortcut('r'))
	} else {
		m.AddEntry("Save to library", func(ctx context.Context) error {
			if err := r.saveTrack(t); err != nil {
				return err
			}
			*refresh = true
			m.RequestStop()
			return nil
		}, menu.WithShortcut('f'))
	}
	m.AddEntry("Add to local playlist", func(ctx context.Context) error {
		return r.addToPlaylist(ctx, t)
	}, menu.WithShortcut('a'))

	if t.AlbumID != "" {
		m.AddEntry("View album", func(ctx context.Context) error {
			album, err := r.Client().GetByID(ctx, models.KindAlbum, t.AlbumID)
			if err != nil {
				return err
			}
			return r.details(ctx, album)
		}, menu.WithHint(t.Album))
	}

	r.openEntry(m, "Open in browser", t.ExternalURL, 'o')
	preview := ""
	if t.PreviewURL != nil {
		preview = *t.PreviewURL
	}
	r.openEntry(m, "Play preview", preview, 'p')

	m.AddEntry("Export track", func(ctx context.Context) error {
		return r.exportMenu(ctx, t.Name, func(context.Context) (*formatter.Collection, string, error) {
			return formatter.NewCollection(t.Name, t.ArtistNames(), []models.Track{t}), "", nil
		})
	}, menu.WithShortcut('e'))
}

func (r *Runner) albumActions(m *menu.Menu, a models.Album) {
	m.AddEntry("Tracks", func(ctx context.Context) error {
		return r.browseRecords(ctx, a.Name, func(ctx context.Context, offset int) (*models.Page, error) {
			page, err := r.Client().AlbumTracks(ctx, a.ID, services.MaxPageLimit, offset)
			if err != nil {
				return nil, err
			}
			for i, rec := range page.Items {
				if t, ok := rec.(models.Track); ok {
					t.Album, t.AlbumID = a.Name, a.ID
					page.Items[i] = t
				}
			}
			return page, nil
		})
	}, menu.WithHint(fmt.Sprintf("%d tracks", a.TotalTracks)))

	m.AddEntry("Export tracks", func(ctx context.Context) error {
		return r.exportMenu(ctx, a.Name, func(ctx context.Context) (*formatter.Collection, string, error) {
			c, err := r.albumCollection(ctx, a)
			return c, coverURL(a.Images), err
		})
	}, menu.WithShortcut('e'))
	r.openEntry(m, "Open in browser", a.ExternalURL, 'o')
}

func (r *Runner) artistActions(m *menu.Menu, a models.Artist) {
	m.AddEntry("Top tracks", func(ctx context.Context) error {
		records, err := r.Client().ArtistTopTracks(ctx, a.ID)
		if err != nil {
			return err
		}
		return r.browseRecords(ctx, "Top tracks by "+a.Name, staticPage(records))
	})
	m.AddEntry("Albums", func(ctx context.Context) error {
		return r.browseRecords(ctx, "Albums by "+a.Name, func(ctx context.Context, offset int) (*models.Page, error) {
			return r.Client().ArtistAlbums(ctx, a.ID, services.MaxPageLimit, offset)
		})
	})
	m.AddEntry("Related artists", func(ctx context.Context) error {
		records, err := r.Client().RelatedArtists(ctx, a.ID)
		if err != nil {
			return err
		}
		return r.browseRecords(ctx, "Related to "+a.Name, staticPage(records))
	})
	r.openEntry(m, "Open in browser", a.ExternalURL, 'o')
}

func (r *Runner) playlistActions(m *menu.Menu, p models.Playlist) {
	m.AddEntry("Tracks", func(ctx context.Context) error {
		return r.browseRecords(ctx, p.Name, func(ctx context.Context, offset int) (*models.Page, error) {
			return r.Client().PlaylistTracks(ctx, p.ID, services.MaxPageLimit, offset)
		})
	}, menu.WithHint(fmt.Sprintf("%d tracks", p.TracksCount)))

	m.AddEntry("Export tracks", func(ctx context.Context) error {
		return r.exportMenu(ctx, p.Name, func(ctx context.Context) (*formatter.Collection, string, error) {
			c, err := r.playlistCollection(ctx, p)
			return c, coverURL(p.Images), err
		})
	}, menu.WithShortcut('e'))
	r.openEntry(m, "Open in browser", p.ExternalURL, 'o')
}

var formatLabels = map[formatter.Format]string{
	formatter.CSV:      "CSV",
	formatter.JSON:     "JSON",
	formatter.M3U:      "M3U playlist",
	formatter.Markdown: "Markdown",
}

// exportMenu offers every export format; build is only called once a format is chosen.
func (r *Runner) exportMenu(ctx context.Context, name string, build func(context.Context) (*formatter.Collection, string, error)) error {
	m := r.newMenu("Export " + name)
	for _, f := range formatter.Formats {
		m.AddEntry(formatLabels[f], func(ctx context.Context) error {
			c, imageURL, err := build(ctx)
			if err != nil {
				return err
			}
			files, err := r.writeCollection(ctx, c, f, "", imageURL)
			if err != nil {
				return err
			}

			r.logger.Info("export complete", "name", c.Name, "tracks", len(c.Tracks), "format", f)
			m.RequestStop()
			return r.report("Exported %d tracks to %s", len(c.Tracks), strings.Join(files, ", "))
		}, menu.WithHint(f.Extension()))
	}
	m.AddSeparator()
	m.AddBack("Back")
	return m.Run(ctx)
}

func (r *Runner) browseMenu(ctx context.Context) error {
	m := r.newMenu("Browse")
	m.AddEntry("New releases", func(ctx context.Context) error {
		return r.browseRecords(ctx, "New releases", func(ctx context.Context, offset int) (*models.Page, error) {
			return r.Client().NewReleases(ctx, 20, offset)
		})
	})
	m.AddEntry("Featured playlists", func(ctx context.Context) error {
		return r.browseRecords(ctx, "Featured playlists", func(ctx context.Context, offset int) (*models.Page, error) {
			return r.Client().FeaturedPlaylists(ctx, 20, offset)
		})
	})
	m.AddEntry("Category playlists", func(ctx context.Context) error {
		category, err := r.ask(ctx, "Category ID", "e.g. jazz, workout")
		if err != nil || category == "" {
			return err
		}
		return r.browseRecords(ctx, "Playlists in "+category, func(ctx context.Context, offset int) (*models.Page, error) {
			return r.Client().CategoryPlaylists(ctx, category, 20, offset)
		})
	})
	m.AddEntry("Look up by ID", r.lookupMenu)
	m.AddSeparator()
	m.AddBack("Back")
	return m.Run(ctx)
}

func (r *Runner) lookupMenu(ctx context.Context) error {
	m := r.newMenu("Look up by ID")
	for _, kind := range models.Kinds {
		m.AddEntry(titleCase(string(kind)), func(ctx context.Context) error {
			id, err := r.ask(ctx, titleCase(string(kind))+" ID", "catalog id")
			if err != nil || id == "" {
				return err
			}
			rec, err := r.Client().GetByID(ctx, kind, id)
			if err != nil {
				return err
			}
			return r.details(ctx, rec)
		})
	}
	m.AddSeparator()
	m.AddBack("Back")
	return m.Run(ctx)
}

func (r *Runner) showStatus(ctx context.Context) error {
	r.writeStatus(r.Client().Status())

	if library, playlists, err := r.Library(); err == nil {
		tracks, _ := library.Count()
		lists, _ := playlists.List(nil)
		r.writePlain("%-14s %d saved tracks, %d local playlists\n", "Library", tracks, len(lists))
	} else {
		r.writePlain("%-14s %s\n", "Library", r.palette.Warn(err.Error()))
	}
	return r.pause()
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
