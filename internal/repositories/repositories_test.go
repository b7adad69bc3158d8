package repositories

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/desertthunder/muzik/internal/models"
	"github.com/desertthunder/muzik/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.OpenLibrary(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func preview(s string) *string { return &s }

func sampleTrack(id, name string) models.Track {
	return models.Track{
		ID:          id,
		Name:        name,
		Artists:     []string{"Daft Punk", "Pharrell Williams"},
		Album:       "Random Access Memories",
		DurationMS:  369000,
		Popularity:  82,
		ExternalURL: "https://open.example.com/track/" + id,
		Explicit:    false,
	}
}

func TestSavedTrackRepository(t *testing.T) {
	t.Run("Create", func(t *testing.T) {
		repo := NewSavedTrackRepository(setupTestDB(t))
		saved := models.NewSavedTrack(sampleTrack("t1", "Get Lucky"))

		if err := repo.Create(saved); err != nil {
			t.Fatalf("failed to create saved track: %v", err)
		}
		if saved.ID() == "" {
			t.Error("ID should be set after creation")
		}
	})

	t.Run("Create rejects invalid track", func(t *testing.T) {
		repo := NewSavedTrackRepository(setupTestDB(t))
		saved := models.NewSavedTrack(models.Track{Name: "no id"})

		if err := repo.Create(saved); err == nil {
			t.Fatal("expected validation error")
		}
		if saved.ID() != "" {
			t.Error("ID should stay empty on failure")
		}
	})

	t.Run("Create duplicate catalog id", func(t *testing.T) {
		repo := NewSavedTrackRepository(setupTestDB(t))
		if err := repo.Create(models.NewSavedTrack(sampleTrack("t1", "Get Lucky"))); err != nil {
			t.Fatalf("first create: %v", err)
		}

		err := repo.Create(models.NewSavedTrack(sampleTrack("t1", "Get Lucky")))
		if !errors.Is(err, shared.ErrAlreadySaved) {
			t.Errorf("expected ErrAlreadySaved, got %v", err)
		}
	})

	t.Run("Get round trip", func(t *testing.T) {
		repo := NewSavedTrackRepository(setupTestDB(t))
		track := sampleTrack("t1", "Get Lucky")
		track.PreviewURL = preview("https://p.example.com/t1.mp3")
		track.Explicit = true
		saved := models.NewSavedTrack(track)
		if err := repo.Create(saved); err != nil {
			t.Fatalf("failed to create: %v", err)
		}

		got, err := repo.Get(saved.ID())
		if err != nil {
			t.Fatalf("failed to get: %v", err)
		}

		gt := got.Track()
		if gt.ID != "t1" || gt.Name != "Get Lucky" || gt.Album != track.Album {
			t.Errorf("unexpected track: %+v", gt)
		}
		if len(gt.Artists) != 2 || gt.Artists[1] != "Pharrell Williams" {
			t.Errorf("artists = %v", gt.Artists)
		}
		if gt.DurationMS != 369000 || gt.Popularity != 82 || !gt.Explicit {
			t.Errorf("numeric fields lost: %+v", gt)
		}
		if gt.PreviewURL == nil || *gt.PreviewURL != "https://p.example.com/t1.mp3" {
			t.Errorf("preview = %v", gt.PreviewURL)
		}
		if got.CreatedAt().IsZero() {
			t.Error("created_at should be set")
		}
	})

	t.Run("Get keeps missing preview nil", func(t *testing.T) {
		repo := NewSavedTrackRepository(setupTestDB(t))
		saved := models.NewSavedTrack(sampleTrack("t1", "Get Lucky"))
		if err := repo.Create(saved); err != nil {
			t.Fatalf("failed to create: %v", err)
		}

		got, err := repo.GetByCatalogID("t1")
		if err != nil {
			t.Fatalf("failed to get: %v", err)
		}
		if got.Track().PreviewURL != nil {
			t.Errorf("expected nil preview, got %q", *got.Track().PreviewURL)
		}
	})

	t.Run("Get missing", func(t *testing.T) {
		repo := NewSavedTrackRepository(setupTestDB(t))

		if _, err := repo.Get("nope"); !errors.Is(err, shared.ErrTrackNotFound) {
			t.Errorf("expected ErrTrackNotFound, got %v", err)
		}
		if _, err := repo.GetByCatalogID("nope"); !errors.Is(err, shared.ErrTrackNotFound) {
			t.Errorf("expected ErrTrackNotFound, got %v", err)
		}
	})

	t.Run("Exists", func(t *testing.T) {
		repo := NewSavedTrackRepository(setupTestDB(t))
		if err := repo.Create(models.NewSavedTrack(sampleTrack("t1", "Get Lucky"))); err != nil {
			t.Fatalf("failed to create: %v", err)
		}

		for id, want := range map[string]bool{"t1": true, "t2": false} {
			got, err := repo.Exists(id)
			if err != nil {
				t.Fatalf("exists %s: %v", id, err)
			}
			if got != want {
				t.Errorf("Exists(%q) = %v, want %v", id, got, want)
			}
		}
	})

	t.Run("Update", func(t *testing.T) {
		repo := NewSavedTrackRepository(setupTestDB(t))
		saved := models.NewSavedTrack(sampleTrack("t1", "Get Lucky"))
		if err := repo.Create(saved); err != nil {
			t.Fatalf("failed to create: %v", err)
		}

		track := saved.Track()
		track.Name = "Get Lucky (Radio Edit)"
		track.Popularity = 90
		updated := models.RestoreSavedTrack(saved.ID(), track, saved.CreatedAt(), saved.UpdatedAt())
		if err := repo.Update(updated); err != nil {
			t.Fatalf("failed to update: %v", err)
		}

		got, err := repo.Get(saved.ID())
		if err != nil {
			t.Fatalf("failed to get: %v", err)
		}
		if got.Track().Name != "Get Lucky (Radio Edit)" || got.Track().Popularity != 90 {
			t.Errorf("update not persisted: %+v", got.Track())
		}
	})

	t.Run("Update missing", func(t *testing.T) {
		repo := NewSavedTrackRepository(setupTestDB(t))
		ghost := models.RestoreSavedTrack("ghost", sampleTrack("t1", "Get Lucky"), time.Now(), time.Now())

		if err := repo.Update(ghost); !errors.Is(err, shared.ErrTrackNotFound) {
			t.Errorf("expected ErrTrackNotFound, got %v", err)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		repo := NewSavedTrackRepository(setupTestDB(t))
		a := models.NewSavedTrack(sampleTrack("t1", "Get Lucky"))
		b := models.NewSavedTrack(sampleTrack("t2", "Instant Crush"))
		for _, s := range []*models.SavedTrack{a, b} {
			if err := repo.Create(s); err != nil {
				t.Fatalf("failed to create: %v", err)
			}
		}

		if err := repo.Delete(a.ID()); err != nil {
			t.Fatalf("failed to delete: %v", err)
		}
		if err := repo.DeleteByCatalogID("t2"); err != nil {
			t.Fatalf("failed to delete by catalog id: %v", err)
		}
		if err := repo.Delete(a.ID()); !errors.Is(err, shared.ErrTrackNotFound) {
			t.Errorf("second delete: expected ErrTrackNotFound, got %v", err)
		}

		n, err := repo.Count()
		if err != nil {
			t.Fatalf("count: %v", err)
		}
		if n != 0 {
			t.Errorf("expected empty library, got %d", n)
		}
	})

	t.Run("List", func(t *testing.T) {
		repo := NewSavedTrackRepository(setupTestDB(t))
		tracks := []models.Track{
			sampleTrack("t1", "Get Lucky"),
			sampleTrack("t2", "Instant Crush"),
			{ID: "t3", Name: "Midnight City", Artists: []string{"M83"}, Album: "Hurry Up, We're Dreaming"},
		}
		for _, tr := range tracks {
			if err := repo.Create(models.NewSavedTrack(tr)); err != nil {
				t.Fatalf("failed to create: %v", err)
			}
		}

		tests := []struct {
			name     string
			criteria map[string]any
			want     int
		}{
			{"all", nil, 3},
			{"query by name", map[string]any{"query": "crush"}, 1},
			{"query by artist", map[string]any{"query": "M83"}, 1},
			{"query by album", map[string]any{"query": "Memories"}, 2},
			{"blank query", map[string]any{"query": "  "}, 3},
			{"limit", map[string]any{"limit": 2}, 2},
			{"catalog ids", map[string]any{"catalog_ids": []string{"t1", "t3", "zz"}}, 2},
			{"empty catalog ids", map[string]any{"catalog_ids": []string{}}, 0},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				got, err := repo.List(tt.criteria)
				if err != nil {
					t.Fatalf("list: %v", err)
				}
				if len(got) != tt.want {
					t.Errorf("got %d tracks, want %d", len(got), tt.want)
				}
			})
		}
	})
}

func TestLocalPlaylistRepository(t *testing.T) {
	t.Run("Create with tracks", func(t *testing.T) {
		repo := NewLocalPlaylistRepository(setupTestDB(t))
		p := models.NewLocalPlaylist("Road Trip", "long drives")
		p.AddTrack("t1")
		p.AddTrack("t2")

		if err := repo.Create(p); err != nil {
			t.Fatalf("failed to create playlist: %v", err)
		}
		if p.ID() == "" {
			t.Fatal("ID should be set after creation")
		}

		got, err := repo.Get(p.ID())
		if err != nil {
			t.Fatalf("failed to get playlist: %v", err)
		}
		if got.Name() != "Road Trip" || got.Description() != "long drives" {
			t.Errorf("unexpected playlist: %s / %s", got.Name(), got.Description())
		}
		if ids := got.TrackIDs(); len(ids) != 2 || ids[0] != "t1" || ids[1] != "t2" {
			t.Errorf("track ids = %v", ids)
		}
	})

	t.Run("Create duplicate name", func(t *testing.T) {
		repo := NewLocalPlaylistRepository(setupTestDB(t))
		if err := repo.Create(models.NewLocalPlaylist("Mix", "")); err != nil {
			t.Fatalf("first create: %v", err)
		}

		if err := repo.Create(models.NewLocalPlaylist("Mix", "")); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("Create requires name", func(t *testing.T) {
		repo := NewLocalPlaylistRepository(setupTestDB(t))
		if err := repo.Create(models.NewLocalPlaylist(" ", "")); err == nil {
			t.Error("expected validation error")
		}
	})

	t.Run("GetByName", func(t *testing.T) {
		repo := NewLocalPlaylistRepository(setupTestDB(t))
		p := models.NewLocalPlaylist("Focus", "")
		if err := repo.Create(p); err != nil {
			t.Fatalf("failed to create: %v", err)
		}

		got, err := repo.GetByName("Focus")
		if err != nil {
			t.Fatalf("failed to get by name: %v", err)
		}
		if got.ID() != p.ID() {
			t.Errorf("got %s, want %s", got.ID(), p.ID())
		}
		if len(got.TrackIDs()) != 0 {
			t.Errorf("expected no tracks, got %v", got.TrackIDs())
		}

		if _, err := repo.GetByName("missing"); !errors.Is(err, shared.ErrPlaylistNotFound) {
			t.Errorf("expected ErrPlaylistNotFound, got %v", err)
		}
	})

	t.Run("Update replaces tracks", func(t *testing.T) {
		repo := NewLocalPlaylistRepository(setupTestDB(t))
		p := models.NewLocalPlaylist("Mix", "")
		p.AddTrack("t1")
		p.AddTrack("t2")
		if err := repo.Create(p); err != nil {
			t.Fatalf("failed to create: %v", err)
		}

		p.Rename("Mix Tape", "side A")
		p.RemoveTrack("t1")
		p.AddTrack("t3")
		if err := repo.Update(p); err != nil {
			t.Fatalf("failed to update: %v", err)
		}

		got, err := repo.Get(p.ID())
		if err != nil {
			t.Fatalf("failed to get: %v", err)
		}
		if got.Name() != "Mix Tape" || got.Description() != "side A" {
			t.Errorf("rename not persisted: %s / %s", got.Name(), got.Description())
		}
		if ids := got.TrackIDs(); len(ids) != 2 || ids[0] != "t2" || ids[1] != "t3" {
			t.Errorf("track ids = %v", ids)
		}
	})

	t.Run("Update missing", func(t *testing.T) {
		repo := NewLocalPlaylistRepository(setupTestDB(t))
		ghost := models.RestoreLocalPlaylist("ghost", "Ghost", "", nil, time.Now(), time.Now())

		if err := repo.Update(ghost); !errors.Is(err, shared.ErrPlaylistNotFound) {
			t.Errorf("expected ErrPlaylistNotFound, got %v", err)
		}
	})

	t.Run("AddTrack and RemoveTrack", func(t *testing.T) {
		repo := NewLocalPlaylistRepository(setupTestDB(t))
		p := models.NewLocalPlaylist("Mix", "")
		if err := repo.Create(p); err != nil {
			t.Fatalf("failed to create: %v", err)
		}

		added, err := repo.AddTrack(p.ID(), "t1")
		if err != nil || !added {
			t.Fatalf("add: added=%v err=%v", added, err)
		}
		added, err = repo.AddTrack(p.ID(), "t1")
		if err != nil || added {
			t.Errorf("duplicate add: added=%v err=%v", added, err)
		}

		if err := repo.RemoveTrack(p.ID(), "t1"); err != nil {
			t.Fatalf("remove: %v", err)
		}
		if err := repo.RemoveTrack(p.ID(), "t1"); !errors.Is(err, shared.ErrTrackNotFound) {
			t.Errorf("expected ErrTrackNotFound, got %v", err)
		}
		if _, err := repo.AddTrack("ghost", "t1"); !errors.Is(err, shared.ErrPlaylistNotFound) {
			t.Errorf("expected ErrPlaylistNotFound, got %v", err)
		}
	})

	t.Run("Delete cascades tracks", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewLocalPlaylistRepository(db)
		p := models.NewLocalPlaylist("Mix", "")
		p.AddTrack("t1")
		if err := repo.Create(p); err != nil {
			t.Fatalf("failed to create: %v", err)
		}

		if err := repo.Delete(p.ID()); err != nil {
			t.Fatalf("failed to delete: %v", err)
		}

		var n int
		if err := db.QueryRow(`SELECT COUNT(*) FROM local_playlist_tracks`).Scan(&n); err != nil {
			t.Fatalf("count: %v", err)
		}
		if n != 0 {
			t.Errorf("expected track rows to cascade, %d left", n)
		}
		if err := repo.Delete(p.ID()); !errors.Is(err, shared.ErrPlaylistNotFound) {
			t.Errorf("expected ErrPlaylistNotFound, got %v", err)
		}
	})

	t.Run("List", func(t *testing.T) {
		repo := NewLocalPlaylistRepository(setupTestDB(t))
		for _, name := range []string{"Workout", "Chill", "Chill Evenings"} {
			p := models.NewLocalPlaylist(name, "")
			if name == "Workout" {
				p.AddTrack("t9")
			}
			if err := repo.Create(p); err != nil {
				t.Fatalf("failed to create %s: %v", name, err)
			}
		}

		all, err := repo.List(nil)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(all) != 3 || all[0].Name() != "Chill" || all[2].Name() != "Workout" {
			t.Errorf("unexpected order: %d playlists", len(all))
		}
		if len(all[2].TrackIDs()) != 1 {
			t.Errorf("expected tracks loaded for Workout, got %v", all[2].TrackIDs())
		}

		chill, err := repo.List(map[string]any{"name": "chill"})
		if err != nil {
			t.Fatalf("list by name: %v", err)
		}
		if len(chill) != 2 {
			t.Errorf("expected 2 chill playlists, got %d", len(chill))
		}

		holding, err := repo.List(map[string]any{"contains": "t9"})
		if err != nil {
			t.Fatalf("list by track: %v", err)
		}
		if len(holding) != 1 || holding[0].Name() != "Workout" {
			t.Errorf("expected Workout, got %d playlists", len(holding))
		}
	})
}
