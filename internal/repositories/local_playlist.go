package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/muzik/internal/models"
	"github.com/desertthunder/muzik/internal/shared"
)

var _ models.Repository[*models.LocalPlaylist] = (*LocalPlaylistRepository)(nil)

// LocalPlaylistRepository implements models.Repository[*models.LocalPlaylist].
//
// Track membership lives in local_playlist_tracks and is rewritten as a whole on every Update.
type LocalPlaylistRepository struct {
	db *sql.DB
}

// NewLocalPlaylistRepository creates a new LocalPlaylistRepository with the given database connection
func NewLocalPlaylistRepository(db *sql.DB) *LocalPlaylistRepository {
	return &LocalPlaylistRepository{db: db}
}

// Create inserts a playlist and its tracks. Names are unique; a duplicate returns [shared.ErrInvalidInput].
func (r *LocalPlaylistRepository) Create(playlist *models.LocalPlaylist) error {
	if err := playlist.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	id := shared.GenerateID()
	err := inTx(r.db, func(tx *sql.Tx) error {
		query := `INSERT INTO local_playlists (id, name, description, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`
		_, err := tx.Exec(query, id, playlist.Name(), playlist.Description(), playlist.CreatedAt(), playlist.UpdatedAt())
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: playlist %q already exists", shared.ErrInvalidInput, playlist.Name())
		}
		if err != nil {
			return fmt.Errorf("failed to insert playlist: %w", err)
		}
		return writeTracks(tx, id, playlist.TrackIDs())
	})
	if err != nil {
		return err
	}

	playlist.SetID(id)
	return nil
}

// Get retrieves a playlist and its ordered track ids by ID
func (r *LocalPlaylistRepository) Get(id string) (*models.LocalPlaylist, error) {
	query := `SELECT id, name, description, created_at, updated_at FROM local_playlists WHERE id = ?`
	return r.load(r.db.QueryRow(query, id))
}

// GetByName retrieves a playlist by its exact name
func (r *LocalPlaylistRepository) GetByName(name string) (*models.LocalPlaylist, error) {
	query := `SELECT id, name, description, created_at, updated_at FROM local_playlists WHERE name = ?`
	return r.load(r.db.QueryRow(query, name))
}

// Update stores the playlist's name, description and track order.
func (r *LocalPlaylistRepository) Update(playlist *models.LocalPlaylist) error {
	if err := playlist.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	return inTx(r.db, func(tx *sql.Tx) error {
		query := `UPDATE local_playlists SET name = ?, description = ?, updated_at = ? WHERE id = ?`
		result, err := tx.Exec(query, playlist.Name(), playlist.Description(), time.Now().UTC(), playlist.ID())
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: playlist %q already exists", shared.ErrInvalidInput, playlist.Name())
		}
		if err != nil {
			return fmt.Errorf("failed to update playlist: %w", err)
		}
		if err := affected(result, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, playlist.ID())); err != nil {
			return err
		}

		if _, err := tx.Exec(`DELETE FROM local_playlist_tracks WHERE playlist_id = ?`, playlist.ID()); err != nil {
			return fmt.Errorf("failed to clear playlist tracks: %w", err)
		}
		return writeTracks(tx, playlist.ID(), playlist.TrackIDs())
	})
}

// Delete removes a playlist; its track rows cascade.
func (r *LocalPlaylistRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM local_playlists WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete playlist: %w", err)
	}
	return affected(result, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, id))
}

// List retrieves playlists ordered by name.
//
// Criteria: "name" (substring match), "contains" (catalog track id).
func (r *LocalPlaylistRepository) List(criteria map[string]any) ([]*models.LocalPlaylist, error) {
	query := `SELECT id, name, description, created_at, updated_at FROM local_playlists p WHERE 1 = 1`
	args := []any{}

	if name, ok := criteria["name"].(string); ok && strings.TrimSpace(name) != "" {
		query += " AND p.name LIKE ?"
		args = append(args, "%"+strings.TrimSpace(name)+"%")
	}
	if trackID, ok := criteria["contains"].(string); ok && trackID != "" {
		query += " AND EXISTS (SELECT 1 FROM local_playlist_tracks t WHERE t.playlist_id = p.id AND t.catalog_id = ?)"
		args = append(args, trackID)
	}
	query += " ORDER BY p.name ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlists: %w", err)
	}

	var headers []playlistRow
	for rows.Next() {
		h, err := scanPlaylist(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		headers = append(headers, h)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	rows.Close()

	playlists := make([]*models.LocalPlaylist, 0, len(headers))
	for _, h := range headers {
		p, err := r.restore(h)
		if err != nil {
			return nil, err
		}
		playlists = append(playlists, p)
	}
	return playlists, nil
}

// AddTrack appends a catalog track to a stored playlist. It reports false when the track was already present.
func (r *LocalPlaylistRepository) AddTrack(playlistID, catalogID string) (bool, error) {
	playlist, err := r.Get(playlistID)
	if err != nil {
		return false, err
	}
	if !playlist.AddTrack(catalogID) {
		return false, nil
	}
	return true, r.Update(playlist)
}

// RemoveTrack drops a catalog track from a stored playlist, keeping the remaining order.
func (r *LocalPlaylistRepository) RemoveTrack(playlistID, catalogID string) error {
	playlist, err := r.Get(playlistID)
	if err != nil {
		return err
	}
	if !playlist.RemoveTrack(catalogID) {
		return fmt.Errorf("%w: %s", shared.ErrTrackNotFound, catalogID)
	}
	return r.Update(playlist)
}

type playlistRow struct {
	id, name, description string
	createdAt, updatedAt  time.Time
}

func scanPlaylist(row scanner) (playlistRow, error) {
	var h playlistRow
	err := row.Scan(&h.id, &h.name, &h.description, &h.createdAt, &h.updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return h, shared.ErrPlaylistNotFound
	}
	if err != nil {
		return h, fmt.Errorf("failed to scan playlist: %w", err)
	}
	return h, nil
}

func (r *LocalPlaylistRepository) load(row scanner) (*models.LocalPlaylist, error) {
	h, err := scanPlaylist(row)
	if err != nil {
		return nil, err
	}
	return r.restore(h)
}

func (r *LocalPlaylistRepository) restore(h playlistRow) (*models.LocalPlaylist, error) {
	rows, err := r.db.Query(`SELECT catalog_id FROM local_playlist_tracks WHERE playlist_id = ? ORDER BY position ASC`, h.id)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlist tracks: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan playlist track: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return models.RestoreLocalPlaylist(h.id, h.name, h.description, ids, h.createdAt, h.updatedAt), nil
}

func writeTracks(tx *sql.Tx, playlistID string, trackIDs []string) error {
	if len(trackIDs) == 0 {
		return nil
	}

	stmt, err := tx.Prepare(`INSERT INTO local_playlist_tracks (playlist_id, catalog_id, position) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare track insert: %w", err)
	}
	defer stmt.Close()

	for i, id := range trackIDs {
		if _, err := stmt.Exec(playlistID, id, i); err != nil {
			return fmt.Errorf("failed to insert playlist track %s: %w", id, err)
		}
	}
	return nil
}
