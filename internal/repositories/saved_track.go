package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/muzik/internal/models"
	"github.com/desertthunder/muzik/internal/shared"
)

var _ models.Repository[*models.SavedTrack] = (*SavedTrackRepository)(nil)

const savedTrackColumns = `id, catalog_id, name, artists, album, duration_ms, popularity, external_url, preview_url, explicit, created_at, updated_at`

// SavedTrackRepository implements models.Repository[*models.SavedTrack] for the personal library.
type SavedTrackRepository struct {
	db *sql.DB
}

// NewSavedTrackRepository creates a new SavedTrackRepository with the given database connection
func NewSavedTrackRepository(db *sql.DB) *SavedTrackRepository {
	return &SavedTrackRepository{db: db}
}

// Create saves a track with a generated ID. Saving the same catalog track twice returns [shared.ErrAlreadySaved].
func (r *SavedTrackRepository) Create(saved *models.SavedTrack) error {
	if err := saved.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	id := shared.GenerateID()
	track := saved.Track()
	artists, err := json.Marshal(track.Artists)
	if err != nil {
		return fmt.Errorf("failed to encode artists: %w", err)
	}

	query := `INSERT INTO saved_tracks (` + savedTrackColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.Exec(query,
		id,
		track.ID,
		track.Name,
		string(artists),
		track.Album,
		track.DurationMS,
		track.Popularity,
		track.ExternalURL,
		track.PreviewURL,
		track.Explicit,
		saved.CreatedAt(),
		saved.UpdatedAt(),
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %s", shared.ErrAlreadySaved, track.Name)
	}
	if err != nil {
		return fmt.Errorf("failed to insert saved track: %w", err)
	}

	saved.SetID(id)
	return nil
}

// Get retrieves a saved track by library ID
func (r *SavedTrackRepository) Get(id string) (*models.SavedTrack, error) {
	query := `SELECT ` + savedTrackColumns + ` FROM saved_tracks WHERE id = ?`
	return r.scan(r.db.QueryRow(query, id))
}

// GetByCatalogID retrieves a saved track by its catalog track ID
func (r *SavedTrackRepository) GetByCatalogID(catalogID string) (*models.SavedTrack, error) {
	query := `SELECT ` + savedTrackColumns + ` FROM saved_tracks WHERE catalog_id = ?`
	return r.scan(r.db.QueryRow(query, catalogID))
}

// Exists reports whether a catalog track is already in the library.
func (r *SavedTrackRepository) Exists(catalogID string) (bool, error) {
	var n int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM saved_tracks WHERE catalog_id = ?`, catalogID).Scan(&n); err != nil {
		return false, fmt.Errorf("failed to check saved track: %w", err)
	}
	return n > 0, nil
}

// Update refreshes the stored catalog fields of a saved track.
func (r *SavedTrackRepository) Update(saved *models.SavedTrack) error {
	if err := saved.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	saved.Touch()
	track := saved.Track()
	artists, err := json.Marshal(track.Artists)
	if err != nil {
		return fmt.Errorf("failed to encode artists: %w", err)
	}

	query := `
		UPDATE saved_tracks
		SET name = ?, artists = ?, album = ?, duration_ms = ?, popularity = ?, external_url = ?, preview_url = ?, explicit = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := r.db.Exec(query,
		track.Name,
		string(artists),
		track.Album,
		track.DurationMS,
		track.Popularity,
		track.ExternalURL,
		track.PreviewURL,
		track.Explicit,
		saved.UpdatedAt(),
		saved.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update saved track: %w", err)
	}

	return affected(result, fmt.Errorf("%w: %s", shared.ErrTrackNotFound, saved.ID()))
}

// Delete removes a saved track by library ID
func (r *SavedTrackRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM saved_tracks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete saved track: %w", err)
	}
	return affected(result, fmt.Errorf("%w: %s", shared.ErrTrackNotFound, id))
}

// DeleteByCatalogID removes a saved track by its catalog track ID
func (r *SavedTrackRepository) DeleteByCatalogID(catalogID string) error {
	result, err := r.db.Exec(`DELETE FROM saved_tracks WHERE catalog_id = ?`, catalogID)
	if err != nil {
		return fmt.Errorf("failed to delete saved track: %w", err)
	}
	return affected(result, fmt.Errorf("%w: %s", shared.ErrTrackNotFound, catalogID))
}

// List retrieves saved tracks, newest first.
//
// Criteria: "query" (substring of name, artists or album), "limit" (int), "catalog_ids" ([]string).
func (r *SavedTrackRepository) List(criteria map[string]any) ([]*models.SavedTrack, error) {
	query := `SELECT ` + savedTrackColumns + ` FROM saved_tracks WHERE 1 = 1`
	args := []any{}

	if q, ok := criteria["query"].(string); ok && strings.TrimSpace(q) != "" {
		like := "%" + strings.TrimSpace(q) + "%"
		query += " AND (name LIKE ? OR artists LIKE ? OR album LIKE ?)"
		args = append(args, like, like, like)
	}

	if ids, ok := criteria["catalog_ids"].([]string); ok {
		if len(ids) == 0 {
			return []*models.SavedTrack{}, nil
		}
		query += " AND catalog_id IN (?" + strings.Repeat(", ?", len(ids)-1) + ")"
		for _, id := range ids {
			args = append(args, id)
		}
	}

	query += " ORDER BY created_at DESC, name ASC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query saved tracks: %w", err)
	}
	defer rows.Close()

	tracks := []*models.SavedTrack{}
	for rows.Next() {
		track, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		tracks = append(tracks, track)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return tracks, nil
}

// Count returns the number of saved tracks.
func (r *SavedTrackRepository) Count() (int, error) {
	var n int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM saved_tracks`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count saved tracks: %w", err)
	}
	return n, nil
}

// scan reads one row into a [models.SavedTrack]
func (r *SavedTrackRepository) scan(row scanner) (*models.SavedTrack, error) {
	var (
		id, catalogID, name, artists, album, externalURL string
		durationMS, popularity                           int
		previewURL                                       sql.NullString
		explicit                                         bool
		createdAt, updatedAt                             time.Time
	)

	err := row.Scan(&id, &catalogID, &name, &artists, &album, &durationMS, &popularity, &externalURL, &previewURL, &explicit, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shared.ErrTrackNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan saved track: %w", err)
	}

	track := models.Track{
		ID:          catalogID,
		Name:        name,
		Artists:     []string{},
		Album:       album,
		DurationMS:  durationMS,
		Popularity:  popularity,
		ExternalURL: externalURL,
		Explicit:    explicit,
	}
	if artists != "" {
		if err := json.Unmarshal([]byte(artists), &track.Artists); err != nil {
			return nil, fmt.Errorf("failed to decode artists for %s: %w", catalogID, err)
		}
	}
	if previewURL.Valid {
		track.PreviewURL = &previewURL.String
	}

	return models.RestoreSavedTrack(id, track, createdAt, updatedAt), nil
}
