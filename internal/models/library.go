package models

import (
	"errors"
	"strings"
	"time"
)

var (
	_ Model = (*SavedTrack)(nil)
	_ Model = (*LocalPlaylist)(nil)
)

// SavedTrack is a catalog track saved to the personal library.
type SavedTrack struct {
	id        string
	track     Track
	createdAt time.Time
	updatedAt time.Time
}

// NewSavedTrack wraps a catalog track for persistence. The ID is assigned by the repository.
func NewSavedTrack(track Track) *SavedTrack {
	now := time.Now().UTC()
	return &SavedTrack{track: track, createdAt: now, updatedAt: now}
}

// RestoreSavedTrack rebuilds a saved track from stored columns.
func RestoreSavedTrack(id string, track Track, createdAt, updatedAt time.Time) *SavedTrack {
	return &SavedTrack{id: id, track: track, createdAt: createdAt, updatedAt: updatedAt}
}

func (s *SavedTrack) ID() string           { return s.id }
func (s *SavedTrack) SetID(id string)      { s.id = id }
func (s *SavedTrack) Track() Track         { return s.track }
func (s *SavedTrack) CatalogID() string    { return s.track.ID }
func (s *SavedTrack) CreatedAt() time.Time { return s.createdAt }
func (s *SavedTrack) UpdatedAt() time.Time { return s.updatedAt }
func (s *SavedTrack) Touch()               { s.updatedAt = time.Now().UTC() }

func (s *SavedTrack) Validate() error {
	if strings.TrimSpace(s.track.ID) == "" {
		return errors.New("catalog track id is required")
	}
	if strings.TrimSpace(s.track.Name) == "" {
		return errors.New("track name is required")
	}
	return nil
}

// LocalPlaylist is a user-defined playlist kept in the library database.
type LocalPlaylist struct {
	id          string
	name        string
	description string
	trackIDs    []string // catalog track IDs in playlist order
	createdAt   time.Time
	updatedAt   time.Time
}

// NewLocalPlaylist creates an empty local playlist.
func NewLocalPlaylist(name, description string) *LocalPlaylist {
	now := time.Now().UTC()
	return &LocalPlaylist{name: name, description: description, createdAt: now, updatedAt: now}
}

// RestoreLocalPlaylist rebuilds a playlist from stored columns.
func RestoreLocalPlaylist(id, name, description string, trackIDs []string, createdAt, updatedAt time.Time) *LocalPlaylist {
	return &LocalPlaylist{
		id:          id,
		name:        name,
		description: description,
		trackIDs:    trackIDs,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}
}

func (p *LocalPlaylist) ID() string           { return p.id }
func (p *LocalPlaylist) SetID(id string)      { p.id = id }
func (p *LocalPlaylist) Name() string         { return p.name }
func (p *LocalPlaylist) Description() string  { return p.description }
func (p *LocalPlaylist) TrackIDs() []string   { return p.trackIDs }
func (p *LocalPlaylist) CreatedAt() time.Time { return p.createdAt }
func (p *LocalPlaylist) UpdatedAt() time.Time { return p.updatedAt }

// Rename updates the playlist name and description.
func (p *LocalPlaylist) Rename(name, description string) {
	p.name = name
	p.description = description
	p.updatedAt = time.Now().UTC()
}

// AddTrack appends a catalog track ID, ignoring duplicates. Reports whether the track was added.
func (p *LocalPlaylist) AddTrack(catalogID string) bool {
	for _, id := range p.trackIDs {
		if id == catalogID {
			return false
		}
	}
	p.trackIDs = append(p.trackIDs, catalogID)
	p.updatedAt = time.Now().UTC()
	return true
}

// RemoveTrack drops a catalog track ID. Reports whether the track was present.
func (p *LocalPlaylist) RemoveTrack(catalogID string) bool {
	for i, id := range p.trackIDs {
		if id == catalogID {
			p.trackIDs = append(p.trackIDs[:i], p.trackIDs[i+1:]...)
			p.updatedAt = time.Now().UTC()
			return true
		}
	}
	return false
}

func (p *LocalPlaylist) Validate() error {
	if strings.TrimSpace(p.name) == "" {
		return errors.New("playlist name is required")
	}
	return nil
}
