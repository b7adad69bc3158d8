package models

import (
	"fmt"
	"strings"
)

// Kind names a catalog record type. Values match the catalog's `type` query parameter.
type Kind string

const (
	KindTrack    Kind = "track"
	KindAlbum    Kind = "album"
	KindArtist   Kind = "artist"
	KindPlaylist Kind = "playlist"
)

// Kinds lists every searchable record kind in menu order.
var Kinds = []Kind{KindTrack, KindAlbum, KindArtist, KindPlaylist}

// ParseKind converts a user supplied string ("track", "Tracks", ...) into a [Kind].
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), "s"))
	switch k {
	case KindTrack, KindAlbum, KindArtist, KindPlaylist:
		return k, nil
	}
	return "", fmt.Errorf("unknown record kind %q", s)
}

// Plural returns the key the catalog uses for lists of this kind ("tracks", "albums", ...).
func (k Kind) Plural() string {
	return string(k) + "s"
}

// Record is implemented by every normalized catalog record.
type Record interface {
	Kind() Kind
	RecordID() string
	DisplayName() string
}

var (
	_ Record = Track{}
	_ Record = Album{}
	_ Record = Artist{}
	_ Record = Playlist{}
)

// Image represents an artwork resource.
type Image struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// Track is a normalized catalog track.
type Track struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Artists     []string `json:"artists"`
	Album       string   `json:"album"`
	AlbumID     string   `json:"album_id,omitempty"`
	DurationMS  int      `json:"duration_ms"`
	Popularity  int      `json:"popularity"`
	ExternalURL string   `json:"external_url"`
	PreviewURL  *string  `json:"preview_url"` // nil when the catalog has no preview
	Explicit    bool     `json:"explicit"`
	DiscNumber  int      `json:"disc_number"`
	TrackNumber int      `json:"track_number"`
	ISRC        string   `json:"isrc,omitempty"`
}

func (t Track) Kind() Kind          { return KindTrack }
func (t Track) RecordID() string    { return t.ID }
func (t Track) DisplayName() string { return fmt.Sprintf("%s - %s", t.Name, t.ArtistNames()) }

// ArtistNames joins the track's artists with a comma.
func (t Track) ArtistNames() string {
	return strings.Join(t.Artists, ", ")
}

// Duration returns the track length as m:ss.
func (t Track) Duration() string {
	return FormatDuration(t.DurationMS)
}

// Album is a normalized catalog album.
type Album struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Artists     []string `json:"artists"`
	ReleaseDate string   `json:"release_date"`
	TotalTracks int      `json:"total_tracks"`
	AlbumType   string   `json:"album_type"`
	ExternalURL string   `json:"external_url"`
	Images      []Image  `json:"images"`
	Genres      []string `json:"genres"`
	Label       string   `json:"label"`
	Popularity  int      `json:"popularity"`
}

func (a Album) Kind() Kind       { return KindAlbum }
func (a Album) RecordID() string { return a.ID }
func (a Album) DisplayName() string {
	return fmt.Sprintf("%s - %s", a.Name, strings.Join(a.Artists, ", "))
}

// Artist is a normalized catalog artist.
type Artist struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Genres      []string `json:"genres"`
	Popularity  int      `json:"popularity"`
	Followers   int      `json:"followers"`
	ExternalURL string   `json:"external_url"`
	Images      []Image  `json:"images"`
}

func (a Artist) Kind() Kind          { return KindArtist }
func (a Artist) RecordID() string    { return a.ID }
func (a Artist) DisplayName() string { return a.Name }

// Playlist is a normalized catalog playlist.
type Playlist struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	TracksCount   int     `json:"tracks_count"`
	Public        bool    `json:"public"`
	Collaborative bool    `json:"collaborative"`
	Owner         string  `json:"owner"`
	ExternalURL   string  `json:"external_url"`
	Images        []Image `json:"images"`
	Followers     int     `json:"followers"`
}

func (p Playlist) Kind() Kind       { return KindPlaylist }
func (p Playlist) RecordID() string { return p.ID }
func (p Playlist) DisplayName() string {
	if p.Owner == "" {
		return p.Name
	}
	return fmt.Sprintf("%s (by %s)", p.Name, p.Owner)
}

// Page is one slice of a paginated listing along with its cursor fields.
type Page struct {
	Items   []Record
	Total   int
	Limit   int
	Offset  int
	HasNext bool
}

// NextOffset returns the offset a caller should request next.
func (p *Page) NextOffset() int {
	return p.Offset + len(p.Items)
}

// Tracks filters the [Track] records out of a mixed slice.
func Tracks(records []Record) []Track {
	tracks := make([]Track, 0, len(records))
	for _, r := range records {
		if t, ok := r.(Track); ok {
			tracks = append(tracks, t)
		}
	}
	return tracks
}

// FormatDuration formats milliseconds as m:ss (or h:mm:ss past an hour).
func FormatDuration(ms int) string {
	if ms < 0 {
		ms = 0
	}
	total := ms / 1000
	h, m, s := total/3600, (total%3600)/60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
