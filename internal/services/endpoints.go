package services

import (
	"context"
	"net/url"

	"github.com/desertthunder/muzik/internal/models"
)

// Per-request maximums documented by the catalog.
const (
	MaxPageLimit      = 50
	MaxPlaylistTracks = 100
	MaxBatchAlbums    = 20
	MaxBatchTracks    = 50
	MaxBatchArtists   = 50
)

// Endpoint describes one catalog listing: where it lives and how to find its records.
type Endpoint struct {
	Path string
	Kind models.Kind

	// MaxLimit is the largest accepted limit. Zero means the endpoint is not paginated.
	MaxLimit int

	// List is the gjson path of the record array. When it ends in "items" the enclosing
	// object carries total/limit/offset/next.
	List string

	// Wrapper names the per-item key holding the record, e.g. playlist items wrap "track".
	Wrapper string

	// Market adds the configured market to the query.
	Market bool
}

// SearchEndpoint lists search results of one kind.
func SearchEndpoint(kind models.Kind) Endpoint {
	return Endpoint{Path: "/search", Kind: kind, MaxLimit: MaxPageLimit, List: kind.Plural() + ".items", Market: true}
}

func AlbumTracksEndpoint(albumID string) Endpoint {
	return Endpoint{Path: "/albums/" + url.PathEscape(albumID) + "/tracks", Kind: models.KindTrack, MaxLimit: MaxPageLimit, List: "items", Market: true}
}

func PlaylistTracksEndpoint(playlistID string) Endpoint {
	return Endpoint{
		Path:     "/playlists/" + url.PathEscape(playlistID) + "/tracks",
		Kind:     models.KindTrack,
		MaxLimit: MaxPlaylistTracks,
		List:     "items",
		Wrapper:  "track",
		Market:   true,
	}
}

func ArtistAlbumsEndpoint(artistID string) Endpoint {
	return Endpoint{Path: "/artists/" + url.PathEscape(artistID) + "/albums", Kind: models.KindAlbum, MaxLimit: MaxPageLimit, List: "items", Market: true}
}

func ArtistTopTracksEndpoint(artistID string) Endpoint {
	return Endpoint{Path: "/artists/" + url.PathEscape(artistID) + "/top-tracks", Kind: models.KindTrack, List: "tracks", Market: true}
}

func RelatedArtistsEndpoint(artistID string) Endpoint {
	return Endpoint{Path: "/artists/" + url.PathEscape(artistID) + "/related-artists", Kind: models.KindArtist, List: "artists"}
}

func NewReleasesEndpoint() Endpoint {
	return Endpoint{Path: "/browse/new-releases", Kind: models.KindAlbum, MaxLimit: MaxPageLimit, List: "albums.items"}
}

func FeaturedPlaylistsEndpoint() Endpoint {
	return Endpoint{Path: "/browse/featured-playlists", Kind: models.KindPlaylist, MaxLimit: MaxPageLimit, List: "playlists.items"}
}

func CategoryPlaylistsEndpoint(categoryID string) Endpoint {
	return Endpoint{Path: "/browse/categories/" + url.PathEscape(categoryID) + "/playlists", Kind: models.KindPlaylist, MaxLimit: MaxPageLimit, List: "playlists.items"}
}

// batchEndpoints serve [CatalogClient.GetManyByID]. MaxLimit is the id count cap.
var batchEndpoints = map[models.Kind]Endpoint{
	models.KindTrack:  {Path: "/tracks", Kind: models.KindTrack, MaxLimit: MaxBatchTracks, List: "tracks", Market: true},
	models.KindAlbum:  {Path: "/albums", Kind: models.KindAlbum, MaxLimit: MaxBatchAlbums, List: "albums", Market: true},
	models.KindArtist: {Path: "/artists", Kind: models.KindArtist, MaxLimit: MaxBatchArtists, List: "artists"},
}

// AlbumTracks lists an album's tracks. Album-track payloads carry no album object, so the
// records have empty Album fields.
func (c *CatalogClient) AlbumTracks(ctx context.Context, albumID string, limit, offset int) (*models.Page, error) {
	return c.Paginate(ctx, AlbumTracksEndpoint(albumID), limit, offset, nil)
}

// PlaylistTracks lists a playlist's tracks, up to 100 per page.
func (c *CatalogClient) PlaylistTracks(ctx context.Context, playlistID string, limit, offset int) (*models.Page, error) {
	return c.Paginate(ctx, PlaylistTracksEndpoint(playlistID), limit, offset, nil)
}

// ArtistAlbums lists albums and singles by an artist.
func (c *CatalogClient) ArtistAlbums(ctx context.Context, artistID string, limit, offset int) (*models.Page, error) {
	params := url.Values{}
	params.Set("include_groups", "album,single")
	return c.Paginate(ctx, ArtistAlbumsEndpoint(artistID), limit, offset, params)
}

func (c *CatalogClient) ArtistTopTracks(ctx context.Context, artistID string) ([]models.Record, error) {
	return c.GetPaginated(ctx, ArtistTopTracksEndpoint(artistID), 0, 0, nil)
}

func (c *CatalogClient) RelatedArtists(ctx context.Context, artistID string) ([]models.Record, error) {
	return c.GetPaginated(ctx, RelatedArtistsEndpoint(artistID), 0, 0, nil)
}

func (c *CatalogClient) NewReleases(ctx context.Context, limit, offset int) (*models.Page, error) {
	params := url.Values{}
	params.Set("country", c.market)
	return c.Paginate(ctx, NewReleasesEndpoint(), limit, offset, params)
}

func (c *CatalogClient) FeaturedPlaylists(ctx context.Context, limit, offset int) (*models.Page, error) {
	return c.Paginate(ctx, FeaturedPlaylistsEndpoint(), limit, offset, nil)
}

func (c *CatalogClient) CategoryPlaylists(ctx context.Context, categoryID string, limit, offset int) (*models.Page, error) {
	return c.Paginate(ctx, CategoryPlaylistsEndpoint(categoryID), limit, offset, nil)
}
