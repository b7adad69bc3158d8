package services

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/desertthunder/muzik/internal/models"
	"github.com/desertthunder/muzik/internal/shared"
)

// NormalizePage extracts ep's record list and paging fields from body.
//
// A list that is absent or not an array is [shared.ErrMalformedResponse]. Null or non-object
// items (unresolved ids, removed playlist tracks) are skipped.
func NormalizePage(ep Endpoint, body []byte) (*models.Page, error) {
	root := gjson.ParseBytes(body)
	list := root.Get(ep.List)
	if !list.IsArray() {
		return nil, fmt.Errorf("%w: %q is not a list", shared.ErrMalformedResponse, ep.List)
	}

	page := &models.Page{Items: []models.Record{}}
	for _, item := range list.Array() {
		if ep.Wrapper != "" {
			item = item.Get(ep.Wrapper)
		}
		if !item.IsObject() {
			continue
		}
		page.Items = append(page.Items, Normalize(ep.Kind, item))
	}

	page.Total, page.Limit, page.Offset = len(page.Items), len(page.Items), 0
	if paging, ok := pagingPath(ep.List); ok {
		obj := root
		if paging != "" {
			obj = root.Get(paging)
		}
		if total := obj.Get("total"); total.Exists() {
			page.Total = int(total.Int())
		}
		page.Limit = int(obj.Get("limit").Int())
		page.Offset = int(obj.Get("offset").Int())
		page.HasNext = obj.Get("next").Type == gjson.String
	}
	return page, nil
}

// pagingPath returns the path of the paging object that encloses an "items" list.
func pagingPath(list string) (string, bool) {
	if list == "items" {
		return "", true
	}
	return strings.CutSuffix(list, ".items")
}

// Normalize flattens one raw catalog object into a record of kind. It never fails: absent
// fields take their zero value and a missing preview stays nil.
func Normalize(kind models.Kind, raw gjson.Result) models.Record {
	switch kind {
	case models.KindAlbum:
		return NormalizeAlbum(raw)
	case models.KindArtist:
		return NormalizeArtist(raw)
	case models.KindPlaylist:
		return NormalizePlaylist(raw)
	default:
		return NormalizeTrack(raw)
	}
}

func NormalizeTrack(raw gjson.Result) models.Track {
	t := models.Track{
		ID:          raw.Get("id").String(),
		Name:        raw.Get("name").String(),
		Artists:     names(raw.Get("artists")),
		Album:       raw.Get("album.name").String(),
		AlbumID:     raw.Get("album.id").String(),
		DurationMS:  int(raw.Get("duration_ms").Int()),
		Popularity:  int(raw.Get("popularity").Int()),
		ExternalURL: raw.Get("external_urls.spotify").String(),
		Explicit:    raw.Get("explicit").Bool(),
		DiscNumber:  int(raw.Get("disc_number").Int()),
		TrackNumber: int(raw.Get("track_number").Int()),
		ISRC:        raw.Get("external_ids.isrc").String(),
	}
	if preview := raw.Get("preview_url"); preview.Type == gjson.String && preview.Str != "" {
		p := preview.Str
		t.PreviewURL = &p
	}
	return t
}

func NormalizeAlbum(raw gjson.Result) models.Album {
	return models.Album{
		ID:          raw.Get("id").String(),
		Name:        raw.Get("name").String(),
		Artists:     names(raw.Get("artists")),
		ReleaseDate: raw.Get("release_date").String(),
		TotalTracks: int(raw.Get("total_tracks").Int()),
		AlbumType:   raw.Get("album_type").String(),
		ExternalURL: raw.Get("external_urls.spotify").String(),
		Images:      images(raw.Get("images")),
		Genres:      strs(raw.Get("genres")),
		Label:       raw.Get("label").String(),
		Popularity:  int(raw.Get("popularity").Int()),
	}
}

func NormalizeArtist(raw gjson.Result) models.Artist {
	return models.Artist{
		ID:          raw.Get("id").String(),
		Name:        raw.Get("name").String(),
		Genres:      strs(raw.Get("genres")),
		Popularity:  int(raw.Get("popularity").Int()),
		Followers:   int(raw.Get("followers.total").Int()),
		ExternalURL: raw.Get("external_urls.spotify").String(),
		Images:      images(raw.Get("images")),
	}
}

func NormalizePlaylist(raw gjson.Result) models.Playlist {
	owner := raw.Get("owner.display_name").String()
	if owner == "" {
		owner = raw.Get("owner.id").String()
	}

	return models.Playlist{
		ID:            raw.Get("id").String(),
		Name:          raw.Get("name").String(),
		Description:   raw.Get("description").String(),
		TracksCount:   int(raw.Get("tracks.total").Int()),
		Public:        raw.Get("public").Bool(),
		Collaborative: raw.Get("collaborative").Bool(),
		Owner:         owner,
		ExternalURL:   raw.Get("external_urls.spotify").String(),
		Images:        images(raw.Get("images")),
		Followers:     int(raw.Get("followers.total").Int()),
	}
}

// names collects the "name" of each object in an artists-style array.
func names(list gjson.Result) []string {
	out := []string{}
	for _, item := range list.Array() {
		if name := item.Get("name").String(); name != "" {
			out = append(out, name)
		}
	}
	return out
}

func strs(list gjson.Result) []string {
	out := []string{}
	for _, item := range list.Array() {
		if item.Type == gjson.String {
			out = append(out, item.Str)
		}
	}
	return out
}

func images(list gjson.Result) []models.Image {
	out := []models.Image{}
	for _, item := range list.Array() {
		if u := item.Get("url").String(); u != "" {
			out = append(out, models.Image{URL: u, Height: int(item.Get("height").Int()), Width: int(item.Get("width").Int())})
		}
	}
	return out
}
