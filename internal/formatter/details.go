package formatter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/desertthunder/muzik/internal/models"
	"github.com/desertthunder/muzik/internal/shared"
)

// Field is one labeled line of a details screen.
type Field struct {
	Label string
	Value string
}

// Summary is the single-line form of a record used for menu labels and plain listings.
func Summary(r models.Record) string {
	switch v := r.(type) {
	case models.Track:
		return fmt.Sprintf("%s - %s (%s)", v.Name, orUnknown(v.ArtistNames()), v.Duration())
	case models.Album:
		year := ""
		if len(v.ReleaseDate) >= 4 {
			year = " [" + v.ReleaseDate[:4] + "]"
		}
		return fmt.Sprintf("%s - %s%s", v.Name, orUnknown(strings.Join(v.Artists, ", ")), year)
	case models.Artist:
		return fmt.Sprintf("%s (%s followers)", v.Name, thousands(v.Followers))
	case models.Playlist:
		return fmt.Sprintf("%s by %s (%d tracks)", v.Name, orUnknown(v.Owner), v.TracksCount)
	}
	return r.DisplayName()
}

// Details lists the documented fields of a record in display order.
func Details(r models.Record) []Field {
	switch v := r.(type) {
	case models.Track:
		preview := "Not available"
		if v.PreviewURL != nil {
			preview = *v.PreviewURL
		}
		return []Field{
			{"Name", v.Name},
			{"Artists", orUnknown(v.ArtistNames())},
			{"Album", orUnknown(v.Album)},
			{"Duration", v.Duration()},
			{"Track", fmt.Sprintf("%d (disc %d)", v.TrackNumber, v.DiscNumber)},
			{"Popularity", fmt.Sprintf("%d/100", v.Popularity)},
			{"Explicit", yesNo(v.Explicit)},
			{"ISRC", orUnknown(v.ISRC)},
			{"Preview", preview},
			{"Link", orUnknown(v.ExternalURL)},
		}
	case models.Album:
		return []Field{
			{"Name", v.Name},
			{"Artists", orUnknown(strings.Join(v.Artists, ", "))},
			{"Type", orUnknown(v.AlbumType)},
			{"Released", orUnknown(v.ReleaseDate)},
			{"Tracks", strconv.Itoa(v.TotalTracks)},
			{"Label", orUnknown(v.Label)},
			{"Genres", orUnknown(strings.Join(v.Genres, ", "))},
			{"Popularity", fmt.Sprintf("%d/100", v.Popularity)},
			{"Link", orUnknown(v.ExternalURL)},
		}
	case models.Artist:
		return []Field{
			{"Name", v.Name},
			{"Genres", orUnknown(strings.Join(v.Genres, ", "))},
			{"Followers", thousands(v.Followers)},
			{"Popularity", fmt.Sprintf("%d/100", v.Popularity)},
			{"Link", orUnknown(v.ExternalURL)},
		}
	case models.Playlist:
		return []Field{
			{"Name", v.Name},
			{"Owner", orUnknown(v.Owner)},
			{"Description", orUnknown(v.Description)},
			{"Tracks", strconv.Itoa(v.TracksCount)},
			{"Visibility", visibility(v.Public, v.Collaborative)},
			{"Followers", thousands(v.Followers)},
			{"Link", orUnknown(v.ExternalURL)},
		}
	}
	return []Field{{"Name", r.DisplayName()}}
}

// FieldWidth is the widest label in fields, for column alignment.
func FieldWidth(fields []Field) int {
	w := 0
	for _, f := range fields {
		w = max(w, len(f.Label))
	}
	return w
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func visibility(public, collaborative bool) string {
	v := shared.VisibilityString(public)
	if collaborative {
		v += ", collaborative"
	}
	return v
}

// thousands formats n with comma separators.
func thousands(n int) string {
	s := strconv.Itoa(n)
	if n < 0 {
		return "-" + thousands(-n)
	}
	for i := len(s) - 3; i > 0; i -= 3 {
		s = s[:i] + "," + s[i:]
	}
	return s
}
