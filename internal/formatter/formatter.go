// package formatter renders catalog records for display and exports track collections to
// CSV, JSON, M3U and Markdown.
package formatter

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/muzik/internal/models"
	"github.com/desertthunder/muzik/internal/shared"
)

// Format is an export file format.
type Format string

const (
	CSV      Format = "csv"
	JSON     Format = "json"
	M3U      Format = "m3u"
	Markdown Format = "md"
)

// Formats lists every export format in menu order.
var Formats = []Format{CSV, JSON, M3U, Markdown}

// ParseFormat accepts a format name or file extension.
func ParseFormat(s string) (Format, error) {
	switch strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), ".") {
	case "csv":
		return CSV, nil
	case "json":
		return JSON, nil
	case "m3u", "m3u8":
		return M3U, nil
	case "md", "markdown":
		return Markdown, nil
	}
	return "", fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidArgument, s)
}

// Extension returns the file extension including the dot.
func (f Format) Extension() string { return "." + string(f) }

// Collection is a named list of tracks to export: a catalog playlist, an album, search results
// or the personal library.
type Collection struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Source      string         `json:"source,omitempty"`
	ExportedAt  time.Time      `json:"exported_at"`
	Tracks      []models.Track `json:"tracks"`
}

// NewCollection stamps a collection with the current time.
func NewCollection(name, description string, tracks []models.Track) *Collection {
	return &Collection{Name: name, Description: description, ExportedAt: time.Now().UTC(), Tracks: tracks}
}

// Render encodes c in format f.
func Render(c *Collection, f Format) ([]byte, error) {
	switch f {
	case CSV:
		return ExportToCSV(c)
	case JSON:
		return ExportToJSON(c)
	case M3U:
		return ExportToM3U(c)
	case Markdown:
		return ExportToMarkdown(c, "")
	}
	return nil, fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidArgument, f)
}

// ExportToCSV converts a Collection to CSV with columns: ID, Name, Artists, Album, Duration, Popularity, ISRC, URL
func ExportToCSV(c *Collection) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Name", "Artists", "Album", "Duration", "Popularity", "ISRC", "URL"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, track := range c.Tracks {
		record := []string{
			track.ID,
			track.Name,
			track.ArtistNames(),
			track.Album,
			track.Duration(),
			strconv.Itoa(track.Popularity),
			track.ISRC,
			track.ExternalURL,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToJSON encodes the whole collection, tracks included.
func ExportToJSON(c *Collection) ([]byte, error) {
	return shared.MarshalJSON(c, true)
}

// ExportToM3U writes an extended M3U playlist. Tracks without any link are listed as comments.
func ExportToM3U(c *Collection) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("#EXTM3U\n")
	if c.Name != "" {
		buf.WriteString(fmt.Sprintf("#PLAYLIST:%s\n", c.Name))
	}

	for _, track := range c.Tracks {
		location := track.ExternalURL
		if track.PreviewURL != nil {
			location = *track.PreviewURL
		}

		buf.WriteString(fmt.Sprintf("#EXTINF:%d,%s - %s\n", track.DurationMS/1000, track.ArtistNames(), track.Name))
		if location == "" {
			buf.WriteString(fmt.Sprintf("# no link for %s\n", track.ID))
			continue
		}
		buf.WriteString(location + "\n")
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a Collection to Markdown with an optional cover image
func ExportToMarkdown(c *Collection, imageFilename string) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", c.Name))

	if imageFilename != "" {
		buf.WriteString(fmt.Sprintf("![Cover](%s)\n\n", imageFilename))
	}

	if c.Description != "" {
		buf.WriteString(fmt.Sprintf("**Description**: %s\n\n", c.Description))
	}

	buf.WriteString(fmt.Sprintf("**Tracks**: %d\n", len(c.Tracks)))
	buf.WriteString(fmt.Sprintf("**Length**: %s\n\n", models.FormatDuration(totalMS(c.Tracks))))

	buf.WriteString("## Tracks\n\n")
	for i, track := range c.Tracks {
		albumPart := ""
		if track.Album != "" {
			albumPart = fmt.Sprintf(" (%s)", track.Album)
		}
		buf.WriteString(fmt.Sprintf("%d. %s - %s%s [%s]\n", i+1, track.ArtistNames(), track.Name, albumPart, track.Duration()))
	}

	return buf.Bytes(), nil
}

func totalMS(tracks []models.Track) int {
	total := 0
	for _, t := range tracks {
		total += t.DurationMS
	}
	return total
}

// Slug lowercases name and joins its alphanumeric runs with dashes, e.g. "Road Trip!" -> "road-trip".
// Names without any letters or digits become "export".
func Slug(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteRune('-')
			dash = true
		}
	}

	slug := strings.TrimSuffix(b.String(), "-")
	if slug == "" {
		return "export"
	}
	return slug
}

// DefaultFilename derives a file name from the collection name, e.g. "Road Trip!" -> "road-trip.csv".
func DefaultFilename(c *Collection, f Format) string {
	return Slug(c.Name) + f.Extension()
}

// WriteExport renders c and writes it to path, creating parent directories.
//
// Defaults to [DefaultFilename] in the working directory when path is empty.
func WriteExport(c *Collection, f Format, path string) (string, error) {
	if path == "" {
		path = DefaultFilename(c, f)
	}

	data, err := Render(c, f)
	if err != nil {
		return "", fmt.Errorf("failed to generate %s: %w", f, err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}

	return path, nil
}

// MarkdownExportResult contains information about files created by WriteMarkdownExport
type MarkdownExportResult struct {
	Directory  string
	Files      []string
	CoverImage string
}

// WriteMarkdownExport exports a collection to a dedicated directory as README.md.
//
// The imageURL parameter is optional; if provided, the cover is downloaded next to the README.
// A failed download is reported through warn and does not fail the export.
func WriteMarkdownExport(ctx context.Context, c *Collection, outputDir, imageURL string, warn io.Writer) (*MarkdownExportResult, error) {
	if outputDir == "" {
		outputDir = strings.TrimSuffix(DefaultFilename(c, Markdown), Markdown.Extension())
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	result := &MarkdownExportResult{
		Directory: outputDir,
		Files:     []string{},
	}

	var coverImageFilename string
	if imageURL != "" {
		imageData, err := DownloadImage(ctx, nil, imageURL)
		if err != nil {
			fmt.Fprintf(warn, "Warning: failed to download cover image: %v\n", err)
		} else {
			coverImageFilename = "cover.jpg"
			coverImagePath := filepath.Join(outputDir, coverImageFilename)
			if err := os.WriteFile(coverImagePath, imageData, 0644); err != nil {
				fmt.Fprintf(warn, "Warning: failed to save cover image: %v\n", err)
				coverImageFilename = ""
			} else {
				result.CoverImage = coverImagePath
				result.Files = append(result.Files, coverImagePath)
			}
		}
	}

	mdData, err := ExportToMarkdown(c, coverImageFilename)
	if err != nil {
		return nil, fmt.Errorf("failed to generate Markdown: %w", err)
	}

	mdFile := filepath.Join(outputDir, "README.md")
	if err := os.WriteFile(mdFile, mdData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write Markdown file: %w", err)
	}

	result.Files = append(result.Files, mdFile)

	return result, nil
}

// WriteCollection writes c in format f and returns the created paths.
//
// Markdown exports go to a directory named by path; other formats to a single file.
func WriteCollection(ctx context.Context, c *Collection, f Format, path, imageURL string, warn io.Writer) ([]string, error) {
	if f == Markdown {
		if warn == nil {
			warn = io.Discard
		}
		result, err := WriteMarkdownExport(ctx, c, path, imageURL, warn)
		if err != nil {
			return nil, err
		}
		return result.Files, nil
	}

	written, err := WriteExport(c, f, path)
	if err != nil {
		return nil, err
	}
	return []string{written}, nil
}

// DownloadImage downloads an image from the given URL and returns the raw bytes.
// A nil client uses a 30s timeout client.
func DownloadImage(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("%w: empty URL provided", shared.ErrInvalidArgument)
	}

	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	imageData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	return imageData, nil
}
