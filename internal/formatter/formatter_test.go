package formatter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/muzik/internal/models"
	"github.com/desertthunder/muzik/internal/shared"
	th "github.com/desertthunder/muzik/internal/testing"
)

func testCollection() *Collection {
	preview := "https://p.example.com/two.mp3"
	return NewCollection("Road Trip!", "Songs for the car", []models.Track{
		{
			ID:          "track1",
			Name:        "Song One",
			Artists:     []string{"Artist One", "Guest"},
			Album:       "Album One",
			DurationMS:  185000,
			Popularity:  55,
			ISRC:        "USRC12345678",
			ExternalURL: "https://open.example.com/track/track1",
		},
		{
			ID:         "track2",
			Name:       "Song Two",
			Artists:    []string{"Artist Two"},
			DurationMS: 240000,
			PreviewURL: &preview,
		},
		{
			ID:   "track3",
			Name: "Offline",
		},
	})
}

func TestExporters(t *testing.T) {
	t.Run("ExportToCSV", func(t *testing.T) {
		data, err := ExportToCSV(testCollection())
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}

		output := string(data)
		if !strings.Contains(output, "ID,Name,Artists,Album,Duration,Popularity,ISRC,URL") {
			t.Errorf("CSV missing headers, got: %s", output)
		}
		if !strings.Contains(output, `track1,Song One,"Artist One, Guest",Album One,3:05,55,USRC12345678`) {
			t.Errorf("CSV missing track1 row, got: %s", output)
		}
		if lines := strings.Count(output, "\n"); lines != 4 {
			t.Errorf("expected 4 lines, got %d", lines)
		}
	})

	t.Run("ExportToJSON", func(t *testing.T) {
		data, err := ExportToJSON(testCollection())
		if err != nil {
			t.Fatalf("ExportToJSON failed: %v", err)
		}

		var decoded struct {
			Name   string `json:"name"`
			Tracks []struct {
				DurationMS int     `json:"duration_ms"`
				PreviewURL *string `json:"preview_url"`
			} `json:"tracks"`
		}
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if decoded.Name != "Road Trip!" || len(decoded.Tracks) != 3 {
			t.Errorf("unexpected export %+v", decoded)
		}
		if decoded.Tracks[0].PreviewURL != nil || decoded.Tracks[1].PreviewURL == nil {
			t.Error("expected preview_url to be null only when absent")
		}
	})

	t.Run("ExportToM3U", func(t *testing.T) {
		data, err := ExportToM3U(testCollection())
		if err != nil {
			t.Fatalf("ExportToM3U failed: %v", err)
		}

		output := string(data)
		for _, want := range []string{
			"#EXTM3U\n",
			"#PLAYLIST:Road Trip!\n",
			"#EXTINF:185,Artist One, Guest - Song One\nhttps://open.example.com/track/track1\n",
			"#EXTINF:240,Artist Two - Song Two\nhttps://p.example.com/two.mp3\n",
			"# no link for track3\n",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("M3U missing %q, got:\n%s", want, output)
			}
		}
	})

	t.Run("ExportToMarkdown", func(t *testing.T) {
		t.Run("Without Cover Image", func(t *testing.T) {
			data, err := ExportToMarkdown(testCollection(), "")
			if err != nil {
				t.Fatalf("ExportToMarkdown failed: %v", err)
			}

			output := string(data)
			for _, want := range []string{
				"# Road Trip!",
				"**Description**: Songs for the car",
				"**Tracks**: 3",
				"**Length**: 7:05",
				"1. Artist One, Guest - Song One (Album One) [3:05]",
				"2. Artist Two - Song Two [4:00]",
			} {
				if !strings.Contains(output, want) {
					t.Errorf("Markdown missing %q, got:\n%s", want, output)
				}
			}
			if strings.Contains(output, "![Cover]") {
				t.Error("expected no cover image")
			}
		})

		t.Run("With Cover Image", func(t *testing.T) {
			data, err := ExportToMarkdown(testCollection(), "cover.jpg")
			if err != nil {
				t.Fatalf("ExportToMarkdown failed: %v", err)
			}
			if !strings.Contains(string(data), "![Cover](cover.jpg)") {
				t.Error("expected cover image reference")
			}
		})
	})

	t.Run("Render", func(t *testing.T) {
		for _, f := range Formats {
			if _, err := Render(testCollection(), f); err != nil {
				t.Errorf("%s: unexpected error %v", f, err)
			}
		}
		if _, err := Render(testCollection(), Format("xml")); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
		ok   bool
	}{
		{"csv", CSV, true},
		{".JSON", JSON, true},
		{"m3u8", M3U, true},
		{"markdown", Markdown, true},
		{"md", Markdown, true},
		{"xml", "", false},
	}

	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err == nil) != tt.ok || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestDefaultFilename(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Road Trip!", "road-trip.csv"},
		{"  --  ", "export.csv"},
		{"Best of 2024 (Remastered)", "best-of-2024-remastered.csv"},
	}

	for _, tt := range tests {
		if got := DefaultFilename(&Collection{Name: tt.name}, CSV); got != tt.want {
			t.Errorf("%q: expected %q, got %q", tt.name, tt.want, got)
		}
	}
}

func TestSlug(t *testing.T) {
	tests := map[string]string{
		"Saved tracks": "saved-tracks",
		"mix!":         "mix",
		"":             "export",
		"Ünïcode 99":   "n-code-99",
	}
	for in, want := range tests {
		if got := Slug(in); got != want {
			t.Errorf("Slug(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestWriteExport(t *testing.T) {
	t.Run("WithDefaultPath", func(t *testing.T) {
		tempDir := t.TempDir()
		originalDir := th.MustGetwd(t)
		th.MustChdir(t, tempDir)
		defer th.MustChdir(t, originalDir)

		path, err := WriteExport(testCollection(), M3U, "")
		if err != nil {
			t.Fatalf("WriteExport failed: %v", err)
		}
		if path != "road-trip.m3u" {
			t.Errorf("expected default filename, got %s", path)
		}
		th.AssertFileExists(t, path)
		if content := th.MustReadFile(t, path); !strings.HasPrefix(content, "#EXTM3U") {
			t.Errorf("unexpected content %q", content)
		}
	})

	t.Run("WithNestedPath", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "exports", "mix.csv")

		got, err := WriteExport(testCollection(), CSV, path)
		if err != nil {
			t.Fatalf("WriteExport failed: %v", err)
		}
		th.AssertFileExists(t, got)
	})
}

func TestWriteMarkdownExport(t *testing.T) {
	t.Run("WithCover", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("jpeg-bytes"))
		}))
		defer server.Close()

		dir := filepath.Join(t.TempDir(), "mix")
		var warn bytes.Buffer
		result, err := WriteMarkdownExport(context.Background(), testCollection(), dir, server.URL, &warn)
		if err != nil {
			t.Fatalf("WriteMarkdownExport failed: %v", err)
		}

		th.AssertDirExists(t, result.Directory)
		th.AssertFileExists(t, filepath.Join(dir, "README.md"))
		if result.CoverImage == "" || th.MustReadFile(t, result.CoverImage) != "jpeg-bytes" {
			t.Errorf("expected cover image to be saved, got %+v", result)
		}
		if len(result.Files) != 2 || warn.Len() != 0 {
			t.Errorf("unexpected result %+v, warnings %q", result, warn.String())
		}
	})

	t.Run("CoverFailureIsAWarning", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		dir := filepath.Join(t.TempDir(), "mix")
		var warn bytes.Buffer
		result, err := WriteMarkdownExport(context.Background(), testCollection(), dir, server.URL, &warn)
		if err != nil {
			t.Fatalf("WriteMarkdownExport failed: %v", err)
		}
		if result.CoverImage != "" || !strings.Contains(warn.String(), "failed to download cover image") {
			t.Errorf("expected warning without cover, got %+v / %q", result, warn.String())
		}
	})
}

func TestDownloadImage(t *testing.T) {
	t.Run("EmptyURL", func(t *testing.T) {
		if _, err := DownloadImage(context.Background(), nil, ""); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("TransportFailure", func(t *testing.T) {
		client := &http.Client{Transport: th.NewMockRoundTripper(nil, errors.New("network down"))}
		if _, err := DownloadImage(context.Background(), client, "https://example.com/x.jpg"); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("BodyFailure", func(t *testing.T) {
		resp := &http.Response{StatusCode: http.StatusOK, Body: &th.FCloser{}}
		client := &http.Client{Transport: th.NewMockRoundTripper(resp, nil)}
		if _, err := DownloadImage(context.Background(), client, "https://example.com/x.jpg"); err == nil {
			t.Error("expected read error")
		}
	})
}
