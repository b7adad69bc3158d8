package tasks

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/desertthunder/muzik/internal/formatter"
)

// CollectFunc gathers a collection and, optionally, a cover image URL for Markdown exports.
type CollectFunc func(ctx context.Context) (*formatter.Collection, string, error)

// Job is one collection to export.
type Job struct {
	Name    string
	Collect CollectFunc
}

// ExportResult is the outcome of a single [Job].
type ExportResult struct {
	Name    string   `json:"name"`
	Tracks  int      `json:"tracks"`
	Files   []string `json:"files,omitempty"`
	Success bool     `json:"success"`
	Message string   `json:"error,omitempty"`
	Error   error    `json:"-"`
}

// BulkExportResult summarizes a [BulkExport] run. It is also the manifest written to disk.
type BulkExportResult struct {
	Format          formatter.Format `json:"format"`
	OutputDirectory string           `json:"output_directory"`
	ManifestPath    string           `json:"-"`
	Total           int              `json:"total"`
	Succeeded       int              `json:"succeeded"`
	Failed          int              `json:"failed"`
	StartedAt       time.Time        `json:"started_at"`
	FinishedAt      time.Time        `json:"finished_at"`
	Results         []ExportResult   `json:"results"`
}

// BulkExportOpts configures [BulkExport].
type BulkExportOpts struct {
	Format     formatter.Format // Default: csv
	OutputDir  string           // Default: muzik_export_{epoch}
	NumWorkers int              // Concurrent workers (default 4, at most 8)
	RateLimit  float64          // Collection starts per second (default 5)
	Warn       io.Writer        // Cover download warnings; discarded when nil
}

const (
	defaultWorkers   = 4
	maxWorkers       = 8
	defaultRateLimit = 5.0
	manifestName     = "export_manifest.json"
)

func (o *BulkExportOpts) normalize(now time.Time) {
	if o.Format == "" {
		o.Format = formatter.CSV
	}
	if o.OutputDir == "" {
		o.OutputDir = "muzik_export_" + now.Format("20060102-150405")
	}
	if o.NumWorkers <= 0 {
		o.NumWorkers = defaultWorkers
	}
	o.NumWorkers = min(o.NumWorkers, maxWorkers)
	if o.RateLimit <= 0 {
		o.RateLimit = defaultRateLimit
	}
	if o.Warn == nil {
		o.Warn = io.Discard
	} else {
		o.Warn = &lockedWriter{w: o.Warn}
	}
}

// lockedWriter serializes writes from concurrent workers.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
