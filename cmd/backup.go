package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/muzik/internal/formatter"
	"github.com/desertthunder/muzik/internal/menu"
	"github.com/desertthunder/muzik/internal/tasks"
	"github.com/urfave/cli/v3"
)

// backupJobs builds one export job for the saved tracks and one per local playlist.
//
// The library and client are opened here because the jobs run on worker goroutines.
func (r *Runner) backupJobs() ([]tasks.Job, error) {
	_, playlists, err := r.Library()
	if err != nil {
		return nil, err
	}
	all, err := playlists.List(nil)
	if err != nil {
		return nil, err
	}
	r.Client()

	jobs := []tasks.Job{{
		Name: "Saved tracks",
		Collect: func(context.Context) (*formatter.Collection, string, error) {
			c, err := r.libraryCollection()
			return c, "", err
		},
	}}
	for _, p := range all {
		jobs = append(jobs, tasks.Job{
			Name: p.Name(),
			Collect: func(ctx context.Context) (*formatter.Collection, string, error) {
				c, err := r.localPlaylistCollection(ctx, p)
				return c, "", err
			},
		})
	}
	return jobs, nil
}

// backup exports the whole library into dir, printing progress as jobs finish.
func (r *Runner) backup(ctx context.Context, format formatter.Format, dir string, workers int) (*tasks.BulkExportResult, error) {
	jobs, err := r.backupJobs()
	if err != nil {
		return nil, err
	}

	prog := make(chan tasks.ProgressUpdate, 2*len(jobs)+2)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for u := range prog {
			r.logger.Debug("backup progress", "phase", u.Phase, "step", u.Step, "total", u.Total)
			r.writePlain("%s\n", u.Message)
		}
	}()

	result, err := tasks.BulkExport(ctx, prog, jobs, tasks.BulkExportOpts{
		Format:     format,
		OutputDir:  dir,
		NumWorkers: workers,
		RateLimit:  float64(r.config.Catalog.RequestsPerSecond),
	})
	close(prog)
	<-done

	if result != nil {
		r.logger.Info("backup complete", "dir", result.OutputDirectory, "succeeded", result.Succeeded, "failed", result.Failed)
	}
	return result, err
}

// LibraryExport writes saved tracks and every local playlist into one directory.
func (r *Runner) LibraryExport(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	result, err := r.backup(ctx, format, cmd.String("dir"), int(cmd.Int("workers")))
	if err != nil {
		return err
	}

	if result.Failed > 0 {
		r.writePlain("%s\n", r.palette.Warn(fmt.Sprintf("%d of %d exports failed", result.Failed, result.Total)))
	}
	return r.writePlain("✓ Exported %d collections to %s\n", result.Succeeded, result.OutputDirectory)
}

// backupMenu asks for a format and backs up the library into a new directory.
func (r *Runner) backupMenu(ctx context.Context) error {
	m := r.newMenu("Back up library")
	for _, f := range formatter.Formats {
		m.AddEntry(formatLabels[f], func(ctx context.Context) error {
			result, err := r.backup(ctx, f, "", 0)
			if err != nil {
				return err
			}
			m.RequestStop()
			if result.Failed > 0 {
				return r.warn("Exported %d of %d collections to %s", result.Succeeded, result.Total, result.OutputDirectory)
			}
			return r.report("Exported %d collections to %s", result.Succeeded, result.OutputDirectory)
		}, menu.WithHint(f.Extension()))
	}
	m.AddSeparator()
	m.AddBack("Back")
	return m.Run(ctx)
}
