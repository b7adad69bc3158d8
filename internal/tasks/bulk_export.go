package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/desertthunder/muzik/internal/formatter"
	"github.com/desertthunder/muzik/internal/shared"
	"golang.org/x/time/rate"
)

type indexedJob struct {
	index int
	job   Job
}

type indexedResult struct {
	index  int
	result ExportResult
}

// BulkExport writes every job's collection into opts.OutputDir using a worker pool.
//
// Results keep the order of jobs. Individual failures are recorded, not returned; the error
// is non-nil only when the output directory or manifest cannot be written, or ctx ends.
func BulkExport(ctx context.Context, prog chan<- ProgressUpdate, jobs []Job, opts BulkExportOpts) (*BulkExportResult, error) {
	started := time.Now().UTC()
	opts.normalize(started)

	if _, err := formatter.ParseFormat(string(opts.Format)); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	total := len(jobs)
	result := &BulkExportResult{
		Format:          opts.Format,
		OutputDirectory: opts.OutputDir,
		Total:           total,
		StartedAt:       started,
		Results:         make([]ExportResult, total),
	}
	sendProgress(prog, prepareUpdate(total, opts.OutputDir))

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	queue := make(chan indexedJob, total)
	results := make(chan indexedResult, total)

	var wg sync.WaitGroup
	for range min(opts.NumWorkers, max(total, 1)) {
		wg.Add(1)
		go exportWorker(ctx, &wg, limiter, queue, results, prog, total, opts)
	}

	for i, job := range jobs {
		queue <- indexedJob{index: i, job: job}
	}
	close(queue)

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		result.Results[res.index] = res.result
		if res.result.Success {
			result.Succeeded++
			sendProgress(prog, completedUpdate(completed, total, res.result))
		} else {
			result.Failed++
			sendProgress(prog, failedUpdate(completed, total, res.result))
		}
	}
	result.FinishedAt = time.Now().UTC()

	if err := ctx.Err(); err != nil {
		return result, err
	}

	manifestPath := filepath.Join(opts.OutputDir, manifestName)
	if err := writeManifest(result, manifestPath); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	sendProgress(prog, manifestUpdate(manifestPath))
	return result, nil
}

// exportWorker drains queue, pacing collection starts through limiter.
func exportWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	limiter *rate.Limiter,
	queue <-chan indexedJob,
	results chan<- indexedResult,
	prog chan<- ProgressUpdate,
	total int,
	opts BulkExportOpts,
) {
	defer wg.Done()

	for j := range queue {
		if err := limiter.Wait(ctx); err != nil {
			results <- indexedResult{j.index, failed(j.job.Name, err)}
			continue
		}
		sendProgress(prog, collectUpdate(j.index+1, total, j.job.Name))
		results <- indexedResult{j.index, exportOne(ctx, j, opts)}
	}
}

// exportOne collects and writes a single job. Output names are the job's position and the slug
// of its name, so jobs sharing a name do not overwrite each other.
func exportOne(ctx context.Context, j indexedJob, opts BulkExportOpts) ExportResult {
	if j.job.Collect == nil {
		return failed(j.job.Name, fmt.Errorf("%w: no collector", shared.ErrInvalidInput))
	}

	c, imageURL, err := j.job.Collect(ctx)
	if err != nil {
		return failed(j.job.Name, fmt.Errorf("collect failed: %w", err))
	}

	name := fmt.Sprintf("%02d-%s", j.index+1, formatter.Slug(j.job.Name))
	if opts.Format != formatter.Markdown {
		name += opts.Format.Extension()
	}
	path := filepath.Join(opts.OutputDir, name)

	files, err := formatter.WriteCollection(ctx, c, opts.Format, path, imageURL, opts.Warn)
	if err != nil {
		return failed(j.job.Name, fmt.Errorf("%s export failed: %w", opts.Format, err))
	}

	return ExportResult{
		Name:    j.job.Name,
		Tracks:  len(c.Tracks),
		Files:   files,
		Success: true,
	}
}

func failed(name string, err error) ExportResult {
	return ExportResult{Name: name, Message: err.Error(), Error: err}
}

func writeManifest(result *BulkExportResult, path string) error {
	data, err := shared.MarshalJSON(result, true)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
