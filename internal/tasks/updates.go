package tasks

import "fmt"

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or menu layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data
}

// Phase identifies the stage an operation is in.
type Phase int

const (
	Prepare Phase = iota
	Collect
	Write
	Manifest
)

func (p Phase) String() string {
	switch p {
	case Prepare:
		return "prepare"
	case Collect:
		return "collect"
	case Write:
		return "write"
	case Manifest:
		return "manifest"
	default:
		return ""
	}
}

// sendProgress delivers update without blocking.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

func prepareUpdate(total int, dir string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Prepare,
		Step:    0,
		Total:   total,
		Message: fmt.Sprintf("Exporting %d collections to %s...", total, dir),
	}
}

func collectUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Collect,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Collecting: %s...", step, total, name),
	}
}

func completedUpdate(step, total int, res ExportResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Write,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d tracks, %d files)", step, total, res.Name, res.Tracks, len(res.Files)),
		Data:    res,
	}
}

func failedUpdate(step, total int, res ExportResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Write,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, res.Name, res.Error),
		Data:    res,
	}
}

func manifestUpdate(path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Manifest,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Manifest written: %s", path),
	}
}
