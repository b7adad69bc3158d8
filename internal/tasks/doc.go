// Package tasks runs long library operations with non-blocking progress reporting.
//
// # Bulk Export
//
// [BulkExport] writes many collections at once through a small worker pool:
//
//  1. Each [Job] gathers its tracks (local database reads, catalog lookups)
//  2. Collection starts are paced by a shared rate limiter so catalog lookups stay
//     within the service's request budget
//  3. Each collection is written with [formatter.WriteCollection]
//  4. A manifest (export_manifest.json) summarizing every job is written last
//
// A failing job is recorded in the result and does not stop the others.
//
// # Progress Reporting
//
// Operations accept an optional chan<- [ProgressUpdate]. Sends use select with default,
// so a slow or absent reader never blocks the work. Callers close the channel after
// the operation returns.
package tasks
