// Package tasks replays play counts against the local player with real-time progress reporting.
//
// # Core Operations
//
// [ReplayEngine] defines two operations:
//
//  1. [ReplayEngine.Run] : replay every record
//     - Presents a Stop/Continue/Skip checkpoint before each record
//     - Resolves the record against the library once
//     - Registers the requested number of plays through the [Simulator]
//     - Presents a continue checkpoint after a record that earned plays, unless it was the last
//
//  2. [ReplayEngine.DryRun] : resolve every record without playing anything
//
// # Failure Policy
//
// A failed first play abandons the record and counts it as not found. Later failures are retried
// after a backoff while they are recoverable and fewer than [Policy.MaxConsecutiveFailures] occur
// in a row; otherwise the remaining plays are abandoned and the plays already registered stand.
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking.
//
// # Journal
//
// The optional [Journal] interface records runs and attempts (repositories.Journal).
// Journal errors are logged and ignored so they never interrupt a run.
package tasks
