// Package repositories implements SQLite persistence for the replay journal.
//
// Each repository implements models.Repository[T] for one entity type:
//   - [RunRepository] : one row per replay run with its final counters
//   - [PlayEventRepository] : one append-only row per play attempt
//
// [Journal] combines both behind the three calls the replay engine makes.
//
// Sequence numbers provide stable, human-readable ordering (run #3) independent of UUIDs and creation timestamps.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
