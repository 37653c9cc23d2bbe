// Package records reads play-count exports into [models.PlayTargetRecord] values.
//
// The export is a comma-separated file whose first line names the columns
// (Play Count, Track, Artist, Album, Spotify URI). Fields containing commas are
// wrapped in double quotes. Parsing never fails on a bad row: a row whose count
// is not a positive integer is kept and flagged [models.PlayTargetRecord.Skip]
// so later stages can still count it.
//
// The package also provides the transforms behind `playsync prepare`: sorting
// by play count, capping or proportionally scaling counts, and truncating to the
// top N records.
package records
