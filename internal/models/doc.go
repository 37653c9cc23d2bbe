// Package models defines the domain entities of a play-count replay.
//
// The package contains two categories of types:
//
// 1. Value types passed between the replay stages:
//   - [PlayTargetRecord] : One parsed row of the play-count export
//   - [LibraryTrack] : A track owned by the local player, referenced by its stable ID
//   - [MatchCandidate] : A resolved track plus how it matched ([MatchKind])
//   - [PlayAttemptResult] : Outcome of one simulated play
//   - [RunStatistics] : In-memory counters for a single run
//   - [Decision] : The operator's answer at a checkpoint
//
// 2. Persistent entities for the optional replay journal:
//   - [ReplayRun] : One invocation of the replay command and its final counters
//   - [PlayEvent] : One play attempt made during a run
//
// Persistent entities implement the Model interface; Repository[T] defines the CRUD operations over them.
package models
