// Package session runs the conversational loop: user messages in, streamed
// match results out.
//
// Each Session owns one fact store and runs at most one match cycle
// (extract, apply, dispatch, rank, narrate) at a time. A newer message
// cancels the running cycle; superseded cycles never emit, though the facts
// they merged before cancellation stand. Events carry the turn id of the
// message that produced them, so clients can discard stragglers on their
// side too.
//
// The Manager creates sessions, restores per-user fact snapshots, and sweeps
// sessions whose clients stopped sending heartbeats.
package session
