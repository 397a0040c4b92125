// Package dispatch fans a fact store out across search strategies.
//
// Each Strategy inspects the accumulated facts, decides whether it applies,
// and issues its own index query. The Dispatcher runs every applicable
// strategy concurrently on a shared worker pool with per-strategy timeouts,
// then fans the hits back in keyed by strategy name. Failures are isolated:
// a timed-out or panicking strategy lands in Result.Failed while the rest of
// the dispatch proceeds.
package dispatch
