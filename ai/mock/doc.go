// Package mock provides test doubles for the ai package interfaces.
//
// The mocks default to cheap deterministic behavior (keyword extraction,
// canned narration) and expose function fields for injecting custom behavior
// plus call counters for assertions.
package mock
