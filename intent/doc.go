// Package intent turns raw conversational text into structured fact updates.
//
// The Extractor wraps the AI provider's fact-extraction service with a
// transport retry budget and a keyword-heuristic fallback, so one flaky or
// unreachable backend never drops a user's turn. Extraction reads the fact
// store but never mutates it; the session applies the returned update.
package intent
