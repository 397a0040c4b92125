package session

import "github.com/barmatch/barmatch/core"

// EventType enumerates the outbound event kinds a session emits.
type EventType string

const (
	// EventTextFragment carries one chunk of streamed narrative text.
	EventTextFragment EventType = "text_fragment"
	// EventTextComplete marks the end of the narrative for a turn.
	EventTextComplete EventType = "text_complete"
	// EventResultSet carries the full, atomic result list for a turn.
	EventResultSet EventType = "result_set"
	// EventFollowups carries suggested next questions.
	EventFollowups EventType = "followup_suggestions"
	// EventError reports a per-turn failure; the session stays open.
	EventError EventType = "error"
)

// Event is one outbound message to the client. TurnID correlates the event
// with the user message that produced it.
type Event struct {
	Type        EventType
	TurnID      string
	Text        string
	Code        string
	Results     []*core.MergedResult
	Suggestions []string
}

// State is the lifecycle state of a session.
type State string

const (
	StateConnected       State = "connected"
	StateAwaitingInput   State = "awaiting_input"
	StateProcessing      State = "processing"
	StateStreamingResult State = "streaming_result"
	StateClosed          State = "closed"
)

// Error codes attached to EventError events.
const (
	CodeEmptyMessage    = "empty_message"
	CodeInternalFailure = "internal_failure"
)
