package ai

import "errors"

var (
	// ErrNonConformantReply indicates the model reply failed schema validation
	// after the stricter-reminder retry. The update returned alongside it is
	// the best-effort partial parse.
	ErrNonConformantReply = errors.New("model reply does not conform to the extraction schema")

	// ErrEmptyReply indicates the model returned no choices.
	ErrEmptyReply = errors.New("model returned an empty reply")
)
