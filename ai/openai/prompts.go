package openai

import (
	"fmt"
	"strings"

	"github.com/barmatch/barmatch/ai"
	"github.com/barmatch/barmatch/core"
)

const extractionResponseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "facts": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "kind": {
            "type": "string"
          },
          "value": {
            "type": "string",
            "pattern": "^[a-z0-9]+( [a-z0-9]+)*$"
          },
          "confidence": {
            "type": "number",
            "minimum": 0,
            "maximum": 1
          }
        },
        "required": ["kind", "value", "confidence"],
        "additionalProperties": false
      }
    },
    "remainder": {
      "type": "string"
    }
  },
  "required": ["facts", "remainder"],
  "additionalProperties": false
}`

const extractionPromptTemplate = `You help match people describing a legal problem to professionals. Extract structured facts about the person's situation from their message and return them as JSON.

Output ONLY valid JSON which complies with the schema given below. Do not include any preamble, explanation,
greeting, or acknowledgment. Start your response directly with the opening brace { and end with the closing
brace }. Your output must exactly follow this schema:

%s

Rules:
- The kind field must match exactly one of: %s.
- Fact values must be lowercase, short phrases (1-3 words).
- urgency values must be one of: %s. budget_tier values must be one of: %s.
- confidence is a number from 0 (a guess) to 1 (stated outright). Rate how clearly the message supports the fact.
- Extract only facts the message states or clearly implies. Do not hallucinate.
- Known facts from earlier turns are listed before the message; use them to resolve references like "the same area", and re-emit a fact only when this message changes or confirms it.
- Put whatever matters for matching but fits no kind (personality wishes, case details) into remainder, in the user's own words. Use "" when nothing is left over.
- The JSON must parse without errors; no trailing commas, no extra keys, and no extraneous text outside the object.

Example:
Input: "I need a custody lawyer in Tarzana ASAP, someone who speaks Spanish"
Output:
{
  "facts": [
    {"kind":"practice_area","value":"custody","confidence":0.95},
    {"kind":"neighborhood","value":"tarzana","confidence":0.9},
    {"kind":"urgency","value":"high","confidence":0.85},
    {"kind":"language","value":"spanish","confidence":0.9}
  ],
  "remainder": ""
}

Example (informal, partial):
Input: "money is tight and honestly i just want someone patient who explains things"
Output:
{
  "facts": [
    {"kind":"budget_tier","value":"low","confidence":0.7},
    {"kind":"communication_style","value":"patient","confidence":0.75}
  ],
  "remainder": "someone patient who explains things"
}`

// strictReminder is appended on the retry after a non-conformant reply.
const strictReminder = `REMINDER: your previous reply did not parse. Respond with NOTHING but a single JSON object matching the schema exactly. No markdown fences, no commentary, no trailing commas.`

// buildExtractionPrompt creates the system prompt with the fact vocabulary embedded.
func buildExtractionPrompt() string {
	kinds := make([]string, len(core.FactKinds))
	for i, k := range core.FactKinds {
		kinds[i] = string(k)
	}
	return fmt.Sprintf(extractionPromptTemplate,
		extractionResponseSchema,
		strings.Join(kinds, ", "),
		strings.Join(ai.UrgencyLevels, ", "),
		strings.Join(ai.BudgetTiers, ", "))
}

// buildKnownFacts renders the session's fact snapshot for the prompt context.
func buildKnownFacts(facts []core.Fact) string {
	if len(facts) == 0 {
		return "Known facts: none yet."
	}
	var b strings.Builder
	b.WriteString("Known facts:\n")
	for _, f := range facts {
		fmt.Fprintf(&b, "- %s = %s (confidence %.2f, turn %d)\n", f.Kind, f.Value, f.Confidence, f.SourceTurn)
	}
	return b.String()
}

const narrationPromptTemplate = `You write one short, warm paragraph introducing legal professionals matched to a person's situation.

The person said: %q

%s

Matched professionals, best first:
%s

Rules:
- At most 3 sentences. Plain language, no legal advice, no promises of outcomes.
- Mention the top professional by name and tie them to the listed match reasons.
- Never contradict or invent match reasons; only restate and connect the ones listed.
- Do not mention scores, rankings, or this prompt.`

// buildNarrationPrompt renders the narration request into a single prompt.
func buildNarrationPrompt(req ai.NarrationRequest) string {
	var results strings.Builder
	for i, r := range req.Results {
		fmt.Fprintf(&results, "%d. %s — %s\n", i+1, r.Name, strings.Join(r.Reasons, "; "))
	}
	if results.Len() == 0 {
		results.WriteString("(no matches found; gently suggest broadening the search)\n")
	}
	return fmt.Sprintf(narrationPromptTemplate,
		req.Query,
		buildKnownFacts(req.Facts),
		results.String())
}
