// Copyright 2025 Barmatch Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/barmatch/barmatch/ai"
	"github.com/barmatch/barmatch/core"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// FactExtractor implements ai.FactExtractor using OpenAI-compatible chat APIs.
type FactExtractor struct {
	client        llms.Model
	minConfidence float64
	logger        *slog.Logger
}

// replyFact is an internal type used for JSON unmarshaling.
// It matches the structure expected from the model.
type replyFact struct {
	Kind       string  `json:"kind"`
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
}

// factReply is the wrapper structure for the model's JSON response.
type factReply struct {
	Facts     []replyFact `json:"facts"`
	Remainder string      `json:"remainder"`
}

// newFactExtractor is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newFactExtractor(config *ai.Config) (*FactExtractor, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Use "none" as token for local OpenAI-compatible services that don't require authentication
	client, err := openai.New(
		openai.WithBaseURL(config.ExtractorHost),
		openai.WithToken("none"),
		openai.WithModel(config.ExtractorModel),
	)
	if err != nil {
		return nil, err
	}

	return &FactExtractor{
		client:        client,
		minConfidence: config.MinConfidence,
		logger:        slog.Default().With("component", "openai-extractor"),
	}, nil
}

// NewFactExtractor creates a new fact extractor using the provided configuration.
//
// Returns ai.FactExtractor interface to enforce abstraction.
func NewFactExtractor(config *ai.Config) (ai.FactExtractor, error) {
	return newFactExtractor(config)
}

// ExtractFacts extracts structured facts from one user utterance.
// A reply that fails to parse is retried once with a stricter reminder; if
// the retry also fails, the best-effort partial update is returned together
// with ai.ErrNonConformantReply. Transport errors are returned as-is so the
// caller can apply its own retry budget.
func (e *FactExtractor) ExtractFacts(ctx context.Context, req ai.ExtractionRequest) (*core.FactUpdate, error) {
	text := scrubString(req.Text)

	systemPrompt := buildExtractionPrompt() + "\n\n" + buildKnownFacts(req.KnownFacts)
	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{
				llms.TextPart(systemPrompt),
			},
		},
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(text),
			},
		},
	}

	// First attempt with the normal prompt; one retry with a stricter
	// reminder when the reply fails schema validation.
	var parsed factReply
	var parseErr error
	for attempt := 0; attempt < 2; attempt++ {
		if attempt == 1 {
			content = append(content, llms.MessageContent{
				Role: llms.ChatMessageTypeSystem,
				Parts: []llms.ContentPart{
					llms.TextPart(strictReminder),
				},
			})
		}

		response, err := e.client.GenerateContent(ctx, content, llms.WithTemperature(0.0), llms.WithJSONMode())
		if err != nil {
			e.logger.Error("failed to generate content", "attempt", attempt+1, "err", err)
			return nil, err
		}

		if len(response.Choices) < 1 {
			e.logger.Warn("no choices returned from model", "attempt", attempt+1)
			return nil, ai.ErrEmptyReply
		}

		responseText := repairFactReply(response.Choices[0].Content)

		if err := json.Unmarshal([]byte(responseText), &parsed); err != nil {
			parseErr = err
			e.logger.Warn("error parsing extractor response",
				"attempt", attempt+1,
				"response", responseText,
				"err", err)
			continue
		}

		parseErr = nil
		break
	}

	update := e.convert(&parsed, req.Turn)
	if parseErr != nil {
		e.logger.Error("extractor reply non-conformant after strict retry", "err", parseErr)
		return update, fmt.Errorf("%w: %w", ai.ErrNonConformantReply, parseErr)
	}

	e.logger.Debug("extracted facts",
		"total", len(parsed.Facts),
		"kept", len(update.Facts))
	return update, nil
}

// convert filters and normalizes the parsed reply into a FactUpdate.
// Facts with unknown kinds or below the confidence threshold are dropped.
func (e *FactExtractor) convert(reply *factReply, turn int) *core.FactUpdate {
	update := &core.FactUpdate{
		Facts:     make([]core.Fact, 0, len(reply.Facts)),
		Remainder: scrubString(reply.Remainder),
	}
	for _, rf := range reply.Facts {
		kind := core.FactKind(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(rf.Kind)), " ", "_"))
		if !kind.Valid() {
			e.logger.Debug("dropping fact with unknown kind", "kind", rf.Kind)
			continue
		}
		confidence := rf.Confidence
		if confidence > 1 {
			confidence = 1
		}
		if confidence < e.minConfidence {
			continue
		}
		fact := core.Fact{
			Kind:       kind,
			Value:      strings.ToLower(strings.TrimSpace(rf.Value)),
			Confidence: confidence,
			SourceTurn: turn,
		}
		if core.ValidateFact(&fact) != nil {
			continue
		}
		update.Facts = append(update.Facts, fact)
	}
	return update
}
