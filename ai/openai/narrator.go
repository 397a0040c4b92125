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
	"log/slog"
	"strings"

	"github.com/barmatch/barmatch/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Narrator implements ai.Narrator using OpenAI-compatible chat APIs with
// token streaming.
type Narrator struct {
	client llms.Model
	logger *slog.Logger
}

// newNarrator is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newNarrator(config *ai.Config) (*Narrator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Use "none" as token for local OpenAI-compatible services that don't require authentication
	client, err := openai.New(
		openai.WithBaseURL(config.NarratorHost),
		openai.WithToken("none"),
		openai.WithModel(config.NarratorModel),
	)
	if err != nil {
		return nil, err
	}

	return &Narrator{
		client: client,
		logger: slog.Default().With("component", "openai-narrator"),
	}, nil
}

// NewNarrator creates a new narrator using the provided configuration.
//
// Returns ai.Narrator interface to enforce abstraction.
func NewNarrator(config *ai.Config) (ai.Narrator, error) {
	return newNarrator(config)
}

// Narrate generates narrative text for the result set, streaming fragments
// through onFragment as they arrive.
func (n *Narrator) Narrate(ctx context.Context, req ai.NarrationRequest, onFragment func(fragment string)) (string, error) {
	prompt := buildNarrationPrompt(req)

	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(prompt),
			},
		},
	}

	var full strings.Builder
	opts := []llms.CallOption{
		llms.WithTemperature(0.7),
		llms.WithStreamingFunc(func(_ context.Context, chunk []byte) error {
			full.Write(chunk)
			if onFragment != nil && len(chunk) > 0 {
				onFragment(string(chunk))
			}
			return nil
		}),
	}

	response, err := n.client.GenerateContent(ctx, content, opts...)
	if err != nil {
		n.logger.Error("failed to generate narrative", "err", err)
		return "", err
	}

	// Prefer the streamed accumulation; fall back to the choice content for
	// backends that ignore the streaming option.
	text := full.String()
	if text == "" && len(response.Choices) > 0 {
		text = response.Choices[0].Content
		if onFragment != nil && text != "" {
			onFragment(text)
		}
	}
	if text == "" {
		return "", ai.ErrEmptyReply
	}
	return text, nil
}
