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
	"log/slog"

	"github.com/barmatch/barmatch/ai"
)

// Provider implements ai.Provider using OpenAI-compatible services.
// It manages fact extractor and narrator instances.
type Provider struct {
	config    *ai.Config
	extractor *FactExtractor
	narrator  *Narrator
	logger    *slog.Logger
}

// NewProvider creates a new AI provider with OpenAI-compatible services.
// The config is validated and normalized before use.
//
// Returns ai.Provider interface (not *Provider) to enforce abstraction
// and prevent coupling to OpenAI-specific implementation details.
func NewProvider(config *ai.Config) (ai.Provider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	extractor, err := newFactExtractor(config)
	if err != nil {
		return nil, err
	}

	narrator, err := newNarrator(config)
	if err != nil {
		return nil, err
	}

	return &Provider{
		config:    config,
		extractor: extractor,
		narrator:  narrator,
		logger:    slog.Default().With("component", "openai-provider"),
	}, nil
}

// FactExtractor returns the intent extraction service.
func (p *Provider) FactExtractor() ai.FactExtractor {
	return p.extractor
}

// Narrator returns the narrative personalization service.
func (p *Provider) Narrator() ai.Narrator {
	return p.narrator
}

// Close releases resources held by the provider.
// Currently a no-op as the underlying clients don't require explicit cleanup.
func (p *Provider) Close() error {
	p.logger.Debug("closing OpenAI provider")
	return nil
}
