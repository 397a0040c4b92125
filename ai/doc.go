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


// Package ai provides abstractions for the language-understanding backend.
//
// This package defines interfaces for the AI operations the matching core
// consumes: turning free-form user text into structured facts, and writing
// personalized narrative text for a result set. It follows the dependency
// inversion principle, allowing the core domain and business logic to depend
// on abstractions rather than concrete implementations.
//
// # Interfaces
//
//   - FactExtractor: maps an utterance plus known facts to a FactUpdate
//   - Narrator: streams a short personalized explanation of a result set
//   - Provider: aggregates both services for convenient initialization
//
// # Implementation Packages
//
//   - ai/openai: production implementation using OpenAI-compatible APIs
//   - ai/mock: test doubles for unit testing without external dependencies
//
// Public constructors in ai/openai return interface types to enforce
// abstraction. Mock constructors return concrete types so tests can inject
// behavior and assert call counts.
package ai
