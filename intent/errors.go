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


package intent

import "errors"

var (
	// ErrProviderRequired is returned when an AI provider is not provided.
	ErrProviderRequired = errors.New("AI provider required")

	// ErrEmptyInput is returned when the user text is empty.
	ErrEmptyInput = errors.New("user text cannot be empty")

	// ErrStoreRequired is returned when the fact store is nil.
	ErrStoreRequired = errors.New("fact store required")

	// ErrExtractionDegraded indicates the model could not be used and the
	// returned update came from heuristic keyword matching. The turn is still
	// usable; callers should log and continue.
	ErrExtractionDegraded = errors.New("extraction degraded to heuristics")
)
