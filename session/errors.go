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


package session

import "errors"

var (
	// ErrExtractorRequired is returned when an intent extractor is not provided.
	ErrExtractorRequired = errors.New("intent extractor required")

	// ErrDispatcherRequired is returned when a strategy dispatcher is not provided.
	ErrDispatcherRequired = errors.New("strategy dispatcher required")

	// ErrRankerRequired is returned when a ranker is not provided.
	ErrRankerRequired = errors.New("ranker required")

	// ErrSessionClosed is returned when a message arrives after Close.
	ErrSessionClosed = errors.New("session closed")

	// ErrSessionNotFound is returned by the manager for unknown session ids.
	ErrSessionNotFound = errors.New("session not found")

	// ErrNoUser is returned when a user-scoped operation runs on an
	// anonymous session.
	ErrNoUser = errors.New("session has no user id")
)
