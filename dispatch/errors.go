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


package dispatch

import "errors"

var (
	// ErrIndexRequired is returned when a candidate index is not provided.
	ErrIndexRequired = errors.New("candidate index required")

	// ErrStoreRequired is returned when the fact store is nil.
	ErrStoreRequired = errors.New("fact store required")

	// ErrNoStrategies is returned when the dispatcher is configured with an
	// empty strategy set.
	ErrNoStrategies = errors.New("at least one strategy required")
)
