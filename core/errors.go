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


package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidFact indicates a Fact failed validation.
	ErrInvalidFact = errors.New("invalid fact")

	// ErrInvalidFactKind indicates an unknown FactKind value.
	ErrInvalidFactKind = errors.New("invalid fact kind")

	// ErrEmptyFactValue indicates the fact Value field is empty.
	ErrEmptyFactValue = errors.New("fact value cannot be empty")

	// ErrInvalidConfidence indicates a confidence outside [0,1].
	ErrInvalidConfidence = errors.New("confidence must be between 0 and 1")

	// ErrInvalidProfile indicates a Profile failed validation.
	ErrInvalidProfile = errors.New("invalid profile")

	// ErrEmptyProfileName indicates the profile Name field is empty.
	ErrEmptyProfileName = errors.New("profile name cannot be empty")

	// ErrInvalidRating indicates a rating outside [0,5].
	ErrInvalidRating = errors.New("rating must be between 0 and 5")
)
