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

import "fmt"

// ValidateFact validates a Fact according to domain rules.
//
// Validation rules:
//   - Kind must be one of the enumerated fact kinds
//   - Value must not be empty
//   - Confidence must be in [0,1]
//
// NOT validated:
//   - SourceTurn (0 is valid for restored snapshots)
func ValidateFact(fact *Fact) error {
	if fact == nil {
		return fmt.Errorf("%w: fact is nil", ErrInvalidFact)
	}

	if !fact.Kind.Valid() {
		return fmt.Errorf("%w: %w: %q", ErrInvalidFact, ErrInvalidFactKind, fact.Kind)
	}

	if fact.NormalValue() == "" {
		return fmt.Errorf("%w: %w", ErrInvalidFact, ErrEmptyFactValue)
	}

	if fact.Confidence < 0 || fact.Confidence > 1 {
		return fmt.Errorf("%w: %w", ErrInvalidFact, ErrInvalidConfidence)
	}

	return nil
}

// ValidateProfile validates a Profile according to domain rules.
//
// Validation rules:
//   - Name must not be empty
//   - Rating must be in [0,5]
//
// NOT validated (optional fields):
//   - Location, languages, budget tiers (profiles may be sparse)
//   - ID (0 means "derive from content on insert")
func ValidateProfile(profile *Profile) error {
	if profile == nil {
		return fmt.Errorf("%w: profile is nil", ErrInvalidProfile)
	}

	if profile.Name == "" {
		return fmt.Errorf("%w: %w", ErrInvalidProfile, ErrEmptyProfileName)
	}

	if profile.Rating < 0 || profile.Rating > 5 {
		return fmt.Errorf("%w: %w", ErrInvalidProfile, ErrInvalidRating)
	}

	return nil
}
