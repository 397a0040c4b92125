package core

import (
	"encoding/binary"
	"sort"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// FactKind classifies a single attribute of the user's situation.
type FactKind string

const (
	FactPracticeArea       FactKind = "practice_area"
	FactLocation           FactKind = "location"
	FactNeighborhood       FactKind = "neighborhood"
	FactBudgetTier         FactKind = "budget_tier"
	FactUrgency            FactKind = "urgency"
	FactLanguage           FactKind = "language"
	FactCommunicationStyle FactKind = "communication_style"
	FactCulturalBackground FactKind = "cultural_background"
	FactSpecialNeed        FactKind = "special_need"
)

// FactKinds lists every valid fact kind in a stable order.
var FactKinds = []FactKind{
	FactPracticeArea,
	FactLocation,
	FactNeighborhood,
	FactBudgetTier,
	FactUrgency,
	FactLanguage,
	FactCommunicationStyle,
	FactCulturalBackground,
	FactSpecialNeed,
}

// Valid reports whether the kind is one of the enumerated fact kinds.
func (k FactKind) Valid() bool {
	for _, known := range FactKinds {
		if k == known {
			return true
		}
	}
	return false
}

// Multi reports whether the kind accumulates a set of values rather than
// keeping a single value. practice_area, language and special_need facts
// accumulate; every other kind overwrites.
func (k FactKind) Multi() bool {
	switch k {
	case FactPracticeArea, FactLanguage, FactSpecialNeed:
		return true
	}
	return false
}

// Fact is one normalized attribute extracted from user text,
// e.g. urgency=high or neighborhood=tarzana.
type Fact struct {
	Kind       FactKind
	Value      string
	Confidence float64 // 0-1, how sure the extractor is
	SourceTurn int     // turn counter value when the fact was extracted
}

// NormalValue returns the fact value in canonical form for merge comparisons.
func (f Fact) NormalValue() string {
	return strings.ToLower(strings.TrimSpace(f.Value))
}

// supersedes reports whether f should replace old when both carry the same
// kind (single-valued) or the same normalized value (list-valued).
// Higher confidence wins; on equal confidence the later turn wins; on equal
// both the lexicographically larger value wins so merging stays commutative.
func (f Fact) supersedes(old Fact) bool {
	if f.Confidence != old.Confidence {
		return f.Confidence > old.Confidence
	}
	if f.SourceTurn != old.SourceTurn {
		return f.SourceTurn > old.SourceTurn
	}
	return f.Value > old.Value
}

// FactUpdate is the normalized, partial update produced by one extraction.
// Applying an update is idempotent: the same update applied twice yields the
// same store as applying it once.
type FactUpdate struct {
	Facts     []Fact
	Remainder string // free text the extractor could not map to a kind
	Heuristic bool   // true when produced by keyword fallback, not the model
}

// Empty reports whether the update carries neither facts nor remainder text.
func (u *FactUpdate) Empty() bool {
	return u == nil || (len(u.Facts) == 0 && u.Remainder == "")
}

// FactStore holds everything understood about the current session so far.
// It is exclusively owned by one session and mutated only through Apply.
type FactStore struct {
	facts     map[FactKind][]Fact
	remainder string
	turn      int
}

// NewFactStore creates an empty fact store.
func NewFactStore() *FactStore {
	return &FactStore{facts: make(map[FactKind][]Fact)}
}

// Turn returns the current turn counter.
func (s *FactStore) Turn() int {
	return s.turn
}

// AdvanceTurn increments and returns the turn counter.
func (s *FactStore) AdvanceTurn() int {
	s.turn++
	return s.turn
}

// Remainder returns the free-text remainder of the most recent turn.
func (s *FactStore) Remainder() string {
	return s.remainder
}

// Apply merges a fact update into the store. Invalid facts are skipped.
// Single-valued kinds keep the superseding fact; list-valued kinds
// accumulate a set keyed by normalized value.
func (s *FactStore) Apply(update *FactUpdate) {
	if update == nil {
		return
	}
	for _, fact := range update.Facts {
		s.merge(fact)
	}
	if update.Remainder != "" {
		s.remainder = update.Remainder
	}
}

func (s *FactStore) merge(fact Fact) {
	if ValidateFact(&fact) != nil {
		return
	}
	existing := s.facts[fact.Kind]

	if !fact.Kind.Multi() {
		if len(existing) == 0 || fact.supersedes(existing[0]) {
			s.facts[fact.Kind] = []Fact{fact}
		}
		return
	}

	// List-valued: union keyed by normalized value.
	for i, old := range existing {
		if old.NormalValue() == fact.NormalValue() {
			if fact.supersedes(old) {
				existing[i] = fact
			}
			return
		}
	}
	s.facts[fact.Kind] = append(existing, fact)
}

// Get returns the single highest-ranked fact for a kind.
func (s *FactStore) Get(kind FactKind) (Fact, bool) {
	facts := s.facts[kind]
	if len(facts) == 0 {
		return Fact{}, false
	}
	best := facts[0]
	for _, f := range facts[1:] {
		if f.supersedes(best) {
			best = f
		}
	}
	return best, true
}

// GetAll returns every fact stored for a kind, ordered by normalized value
// for determinism.
func (s *FactStore) GetAll(kind FactKind) []Fact {
	facts := s.facts[kind]
	out := make([]Fact, len(facts))
	copy(out, facts)
	sort.Slice(out, func(i, j int) bool {
		return out[i].NormalValue() < out[j].NormalValue()
	})
	return out
}

// Values returns the stored values for a kind, ordered deterministically.
func (s *FactStore) Values(kind FactKind) []string {
	facts := s.GetAll(kind)
	values := make([]string, len(facts))
	for i, f := range facts {
		values[i] = f.Value
	}
	return values
}

// Has reports whether at least one fact exists for the kind.
func (s *FactStore) Has(kind FactKind) bool {
	return len(s.facts[kind]) > 0
}

// Empty reports whether the store holds no facts at all.
func (s *FactStore) Empty() bool {
	for _, facts := range s.facts {
		if len(facts) > 0 {
			return false
		}
	}
	return true
}

// Snapshot returns every stored fact in a stable order, suitable for
// persistence or for building an extraction prompt.
func (s *FactStore) Snapshot() []Fact {
	out := make([]Fact, 0, len(s.facts))
	for _, kind := range FactKinds {
		out = append(out, s.GetAll(kind)...)
	}
	return out
}

// Clone returns an independent copy of the store. The session hands clones
// to pipeline stages so in-flight cycles never observe later mutation.
func (s *FactStore) Clone() *FactStore {
	clone := NewFactStore()
	clone.remainder = s.remainder
	clone.turn = s.turn
	for kind, facts := range s.facts {
		copied := make([]Fact, len(facts))
		copy(copied, facts)
		clone.facts[kind] = copied
	}
	return clone
}

// Restore rebuilds store contents from a persisted snapshot.
func (s *FactStore) Restore(facts []Fact) {
	for _, fact := range facts {
		s.merge(fact)
		if fact.SourceTurn > s.turn {
			s.turn = fact.SourceTurn
		}
	}
}

// Dimension is one scored axis of fit between a user and a professional.
type Dimension string

const (
	DimPracticeArea       Dimension = "practice_area"
	DimLocation           Dimension = "location"
	DimBudget             Dimension = "budget"
	DimLanguage           Dimension = "language"
	DimAvailability       Dimension = "availability"
	DimCulturalFit        Dimension = "cultural_fit"
	DimCommunicationStyle Dimension = "communication_style"
	DimRating             Dimension = "rating"
	DimResponseTime       Dimension = "response_time"
)

// Dimensions lists every scoring dimension in a stable order.
var Dimensions = []Dimension{
	DimPracticeArea,
	DimLocation,
	DimBudget,
	DimLanguage,
	DimAvailability,
	DimCulturalFit,
	DimCommunicationStyle,
	DimRating,
	DimResponseTime,
}

// Valid reports whether the dimension is one of the enumerated dimensions.
func (d Dimension) Valid() bool {
	for _, known := range Dimensions {
		if d == known {
			return true
		}
	}
	return false
}

// Candidate is one professional as surfaced by a single search strategy.
// Raw scores are strategy-local and not comparable across strategies.
type Candidate struct {
	ID            ID
	Strategy      string
	RawScore      float64
	MatchedFields []FactKind
}

// MergedResult is a professional after fan-in: merged, scored, explained.
type MergedResult struct {
	CandidateID     ID
	Profile         *Profile
	DimensionScores map[Dimension]float64 // populated dimensions only, 0-1
	CompositeScore  float64               // weighted sum over populated dims, 0-1
	Confidence      float64               // composite scaled by dimension coverage
	Strategies      []string              // contributing strategies, sorted
	MatchReasons    []string              // deterministic, ordered explanations
	Narrative       string                // optional model-written supplement
}

// Profile is the professional record behind a candidate id.
type Profile struct {
	Id                  ID
	Name                string
	PracticeAreas       []string
	Languages           []string
	Neighborhood        string
	City                string
	Lat                 float64
	Lng                 float64
	BudgetTiers         []string // tiers the professional accepts
	PaymentPlans        bool
	Rating              float64 // 0-5 average review rating
	ReviewCount         int
	ResponseTimeHours   float64
	AvailableNow        bool // accepts urgent matters
	CulturalBackgrounds []string
	CommunicationStyle  string
	Bio                 string
	InsertedAt          time.Time
	UpdatedAt           time.Time
}

// ContentKey returns the string hashed to produce the profile's ID.
func (p *Profile) ContentKey() string {
	return "(" + p.Name + "," + p.City + "," + p.Neighborhood + ")"
}
