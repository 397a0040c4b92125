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


package memory

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/barmatch/barmatch/core"
	"github.com/barmatch/barmatch/index"
)

const (
	// DefaultRadiusMiles bounds geographic matches when the query does not
	// carry an explicit radius.
	DefaultRadiusMiles = 50.0

	defaultLimit = 20
)

// Memory is an in-process implementation of index.Index over a profile set.
// It supports the structured, free-text and neighborhood-scoped query shapes
// the matching core issues. Safe for concurrent use.
type Memory struct {
	mu       sync.RWMutex
	profiles map[core.ID]*core.Profile
	logger   *slog.Logger
}

// Option configures a Memory index.
type Option func(*Memory) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(m *Memory) error {
		if logger == nil {
			logger = slog.Default()
		}
		m.logger = logger
		return nil
	}
}

// New creates an empty in-memory index.
func New(opts ...Option) (*Memory, error) {
	m := &Memory{
		profiles: make(map[core.ID]*core.Profile),
		logger:   slog.Default().With("component", "memory-index"),
	}
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Upsert adds or replaces profiles in the index. Profiles with a zero ID get
// a content-derived one. Invalid profiles are rejected.
func (m *Memory) Upsert(profiles ...*core.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, profile := range profiles {
		if err := core.ValidateProfile(profile); err != nil {
			return err
		}
		if profile.Id == 0 {
			profile.Id = core.IDFromContent(profile.ContentKey())
		}
		m.profiles[profile.Id] = profile
	}
	return nil
}

// Len returns the number of indexed profiles.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.profiles)
}

// Search evaluates a query against every indexed profile.
// Hits are ordered by raw score descending, candidate id ascending on ties.
func (m *Memory) Search(ctx context.Context, query index.Query) ([]index.Hit, error) {
	if query.Empty() {
		return []index.Hit{}, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	radius := query.RadiusMiles
	if radius <= 0 {
		radius = DefaultRadiusMiles
	}
	limit := query.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	queryTokens := tokenizeAndFilter(query.Text)

	hits := make([]index.Hit, 0, limit)
	for _, profile := range m.profiles {
		hit, ok := m.match(profile, query, radius, queryTokens)
		if ok {
			hits = append(hits, hit)
		}
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].RawScore != hits[j].RawScore {
			return hits[i].RawScore > hits[j].RawScore
		}
		return hits[i].CandidateId < hits[j].CandidateId
	})
	if len(hits) > limit {
		hits = hits[:limit]
	}

	m.logger.Debug("memory index search", "hits", len(hits), "text", query.Text != "")
	return hits, nil
}

// match scores one profile against the query. Structured facets act as hard
// filters; the raw score averages the matched facet components.
func (m *Memory) match(profile *core.Profile, query index.Query, radius float64, queryTokens []string) (index.Hit, bool) {
	var components []float64
	var fields []core.FactKind

	if len(query.PracticeAreas) > 0 {
		if !overlapsFold(profile.PracticeAreas, query.PracticeAreas) {
			return index.Hit{}, false
		}
		components = append(components, 1.0)
		fields = append(fields, core.FactPracticeArea)
	}

	if len(query.BudgetTiers) > 0 {
		switch {
		case overlapsFold(profile.BudgetTiers, query.BudgetTiers):
			components = append(components, 1.0)
			fields = append(fields, core.FactBudgetTier)
		case len(profile.BudgetTiers) == 0:
			// No published tiers: keep the profile but without evidence.
			components = append(components, 0.5)
		default:
			return index.Hit{}, false
		}
	}

	if len(query.Languages) > 0 {
		switch {
		case overlapsFold(profile.Languages, query.Languages):
			components = append(components, 1.0)
			fields = append(fields, core.FactLanguage)
		case len(profile.Languages) == 0:
			components = append(components, 0.25)
		default:
			return index.Hit{}, false
		}
	}

	if query.Neighborhood != "" {
		switch {
		case strings.EqualFold(profile.Neighborhood, query.Neighborhood):
			components = append(components, 1.0)
			fields = append(fields, core.FactNeighborhood)
		case m.withinCentroid(profile, byNeighborhood, query.Neighborhood, radius):
			components = append(components, 0.6)
			fields = append(fields, core.FactNeighborhood)
		default:
			return index.Hit{}, false
		}
	} else if query.City != "" {
		switch {
		case strings.EqualFold(profile.City, query.City):
			components = append(components, 1.0)
			fields = append(fields, core.FactLocation)
		case m.withinCentroid(profile, byCity, query.City, radius):
			components = append(components, 0.7)
			fields = append(fields, core.FactLocation)
		default:
			return index.Hit{}, false
		}
	}

	if query.AvailableNow {
		if !profile.AvailableNow {
			return index.Hit{}, false
		}
		components = append(components, 1.0)
		fields = append(fields, core.FactUrgency)
	}

	if len(queryTokens) > 0 {
		relevance, textFields := textRelevance(profile, queryTokens)
		if relevance == 0 && len(components) == 0 {
			// Pure text query with no overlap at all.
			return index.Hit{}, false
		}
		components = append(components, relevance)
		fields = append(fields, textFields...)
	}

	if len(components) == 0 {
		return index.Hit{}, false
	}

	var sum float64
	for _, c := range components {
		sum += c
	}
	return index.Hit{
		CandidateId:   profile.Id,
		RawScore:      sum / float64(len(components)),
		MatchedFields: fields,
	}, true
}

type centroidKey int

const (
	byCity centroidKey = iota
	byNeighborhood
)

// withinCentroid reports whether the profile lies within radius miles of the
// centroid of all profiles carrying the named city or neighborhood.
// Callers must hold at least a read lock.
func (m *Memory) withinCentroid(profile *core.Profile, key centroidKey, name string, radius float64) bool {
	if profile.Lat == 0 && profile.Lng == 0 {
		return false
	}

	var latSum, lngSum float64
	var n int
	for _, p := range m.profiles {
		field := p.City
		if key == byNeighborhood {
			field = p.Neighborhood
		}
		if !strings.EqualFold(field, name) || (p.Lat == 0 && p.Lng == 0) {
			continue
		}
		latSum += p.Lat
		lngSum += p.Lng
		n++
	}
	if n == 0 {
		return false
	}
	return haversineMiles(profile.Lat, profile.Lng, latSum/float64(n), lngSum/float64(n)) <= radius
}

// overlapsFold reports whether any value appears in both slices,
// case-insensitively.
func overlapsFold(have, want []string) bool {
	for _, w := range want {
		for _, h := range have {
			if strings.EqualFold(h, w) {
				return true
			}
		}
	}
	return false
}
