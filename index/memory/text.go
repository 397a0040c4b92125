package memory

import (
	"strings"

	"github.com/barmatch/barmatch/core"
)

// Stop words to filter out when computing free-text relevance
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "be": true, "is": true, "are": true,
	"was": true, "to": true, "of": true, "and": true, "in": true, "that": true,
	"have": true, "it": true, "for": true, "not": true, "on": true, "with": true,
	"as": true, "you": true, "do": true, "at": true, "this": true, "but": true,
	"by": true, "from": true, "i": true, "my": true, "me": true, "need": true,
	"want": true, "someone": true, "who": true,
}

// tokenizeAndFilter splits text into words, lowercases, trims punctuation, and removes stop words
func tokenizeAndFilter(text string) []string {
	words := strings.Fields(text)
	filtered := make([]string, 0, len(words))

	for _, word := range words {
		cleaned := strings.ToLower(strings.Trim(word, ".,!?;:'\"-()[]{}"))
		if cleaned != "" && !stopWords[cleaned] {
			filtered = append(filtered, cleaned)
		}
	}

	return filtered
}

// textRelevance computes the fraction of query tokens present in the
// profile's searchable text, and reports which fact kinds the overlapping
// tokens evidence (communication style, cultural background, practice area).
func textRelevance(profile *core.Profile, queryTokens []string) (float64, []core.FactKind) {
	docWords := tokenizeAndFilter(profileDocument(profile))
	docSet := make(map[string]bool, len(docWords))
	for _, w := range docWords {
		docSet[w] = true
	}

	styleSet := tokenSet(profile.CommunicationStyle)
	culturalSet := tokenSet(strings.Join(profile.CulturalBackgrounds, " "))
	areaSet := tokenSet(strings.Join(profile.PracticeAreas, " "))

	var matched int
	var fields []core.FactKind
	seen := make(map[core.FactKind]bool)
	for _, token := range queryTokens {
		if !docSet[token] {
			continue
		}
		matched++
		switch {
		case styleSet[token]:
			if !seen[core.FactCommunicationStyle] {
				fields = append(fields, core.FactCommunicationStyle)
				seen[core.FactCommunicationStyle] = true
			}
		case culturalSet[token]:
			if !seen[core.FactCulturalBackground] {
				fields = append(fields, core.FactCulturalBackground)
				seen[core.FactCulturalBackground] = true
			}
		case areaSet[token]:
			if !seen[core.FactPracticeArea] {
				fields = append(fields, core.FactPracticeArea)
				seen[core.FactPracticeArea] = true
			}
		}
	}

	if len(queryTokens) == 0 {
		return 0, nil
	}
	return float64(matched) / float64(len(queryTokens)), fields
}

// profileDocument flattens the profile's text fields into one searchable blob.
func profileDocument(profile *core.Profile) string {
	parts := []string{
		profile.Name,
		profile.Bio,
		profile.Neighborhood,
		profile.City,
		profile.CommunicationStyle,
		strings.Join(profile.PracticeAreas, " "),
		strings.Join(profile.Languages, " "),
		strings.Join(profile.CulturalBackgrounds, " "),
	}
	return strings.Join(parts, " ")
}

func tokenSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, token := range tokenizeAndFilter(text) {
		set[token] = true
	}
	return set
}
