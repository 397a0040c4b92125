package intent

import (
	"strings"

	"github.com/barmatch/barmatch/core"
)

// heuristicConfidence marks facts produced by keyword matching rather than
// the model. Low enough that a later model-extracted fact supersedes them.
const heuristicConfidence = 0.4

// keywordFact maps a trigger phrase to the fact it implies.
type keywordFact struct {
	phrase string
	kind   core.FactKind
	value  string
}

// Heuristic vocabulary, longest phrases first so multi-word triggers win.
var keywordFacts = []keywordFact{
	{"payment plan", core.FactSpecialNeed, "payment plans"},
	{"child support", core.FactPracticeArea, "child support"},
	{"green card", core.FactPracticeArea, "immigration"},
	{"custody", core.FactPracticeArea, "custody"},
	{"divorce", core.FactPracticeArea, "divorce"},
	{"adoption", core.FactPracticeArea, "adoption"},
	{"eviction", core.FactPracticeArea, "eviction"},
	{"landlord", core.FactPracticeArea, "tenant rights"},
	{"immigration", core.FactPracticeArea, "immigration"},
	{"visa", core.FactPracticeArea, "immigration"},
	{"dui", core.FactPracticeArea, "criminal defense"},
	{"bankruptcy", core.FactPracticeArea, "bankruptcy"},
	{"estate", core.FactPracticeArea, "estate planning"},

	{"emergency", core.FactUrgency, "high"},
	{"urgently", core.FactUrgency, "high"},
	{"urgent", core.FactUrgency, "high"},
	{"asap", core.FactUrgency, "high"},
	{"immediately", core.FactUrgency, "high"},
	{"right away", core.FactUrgency, "high"},
	{"no rush", core.FactUrgency, "low"},
	{"whenever", core.FactUrgency, "low"},

	{"affordable", core.FactBudgetTier, "low"},
	{"cheap", core.FactBudgetTier, "low"},
	{"tight budget", core.FactBudgetTier, "low"},
	{"low cost", core.FactBudgetTier, "low"},
	{"money is no object", core.FactBudgetTier, "premium"},

	{"spanish", core.FactLanguage, "spanish"},
	{"mandarin", core.FactLanguage, "mandarin"},
	{"cantonese", core.FactLanguage, "cantonese"},
	{"korean", core.FactLanguage, "korean"},
	{"vietnamese", core.FactLanguage, "vietnamese"},
	{"tagalog", core.FactLanguage, "tagalog"},
	{"armenian", core.FactLanguage, "armenian"},
	{"farsi", core.FactLanguage, "farsi"},
	{"russian", core.FactLanguage, "russian"},
	{"arabic", core.FactLanguage, "arabic"},

	{"patient", core.FactCommunicationStyle, "patient"},
	{"aggressive", core.FactCommunicationStyle, "aggressive"},
	{"straightforward", core.FactCommunicationStyle, "direct"},
	{"explains things", core.FactCommunicationStyle, "patient"},
}

// HeuristicUpdate extracts facts from text by keyword matching against the
// enumerated kinds. It is the degraded path when the language backend is
// unreachable: coarse, but it keeps the turn moving.
func HeuristicUpdate(text string, turn int) *core.FactUpdate {
	lower := " " + strings.ToLower(text) + " "

	update := &core.FactUpdate{
		Remainder: strings.TrimSpace(text),
		Heuristic: true,
	}
	seen := make(map[core.FactKind]map[string]bool)

	for _, kf := range keywordFacts {
		if !containsWord(lower, kf.phrase) {
			continue
		}
		if seen[kf.kind] == nil {
			seen[kf.kind] = make(map[string]bool)
		}
		if seen[kf.kind][kf.value] {
			continue
		}
		// Single-valued kinds keep only the first (longest-phrase) trigger.
		if !kf.kind.Multi() && len(seen[kf.kind]) > 0 {
			continue
		}
		seen[kf.kind][kf.value] = true
		update.Facts = append(update.Facts, core.Fact{
			Kind:       kf.kind,
			Value:      kf.value,
			Confidence: heuristicConfidence,
			SourceTurn: turn,
		})
	}

	return update
}

// containsWord reports whether phrase occurs in text on word boundaries.
// text must be lowercased and padded with spaces.
func containsWord(text, phrase string) bool {
	idx := 0
	for {
		i := strings.Index(text[idx:], phrase)
		if i < 0 {
			return false
		}
		i += idx
		before := text[i-1]
		after := text[i+len(phrase)]
		if !isWordByte(before) && !isWordByte(after) {
			return true
		}
		idx = i + 1
	}
}

func isWordByte(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= '0' && b <= '9')
}
