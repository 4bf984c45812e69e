// Package engagement scores live conversational practice sessions.
//
// Each learner turn is analyzed on four dimensions (length, lexical
// diversity, mechanical grammar, topic relevance) and blended into a
// composite. The session keeps a running average and checks it against a
// configurable requirement gate after every turn, so the surrounding
// progression logic can stop or continue the conversation at any point.
package engagement

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// fullCreditWords is the turn length earning full length credit.
const fullCreditWords = 15

// TurnStats is the per-turn analysis result. All score dimensions are in
// [0,100]; LexicalDiversity additionally keeps its raw 0–1 ratio.
type TurnStats struct {
	WordCount        int     `json:"word_count"`
	CharCount        int     `json:"char_count"`
	LexicalDiversity float64 `json:"lexical_diversity"`
	LengthScore      float64 `json:"length_score"`
	DiversityScore   float64 `json:"diversity_score"`
	GrammarScore     float64 `json:"grammar_score"`
	TopicRelevance   float64 `json:"topic_relevance"`
	Composite        float64 `json:"composite"`
}

// Weights blends the four per-turn dimensions into the composite.
type Weights struct {
	Length    float64 `json:"length"`
	Diversity float64 `json:"diversity"`
	Grammar   float64 `json:"grammar"`
	Relevance float64 `json:"relevance"`
}

// DefaultWeights is the equal-weighted blend.
func DefaultWeights() Weights {
	return Weights{Length: 0.25, Diversity: 0.25, Grammar: 0.25, Relevance: 0.25}
}

// analyzeTurn computes the per-turn dimensions for one utterance.
func analyzeTurn(text string, keywords []string, w Weights) TurnStats {
	words := strings.Fields(text)

	stats := TurnStats{
		WordCount: len(words),
		CharCount: utf8.RuneCountInString(text),
	}

	if len(words) > 0 {
		unique := make(map[string]bool, len(words))
		for _, word := range words {
			unique[strings.ToLower(strings.Trim(word, ".,;:!?\"'"))] = true
		}
		stats.LexicalDiversity = float64(len(unique)) / float64(len(words))
	}

	stats.LengthScore = capAt100(float64(stats.WordCount) / fullCreditWords * 100)
	stats.DiversityScore = stats.LexicalDiversity * 100
	stats.GrammarScore = grammarScore(text)
	stats.TopicRelevance = topicRelevance(words, keywords)

	total := w.Length + w.Diversity + w.Grammar + w.Relevance
	if total <= 0 {
		w = DefaultWeights()
		total = 1
	}
	stats.Composite = (w.Length*stats.LengthScore +
		w.Diversity*stats.DiversityScore +
		w.Grammar*stats.GrammarScore +
		w.Relevance*stats.TopicRelevance) / total

	return stats
}

// topicRelevance scores keyword presence against the session topic's
// keyword list. A session without a topic gets flat neutral credit.
func topicRelevance(words []string, keywords []string) float64 {
	if len(keywords) == 0 {
		return 70
	}

	present := make(map[string]bool, len(words))
	for _, w := range words {
		present[strings.Trim(strings.ToLower(w), ".,;:!?\"'")] = true
	}

	matched := 0
	for _, k := range keywords {
		if present[strings.ToLower(k)] {
			matched++
		}
	}
	return capAt100(float64(matched)/float64(len(keywords))*100 + 30)
}

func capAt100(v float64) float64 {
	if v > 100 {
		return 100
	}
	return v
}

func isLower(r rune) bool {
	return unicode.IsLetter(r) && unicode.IsLower(r)
}
