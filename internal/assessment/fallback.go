package assessment

import (
	"strings"

	"github.com/verblevel/verblevel/internal/level"
	"github.com/verblevel/verblevel/internal/readability"
)

// Fallback weighting, used only when AI scoring is unavailable:
// 40% length adequacy, 40% complexity-band proximity, 20% keyword overlap.
const (
	fallbackLengthWeight     = 0.4
	fallbackComplexityWeight = 0.4
	fallbackKeywordWeight    = 0.2

	// defaultMinWords applies when the question declares no minimum.
	defaultMinWords = 20

	// complexityDecayLevels is the unified-level distance at which the
	// complexity component reaches zero.
	complexityDecayLevels = 4.0
)

// heuristicScore is the local free-text scorer used when the external AI
// service fails or returns nothing recognizable. Deterministic: scoring
// the same answer twice yields the same result.
func heuristicScore(q Question, answerText string, targetLevel level.CEFR) float64 {
	words := strings.Fields(answerText)

	lengthScore := lengthAdequacy(len(words), q.MinWords)
	complexityScore := complexityProximity(answerText, targetLevel)
	keywordScore := keywordOverlap(words, q.TopicKeywords)

	score := 100 * (fallbackLengthWeight*lengthScore +
		fallbackComplexityWeight*complexityScore +
		fallbackKeywordWeight*keywordScore)
	return clampScore(score)
}

// lengthAdequacy is the answer length against the expected minimum,
// capped at full credit.
func lengthAdequacy(wordCount, minWords int) float64 {
	if minWords <= 0 {
		minWords = defaultMinWords
	}
	ratio := float64(wordCount) / float64(minWords)
	if ratio > 1 {
		ratio = 1
	}
	return ratio
}

// complexityProximity gives full credit when the answer's complexity band
// matches the learner's target level, decaying linearly to zero at a
// distance of complexityDecayLevels unified levels.
func complexityProximity(answerText string, targetLevel level.CEFR) float64 {
	m := readability.Analyze(answerText)
	if m.WordCount == 0 {
		return 0
	}

	dist := float64(level.FromGrade(m.CompositeGradeLevel) - targetLevel.Unified())
	if dist < 0 {
		dist = -dist
	}
	credit := 1 - dist/complexityDecayLevels
	if credit < 0 {
		credit = 0
	}
	return credit
}

// keywordOverlap is the fraction of the question's topic keywords present
// in the answer. Questions with no keyword list get neutral credit.
func keywordOverlap(answerWords []string, keywords []string) float64 {
	if len(keywords) == 0 {
		return 0.5
	}

	present := make(map[string]bool, len(answerWords))
	for _, w := range answerWords {
		present[normalizeWord(w)] = true
	}

	matched := 0
	for _, k := range keywords {
		if present[normalizeWord(k)] {
			matched++
		}
	}
	return float64(matched) / float64(len(keywords))
}

func normalizeWord(w string) string {
	return strings.Trim(strings.ToLower(w), ".,;:!?\"'()")
}
