package engagement

import (
	"regexp"
	"strings"
	"unicode"
)

// Mechanical error penalties. The grammar heuristic is intentionally
// shallow: it checks writing mechanics, not syntax, and is one of four
// equal dimensions in the composite.
const (
	missingTerminalPenalty = 10
	missingCapitalPenalty  = 10
	mechanicalPenalty      = 5
)

var (
	doubleSpaceRe    = regexp.MustCompile(`  +`)
	repeatTerminalRe = regexp.MustCompile(`[.!?]{2,}`)
)

// grammarScore starts at 100 and subtracts fixed penalties for missing
// terminal punctuation, missing initial capitalization, and each
// mechanical error pattern occurrence. Bounded to [0,100].
func grammarScore(text string) float64 {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return 0
	}

	score := 100.0

	if !strings.ContainsAny(string(trimmed[len(trimmed)-1]), ".!?") {
		score -= missingTerminalPenalty
	}

	first, _ := firstLetter(trimmed)
	if first != 0 && isLower(first) {
		score -= missingCapitalPenalty
	}

	mechanical := len(doubleSpaceRe.FindAllString(trimmed, -1)) +
		len(repeatTerminalRe.FindAllString(trimmed, -1)) +
		countLowercaseI(trimmed)
	score -= float64(mechanical * mechanicalPenalty)

	if score < 0 {
		score = 0
	}
	return score
}

// firstLetter returns the first letter rune in s, skipping quotes and
// other leading punctuation.
func firstLetter(s string) (rune, bool) {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return r, true
		}
	}
	return 0, false
}

// countLowercaseI counts standalone lowercase first-person pronouns.
// Regex alone undercounts adjacent hits ("i think i know") because the
// separating space is consumed by the first match, so scan tokens instead.
func countLowercaseI(s string) int {
	count := 0
	for _, tok := range strings.Fields(s) {
		if strings.Trim(tok, ".,;:!?\"'") == "i" {
			count++
		}
	}
	return count
}
