// Package readability measures the linguistic complexity of arbitrary text.
//
// The analyzer is a pure function over plain text: it counts sentences,
// words and syllables, then derives Flesch Reading Ease, Flesch-Kincaid
// Grade Level and a composite grade level that the rest of the engine uses
// as its primary complexity signal. It never fails — text with no words or
// no sentences yields all-zero metrics.
package readability

import (
	"strings"
	"unicode"
)

// Metrics holds the derived complexity measurements for one text.
// Values are recomputed per call and never persisted by the engine.
type Metrics struct {
	SentenceCount       int     `json:"sentence_count"`
	WordCount           int     `json:"word_count"`
	SyllableCount       int     `json:"syllable_count"`
	FleschReadingEase   float64 `json:"flesch_reading_ease"`
	FleschKincaidGrade  float64 `json:"flesch_kincaid_grade"`
	CompositeGradeLevel float64 `json:"composite_grade_level"`
}

// Analyze computes readability metrics for the given text.
// Empty or degenerate input (no words, no sentences) returns the zero
// Metrics rather than an error, so callers never need a failure path.
func Analyze(text string) Metrics {
	words := strings.Fields(text)
	sentences := countSentences(text)

	if len(words) == 0 || sentences == 0 {
		return Metrics{}
	}

	syllables := 0
	for _, w := range words {
		syllables += CountSyllables(w)
	}

	wordsPerSentence := float64(len(words)) / float64(sentences)
	syllablesPerWord := float64(syllables) / float64(len(words))

	ease := 206.835 - 1.015*wordsPerSentence - 84.6*syllablesPerWord
	fkGrade := 0.39*wordsPerSentence + 11.8*syllablesPerWord - 15.59
	if fkGrade < 0 {
		fkGrade = 0
	}

	composite := (easeGradeEquivalent(ease) + fkGrade) / 2

	return Metrics{
		SentenceCount:       sentences,
		WordCount:           len(words),
		SyllableCount:       syllables,
		FleschReadingEase:   ease,
		FleschKincaidGrade:  fkGrade,
		CompositeGradeLevel: composite,
	}
}

// countSentences counts segments terminated by `.`, `!` or `?` that
// contain at least one non-space character.
func countSentences(text string) int {
	count := 0
	seen := false
	for _, r := range text {
		switch r {
		case '.', '!', '?':
			if seen {
				count++
				seen = false
			}
		default:
			if !unicode.IsSpace(r) {
				seen = true
			}
		}
	}
	// A trailing fragment without terminal punctuation still reads as a
	// sentence ("hello there" is one sentence, not zero).
	if seen {
		count++
	}
	return count
}

// CountSyllables estimates the syllable count of a single word by counting
// vowel groups. Punctuation and digits are stripped first; a word with any
// remaining letters counts at least one syllable.
func CountSyllables(word string) int {
	var b strings.Builder
	for _, r := range strings.ToLower(word) {
		if r >= 'a' && r <= 'z' {
			b.WriteRune(r)
		}
	}
	w := b.String()
	if w == "" {
		return 0
	}

	count := 0
	prevVowel := false
	for _, r := range w {
		v := isVowel(r)
		if v && !prevVowel {
			count++
		}
		prevVowel = v
	}

	// Silent trailing e ("make", "table" keeps its -le syllable via y-less
	// vowel grouping, so only the bare -e case is discounted).
	if strings.HasSuffix(w, "e") && !strings.HasSuffix(w, "le") && count > 1 {
		count--
	}

	if count < 1 {
		count = 1
	}
	return count
}

func isVowel(r rune) bool {
	switch r {
	case 'a', 'e', 'i', 'o', 'u', 'y':
		return true
	}
	return false
}

// easeGradeEquivalent maps a Flesch Reading Ease score onto an approximate
// US grade level using fixed bands.
func easeGradeEquivalent(ease float64) float64 {
	switch {
	case ease >= 90:
		return 5
	case ease >= 80:
		return 6
	case ease >= 70:
		return 7
	case ease >= 60:
		return 8
	case ease >= 50:
		return 10
	case ease >= 30:
		return 12
	default:
		return 16
	}
}
