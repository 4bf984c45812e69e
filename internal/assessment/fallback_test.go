package assessment

import (
	"testing"

	"github.com/verblevel/verblevel/internal/level"
)

func TestHeuristicScore_EmptyAnswer(t *testing.T) {
	q := Question{MinWords: 20, TopicKeywords: []string{"travel"}}
	got := heuristicScore(q, "", level.B1)
	if got != 0 {
		t.Errorf("score = %f, want 0 for empty answer", got)
	}
}

func TestHeuristicScore_Deterministic(t *testing.T) {
	q := Question{MinWords: 10, TopicKeywords: []string{"food", "cooking"}}
	answer := "I love cooking simple food at home. My favorite dish is pasta."
	a := heuristicScore(q, answer, level.B1)
	b := heuristicScore(q, answer, level.B1)
	if a != b {
		t.Errorf("heuristic not deterministic: %f vs %f", a, b)
	}
	if a <= 0 || a > 100 {
		t.Errorf("score = %f, out of (0,100]", a)
	}
}

func TestHeuristicScore_LongerAnswerScoresHigher(t *testing.T) {
	q := Question{MinWords: 30}
	short := heuristicScore(q, "I like food.", level.A2)
	long := heuristicScore(q,
		"I like many kinds of food. Every weekend I cook dinner with my family. "+
			"We make soup, bread and sometimes fish. Cooking together makes us happy.", level.A2)
	if long <= short {
		t.Errorf("long answer %f should beat short answer %f", long, short)
	}
}

func TestHeuristicScore_KeywordOverlapCounts(t *testing.T) {
	q := Question{MinWords: 5, TopicKeywords: []string{"holiday", "beach", "family"}}
	with := heuristicScore(q, "Last holiday my family went to the beach together.", level.A2)
	without := heuristicScore(q, "Last month my colleagues went to the office together.", level.A2)
	if with <= without {
		t.Errorf("keyword-matching answer %f should beat non-matching %f", with, without)
	}
}

func TestLengthAdequacy(t *testing.T) {
	tests := []struct {
		words, min int
		want       float64
	}{
		{0, 20, 0},
		{10, 20, 0.5},
		{20, 20, 1},
		{50, 20, 1},
		{10, 0, 0.5}, // default minimum of 20 applies
	}
	for _, tt := range tests {
		if got := lengthAdequacy(tt.words, tt.min); got != tt.want {
			t.Errorf("lengthAdequacy(%d, %d) = %f, want %f", tt.words, tt.min, got, tt.want)
		}
	}
}

func TestComplexityProximity_FullCreditAtTarget(t *testing.T) {
	// Simple sentences land at unified level 1.
	simple := "The cat sat. The dog ran. We had fun."
	if got := complexityProximity(simple, level.A1); got != 1 {
		t.Errorf("A1 proximity = %f, want 1", got)
	}
	// The same text is far from C1 (unified 5): distance 4 → zero credit.
	if got := complexityProximity(simple, level.C1); got != 0 {
		t.Errorf("C1 proximity = %f, want 0", got)
	}
}

func TestKeywordOverlap_NormalizesCaseAndPunctuation(t *testing.T) {
	words := []string{"Beach,", "HOLIDAY!", "sun"}
	got := keywordOverlap(words, []string{"beach", "holiday", "rain"})
	want := 2.0 / 3.0
	if got != want {
		t.Errorf("overlap = %f, want %f", got, want)
	}
}

func TestKeywordOverlap_NoKeywordsIsNeutral(t *testing.T) {
	if got := keywordOverlap([]string{"anything"}, nil); got != 0.5 {
		t.Errorf("overlap = %f, want neutral 0.5", got)
	}
}
