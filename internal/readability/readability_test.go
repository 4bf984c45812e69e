package readability

import (
	"math"
	"strings"
	"testing"
)

const epsilon = 0.001

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < epsilon
}

func TestAnalyze_Empty(t *testing.T) {
	m := Analyze("")
	if m != (Metrics{}) {
		t.Errorf("Analyze(\"\") = %+v, want zero metrics", m)
	}
}

func TestAnalyze_WhitespaceOnly(t *testing.T) {
	m := Analyze("   \n\t  ")
	if m != (Metrics{}) {
		t.Errorf("Analyze(whitespace) = %+v, want zero metrics", m)
	}
}

func TestAnalyze_PunctuationOnly(t *testing.T) {
	// "..." has no words, so the formulas must never run.
	m := Analyze("...")
	if m != (Metrics{}) {
		t.Errorf("Analyze(\"...\") = %+v, want zero metrics", m)
	}
}

func TestAnalyze_SingleSimpleSentence(t *testing.T) {
	m := Analyze("The cat sat on the mat.")
	if m.SentenceCount != 1 {
		t.Errorf("SentenceCount = %d, want 1", m.SentenceCount)
	}
	if m.WordCount != 6 {
		t.Errorf("WordCount = %d, want 6", m.WordCount)
	}
	// All six words are monosyllabic.
	if m.SyllableCount != 6 {
		t.Errorf("SyllableCount = %d, want 6", m.SyllableCount)
	}
	// ease = 206.835 - 1.015*6 - 84.6*1 = 116.145 → band ≥90 → grade 5
	// fk = max(0, 0.39*6 + 11.8*1 - 15.59) = max(0, -1.45) = 0
	// composite = (5 + 0) / 2 = 2.5
	if !almostEqual(m.FleschReadingEase, 116.145) {
		t.Errorf("FleschReadingEase = %f, want 116.145", m.FleschReadingEase)
	}
	if !almostEqual(m.FleschKincaidGrade, 0) {
		t.Errorf("FleschKincaidGrade = %f, want 0", m.FleschKincaidGrade)
	}
	if !almostEqual(m.CompositeGradeLevel, 2.5) {
		t.Errorf("CompositeGradeLevel = %f, want 2.5", m.CompositeGradeLevel)
	}
}

func TestAnalyze_NoTerminalPunctuation(t *testing.T) {
	m := Analyze("hello there")
	if m.SentenceCount != 1 {
		t.Errorf("SentenceCount = %d, want 1 for trailing fragment", m.SentenceCount)
	}
	if m.WordCount != 2 {
		t.Errorf("WordCount = %d, want 2", m.WordCount)
	}
}

func TestAnalyze_MultipleSentences(t *testing.T) {
	m := Analyze("I run. You jump! Do we play?")
	if m.SentenceCount != 3 {
		t.Errorf("SentenceCount = %d, want 3", m.SentenceCount)
	}
	if m.WordCount != 7 {
		t.Errorf("WordCount = %d, want 7", m.WordCount)
	}
}

func TestAnalyze_RepeatedTerminators(t *testing.T) {
	// "Stop!!" is one sentence; the second bang has no content before it.
	m := Analyze("Stop!! Now.")
	if m.SentenceCount != 2 {
		t.Errorf("SentenceCount = %d, want 2", m.SentenceCount)
	}
}

func TestAnalyze_NeverNegativeComposite(t *testing.T) {
	texts := []string{
		"a.",
		"Go. Go. Go.",
		"The quick brown fox jumps over the lazy dog.",
		"Notwithstanding considerable epistemological disagreement, contemporary researchers continually reevaluate methodological assumptions.",
		strings.Repeat("word ", 500) + ".",
	}
	for _, text := range texts {
		m := Analyze(text)
		if m.CompositeGradeLevel < 0 {
			t.Errorf("Analyze(%.30q).CompositeGradeLevel = %f, want >= 0", text, m.CompositeGradeLevel)
		}
		if m.FleschKincaidGrade < 0 {
			t.Errorf("Analyze(%.30q).FleschKincaidGrade = %f, want >= 0", text, m.FleschKincaidGrade)
		}
	}
}

func TestAnalyze_ComplexTextScoresHigher(t *testing.T) {
	simple := Analyze("The cat sat. The dog ran. We had fun.")
	complexText := Analyze("Notwithstanding considerable epistemological disagreement, contemporary researchers continually reevaluate methodological assumptions underlying quantitative paradigms.")
	if simple.CompositeGradeLevel >= complexText.CompositeGradeLevel {
		t.Errorf("simple composite %f should be below complex composite %f",
			simple.CompositeGradeLevel, complexText.CompositeGradeLevel)
	}
}

func TestCountSyllables(t *testing.T) {
	tests := []struct {
		word string
		want int
	}{
		{"cat", 1},
		{"table", 2},
		{"make", 1},
		{"beautiful", 3},
		{"the", 1},
		{"I", 1},
		{"rhythm", 1},
		{"queue", 1},
		{"hello,", 2},
		{"don't", 1},
		{"123", 0},
		{"", 0},
		{"?!", 0},
	}
	for _, tt := range tests {
		if got := CountSyllables(tt.word); got != tt.want {
			t.Errorf("CountSyllables(%q) = %d, want %d", tt.word, got, tt.want)
		}
	}
}

func TestEaseGradeEquivalent_Bands(t *testing.T) {
	tests := []struct {
		ease float64
		want float64
	}{
		{95, 5},
		{90, 5},
		{85, 6},
		{75, 7},
		{65, 8},
		{55, 10},
		{40, 12},
		{29.9, 16},
		{-10, 16},
	}
	for _, tt := range tests {
		if got := easeGradeEquivalent(tt.ease); got != tt.want {
			t.Errorf("easeGradeEquivalent(%f) = %f, want %f", tt.ease, got, tt.want)
		}
	}
}
