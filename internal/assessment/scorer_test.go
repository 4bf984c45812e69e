package assessment

import (
	"context"
	"encoding/json"
	"math"
	"testing"

	"github.com/verblevel/verblevel/internal/level"
	"github.com/verblevel/verblevel/internal/llm"
)

const epsilon = 0.001

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < epsilon
}

func newTestScorer(provider llm.Provider) *Scorer {
	return NewScorer(provider, DefaultConfig(), nil)
}

func mcQuestion(idx int, answer string) Question {
	return Question{
		Index:     idx,
		Type:      MultipleChoice,
		Prompt:    "Pick one.",
		Options:   []string{"a", "b", "c"},
		Answer:    answer,
		SkillTags: []string{"vocabulary"},
	}
}

func TestScoreSession_AllCorrectMultipleChoice(t *testing.T) {
	questions := []Question{mcQuestion(0, "a"), mcQuestion(1, "b"), mcQuestion(2, "c")}
	answers := []Answer{
		{Text: "a", ResponseTimeSeconds: 10},
		{Text: "B", ResponseTimeSeconds: 12}, // case-insensitive
		{Text: " c ", ResponseTimeSeconds: 14},
	}

	score, err := newTestScorer(nil).ScoreSession(context.Background(), "s1", level.B1, questions, answers)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(score.OverallScore, 100) {
		t.Errorf("OverallScore = %f, want 100", score.OverallScore)
	}
	if !almostEqual(score.SkillScores["vocabulary"], 100) {
		t.Errorf("vocabulary = %f, want 100", score.SkillScores["vocabulary"])
	}
	if len(score.FallbackQuestions) != 0 {
		t.Errorf("FallbackQuestions = %v, want none", score.FallbackQuestions)
	}
	// Three fast correct answers from B1 (3.0): +0.2 each.
	if !almostEqual(score.FinalDifficulty, 3.6) {
		t.Errorf("FinalDifficulty = %f, want 3.6", score.FinalDifficulty)
	}
}

func TestScoreSession_SkippedCountsAsZero(t *testing.T) {
	questions := []Question{mcQuestion(0, "a"), mcQuestion(1, "a"), mcQuestion(2, "a"), mcQuestion(3, "a")}
	answers := []Answer{
		{Text: "a"},
		{Text: "a"},
		{Text: "a"},
		{Skipped: true},
	}

	score, err := newTestScorer(nil).ScoreSession(context.Background(), "s1", level.A2, questions, answers)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(score.OverallScore, 75) {
		t.Errorf("OverallScore = %f, want 75 (three 100s and one skip)", score.OverallScore)
	}
	if !score.Questions[3].Skipped {
		t.Error("fourth question should be recorded as skipped")
	}
}

func TestScoreSession_MissingAnswersAreSkipped(t *testing.T) {
	questions := []Question{mcQuestion(0, "a"), mcQuestion(1, "a")}
	answers := []Answer{{Text: "a"}}

	score, err := newTestScorer(nil).ScoreSession(context.Background(), "s1", level.A1, questions, answers)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(score.OverallScore, 50) {
		t.Errorf("OverallScore = %f, want 50", score.OverallScore)
	}
}

func TestScoreSession_FillBlankAcceptsAlternatives(t *testing.T) {
	q := Question{
		Index:           0,
		Type:            FillBlank,
		Answer:          "colour",
		AcceptedAnswers: []string{"colour", "color"},
		SkillTags:       []string{"vocabulary"},
	}
	score, err := newTestScorer(nil).ScoreSession(context.Background(), "s1", level.B1,
		[]Question{q}, []Answer{{Text: "  Color "}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(score.OverallScore, 100) {
		t.Errorf("OverallScore = %f, want 100", score.OverallScore)
	}
}

func TestScoreSession_FreeTextUsesAI(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(validPayload)})
	q := Question{Index: 0, Type: Essay, Prompt: "Describe your town.", MinWords: 10}
	ans := Answer{Text: "My town is small but lively. There are two markets and a river."}

	score, err := newTestScorer(mock).ScoreSession(context.Background(), "s1", level.B2, []Question{q}, []Answer{ans})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ev := score.Questions[0]
	if ev.Source != SourceAI {
		t.Errorf("Source = %q, want ai", ev.Source)
	}
	// 78 from the AI plus the +5 appropriateness bonus.
	if !almostEqual(ev.Score, 83) {
		t.Errorf("Score = %f, want 83", ev.Score)
	}
	if ev.AI == nil || ev.AI.CEFRLevel != level.B2 {
		t.Error("AI assessment should be attached")
	}
	if score.CEFRLevel != level.B2 {
		t.Errorf("session level = %s, want B2 (majority vote)", score.CEFRLevel)
	}
	if mock.CallCount() != 1 {
		t.Errorf("CallCount = %d, want 1", mock.CallCount())
	}
	// AI skill breakdown feeds the named dimensions.
	if !almostEqual(score.SkillScores["grammar"], 80) {
		t.Errorf("grammar = %f, want 80", score.SkillScores["grammar"])
	}
}

func TestScoreSession_BonusCappedAt100(t *testing.T) {
	payload := `{"overall_score": 98, "cefr_level": "C1",
		"skill_breakdown": {"grammar": 98, "vocabulary": 98, "fluency": 98, "accuracy": 98, "relevance": 98},
		"complexity_appropriateness": "appropriate"}`
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(payload)})
	q := Question{Index: 0, Type: ShortAnswer, Prompt: "Explain."}

	score, err := newTestScorer(mock).ScoreSession(context.Background(), "s1", level.C1,
		[]Question{q}, []Answer{{Text: "An elaborate and nuanced explanation."}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(score.Questions[0].Score, 100) {
		t.Errorf("Score = %f, want capped 100", score.Questions[0].Score)
	}
}

func TestScoreSession_AIFailureFallsBackToHeuristic(t *testing.T) {
	// Empty mock queue: every Generate fails with ErrProviderUnavailable.
	mock := llm.NewMockProvider()
	q := Question{Index: 2, Type: Essay, Prompt: "Describe your week.", MinWords: 5,
		TopicKeywords: []string{"week"}, SkillTags: []string{"fluency"}}
	ans := Answer{Text: "This week I worked a lot and visited my grandmother on Sunday."}

	score, err := newTestScorer(mock).ScoreSession(context.Background(), "s1", level.A2, []Question{q}, []Answer{ans})
	if err != nil {
		t.Fatalf("scoring must survive AI failure: %v", err)
	}

	ev := score.Questions[0]
	if ev.Source != SourceHeuristic {
		t.Errorf("Source = %q, want heuristic", ev.Source)
	}
	if ev.Score <= 0 {
		t.Errorf("Score = %f, want > 0 for a real answer", ev.Score)
	}
	if len(score.FallbackQuestions) != 1 || score.FallbackQuestions[0] != 2 {
		t.Errorf("FallbackQuestions = %v, want [2]", score.FallbackQuestions)
	}
	// No AI breakdown: the declared skill tag gets the question score.
	if _, ok := score.SkillScores["fluency"]; !ok {
		t.Error("fluency skill should be credited from skill tags")
	}
}

func TestScoreSession_MalformedAIOutputIsRepaired(t *testing.T) {
	wrapped := "Evaluation follows. " + validPayload
	mock := llm.NewMockProvider(
		llm.MockResponse{Err: &llm.ErrInvalidResponse{Content: json.RawMessage(wrapped)}},
	)
	q := Question{Index: 0, Type: Essay, Prompt: "Describe."}

	score, err := newTestScorer(mock).ScoreSession(context.Background(), "s1", level.B1,
		[]Question{q}, []Answer{{Text: "A fairly detailed answer about the topic."}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ev := score.Questions[0]
	if ev.Source != SourceAIRepaired {
		t.Errorf("Source = %q, want ai_repaired", ev.Source)
	}
	if ev.AI == nil || ev.AI.OverallScore != 78 {
		t.Error("repaired assessment should carry the recovered score")
	}
}

func TestScoreSession_SpeakingDurationHeuristic(t *testing.T) {
	q := Question{Index: 0, Type: Speaking, MinDurationSeconds: 60}
	tests := []struct {
		recorded float64
		want     float64
	}{
		{0, 0},    // no attempt
		{6, 30},   // floor for any attempt
		{30, 50},  // half duration
		{60, 100}, // full duration
		{90, 100}, // capped
	}
	for _, tt := range tests {
		score, err := newTestScorer(nil).ScoreSession(context.Background(), "s1", level.B1,
			[]Question{q}, []Answer{{RecordedDurationSeconds: tt.recorded}})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !almostEqual(score.Questions[0].Score, tt.want) {
			t.Errorf("speaking %fs = %f, want %f", tt.recorded, score.Questions[0].Score, tt.want)
		}
	}
}

func TestScoreSession_SpeakingDefaultMinDuration(t *testing.T) {
	// A question with no declared minimum uses the configured default.
	cfg := DefaultConfig()
	cfg.SpeakingMinDurationSeconds = 60
	s := NewScorer(nil, cfg, nil)

	q := Question{Index: 0, Type: Speaking}
	score, err := s.ScoreSession(context.Background(), "s1", level.B1,
		[]Question{q}, []Answer{{RecordedDurationSeconds: 30}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(score.Questions[0].Score, 50) {
		t.Errorf("Score = %f, want 50 against the 60s configured minimum", score.Questions[0].Score)
	}

	// The per-question minimum still wins when declared.
	q.MinDurationSeconds = 30
	score, err = s.ScoreSession(context.Background(), "s1", level.B1,
		[]Question{q}, []Answer{{RecordedDurationSeconds: 30}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(score.Questions[0].Score, 100) {
		t.Errorf("Score = %f, want 100 against the question's own 30s minimum", score.Questions[0].Score)
	}
}

func TestScoreSession_LevelFromScoreWithoutAI(t *testing.T) {
	questions := []Question{mcQuestion(0, "a"), mcQuestion(1, "a")}
	answers := []Answer{{Text: "a"}, {Text: "a"}}

	score, err := newTestScorer(nil).ScoreSession(context.Background(), "s1", level.B1, questions, answers)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Overall 100 → direct mapping → C2.
	if score.CEFRLevel != level.C2 {
		t.Errorf("CEFRLevel = %s, want C2", score.CEFRLevel)
	}
	if score.UnifiedLevel != 5 {
		t.Errorf("UnifiedLevel = %d, want 5", score.UnifiedLevel)
	}
}

func TestScoreSession_MajorityVoteTiesGoHigher(t *testing.T) {
	b1 := `{"overall_score": 70, "cefr_level": "B1", "skill_breakdown": {"grammar": 70, "vocabulary": 70, "fluency": 70, "accuracy": 70, "relevance": 70}, "complexity_appropriateness": "too_simple"}`
	c1 := `{"overall_score": 88, "cefr_level": "C1", "skill_breakdown": {"grammar": 88, "vocabulary": 88, "fluency": 88, "accuracy": 88, "relevance": 88}, "complexity_appropriateness": "too_complex"}`
	mock := llm.NewMockProvider(
		llm.MockResponse{Content: json.RawMessage(b1)},
		llm.MockResponse{Content: json.RawMessage(c1)},
	)
	questions := []Question{
		{Index: 0, Type: Essay, Prompt: "One."},
		{Index: 1, Type: Essay, Prompt: "Two."},
	}
	answers := []Answer{{Text: "First answer text."}, {Text: "Second answer text."}}

	score, err := newTestScorer(mock).ScoreSession(context.Background(), "s1", level.B2, questions, answers)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if score.CEFRLevel != level.C1 {
		t.Errorf("CEFRLevel = %s, want C1 (tie goes to higher)", score.CEFRLevel)
	}
}

func TestScoreSession_NoQuestions(t *testing.T) {
	if _, err := newTestScorer(nil).ScoreSession(context.Background(), "s1", level.B1, nil, nil); err == nil {
		t.Error("expected error for empty question list")
	}
}

func TestParseQuestionType(t *testing.T) {
	if _, err := ParseQuestionType("essay"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if _, err := ParseQuestionType("oral_exam"); err == nil {
		t.Error("unknown type should fail loudly")
	}
}
