// Package assessment scores submitted assessment sessions.
//
// Each question is evaluated by a strategy chosen from its type:
// deterministic matching for closed questions, external AI evaluation with
// a local heuristic fallback for free text, and a duration heuristic for
// speaking. Per-question results are fused into an overall score, a
// per-skill breakdown and a CEFR level for the session.
package assessment

import (
	"fmt"

	"github.com/verblevel/verblevel/internal/level"
)

// QuestionType selects the evaluation strategy for a question.
type QuestionType string

const (
	MultipleChoice QuestionType = "multiple_choice"
	TrueFalse      QuestionType = "true_false"
	FillBlank      QuestionType = "fill_blank"
	Essay          QuestionType = "essay"
	ShortAnswer    QuestionType = "short_answer"
	Speaking       QuestionType = "speaking"
	Listening      QuestionType = "listening"
)

// ParseQuestionType validates a question type from the question bank.
// Unknown types are a programmer error and fail loudly.
func ParseQuestionType(s string) (QuestionType, error) {
	switch QuestionType(s) {
	case MultipleChoice, TrueFalse, FillBlank, Essay, ShortAnswer, Speaking, Listening:
		return QuestionType(s), nil
	}
	return "", fmt.Errorf("unknown question type: %q", s)
}

// Question is one entry from the surrounding system's question bank.
type Question struct {
	Index           int          `json:"index"`
	Type            QuestionType `json:"type"`
	Prompt          string       `json:"prompt"`
	Options         []string     `json:"options,omitempty"`
	Answer          string       `json:"answer,omitempty"`
	AcceptedAnswers []string     `json:"accepted_answers,omitempty"`
	SkillTags       []string     `json:"skill_tags,omitempty"`
	TopicKeywords   []string     `json:"topic_keywords,omitempty"`

	// MinWords is the expected minimum answer length for free-text
	// questions; zero means the engine default applies.
	MinWords int `json:"min_words,omitempty"`

	// MinDurationSeconds is the expected speaking duration.
	MinDurationSeconds float64 `json:"min_duration_seconds,omitempty"`
}

// Answer is the learner's response to one question.
type Answer struct {
	Text                    string  `json:"text"`
	ResponseTimeSeconds     float64 `json:"response_time_seconds"`
	RecordedDurationSeconds float64 `json:"recorded_duration_seconds,omitempty"`
	Skipped                 bool    `json:"skipped,omitempty"`
}

// ScoreSource tells which path produced a question's score.
type ScoreSource string

const (
	// SourceExact is deterministic matching against the canonical answer.
	SourceExact ScoreSource = "exact"
	// SourceAI is a schema-valid external AI assessment.
	SourceAI ScoreSource = "ai"
	// SourceAIRepaired is an AI assessment recovered from malformed output.
	SourceAIRepaired ScoreSource = "ai_repaired"
	// SourceHeuristic is the local fallback used when AI scoring was
	// unavailable. Surfaced so the UI can disclose reduced confidence.
	SourceHeuristic ScoreSource = "heuristic"
	// SourceDuration is the speaking duration placeholder heuristic.
	SourceDuration ScoreSource = "duration"
)

// Evaluation is the scored outcome of one question.
type Evaluation struct {
	QuestionIndex int          `json:"question_index"`
	Type          QuestionType `json:"type"`
	UserAnswer    string       `json:"user_answer"`

	// IsCorrect is nil for free-text answers until they are scored, and
	// for scoring paths with no notion of exact correctness.
	IsCorrect *bool `json:"is_correct,omitempty"`

	Score               float64       `json:"score"`
	SkillTags           []string      `json:"skill_tags,omitempty"`
	AI                  *AIAssessment `json:"ai_assessment,omitempty"`
	ResponseTimeSeconds float64       `json:"response_time_seconds"`
	Skipped             bool          `json:"skipped,omitempty"`
	Source              ScoreSource   `json:"source"`
}

// Appropriateness is the AI's judgement of whether the learner's text
// complexity fits their target level.
type Appropriateness string

const (
	Appropriate Appropriateness = "appropriate"
	TooSimple   Appropriateness = "too_simple"
	TooComplex  Appropriateness = "too_complex"

	// AppropriatenessUnknown means the AI did not report a usable
	// judgement; no complexity bonus applies.
	AppropriatenessUnknown Appropriateness = ""
)

// SkillBreakdown holds per-skill scores, each independently in [0,100].
// The dimensions are parallel, not a partition; they do not sum to 100.
type SkillBreakdown struct {
	Grammar    float64 `json:"grammar"`
	Vocabulary float64 `json:"vocabulary"`
	Fluency    float64 `json:"fluency"`
	Accuracy   float64 `json:"accuracy"`
	Relevance  float64 `json:"relevance"`
}

// AIAssessment is the external evaluation of a free-text answer,
// normalized on ingestion. The raw service output is untrusted and passes
// through schema validation or repair before reaching this type.
type AIAssessment struct {
	OverallScore    float64         `json:"overall_score"`
	CEFRLevel       level.CEFR      `json:"cefr_level"`
	UnifiedLevel    level.Unified   `json:"unified_level"`
	Skills          SkillBreakdown  `json:"skill_breakdown"`
	FleschKincaid   *float64        `json:"flesch_kincaid_score,omitempty"`
	Appropriateness Appropriateness `json:"complexity_appropriateness"`
	Feedback        string          `json:"feedback,omitempty"`
	ErrorExamples   []string        `json:"error_examples,omitempty"`
}

// SessionScore is the immutable result of one scored session.
type SessionScore struct {
	SessionID    string             `json:"session_id"`
	OverallScore float64            `json:"overall_score"`
	SkillScores  map[string]float64 `json:"skill_scores"`
	UnifiedLevel level.Unified      `json:"unified_level"`
	CEFRLevel    level.CEFR         `json:"cefr_level"`
	Questions    []Evaluation       `json:"question_results"`

	// FinalDifficulty is the adaptive difficulty value after folding every
	// graded question through the controller.
	FinalDifficulty float64 `json:"final_difficulty"`

	// FallbackQuestions lists indexes scored by the local heuristic
	// because AI scoring was unavailable.
	FallbackQuestions []int `json:"fallback_questions,omitempty"`
}
