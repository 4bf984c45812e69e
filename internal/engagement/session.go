package engagement

import (
	"time"

	"github.com/google/uuid"

	"github.com/verblevel/verblevel/internal/level"
)

// Requirement is the three-way gate a conversation session must clear.
type Requirement struct {
	MinTurns           int     `json:"min_turns"`
	MinDurationSeconds float64 `json:"min_duration_seconds"`
	MinEngagement      float64 `json:"min_engagement"`
}

// DefaultRequirement is the standard conversation gate.
func DefaultRequirement() Requirement {
	return Requirement{MinTurns: 10, MinDurationSeconds: 300, MinEngagement: 80}
}

// Stats is the session's running aggregate, updated after every turn.
type Stats struct {
	TurnCount           int     `json:"turn_count"`
	DurationSeconds     float64 `json:"duration_seconds"`
	EngagementScore     float64 `json:"engagement_score"`
	VocabularyDiversity float64 `json:"vocabulary_diversity"`
	GrammarScore        float64 `json:"grammar_score"`
	TopicRelevance      float64 `json:"topic_relevance"`

	// Level is the proficiency label reported for the conversation,
	// mapped through the conversational score→level policy.
	Level level.CEFR `json:"level"`
}

// Progress reports percentage progress toward each requirement, each
// capped at 100.
type Progress struct {
	Turns      float64 `json:"turns"`
	Duration   float64 `json:"duration"`
	Engagement float64 `json:"engagement"`
}

// Status is the gate evaluation returned after every turn. The gate
// passes only when all three progress values reach 100.
type Status struct {
	Progress        Progress `json:"progress"`
	RequirementsMet bool     `json:"requirements_met"`
}

// Session tracks one live conversation. Single-owner, single-writer: the
// surrounding session layer calls RecordTurn synchronously per learner
// utterance, so no locking is needed.
type Session struct {
	ID        string
	Topic     string
	StartTime time.Time

	keywords []string
	req      Requirement
	weights  Weights
	turns    []TurnStats
	now      func() time.Time
}

// Option configures a Session.
type Option func(*Session)

// WithWeights overrides the composite blend weights.
func WithWeights(w Weights) Option {
	return func(s *Session) { s.weights = w }
}

// WithClock injects the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// NewSession starts a conversation session. keywords is the topic's
// keyword list; empty means no topic is set and relevance scores neutral.
func NewSession(topic string, keywords []string, req Requirement, opts ...Option) *Session {
	s := &Session{
		ID:       uuid.NewString(),
		Topic:    topic,
		keywords: keywords,
		req:      req,
		weights:  DefaultWeights(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.StartTime = s.now()
	return s
}

// RecordTurn analyzes one learner utterance, folds it into the running
// stats and re-evaluates the requirement gate.
func (s *Session) RecordTurn(text string) (TurnStats, Status) {
	stats := analyzeTurn(text, s.keywords, s.weights)
	s.turns = append(s.turns, stats)
	return stats, s.Status()
}

// Stats returns the running aggregate over all recorded turns.
func (s *Session) Stats() Stats {
	agg := Stats{
		TurnCount:       len(s.turns),
		DurationSeconds: s.now().Sub(s.StartTime).Seconds(),
	}
	if len(s.turns) > 0 {
		for _, t := range s.turns {
			agg.EngagementScore += t.Composite
			agg.VocabularyDiversity += t.LexicalDiversity
			agg.GrammarScore += t.GrammarScore
			agg.TopicRelevance += t.TopicRelevance
		}
		n := float64(len(s.turns))
		agg.EngagementScore /= n
		agg.VocabularyDiversity /= n
		agg.GrammarScore /= n
		agg.TopicRelevance /= n
	}
	agg.Level = level.FromConversationalScore(agg.EngagementScore)
	return agg
}

// Status evaluates the requirement gate against the current stats.
func (s *Session) Status() Status {
	stats := s.Stats()
	p := Progress{
		Turns:      ratioProgress(float64(stats.TurnCount), float64(s.req.MinTurns)),
		Duration:   ratioProgress(stats.DurationSeconds, s.req.MinDurationSeconds),
		Engagement: ratioProgress(stats.EngagementScore, s.req.MinEngagement),
	}
	return Status{
		Progress:        p,
		RequirementsMet: p.Turns >= 100 && p.Duration >= 100 && p.Engagement >= 100,
	}
}

// ratioProgress is min(100, actual/required*100); an absent requirement
// is already satisfied.
func ratioProgress(actual, required float64) float64 {
	if required <= 0 {
		return 100
	}
	p := actual / required * 100
	if p > 100 {
		p = 100
	}
	return p
}
