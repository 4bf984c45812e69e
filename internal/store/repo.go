package store

import (
	"context"
	"time"
)

// LLMRequestEventData captures the data for a single AI service call.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
}

// SessionScoreEventData records the outcome of one scored assessment
// session. The full per-question breakdown stays with the caller; the log
// keeps only what aggregate reporting needs.
type SessionScoreEventData struct {
	SessionID       string
	OverallScore    float64
	CEFRLevel       string
	QuestionCount   int
	FallbackCount   int // questions scored by the local heuristic path
	FinalDifficulty float64
}

// LLMRequestEvent is a stored AI call event with its log identity.
type LLMRequestEvent struct {
	ID        int64
	Timestamp time.Time
	LLMRequestEventData
}

// EventRepo provides append access to engine events.
type EventRepo interface {
	// AppendLLMRequest records an AI service call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// AppendSessionScore records a completed session score event.
	AppendSessionScore(ctx context.Context, data SessionScoreEventData) error
}

// LLMStats aggregates AI service call events for reporting.
type LLMStats struct {
	TotalCalls   int
	FailedCalls  int
	InputTokens  int
	OutputTokens int
}

// SessionStats aggregates session score events for reporting.
type SessionStats struct {
	Sessions      int
	AvgScore      float64
	FallbackRate  float64 // fallback questions / total questions
	FirstRecorded time.Time
	LastRecorded  time.Time
}

// StatsRepo provides read access to aggregated event data.
type StatsRepo interface {
	// LLMStats aggregates AI call events, optionally filtered by purpose
	// (empty purpose = all).
	LLMStats(ctx context.Context, purpose string) (LLMStats, error)

	// SessionStats aggregates recorded session scores.
	SessionStats(ctx context.Context) (SessionStats, error)

	// RecentLLMEvents returns the newest AI call events, newest first.
	RecentLLMEvents(ctx context.Context, limit int) ([]LLMRequestEvent, error)
}
