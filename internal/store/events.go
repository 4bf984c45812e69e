package store

import (
	"context"
	"database/sql"
	"fmt"
)

// eventRepo implements EventRepo over the SQLite connection.
type eventRepo struct {
	db *sql.DB
}

func (r *eventRepo) AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO llm_request_events
			(provider, model, purpose, input_tokens, output_tokens, latency_ms, success, error_message)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		data.Provider, data.Model, data.Purpose,
		data.InputTokens, data.OutputTokens, data.LatencyMs,
		data.Success, data.ErrorMessage,
	)
	if err != nil {
		return fmt.Errorf("save AI request event: %w", err)
	}
	return nil
}

func (r *eventRepo) AppendSessionScore(ctx context.Context, data SessionScoreEventData) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO session_score_events
			(session_id, overall_score, cefr_level, question_count, fallback_count, final_difficulty)
		VALUES (?, ?, ?, ?, ?, ?)`,
		data.SessionID, data.OverallScore, data.CEFRLevel,
		data.QuestionCount, data.FallbackCount, data.FinalDifficulty,
	)
	if err != nil {
		return fmt.Errorf("save session score event: %w", err)
	}
	return nil
}

// statsRepo implements StatsRepo over the SQLite connection.
type statsRepo struct {
	db *sql.DB
}

func (r *statsRepo) LLMStats(ctx context.Context, purpose string) (LLMStats, error) {
	query := `
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN success = 0 THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(input_tokens), 0),
		       COALESCE(SUM(output_tokens), 0)
		FROM llm_request_events`
	args := []any{}
	if purpose != "" {
		query += " WHERE purpose = ?"
		args = append(args, purpose)
	}

	var s LLMStats
	row := r.db.QueryRowContext(ctx, query, args...)
	if err := row.Scan(&s.TotalCalls, &s.FailedCalls, &s.InputTokens, &s.OutputTokens); err != nil {
		return LLMStats{}, fmt.Errorf("aggregate AI call events: %w", err)
	}
	return s, nil
}

func (r *statsRepo) RecentLLMEvents(ctx context.Context, limit int) ([]LLMRequestEvent, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, timestamp, provider, model, purpose,
		       input_tokens, output_tokens, latency_ms, success, error_message
		FROM llm_request_events
		ORDER BY id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query AI call events: %w", err)
	}
	defer rows.Close()

	var events []LLMRequestEvent
	for rows.Next() {
		var e LLMRequestEvent
		var ts string
		if err := rows.Scan(&e.ID, &ts, &e.Provider, &e.Model, &e.Purpose,
			&e.InputTokens, &e.OutputTokens, &e.LatencyMs, &e.Success, &e.ErrorMessage); err != nil {
			return nil, fmt.Errorf("scan AI call event: %w", err)
		}
		e.Timestamp, _ = parseSQLiteTime(ts)
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *statsRepo) SessionStats(ctx context.Context) (SessionStats, error) {
	var s SessionStats
	var totalQuestions, totalFallback sql.NullInt64
	var avg sql.NullFloat64
	var first, last sql.NullString

	row := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       AVG(overall_score),
		       SUM(question_count),
		       SUM(fallback_count),
		       MIN(timestamp),
		       MAX(timestamp)
		FROM session_score_events`)
	if err := row.Scan(&s.Sessions, &avg, &totalQuestions, &totalFallback, &first, &last); err != nil {
		return SessionStats{}, fmt.Errorf("aggregate session score events: %w", err)
	}

	s.AvgScore = avg.Float64
	if totalQuestions.Int64 > 0 {
		s.FallbackRate = float64(totalFallback.Int64) / float64(totalQuestions.Int64)
	}
	if first.Valid {
		s.FirstRecorded, _ = parseSQLiteTime(first.String)
	}
	if last.Valid {
		s.LastRecorded, _ = parseSQLiteTime(last.String)
	}
	return s, nil
}
