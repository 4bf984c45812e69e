package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/verblevel/verblevel/internal/assessment"
	"github.com/verblevel/verblevel/internal/difficulty"
	"github.com/verblevel/verblevel/internal/engagement"
	"github.com/verblevel/verblevel/internal/level"
	"github.com/verblevel/verblevel/internal/readability"
	"github.com/verblevel/verblevel/internal/store"
)

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("encoding response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, errorResponse{Error: msg})
}

// decode parses the request body, rejecting unknown fields so client
// typos surface as 400s instead of silently-defaulted values.
func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type analyzeRequest struct {
	Text string `json:"text"`
}

type analyzeResponse struct {
	readability.Metrics
	UnifiedLevel level.Unified `json:"unified_level"`
	CEFRLevel    level.CEFR    `json:"cefr_level"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	metrics := readability.Analyze(req.Text)
	unified := level.FromGrade(metrics.CompositeGradeLevel)
	s.writeJSON(w, http.StatusOK, analyzeResponse{
		Metrics:      metrics,
		UnifiedLevel: unified,
		CEFRLevel:    unified.CEFR(),
	})
}

type scoreRequest struct {
	SessionID    string                `json:"session_id"`
	LearnerLevel string                `json:"learner_level"`
	Questions    []assessment.Question `json:"questions"`
	Answers      []assessment.Answer   `json:"answers"`
}

func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	var req scoreRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	learnerLevel, err := level.ParseCEFR(req.LearnerLevel)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	for _, q := range req.Questions {
		if _, err := assessment.ParseQuestionType(string(q.Type)); err != nil {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	score, err := s.scorer.ScoreSession(r.Context(), req.SessionID, learnerLevel, req.Questions, req.Answers)
	if err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if s.scores != nil {
		event := store.SessionScoreEventData{
			SessionID:       score.SessionID,
			OverallScore:    score.OverallScore,
			CEFRLevel:       string(score.CEFRLevel),
			QuestionCount:   len(score.Questions),
			FallbackCount:   len(score.FallbackQuestions),
			FinalDifficulty: score.FinalDifficulty,
		}
		if err := s.scores.AppendSessionScore(r.Context(), event); err != nil {
			s.log.Warn("recording session score", "error", err)
		}
	}

	s.writeJSON(w, http.StatusOK, score)
}

type difficultyRequest struct {
	State               difficulty.State `json:"state"`
	Correct             bool             `json:"correct"`
	ResponseTimeSeconds float64          `json:"response_time_seconds"`
}

func (s *Server) handleDifficultyNext(w http.ResponseWriter, r *http.Request) {
	var req difficultyRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, difficulty.Next(req.State, req.Correct, req.ResponseTimeSeconds))
}

type adaptRequest struct {
	Text        string `json:"text"`
	TargetLevel string `json:"target_level"`
}

func (s *Server) handleAdapt(w http.ResponseWriter, r *http.Request) {
	var req adaptRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	target, err := level.ParseCEFR(req.TargetLevel)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Service failures degrade inside the orchestrator; an error here is
	// internal, not a learner-visible dependency failure.
	res, err := s.adapter.Adapt(r.Context(), req.Text, target)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

type engagementStartRequest struct {
	Topic string `json:"topic,omitempty"`
}

type engagementStartResponse struct {
	SessionID   string                 `json:"session_id"`
	Topic       string                 `json:"topic,omitempty"`
	Requirement engagement.Requirement `json:"requirement"`
}

func (s *Server) handleEngagementStart(w http.ResponseWriter, r *http.Request) {
	// An empty body starts a topic-less session.
	var req engagementStartRequest
	if err := decode(r, &req); err != nil && !errors.Is(err, io.EOF) {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	session := engagement.NewSession(
		req.Topic,
		s.cfg.TopicKeywords(req.Topic),
		s.cfg.EngagementRequirement(),
		engagement.WithWeights(s.cfg.EngagementWeights()),
	)
	s.sessions.add(session)

	s.writeJSON(w, http.StatusCreated, engagementStartResponse{
		SessionID:   session.ID,
		Topic:       session.Topic,
		Requirement: s.cfg.EngagementRequirement(),
	})
}

type turnRequest struct {
	Text string `json:"text"`
}

type turnResponse struct {
	Turn   engagement.TurnStats `json:"turn"`
	Stats  engagement.Stats     `json:"stats"`
	Status engagement.Status    `json:"status"`
}

func (s *Server) handleEngagementTurn(w http.ResponseWriter, r *http.Request) {
	var req turnRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	id := chi.URLParam(r, "sessionID")
	var resp turnResponse
	ok := s.sessions.with(id, func(session *engagement.Session) {
		resp.Turn, resp.Status = session.RecordTurn(req.Text)
		resp.Stats = session.Stats()
	})
	if !ok {
		s.writeError(w, http.StatusNotFound, "unknown session")
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

type engagementStatusResponse struct {
	Stats  engagement.Stats  `json:"stats"`
	Status engagement.Status `json:"status"`
}

func (s *Server) handleEngagementStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	var resp engagementStatusResponse
	ok := s.sessions.with(id, func(session *engagement.Session) {
		resp.Stats = session.Stats()
		resp.Status = session.Status()
	})
	if !ok {
		s.writeError(w, http.StatusNotFound, "unknown session")
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// handleEngagementEnd finalizes a session: it reports the closing stats
// and gate status, then drops the session from the registry.
func (s *Server) handleEngagementEnd(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	var resp engagementStatusResponse
	ok := s.sessions.with(id, func(session *engagement.Session) {
		resp.Stats = session.Stats()
		resp.Status = session.Status()
	})
	if !ok {
		s.writeError(w, http.StatusNotFound, "unknown session")
		return
	}
	s.sessions.remove(id)
	s.writeJSON(w, http.StatusOK, resp)
}

type statsResponse struct {
	LLM      store.LLMStats     `json:"llm"`
	Sessions store.SessionStats `json:"sessions"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	llmStats, err := s.stats.LLMStats(r.Context(), "")
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	sessionStats, err := s.stats.SessionStats(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, statsResponse{LLM: llmStats, Sessions: sessionStats})
}
