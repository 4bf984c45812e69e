package assessment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/verblevel/verblevel/internal/difficulty"
	"github.com/verblevel/verblevel/internal/level"
	"github.com/verblevel/verblevel/internal/llm"
	"github.com/verblevel/verblevel/internal/readability"
)

// Config tunes the scorer.
type Config struct {
	// MaxTokens and Temperature apply to AI evaluation requests.
	MaxTokens   int
	Temperature float64

	// AppropriatenessBonus is added to a question's score when the AI
	// judges the answer's complexity appropriate for the learner's level.
	AppropriatenessBonus float64

	// PassingScore is the threshold above which a scored free-text or
	// speaking answer counts as correct for difficulty adaptation.
	PassingScore float64

	// SpeakingMinDurationSeconds is the minimum recording length applied
	// to speaking questions that don't declare their own.
	SpeakingMinDurationSeconds float64
}

// DefaultConfig returns the calibrated scorer defaults.
func DefaultConfig() Config {
	return Config{
		MaxTokens:                  512,
		Temperature:                0.2,
		AppropriatenessBonus:       5,
		PassingScore:               60,
		SpeakingMinDurationSeconds: 30,
	}
}

// Scorer fuses per-question evaluations into a SessionScore.
// If provider is nil, free-text questions always use the local heuristic.
type Scorer struct {
	provider llm.Provider
	cfg      Config
	log      *slog.Logger
}

// NewScorer creates a Scorer with the given AI provider and config.
func NewScorer(provider llm.Provider, cfg Config, log *slog.Logger) *Scorer {
	if log == nil {
		log = slog.Default()
	}
	return &Scorer{provider: provider, cfg: cfg, log: log}
}

// ScoreSession scores a complete submitted session. questions and answers
// are parallel slices; a missing answer counts as skipped. The returned
// SessionScore is fully assembled before being handed out — no partial
// state is visible to callers that abandon the context.
func (s *Scorer) ScoreSession(ctx context.Context, sessionID string, learnerLevel level.CEFR, questions []Question, answers []Answer) (*SessionScore, error) {
	if len(questions) == 0 {
		return nil, fmt.Errorf("no questions to score")
	}

	evals := make([]Evaluation, 0, len(questions))
	diffState := difficulty.State{SessionID: sessionID, Value: float64(learnerLevel.Unified())}
	var fallbackIdx []int

	for i, q := range questions {
		var ans Answer
		if i < len(answers) {
			ans = answers[i]
		} else {
			ans.Skipped = true
		}

		ev := s.evaluate(ctx, q, ans, learnerLevel)
		if ev.Source == SourceHeuristic {
			fallbackIdx = append(fallbackIdx, q.Index)
		}
		evals = append(evals, ev)

		diffState = difficulty.Next(diffState, s.countsCorrect(ev), ans.ResponseTimeSeconds)
	}

	overall := meanScore(evals)
	cefr := s.sessionLevel(evals, overall)

	return &SessionScore{
		SessionID:         sessionID,
		OverallScore:      overall,
		SkillScores:       foldSkills(evals),
		UnifiedLevel:      cefr.Unified(),
		CEFRLevel:         cefr,
		Questions:         evals,
		FinalDifficulty:   diffState.Value,
		FallbackQuestions: fallbackIdx,
	}, nil
}

// evaluate scores one question by its type's strategy.
func (s *Scorer) evaluate(ctx context.Context, q Question, ans Answer, learnerLevel level.CEFR) Evaluation {
	ev := Evaluation{
		QuestionIndex:       q.Index,
		Type:                q.Type,
		UserAnswer:          ans.Text,
		SkillTags:           q.SkillTags,
		ResponseTimeSeconds: ans.ResponseTimeSeconds,
	}

	if ans.Skipped || (strings.TrimSpace(ans.Text) == "" && q.Type != Speaking) {
		ev.Skipped = true
		ev.Source = SourceExact
		return ev
	}

	switch q.Type {
	case MultipleChoice, TrueFalse, Listening:
		correct := strings.EqualFold(strings.TrimSpace(ans.Text), strings.TrimSpace(q.Answer))
		ev.IsCorrect = &correct
		if correct {
			ev.Score = 100
		}
		ev.Source = SourceExact

	case FillBlank:
		correct := matchesAccepted(ans.Text, q)
		ev.IsCorrect = &correct
		if correct {
			ev.Score = 100
		}
		ev.Source = SourceExact

	case Essay, ShortAnswer:
		s.evaluateFreeText(ctx, q, ans, learnerLevel, &ev)

	case Speaking:
		minDur := q.MinDurationSeconds
		if minDur <= 0 {
			minDur = s.cfg.SpeakingMinDurationSeconds
		}
		ev.Score = speakingScore(ans.RecordedDurationSeconds, minDur)
		ev.Source = SourceDuration

	default:
		// Question types are validated at the boundary; reaching here is
		// a programmer error.
		panic(fmt.Sprintf("unhandled question type: %q", q.Type))
	}

	return ev
}

// evaluateFreeText delegates to the external AI assessment, repairing
// malformed output and falling back to the local heuristic on failure.
func (s *Scorer) evaluateFreeText(ctx context.Context, q Question, ans Answer, learnerLevel level.CEFR, ev *Evaluation) {
	ai, source := s.assessWithAI(ctx, q, ans.Text, learnerLevel)
	if ai == nil {
		ev.Score = heuristicScore(q, ans.Text, learnerLevel)
		ev.Source = SourceHeuristic
		correct := ev.Score >= s.cfg.PassingScore
		ev.IsCorrect = &correct
		return
	}

	score := ai.OverallScore
	if ai.Appropriateness == Appropriate {
		score = clampScore(score + s.cfg.AppropriatenessBonus)
	}

	ev.AI = ai
	ev.Score = score
	ev.Source = source
	correct := score >= s.cfg.PassingScore
	ev.IsCorrect = &correct
}

// assessWithAI runs the external call and the repair path. Returns nil
// when AI scoring is unavailable entirely.
func (s *Scorer) assessWithAI(ctx context.Context, q Question, answerText string, learnerLevel level.CEFR) (*AIAssessment, ScoreSource) {
	if s.provider == nil {
		return nil, SourceHeuristic
	}

	metrics := readability.Analyze(answerText)
	req, err := buildAssessmentRequest(q, answerText, learnerLevel, &metrics, s.cfg)
	if err != nil {
		s.log.Warn("building assessment request failed", "question", q.Index, "error", err)
		return nil, SourceHeuristic
	}

	resp, err := s.provider.Generate(llm.WithPurpose(ctx, "answer-eval"), req)
	if err == nil {
		ai, perr := ParseAssessment(resp.Content)
		if perr == nil {
			return ai, SourceAI
		}
		err = &llm.ErrInvalidResponse{Content: resp.Content, Err: perr}
	}

	// Never surface AI failures to the learner; log and degrade.
	s.log.Warn("AI assessment failed", "question", q.Index, "error", err)

	var inv *llm.ErrInvalidResponse
	if errors.As(err, &inv) && len(inv.Content) > 0 {
		if ai, ok := RepairAssessment(string(inv.Content)); ok {
			return ai, SourceAIRepaired
		}
	}
	return nil, SourceHeuristic
}

// countsCorrect maps an evaluation onto the controller's binary signal.
func (s *Scorer) countsCorrect(ev Evaluation) bool {
	if ev.Skipped {
		return false
	}
	if ev.IsCorrect != nil {
		return *ev.IsCorrect
	}
	return ev.Score >= s.cfg.PassingScore
}

// speakingScore is a duration-based placeholder for a full audio scoring
// path: proportional credit against the minimum duration, floored at 30
// for any attempt.
func speakingScore(recorded, minDuration float64) float64 {
	if recorded <= 0 {
		return 0
	}
	if minDuration <= 0 {
		// A zero-value Config still scores sanely.
		minDuration = 30
	}
	score := recorded / minDuration * 100
	if score > 100 {
		score = 100
	}
	if score < 30 {
		score = 30
	}
	return score
}

func matchesAccepted(answer string, q Question) bool {
	got := strings.ToLower(strings.TrimSpace(answer))
	accepted := q.AcceptedAnswers
	if len(accepted) == 0 {
		accepted = []string{q.Answer}
	}
	for _, a := range accepted {
		if got == strings.ToLower(strings.TrimSpace(a)) {
			return true
		}
	}
	return false
}

// meanScore averages all question scores; skipped questions count as 0.
func meanScore(evals []Evaluation) float64 {
	if len(evals) == 0 {
		return 0
	}
	sum := 0.0
	for _, e := range evals {
		sum += e.Score
	}
	return sum / float64(len(evals))
}

// foldSkills builds the per-skill averages. AI skill breakdowns feed the
// five named dimensions; questions without one credit their declared
// skill tags with the question's overall score. Skills with no
// contributing questions are omitted rather than reported as 0.
func foldSkills(evals []Evaluation) map[string]float64 {
	sums := map[string]float64{}
	counts := map[string]int{}

	credit := func(skill string, score float64) {
		sums[skill] += score
		counts[skill]++
	}

	for _, e := range evals {
		if e.Skipped {
			continue
		}
		if e.AI != nil {
			credit("grammar", e.AI.Skills.Grammar)
			credit("vocabulary", e.AI.Skills.Vocabulary)
			credit("fluency", e.AI.Skills.Fluency)
			credit("accuracy", e.AI.Skills.Accuracy)
			credit("relevance", e.AI.Skills.Relevance)
			continue
		}
		for _, tag := range e.SkillTags {
			credit(tag, e.Score)
		}
	}

	out := make(map[string]float64, len(sums))
	for skill, sum := range sums {
		out[skill] = sum / float64(counts[skill])
	}
	return out
}

// sessionLevel derives the session CEFR level: majority vote of AI-reported
// levels when any exist (ties go to the higher level), otherwise the direct
// score→level mapping.
func (s *Scorer) sessionLevel(evals []Evaluation, overall float64) level.CEFR {
	votes := map[level.CEFR]int{}
	for _, e := range evals {
		if e.AI != nil {
			votes[e.AI.CEFRLevel]++
		}
	}
	if len(votes) == 0 {
		return level.FromScore(overall)
	}

	best := level.A1
	bestVotes := 0
	for _, l := range []level.CEFR{level.A1, level.A2, level.B1, level.B2, level.C1, level.C2} {
		if votes[l] >= bestVotes && votes[l] > 0 {
			best = l
			bestVotes = votes[l]
		}
	}
	return best
}
