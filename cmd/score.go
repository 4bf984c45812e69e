package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/verblevel/verblevel/internal/assessment"
	"github.com/verblevel/verblevel/internal/level"
	"github.com/verblevel/verblevel/internal/llm"
	"github.com/verblevel/verblevel/internal/store"
)

// scoreInput is the session file format: the submitted questions and
// answers plus the learner's declared level.
type scoreInput struct {
	SessionID    string                `json:"session_id"`
	LearnerLevel string                `json:"learner_level"`
	Questions    []assessment.Question `json:"questions"`
	Answers      []assessment.Answer   `json:"answers"`
}

var scoreCmd = &cobra.Command{
	Use:   "score <session.json>",
	Short: "Score a submitted assessment session",
	Long: "Reads a session file with questions, answers and the learner's declared CEFR\n" +
		"level, scores it (using the configured AI provider for free-text answers, with\n" +
		"a local heuristic fallback) and prints the SessionScore as JSON.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read session file: %w", err)
		}
		var in scoreInput
		if err := json.Unmarshal(data, &in); err != nil {
			return fmt.Errorf("parse session file: %w", err)
		}
		learnerLevel, err := level.ParseCEFR(in.LearnerLevel)
		if err != nil {
			return err
		}

		engCfg, err := loadEngineConfig(cmd)
		if err != nil {
			return err
		}

		var provider llm.Provider
		var eventRepo store.EventRepo
		if llmCfg, ok := llm.DiscoverConfig(); ok {
			dbPath, err := resolveDBPath(cmd)
			if err != nil {
				return fmt.Errorf("resolve database path: %w", err)
			}
			st, err := store.Open(dbPath)
			if err != nil {
				return fmt.Errorf("open event log: %w", err)
			}
			defer st.Close()
			eventRepo = st.EventRepo()

			provider, err = llm.NewProvider(ctx, llmCfg, eventRepo)
			if err != nil {
				return fmt.Errorf("configure AI provider: %w", err)
			}
		} else {
			fmt.Fprintln(os.Stderr, "No AI provider configured; free-text answers use the heuristic fallback.")
		}

		scorer := assessment.NewScorer(provider, engCfg.ScorerConfig(), nil)
		score, err := scorer.ScoreSession(ctx, in.SessionID, learnerLevel, in.Questions, in.Answers)
		if err != nil {
			return err
		}

		if eventRepo != nil {
			event := store.SessionScoreEventData{
				SessionID:       score.SessionID,
				OverallScore:    score.OverallScore,
				CEFRLevel:       string(score.CEFRLevel),
				QuestionCount:   len(score.Questions),
				FallbackCount:   len(score.FallbackQuestions),
				FinalDifficulty: score.FinalDifficulty,
			}
			if err := eventRepo.AppendSessionScore(ctx, event); err != nil {
				fmt.Fprintln(os.Stderr, "warning: recording session score:", err)
			}
		}

		out, err := json.MarshalIndent(score, "", "  ")
		if err != nil {
			return fmt.Errorf("encode score: %w", err)
		}
		fmt.Println(string(out))
		return nil
	},
}
