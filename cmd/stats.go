package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/verblevel/verblevel/internal/store"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregate scoring and AI usage statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		dbPath, err := resolveDBPath(cmd)
		if err != nil {
			return fmt.Errorf("resolve database path: %w", err)
		}
		s, err := store.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer s.Close()

		ctx := cmd.Context()
		sessions, err := s.StatsRepo().SessionStats(ctx)
		if err != nil {
			return fmt.Errorf("aggregate sessions: %w", err)
		}
		llmStats, err := s.StatsRepo().LLMStats(ctx, "")
		if err != nil {
			return fmt.Errorf("aggregate AI calls: %w", err)
		}

		fmt.Println("Sessions")
		fmt.Printf("  Scored:         %d\n", sessions.Sessions)
		if sessions.Sessions > 0 {
			fmt.Printf("  Average score:  %.1f\n", sessions.AvgScore)
			fmt.Printf("  Fallback rate:  %.1f%%\n", sessions.FallbackRate*100)
			fmt.Printf("  First recorded: %s\n", sessions.FirstRecorded.Local().Format("2006-01-02 15:04:05"))
			fmt.Printf("  Last recorded:  %s\n", sessions.LastRecorded.Local().Format("2006-01-02 15:04:05"))
		}

		fmt.Println("AI calls")
		fmt.Printf("  Total:          %d\n", llmStats.TotalCalls)
		fmt.Printf("  Failed:         %d\n", llmStats.FailedCalls)
		fmt.Printf("  Tokens:         %d in / %d out\n", llmStats.InputTokens, llmStats.OutputTokens)
		return nil
	},
}
