package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/verblevel/verblevel/internal/adapt"
	"github.com/verblevel/verblevel/internal/level"
	"github.com/verblevel/verblevel/internal/llm"
	"github.com/verblevel/verblevel/internal/store"
)

var adaptCmd = &cobra.Command{
	Use:   "adapt [file]",
	Short: "Rewrite text to a target CEFR level",
	Long:  "Reads the given file (or stdin when omitted) and rewrites it for the target\nlevel using the configured AI provider, verifying the result's readability.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		levelStr, _ := cmd.Flags().GetString("level")
		target, err := level.ParseCEFR(levelStr)
		if err != nil {
			return err
		}

		text, err := readInput(args)
		if err != nil {
			return err
		}

		engCfg, err := loadEngineConfig(cmd)
		if err != nil {
			return err
		}

		llmCfg, ok := llm.DiscoverConfig()
		if !ok {
			return fmt.Errorf("no AI provider configured; set VERBLEVEL_LLM_PROVIDER and an API key")
		}

		dbPath, err := resolveDBPath(cmd)
		if err != nil {
			return fmt.Errorf("resolve database path: %w", err)
		}
		st, err := store.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open event log: %w", err)
		}
		defer st.Close()

		provider, err := llm.NewProvider(ctx, llmCfg, st.EventRepo())
		if err != nil {
			return fmt.Errorf("configure AI provider: %w", err)
		}

		cache := adapt.NewLRU(engCfg.Adaptation.CacheCapacity)
		o := adapt.NewOrchestrator(provider, cache, engCfg.AdaptConfig(), nil)
		res, err := o.Adapt(ctx, text, target)
		if err != nil {
			return err
		}

		fmt.Println(res.Text)
		fmt.Fprintf(os.Stderr, "method=%s achieved=%s quality=%.0f attempts=%d\n",
			res.Method, res.AchievedLevel, res.QualityScore, res.Attempts)
		return nil
	},
}

func init() {
	adaptCmd.Flags().String("level", "A2", "Target CEFR level (A1-C2)")
}
