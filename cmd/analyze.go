package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/verblevel/verblevel/internal/level"
	"github.com/verblevel/verblevel/internal/readability"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [file]",
	Short: "Analyze text readability and map it to a proficiency level",
	Long:  "Reads the given file (or stdin when omitted) and prints readability metrics\nwith the derived unified and CEFR levels.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readInput(args)
		if err != nil {
			return err
		}

		m := readability.Analyze(text)
		unified := level.FromGrade(m.CompositeGradeLevel)

		fmt.Printf("Sentences:            %d\n", m.SentenceCount)
		fmt.Printf("Words:                %d\n", m.WordCount)
		fmt.Printf("Syllables:            %d\n", m.SyllableCount)
		fmt.Printf("Flesch Reading Ease:  %.1f\n", m.FleschReadingEase)
		fmt.Printf("Flesch-Kincaid Grade: %.1f\n", m.FleschKincaidGrade)
		fmt.Printf("Composite Grade:      %.1f\n", m.CompositeGradeLevel)
		fmt.Printf("Unified Level:        %d\n", unified)
		fmt.Printf("CEFR Level:           %s\n", unified.CEFR())
		return nil
	},
}

// readInput returns the contents of the file argument, or stdin when no
// argument is given.
func readInput(args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("read %s: %w", args[0], err)
	}
	return strings.TrimSpace(string(data)), nil
}
