package assessment

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/verblevel/verblevel/internal/level"
	"github.com/verblevel/verblevel/internal/llm"
	"github.com/verblevel/verblevel/internal/readability"
)

// AssessmentSchema constrains the AI's free-text evaluation output.
var AssessmentSchema = &llm.Schema{
	Name:        "answer-assessment",
	Description: "Evaluation of a language learner's free-text answer",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"overall_score": map[string]any{
				"type":        "number",
				"description": "Overall answer quality, 0-100",
			},
			"cefr_level": map[string]any{
				"type": "string",
				"enum": []any{"A1", "A2", "B1", "B2", "C1", "C2"},
			},
			"skill_breakdown": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"grammar":    map[string]any{"type": "number"},
					"vocabulary": map[string]any{"type": "number"},
					"fluency":    map[string]any{"type": "number"},
					"accuracy":   map[string]any{"type": "number"},
					"relevance":  map[string]any{"type": "number"},
				},
				"required": []any{"grammar", "vocabulary", "fluency", "accuracy", "relevance"},
			},
			"flesch_kincaid_score": map[string]any{
				"type":        "number",
				"description": "Estimated Flesch-Kincaid grade of the answer",
			},
			"complexity_appropriateness": map[string]any{
				"type": "string",
				"enum": []any{"appropriate", "too_simple", "too_complex"},
			},
			"feedback": map[string]any{
				"type":        "string",
				"description": "One or two sentences of learner-facing feedback",
			},
			"error_examples": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
		},
		"required": []any{"overall_score", "cefr_level", "skill_breakdown", "complexity_appropriateness"},
	},
}

const assessmentSystemPrompt = `You are an expert language proficiency assessor. Evaluate the learner's answer to the question.

Instructions:
- Score each skill dimension 0-100 independently.
- Judge complexity_appropriateness against the learner's declared level: "appropriate" when the answer's language complexity fits the level, "too_simple" or "too_complex" otherwise.
- Keep feedback to two sentences, addressed to the learner.
- List at most three error examples, quoting the learner's own words.`

var assessmentUserTemplate = template.Must(template.New("assessment").Parse(`Question: {{.Question}}
{{if .Context}}Expected answer or context: {{.Context}}
{{end}}Learner level: {{.Level}}
Learner's answer: {{.Answer}}
{{if .HasMetrics}}
Measured readability of the answer: {{.Metrics.WordCount}} words, {{.Metrics.SentenceCount}} sentences, Flesch-Kincaid grade {{printf "%.1f" .Metrics.FleschKincaidGrade}}.
{{end}}`))

type assessmentPromptData struct {
	Question   string
	Context    string
	Level      level.CEFR
	Answer     string
	HasMetrics bool
	Metrics    readability.Metrics
}

// buildAssessmentRequest assembles the AI evaluation request for one
// free-text answer. Readability metrics of the answer, when available, are
// passed as additional prompt context.
func buildAssessmentRequest(q Question, answerText string, learnerLevel level.CEFR, metrics *readability.Metrics, cfg Config) (llm.Request, error) {
	data := assessmentPromptData{
		Question: q.Prompt,
		Context:  q.Answer,
		Level:    learnerLevel,
		Answer:   answerText,
	}
	if metrics != nil && metrics.WordCount > 0 {
		data.HasMetrics = true
		data.Metrics = *metrics
	}

	var buf bytes.Buffer
	if err := assessmentUserTemplate.Execute(&buf, data); err != nil {
		return llm.Request{}, fmt.Errorf("build assessment prompt: %w", err)
	}

	return llm.Request{
		System: assessmentSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buf.String()},
		},
		Schema:      AssessmentSchema,
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
	}, nil
}
