// Package adapt rewrites reading material to match a learner's CEFR
// level. It drives the external simplification service with an iterative
// refinement loop: request a rewrite targeting the level's Flesch-Kincaid
// band, re-measure with the readability analyzer, and re-prompt with
// corrective guidance until the text lands in the band or the retry
// budget runs out. Results are cached by content hash so repeat requests
// within a session never hit the service twice.
package adapt

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"text/template"

	"github.com/verblevel/verblevel/internal/level"
	"github.com/verblevel/verblevel/internal/llm"
	"github.com/verblevel/verblevel/internal/readability"
)

// Method records how an adaptation result was produced.
type Method string

const (
	// MethodNoneNeeded means the original text already read at or below
	// the target level and was returned unchanged.
	MethodNoneNeeded Method = "none_needed"

	// MethodAIRewrite means the simplification service produced a rewrite
	// that landed inside the target band.
	MethodAIRewrite Method = "ai_rewrite"

	// MethodBestEffort means the retry budget ran out and the last
	// rewrite was accepted despite missing the target band.
	MethodBestEffort Method = "best_effort"

	// MethodServiceUnavailable means the simplification service could not
	// be reached before any rewrite was produced. The original text comes
	// back and the quality score reflects the unmet target.
	MethodServiceUnavailable Method = "service_unavailable"
)

// Result is the outcome of one adaptation request.
type Result struct {
	// Text is the adapted (or original, for none_needed) text.
	Text string `json:"text"`

	// Method records which path produced Text.
	Method Method `json:"method"`

	// QualityScore grades how well Text matches the request, 0–100.
	QualityScore float64 `json:"quality_score"`

	// AchievedLevel is the measured CEFR level of Text.
	AchievedLevel level.CEFR `json:"achieved_level"`

	// Attempts counts rewrites received from the simplification service.
	Attempts int `json:"attempts"`
}

// Config tunes the orchestrator.
type Config struct {
	// MaxRetries bounds corrective re-prompts after the first rewrite.
	MaxRetries int

	// Language names the text's language in the rewrite prompt.
	Language string

	// MaxTokens and Temperature apply to simplification requests.
	MaxTokens   int
	Temperature float64
}

// DefaultConfig returns the calibrated orchestrator defaults.
func DefaultConfig() Config {
	return Config{
		MaxRetries:  3,
		Language:    "English",
		MaxTokens:   1024,
		Temperature: 0.3,
	}
}

// Quality score penalties.
const (
	levelMismatchPenalty = 15
	lengthRatioPenalty   = 20
	minLengthRatio       = 0.7
	maxLengthRatio       = 1.5
)

// Orchestrator adapts text complexity through the simplification service.
// Not safe for concurrent use: the cache is owner-serialized, matching
// the single-session ownership of the rest of the engine.
type Orchestrator struct {
	provider llm.Provider
	cache    Cache
	cfg      Config
	log      *slog.Logger
}

// NewOrchestrator creates an Orchestrator. A nil cache gets a default
// LRU; a nil logger falls back to slog.Default.
func NewOrchestrator(provider llm.Provider, cache Cache, cfg Config, log *slog.Logger) *Orchestrator {
	if cache == nil {
		cache = NewLRU(DefaultCacheCapacity)
	}
	if log == nil {
		log = slog.Default()
	}
	return &Orchestrator{provider: provider, cache: cache, cfg: cfg, log: log}
}

const simplifySystemPrompt = `You are a language-learning content editor. Rewrite texts to a requested reading difficulty while preserving their meaning, facts and tone. Reply with the rewritten text only, no preamble and no commentary.`

var simplifyUserTemplate = template.Must(template.New("simplify").Parse(`Rewrite the following {{.Language}} text for a {{.Target}} (CEFR) learner.
Target a Flesch-Kincaid grade between {{printf "%.0f" .BandMin}} and {{printf "%.0f" .BandMax}}.
Keep the rewrite close to the original length.
{{- if .Guidance}}
{{.Guidance}}
{{- end}}

Text:
{{.Text}}`))

// Adapt rewrites text to the target CEFR level. Text already at or below
// the target is returned unchanged. Repeat calls with the same text and
// target are served from the cache without touching the service. A
// service failure never errors: the learner gets the best available text
// with a degraded quality score. Only an invalid target level fails.
func (o *Orchestrator) Adapt(ctx context.Context, text string, target level.CEFR) (Result, error) {
	if _, err := level.ParseCEFR(string(target)); err != nil {
		return Result{}, err
	}

	original := readability.Analyze(text)
	achieved := level.FromGrade(original.CompositeGradeLevel).CEFR()
	if level.FromGrade(original.CompositeGradeLevel) <= target.Unified() {
		return Result{
			Text:          text,
			Method:        MethodNoneNeeded,
			QualityScore:  100,
			AchievedLevel: achieved,
		}, nil
	}

	key := cacheKey(text, target)
	if cached, ok := o.cache.Get(key); ok {
		return cached, nil
	}

	res, err := o.rewrite(ctx, text, target, original)
	if err != nil {
		return Result{}, err
	}
	// Degraded results are not cached, so a recovered service gets a
	// fresh rewrite on the next request.
	if res.Method != MethodServiceUnavailable {
		o.cache.Put(key, res)
	}
	return res, nil
}

// rewrite runs the refinement loop against the simplification service.
func (o *Orchestrator) rewrite(ctx context.Context, text string, target level.CEFR, original readability.Metrics) (Result, error) {
	if o.provider == nil {
		return o.degrade(text, target, original, "", readability.Metrics{}, 0, &llm.ErrProviderUnavailable{}), nil
	}
	ctx = llm.WithPurpose(ctx, "text-adaptation")
	band := level.KincaidBand(target)

	var (
		lastText    string
		lastMetrics readability.Metrics
		guidance    string
		attempts    int
	)
	for attempt := 0; attempt <= o.cfg.MaxRetries; attempt++ {
		req, err := o.buildRequest(text, target, band, guidance)
		if err != nil {
			return Result{}, err
		}

		resp, err := o.provider.Generate(ctx, req)
		if err != nil {
			return o.degrade(text, target, original, lastText, lastMetrics, attempts, err), nil
		}
		attempts++

		lastText = strings.TrimSpace(string(resp.Content))
		lastMetrics = readability.Analyze(lastText)

		if band.Contains(lastMetrics.FleschKincaidGrade) {
			return o.finish(lastText, target, original, lastMetrics, MethodAIRewrite, attempts), nil
		}

		if lastMetrics.FleschKincaidGrade > band.Max {
			guidance = "The previous rewrite was still too difficult. Use shorter sentences and simpler, more common words."
		} else {
			guidance = "The previous rewrite was too simple. Use somewhat longer sentences and more varied vocabulary."
		}
		o.log.Debug("rewrite outside target band, retrying",
			"target", target,
			"grade", lastMetrics.FleschKincaidGrade,
			"attempt", attempts)
	}

	return o.finish(lastText, target, original, lastMetrics, MethodBestEffort, attempts), nil
}

// degrade absorbs a simplification-service failure so the learner always
// gets text back. A rewrite from an earlier attempt is kept best-effort;
// with no rewrite at all the original text is returned with a quality
// score penalized for the unmet target.
func (o *Orchestrator) degrade(text string, target level.CEFR, original readability.Metrics, lastText string, lastMetrics readability.Metrics, attempts int, cause error) Result {
	o.log.Warn("simplification service unavailable, degrading",
		"target", target,
		"attempts", attempts,
		"error", cause)
	if lastText != "" {
		return o.finish(lastText, target, original, lastMetrics, MethodBestEffort, attempts)
	}
	return o.finish(text, target, original, original, MethodServiceUnavailable, attempts)
}

func (o *Orchestrator) buildRequest(text string, target level.CEFR, band level.Band, guidance string) (llm.Request, error) {
	var buf bytes.Buffer
	err := simplifyUserTemplate.Execute(&buf, struct {
		Language string
		Target   level.CEFR
		BandMin  float64
		BandMax  float64
		Guidance string
		Text     string
	}{
		Language: o.cfg.Language,
		Target:   target,
		BandMin:  band.Min,
		BandMax:  band.Max,
		Guidance: guidance,
		Text:     text,
	})
	if err != nil {
		return llm.Request{}, fmt.Errorf("building simplification prompt: %w", err)
	}
	return llm.Request{
		System:      simplifySystemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: buf.String()}},
		MaxTokens:   o.cfg.MaxTokens,
		Temperature: o.cfg.Temperature,
	}, nil
}

func (o *Orchestrator) finish(text string, target level.CEFR, original, adapted readability.Metrics, method Method, attempts int) Result {
	achieved := level.FromGrade(adapted.CompositeGradeLevel).CEFR()
	return Result{
		Text:          text,
		Method:        method,
		QualityScore:  qualityScore(target, achieved, original, adapted),
		AchievedLevel: achieved,
		Attempts:      attempts,
	}
}

// qualityScore grades an adapted text: full marks at the target level and
// near-original length, penalized per unified level of mismatch and for
// drifting outside the acceptable length ratio.
func qualityScore(target, achieved level.CEFR, original, adapted readability.Metrics) float64 {
	score := 100.0

	mismatch := int(achieved.Unified()) - int(target.Unified())
	if mismatch < 0 {
		mismatch = -mismatch
	}
	score -= float64(mismatch * levelMismatchPenalty)

	if original.WordCount > 0 {
		ratio := float64(adapted.WordCount) / float64(original.WordCount)
		if ratio < minLengthRatio || ratio > maxLengthRatio {
			score -= lengthRatioPenalty
		}
	}

	if score < 0 {
		return 0
	}
	return score
}
