// Package config loads the engine's tunables from an optional YAML file
// with environment overrides. Every key has a default, so the engine runs
// with no config file at all; LLM provider credentials are handled
// separately by the llm package's env config.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/verblevel/verblevel/internal/adapt"
	"github.com/verblevel/verblevel/internal/assessment"
	"github.com/verblevel/verblevel/internal/engagement"
)

// Config is the file-tunable engine configuration.
type Config struct {
	Engagement EngagementConfig `mapstructure:"engagement"`
	Scoring    ScoringConfig    `mapstructure:"scoring"`
	Adaptation AdaptationConfig `mapstructure:"adaptation"`

	// Topics maps topic names to their keyword lists, used by both the
	// engagement scorer's relevance dimension and the heuristic fallback.
	Topics map[string][]string `mapstructure:"topics"`
}

// EngagementConfig tunes the conversation gate and per-turn blend.
type EngagementConfig struct {
	MinTurns           int     `mapstructure:"min_turns"`
	MinDurationSeconds float64 `mapstructure:"min_duration_seconds"`
	MinEngagement      float64 `mapstructure:"min_engagement"`

	WeightLength    float64 `mapstructure:"weight_length"`
	WeightDiversity float64 `mapstructure:"weight_diversity"`
	WeightGrammar   float64 `mapstructure:"weight_grammar"`
	WeightRelevance float64 `mapstructure:"weight_relevance"`
}

// ScoringConfig tunes the session scorer.
type ScoringConfig struct {
	MaxTokens            int     `mapstructure:"max_tokens"`
	Temperature          float64 `mapstructure:"temperature"`
	AppropriatenessBonus float64 `mapstructure:"appropriateness_bonus"`
	PassingScore         float64 `mapstructure:"passing_score"`

	// SpeakingMinDurationSeconds is the default minimum recording length
	// for speaking questions that don't declare their own.
	SpeakingMinDurationSeconds float64 `mapstructure:"speaking_min_duration_seconds"`
}

// AdaptationConfig tunes the text complexity orchestrator.
type AdaptationConfig struct {
	MaxRetries    int     `mapstructure:"max_retries"`
	Language      string  `mapstructure:"language"`
	MaxTokens     int     `mapstructure:"max_tokens"`
	Temperature   float64 `mapstructure:"temperature"`
	CacheCapacity int     `mapstructure:"cache_capacity"`
}

// Load reads the engine config, applies VERBLEVEL_* env overrides and
// falls back to defaults for anything unset. With an empty path it
// searches verblevel.yaml in the working directory, $HOME/.config/verblevel
// and /etc/verblevel; a missing config file is not an error.
func Load(path string) (Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("VERBLEVEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("verblevel")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/verblevel")
		v.AddConfigPath("/etc/verblevel")
	}
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Default returns the built-in configuration without touching the
// filesystem or environment.
func Default() Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	// Unmarshal over pure defaults cannot fail.
	_ = v.Unmarshal(&cfg)
	return cfg
}

func setDefaults(v *viper.Viper) {
	req := engagement.DefaultRequirement()
	v.SetDefault("engagement.min_turns", req.MinTurns)
	v.SetDefault("engagement.min_duration_seconds", req.MinDurationSeconds)
	v.SetDefault("engagement.min_engagement", req.MinEngagement)

	w := engagement.DefaultWeights()
	v.SetDefault("engagement.weight_length", w.Length)
	v.SetDefault("engagement.weight_diversity", w.Diversity)
	v.SetDefault("engagement.weight_grammar", w.Grammar)
	v.SetDefault("engagement.weight_relevance", w.Relevance)

	sc := assessment.DefaultConfig()
	v.SetDefault("scoring.max_tokens", sc.MaxTokens)
	v.SetDefault("scoring.temperature", sc.Temperature)
	v.SetDefault("scoring.appropriateness_bonus", sc.AppropriatenessBonus)
	v.SetDefault("scoring.passing_score", sc.PassingScore)
	v.SetDefault("scoring.speaking_min_duration_seconds", sc.SpeakingMinDurationSeconds)

	ac := adapt.DefaultConfig()
	v.SetDefault("adaptation.max_retries", ac.MaxRetries)
	v.SetDefault("adaptation.language", ac.Language)
	v.SetDefault("adaptation.max_tokens", ac.MaxTokens)
	v.SetDefault("adaptation.temperature", ac.Temperature)
	v.SetDefault("adaptation.cache_capacity", adapt.DefaultCacheCapacity)
}

// EngagementRequirement converts the config block into the engagement
// package's gate requirement.
func (c Config) EngagementRequirement() engagement.Requirement {
	return engagement.Requirement{
		MinTurns:           c.Engagement.MinTurns,
		MinDurationSeconds: c.Engagement.MinDurationSeconds,
		MinEngagement:      c.Engagement.MinEngagement,
	}
}

// EngagementWeights converts the config block into the per-turn blend.
func (c Config) EngagementWeights() engagement.Weights {
	return engagement.Weights{
		Length:    c.Engagement.WeightLength,
		Diversity: c.Engagement.WeightDiversity,
		Grammar:   c.Engagement.WeightGrammar,
		Relevance: c.Engagement.WeightRelevance,
	}
}

// ScorerConfig converts the config block into the assessment scorer's
// tuning.
func (c Config) ScorerConfig() assessment.Config {
	return assessment.Config{
		MaxTokens:                  c.Scoring.MaxTokens,
		Temperature:                c.Scoring.Temperature,
		AppropriatenessBonus:       c.Scoring.AppropriatenessBonus,
		PassingScore:               c.Scoring.PassingScore,
		SpeakingMinDurationSeconds: c.Scoring.SpeakingMinDurationSeconds,
	}
}

// AdaptConfig converts the config block into the orchestrator's tuning.
func (c Config) AdaptConfig() adapt.Config {
	return adapt.Config{
		MaxRetries:  c.Adaptation.MaxRetries,
		Language:    c.Adaptation.Language,
		MaxTokens:   c.Adaptation.MaxTokens,
		Temperature: c.Adaptation.Temperature,
	}
}

// TopicKeywords returns the keyword list for topic, nil when the topic is
// unknown so relevance scoring stays neutral.
func (c Config) TopicKeywords(topic string) []string {
	if topic == "" {
		return nil
	}
	return c.Topics[strings.ToLower(topic)]
}
