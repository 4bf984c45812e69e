package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/verblevel/verblevel/internal/adapt"
	"github.com/verblevel/verblevel/internal/assessment"
	"github.com/verblevel/verblevel/internal/engagement"
)

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if got, want := cfg.EngagementRequirement(), engagement.DefaultRequirement(); got != want {
		t.Errorf("engagement requirement = %+v, want %+v", got, want)
	}
	if got, want := cfg.EngagementWeights(), engagement.DefaultWeights(); got != want {
		t.Errorf("engagement weights = %+v, want %+v", got, want)
	}
	if got, want := cfg.ScorerConfig(), assessment.DefaultConfig(); got != want {
		t.Errorf("scorer config = %+v, want %+v", got, want)
	}
	if got, want := cfg.AdaptConfig(), adapt.DefaultConfig(); got != want {
		t.Errorf("adapt config = %+v, want %+v", got, want)
	}
	if cfg.Adaptation.CacheCapacity != adapt.DefaultCacheCapacity {
		t.Errorf("cache capacity = %d, want %d", cfg.Adaptation.CacheCapacity, adapt.DefaultCacheCapacity)
	}
	if cfg.Scoring.SpeakingMinDurationSeconds != 30 {
		t.Errorf("speaking min duration = %f, want 30", cfg.Scoring.SpeakingMinDurationSeconds)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "verblevel.yaml")
	content := `
engagement:
  min_turns: 5
  min_engagement: 60
scoring:
  passing_score: 70
  speaking_min_duration_seconds: 45
adaptation:
  max_retries: 1
  language: Spanish
topics:
  travel:
    - trip
    - flight
    - hotel
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Engagement.MinTurns != 5 {
		t.Errorf("min_turns = %d, want 5", cfg.Engagement.MinTurns)
	}
	if cfg.Engagement.MinEngagement != 60 {
		t.Errorf("min_engagement = %f, want 60", cfg.Engagement.MinEngagement)
	}
	// Unset keys keep their defaults.
	if want := engagement.DefaultRequirement().MinDurationSeconds; cfg.Engagement.MinDurationSeconds != want {
		t.Errorf("min_duration_seconds = %f, want default %f", cfg.Engagement.MinDurationSeconds, want)
	}
	if cfg.Scoring.PassingScore != 70 {
		t.Errorf("passing_score = %f, want 70", cfg.Scoring.PassingScore)
	}
	if got := cfg.ScorerConfig().SpeakingMinDurationSeconds; got != 45 {
		t.Errorf("scorer speaking min duration = %f, want 45", got)
	}
	if cfg.Adaptation.MaxRetries != 1 || cfg.Adaptation.Language != "Spanish" {
		t.Errorf("adaptation = %+v, want retries 1 / Spanish", cfg.Adaptation)
	}

	keywords := cfg.TopicKeywords("travel")
	if len(keywords) != 3 || keywords[0] != "trip" {
		t.Errorf("travel keywords = %v, want [trip flight hotel]", keywords)
	}
	if cfg.TopicKeywords("") != nil {
		t.Error("empty topic should have no keywords")
	}
	if cfg.TopicKeywords("unknown") != nil {
		t.Error("unknown topic should have no keywords")
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("VERBLEVEL_ENGAGEMENT_MIN_TURNS", "3")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Engagement.MinTurns != 3 {
		t.Errorf("min_turns = %d, want env override 3", cfg.Engagement.MinTurns)
	}
}
