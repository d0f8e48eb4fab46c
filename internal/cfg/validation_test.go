package cfg

import (
	"errors"
	"testing"
	"time"

	"ai-detector/internal/common"
	"ai-detector/internal/heuristic"
)

// createValidSettings creates a valid Settings struct for testing
func createValidSettings() *Settings {
	return &Settings{
		ModelPath: "models/model.json",
		DataPath:  "data",
		Oracle: OracleSettings{
			Kind:     common.OracleREST,
			URL:      "http://localhost:8081",
			Model:    "distilgpt2",
			Timeout:  10 * time.Second,
			RPS:      5,
			CacheTTL: 10 * time.Minute,
		},
		POSTagger:          true,
		TopK:               10,
		ValidationFraction: 0.2,
		TrainSeed:          42,
		Parallelism:        4,
		MetricsPort:        9090,
		LogLevel:           "info",
		Heuristic:          heuristic.DefaultConfig(),
	}
}

func TestValidateSettings_ValidConfig(t *testing.T) {
	settings := createValidSettings()

	if err := validateSettings(settings); err != nil {
		t.Errorf("Expected valid config to pass, got error: %v", err)
	}
}

func TestValidateSettings(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(s *Settings)
		wantErr bool
	}{
		{"empty model path", func(s *Settings) { s.ModelPath = " " }, true},
		{"oracle none without URL", func(s *Settings) { s.Oracle.Kind = common.OracleNone; s.Oracle.URL = "" }, false},
		{"rest oracle without URL", func(s *Settings) { s.Oracle.URL = "" }, true},
		{"openai oracle without URL", func(s *Settings) { s.Oracle.Kind = common.OracleOpenAI; s.Oracle.URL = "" }, false},
		{"openai oracle without model", func(s *Settings) { s.Oracle.Kind = common.OracleOpenAI; s.Oracle.Model = "" }, true},
		{"unknown oracle kind", func(s *Settings) { s.Oracle.Kind = "grpc" }, true},
		{"oracle timeout too short", func(s *Settings) { s.Oracle.Timeout = 10 * time.Millisecond }, true},
		{"oracle timeout too long", func(s *Settings) { s.Oracle.Timeout = time.Hour }, true},
		{"negative RPS", func(s *Settings) { s.Oracle.RPS = -1 }, true},
		{"unlimited RPS", func(s *Settings) { s.Oracle.RPS = 0 }, false},
		{"negative cache TTL", func(s *Settings) { s.Oracle.CacheTTL = -time.Second }, true},
		{"zero top K", func(s *Settings) { s.TopK = 0 }, true},
		{"zero parallelism", func(s *Settings) { s.Parallelism = 0 }, true},
		{"metrics disabled", func(s *Settings) { s.MetricsPort = 0 }, false},
		{"metrics port too low", func(s *Settings) { s.MetricsPort = 80 }, true},
		{"metrics port too high", func(s *Settings) { s.MetricsPort = 70000 }, true},
		{"validation fraction zero", func(s *Settings) { s.ValidationFraction = 0 }, true},
		{"validation fraction one", func(s *Settings) { s.ValidationFraction = 1 }, true},
		{"unknown log level", func(s *Settings) { s.LogLevel = "verbose" }, true},
		{"upper case log level", func(s *Settings) { s.LogLevel = "DEBUG" }, false},
		{"heuristic weights off", func(s *Settings) { s.Heuristic.StructureWeight = 0.2 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := createValidSettings()
			tt.mutate(settings)

			err := validateSettings(settings)
			if tt.wantErr && err == nil {
				t.Error("expected error but got none")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidateSettings_HeuristicErrorIsWrapped(t *testing.T) {
	settings := createValidSettings()
	settings.Heuristic.VocabularyWeight = 0.9

	err := validateSettings(settings)
	if !errors.Is(err, heuristic.ErrInvalidConfig) {
		t.Errorf("expected heuristic.ErrInvalidConfig, got %v", err)
	}
}
