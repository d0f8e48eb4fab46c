package cfg

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-detector/internal/common"
	"ai-detector/internal/heuristic"
)

var configKeys = []string{
	common.EnvConfigFile,
	common.EnvModelPath,
	common.EnvDataPath,
	common.EnvOracleKind,
	common.EnvOracleURL,
	common.EnvOracleAPIKey,
	common.EnvOracleModel,
	common.EnvOracleTimeout,
	common.EnvOracleRPS,
	common.EnvOracleCacheTTL,
	common.EnvPOSTagger,
	common.EnvTopK,
	common.EnvValidationFraction,
	common.EnvTrainSeed,
	common.EnvParallelism,
	common.EnvMetricsPort,
	common.EnvLogLevel,
}

// clearTestEnv blanks every configuration variable for the duration of the test.
func clearTestEnv(t *testing.T) {
	t.Helper()
	for _, key := range configKeys {
		t.Setenv(key, "")
	}
}

func TestLoadFromEnv(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		wantErr  bool
		validate func(t *testing.T, settings Settings)
	}{
		{
			name:    "defaults",
			envVars: map[string]string{},
			validate: func(t *testing.T, settings Settings) {
				assert.Equal(t, common.DefaultModelPath, settings.ModelPath)
				assert.Empty(t, settings.DataPath)
				assert.Equal(t, common.OracleNone, settings.Oracle.Kind)
				assert.Equal(t, 10*time.Second, settings.Oracle.Timeout)
				assert.Equal(t, common.DefaultOracleRPS, settings.Oracle.RPS)
				assert.True(t, settings.POSTagger)
				assert.Equal(t, 10, settings.TopK)
				assert.Equal(t, 0.2, settings.ValidationFraction)
				assert.Equal(t, int64(42), settings.TrainSeed)
				assert.Equal(t, 4, settings.Parallelism)
				assert.Equal(t, 0, settings.MetricsPort)
				assert.Equal(t, "info", settings.LogLevel)
				assert.Equal(t, heuristic.DefaultConfig(), settings.Heuristic)
			},
		},
		{
			name: "custom settings",
			envVars: map[string]string{
				"MODEL_PATH":          "/tmp/model.json",
				"DATA_PATH":           "/tmp/data",
				"ORACLE_KIND":         "REST",
				"ORACLE_URL":          "http://localhost:8081",
				"ORACLE_TIMEOUT":      "3s",
				"ORACLE_RPS":          "12.5",
				"ORACLE_CACHE_TTL":    "1m",
				"POS_TAGGER":          "off",
				"TOP_K":               "5",
				"VALIDATION_FRACTION": "0.25",
				"TRAIN_SEED":          "7",
				"PARALLELISM":         "8",
				"METRICS_PORT":        "9090",
				"LOG_LEVEL":           "debug",
			},
			validate: func(t *testing.T, settings Settings) {
				assert.Equal(t, "/tmp/model.json", settings.ModelPath)
				assert.Equal(t, "/tmp/data", settings.DataPath)
				assert.Equal(t, OracleSettings{
					Kind:     common.OracleREST,
					URL:      "http://localhost:8081",
					Model:    common.DefaultOracleModel,
					Timeout:  3 * time.Second,
					RPS:      12.5,
					CacheTTL: time.Minute,
				}, settings.Oracle)
				assert.False(t, settings.POSTagger)
				assert.Equal(t, 5, settings.TopK)
				assert.Equal(t, 0.25, settings.ValidationFraction)
				assert.Equal(t, int64(7), settings.TrainSeed)
				assert.Equal(t, 8, settings.Parallelism)
				assert.Equal(t, 9090, settings.MetricsPort)
				assert.Equal(t, "debug", settings.LogLevel)
			},
		},
		{
			name: "unparsable numbers fall back to defaults",
			envVars: map[string]string{
				"TOP_K":          "many",
				"ORACLE_TIMEOUT": "soon",
			},
			validate: func(t *testing.T, settings Settings) {
				assert.Equal(t, common.DefaultTopK, settings.TopK)
				assert.Equal(t, common.DefaultOracleTimeout, settings.Oracle.Timeout)
			},
		},
		{
			name:    "rest oracle without URL",
			envVars: map[string]string{"ORACLE_KIND": "rest"},
			wantErr: true,
		},
		{
			name:    "unknown oracle kind",
			envVars: map[string]string{"ORACLE_KIND": "bert"},
			wantErr: true,
		},
		{
			name:    "validation fraction out of range",
			envVars: map[string]string{"VALIDATION_FRACTION": "1.5"},
			wantErr: true,
		},
		{
			name:    "privileged metrics port",
			envVars: map[string]string{"METRICS_PORT": "80"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearTestEnv(t)
			for key, value := range tt.envVars {
				t.Setenv(key, value)
			}

			settings, err := loadFromEnv()

			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.validate != nil {
				tt.validate(t, settings)
			}
		})
	}
}

func TestLoadFromYAML(t *testing.T) {
	tests := []struct {
		name         string
		yamlContent  string
		envOverrides map[string]string
		wantErr      bool
		validate     func(t *testing.T, settings Settings)
	}{
		{
			name: "valid YAML config",
			yamlContent: `
model:
  path: "models/custom.json"
  dataPath: "/custom/data"
  topK: 7

oracle:
  kind: "openai"
  url: "http://localhost:8000/v1"
  apiKey: "yaml_key"
  model: "gpt2"
  timeout: "5s"
  rps: 2
  cacheTTL: "30s"

features:
  posTagger: false

training:
  validationFraction: 0.3
  seed: 99
  parallelism: 2

system:
  metricsPort: 9100
  logLevel: "warn"
`,
			validate: func(t *testing.T, settings Settings) {
				assert.Equal(t, "models/custom.json", settings.ModelPath)
				assert.Equal(t, "/custom/data", settings.DataPath)
				assert.Equal(t, 7, settings.TopK)
				assert.Equal(t, OracleSettings{
					Kind:     common.OracleOpenAI,
					URL:      "http://localhost:8000/v1",
					APIKey:   "yaml_key",
					Model:    "gpt2",
					Timeout:  5 * time.Second,
					RPS:      2,
					CacheTTL: 30 * time.Second,
				}, settings.Oracle)
				assert.False(t, settings.POSTagger)
				assert.Equal(t, 0.3, settings.ValidationFraction)
				assert.Equal(t, int64(99), settings.TrainSeed)
				assert.Equal(t, 2, settings.Parallelism)
				assert.Equal(t, 9100, settings.MetricsPort)
				assert.Equal(t, "warn", settings.LogLevel)
			},
		},
		{
			name: "environment overrides YAML",
			yamlContent: `
model:
  path: "models/yaml.json"
oracle:
  kind: "none"
training:
  seed: 5
`,
			envOverrides: map[string]string{
				"MODEL_PATH": "models/env.json",
				"TRAIN_SEED": "11",
				"POS_TAGGER": "no",
			},
			validate: func(t *testing.T, settings Settings) {
				assert.Equal(t, "models/env.json", settings.ModelPath)
				assert.Equal(t, int64(11), settings.TrainSeed)
				assert.False(t, settings.POSTagger)
			},
		},
		{
			name:        "minimal YAML uses defaults",
			yamlContent: "system:\n  logLevel: info\n",
			validate: func(t *testing.T, settings Settings) {
				assert.Equal(t, common.DefaultModelPath, settings.ModelPath)
				assert.Equal(t, common.OracleNone, settings.Oracle.Kind)
				assert.Equal(t, common.DefaultOracleTimeout, settings.Oracle.Timeout)
				assert.Equal(t, common.DefaultOracleCacheTTL, settings.Oracle.CacheTTL)
				assert.True(t, settings.POSTagger)
				assert.Equal(t, heuristic.DefaultConfig(), settings.Heuristic)
			},
		},
		{
			name: "heuristic overrides keep unset fields",
			yamlContent: `
heuristic:
  vocabulary_weight: 0.30
  structure_weight: 0.10
  ttr_floor: 0.5
`,
			validate: func(t *testing.T, settings Settings) {
				want := heuristic.DefaultConfig()
				want.VocabularyWeight = 0.30
				want.StructureWeight = 0.10
				want.TTRFloor = 0.5
				assert.Equal(t, want, settings.Heuristic)
			},
		},
		{
			name: "heuristic weights not summing to one",
			yamlContent: `
heuristic:
  vocabulary_weight: 0.5
`,
			wantErr: true,
		},
		{
			name:        "invalid YAML",
			yamlContent: "model: [unclosed",
			wantErr:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearTestEnv(t)
			for key, value := range tt.envOverrides {
				t.Setenv(key, value)
			}

			configPath := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(configPath, []byte(tt.yamlContent), 0o644))

			settings, err := loadFromYAML(configPath)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.validate != nil {
				tt.validate(t, settings)
			}
		})
	}
}

func TestLoadFromYAML_MissingFile(t *testing.T) {
	clearTestEnv(t)
	_, err := loadFromYAML(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_UsesConfigFile(t *testing.T) {
	clearTestEnv(t)

	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("model:\n  topK: 3\n"), 0o644))
	t.Setenv(common.EnvConfigFile, configPath)

	settings, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3, settings.TopK)
}

func TestLoad_FallsBackToEnv(t *testing.T) {
	clearTestEnv(t)
	t.Setenv(common.EnvTopK, "4")

	settings, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 4, settings.TopK)
}

func TestGetSwitchOrDefault(t *testing.T) {
	tests := []struct {
		value string
		def   bool
		want  bool
	}{
		{"", true, true},
		{"", false, false},
		{"on", false, true},
		{"OFF", true, false},
		{"yes", false, true},
		{"no", true, false},
		{"true", false, true},
		{"0", true, false},
		{"maybe", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("TEST_SWITCH", tt.value)
			assert.Equal(t, tt.want, getSwitchOrDefault("TEST_SWITCH", tt.def))
		})
	}
}
