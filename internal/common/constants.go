package common

import "time"

// Environment variable keys
const (
	EnvConfigFile         = "CONFIG_FILE"
	EnvModelPath          = "MODEL_PATH"
	EnvDataPath           = "DATA_PATH"
	EnvOracleKind         = "ORACLE_KIND"
	EnvOracleURL          = "ORACLE_URL"
	EnvOracleAPIKey       = "ORACLE_API_KEY"
	EnvOracleModel        = "ORACLE_MODEL"
	EnvOracleTimeout      = "ORACLE_TIMEOUT"
	EnvOracleRPS          = "ORACLE_RPS"
	EnvOracleCacheTTL     = "ORACLE_CACHE_TTL"
	EnvPOSTagger          = "POS_TAGGER"
	EnvTopK               = "TOP_K"
	EnvValidationFraction = "VALIDATION_FRACTION"
	EnvTrainSeed          = "TRAIN_SEED"
	EnvParallelism        = "PARALLELISM"
	EnvMetricsPort        = "METRICS_PORT"
	EnvLogLevel           = "LOG_LEVEL"
)

// Oracle kinds
const (
	OracleNone   = "none"
	OracleREST   = "rest"
	OracleOpenAI = "openai"
)

// Configuration defaults
const (
	DefaultModelPath          = "models/ai_detector_model.json"
	DefaultOracleKind         = OracleNone
	DefaultOracleModel        = "distilgpt2"
	DefaultOracleTimeout      = 10 * time.Second
	DefaultOracleRPS          = 5.0
	DefaultOracleCacheTTL     = 10 * time.Minute
	DefaultTopK               = 10
	DefaultValidationFraction = 0.2
	DefaultTrainSeed          = 42
	DefaultParallelism        = 4
	DefaultMetricsPort        = 0 // disabled
	DefaultLogLevel           = "info"
)

// Result sources
const (
	SourceClassifier = "classifier"
	SourceHeuristic  = "heuristic"
)

// Feature groups
const (
	GroupPerplexity = "perplexity"
	GroupBurstiness = "burstiness"
	GroupStylometry = "stylometry"
	GroupZipf       = "zipf"
)
