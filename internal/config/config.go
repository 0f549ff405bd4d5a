package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendSQLite = "sqlite"
	BackendMongo  = "mongo"
)

type Config struct {
	Port     string
	LogLevel string
	LogJSON  bool

	CompletionAPIKey  string
	CompletionBaseURL string
	CompletionModel   string
	CompletionTimeout time.Duration
	AssistantName     string

	TranscriptionAPIKey       string
	TranscriptionBaseURL      string
	TranscriptionPollInterval time.Duration
	TranscriptionMaxWait      time.Duration

	HistoryBackend string
	DatabasePath   string
	MongoURI       string
	MongoDatabase  string

	MaxUploadBytes int64
}

// LoadEnv reads variables from path (".env" when empty). A missing file is not an error.
func LoadEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	err := godotenv.Load(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// RequireCompletion fails when the completion API key is not set.
func (c Config) RequireCompletion() error {
	if c.CompletionAPIKey == "" {
		return errors.New("environment variable GROQ_API_KEY is required but not set")
	}
	return nil
}

// RequireTranscription fails when the transcription API key is not set.
func (c Config) RequireTranscription() error {
	if c.TranscriptionAPIKey == "" {
		return errors.New("environment variable ASSEMBLYAI_API_KEY is required but not set")
	}
	return nil
}

// Load builds the configuration from the environment, applying defaults.
func Load() (Config, error) {
	cfg := Config{
		Port:     envOrDefault("PORT", "5000"),
		LogLevel: envOrDefault("LOG_LEVEL", "info"),
		LogJSON:  envBoolOrDefault("LOG_JSON", true),

		CompletionAPIKey:  os.Getenv("GROQ_API_KEY"),
		CompletionBaseURL: envOrDefault("COMPLETION_BASE_URL", "https://api.groq.com/openai/v1"),
		CompletionModel:   envOrDefault("COMPLETION_MODEL", "llama-3.3-70b-versatile"),
		AssistantName:     envOrDefault("ASSISTANT_NAME", "KiitGPT"),

		TranscriptionAPIKey:  os.Getenv("ASSEMBLYAI_API_KEY"),
		TranscriptionBaseURL: envOrDefault("TRANSCRIPTION_BASE_URL", "https://api.assemblyai.com/v2"),

		HistoryBackend: strings.ToLower(envOrDefault("HISTORY_BACKEND", BackendSQLite)),
		DatabasePath:   envOrDefault("DATABASE_PATH", "chat_history.db"),
		MongoURI:       os.Getenv("MONGODB_URI"),
		MongoDatabase:  envOrDefault("MONGODB_DATABASE", "ChatRelay"),
	}

	var err error
	if cfg.CompletionTimeout, err = envDurationOrDefault("COMPLETION_TIMEOUT", 60*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.TranscriptionPollInterval, err = envDurationOrDefault("TRANSCRIPTION_POLL_INTERVAL", 3*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.TranscriptionMaxWait, err = envDurationOrDefault("TRANSCRIPTION_MAX_WAIT", 5*time.Minute); err != nil {
		return Config{}, err
	}
	if cfg.MaxUploadBytes, err = envInt64OrDefault("MAX_UPLOAD_BYTES", 32<<20); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.TranscriptionPollInterval <= 0 {
		return fmt.Errorf("TRANSCRIPTION_POLL_INTERVAL must be positive, got %s", c.TranscriptionPollInterval)
	}
	if c.TranscriptionMaxWait < c.TranscriptionPollInterval {
		return fmt.Errorf("TRANSCRIPTION_MAX_WAIT (%s) must not be shorter than TRANSCRIPTION_POLL_INTERVAL (%s)",
			c.TranscriptionMaxWait, c.TranscriptionPollInterval)
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive, got %d", c.MaxUploadBytes)
	}
	switch c.HistoryBackend {
	case BackendSQLite:
	case BackendMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("MONGODB_URI is required when HISTORY_BACKEND=%s", BackendMongo)
		}
	default:
		return fmt.Errorf("unknown HISTORY_BACKEND %q", c.HistoryBackend)
	}
	return nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBoolOrDefault(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v == "1" || strings.EqualFold(v, "true")
}

func envDurationOrDefault(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func envInt64OrDefault(key string, fallback int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}
