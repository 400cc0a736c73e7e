package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	BackendSQLite = "sqlite"
	BackendMongo  = "mongo"
	BackendRedis  = "redis"
)

type Config struct {
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":5000"`

	CacheBackend    string        `env:"CACHE_BACKEND"     envDefault:"sqlite"`
	DBPath          string        `env:"DB_PATH"           envDefault:"db.sqlite"`
	MongoURI        string        `env:"MONGO_URI"`
	MongoDatabase   string        `env:"MONGO_DATABASE"    envDefault:"newsbrief"`
	MongoCollection string        `env:"MONGO_COLLECTION"  envDefault:"summaries"`
	RedisURL        string        `env:"REDIS_URL"`
	SummaryTTL      time.Duration `env:"SUMMARY_TTL"       envDefault:"0"`
	RetentionSpec   string        `env:"RETENTION_SPEC"    envDefault:"@every 1h"`
	MemoryCacheSize int           `env:"MEMORY_CACHE_SIZE" envDefault:"1024"`
	MemoryCacheTTL  time.Duration `env:"MEMORY_CACHE_TTL"  envDefault:"1h"`

	LLMProvider       string        `env:"LLM_PROVIDER"       envDefault:"gemini"`
	LLMModel          string        `env:"LLM_MODEL"`
	GeminiAPIKey      string        `env:"GEMINI_API_KEY"`
	OpenAIAPIKey      string        `env:"OPENAI_API_KEY"`
	AnthropicAPIKey   string        `env:"ANTHROPIC_API_KEY"`
	GenerationTimeout time.Duration `env:"GENERATION_TIMEOUT" envDefault:"30s"`

	Token        string  `env:"TOKEN"`
	AllowedUsers []int64 `env:"ALLOWED_USERS"`
}

func LoadConfig() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	cfg.CacheBackend = strings.ToLower(strings.TrimSpace(cfg.CacheBackend))
	cfg.LLMProvider = strings.ToLower(strings.TrimSpace(cfg.LLMProvider))

	if err = cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// APIKey returns the credential of the selected provider.
func (c Config) APIKey() string {
	switch c.LLMProvider {
	case "openai":
		return c.OpenAIAPIKey
	case "anthropic":
		return c.AnthropicAPIKey
	default:
		return c.GeminiAPIKey
	}
}

// MemoryCacheExpiry keeps the in-process tier from outliving records the
// durable store has already expired.
func (c Config) MemoryCacheExpiry() time.Duration {
	if c.SummaryTTL > 0 && (c.MemoryCacheTTL <= 0 || c.MemoryCacheTTL > c.SummaryTTL) {
		return c.SummaryTTL
	}

	return c.MemoryCacheTTL
}

func (c Config) validate() error {
	var errs []error

	switch c.CacheBackend {
	case BackendSQLite:
		if strings.TrimSpace(c.DBPath) == "" {
			errs = append(errs, errors.New("DB_PATH is required for the sqlite backend"))
		}
	case BackendMongo:
		if strings.TrimSpace(c.MongoURI) == "" {
			errs = append(errs, errors.New("MONGO_URI is required for the mongo backend"))
		}
	case BackendRedis:
		if strings.TrimSpace(c.RedisURL) == "" {
			errs = append(errs, errors.New("REDIS_URL is required for the redis backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown CACHE_BACKEND %q", c.CacheBackend))
	}

	if c.SummaryTTL < 0 {
		errs = append(errs, errors.New("SUMMARY_TTL must not be negative"))
	}

	if c.GenerationTimeout <= 0 {
		errs = append(errs, errors.New("GENERATION_TIMEOUT must be positive"))
	}

	return errors.Join(errs...)
}
