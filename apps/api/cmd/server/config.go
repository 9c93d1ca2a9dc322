package main

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	engineStub   = "stub"
	engineOpenAI = "openai"
)

type config struct {
	Addr          string        `env:"APP_SERVER_ADDR"     envDefault:":8000"`
	LogLevel      string        `env:"APP_LOG_LEVEL"       envDefault:"info"`
	Engine        string        `env:"APP_ENGINE"          envDefault:"stub"`
	OpenAIKey     string        `env:"OPENAI_API_KEY"`
	OpenAIModel   string        `env:"APP_OPENAI_MODEL"    envDefault:"gpt-4o-mini"`
	OpenAIBaseURL string        `env:"APP_OPENAI_BASE_URL"`
	RedisAddr     string        `env:"APP_REDIS_ADDR"`
	CacheTTL      time.Duration `env:"APP_CACHE_TTL"       envDefault:"24h"`
	RateLimit     int           `env:"APP_RATE_LIMIT"      envDefault:"120"`
	CORSOrigins   []string      `env:"APP_CORS_ORIGINS"    envDefault:"*" envSeparator:","`
}

// loadConfig reads an optional .env file and then the environment.
func loadConfig(envFiles ...string) (config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return config{}, fmt.Errorf("load %s: %w", file, err)
		}
	}

	cfg, err := env.ParseAs[config]()
	if err != nil {
		return config{}, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, cfg.validate()
}

func (c config) validate() error {
	switch strings.ToLower(c.Engine) {
	case engineStub:
	case engineOpenAI:
		if c.OpenAIKey == "" {
			return errors.New("OPENAI_API_KEY is required for the openai engine")
		}
	default:
		return fmt.Errorf("unsupported APP_ENGINE %q", c.Engine)
	}
	if c.RateLimit < 0 {
		return errors.New("APP_RATE_LIMIT must not be negative")
	}
	return nil
}
