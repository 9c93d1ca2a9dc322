package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type cliConfig struct {
	APIBaseURL    string        `env:"APP_API_BASE_URL"    envDefault:"http://localhost:8000"`
	LogLevel      string        `env:"APP_LOG_LEVEL"       envDefault:"warn"`
	HTTPTimeout   time.Duration `env:"APP_HTTP_TIMEOUT"    envDefault:"30s"`
	OpenAIKey     string        `env:"OPENAI_API_KEY"`
	OpenAIBaseURL string        `env:"APP_OPENAI_BASE_URL"`
	Recorder      string        `env:"APP_STT_RECORDER"`
	Player        string        `env:"APP_TTS_PLAYER"`
	TTSOutputDir  string        `env:"APP_TTS_OUTPUT_DIR"`
	RedisAddr     string        `env:"APP_REDIS_ADDR"`
}

func loadConfig() (cliConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cliConfig{}, fmt.Errorf("load .env: %w", err)
	}
	cfg, err := env.ParseAs[cliConfig]()
	if err != nil {
		return cliConfig{}, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}
