// Package commands implements the translator CLI commands.
package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"unitranslate/packages/backend/di"
	"unitranslate/packages/backend/logging"
	"unitranslate/packages/backend/redis"
	"unitranslate/packages/backend/status"
	"unitranslate/packages/backend/translation"

	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// app holds what PersistentPreRunE builds for the subcommands.
type app struct {
	cfg       cliConfig
	logger    *zap.SugaredLogger
	client    *translation.Client
	container *di.Container
	speech    speechProviders
	redis     *goredis.Client

	// newSpeech is replaced in tests.
	newSpeech func(cliConfig, *zap.SugaredLogger) speechProviders
}

// NewRootCommand builds the command tree. Every call returns an independent
// tree so tests can run commands side by side.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&app{newSpeech: detectSpeech})
}

func newRootCommand(a *app) *cobra.Command {
	cfg, cfgErr := loadConfig()
	a.cfg = cfg

	rootCmd := &cobra.Command{
		Use:   "translator",
		Short: "Universal translator client",
		Long: `Universal translator client.

Translates typed or spoken text through the Translation API, reads
translations aloud and follows translation sessions.

Configuration is read from the environment (APP_API_BASE_URL, APP_LOG_LEVEL,
OPENAI_API_KEY, APP_REDIS_ADDR, ...) and an optional .env file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cfgErr != nil {
				return cfgErr
			}
			return a.setup()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.cfg.APIBaseURL, "api-url", cfg.APIBaseURL, "Translation API base URL")
	flags.StringVar(&a.cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	flags.DurationVar(&a.cfg.HTTPTimeout, "timeout", cfg.HTTPTimeout, "Translation API request timeout")
	flags.StringVar(&a.cfg.RedisAddr, "redis", cfg.RedisAddr, "Redis address for session status events")

	rootCmd.AddCommand(
		newLanguagesCmd(a),
		newTranslateCmd(a),
		newDetectCmd(a),
		newInteractiveCmd(a),
		newWatchCmd(a),
	)
	return rootCmd
}

// Execute runs the root command until it finishes or the process is
// interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return NewRootCommand().ExecuteContext(ctx)
}

func (a *app) setup() error {
	logger, err := logging.New(a.cfg.LogLevel, "stderr")
	if err != nil {
		return err
	}
	a.logger = logger

	timeout := a.cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = translation.DefaultClientTimeout
	}
	client, err := translation.NewClient(a.cfg.APIBaseURL, translation.WithTimeout(timeout))
	if err != nil {
		return fmt.Errorf("translation api client: %w", err)
	}
	a.client = client

	var publisher status.Publisher = status.LogPublisher{Logger: logger}
	if a.cfg.RedisAddr != "" {
		rdb, err := redis.NewClient(a.cfg.RedisAddr)
		if err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		a.redis = rdb
		publisher = status.MultiPublisher{publisher, status.NewRedisStatusPublisher(rdb)}
	}

	a.speech = a.newSpeech(a.cfg, logger)
	a.container = di.NewContainer(client,
		di.WithRecognizer(a.speech.recognizer),
		di.WithSynthesizer(a.speech.synthesizer),
		di.WithPublisher(publisher),
		di.WithLogger(logger),
	)
	return nil
}

func (a *app) teardown() error {
	a.speech.Wait()

	var errs []error
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	if a.logger != nil {
		// Syncing stderr fails on some platforms; it is not worth reporting.
		_ = a.logger.Sync()
	}
	return errors.Join(errs...)
}

// run wraps a command body so providers are released even when it fails.
func (a *app) run(fn func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := fn(cmd, args)
		return errors.Join(err, a.teardown())
	}
}
