// Package app wires config, logging, storage and the GitHub client together
// for the command entry points.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/thep200/git2neo/api"
	"github.com/thep200/git2neo/cfg"
	"github.com/thep200/git2neo/internal/crawler"
	githubapi "github.com/thep200/git2neo/internal/github_api"
	"github.com/thep200/git2neo/internal/limiter"
	"github.com/thep200/git2neo/internal/store"
	"github.com/thep200/git2neo/pkg/kafka"
	"github.com/thep200/git2neo/pkg/log"
)

type App struct {
	Config *cfg.Config
	Logger log.Logger
	Store  store.Store
	Caller *githubapi.Caller
	// Producer is nil when no Kafka brokers are configured.
	Producer *kafka.Producer

	closers []func() error
}

// New loads the config through loader and opens every backend it names.
func New(ctx context.Context, loader cfg.Loader) (*App, error) {
	config, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, closeLog, err := log.NewLogger(config.Log.File, config.Log.Debug)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	a := &App{Config: config, Logger: logger}
	a.closers = append(a.closers, closeLog)

	st, closeStore, err := store.FactoryStore(ctx, logger, config)
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("failed to open %s store: %w", config.Store.Driver, err)
	}
	a.Store = st
	a.closers = append(a.closers, closeStore)

	a.Caller = githubapi.NewCaller(logger, config, limiter.NewRateLimiter(config.GithubApi.RequestsPerSecond))
	if config.GithubApi.AccessToken == "" {
		logger.Warn(ctx, "No GitHub token configured, GraphQL requests will be rejected")
	}

	producer, err := kafka.NewProducer(config, logger, config.Kafka.Producer.TopicEvents)
	switch {
	case errors.Is(err, kafka.ErrNoBrokers):
		logger.Debug(ctx, "Kafka disabled, unit events are not published")
	case err != nil:
		_ = a.Close()
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	default:
		a.Producer = producer
		a.closers = append(a.closers, producer.Close)
	}

	return a, nil
}

// Publisher returns the event sink, nil when Kafka is off.
func (a *App) Publisher() crawler.Publisher {
	if a.Producer == nil {
		return nil
	}
	return a.Producer
}

func (a *App) Orchestrator() (*crawler.Orchestrator, error) {
	return crawler.NewOrchestrator(a.Logger, a.Config, a.Store, a.Caller, a.Publisher())
}

func (a *App) CrawlerAPI() *api.CrawlerAPI {
	return api.NewCrawlerAPI(a.Logger, a.Config, a.Store, a.Caller, a.Publisher())
}

// Close releases backends in reverse order of opening.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
