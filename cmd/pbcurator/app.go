package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mgkim1976-spec/research-based-wm/internal/config"
	"github.com/mgkim1976-spec/research-based-wm/internal/crawling"
	"github.com/mgkim1976-spec/research-based-wm/internal/inference"
	"github.com/mgkim1976-spec/research-based-wm/internal/llm"
	"github.com/mgkim1976-spec/research-based-wm/internal/matching"
	"github.com/mgkim1976-spec/research-based-wm/internal/routing"
	"github.com/mgkim1976-spec/research-based-wm/internal/store"
	"github.com/mgkim1976-spec/research-based-wm/internal/videos"
	"github.com/mgkim1976-spec/research-based-wm/internal/workflow"
)

// app bundles the wired collaborators plus their teardown.
type app struct {
	orchestrator *workflow.Orchestrator
	reports      store.Store
	logger       *zap.Logger
	cleanups     []func()
}

func (a *app) close() {
	for i := len(a.cleanups) - 1; i >= 0; i-- {
		a.cleanups[i]()
	}
	_ = a.logger.Sync()
}

// resolveConfig merges the optional config file, the environment, and
// built-in defaults. Flag values are merged by the callers before this.
func resolveConfig(configPath string, flags config.Config) (config.Config, error) {
	cfg := flags

	if configPath != "" {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return config.Config{}, fmt.Errorf("failed to load config: %w", err)
		}
		if err := loaded.Validate(); err != nil {
			return config.Config{}, err
		}
		cfg = cfg.MergeWithDefaults(*loaded)
	}

	cfg = cfg.MergeWithDefaults(config.FromEnv())
	cfg = cfg.MergeWithDefaults(config.Config{
		DataPath: config.DefaultDataPath,
		Port:     config.DefaultPort,
	})

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// buildApp wires the full pipeline from configuration. Without an API key
// the inference engine degrades to static placeholders; without a database
// URL reports persist to the local JSON store.
func buildApp(ctx context.Context, cfg config.Config) (*app, error) {
	logger, err := newLogger(cfg.Verbose)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	a := &app{logger: logger}

	if cfg.DatabaseURL != "" {
		pg, err := store.NewPostgresStore(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		a.reports = pg
		a.cleanups = append(a.cleanups, pg.Close)
	} else {
		fs, err := store.NewFileStore(cfg.DataPath, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open report store: %w", err)
		}
		a.reports = fs
	}

	var engine inference.Engine = inference.StaticEngine{}
	if cfg.APIKey != "" {
		client, err := llm.NewClient(ctx, llm.DefaultConfig(), cfg.APIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create inference client: %w", err)
		}
		engine = inference.NewGeminiEngine(client, logger)
		a.cleanups = append(a.cleanups, func() { _ = client.Close() })
	} else {
		logger.Warn("no API key configured, using placeholder inference")
	}

	var crawlOpts []crawling.Option
	if cfg.ResearchListURL != "" {
		crawlOpts = append(crawlOpts, crawling.WithListURL(cfg.ResearchListURL))
	}
	if cfg.UseBrowser {
		crawlOpts = append(crawlOpts, crawling.WithBrowserFallback())
	}
	crawler := crawling.NewCrawler(logger, crawlOpts...)

	var videoOpts []videos.Option
	if cfg.VideoHandleURL != "" {
		videoOpts = append(videoOpts, videos.WithHandleURL(cfg.VideoHandleURL))
	}
	connector := videos.NewConnector(logger, videoOpts...)

	a.orchestrator = workflow.New(workflow.Options{
		Source:  crawler,
		Videos:  connector,
		Reports: a.reports,
		Engine:  engine,
		Matcher: matching.NewContentMatcher(matching.NewKeywordRanker(), logger),
		Router:  routing.NewSegmentRouter(engine, logger),
		Logger:  logger,
	})

	return a, nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
