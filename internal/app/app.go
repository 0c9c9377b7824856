package app

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"RegScanner/internal/classify"
	"RegScanner/internal/config"
	"RegScanner/internal/domain"
	"RegScanner/internal/httpx"
	"RegScanner/internal/infrastructure/llm"
	"RegScanner/internal/infrastructure/parser"
	"RegScanner/internal/infrastructure/storage"
	"RegScanner/internal/logging"
	"RegScanner/internal/ports"
	"RegScanner/internal/quality"
	"RegScanner/internal/scanner"
	"RegScanner/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg      config.Config
	pipeline *usecase.Pipeline
	browser  *parser.BrowserScanner
}

// New builds a runnable application instance. db may be nil, in which case
// nothing is persisted and the dedup pass sees no history.
func New(cfg config.Config, db *sql.DB, baseLogger *slog.Logger) *Application {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	sources := cfg.DomainSources()
	limiter := httpx.NewLimiter(
		time.Duration(cfg.Scraping.RateLimitMs)*time.Millisecond,
		sourceIntervals(cfg.DomainIntervals(), sources),
	)
	client := httpx.NewClient(
		time.Duration(cfg.Scraping.TimeoutMs)*time.Millisecond,
		limiter,
		baseLogger.With("component", "http"),
	)

	registry := scanner.NewRegistry()
	registry.Register(parser.NewRSSScanner(client, baseLogger.With("component", "scanner.rss")))
	registry.Register(parser.NewHTMLScanner(client, baseLogger.With("component", "scanner.html")))

	var browser *parser.BrowserScanner
	if needsBrowser(sources) {
		var err error
		browser, err = parser.NewBrowserScanner(limiter, baseLogger.With("component", "scanner.browser"))
		if err != nil {
			baseLogger.Warn("headless browser unavailable, rendered sources will be skipped", "error", err)
		} else {
			registry.Register(browser)
		}
	}

	repo := storage.NewPostgresRepository(db)

	var provider ports.Provider
	if p, err := llm.Select(llm.Credentials{
		AnthropicKey:  cfg.AI.AnthropicKey,
		DeepSeekKey:   cfg.AI.DeepSeekKey,
		OpenRouterKey: cfg.AI.OpenRouterKey,
		GroqKey:       cfg.AI.GroqKey,
	}); err == nil {
		provider = p
	} else {
		baseLogger.Info("no AI provider configured, classification is rule-based")
	}
	analyzer := classify.NewService(provider, baseLogger.With("component", "classify"), classify.Options{
		Models:  cfg.AI.Models,
		Retries: cfg.AI.Retries,
	})

	engine := quality.NewEngine(quality.Config{
		ValidMin:          cfg.Quality.ValidMin,
		PersistMin:        cfg.Quality.PersistMin,
		TitleSimilarity:   cfg.Quality.TitleSimilarity,
		ContentSimilarity: cfg.Quality.ContentSimilarity,
	}, repo, baseLogger.With("component", "quality"))

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Registry:   registry,
		Quality:    engine,
		Analyzer:   analyzer,
		Repository: repo,
		Logger:     baseLogger.With("component", "pipeline"),
		Sources:    sources,
		Workers:    cfg.Scraping.Workers,
	})
	return &Application{cfg: cfg, pipeline: pipeline, browser: browser}
}

// Run performs a single harvest.
func (a *Application) Run(ctx context.Context) error {
	_, err := a.pipeline.Run(ctx)
	return err
}

// Close releases held resources.
func (a *Application) Close() error {
	if a.browser != nil {
		return a.browser.Close()
	}
	return nil
}

// sourceIntervals extends the explicit per-domain overrides with each
// source's policy rate limit for the domains that source touches.
// Explicit domain overrides win.
func sourceIntervals(overrides map[string]time.Duration, sources []domain.SourceConfig) map[string]time.Duration {
	for _, src := range sources {
		if src.Policy.RateLimit <= 0 {
			continue
		}
		for _, d := range sourceDomains(src) {
			if _, ok := overrides[d]; !ok {
				overrides[d] = src.Policy.RateLimit
			}
		}
	}
	return overrides
}

func sourceDomains(src domain.SourceConfig) []string {
	seen := map[string]bool{}
	var out []string
	add := func(rawURL string) {
		if d := httpx.Domain(rawURL); d != "" && !seen[d] {
			seen[d] = true
			out = append(out, d)
		}
	}
	add(src.BaseURL)
	for _, feed := range src.Feeds {
		add(feed.URL)
	}
	for _, target := range src.Targets {
		add(target.URL)
	}
	return out
}

func needsBrowser(sources []domain.SourceConfig) bool {
	for _, src := range sources {
		for _, target := range src.Targets {
			if target.RenderJS {
				return true
			}
		}
	}
	return false
}
