package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"RegScanner/internal/domain"
	"RegScanner/internal/enrich"
	"RegScanner/internal/ports"
	"RegScanner/internal/quality"
	"RegScanner/internal/scanner"
)

// QualityGate gates a run's collected items before enrichment.
type QualityGate interface {
	ProcessDataQuality(ctx context.Context, items []domain.RegUpdate) (quality.Result, error)
}

// Analyzer classifies one update. It always answers; failure surfaces only
// as the Fallback flag.
type Analyzer interface {
	AnalyzeUpdate(ctx context.Context, u domain.RegUpdate) domain.Envelope
}

// PipelineDeps wires all driven adapters into the orchestration pipeline.
type PipelineDeps struct {
	Registry   *scanner.Registry
	Quality    QualityGate
	Analyzer   Analyzer
	Repository ports.UpdateRepository
	Logger     *slog.Logger
	Sources    []domain.SourceConfig
	Workers    int
}

// Pipeline implements the harvest workflow: collect from every source with
// every applicable strategy, run the quality gate once over the whole run,
// enrich and classify the survivors, and persist.
type Pipeline struct {
	registry *scanner.Registry
	quality  QualityGate
	analyzer Analyzer
	repo     ports.UpdateRepository
	logger   *slog.Logger
	sources  []domain.SourceConfig
	workers  int
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	workers := deps.Workers
	if workers <= 0 {
		workers = 4
	}
	return &Pipeline{
		registry: deps.Registry,
		quality:  deps.Quality,
		analyzer: deps.Analyzer,
		repo:     deps.Repository,
		logger:   deps.Logger,
		sources:  deps.Sources,
		workers:  workers,
	}
}

// Run executes one full harvest and returns its stats. A failing source or
// item never aborts the run; only a cancelled context or a failing quality
// pass does.
func (p *Pipeline) Run(ctx context.Context) (*domain.RunStats, error) {
	stats := domain.NewRunStats(uuid.NewString(), time.Now().UTC())
	p.logger.Info("run started", "runId", stats.RunID, "sources", len(p.sources))

	collected := p.collect(ctx, stats)
	stats.Collected = len(collected)
	if err := ctx.Err(); err != nil {
		return stats, err
	}

	res, err := p.quality.ProcessDataQuality(ctx, collected)
	if err != nil {
		return stats, fmt.Errorf("quality pass: %w", err)
	}
	stats.Invalid = res.Invalid
	stats.Duplicates = res.Duplicates
	stats.Rejected = res.Rejected
	stats.Errors += res.Errors
	stats.Skipped = res.Invalid + res.Duplicates + res.Rejected
	stats.QualityScore = res.QualityScore

	now := time.Now().UTC()
	for _, item := range res.Accepted {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		enriched := enrich.Enrich(item, now)
		envelope := p.analyzer.AnalyzeUpdate(ctx, item)
		stats.Processed++

		record := toStoredUpdate(item, enriched, envelope, now)
		if err := p.repo.SaveUpdate(ctx, record); err != nil {
			stats.Errors++
			p.logger.Error("save failed", "url", item.URL, "error", err)
			continue
		}
		stats.Saved++
	}

	stats.FinishedAt = time.Now().UTC()
	for name, st := range stats.BySource {
		p.logger.Debug("source summary",
			"source", name, "collected", st.Collected, "errors", st.Errors, "byStrategy", st.ByStrategy)
	}
	p.logger.Info("run finished",
		"runId", stats.RunID,
		"collected", stats.Collected,
		"saved", stats.Saved,
		"skipped", stats.Skipped,
		"errors", stats.Errors,
		"qualityScore", stats.QualityScore,
		"duration", stats.Duration().Round(time.Millisecond),
		"throughput", stats.Throughput(),
	)
	return stats, nil
}

// collect fans the sources out over a bounded worker pool and gathers
// every applicable strategy's items.
func (p *Pipeline) collect(ctx context.Context, stats *domain.RunStats) []domain.RegUpdate {
	var (
		mu        sync.Mutex
		collected []domain.RegUpdate
		wg        sync.WaitGroup
	)
	sem := make(chan struct{}, p.workers)

	for _, src := range p.sources {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(src domain.SourceConfig) {
			defer wg.Done()
			defer func() { <-sem }()

			items, byStrategy, errs := p.scanSource(ctx, src)

			mu.Lock()
			defer mu.Unlock()
			collected = append(collected, items...)
			bucket := stats.Source(src.Name)
			bucket.Collected += len(items)
			bucket.Errors += errs
			for strategy, n := range byStrategy {
				bucket.ByStrategy[strategy] += n
			}
			stats.Errors += errs
		}(src)
	}
	wg.Wait()
	return collected
}

// scanSource runs every applicable strategy against one source. Strategy
// failures are logged and counted, never propagated.
func (p *Pipeline) scanSource(ctx context.Context, src domain.SourceConfig) ([]domain.RegUpdate, map[string]int, int) {
	var (
		items      []domain.RegUpdate
		byStrategy = map[string]int{}
		errs       int
	)
	for _, sc := range p.registry.All() {
		if !sc.Applicable(src) {
			continue
		}
		got, err := sc.Scan(ctx, scanner.Request{Source: src})
		if err != nil {
			errs++
			p.logger.Warn("scan failed", "source", src.Name, "strategy", sc.Name(), "error", err)
			continue
		}
		p.logger.Debug("scan complete", "source", src.Name, "strategy", sc.Name(), "items", len(got))
		byStrategy[sc.Name()] += len(got)
		items = append(items, got...)
	}
	return items, byStrategy, errs
}

// toStoredUpdate flattens the update, its enrichment, and the analysis
// into the persisted record.
func toStoredUpdate(u domain.RegUpdate, enriched domain.EnrichedUpdate, env domain.Envelope, now time.Time) domain.StoredUpdate {
	a := env.Data

	summary := u.Raw[domain.RawSummary]
	if summary == "" && len(enriched.Enrichment.KeyPhrases) > 0 {
		summary = enriched.Enrichment.KeyPhrases[0]
	}

	deadline := a.ComplianceDeadline
	if deadline == nil {
		for _, d := range enriched.Enrichment.Deadlines {
			if d.Date.After(now) {
				date := d.Date
				deadline = &date
				break
			}
		}
	}

	return domain.StoredUpdate{
		ID:                 uuid.NewString(),
		Headline:           u.Headline,
		URL:                u.URL,
		Authority:          u.Authority,
		PublishedAt:        u.PublishedAt,
		Summary:            summary,
		AISummary:          a.Summary,
		ContentType:        a.ContentType,
		ImpactLevel:        a.ImpactLevel,
		Urgency:            a.Urgency,
		BusinessImpact:     a.BusinessImpact,
		Confidence:         a.Confidence,
		Sectors:            a.Sectors,
		Tags:               a.Tags,
		FirmTypes:          a.FirmTypes,
		ComplianceDeadline: deadline,
		Phases:             a.Phases,
		Resources:          a.Resources,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}
