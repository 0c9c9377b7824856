package quality

import (
	"context"
	"log/slog"
	"time"

	"RegScanner/internal/domain"
	"RegScanner/internal/ports"
)

// Engine runs the two-pass quality gate: validation, then deduplication
// and composite scoring. The engine itself is stateless across runs; every
// ProcessDataQuality call builds and discards its own dedup indices.
type Engine struct {
	cfg    Config
	repo   ports.UpdateRepository
	logger *slog.Logger
}

// NewEngine wires the quality gate. repo may be nil when no stored history
// should be consulted.
func NewEngine(cfg Config, repo ports.UpdateRepository, logger *slog.Logger) *Engine {
	if cfg.ValidMin == 0 && cfg.PersistMin == 0 {
		cfg = DefaultConfig()
	}
	return &Engine{cfg: cfg, repo: repo, logger: logger}
}

// Result is the outcome of one quality pass.
type Result struct {
	Accepted   []domain.RegUpdate
	Invalid    int
	Duplicates int
	Rejected   int
	Errors     int

	// QualityScore aggregates the run: 50% valid, 30% non-dup, 20% non-fail.
	QualityScore int
}

// ProcessDataQuality gates a run's full item set. Items failing validation,
// flagged duplicate, or scoring below the persistence gate are counted and
// dropped, never retried.
func (e *Engine) ProcessDataQuality(ctx context.Context, items []domain.RegUpdate) (Result, error) {
	deduper := NewDeduper(e.cfg, e.repo)
	now := time.Now().UTC()

	var res Result
	validCount := 0

	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		validation := ValidateUpdate(item, e.cfg)
		if !validation.Valid {
			res.Invalid++
			e.debug("invalid item", "url", item.URL, "score", validation.Score, "issues", validation.Issues)
			continue
		}
		validCount++

		decision, err := deduper.Check(ctx, item)
		if err != nil {
			res.Errors++
			e.debug("dedup lookup failed", "url", item.URL, "error", err)
			continue
		}
		if decision.IsDuplicate {
			res.Duplicates++
			e.debug("duplicate item", "url", item.URL, "reason", decision.Reason)
			continue
		}
		deduper.Track(item)

		scores := ScoreItem(item, true, now)
		if scores.Quality < e.cfg.PersistMin {
			res.Rejected++
			e.debug("rejected item", "url", item.URL, "quality", scores.Quality)
			continue
		}

		res.Accepted = append(res.Accepted, item)
	}

	res.QualityScore = RunQualityScore(len(items), validCount, res.Duplicates, res.Errors)
	return res, nil
}

func (e *Engine) debug(msg string, args ...any) {
	if e.logger != nil {
		e.logger.Debug(msg, args...)
	}
}
