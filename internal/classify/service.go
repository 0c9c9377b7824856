package classify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"RegScanner/internal/domain"
	"RegScanner/internal/infrastructure/llm"
	"RegScanner/internal/ports"
)

const (
	minContentLen  = 50
	defaultRetries = 3
	backoff503     = 15 * time.Second
)

// Options tune the classification service.
type Options struct {
	// Models is the fallback chain, tried in order. When empty the
	// provider's default model is the only entry.
	Models []string
	// Retries bounds per-model retry loops (429/503/transient); zero
	// means the default of 3.
	Retries int
	// Sleep is swapped out by tests; nil means time.Sleep honoring ctx.
	Sleep func(ctx context.Context, d time.Duration)
	// Now is swapped out by tests; nil means time.Now.
	Now func() time.Time
}

// Service turns raw updates into normalized analyses. The provider may be
// nil, in which case every update takes the rule-based path.
type Service struct {
	provider ports.Provider
	logger   *slog.Logger
	models   []string
	retries  int
	sleep    func(ctx context.Context, d time.Duration)
	now      func() time.Time

	mu       sync.Mutex
	modelIdx int
	failures map[string]int
	lastCall time.Time
}

func NewService(provider ports.Provider, logger *slog.Logger, opts Options) *Service {
	s := &Service{
		provider: provider,
		logger:   logger,
		models:   opts.Models,
		retries:  opts.Retries,
		sleep:    opts.Sleep,
		now:      opts.Now,
		failures: map[string]int{},
	}
	if s.retries <= 0 {
		s.retries = defaultRetries
	}
	if len(s.models) == 0 && provider != nil {
		s.models = []string{provider.DefaultModel()}
	}
	if s.sleep == nil {
		s.sleep = func(ctx context.Context, d time.Duration) {
			t := time.NewTimer(d)
			defer t.Stop()
			select {
			case <-ctx.Done():
			case <-t.C:
			}
		}
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// AnalyzeUpdate classifies one update. It always produces a usable
// envelope: when the provider path fails for any reason the rule-based
// analyzer fills in, flagged with Fallback.
func (s *Service) AnalyzeUpdate(ctx context.Context, u domain.RegUpdate) domain.Envelope {
	out, model, err := s.classify(ctx, u)
	fallback := false
	if err != nil {
		if !errors.Is(err, errContentTooShort) && !errors.Is(err, llm.ErrNoProvider) {
			s.logger.Warn("AI classification failed, using rule-based analysis",
				"url", u.URL, "error", err)
		}
		out = FallbackAnalyze(u)
		model = ""
		fallback = true
	}

	analysis := s.normalize(out, u, model, fallback)
	return domain.Envelope{
		Success:     true,
		Fallback:    fallback,
		Data:        &analysis,
		ContentType: analysis.ContentType,
		ImpactLevel: analysis.ImpactLevel,
		Urgency:     analysis.Urgency,
	}
}

var errContentTooShort = errors.New("content too short for AI analysis")

// ErrAuth marks rejected provider credentials; retrying or switching
// models cannot recover, only reconfiguration can.
var ErrAuth = errors.New("provider credentials rejected")

// classify runs the provider with the model fallback chain and the
// per-status retry policy.
func (s *Service) classify(ctx context.Context, u domain.RegUpdate) (modelOutput, string, error) {
	if s.provider == nil {
		return modelOutput{}, "", llm.ErrNoProvider
	}
	if len(u.Content()) < minContentLen {
		return modelOutput{}, "", errContentTooShort
	}

	prompt := buildPrompt(u)
	attempt := 0
	chain := s.modelChain()

	for i := 0; i < len(chain); {
		model := chain[i]
		s.throttle(ctx)

		raw, err := s.provider.Complete(ctx, ports.CompletionRequest{
			Model:     model,
			System:    systemPrompt,
			User:      prompt,
			MaxTokens: 2000,
		})
		if err == nil {
			out, perr := parseResponse(raw)
			if perr != nil {
				return modelOutput{}, "", perr
			}
			s.promote(model)
			return out, model, nil
		}
		if ctx.Err() != nil {
			return modelOutput{}, "", ctx.Err()
		}

		var apiErr *llm.APIError
		if !errors.As(err, &apiErr) {
			return modelOutput{}, "", err
		}
		modelFailures := s.fail(model)
		switch apiErr.Status {
		case 401, 403:
			return modelOutput{}, "", fmt.Errorf("%w: %v", ErrAuth, err)
		case 429:
			attempt++
			if attempt > s.retries {
				return modelOutput{}, "", err
			}
			delay := time.Duration(1<<uint(attempt)) * 10 * time.Second
			s.logger.Warn("rate limited, backing off",
				"model", model, "delay", delay, "failures", modelFailures)
			s.sleep(ctx, delay)
		case 400, 404:
			// Model unknown or request rejected; advance the chain.
			s.logger.Warn("model rejected, advancing chain",
				"model", model, "status", apiErr.Status, "failures", modelFailures)
			i++
			attempt = 0
		case 503:
			attempt++
			if attempt > s.retries {
				return modelOutput{}, "", err
			}
			s.sleep(ctx, backoff503)
		default:
			attempt++
			if attempt > s.retries {
				return modelOutput{}, "", err
			}
			s.sleep(ctx, time.Duration(attempt)*5*time.Second)
		}
	}
	return modelOutput{}, "", errors.New("all models exhausted")
}

// modelChain starts from the last model that worked, then the rest of the
// configured chain in order.
func (s *Service) modelChain() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	chain := make([]string, 0, len(s.models))
	chain = append(chain, s.models[s.modelIdx])
	for i, m := range s.models {
		if i != s.modelIdx {
			chain = append(chain, m)
		}
	}
	return chain
}

// fail bumps and returns a model's cumulative failure count.
func (s *Service) fail(model string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[model]++
	return s.failures[model]
}

func (s *Service) promote(model string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, m := range s.models {
		if m == model {
			s.modelIdx = i
			return
		}
	}
}

// throttle serializes provider calls at the provider's minimum interval.
func (s *Service) throttle(ctx context.Context) {
	s.mu.Lock()
	wait := s.provider.MinInterval() - s.now().Sub(s.lastCall)
	s.lastCall = s.now()
	s.mu.Unlock()

	if wait > 0 {
		s.sleep(ctx, wait)
	}
}

// normalize forces every enum field into its fixed set, fills defaults for
// anything missing, and runs the enhancement pass. No Analysis leaves this
// function with an out-of-enum value.
func (s *Service) normalize(out modelOutput, u domain.RegUpdate, model string, fallback bool) domain.Analysis {
	now := s.now()
	content := u.Content()

	a := domain.Analysis{
		Headline:      strings.TrimSpace(out.Headline),
		Authority:     u.Authority,
		PublishedAt:   u.PublishedAt,
		Area:          strings.TrimSpace(out.Area),
		PrimarySector: strings.TrimSpace(out.PrimarySector),
		Sectors:       out.Sectors,
		Summary:       strings.TrimSpace(out.Summary),
		ContentType:   strings.TrimSpace(out.ContentType),
		ImpactLevel:   strings.TrimSpace(out.ImpactLevel),
		Urgency:       strings.TrimSpace(out.Urgency),
		FirmTypes:     out.FirmTypes,
		Model:         model,
		Fallback:      fallback,
	}

	if a.Headline == "" {
		a.Headline = u.Headline
	}
	if a.Headline == "" {
		a.Headline = "Regulatory update"
	}
	if a.Area == "" {
		a.Area = u.Area
	}
	if a.Area == "" {
		a.Area = "General"
	}
	if a.PrimarySector == "" {
		a.PrimarySector = "General"
	}
	if a.Sectors == nil {
		a.Sectors = map[string]int{}
	}
	if !domain.ValidContentType(a.ContentType) {
		a.ContentType = domain.ContentTypeOther
	}
	if !domain.ValidImpactLevel(a.ImpactLevel) {
		a.ImpactLevel = domain.ImpactModerate
	}
	if !domain.ValidUrgency(a.Urgency) {
		a.Urgency = domain.UrgencyMedium
	}

	a.ComplianceDeadline = complianceDeadline(out.KeyDates, content, now)
	a.BusinessImpact = businessImpact(modelOutput{
		ImpactLevel: a.ImpactLevel,
		Urgency:     a.Urgency,
		Sectors:     a.Sectors,
	}, u.Headline+" "+content)
	a.Confidence = analysisConfidence(out, len(content))
	a.Phases = buildPhases(a, content)
	a.Resources = buildResources(a.BusinessImpact)
	a.Tags = buildTags(a)
	return a
}
