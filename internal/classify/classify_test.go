package classify

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"RegScanner/internal/domain"
	"RegScanner/internal/infrastructure/llm"
	"RegScanner/internal/ports"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testUpdate() domain.RegUpdate {
	published := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	return domain.RegUpdate{
		Headline:    "FCA consults on operational resilience reporting for banks",
		URL:         "https://www.fca.org.uk/publications/consultation/cp25-7",
		Authority:   "FCA",
		Area:        "Operational Resilience",
		PublishedAt: &published,
		Raw: map[string]string{
			domain.RawContent: "The FCA is consulting on mandatory operational resilience " +
				"reporting requirements for the banking sector. Firms must comply " +
				"with the new reporting standard. Responses are requested by 30 June 2026.",
		},
	}
}

// fakeProvider scripts a sequence of responses for Complete.
type fakeProvider struct {
	interval time.Duration
	replies  []fakeReply
	calls    []ports.CompletionRequest
}

type fakeReply struct {
	body string
	err  error
}

func (f *fakeProvider) Name() string               { return "fake" }
func (f *fakeProvider) DefaultModel() string       { return "fake-model" }
func (f *fakeProvider) MinInterval() time.Duration { return f.interval }

func (f *fakeProvider) Complete(_ context.Context, req ports.CompletionRequest) (string, error) {
	f.calls = append(f.calls, req)
	if len(f.replies) == 0 {
		return "", &llm.APIError{Provider: "fake", Status: 500, Body: "script exhausted"}
	}
	r := f.replies[0]
	f.replies = f.replies[1:]
	return r.body, r.err
}

const goodReply = "```json\n" + `{
  "headline": "FCA consults on resilience reporting",
  "summary": "New mandatory reporting for banks. Responses due mid-2026.",
  "area": "Operational Resilience",
  "content_type": "Consultation",
  "impact_level": "Significant",
  "urgency": "High",
  "primary_sector": "Banking",
  "sectors": {"Banking": 80},
  "firm_types_affected": ["Banks", "Building Societies"],
  "key_dates": "Responses are requested by 30 June 2026."
}` + "\n```"

func noSleep(times *[]time.Duration) func(context.Context, time.Duration) {
	return func(_ context.Context, d time.Duration) {
		*times = append(*times, d)
	}
}

func TestAnalyzeUpdateWithoutProviderUsesFallback(t *testing.T) {
	t.Parallel()

	svc := NewService(nil, testLogger(), Options{})
	env := svc.AnalyzeUpdate(context.Background(), testUpdate())

	assert.True(t, env.Success)
	assert.True(t, env.Fallback)
	require.NotNil(t, env.Data)
	assert.Equal(t, "Consultation", env.ContentType)
	assert.True(t, env.Data.Fallback)
}

func TestAnalyzeUpdateProviderSuccess(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{replies: []fakeReply{{body: goodReply}}}
	var slept []time.Duration
	svc := NewService(provider, testLogger(), Options{
		Sleep: noSleep(&slept),
		Now:   func() time.Time { return time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC) },
	})

	env := svc.AnalyzeUpdate(context.Background(), testUpdate())

	assert.True(t, env.Success)
	assert.False(t, env.Fallback)
	require.NotNil(t, env.Data)
	assert.Equal(t, "Consultation", env.Data.ContentType)
	assert.Equal(t, domain.ImpactSignificant, env.Data.ImpactLevel)
	assert.Equal(t, "fake-model", env.Data.Model)
	require.NotNil(t, env.Data.ComplianceDeadline)
	assert.Equal(t, time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC), *env.Data.ComplianceDeadline)

	require.Len(t, provider.calls, 1)
	assert.Contains(t, provider.calls[0].User, "Authority: FCA")
	assert.Contains(t, provider.calls[0].User, "Crypto Assets", "prompt lists the sector vocabulary")
}

func TestRateLimitBacksOffThenSucceeds(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{replies: []fakeReply{
		{err: &llm.APIError{Provider: "fake", Status: 429, Body: "slow down"}},
		{body: goodReply},
	}}
	var slept []time.Duration
	svc := NewService(provider, testLogger(), Options{Sleep: noSleep(&slept)})

	env := svc.AnalyzeUpdate(context.Background(), testUpdate())

	assert.False(t, env.Fallback)
	assert.Len(t, provider.calls, 2)
	assert.Contains(t, slept, 20*time.Second)
	assert.Equal(t, 1, svc.failures["fake-model"])
}

func TestUnknownModelAdvancesChain(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{replies: []fakeReply{
		{err: &llm.APIError{Provider: "fake", Status: 404, Body: "model not found"}},
		{body: goodReply},
	}}
	var slept []time.Duration
	svc := NewService(provider, testLogger(), Options{
		Models: []string{"retired-model", "current-model"},
		Sleep:  noSleep(&slept),
	})

	env := svc.AnalyzeUpdate(context.Background(), testUpdate())

	assert.False(t, env.Fallback)
	require.Len(t, provider.calls, 2)
	assert.Equal(t, "retired-model", provider.calls[0].Model)
	assert.Equal(t, "current-model", provider.calls[1].Model)
	assert.Equal(t, "current-model", env.Data.Model)

	// The working model leads the chain on the next call.
	provider.replies = []fakeReply{{body: goodReply}}
	svc.AnalyzeUpdate(context.Background(), testUpdate())
	assert.Equal(t, "current-model", provider.calls[2].Model)
}

func TestAuthFailureIsTerminal(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{replies: []fakeReply{
		{err: &llm.APIError{Provider: "fake", Status: 401, Body: "bad key"}},
	}}
	var slept []time.Duration
	svc := NewService(provider, testLogger(), Options{Sleep: noSleep(&slept)})

	env := svc.AnalyzeUpdate(context.Background(), testUpdate())

	assert.True(t, env.Fallback)
	assert.Len(t, provider.calls, 1, "no retry on credential errors")
}

func TestShortContentSkipsProvider(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{replies: []fakeReply{{body: goodReply}}}
	svc := NewService(provider, testLogger(), Options{})

	u := domain.RegUpdate{
		Headline:  "Brief note",
		URL:       "https://www.fca.org.uk/brief-note",
		Authority: "FCA",
		Raw:       map[string]string{domain.RawContent: "Short."},
	}
	env := svc.AnalyzeUpdate(context.Background(), u)

	assert.True(t, env.Fallback)
	assert.Empty(t, provider.calls)
	assert.Equal(t, domain.ContentTypeOther, env.ContentType)
	assert.Equal(t, domain.ImpactInformational, env.ImpactLevel)
}

func TestShortContentUnderFiftyCharsIsInformational(t *testing.T) {
	t.Parallel()

	svc := NewService(nil, testLogger(), Options{})
	u := domain.RegUpdate{
		Headline:  "Immediate prohibition notice",
		URL:       "https://www.fca.org.uk/notice-1",
		Authority: "FCA",
		// 42 chars of high-impact wording still counts as informational.
		Raw: map[string]string{domain.RawContent: "Firms must comply with the ban immediately"},
	}

	env := svc.AnalyzeUpdate(context.Background(), u)

	assert.True(t, env.Fallback)
	assert.Equal(t, domain.ImpactInformational, env.ImpactLevel)
}

func TestRetryLimitIsConfigurable(t *testing.T) {
	t.Parallel()

	rateLimited := fakeReply{err: &llm.APIError{Provider: "fake", Status: 429, Body: "slow down"}}
	provider := &fakeProvider{replies: []fakeReply{rateLimited, rateLimited, {body: goodReply}}}
	var slept []time.Duration
	svc := NewService(provider, testLogger(), Options{Retries: 1, Sleep: noSleep(&slept)})

	env := svc.AnalyzeUpdate(context.Background(), testUpdate())

	assert.True(t, env.Fallback, "one retry allowed, second 429 exhausts the limit")
	assert.Len(t, provider.calls, 2)
}

func TestNormalizationForcesEnums(t *testing.T) {
	t.Parallel()

	junk := `{"headline":"x","content_type":"Weird Category","impact_level":"CRITICAL","urgency":"ASAP"}`
	provider := &fakeProvider{replies: []fakeReply{{body: junk}}}
	svc := NewService(provider, testLogger(), Options{})

	env := svc.AnalyzeUpdate(context.Background(), testUpdate())

	assert.False(t, env.Fallback)
	assert.Equal(t, domain.ContentTypeOther, env.Data.ContentType)
	assert.Equal(t, domain.ImpactModerate, env.Data.ImpactLevel)
	assert.Equal(t, domain.UrgencyMedium, env.Data.Urgency)
	assert.Equal(t, "General", env.Data.PrimarySector)
	assert.NotNil(t, env.Data.Sectors)
}

func TestFallbackInfersGuidanceFromURL(t *testing.T) {
	t.Parallel()

	u := domain.RegUpdate{
		Headline:  "FCA publishes expectations for consumer outcomes",
		URL:       "https://www.fca.org.uk/publications/guidance/gc25-1",
		Authority: "FCA",
		Raw: map[string]string{
			domain.RawContent: "The FCA sets out its expectations for how firms treat retail customers.",
		},
	}
	out := FallbackAnalyze(u)
	assert.Equal(t, "Guidance", out.ContentType)
}

func TestFallbackToleratesEmptyContent(t *testing.T) {
	t.Parallel()

	out := FallbackAnalyze(domain.RegUpdate{URL: "https://example.org/x"})
	assert.Equal(t, "Regulatory update", out.Headline)
	assert.Equal(t, domain.ContentTypeOther, out.ContentType)
}

func TestBusinessImpactBounds(t *testing.T) {
	t.Parallel()

	cases := []modelOutput{
		{},
		{ImpactLevel: domain.ImpactInformational, Urgency: domain.UrgencyLow},
		{
			ImpactLevel: domain.ImpactSignificant,
			Urgency:     domain.UrgencyHigh,
			Sectors:     map[string]int{"Banking": 90, "Insurance": 50, "Payments": 40, "Pensions": 30},
		},
	}
	texts := []string{"", "newsletter update", "enforcement fine, firms must comply by the deadline"}
	for i, c := range cases {
		got := businessImpact(c, texts[i])
		assert.GreaterOrEqual(t, got, 1)
		assert.LessOrEqual(t, got, 10)
	}
}

func TestEnhancementArtifacts(t *testing.T) {
	t.Parallel()

	svc := NewService(nil, testLogger(), Options{})
	env := svc.AnalyzeUpdate(context.Background(), testUpdate())
	a := env.Data

	assert.Contains(t, a.Tags, "impact:significant")
	assert.Contains(t, a.Tags, "sector:banking")
	assert.Contains(t, a.Tags, "has:fallback")

	require.NotEmpty(t, a.Phases)
	assert.Equal(t, "Initial Analysis", a.Phases[0].Name)
	for i, p := range a.Phases {
		assert.Equal(t, i+1, p.Order)
	}

	assert.Contains(t, a.Resources.Roles, "Compliance Officer")
	assert.Equal(t, a.BusinessImpact*3, a.Resources.EffortDays)
	assert.InDelta(t, 0.7, a.Confidence, 0.3)
}

func TestParseResponseVariants(t *testing.T) {
	t.Parallel()

	out, err := parseResponse("Here is the result:\n{\"headline\":\"h\",\"impact_summary\":\"s\"}\nDone.")
	require.NoError(t, err)
	assert.Equal(t, "h", out.Headline)
	assert.Equal(t, "s", out.Summary, "impact_summary is accepted as an alias")

	_, err = parseResponse("I cannot classify this document.")
	assert.Error(t, err)
}
