package quality

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"RegScanner/internal/domain"
)

func goodUpdate() domain.RegUpdate {
	published := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	return domain.RegUpdate{
		Headline:    "FCA consults on new prudential requirements for investment firms",
		URL:         "https://www.fca.org.uk/publications/cp24-1",
		Authority:   "FCA",
		FetchedAt:   time.Now().UTC(),
		PublishedAt: &published,
		Raw: map[string]string{
			domain.RawSummary: "The FCA is consulting on changes to the prudential regulation framework for investment firms, with responses requested by summer.",
		},
	}
}

func TestValidateUpdateAcceptsCleanItem(t *testing.T) {
	t.Parallel()

	res := ValidateUpdate(goodUpdate(), DefaultConfig())
	assert.True(t, res.Valid)
	assert.Equal(t, 100, res.Score)
	assert.Empty(t, res.Issues)
}

func TestValidateUpdateIsDeterministic(t *testing.T) {
	t.Parallel()

	u := goodUpdate()
	u.Authority = ""
	u.Raw[domain.RawSummary] = "short"

	first := ValidateUpdate(u, DefaultConfig())
	for i := 0; i < 5; i++ {
		again := ValidateUpdate(u, DefaultConfig())
		assert.Equal(t, first.Score, again.Score)
		assert.Equal(t, first.Issues, again.Issues)
	}
}

func TestValidateUpdatePenalties(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()

	t.Run("missing url", func(t *testing.T) {
		u := goodUpdate()
		u.URL = ""
		res := ValidateUpdate(u, cfg)
		assert.False(t, res.Valid)
		assert.Equal(t, 60, res.Score)
		assert.Contains(t, res.Issues, IssueMissingURL)
	})

	t.Run("malformed scheme", func(t *testing.T) {
		u := goodUpdate()
		u.URL = "ftp://files.example.org/doc"
		res := ValidateUpdate(u, cfg)
		assert.Equal(t, 80, res.Score)
		assert.Contains(t, res.Issues, IssueMalformedURL)
		// Score would still pass the gate; the recorded issue fails it.
		assert.False(t, res.Valid)
	})

	t.Run("spam indicator", func(t *testing.T) {
		u := goodUpdate()
		u.Raw[domain.RawSummary] = "Click here for a limited offer on regulatory compliance consulting services today."
		res := ValidateUpdate(u, cfg)
		assert.False(t, res.Valid)
		assert.Contains(t, res.Issues, IssueSpamIndicator)
	})

	t.Run("no regulatory keyword in long content", func(t *testing.T) {
		u := goodUpdate()
		u.Headline = "Weekend roundup of miscellaneous happenings everywhere"
		u.Raw[domain.RawSummary] = strings.Repeat("general chatter about nothing in particular ", 5)
		res := ValidateUpdate(u, cfg)
		assert.Contains(t, res.Issues, IssueNoRegKeyword)
	})

	t.Run("exclude pattern", func(t *testing.T) {
		u := goodUpdate()
		u.Headline = "Job vacancies at the regulator this spring"
		res := ValidateUpdate(u, cfg)
		assert.False(t, res.Valid)
		assert.Contains(t, res.Issues, IssueExcludePattern)
	})

	t.Run("score floor", func(t *testing.T) {
		res := ValidateUpdate(domain.RegUpdate{Raw: map[string]string{
			domain.RawContent: "click here " + strings.Repeat("buy now ", 20),
		}}, cfg)
		require.GreaterOrEqual(t, res.Score, 0)
		assert.False(t, res.Valid)
	})
}

func TestScoreItemComposites(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	u := goodUpdate()
	u.Raw[domain.RawReference] = "CP24/1"

	scores := ScoreItem(u, true, now)
	assert.GreaterOrEqual(t, scores.Quality, 60)
	assert.Greater(t, scores.Completeness, 50)
	// Trusted authority + validated + fresh fetch.
	assert.Equal(t, 100, scores.Reliability)

	bare := domain.RegUpdate{Raw: map[string]string{}}
	low := ScoreItem(bare, false, now)
	assert.Less(t, low.Quality, 60)
	assert.LessOrEqual(t, low.Completeness, 30)
}

func TestRunQualityScore(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, RunQualityScore(0, 0, 0, 0))
	assert.Equal(t, 100, RunQualityScore(10, 10, 0, 0))
	// 50%*0.5 + 30%*0.8 + 20%*1.0 -> 69
	assert.Equal(t, 69, RunQualityScore(10, 5, 2, 0))
}
