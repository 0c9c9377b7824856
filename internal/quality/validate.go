package quality

import (
	"net/url"
	"regexp"
	"strings"

	"RegScanner/internal/domain"
)

// Config carries the quality thresholds. The defaults mirror the
// historical constants; nothing below hard-codes them.
type Config struct {
	ValidMin          int
	PersistMin        int
	TitleSimilarity   float64
	ContentSimilarity float64
}

// DefaultConfig returns the historical thresholds.
func DefaultConfig() Config {
	return Config{
		ValidMin:          50,
		PersistMin:        60,
		TitleSimilarity:   0.85,
		ContentSimilarity: 0.90,
	}
}

var spamIndicators = []string{
	"click here",
	"buy now",
	"limited offer",
	"subscribe today",
	"casino",
	"free trial",
	"unsubscribe",
}

var regulatoryKeywords = []string{
	"regulation", "regulatory", "compliance", "consultation", "guidance",
	"enforcement", "policy", "supervision", "supervisory", "directive",
	"framework", "requirement", "rule", "authority", "prudential",
	"standard", "firm", "statement",
}

var excludePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bjob vacanc`),
	regexp.MustCompile(`(?i)\bcareers at\b`),
	regexp.MustCompile(`(?i)\bcookie policy\b`),
	regexp.MustCompile(`(?i)\bwebinar recording\b`),
	regexp.MustCompile(`(?i)\bnewsletter sign[- ]?up\b`),
}

// Validation issue codes.
const (
	IssueMissingHeadline = "missing-or-short-headline"
	IssueMissingURL      = "missing-url"
	IssueMalformedURL    = "malformed-url"
	IssueMissingAuth     = "missing-authority"
	IssueShortContent    = "short-content"
	IssueSpamIndicator   = "spam-indicator"
	IssueNoRegKeyword    = "no-regulatory-keyword"
	IssueExcludePattern  = "exclude-pattern"
)

// ValidateUpdate scores one update starting at 100 and subtracting per
// defect. Valid requires both the score gate and a clean issue list; the
// two signals are independent. Pure function.
func ValidateUpdate(u domain.RegUpdate, cfg Config) domain.ValidationResult {
	score := 100
	var issues []string

	if len(strings.TrimSpace(u.Headline)) < 10 {
		score -= 30
		issues = append(issues, IssueMissingHeadline)
	}

	if strings.TrimSpace(u.URL) == "" {
		score -= 40
		issues = append(issues, IssueMissingURL)
	} else if parsed, err := url.Parse(u.URL); err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		score -= 20
		issues = append(issues, IssueMalformedURL)
	}

	if strings.TrimSpace(u.Authority) == "" {
		score -= 20
		issues = append(issues, IssueMissingAuth)
	}

	content := u.Content()
	lower := strings.ToLower(content)

	if len(content) < 50 {
		score -= 15
		issues = append(issues, IssueShortContent)
	}

	for _, spam := range spamIndicators {
		if strings.Contains(lower, spam) {
			score -= 50
			issues = append(issues, IssueSpamIndicator)
			break
		}
	}

	if len(content) > 100 && !containsAny(lower, regulatoryKeywords) {
		score -= 25
		issues = append(issues, IssueNoRegKeyword)
	}

	haystack := strings.ToLower(u.Headline + " " + content)
	for _, pattern := range excludePatterns {
		if pattern.MatchString(haystack) {
			score -= 40
			issues = append(issues, IssueExcludePattern)
			break
		}
	}

	if score < 0 {
		score = 0
	}

	return domain.ValidationResult{
		Score:  score,
		Valid:  score >= cfg.ValidMin && len(issues) == 0,
		Issues: issues,
	}
}

func containsAny(haystack string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}
