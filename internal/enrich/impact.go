package enrich

import (
	"strings"

	"RegScanner/internal/domain"
)

// Indicator buckets for the impact heuristic. Keyword hits are summed per
// bucket; the highest bucket wins, Medium when nothing scores.
var impactBuckets = map[string][]string{
	"HIGH": {
		"must", "mandatory", "required", "enforcement", "fine", "penalty",
		"deadline", "prohibition", "ban", "sanction", "immediate", "final rules",
	},
	"MEDIUM": {
		"should", "guidance", "consultation", "proposal", "review",
		"expectation", "recommendation", "draft",
	},
	"LOW": {
		"speech", "discussion", "informational", "update", "newsletter",
		"remarks", "blog", "summary",
	},
}

var bucketLevels = map[string]string{
	"HIGH":   domain.ImpactSignificant,
	"MEDIUM": domain.ImpactModerate,
	"LOW":    domain.ImpactInformational,
}

// AssessImpact sums keyword hits per bucket and returns the winning level
// with a confidence derived from hit count. Defaults to Moderate when no
// bucket scores.
func AssessImpact(text string) domain.ImpactAssessment {
	lower := strings.ToLower(text)

	counts := map[string]int{}
	for bucket, keywords := range impactBuckets {
		for _, kw := range keywords {
			counts[bucket] += strings.Count(lower, kw)
		}
	}

	best, bestCount := "MEDIUM", 0
	for _, bucket := range []string{"HIGH", "MEDIUM", "LOW"} {
		if counts[bucket] > bestCount {
			best = bucket
			bestCount = counts[bucket]
		}
	}

	confidence := 0.5
	if bestCount > 0 {
		confidence = 0.5 + float64(bestCount)*0.05
		if confidence > 0.95 {
			confidence = 0.95
		}
	}

	return domain.ImpactAssessment{
		Level:      bucketLevels[best],
		Confidence: confidence,
		Indicators: counts,
	}
}
