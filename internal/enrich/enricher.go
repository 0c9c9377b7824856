// Package enrich applies pure, stateless transforms over extracted text:
// deadlines, document type, sector relevance, an impact heuristic, and
// pattern-based metadata. All classifiers are ordered data tables evaluated
// by generic scorers.
package enrich

import (
	"strings"
	"time"

	"RegScanner/internal/domain"
)

// Enrich wraps one quality-gate survivor with its enrichment bag. The
// input update is never mutated.
func Enrich(u domain.RegUpdate, now time.Time) domain.EnrichedUpdate {
	text := u.Headline + "\n" + u.Content()
	lower := strings.ToLower(text)

	deadlines := ExtractDeadlines(text, now)

	return domain.EnrichedUpdate{
		RegUpdate: u,
		Enrichment: domain.Enrichment{
			Deadlines:         deadlines,
			DocumentType:      ClassifyDocumentType(text),
			Sectors:           ClassifySectors(text),
			Impact:            AssessImpact(text),
			KeyPhrases:        KeyPhrases(text),
			UrgencyIndicators: UrgencyIndicators(text),
			ComplianceActions: ComplianceActions(text),
			References:        ExtractReferences(text),
			Amounts:           ExtractAmounts(text),
			Percentages:       ExtractPercentages(text),
			WordCount:         len(strings.Fields(text)),
			HasDeadline:       len(deadlines) > 0 || strings.Contains(lower, "deadline"),
			HasConsultation:   strings.Contains(lower, "consultation"),
			HasEnforcement:    strings.Contains(lower, "enforcement") || strings.Contains(lower, "final notice"),
			HasGuidance:       strings.Contains(lower, "guidance"),
		},
	}
}
