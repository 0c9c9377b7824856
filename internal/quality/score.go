package quality

import (
	"strings"
	"time"

	"RegScanner/internal/domain"
)

// Authorities whose publications get a reliability bump, by trust tier.
var trustedAuthorities = map[string]int{
	"FCA":  30,
	"PRA":  30,
	"BOE":  30,
	"ESMA": 25,
	"EBA":  25,
	"BIS":  25,
	"FATF": 20,
	"SEC":  20,
}

// ItemScores bundles the three composite scores of the enhancement pass.
type ItemScores struct {
	Quality      int
	Completeness int
	Reliability  int
}

// ScoreItem computes the composite item-quality, completeness and
// reliability scores for one validated update.
func ScoreItem(u domain.RegUpdate, valid bool, now time.Time) ItemScores {
	return ItemScores{
		Quality:      qualityScore(u),
		Completeness: completenessScore(u),
		Reliability:  reliabilityScore(u, valid, now),
	}
}

func qualityScore(u domain.RegUpdate) int {
	score := 100

	if strings.TrimSpace(u.Headline) == "" {
		score -= 30
	}
	if strings.TrimSpace(u.URL) == "" {
		score -= 30
	}
	if strings.TrimSpace(u.Authority) == "" {
		score -= 20
	}

	switch content := u.Content(); {
	case len(content) < 100:
		score -= 20
	case len(content) > 1000:
		score += 20
	case len(content) > 400:
		score += 10
	}

	if u.PublishedAt != nil {
		score += 5
	}
	if u.Raw[domain.RawReference] != "" {
		score += 5
	}
	if u.Raw[domain.RawDocumentType] != "" {
		score += 5
	}

	return clampScore(score)
}

// completenessScore weighs required-field presence at 70% and optional
// fields at 30%.
func completenessScore(u domain.RegUpdate) int {
	required := 0
	if u.Headline != "" {
		required++
	}
	if u.URL != "" {
		required++
	}
	if u.Authority != "" {
		required++
	}
	if u.PublishedAt != nil {
		required++
	}

	optionalKeys := []string{
		domain.RawSummary, domain.RawContent, domain.RawDeadline,
		domain.RawSpeaker, domain.RawReference, domain.RawDocumentType,
	}
	optional := 0
	for _, key := range optionalKeys {
		if u.Raw[key] != "" {
			optional++
		}
	}

	score := 70*required/4 + 30*optional/len(optionalKeys)
	return clampScore(score)
}

func reliabilityScore(u domain.RegUpdate, valid bool, now time.Time) int {
	score := 50

	if bump, ok := trustedAuthorities[strings.ToUpper(u.Authority)]; ok {
		score += bump
	} else if u.Authority != "" {
		score += 20
	}

	if valid {
		score += 20
	}

	if !u.FetchedAt.IsZero() && now.Sub(u.FetchedAt) <= 7*24*time.Hour {
		score += 10
	}

	return clampScore(score)
}

// RunQualityScore aggregates one run's gate outcomes into a 0-100 score:
// 50% valid rate, 30% non-duplicate rate, 20% non-failure rate.
func RunQualityScore(total, valid, duplicates, failures int) int {
	if total == 0 {
		return 0
	}

	validRate := float64(valid) / float64(total)
	nonDupRate := float64(total-duplicates) / float64(total)
	nonFailRate := float64(total-failures) / float64(total)

	return int(100*(0.5*validRate+0.3*nonDupRate+0.2*nonFailRate) + 0.5)
}

func clampScore(s int) int {
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}
