package classify

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"RegScanner/internal/domain"
	"RegScanner/internal/enrich"
)

var impactWeights = map[string]float64{
	domain.ImpactSignificant:   1.8,
	domain.ImpactModerate:      1.2,
	domain.ImpactInformational: 0.6,
}

// businessImpact maps the categorical classification onto a 1-10 scale.
// The impact level sets the base; urgency, enforcement language and sector
// spread nudge it.
func businessImpact(out modelOutput, text string) int {
	score := 5 * impactWeights[out.ImpactLevel]

	switch out.Urgency {
	case domain.UrgencyHigh:
		score++
	case domain.UrgencyLow:
		score--
	}

	lower := strings.ToLower(text)
	for _, kw := range []string{"enforcement", "fine", "penalty", "sanction"} {
		if strings.Contains(lower, kw) {
			score++
			break
		}
	}
	if strings.Contains(lower, "deadline") || strings.Contains(lower, "must comply") {
		score += 0.5
	}

	spread := len(out.Sectors)
	if spread > 3 {
		spread = 3
	}
	score += float64(spread) * 0.25

	return int(math.Round(clamp(score, 1, 10)))
}

// analysisConfidence starts from a 0.7 base and rewards content length and
// metadata richness.
func analysisConfidence(out modelOutput, contentLen int) float64 {
	c := 0.7
	if contentLen > 500 {
		c += 0.1
	}
	if contentLen > 1500 {
		c += 0.05
	}
	if len(out.Sectors) > 0 {
		c += 0.05
	}
	if out.KeyDates != "" {
		c += 0.05
	}
	return clamp(c, 0, 1)
}

// buildTags flattens the classification into searchable key:value tags.
func buildTags(a domain.Analysis) []string {
	tags := []string{
		"impact:" + tagValue(a.ImpactLevel),
		"urgency:" + tagValue(a.Urgency),
		"type:" + tagValue(a.ContentType),
	}
	if a.Area != "" {
		tags = append(tags, "area:"+tagValue(a.Area))
	}

	names := make([]string, 0, len(a.Sectors))
	for name := range a.Sectors {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		tags = append(tags, "sector:"+tagValue(name))
	}

	if a.ComplianceDeadline != nil {
		tags = append(tags, "has:deadline")
	}
	if a.Fallback {
		tags = append(tags, "has:fallback")
	}
	return tags
}

func tagValue(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "-")
}

// buildPhases sketches an implementation plan from the classification.
// Every update gets analysis, training and monitoring; heavier phases only
// appear when the impact warrants them.
func buildPhases(a domain.Analysis, text string) []domain.Phase {
	phases := []domain.Phase{{Name: "Initial Analysis", DurationWeeks: 2}}

	lower := strings.ToLower(text)
	if a.ImpactLevel == domain.ImpactSignificant {
		phases = append(phases, domain.Phase{Name: "Policy Development", DurationWeeks: 4})
		if strings.Contains(lower, "system") || strings.Contains(lower, "report") || strings.Contains(lower, "data") {
			phases = append(phases, domain.Phase{Name: "System Implementation", DurationWeeks: 6})
		}
	}
	phases = append(phases, domain.Phase{Name: "Training and Communication", DurationWeeks: 2})
	if a.ComplianceDeadline != nil {
		phases = append(phases, domain.Phase{Name: "Deadline Preparation", DurationWeeks: 2})
	}
	phases = append(phases, domain.Phase{Name: "Ongoing Monitoring", DurationWeeks: 4})

	for i := range phases {
		phases[i].Order = i + 1
	}
	return phases
}

const dayRate = 800

// buildResources projects roles and effort from the business impact score.
func buildResources(businessImpact int) domain.ResourceEstimate {
	roles := []string{"Compliance Officer"}
	if businessImpact >= 4 {
		roles = append(roles, "Legal Counsel")
	}
	if businessImpact >= 6 {
		roles = append(roles, "Business Analyst")
	}
	if businessImpact >= 8 {
		roles = append(roles, "Project Manager")
	}
	days := businessImpact * 3
	return domain.ResourceEstimate{
		Roles:         roles,
		EffortDays:    days,
		EstimatedCost: fmt.Sprintf("£%d", days*dayRate*len(roles)),
	}
}

// complianceDeadline returns the earliest future date mentioned in the
// key-dates text, or in the content when the model gave no key dates.
func complianceDeadline(keyDates, content string, now time.Time) *time.Time {
	text := keyDates
	if text == "" {
		text = content
	}
	for _, d := range enrich.ExtractDeadlines(text, now) {
		if d.Date.After(now) {
			date := d.Date
			return &date
		}
	}
	return nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
