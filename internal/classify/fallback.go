package classify

import (
	"strings"

	"RegScanner/internal/domain"
	"RegScanner/internal/enrich"
)

// URL path fragments that identify a document category before any text
// analysis is needed. Checked in order.
var urlTypeHints = []struct {
	fragment string
	label    string
}{
	{"/consultation", "Consultation"},
	{"/discussion", "Discussion Paper"},
	{"/guidance", "Guidance"},
	{"/policy", "Policy Statement"},
	{"/enforcement", "Enforcement Action"},
	{"/final-notices", "Enforcement Action"},
	{"/speech", "Speech"},
	{"/press-release", "Press Release"},
	{"/news", "Press Release"},
	{"/market-stud", "Market Study"},
	{"/report", "Report"},
	{"/research", "Report"},
}

// Labels the document-type tables produce that differ from the canonical
// content-type enum.
var docTypeAliases = map[string]string{
	"Consultation Paper": "Consultation",
	"Enforcement Notice": "Enforcement Action",
	"Standard":           "Technical Standard",
	"Statement":          "Policy Statement",
}

// FallbackAnalyze classifies an update with keyword and pattern rules
// only. It is the path of last resort when no provider is configured or
// every model attempt failed, so it never returns an error and tolerates
// empty content.
func FallbackAnalyze(u domain.RegUpdate) modelOutput {
	content := u.Content()
	text := u.Headline + " " + content

	impact := enrich.AssessImpact(text)
	if len(strings.TrimSpace(content)) < minContentLen {
		// Too little text to claim anything beyond its existence.
		impact.Level = domain.ImpactInformational
	}
	sectors := enrich.ClassifySectors(text)

	out := modelOutput{
		Headline:      strings.TrimSpace(u.Headline),
		Summary:       summarize(content),
		Area:          u.Area,
		ContentType:   inferContentType(u.URL, u.Headline, content),
		ImpactLevel:   impact.Level,
		Urgency:       inferUrgency(impact.Level, text),
		PrimarySector: enrich.PrimarySector(text),
		Sectors:       map[string]int{},
	}
	for _, s := range sectors {
		out.Sectors[s.Name] = s.Relevance
	}
	if out.Headline == "" {
		out.Headline = synthesizeHeadline(content)
	}
	return out
}

// inferContentType tries the URL path first, then the headline, then the
// body. Short or empty inputs land on Other.
func inferContentType(rawURL, headline, body string) string {
	lowerURL := strings.ToLower(rawURL)
	for _, hint := range urlTypeHints {
		if strings.Contains(lowerURL, hint.fragment) {
			return hint.label
		}
	}
	for _, text := range []string{headline, body} {
		if label := enrich.ClassifyDocumentType(text); label != "" {
			if alias, ok := docTypeAliases[label]; ok {
				return alias
			}
			return label
		}
	}
	return domain.ContentTypeOther
}

func inferUrgency(impactLevel, text string) string {
	if len(enrich.UrgencyIndicators(text)) > 0 {
		return domain.UrgencyHigh
	}
	switch impactLevel {
	case domain.ImpactSignificant:
		return domain.UrgencyHigh
	case domain.ImpactInformational:
		return domain.UrgencyLow
	}
	return domain.UrgencyMedium
}

// summarize takes the first two sentences, capped at 300 characters.
func summarize(content string) string {
	content = strings.TrimSpace(content)
	if content == "" {
		return ""
	}
	end := 0
	for n := 0; n < 2; n++ {
		i := strings.IndexAny(content[end:], ".!?")
		if i < 0 {
			end = len(content)
			break
		}
		end += i + 1
	}
	if end == 0 || end > len(content) {
		end = len(content)
	}
	s := strings.TrimSpace(content[:end])
	if len(s) > 300 {
		s = strings.TrimSpace(s[:300])
	}
	return s
}

func synthesizeHeadline(content string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if len(line) >= 10 {
			if len(line) > 120 {
				line = strings.TrimSpace(line[:120])
			}
			return line
		}
	}
	return "Regulatory update"
}
