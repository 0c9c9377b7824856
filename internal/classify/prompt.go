package classify

import (
	"fmt"
	"strings"

	"RegScanner/internal/domain"
	"RegScanner/internal/enrich"
)

const maxPromptContent = 4000

const systemPrompt = `You are a regulatory analyst. Classify regulatory publications ` +
	`and respond with a single JSON object, no prose, matching exactly the schema you are given.`

// buildPrompt embeds the source metadata and truncated content together
// with an explicit JSON schema instruction.
func buildPrompt(u domain.RegUpdate) string {
	var b strings.Builder

	b.WriteString("Classify this regulatory publication.\n\n")
	fmt.Fprintf(&b, "Authority: %s\n", u.Authority)
	if u.PublishedAt != nil {
		fmt.Fprintf(&b, "Published: %s\n", u.PublishedAt.Format("2006-01-02"))
	}
	if country := u.Raw[domain.RawCountry]; country != "" {
		fmt.Fprintf(&b, "Country: %s\n", country)
	}
	if u.Area != "" {
		fmt.Fprintf(&b, "Area: %s\n", u.Area)
	}
	fmt.Fprintf(&b, "Headline: %s\n", u.Headline)

	if lang := u.Raw[domain.RawLanguage]; lang != "" && lang != "en" {
		b.WriteString("\nThe content below is not in English. Translate it to English first, then classify the translation.\n")
	}

	content := u.Content()
	if len(content) > maxPromptContent {
		content = content[:maxPromptContent]
	}
	fmt.Fprintf(&b, "\nContent:\n%s\n", content)

	b.WriteString(`
Respond with only this JSON object:
{
  "headline": "concise headline",
  "summary": "2-3 sentence impact summary",
  "area": "regulatory area",
  "content_type": "one of: ` + strings.Join(domain.ContentTypes, ", ") + `",
  "impact_level": "Significant | Moderate | Informational",
  "urgency": "High | Medium | Low",
  "primary_sector": "most affected sector",
  "sectors": {"sector name": relevance 0-100, sector names from: ` + strings.Join(enrich.SectorNames(), ", ") + `},
  "firm_types_affected": ["firm type"],
  "key_dates": "any deadlines or effective dates, free text"
}
`)

	return b.String()
}
