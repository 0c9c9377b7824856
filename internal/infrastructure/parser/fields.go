package parser

import (
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"RegScanner/internal/domain"
	"RegScanner/internal/httpx"
)

// minHeadlineLen drops junk items at the edge, before the quality engine.
const minHeadlineLen = 10

var dateLayouts = []string{
	"2 Jan 2006",
	"2 January 2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2006-01-02",
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"02.01.2006",
	time.RFC3339,
	time.RFC1123,
	time.RFC1123Z,
}

// ParseDate tries the known date layouts against a trimmed string and
// returns nil when none match. Numeric forms are day-first.
func ParseDate(value string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			parsed = parsed.UTC()
			return &parsed
		}
	}
	return nil
}

// extractItems applies a selector set to one listing document. Required
// fields gate the item; optional fields land silently in the raw bag when
// matched.
func extractItems(doc *goquery.Document, target domain.ScrapeTarget, src domain.SourceConfig, category string, now time.Time) []domain.RegUpdate {
	sel := target.Selectors
	var items []domain.RegUpdate

	doc.Find(sel.Items).Each(func(i int, node *goquery.Selection) {
		title := strings.TrimSpace(selectText(node, sel.Title))
		href := selectHref(node, sel.URL)

		if len(title) < minHeadlineLen || href == "" {
			return
		}

		normalized, err := httpx.NormalizeURL(href, src.BaseURL)
		if err != nil {
			return
		}

		update := domain.RegUpdate{
			Headline:       title,
			URL:            normalized,
			Authority:      src.Authority,
			Area:           category,
			SourceCategory: "deep-scraping",
			FetchedAt:      now,
			PublishedAt:    ParseDate(selectText(node, sel.Date)),
			Raw:            map[string]string{},
		}

		if summary := strings.TrimSpace(selectText(node, sel.Summary)); summary != "" {
			update.Raw[domain.RawSummary] = summary
		}
		if src.Country != "" {
			update.Raw[domain.RawCountry] = src.Country
		}

		setOptional(update.Raw, domain.RawDeadline, node, sel.Deadline)
		setOptional(update.Raw, domain.RawSpeaker, node, sel.Speaker)
		setOptional(update.Raw, domain.RawStatus, node, sel.Status)
		setOptional(update.Raw, domain.RawReference, node, sel.Reference)
		setOptional(update.Raw, domain.RawFirm, node, sel.Firm)
		setOptional(update.Raw, domain.RawDocumentType, node, sel.DocumentType)

		items = append(items, update)
	})

	return items
}

// sourcePolicy maps a source's scrape policy onto the fetch retry loop.
func sourcePolicy(src domain.SourceConfig) httpx.RetryPolicy {
	return httpx.RetryPolicy{
		Attempts: src.Policy.Retries,
		Base:     time.Second,
		Timeout:  src.Policy.Timeout,
	}
}

func selectText(node *goquery.Selection, selector string) string {
	if selector == "" {
		return ""
	}
	return node.Find(selector).First().Text()
}

func selectHref(node *goquery.Selection, selector string) string {
	target := node
	if selector != "" {
		target = node.Find(selector).First()
	}
	if href, ok := target.Attr("href"); ok {
		return href
	}
	if href, ok := target.Find("a").First().Attr("href"); ok {
		return href
	}
	return ""
}

func setOptional(raw map[string]string, key string, node *goquery.Selection, selector string) {
	if selector == "" {
		return
	}
	if value := strings.TrimSpace(node.Find(selector).First().Text()); value != "" {
		raw[key] = value
	}
}
