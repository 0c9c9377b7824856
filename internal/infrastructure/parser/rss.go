package parser

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"RegScanner/internal/domain"
	"RegScanner/internal/httpx"
	"RegScanner/internal/scanner"
)

// RSSScanner consumes the structured feeds a source publishes. Feed
// bodies come through the shared fetch client so feeds get the same
// rate limiting and retry behaviour as page scraping.
type RSSScanner struct {
	parser *gofeed.Parser
	client *httpx.Client
	logger *slog.Logger
}

var _ scanner.Scanner = (*RSSScanner)(nil)

// NewRSSScanner wires the feed parser with the shared fetch client.
func NewRSSScanner(client *httpx.Client, logger *slog.Logger) *RSSScanner {
	return &RSSScanner{parser: gofeed.NewParser(), client: client, logger: logger}
}

// Name identifies the strategy inside the registry.
func (s *RSSScanner) Name() string {
	return "rss"
}

// Applicable reports whether the source configures any feeds.
func (s *RSSScanner) Applicable(src domain.SourceConfig) bool {
	return len(src.Feeds) > 0
}

// Scan walks every configured feed; a failing feed is logged and skipped
// without aborting the source's remaining feeds.
func (s *RSSScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.RegUpdate, error) {
	src := req.Source
	now := time.Now().UTC()

	var updates []domain.RegUpdate
	var failed int

	policy := sourcePolicy(src)
	for _, feedCfg := range src.Feeds {
		if err := ctx.Err(); err != nil {
			return updates, err
		}

		body, err := s.client.Get(ctx, feedCfg.URL, policy)
		if err != nil {
			failed++
			s.debug("feed fetch failed", "source", src.Name, "feed", feedCfg.URL, "error", err)
			continue
		}

		feed, err := s.parser.ParseString(string(body))
		if err != nil {
			failed++
			s.debug("feed parse failed", "source", src.Name, "feed", feedCfg.URL, "error", err)
			continue
		}

		for _, entry := range feed.Items {
			update, ok := s.entryToUpdate(entry, src, feedCfg, now)
			if !ok {
				continue
			}
			updates = append(updates, update)
		}
	}

	if failed == len(src.Feeds) && failed > 0 {
		return updates, fmt.Errorf("all %d feeds failed for source %s", failed, src.Name)
	}

	return updates, nil
}

func (s *RSSScanner) entryToUpdate(entry *gofeed.Item, src domain.SourceConfig, feedCfg domain.FeedConfig, now time.Time) (domain.RegUpdate, bool) {
	title := strings.TrimSpace(entry.Title)
	link := strings.TrimSpace(entry.Link)

	if len(title) < minHeadlineLen || link == "" {
		return domain.RegUpdate{}, false
	}

	normalized, err := httpx.NormalizeURL(link, src.BaseURL)
	if err != nil {
		return domain.RegUpdate{}, false
	}

	update := domain.RegUpdate{
		Headline:       title,
		URL:            normalized,
		Authority:      src.Authority,
		Area:           feedCfg.Type,
		SourceCategory: "rss",
		FetchedAt:      now,
		PublishedAt:    entry.PublishedParsed,
		Raw:            map[string]string{},
	}

	if summary := strings.TrimSpace(entry.Description); summary != "" {
		update.Raw[domain.RawSummary] = summary
	}
	if content := strings.TrimSpace(entry.Content); content != "" {
		update.Raw[domain.RawContent] = content
	}
	if src.Country != "" {
		update.Raw[domain.RawCountry] = src.Country
	}

	return update, true
}

func (s *RSSScanner) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
