package parser

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	pw "github.com/playwright-community/playwright-go"

	"RegScanner/internal/domain"
	"RegScanner/internal/httpx"
	"RegScanner/internal/scanner"
)

const browserTimeoutMs = 45000

var markerDateExpr = regexp.MustCompile(`\d{1,2}\s+(?:January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{4}|\d{1,2}[/.-]\d{1,2}[/.-]\d{4}`)

// BrowserScanner renders JavaScript-dependent pages with a headless
// browser. Needed for sources whose publication lists have no stable
// per-item container in the raw HTML.
type BrowserScanner struct {
	pw      *pw.Playwright
	browser pw.Browser
	limiter *httpx.Limiter
	logger  *slog.Logger
}

var _ scanner.Scanner = (*BrowserScanner)(nil)

// NewBrowserScanner launches a headless chromium instance. Callers own the
// Close.
func NewBrowserScanner(limiter *httpx.Limiter, logger *slog.Logger) (*BrowserScanner, error) {
	run, err := pw.Run()
	if err != nil {
		return nil, fmt.Errorf("start playwright: %w", err)
	}

	browser, err := run.Chromium.Launch(pw.BrowserTypeLaunchOptions{
		Headless: pw.Bool(true),
	})
	if err != nil {
		_ = run.Stop()
		return nil, fmt.Errorf("launch chromium: %w", err)
	}

	return &BrowserScanner{pw: run, browser: browser, limiter: limiter, logger: logger}, nil
}

// Name identifies the strategy inside the registry.
func (s *BrowserScanner) Name() string {
	return "browser"
}

// Applicable reports whether any target needs JavaScript rendering.
func (s *BrowserScanner) Applicable(src domain.SourceConfig) bool {
	for _, t := range src.Targets {
		if t.RenderJS {
			return true
		}
	}
	return false
}

// Scan renders each JS target and extracts items, either through the
// selector extractor or by date-marker association when the listing has no
// per-item container.
func (s *BrowserScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.RegUpdate, error) {
	src := req.Source
	now := time.Now().UTC()

	var updates []domain.RegUpdate
	var failed, total int

	for name, target := range src.Targets {
		if !target.RenderJS {
			continue
		}
		total++

		if s.limiter != nil {
			if err := s.limiter.Wait(ctx, target.URL); err != nil {
				return updates, err
			}
		}

		html, err := s.render(target.URL)
		if err != nil {
			failed++
			s.debug("render failed", "source", src.Name, "target", name, "error", err)
			continue
		}

		doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
		if err != nil {
			failed++
			continue
		}

		var items []domain.RegUpdate
		if target.Selectors.Items != "" {
			items = extractItems(doc, target, src, name, now)
		} else {
			items = associateDateMarkers(doc, src, name, now)
		}
		updates = append(updates, items...)
	}

	if total > 0 && failed == total {
		return updates, fmt.Errorf("all %d rendered targets failed for source %s", failed, src.Name)
	}

	return updates, nil
}

func (s *BrowserScanner) render(url string) (string, error) {
	page, err := s.browser.NewPage()
	if err != nil {
		return "", fmt.Errorf("new page: %w", err)
	}
	defer page.Close()

	if _, err := page.Goto(url, pw.PageGotoOptions{
		WaitUntil: pw.WaitUntilStateNetworkidle,
		Timeout:   pw.Float(browserTimeoutMs),
	}); err != nil {
		return "", fmt.Errorf("navigate %s: %w", url, err)
	}

	content, err := page.Content()
	if err != nil {
		return "", fmt.Errorf("read content: %w", err)
	}

	return content, nil
}

// Close tears down the browser and the playwright driver.
func (s *BrowserScanner) Close() error {
	var firstErr error
	if s.browser != nil {
		if err := s.browser.Close(); err != nil {
			firstErr = err
		}
	}
	if s.pw != nil {
		if err := s.pw.Stop(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// associateDateMarkers walks the rendered body in document order, keeping
// the most recent date-looking text node and binding it to the link nodes
// that follow it.
func associateDateMarkers(doc *goquery.Document, src domain.SourceConfig, category string, now time.Time) []domain.RegUpdate {
	var updates []domain.RegUpdate
	var current *time.Time
	seen := map[string]struct{}{}

	doc.Find("body *").Each(func(i int, node *goquery.Selection) {
		if goquery.NodeName(node) == "a" {
			href, ok := node.Attr("href")
			if !ok {
				return
			}
			title := strings.TrimSpace(node.Text())
			if len(title) < minHeadlineLen {
				return
			}
			normalized, err := httpx.NormalizeURL(href, src.BaseURL)
			if err != nil {
				return
			}
			if _, dup := seen[normalized]; dup {
				return
			}
			seen[normalized] = struct{}{}

			updates = append(updates, domain.RegUpdate{
				Headline:       title,
				URL:            normalized,
				Authority:      src.Authority,
				Area:           category,
				SourceCategory: "headless",
				FetchedAt:      now,
				PublishedAt:    current,
				Raw:            map[string]string{},
			})
			return
		}

		// Only leaf-ish text nodes qualify as date markers; containers would
		// match their descendants' text too.
		if node.Children().Length() > 0 {
			return
		}
		if match := markerDateExpr.FindString(node.Text()); match != "" {
			if parsed := ParseDate(match); parsed != nil {
				current = parsed
			}
		}
	})

	return updates
}

func (s *BrowserScanner) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
