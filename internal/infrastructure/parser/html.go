package parser

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"RegScanner/internal/domain"
	"RegScanner/internal/httpx"
	"RegScanner/internal/scanner"
)

const defaultMaxPages = 5

// HTMLScanner walks paginated listing pages and extracts items through the
// selector-driven field extractor.
type HTMLScanner struct {
	client *httpx.Client
	logger *slog.Logger
}

var _ scanner.Scanner = (*HTMLScanner)(nil)

// NewHTMLScanner wires the shared fetch client.
func NewHTMLScanner(client *httpx.Client, logger *slog.Logger) *HTMLScanner {
	return &HTMLScanner{client: client, logger: logger}
}

// Name identifies the strategy inside the registry.
func (s *HTMLScanner) Name() string {
	return "html"
}

// Applicable reports whether the source has any target parseable from raw
// HTML.
func (s *HTMLScanner) Applicable(src domain.SourceConfig) bool {
	for _, t := range src.Targets {
		if !t.RenderJS {
			return true
		}
	}
	return false
}

// Scan walks each non-JS target page by page, in increasing page order.
// A failing target is logged and skipped; the source keeps collecting its
// other targets.
func (s *HTMLScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.RegUpdate, error) {
	src := req.Source
	policy := sourcePolicy(src)

	var updates []domain.RegUpdate
	var failed, total int

	for name, target := range src.Targets {
		if target.RenderJS {
			continue
		}
		total++

		items, err := s.scanTarget(ctx, src, name, target, policy)
		updates = append(updates, items...)
		if err != nil {
			failed++
			s.debug("target failed", "source", src.Name, "target", name, "error", err)
		}
	}

	if total > 0 && failed == total {
		return updates, fmt.Errorf("all %d targets failed for source %s", failed, src.Name)
	}

	return updates, nil
}

func (s *HTMLScanner) scanTarget(ctx context.Context, src domain.SourceConfig, name string, target domain.ScrapeTarget, policy httpx.RetryPolicy) ([]domain.RegUpdate, error) {
	maxPages := target.Pagination.MaxPages
	if maxPages <= 0 {
		maxPages = defaultMaxPages
	}

	now := time.Now().UTC()
	var updates []domain.RegUpdate

	for page := 1; page <= maxPages; page++ {
		pageURL, err := buildPageURL(target, page)
		if err != nil {
			return updates, fmt.Errorf("target %s: %w", name, err)
		}

		body, err := s.client.Get(ctx, pageURL, policy)
		if err != nil {
			// Terminal for this page only; stop walking the target but keep
			// whatever earlier pages produced.
			return updates, fmt.Errorf("target %s page %d: %w", name, page, err)
		}

		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
		if err != nil {
			return updates, fmt.Errorf("target %s page %d: parse: %w", name, page, err)
		}

		items := extractItems(doc, target, src, name, now)
		if len(items) == 0 {
			break
		}
		updates = append(updates, items...)

		if target.Pagination.NextPage != "" && doc.Find(target.Pagination.NextPage).Length() == 0 {
			break
		}
	}

	s.debug("target scanned", "source", src.Name, "target", name, "items", len(updates))
	return updates, nil
}

// buildPageURL builds the URL for one listing page. Page 1 always uses the
// configured URL untouched; later pages substitute either the {page}
// pattern or the query parameter.
func buildPageURL(target domain.ScrapeTarget, page int) (string, error) {
	if page == 1 {
		return target.URL, nil
	}

	if target.Pagination.Pattern != "" {
		return strings.ReplaceAll(target.Pagination.Pattern, "{page}", strconv.Itoa(page)), nil
	}

	parsed, err := url.Parse(target.URL)
	if err != nil {
		return "", fmt.Errorf("invalid target url %s: %w", target.URL, err)
	}

	param := target.Pagination.Param
	if param == "" {
		param = "page"
	}

	query := parsed.Query()
	query.Set(param, strconv.Itoa(page))
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}

func (s *HTMLScanner) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
