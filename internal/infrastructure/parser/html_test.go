package parser

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"

	"RegScanner/internal/domain"
	"RegScanner/internal/httpx"
	"RegScanner/internal/scanner"
)

func testTarget(url string) domain.ScrapeTarget {
	return domain.ScrapeTarget{
		URL: url,
		Selectors: domain.Selectors{
			Items:     ".pub",
			Title:     ".pub-title",
			URL:       ".pub-title a",
			Date:      ".pub-date",
			Summary:   ".pub-summary",
			Reference: ".pub-ref",
		},
		Pagination: domain.Pagination{Param: "page", MaxPages: 3},
	}
}

func pubHTML(ref string, n int) string {
	return fmt.Sprintf(`
	<div class="pub">
	  <h3 class="pub-title"><a href="/publication/%s-%d">Consultation on prudential requirements %d</a></h3>
	  <span class="pub-date">15 March 2024</span>
	  <p class="pub-summary">The authority proposes changes to prudential requirements for firms.</p>
	  <span class="pub-ref">%s</span>
	</div>`, ref, n, n, ref)
}

func TestBuildPageURL(t *testing.T) {
	t.Parallel()

	target := testTarget("https://www.fca.org.uk/publications?type=all")

	first, err := buildPageURL(target, 1)
	if err != nil {
		t.Fatalf("buildPageURL error: %v", err)
	}
	if first != target.URL {
		t.Fatalf("page 1 must use the configured URL, got %s", first)
	}

	second, err := buildPageURL(target, 2)
	if err != nil {
		t.Fatalf("buildPageURL error: %v", err)
	}
	if !strings.Contains(second, "page=2") || !strings.Contains(second, "type=all") {
		t.Fatalf("unexpected page 2 url: %s", second)
	}

	target.Pagination.Pattern = "https://www.fca.org.uk/publications/page/{page}"
	patterned, err := buildPageURL(target, 4)
	if err != nil {
		t.Fatalf("buildPageURL error: %v", err)
	}
	if patterned != "https://www.fca.org.uk/publications/page/4" {
		t.Fatalf("unexpected patterned url: %s", patterned)
	}
}

func TestExtractItems(t *testing.T) {
	t.Parallel()

	html := `<html><body>` + pubHTML("CP24/1", 1) + `
	<div class="pub">
	  <h3 class="pub-title"><a href="/short">Tiny</a></h3>
	  <span class="pub-date">15 March 2024</span>
	</div>
	<div class="pub">
	  <h3 class="pub-title">Missing link item with a long headline</h3>
	</div>
	</body></html>`

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("new document: %v", err)
	}

	src := domain.SourceConfig{Name: "fca", Authority: "FCA", BaseURL: "https://www.fca.org.uk"}
	items := extractItems(doc, testTarget("https://www.fca.org.uk/publications"), src, "publications", time.Now())

	if len(items) != 1 {
		t.Fatalf("expected 1 item (short title and missing URL dropped), got %d", len(items))
	}

	item := items[0]
	if item.URL != "https://www.fca.org.uk/publication/CP24/1-1" {
		t.Fatalf("unexpected url: %s", item.URL)
	}
	if item.Authority != "FCA" {
		t.Fatalf("unexpected authority: %s", item.Authority)
	}
	if item.PublishedAt == nil || item.PublishedAt.Format("2006-01-02") != "2024-03-15" {
		t.Fatalf("unexpected published date: %v", item.PublishedAt)
	}
	if item.Raw[domain.RawReference] != "CP24/1" {
		t.Fatalf("optional reference not extracted: %q", item.Raw[domain.RawReference])
	}
	if _, ok := item.Raw[domain.RawSpeaker]; ok {
		t.Fatal("unmatched optional field must stay absent")
	}
}

func TestHTMLScannerPaginates(t *testing.T) {
	t.Parallel()

	padding := strings.Repeat("<!-- filler to clear the short-body gate -->", 4)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		switch page {
		case "", "1":
			fmt.Fprintf(w, `<html><body>%s%s%s</body></html>`, pubHTML("CP24/1", 1), pubHTML("CP24/2", 2), padding)
		case "2":
			fmt.Fprintf(w, `<html><body>%s%s</body></html>`, pubHTML("CP24/3", 3), padding)
		default:
			fmt.Fprintf(w, `<html><body><p>no more results</p>%s</body></html>`, padding)
		}
	}))
	defer server.Close()

	src := domain.SourceConfig{
		Name:      "fca",
		Authority: "FCA",
		BaseURL:   server.URL,
		Targets:   map[string]domain.ScrapeTarget{"pubs": testTarget(server.URL + "/publications")},
		Policy:    domain.ScrapePolicy{Retries: 1, Timeout: 5 * time.Second},
	}

	sc := NewHTMLScanner(httpx.NewClient(5*time.Second, nil, nil), nil)
	items, err := sc.Scan(context.Background(), scanner.Request{Source: src})
	if err != nil {
		t.Fatalf("Scan error: %v", err)
	}

	if len(items) != 3 {
		t.Fatalf("expected 3 items across 2 pages, got %d", len(items))
	}
}

func TestHTMLScannerTargetFailureDoesNotAbortSource(t *testing.T) {
	t.Parallel()

	padding := strings.Repeat("<!-- filler to clear the short-body gate -->", 4)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/broken") {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprintf(w, `<html><body>%s%s</body></html>`, pubHTML("PS24/9", 9), padding)
	}))
	defer server.Close()

	broken := testTarget(server.URL + "/broken")
	working := testTarget(server.URL + "/publications")
	working.Pagination.MaxPages = 1

	src := domain.SourceConfig{
		Name:      "fca",
		Authority: "FCA",
		BaseURL:   server.URL,
		Targets: map[string]domain.ScrapeTarget{
			"broken":  broken,
			"working": working,
		},
		Policy: domain.ScrapePolicy{Retries: 1, Timeout: 5 * time.Second},
	}

	sc := NewHTMLScanner(httpx.NewClient(5*time.Second, nil, nil), nil)
	items, err := sc.Scan(context.Background(), scanner.Request{Source: src})
	if err != nil {
		t.Fatalf("one failing target must not error the source: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected the working target's item, got %d items", len(items))
	}
}

func TestParseDateLayouts(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"31/12/2025":     "2025-12-31",
		"15 March 2024":  "2024-03-15",
		"March 15, 2024": "2024-03-15",
		"2024-03-15":     "2024-03-15",
		"15.03.2024":     "2024-03-15",
	}
	for input, want := range cases {
		got := ParseDate(input)
		if got == nil {
			t.Fatalf("ParseDate(%q) = nil", input)
		}
		if got.Format("2006-01-02") != want {
			t.Fatalf("ParseDate(%q) = %s, want %s", input, got.Format("2006-01-02"), want)
		}
	}
	if ParseDate("not a date") != nil {
		t.Fatal("expected nil for junk input")
	}
}
