package domain

import "time"

// FeedConfig describes one structured feed published by an authority.
type FeedConfig struct {
	URL         string
	Type        string
	Description string
}

// Selectors maps logical item fields to CSS selectors on a listing page.
// Items, Title, URL, Date and Summary are required for deep scraping;
// the rest are optional and silently absent when unmatched.
type Selectors struct {
	Items   string
	Title   string
	URL     string
	Date    string
	Summary string

	Deadline     string
	Speaker      string
	Status       string
	Reference    string
	Firm         string
	DocumentType string
}

// Pagination controls how a deep-scraping target walks listing pages.
// Exactly one of NextPage, Param or Pattern should be set; MaxPages bounds
// the walk regardless of mode.
type Pagination struct {
	NextPage string // selector whose absence terminates the walk
	Param    string // query parameter carrying the page number
	Pattern  string // URL pattern with a {page} placeholder
	MaxPages int
}

// ScrapeTarget is one deep-scraping endpoint of a source.
type ScrapeTarget struct {
	URL        string
	Selectors  Selectors
	Pagination Pagination
	RenderJS   bool // requires a headless browser to produce content
}

// ScrapePolicy sets per-source network behaviour.
type ScrapePolicy struct {
	RateLimit time.Duration
	Timeout   time.Duration
	Retries   int
}

// SourceConfig is the static description of one regulatory authority.
// Loaded at startup and never mutated afterwards.
type SourceConfig struct {
	Name      string
	Authority string
	BaseURL   string
	Country   string
	Priority  int
	Feeds     []FeedConfig
	Targets   map[string]ScrapeTarget
	Policy    ScrapePolicy
}
