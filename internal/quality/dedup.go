package quality

import (
	"context"
	"fmt"
	"hash/fnv"
	"regexp"
	"strings"

	"RegScanner/internal/domain"
	"RegScanner/internal/ports"
)

const contentSimilarityMin = 200 // chars of text before tier 3 applies

var punctExpr = regexp.MustCompile(`[^\p{L}\p{N}\s]+`)
var spaceExpr = regexp.MustCompile(`\s+`)

// Deduper holds the per-run dedup indices: seen URLs, accepted normalized
// titles and accepted content signatures. It is created at run start, owned
// by one quality pass, and discarded with the run — never a cross-run
// global.
type Deduper struct {
	cfg  Config
	repo ports.UpdateRepository

	urls     map[string]struct{}
	titles   []indexEntry
	contents []contentEntry
}

type indexEntry struct {
	words  map[string]struct{}
	update domain.RegUpdate
}

type contentEntry struct {
	hash   uint64
	words  map[string]struct{}
	update domain.RegUpdate
}

// NewDeduper builds fresh run-scoped indices. repo may be nil (no stored
// history to consult).
func NewDeduper(cfg Config, repo ports.UpdateRepository) *Deduper {
	return &Deduper{
		cfg:  cfg,
		repo: repo,
		urls: map[string]struct{}{},
	}
}

// Check evaluates the three tiers in order, first match wins: exact URL
// (run set, then stored history), title similarity, content similarity.
func (d *Deduper) Check(ctx context.Context, u domain.RegUpdate) (domain.DedupDecision, error) {
	if _, seen := d.urls[u.URL]; seen {
		return domain.DedupDecision{IsDuplicate: true, Reason: domain.DupExactURL}, nil
	}

	if d.repo != nil && u.URL != "" {
		stored, err := d.repo.GetUpdateByURL(ctx, u.URL)
		if err != nil {
			return domain.DedupDecision{}, fmt.Errorf("lookup stored url: %w", err)
		}
		if stored != nil {
			return domain.DedupDecision{IsDuplicate: true, Reason: domain.DupExactURL}, nil
		}
	}

	titleWords := wordSet(normalizeText(u.Headline))
	for i := range d.titles {
		if jaccard(titleWords, d.titles[i].words) >= d.cfg.TitleSimilarity {
			return domain.DedupDecision{
				IsDuplicate: true,
				Reason:      domain.DupTitleSimilarity,
				Match:       &d.titles[i].update,
			}, nil
		}
	}

	content := u.Content()
	if len(content) > contentSimilarityMin {
		normalized := normalizeText(content)
		hash := contentHash(normalized)
		words := wordSet(normalized)
		for i := range d.contents {
			// Hash equality only short-circuits into the comparison; the
			// word-set similarity is authoritative, so hash collisions can
			// never produce a false duplicate verdict.
			if d.contents[i].hash != hash && !couldMatch(words, d.contents[i].words) {
				continue
			}
			if jaccard(words, d.contents[i].words) >= d.cfg.ContentSimilarity {
				return domain.DedupDecision{
					IsDuplicate: true,
					Reason:      domain.DupContentSimilarity,
					Match:       &d.contents[i].update,
				}, nil
			}
		}
	}

	return domain.DedupDecision{}, nil
}

// Track records an accepted update in the run indices.
func (d *Deduper) Track(u domain.RegUpdate) {
	if u.URL != "" {
		d.urls[u.URL] = struct{}{}
	}

	d.titles = append(d.titles, indexEntry{
		words:  wordSet(normalizeText(u.Headline)),
		update: u,
	})

	if content := u.Content(); len(content) > contentSimilarityMin {
		normalized := normalizeText(content)
		d.contents = append(d.contents, contentEntry{
			hash:   contentHash(normalized),
			words:  wordSet(normalized),
			update: u,
		})
	}
}

// normalizeText lowercases, strips punctuation and collapses whitespace.
func normalizeText(s string) string {
	s = strings.ToLower(s)
	s = punctExpr.ReplaceAllString(s, " ")
	s = spaceExpr.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

func wordSet(normalized string) map[string]struct{} {
	set := map[string]struct{}{}
	for _, w := range strings.Fields(normalized) {
		set[w] = struct{}{}
	}
	return set
}

// couldMatch is a cheap size screen: two sets whose cardinalities differ
// too much cannot reach the similarity threshold.
func couldMatch(a, b map[string]struct{}) bool {
	la, lb := len(a), len(b)
	if la == 0 || lb == 0 {
		return la == lb
	}
	if la > lb {
		la, lb = lb, la
	}
	return float64(la)/float64(lb) >= 0.5
}

// jaccard is |intersection| / |union| over two word sets.
func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	inter := 0
	for w := range a {
		if _, ok := b[w]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}

// contentHash folds word 3-shingles of the normalized text through FNV-1a,
// order-insensitively, so trivial reorderings still collide into the fast
// path.
func contentHash(normalized string) uint64 {
	words := strings.Fields(normalized)
	if len(words) < 3 {
		h := fnv.New64a()
		_, _ = h.Write([]byte(normalized))
		return h.Sum64()
	}

	var acc uint64
	for i := 0; i+3 <= len(words); i++ {
		h := fnv.New64a()
		_, _ = h.Write([]byte(words[i] + " " + words[i+1] + " " + words[i+2]))
		acc ^= h.Sum64()
	}
	return acc
}
