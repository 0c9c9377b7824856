package enrich

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"RegScanner/internal/domain"
)

var monthNames = `January|February|March|April|May|June|July|August|September|October|November|December`

var absoluteDateExpr = regexp.MustCompile(
	`\d{1,2}[/.-]\d{1,2}[/.-]\d{4}` +
		`|\d{1,2}(?:st|nd|rd|th)?\s+(?:` + monthNames + `)\s+\d{4}` +
		`|(?:` + monthNames + `)\s+\d{1,2},?\s+\d{4}` +
		`|\d{4}-\d{2}-\d{2}`)

var relativeExpr = regexp.MustCompile(`(?i)within\s+(\d+)\s+(day|week)s?`)

var ordinalExpr = regexp.MustCompile(`(\d{1,2})(?:st|nd|rd|th)`)

// contextTriggers classify a matched date by the phrase around it. Ordered;
// first trigger found in the window wins.
var contextTriggers = []struct {
	phrase string
	kind   string
}{
	{"consultation ends", domain.DeadlineConsultation},
	{"consultation closes", domain.DeadlineConsultation},
	{"consultation period", domain.DeadlineConsultation},
	{"responses by", domain.DeadlineResponse},
	{"respond by", domain.DeadlineResponse},
	{"response deadline", domain.DeadlineResponse},
	{"submissions by", domain.DeadlineSubmission},
	{"submit by", domain.DeadlineSubmission},
	{"into force", domain.DeadlineImplementation},
	{"takes effect", domain.DeadlineImplementation},
	{"effective from", domain.DeadlineImplementation},
	{"must comply by", domain.DeadlineImplementation},
	{"implementation", domain.DeadlineImplementation},
	{"deadline", domain.DeadlineGeneral},
	{"by no later than", domain.DeadlineGeneral},
}

const contextWindow = 60

var dateLayouts = []string{
	"2/1/2006",
	"02/01/2006",
	"2-1-2006",
	"2.1.2006",
	"2 January 2006",
	"January 2, 2006",
	"January 2 2006",
	"2006-01-02",
}

// ParseDeadlineDate resolves one matched date string, day-first for the
// numeric forms. Returns nil when nothing parses.
func ParseDeadlineDate(value string) *time.Time {
	value = strings.TrimSpace(ordinalExpr.ReplaceAllString(value, "$1"))
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			parsed = parsed.UTC()
			return &parsed
		}
	}
	return nil
}

// ExtractDeadlines finds every deadline in text: absolute dates, relative
// phrasings resolved against now, classified by surrounding context,
// deduplicated by resolved date and sorted ascending.
func ExtractDeadlines(text string, now time.Time) []domain.Deadline {
	lower := strings.ToLower(text)
	byDate := map[string]domain.Deadline{}

	for _, loc := range absoluteDateExpr.FindAllStringIndex(text, -1) {
		raw := text[loc[0]:loc[1]]
		parsed := ParseDeadlineDate(raw)
		if parsed == nil {
			continue
		}

		kind, trigger := classifyContext(lower, loc[0], loc[1])
		key := parsed.Format("2006-01-02")
		if _, exists := byDate[key]; !exists {
			byDate[key] = domain.Deadline{
				Date:       *parsed,
				Type:       kind,
				Context:    trigger,
				SourceText: strings.TrimSpace(window(text, loc[0], loc[1])),
			}
		}
	}

	for _, loc := range relativeExpr.FindAllStringSubmatchIndex(text, -1) {
		n, err := strconv.Atoi(text[loc[2]:loc[3]])
		if err != nil {
			continue
		}
		unit := strings.ToLower(text[loc[4]:loc[5]])

		resolved := now
		if unit == "week" {
			resolved = now.AddDate(0, 0, 7*n)
		} else {
			resolved = now.AddDate(0, 0, n)
		}
		resolved = resolved.UTC().Truncate(24 * time.Hour)

		kind, trigger := classifyContext(lower, loc[0], loc[1])
		key := resolved.Format("2006-01-02")
		if _, exists := byDate[key]; !exists {
			byDate[key] = domain.Deadline{
				Date:       resolved,
				Type:       kind,
				Context:    trigger,
				SourceText: strings.TrimSpace(window(text, loc[0], loc[1])),
			}
		}
	}

	deadlines := make([]domain.Deadline, 0, len(byDate))
	for _, d := range byDate {
		deadlines = append(deadlines, d)
	}
	sort.Slice(deadlines, func(i, j int) bool {
		return deadlines[i].Date.Before(deadlines[j].Date)
	})
	return deadlines
}

func classifyContext(lower string, start, end int) (kind, trigger string) {
	ctx := window(lower, start, end)
	for _, t := range contextTriggers {
		if strings.Contains(ctx, t.phrase) {
			return t.kind, t.phrase
		}
	}
	return domain.DeadlineGeneral, ""
}

func window(s string, start, end int) string {
	lo := start - contextWindow
	if lo < 0 {
		lo = 0
	}
	hi := end + contextWindow
	if hi > len(s) {
		hi = len(s)
	}
	return s[lo:hi]
}
