package enrich

import (
	"regexp"
	"strings"
)

var (
	referenceExpr  = regexp.MustCompile(`\b(?:CP|PS|DP|FG|GC|SS|TR|MS)\d{1,2}/\d{1,2}\b`)
	amountExpr     = regexp.MustCompile(`[£$€]\s?\d+(?:[,.]\d+)*\s?(?:million|billion|bn|m|k)?`)
	percentageExpr = regexp.MustCompile(`\d+(?:\.\d+)?\s?(?:%|per cent|percent)`)
)

// Curated phrases whose presence is itself a signal.
var keyPhraseList = []string{
	"consumer duty",
	"operational resilience",
	"senior managers regime",
	"capital requirements",
	"market abuse",
	"financial promotion",
	"money laundering",
	"critical third parties",
	"basel iii",
	"climate-related disclosure",
	"consumer protection",
}

var urgencyKeywords = []string{
	"immediate", "urgent", "without delay", "as soon as possible",
	"deadline", "final notice", "must comply", "expires",
}

var actionExpr = regexp.MustCompile(`(?i)\b(?:firms?\s+)?(?:must|should|are required to|need to)\s+[^.;\n]{10,160}`)

const maxComplianceActions = 5

// ExtractReferences pulls authority-style reference codes (CP21/24 etc.).
func ExtractReferences(text string) []string {
	return dedupeStrings(referenceExpr.FindAllString(text, -1))
}

// ExtractAmounts pulls monetary amounts with magnitude suffixes.
func ExtractAmounts(text string) []string {
	var out []string
	for _, m := range amountExpr.FindAllString(text, -1) {
		out = append(out, strings.TrimSpace(m))
	}
	return dedupeStrings(out)
}

// ExtractPercentages pulls percentage mentions.
func ExtractPercentages(text string) []string {
	return dedupeStrings(percentageExpr.FindAllString(text, -1))
}

// KeyPhrases returns the curated phrases contained in text.
func KeyPhrases(text string) []string {
	lower := strings.ToLower(text)
	var out []string
	for _, phrase := range keyPhraseList {
		if strings.Contains(lower, phrase) {
			out = append(out, phrase)
		}
	}
	return out
}

// UrgencyIndicators returns the urgency keywords contained in text.
func UrgencyIndicators(text string) []string {
	lower := strings.ToLower(text)
	var out []string
	for _, kw := range urgencyKeywords {
		if strings.Contains(lower, kw) {
			out = append(out, kw)
		}
	}
	return out
}

// ComplianceActions naively extracts modal-verb clauses, capped at 5.
func ComplianceActions(text string) []string {
	matches := actionExpr.FindAllString(text, -1)
	var out []string
	for _, m := range matches {
		out = append(out, strings.TrimSpace(m))
		if len(out) == maxComplianceActions {
			break
		}
	}
	return out
}

func dedupeStrings(in []string) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
