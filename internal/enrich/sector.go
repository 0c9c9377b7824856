package enrich

import (
	"regexp"
	"sort"

	"RegScanner/internal/domain"
)

type sectorEntry struct {
	name     string
	keywords []string
}

// Shared by the enrichment pass and the classification fallback so both
// paths agree on sector names.
var sectorTable = []sectorEntry{
	{"Banking", []string{"bank", "banking", "deposit", "lending", "credit institution", "capital requirement"}},
	{"Insurance", []string{"insurance", "insurer", "underwriting", "solvency", "actuarial", "policyholder"}},
	{"Investment Management", []string{"asset management", "fund", "portfolio", "ucits", "aifmd", "investment manager"}},
	{"Payments", []string{"payment", "e-money", "remittance", "psd2", "interchange", "payment institution"}},
	{"Capital Markets", []string{"securities", "trading", "exchange", "mifid", "market abuse", "listing", "derivative"}},
	{"Consumer Credit", []string{"consumer credit", "loan", "affordability", "creditworthiness", "debt collection"}},
	{"Pensions", []string{"pension", "retirement", "annuity", "trustee", "defined benefit"}},
	{"Mortgages", []string{"mortgage", "home loan", "repossession", "equity release"}},
	{"Fintech", []string{"fintech", "digital bank", "open banking", "regtech", "innovation hub", "sandbox"}},
	{"Crypto Assets", []string{"crypto", "cryptoasset", "stablecoin", "digital asset", "blockchain", "token"}},
	{"Financial Crime", []string{"money laundering", "aml", "terrorist financing", "sanctions", "fraud", "kyc"}},
}

var wordBoundaryCache = map[string]*regexp.Regexp{}

func init() {
	for _, entry := range sectorTable {
		for _, kw := range entry.keywords {
			wordBoundaryCache[kw] = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(kw) + `\b`)
		}
	}
}

// ClassifySectors counts whole-word keyword occurrences per sector and
// returns every sector with nonzero relevance (min(100, hits*10)), sorted
// by relevance descending.
func ClassifySectors(text string) []domain.SectorRelevance {
	var out []domain.SectorRelevance

	for _, entry := range sectorTable {
		hits := 0
		for _, kw := range entry.keywords {
			hits += len(wordBoundaryCache[kw].FindAllStringIndex(text, -1))
		}
		if hits == 0 {
			continue
		}
		relevance := hits * 10
		if relevance > 100 {
			relevance = 100
		}
		out = append(out, domain.SectorRelevance{Name: entry.name, Relevance: relevance})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Relevance > out[j].Relevance
	})
	return out
}

// SectorNames lists the table's sectors in declaration order.
func SectorNames() []string {
	names := make([]string, 0, len(sectorTable))
	for _, entry := range sectorTable {
		names = append(names, entry.name)
	}
	return names
}

// PrimarySector is the highest-relevance sector of text, or "General" when
// nothing matches.
func PrimarySector(text string) string {
	sectors := ClassifySectors(text)
	if len(sectors) == 0 {
		return "General"
	}
	return sectors[0].Name
}
