package enrich

import "regexp"

// typePattern is one row of the document-type table, kept as data so the
// table stays unit-testable and swappable.
type typePattern struct {
	label    string
	patterns []*regexp.Regexp
}

func pats(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(exprs))
	for _, e := range exprs {
		out = append(out, regexp.MustCompile(`(?i)`+e))
	}
	return out
}

var documentTypes = []typePattern{
	{"Consultation Paper", pats(`\bconsultation paper\b`, `\bCP\d{2}/\d{1,2}\b`, `\bconsult(?:s|ing|ation) on\b`)},
	{"Policy Statement", pats(`\bpolicy statement\b`, `\bPS\d{2}/\d{1,2}\b`, `\bfinal rules\b`)},
	{"Guidance", pats(`\bguidance\b`, `\bfinalised guidance\b`, `\bFG\d{2}/\d{1,2}\b`)},
	{"Supervisory Statement", pats(`\bsupervisory statement\b`, `\bSS\d{1,2}/\d{2}\b`)},
	{"Technical Standard", pats(`\btechnical standards?\b`, `\bregulatory technical standard\b`, `\bRTS\b`, `\bITS\b`)},
	{"Discussion Paper", pats(`\bdiscussion paper\b`, `\bDP\d{2}/\d{1,2}\b`)},
	{"Market Study", pats(`\bmarket study\b`, `\bmarket investigation\b`)},
	{"Enforcement Notice", pats(`\benforcement (?:action|notice)\b`, `\bfinal notice\b`, `\bfine[ds]?\b`, `\bpenalt(?:y|ies)\b`)},
	{"Speech", pats(`\bspeech\b`, `\bremarks (?:by|at)\b`, `\bkeynote\b`)},
	{"Report", pats(`\breport\b`, `\bannual review\b`, `\bfindings\b`)},
	{"Press Release", pats(`\bpress release\b`, `\bannounce[sd]?\b`)},
	{"Directive", pats(`\bdirective\b`, `\bregulation \(eu\)\b`)},
	{"Opinion", pats(`\bopinion\b`, `\bposition paper\b`)},
	{"Standard", pats(`\bstandards?\b`, `\bprinciples for\b`)},
	{"Statement", pats(`\bstatement\b`)},
}

// ClassifyDocumentType scores every candidate type by pattern hits and
// returns the highest-scoring nonzero label, or empty when nothing matched.
func ClassifyDocumentType(text string) string {
	best := ""
	bestScore := 0

	for _, candidate := range documentTypes {
		score := 0
		for _, p := range candidate.patterns {
			score += len(p.FindAllStringIndex(text, -1))
		}
		if score > bestScore {
			best = candidate.label
			bestScore = score
		}
	}

	return best
}
