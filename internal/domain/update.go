package domain

import "time"

// Keys of the open raw-data bag attached to a RegUpdate.
const (
	RawSummary      = "summary"
	RawContent      = "content"
	RawDeadline     = "deadline"
	RawSpeaker      = "speaker"
	RawStatus       = "status"
	RawReference    = "reference"
	RawFirm         = "firm"
	RawDocumentType = "documentType"
	RawLanguage     = "language"
	RawCountry      = "country"
)

// RegUpdate is one fetched regulatory publication. Created by the fetch
// layer and never mutated afterwards; later stages wrap it.
type RegUpdate struct {
	Headline       string
	URL            string
	Authority      string
	Area           string
	SourceCategory string
	FetchedAt      time.Time
	PublishedAt    *time.Time
	Raw            map[string]string
}

// Content returns the richest text available for an update: extracted
// content first, then the summary, then the headline.
func (u RegUpdate) Content() string {
	if c := u.Raw[RawContent]; c != "" {
		return c
	}
	if s := u.Raw[RawSummary]; s != "" {
		return s
	}
	return u.Headline
}

// ValidationResult is a pure function of one RegUpdate.
type ValidationResult struct {
	Score  int
	Valid  bool
	Issues []string
}

// Dedup reasons, first match wins in tier order.
const (
	DupExactURL          = "exact-url"
	DupTitleSimilarity   = "title-similarity"
	DupContentSimilarity = "content-similarity"
)

// DedupDecision routes an update past or around the rest of the pipeline.
// It is computed against run-scoped state only.
type DedupDecision struct {
	IsDuplicate bool
	Reason      string
	Match       *RegUpdate
}

// Deadline is one compliance date extracted from content. Context carries
// the trigger phrase that produced the match ("deadline", "consultation
// ends", ...); Type is the five-value classification.
type Deadline struct {
	Date       time.Time
	Type       string
	Context    string
	SourceText string
}

// Deadline types.
const (
	DeadlineConsultation   = "Consultation"
	DeadlineResponse       = "Response"
	DeadlineSubmission     = "Submission"
	DeadlineImplementation = "Implementation"
	DeadlineGeneral        = "General"
)

// SectorRelevance scores one sector 0-100 against an update's text.
type SectorRelevance struct {
	Name      string
	Relevance int
}

// ImpactAssessment is the keyword-bucket impact heuristic.
type ImpactAssessment struct {
	Level      string
	Confidence float64
	Indicators map[string]int
}

// Enrichment is the bag of pattern-extracted metadata added to a survivor
// of the quality gate.
type Enrichment struct {
	Deadlines         []Deadline
	DocumentType      string
	Sectors           []SectorRelevance
	Impact            ImpactAssessment
	KeyPhrases        []string
	UrgencyIndicators []string
	ComplianceActions []string
	References        []string
	Amounts           []string
	Percentages       []string
	WordCount         int
	HasDeadline       bool
	HasConsultation   bool
	HasEnforcement    bool
	HasGuidance       bool
}

// EnrichedUpdate wraps a RegUpdate with its enrichment bag.
type EnrichedUpdate struct {
	RegUpdate
	Enrichment Enrichment
}
