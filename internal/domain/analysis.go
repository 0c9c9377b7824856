package domain

import "time"

// Impact levels, in decreasing order of significance.
const (
	ImpactSignificant   = "Significant"
	ImpactModerate      = "Moderate"
	ImpactInformational = "Informational"
)

// Urgency levels.
const (
	UrgencyHigh   = "High"
	UrgencyMedium = "Medium"
	UrgencyLow    = "Low"
)

// ContentTypeOther is the default when no category can be inferred.
const ContentTypeOther = "Other"

// ContentTypes is the fixed enum of document categories an analysis may
// carry. Anything outside this set is replaced by ContentTypeOther during
// normalization.
var ContentTypes = []string{
	"Consultation",
	"Policy Statement",
	"Guidance",
	"Supervisory Statement",
	"Technical Standard",
	"Discussion Paper",
	"Market Study",
	"Enforcement Action",
	"Speech",
	"Report",
	"Press Release",
	"Directive",
	"Opinion",
	ContentTypeOther,
}

// ValidContentType reports whether t belongs to the fixed enum.
func ValidContentType(t string) bool {
	for _, c := range ContentTypes {
		if c == t {
			return true
		}
	}
	return false
}

// ValidImpactLevel reports whether l is one of the three impact levels.
func ValidImpactLevel(l string) bool {
	return l == ImpactSignificant || l == ImpactModerate || l == ImpactInformational
}

// ValidUrgency reports whether u is one of the three urgency levels.
func ValidUrgency(u string) bool {
	return u == UrgencyHigh || u == UrgencyMedium || u == UrgencyLow
}

// Phase is one step of an implementation plan.
type Phase struct {
	Order         int
	Name          string
	DurationWeeks int
}

// ResourceEstimate is a naive required-resource projection.
type ResourceEstimate struct {
	Roles         []string
	EffortDays    int
	EstimatedCost string
}

// Analysis is the canonical, provider-agnostic classification record.
// Every Analysis leaving the normalization layer has all enum fields within
// their fixed sets; unparseable values are replaced by defaults, never left
// empty.
type Analysis struct {
	Headline           string
	Authority          string
	PublishedAt        *time.Time
	Area               string
	PrimarySector      string
	Sectors            map[string]int
	Summary            string
	ContentType        string
	ImpactLevel        string
	Urgency            string
	BusinessImpact     int
	Confidence         float64
	Tags               []string
	FirmTypes          []string
	Phases             []Phase
	Resources          ResourceEstimate
	ComplianceDeadline *time.Time
	Model              string
	Fallback           bool
}

// Envelope is the stable response wrapper around an Analysis. The flat
// fields duplicate Data so callers never branch on which path produced the
// result.
type Envelope struct {
	Success  bool
	Fallback bool
	Data     *Analysis

	ContentType string
	ImpactLevel string
	Urgency     string
}

// StoredUpdate is the persisted canonical record handed to the repository.
type StoredUpdate struct {
	ID                 string
	Headline           string
	URL                string
	Authority          string
	PublishedAt        *time.Time
	Summary            string
	AISummary          string
	ContentType        string
	ImpactLevel        string
	Urgency            string
	BusinessImpact     int
	Confidence         float64
	Sectors            map[string]int
	Tags               []string
	FirmTypes          []string
	ComplianceDeadline *time.Time
	Phases             []Phase
	Resources          ResourceEstimate
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
