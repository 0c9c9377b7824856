package classify

import (
	"encoding/json"
	"fmt"
	"strings"
)

// modelOutput is the shape both the model response and the fallback
// analyzer produce before normalization.
type modelOutput struct {
	Headline      string         `json:"headline"`
	Summary       string         `json:"summary"`
	Area          string         `json:"area"`
	ContentType   string         `json:"content_type"`
	ImpactLevel   string         `json:"impact_level"`
	Urgency       string         `json:"urgency"`
	PrimarySector string         `json:"primary_sector"`
	Sectors       map[string]int `json:"sectors"`
	FirmTypes     []string       `json:"firm_types_affected"`
	KeyDates      string         `json:"key_dates"`
}

// parseResponse extracts the JSON object from a raw model reply. Models
// wrap output in markdown fences or add prose around the object, so it
// strips fences and locates the outermost brace pair before unmarshalling.
func parseResponse(raw string) (modelOutput, error) {
	var out modelOutput

	cleaned := stripFences(raw)
	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start < 0 || end <= start {
		return out, fmt.Errorf("no JSON object in response")
	}

	// Some models use impact_summary instead of summary.
	var aux struct {
		modelOutput
		ImpactSummary string `json:"impact_summary"`
	}
	if err := json.Unmarshal([]byte(cleaned[start:end+1]), &aux); err != nil {
		return out, fmt.Errorf("decode model response: %w", err)
	}
	out = aux.modelOutput
	if out.Summary == "" {
		out.Summary = aux.ImpactSummary
	}
	return out, nil
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	if i := strings.LastIndex(s, "```"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
