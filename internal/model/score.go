package model

// Confidence labels how much of the expected candidate/profile data was
// actually available when scoring.
type Confidence string

const (
	ConfidenceHigh   Confidence = "High"
	ConfidenceMedium Confidence = "Medium"
	ConfidenceLow    Confidence = "Low"
)

// MatchScore is the 4-component weighted composite for a qualified
// candidate. All numeric fields live in [0,100].
type MatchScore struct {
	OverallScore        float64            `json:"overall_score"`
	RelevanceScore      float64            `json:"relevance_score"`
	GeographicFit       float64            `json:"geographic_fit"`
	SizeAppropriateness float64            `json:"size_appropriateness"`
	StrategicAlignment  float64            `json:"strategic_alignment"`
	Breakdown           map[string]float64 `json:"score_breakdown"`
	Confidence          Confidence         `json:"confidence"`
}

// NewMatchScore clamps every component into [0,100], coerces an invalid
// confidence label to Low, and fills Breakdown from the components when
// it is empty. This is the only invariant the model enforces.
func NewMatchScore(s MatchScore) MatchScore {
	s.OverallScore = clamp100(s.OverallScore)
	s.RelevanceScore = clamp100(s.RelevanceScore)
	s.GeographicFit = clamp100(s.GeographicFit)
	s.SizeAppropriateness = clamp100(s.SizeAppropriateness)
	s.StrategicAlignment = clamp100(s.StrategicAlignment)

	switch s.Confidence {
	case ConfidenceHigh, ConfidenceMedium, ConfidenceLow:
	default:
		s.Confidence = ConfidenceLow
	}

	if len(s.Breakdown) == 0 {
		s.Breakdown = map[string]float64{
			"relevance":  s.RelevanceScore,
			"geographic": s.GeographicFit,
			"size":       s.SizeAppropriateness,
			"strategic":  s.StrategicAlignment,
		}
	}

	return s
}

func clamp100(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
