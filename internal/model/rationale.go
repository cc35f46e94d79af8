package model

// Recommendation is the overall verdict attached to a rationale.
type Recommendation string

const (
	RecommendationStrong Recommendation = "Strong Match"
	RecommendationGood   Recommendation = "Good Match"
	RecommendationFair   Recommendation = "Fair Match"
)

// RecommendationForScore derives the verdict strictly from the overall
// score: >=80 Strong, >=60 Good, otherwise Fair. The rationale generator
// always recomputes the recommendation through this function rather than
// trusting model output.
func RecommendationForScore(overall float64) Recommendation {
	switch {
	case overall >= 80:
		return RecommendationStrong
	case overall >= 60:
		return RecommendationGood
	default:
		return RecommendationFair
	}
}

// Rationale is the structured human-readable explanation accompanying a
// match score.
type Rationale struct {
	Summary           string         `json:"summary"`
	KeyStrengths      []string       `json:"key_strengths"`
	FitExplanation    string         `json:"fit_explanation"`
	PotentialConcerns []string       `json:"potential_concerns"`
	Recommendation    Recommendation `json:"recommendation"`
}

// NewRationale coerces an invalid recommendation label to Fair Match.
func NewRationale(r Rationale) Rationale {
	switch r.Recommendation {
	case RecommendationStrong, RecommendationGood, RecommendationFair:
	default:
		r.Recommendation = RecommendationFair
	}
	return r
}
