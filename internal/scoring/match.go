package scoring

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/agext/levenshtein"
	"go.uber.org/zap"

	"github.com/sells-group/discovery-cli/internal/llm"
	"github.com/sells-group/discovery-cli/internal/model"
)

// Component weights for the overall match score.
const (
	weightRelevance  = 0.40
	weightGeographic = 0.20
	weightSize       = 0.20
	weightStrategic  = 0.20
)

const matchSystemPrompt = "You are a business analyst evaluating company matches."

var levParams = levenshtein.NewParams()

// MatchScorer computes the weighted 4-component match score for a
// qualified candidate. Relevance comes from the model; the geographic,
// size, and strategic components are computed locally.
type MatchScorer struct {
	agent llm.Agent
}

// NewMatchScorer creates a MatchScorer.
func NewMatchScorer(agent llm.Agent) *MatchScorer {
	return &MatchScorer{agent: agent}
}

// Score computes the full match score for one company. It never fails:
// a model outage degrades the relevance component to a text-similarity
// estimate.
func (m *MatchScorer) Score(ctx context.Context, company model.CompanyInfo, bctx model.BusinessContext, entity model.EntityType) model.MatchScore {
	relevance := m.relevanceScore(ctx, company, bctx, entity)
	geographic := geographicFit(company.Locations, bctx.Geography)
	size := sizeFit(company.SizeEstimate, bctx.TargetMarket)
	strategic := strategicAlignment(company, bctx)

	overall := relevance*weightRelevance +
		geographic*weightGeographic +
		size*weightSize +
		strategic*weightStrategic

	score := model.NewMatchScore(model.MatchScore{
		OverallScore:        overall,
		RelevanceScore:      relevance,
		GeographicFit:       geographic,
		SizeAppropriateness: size,
		StrategicAlignment:  strategic,
		Confidence:          confidence(company, bctx),
	})

	zap.L().Info("match scored",
		zap.String("company", company.Name),
		zap.String("entity_type", string(entity)),
		zap.Float64("overall", score.OverallScore),
		zap.String("confidence", string(score.Confidence)),
	)
	return score
}

// relevanceScore asks the model for a 0-100 relevance rating. If the
// call fails, a lexical similarity between the business context and the
// company description stands in.
func (m *MatchScorer) relevanceScore(ctx context.Context, company model.CompanyInfo, bctx model.BusinessContext, entity model.EntityType) float64 {
	input, err := llm.RenderPrompt(llm.PromptMatchRelevance, map[string]any{
		"EntityType":  string(entity),
		"Context":     bctx.PromptString(),
		"Name":        company.Name,
		"Description": orNA(company.Description),
		"Locations":   orNA(strings.Join(company.Locations, ", ")),
		"Size":        company.SizeEstimate,
	})
	if err != nil {
		zap.L().Error("rendering match relevance prompt failed", zap.Error(err))
		return similarityRelevance(company, bctx)
	}

	resp, err := m.agent.Generate(ctx, llm.Request{
		System:    matchSystemPrompt,
		Input:     input,
		Operation: "score_match_relevance",
	})
	if err != nil {
		zap.L().Warn("model relevance unavailable, using similarity estimate",
			zap.String("company", company.Name),
			zap.Error(err),
		)
		return similarityRelevance(company, bctx)
	}

	return extractNumericScore(resp)
}

var numberPattern = regexp.MustCompile(`\b\d+(?:\.\d+)?\b`)

// extractNumericScore pulls the first number out of a model response
// and clamps it into [0,100]. No number means the neutral 50.
func extractNumericScore(response string) float64 {
	match := numberPattern.FindString(response)
	if match == "" {
		zap.L().Warn("no numeric score in response",
			zap.String("response_head", head(response, 100)),
		)
		return 50.0
	}
	v, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 50.0
	}
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// similarityRelevance estimates relevance without a model: lexical
// similarity between what we sell and what the company says it does.
func similarityRelevance(company model.CompanyInfo, bctx model.BusinessContext) float64 {
	ours := strings.ToLower(strings.TrimSpace(
		bctx.Industry + " " + strings.Join(bctx.ProductsServices, " ") + " " + bctx.TargetMarket,
	))
	theirs := strings.ToLower(strings.TrimSpace(
		company.Description + " " + company.Name,
	))
	return levenshtein.Similarity(ours, theirs, levParams) * 100
}

// geographicFit compares company locations with the target geography.
// Missing data on either side is neutral; an exact overlap is a perfect
// score; otherwise the best fuzzy pairing wins, with substring
// containment floored at 0.85.
func geographicFit(companyLocations, contextGeography []string) float64 {
	if len(companyLocations) == 0 || len(contextGeography) == 0 {
		return 50.0
	}

	companyLocs := normalizeAll(companyLocations)
	contextLocs := normalizeAll(contextGeography)

	contextSet := make(map[string]bool, len(contextLocs))
	for _, loc := range contextLocs {
		contextSet[loc] = true
	}
	for _, loc := range companyLocs {
		if contextSet[loc] {
			return 100.0
		}
	}

	best := 0.0
	for _, companyLoc := range companyLocs {
		for _, contextLoc := range contextLocs {
			var sim float64
			if strings.Contains(contextLoc, companyLoc) || strings.Contains(companyLoc, contextLoc) {
				sim = 0.85
				if s := levenshtein.Similarity(companyLoc, contextLoc, levParams); s > sim {
					sim = s
				}
			} else {
				sim = levenshtein.Similarity(companyLoc, contextLoc, levParams)
			}
			if sim > best {
				best = sim
			}
		}
	}
	return best * 100
}

// sizeIndicators maps a size bucket to the target-market phrases that
// imply it. Iteration order matters: the first bucket with a hit wins.
var sizeIndicators = []struct {
	size  string
	words []string
}{
	{"small", []string{"smb", "small", "startup", "entrepreneur", "small business", "local"}},
	{"medium", []string{"mid-market", "medium", "growing", "regional", "middle market"}},
	{"large", []string{"enterprise", "large", "fortune", "global", "multinational", "corporation"}},
}

var sizeRank = map[string]int{"small": 0, "medium": 1, "large": 2}

// sizeFit scores how well the company size matches the size the target
// market implies. 100 for a bucket match, 70 one bucket off, 30 two
// off, 50 when either side is unknown.
func sizeFit(companySize, targetMarket string) float64 {
	normalized := strings.ToLower(strings.TrimSpace(companySize))
	if normalized == "" || normalized == "unknown" {
		return 50.0
	}

	market := strings.ToLower(targetMarket)
	targetSize := ""
	for _, bucket := range sizeIndicators {
		for _, word := range bucket.words {
			if strings.Contains(market, word) {
				targetSize = bucket.size
				break
			}
		}
		if targetSize != "" {
			break
		}
	}
	if targetSize == "" {
		return 50.0
	}

	companyRank, ok := sizeRank[normalized]
	if !ok {
		companyRank = 1
	}
	diff := companyRank - sizeRank[targetSize]
	if diff < 0 {
		diff = -diff
	}

	switch diff {
	case 0:
		return 100.0
	case 1:
		return 70.0
	default:
		return 30.0
	}
}

// strategicAlignment scores complementary fit from keyword overlap:
// industry terms and product mentions found in the company description
// push the base 50 upward.
func strategicAlignment(company model.CompanyInfo, bctx model.BusinessContext) float64 {
	score := 50.0
	desc := strings.ToLower(company.Description)

	if bctx.Industry != "" && desc != "" {
		matches := 0
		for _, keyword := range strings.Fields(strings.ToLower(bctx.Industry)) {
			if len(keyword) > 3 && strings.Contains(desc, keyword) {
				matches++
			}
		}
		score += min(30, float64(matches)*10)
	}

	if len(bctx.ProductsServices) > 0 && desc != "" {
		mentions := 0
		for _, product := range bctx.ProductsServices {
			if strings.Contains(desc, strings.ToLower(product)) {
				mentions++
			}
		}
		score += min(20, float64(mentions)*10)
	}

	if score > 100 {
		return 100
	}
	if score < 0 {
		return 0
	}
	return score
}

// confidence grades data completeness over the eight fields scoring
// relies on: four from the company record, four from the context.
func confidence(company model.CompanyInfo, bctx model.BusinessContext) model.Confidence {
	filled := 0
	if company.Name != "" {
		filled++
	}
	if company.Description != "" {
		filled++
	}
	if len(company.Locations) > 0 {
		filled++
	}
	if size := strings.ToLower(company.SizeEstimate); size != "" && size != "unknown" {
		filled++
	}
	if bctx.Industry != "" {
		filled++
	}
	if len(bctx.ProductsServices) > 0 {
		filled++
	}
	if bctx.TargetMarket != "" {
		filled++
	}
	if len(bctx.Geography) > 0 {
		filled++
	}

	ratio := float64(filled) / 8
	switch {
	case ratio >= 0.75:
		return model.ConfidenceHigh
	case ratio >= 0.50:
		return model.ConfidenceMedium
	default:
		return model.ConfidenceLow
	}
}

func normalizeAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, strings.ToLower(strings.TrimSpace(v)))
	}
	return out
}
