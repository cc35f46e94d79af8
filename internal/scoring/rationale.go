package scoring

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/discovery-cli/internal/llm"
	"github.com/sells-group/discovery-cli/internal/llmjson"
	"github.com/sells-group/discovery-cli/internal/model"
)

// RationaleGenerator produces the structured explanation attached to a
// scored match. The recommendation label is always derived from the
// overall score, never taken from model output.
type RationaleGenerator struct {
	agent llm.Agent
}

// NewRationaleGenerator creates a RationaleGenerator.
func NewRationaleGenerator(agent llm.Agent) *RationaleGenerator {
	return &RationaleGenerator{agent: agent}
}

// Generate builds a rationale for one scored company. Model failures
// degrade to a template rationale built from the score components, so
// Generate never fails.
func (g *RationaleGenerator) Generate(ctx context.Context, company model.CompanyInfo, bctx model.BusinessContext, score model.MatchScore, entity model.EntityType) model.Rationale {
	systemPrompt := llm.PromptRationaleCustomer
	if entity == model.EntityPartner {
		systemPrompt = llm.PromptRationalePartner
	}

	system, err := llm.RenderPrompt(systemPrompt, nil)
	if err != nil {
		zap.L().Error("rendering rationale prompt failed", zap.Error(err))
		return g.fallback(company, score, entity)
	}

	framing := fmt.Sprintf("%s prospect to consider", entity)
	if score.OverallScore >= 60 {
		framing = fmt.Sprintf("good %s match", entity)
	}
	input, err := llm.RenderPrompt(llm.PromptRationaleInput, map[string]any{
		"Name":        company.Name,
		"Description": orNA(company.Description),
		"Locations":   orNA(strings.Join(company.Locations, ", ")),
		"Size":        company.SizeEstimate,
		"Website":     orNA(company.Website),
		"Context":     bctx.PromptString(),
		"Overall":     fmt.Sprintf("%.1f", score.OverallScore),
		"Relevance":   fmt.Sprintf("%.1f", score.RelevanceScore),
		"Geographic":  fmt.Sprintf("%.1f", score.GeographicFit),
		"SizeScore":   fmt.Sprintf("%.1f", score.SizeAppropriateness),
		"Strategic":   fmt.Sprintf("%.1f", score.StrategicAlignment),
		"Confidence":  string(score.Confidence),
		"Framing":     framing,
	})
	if err != nil {
		zap.L().Error("rendering rationale input failed", zap.Error(err))
		return g.fallback(company, score, entity)
	}

	resp, err := g.agent.Generate(ctx, llm.Request{
		System:    system,
		Input:     input,
		Operation: "generate_rationale",
	})
	if err != nil {
		zap.L().Warn("rationale generation failed, using fallback",
			zap.String("company", company.Name),
			zap.Error(err),
		)
		return g.fallback(company, score, entity)
	}

	rationale, ok := parseRationale(resp)
	if !ok {
		zap.L().Warn("unparseable rationale response, using fallback",
			zap.String("company", company.Name),
		)
		return g.fallback(company, score, entity)
	}

	rationale.Recommendation = model.RecommendationForScore(score.OverallScore)
	return model.NewRationale(rationale)
}

// BatchGenerate produces one rationale per scored company, in order.
func (g *RationaleGenerator) BatchGenerate(ctx context.Context, scored []model.CompanyInfo, bctx model.BusinessContext, entity model.EntityType) []model.Rationale {
	rationales := make([]model.Rationale, 0, len(scored))
	for _, company := range scored {
		var score model.MatchScore
		if company.MatchScore != nil {
			score = *company.MatchScore
		}
		rationales = append(rationales, g.Generate(ctx, company, bctx, score, entity))
	}
	zap.L().Info("batch rationale generation complete",
		zap.Int("count", len(rationales)),
	)
	return rationales
}

func parseRationale(response string) (model.Rationale, bool) {
	doc, err := llmjson.ExtractValidated(llmjson.SchemaRationale, response)
	if err != nil {
		return model.Rationale{}, false
	}
	data, err := llmjson.DecodeObject(doc)
	if err != nil {
		return model.Rationale{}, false
	}

	r := model.Rationale{
		Summary:           stringValue(data["summary"]),
		KeyStrengths:      stringList(data["key_strengths"]),
		FitExplanation:    stringValue(data["fit_explanation"]),
		PotentialConcerns: stringList(data["potential_concerns"]),
	}
	if r.Summary == "" {
		return model.Rationale{}, false
	}
	return r, true
}

// fallback assembles a rationale from the score components alone.
func (g *RationaleGenerator) fallback(company model.CompanyInfo, score model.MatchScore, entity model.EntityType) model.Rationale {
	recommendation := model.RecommendationForScore(score.OverallScore)

	summary := fmt.Sprintf("Customer prospect %s identified through scoring", company.Name)
	if entity == model.EntityPartner {
		summary = fmt.Sprintf("Partnership opportunity with %s based on score analysis", company.Name)
	}

	var strengths []string
	if score.RelevanceScore >= 70 {
		strengths = append(strengths, fmt.Sprintf(
			"High relevance score (%.0f/100) indicates strong business fit", score.RelevanceScore))
	}
	if score.GeographicFit >= 70 {
		strengths = append(strengths, fmt.Sprintf(
			"Good geographic alignment (%.0f/100)", score.GeographicFit))
	}
	if score.SizeAppropriateness >= 70 {
		strengths = append(strengths, fmt.Sprintf(
			"Appropriate company size (%.0f/100)", score.SizeAppropriateness))
	}
	if score.StrategicAlignment >= 70 {
		strengths = append(strengths, fmt.Sprintf(
			"Strong strategic fit (%.0f/100)", score.StrategicAlignment))
	}
	if len(strengths) == 0 {
		strengths = append(strengths, fmt.Sprintf(
			"Overall match score of %.0f/100", score.OverallScore))
	}

	fitExplanation := fmt.Sprintf(
		"With an overall score of %.1f/100, this %s shows %s potential. Score confidence: %s.",
		score.OverallScore, entity, strings.ToLower(string(recommendation)), score.Confidence,
	)

	var concerns []string
	if score.Confidence == model.ConfidenceLow {
		concerns = append(concerns, "Limited data available for comprehensive assessment")
	}

	return model.Rationale{
		Summary:           summary,
		KeyStrengths:      strengths,
		FitExplanation:    fitExplanation,
		PotentialConcerns: concerns,
		Recommendation:    recommendation,
	}
}

func stringValue(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

func stringList(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s := stringValue(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}
