// Package scoring ranks discovered companies: a fast relevance pass
// that filters search noise, a weighted 4-component match score, and a
// structured rationale explaining each score.
package scoring

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
	"golang.org/x/text/cases"

	"github.com/sells-group/discovery-cli/internal/llm"
	"github.com/sells-group/discovery-cli/internal/llmjson"
	"github.com/sells-group/discovery-cli/internal/model"
)

var fold = cases.Fold()

// DefaultCacheSize bounds the relevance score cache.
const DefaultCacheSize = 1024

// DefaultRelevanceThreshold is the minimum relevance score a candidate
// needs to survive filtering.
const DefaultRelevanceThreshold = 0.3

// neutralScore is returned whenever a score cannot be produced, so a
// single bad model response never zeroes out a candidate.
const neutralScore = 0.5

// ScoredCompany pairs a candidate with its relevance score.
type ScoredCompany struct {
	Company model.CompanyInfo
	Score   float64
}

// RelevanceScorer scores candidates 0.0-1.0 against the business
// context. Scores are cached by (entity type, name, industry) so
// re-runs over overlapping result sets do not re-bill.
type RelevanceScorer struct {
	agent llm.Agent
	cache *lru.Cache[string, float64]
}

// NewRelevanceScorer creates a scorer with a bounded score cache.
// cacheSize values <= 0 fall back to DefaultCacheSize.
func NewRelevanceScorer(agent llm.Agent, cacheSize int) *RelevanceScorer {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, _ := lru.New[string, float64](cacheSize)
	return &RelevanceScorer{agent: agent, cache: cache}
}

// Score rates one company 0.0-1.0 as a potential customer or partner.
// Any failure (prompt, model, parse) yields the neutral 0.5 rather
// than an error.
func (s *RelevanceScorer) Score(ctx context.Context, company model.CompanyInfo, bctx model.BusinessContext, entity model.EntityType) float64 {
	key := cacheKey(company, bctx, entity)
	if cached, ok := s.cache.Get(key); ok {
		zap.L().Debug("using cached relevance score",
			zap.String("company", company.Name),
			zap.Float64("score", cached),
		)
		return cached
	}

	score := s.scoreUncached(ctx, company, bctx, entity)
	s.cache.Add(key, score)
	return score
}

func (s *RelevanceScorer) scoreUncached(ctx context.Context, company model.CompanyInfo, bctx model.BusinessContext, entity model.EntityType) float64 {
	prompt := llm.PromptRelevanceCustomer
	operation := "score_customer_relevance"
	if entity == model.EntityPartner {
		prompt = llm.PromptRelevancePartner
		operation = "score_partner_relevance"
	}

	system, err := llm.RenderPrompt(prompt, map[string]any{
		"Industry":     orNA(bctx.Industry),
		"Products":     orNA(strings.Join(bctx.ProductsServices, ", ")),
		"TargetMarket": orNA(bctx.TargetMarket),
		"Geography":    orNA(strings.Join(bctx.Geography, ", ")),
		"KeyStrengths": orNA(strings.Join(bctx.KeyStrengths, ", ")),
		"Name":         company.Name,
		"Website":      company.Website,
		"Description":  orNA(company.Description),
		"Locations":    orNA(strings.Join(company.Locations, ", ")),
		"Size":         company.SizeEstimate,
	})
	if err != nil {
		zap.L().Error("rendering relevance prompt failed", zap.Error(err))
		return neutralScore
	}

	resp, err := s.agent.Generate(ctx, llm.Request{
		System:    system,
		Input:     fmt.Sprintf("Score %s as a potential %s.", company.Name, entity),
		Operation: operation,
	})
	if err != nil {
		zap.L().Error("relevance scoring failed, using neutral score",
			zap.String("company", company.Name),
			zap.Error(err),
		)
		return neutralScore
	}

	score := ParseScore(resp)
	zap.L().Info("relevance scored",
		zap.String("company", company.Name),
		zap.String("entity_type", string(entity)),
		zap.Float64("score", score),
	)
	return score
}

// ClearCache drops every cached relevance score.
func (s *RelevanceScorer) ClearCache() {
	s.cache.Purge()
}

// BatchScore scores every company and returns the pairs sorted by
// score, highest first. Ties keep their input order.
func (s *RelevanceScorer) BatchScore(ctx context.Context, companies []model.CompanyInfo, bctx model.BusinessContext, entity model.EntityType) []ScoredCompany {
	scored := make([]ScoredCompany, 0, len(companies))
	for _, c := range companies {
		scored = append(scored, ScoredCompany{
			Company: c,
			Score:   s.Score(ctx, c, bctx, entity),
		})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored
}

// FilterRelevant keeps the companies whose score meets the threshold,
// preserving order.
func FilterRelevant(scored []ScoredCompany, threshold float64) []model.CompanyInfo {
	kept := make([]model.CompanyInfo, 0, len(scored))
	for _, sc := range scored {
		if sc.Score >= threshold {
			kept = append(kept, sc.Company)
		}
	}
	zap.L().Info("relevance filter applied",
		zap.Float64("threshold", threshold),
		zap.Int("in", len(scored)),
		zap.Int("kept", len(kept)),
	)
	return kept
}

var decimalPattern = regexp.MustCompile(`\b([0-1]?\.\d+|0|1)\b`)

// ParseScore extracts a 0.0-1.0 relevance score from a model response.
// A JSON object passing the relevance schema (numeric "score" field)
// wins, clamped into range; otherwise the first bare decimal already in
// range is used; otherwise the neutral 0.5.
func ParseScore(response string) float64 {
	if doc, err := llmjson.ExtractValidated(llmjson.SchemaRelevance, response); err == nil {
		if data, err := llmjson.DecodeObject(doc); err == nil {
			if v, ok := data["score"].(float64); ok {
				return clampUnit(v)
			}
		}
	}

	for _, match := range decimalPattern.FindAllString(response, -1) {
		v, err := strconv.ParseFloat(match, 64)
		if err == nil && v >= 0 && v <= 1 {
			return v
		}
	}

	zap.L().Warn("could not parse relevance score from response",
		zap.String("response_head", head(response, 100)),
	)
	return neutralScore
}

func cacheKey(company model.CompanyInfo, bctx model.BusinessContext, entity model.EntityType) string {
	return string(entity) + "|" + fold.String(company.Name) + "|" + fold.String(bctx.Industry)
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}

func head(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
