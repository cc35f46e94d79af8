// Package discovery runs the end-to-end pipeline: queries from the
// business context, web search, relevance filtering, enrichment, and
// the optional scoring stage that attaches match scores and rationales.
package discovery

import (
	"context"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/discovery-cli/internal/errs"
	"github.com/sells-group/discovery-cli/internal/model"
	"github.com/sells-group/discovery-cli/internal/query"
	"github.com/sells-group/discovery-cli/internal/scoring"
	"github.com/sells-group/discovery-cli/internal/search"
)

// Candidate caps per entity type. Partners get a tighter cap because
// partner evaluation is more expensive per candidate downstream.
const (
	DefaultCustomerMaxCandidates = 20
	DefaultPartnerMaxCandidates  = 10
)

// Options tunes a Discovery pipeline.
type Options struct {
	// RelevanceThreshold is the minimum relevance score a candidate
	// needs to survive filtering. Zero means the default.
	RelevanceThreshold float64
	// CustomerMaxCandidates caps customer runs. Zero means the default.
	CustomerMaxCandidates int
	// PartnerMaxCandidates caps partner runs. Zero means the default.
	PartnerMaxCandidates int
}

// Discovery orchestrates one discovery run. The scoring stage (matcher
// plus rationale generator) is optional; without it runs stop after
// relevance filtering and enrichment.
type Discovery struct {
	builder   *query.Builder
	engine    *search.Engine
	relevance *scoring.RelevanceScorer
	enricher  *Enricher
	matcher   *scoring.MatchScorer
	rationale *scoring.RationaleGenerator

	threshold   float64
	customerCap int
	partnerCap  int
}

// New creates a Discovery pipeline. builder, engine, and relevance are
// required; enricher, matcher, and rationale may be nil to skip their
// stages, but matcher and rationale must be set together.
func New(builder *query.Builder, engine *search.Engine, relevance *scoring.RelevanceScorer, enricher *Enricher, matcher *scoring.MatchScorer, rationale *scoring.RationaleGenerator, opts Options) (*Discovery, error) {
	if builder == nil || engine == nil || relevance == nil {
		return nil, eris.New("discovery: builder, engine, and relevance scorer are required")
	}
	if (matcher == nil) != (rationale == nil) {
		return nil, eris.New("discovery: matcher and rationale generator must be configured together")
	}

	threshold := opts.RelevanceThreshold
	if threshold <= 0 {
		threshold = scoring.DefaultRelevanceThreshold
	}
	customerCap := opts.CustomerMaxCandidates
	if customerCap <= 0 {
		customerCap = DefaultCustomerMaxCandidates
	}
	partnerCap := opts.PartnerMaxCandidates
	if partnerCap <= 0 {
		partnerCap = DefaultPartnerMaxCandidates
	}

	return &Discovery{
		builder:     builder,
		engine:      engine,
		relevance:   relevance,
		enricher:    enricher,
		matcher:     matcher,
		rationale:   rationale,
		threshold:   threshold,
		customerCap: customerCap,
		partnerCap:  partnerCap,
	}, nil
}

// Scored reports whether the pipeline carries the scoring stage.
func (d *Discovery) Scored() bool {
	return d.matcher != nil
}

// Run executes a full discovery pass for one entity type. An empty
// search or an empty post-filter set is not an error: the result comes
// back with no companies and the queries that were tried.
func (d *Discovery) Run(ctx context.Context, bctx model.BusinessContext, entity model.EntityType, filters query.Filters) (model.DiscoveryResult, error) {
	var queries []string
	if entity == model.EntityPartner {
		queries = d.builder.PartnerQueries(bctx, filters)
	} else {
		queries = d.builder.CustomerQueries(bctx, filters)
	}

	result := model.NewDiscoveryResult(entity, nil, strings.Join(queries, ", "))

	zap.L().Info("discovery run started",
		zap.String("run_id", result.RunID),
		zap.String("entity_type", string(entity)),
		zap.Int("queries", len(queries)),
	)

	candidates := d.engine.SearchAndParse(ctx, queries)
	if len(candidates) == 0 {
		zap.L().Warn("no search results, returning empty result",
			zap.String("run_id", result.RunID),
		)
		return result, nil
	}
	if err := ctx.Err(); err != nil {
		return result, d.wrapRunErr(err, result.RunID)
	}

	scored := d.relevance.BatchScore(ctx, candidates, bctx, entity)
	kept := scoring.FilterRelevant(scored, d.threshold)
	if len(kept) == 0 {
		zap.L().Warn("no candidates passed relevance filter",
			zap.String("run_id", result.RunID),
			zap.Float64("threshold", d.threshold),
		)
		return result, nil
	}

	limit := d.customerCap
	if entity == model.EntityPartner {
		limit = d.partnerCap
	}
	if len(kept) > limit {
		kept = kept[:limit]
	}
	if err := ctx.Err(); err != nil {
		return result, d.wrapRunErr(err, result.RunID)
	}

	if d.enricher != nil {
		kept = d.enricher.EnrichAll(ctx, kept, entity)
	}

	if d.matcher != nil {
		kept = d.scoreStage(ctx, kept, bctx, entity)
		result.Scored = true
		result.AvgScore = averageScore(kept)
	}

	result.Companies = kept
	zap.L().Info("discovery run complete",
		zap.String("run_id", result.RunID),
		zap.Int("companies", len(kept)),
		zap.Bool("scored", result.Scored),
		zap.Float64("avg_score", result.AvgScore),
	)
	return result, nil
}

// scoreStage attaches a match score and rationale to every candidate
// and sorts by overall score descending.
func (d *Discovery) scoreStage(ctx context.Context, companies []model.CompanyInfo, bctx model.BusinessContext, entity model.EntityType) []model.CompanyInfo {
	for i := range companies {
		score := d.matcher.Score(ctx, companies[i], bctx, entity)
		companies[i].MatchScore = &score
		rationale := d.rationale.Generate(ctx, companies[i], bctx, score, entity)
		companies[i].Rationale = &rationale
	}

	sort.SliceStable(companies, func(i, j int) bool {
		return companies[i].MatchScore.OverallScore > companies[j].MatchScore.OverallScore
	})
	return companies
}

func (d *Discovery) wrapRunErr(err error, runID string) error {
	return errs.WithCategory(
		eris.Wrapf(err, "discovery: run %s interrupted", runID),
		errs.CategoryInternal,
	)
}

func averageScore(companies []model.CompanyInfo) float64 {
	if len(companies) == 0 {
		return 0
	}
	var sum float64
	for _, c := range companies {
		if c.MatchScore != nil {
			sum += c.MatchScore.OverallScore
		}
	}
	return sum / float64(len(companies))
}
