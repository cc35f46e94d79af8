package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"

	"github.com/sells-group/discovery-cli/internal/discovery"
	"github.com/sells-group/discovery-cli/internal/llm"
	"github.com/sells-group/discovery-cli/internal/model"
	"github.com/sells-group/discovery-cli/internal/query"
	"github.com/sells-group/discovery-cli/internal/scoring"
	"github.com/sells-group/discovery-cli/internal/search"
	anthropicpkg "github.com/sells-group/discovery-cli/pkg/anthropic"
	"github.com/sells-group/discovery-cli/pkg/perplexity"
)

// env bundles the clients and pipeline components a command needs.
type env struct {
	agent     llm.Agent
	extractor *llm.ContextExtractor
	discovery *discovery.Discovery
}

// initEnv validates config and wires the full pipeline. withScoring
// controls whether runs carry the match-scoring stage.
func initEnv(withScoring bool) (*env, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	anthropicClient := anthropicpkg.NewClient(cfg.Anthropic.Key)
	agent := llm.NewAgent(anthropicClient, llm.Config{
		Model:             cfg.Anthropic.Model,
		MaxTokens:         cfg.Anthropic.MaxTokens,
		Temperature:       cfg.Anthropic.Temperature,
		RequestsPerSecond: cfg.Anthropic.RequestsPerSecond,
	})

	perplexityClient := perplexity.NewClient(cfg.Perplexity.Key,
		perplexity.WithBaseURL(cfg.Perplexity.BaseURL),
		perplexity.WithModel(cfg.Perplexity.Model),
	)

	engine := search.NewEngine(perplexityClient, search.NewParser(agent), cfg.Discovery.MaxResultsPerQuery)
	relevance := scoring.NewRelevanceScorer(agent, cfg.Discovery.CacheSize)
	enricher := discovery.NewEnricher(agent)

	var matcher *scoring.MatchScorer
	var rationale *scoring.RationaleGenerator
	if withScoring {
		matcher = scoring.NewMatchScorer(agent)
		rationale = scoring.NewRationaleGenerator(agent)
	}

	d, err := discovery.New(query.NewBuilder(), engine, relevance, enricher, matcher, rationale, discovery.Options{
		RelevanceThreshold:    cfg.Discovery.RelevanceThreshold,
		CustomerMaxCandidates: cfg.Discovery.CustomerMaxCandidates,
		PartnerMaxCandidates:  cfg.Discovery.PartnerMaxCandidates,
	})
	if err != nil {
		return nil, err
	}

	return &env{
		agent:     agent,
		extractor: llm.NewContextExtractor(agent),
		discovery: d,
	}, nil
}

// loadProfile reads a saved business profile JSON file.
func loadProfile(path string) (model.BusinessContext, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.BusinessContext{}, eris.Wrapf(err, "reading profile %s", path)
	}
	var bctx model.BusinessContext
	if err := json.Unmarshal(data, &bctx); err != nil {
		return model.BusinessContext{}, eris.Wrapf(err, "parsing profile %s", path)
	}
	return bctx, nil
}
