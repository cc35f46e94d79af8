// Package search performs web searches through a search-grounded model
// backend and turns raw hits into normalized company records.
package search

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/discovery-cli/internal/llm"
	"github.com/sells-group/discovery-cli/internal/llmjson"
	"github.com/sells-group/discovery-cli/internal/model"
	"github.com/sells-group/discovery-cli/pkg/perplexity"
)

// DefaultMaxResultsPerQuery balances coverage and quality.
const DefaultMaxResultsPerQuery = 5

// Result is a single raw search hit.
type Result struct {
	Query      string
	URL        string
	Snippet    string
	ResultText string
}

// Engine runs queries against the Perplexity search-grounded API.
type Engine struct {
	client             perplexity.Client
	parser             *Parser
	maxResultsPerQuery int
}

// NewEngine creates a search Engine. maxResultsPerQuery values <= 0
// fall back to DefaultMaxResultsPerQuery.
func NewEngine(client perplexity.Client, parser *Parser, maxResultsPerQuery int) *Engine {
	if maxResultsPerQuery <= 0 {
		maxResultsPerQuery = DefaultMaxResultsPerQuery
	}
	return &Engine{
		client:             client,
		parser:             parser,
		maxResultsPerQuery: maxResultsPerQuery,
	}
}

// Search runs every query and collects raw results. A failed query is
// logged and skipped; Search never fails the whole batch.
func (e *Engine) Search(ctx context.Context, queries []string) []Result {
	if len(queries) == 0 {
		zap.L().Warn("no queries provided to search")
		return nil
	}

	var all []Result
	for _, q := range queries {
		results, err := e.searchOne(ctx, q)
		if err != nil {
			zap.L().Error("search failed for query",
				zap.String("query", q),
				zap.Error(err),
			)
			continue
		}
		zap.L().Info("search completed",
			zap.String("query", q),
			zap.Int("results", len(results)),
		)
		all = append(all, results...)
	}

	zap.L().Info("total search results collected", zap.Int("count", len(all)))
	return all
}

// SearchAndParse is the primary entry point: search every query, parse
// each hit into a CompanyInfo, and deduplicate by (name, website).
func (e *Engine) SearchAndParse(ctx context.Context, queries []string) []model.CompanyInfo {
	results := e.Search(ctx, queries)

	var companies []model.CompanyInfo
	for _, r := range results {
		text := r.ResultText
		if text == "" {
			text = r.Snippet
		}
		if text == "" {
			continue
		}
		company, ok := e.parser.ParseCompany(ctx, text, r.URL)
		if !ok {
			continue
		}
		companies = append(companies, company)
	}

	unique := model.DedupeCompanies(companies)
	zap.L().Info("parsed companies from search results",
		zap.Int("results", len(results)),
		zap.Int("unique_companies", len(unique)),
	)
	return unique
}

func (e *Engine) searchOne(ctx context.Context, query string) ([]Result, error) {
	system, err := llm.RenderPrompt(llm.PromptWebSearch, map[string]any{
		"Query":      query,
		"MaxResults": e.maxResultsPerQuery,
	})
	if err != nil {
		return nil, err
	}

	answer, citations, err := e.client.Ask(ctx, system, "Search for: "+query)
	if err != nil {
		return nil, eris.Wrapf(err, "search: query %q", query)
	}

	results := parseSearchResponse(answer)
	if len(results) == 0 {
		// A grounded answer with citations but no parseable result
		// list still names real pages; fall back to one result per
		// citation URL.
		for _, url := range citations {
			results = append(results, Result{
				URL:        url,
				Snippet:    firstLine(answer),
				ResultText: answer,
			})
		}
	}

	if len(results) > e.maxResultsPerQuery {
		results = results[:e.maxResultsPerQuery]
	}
	for i := range results {
		results[i].Query = query
	}
	return results, nil
}

// parseSearchResponse accepts either the requested JSON array shape,
// validated against the search-results schema, or a line-oriented
// plain-text listing where each URL line starts a new record.
func parseSearchResponse(response string) []Result {
	if doc, err := llmjson.ExtractValidated(llmjson.SchemaSearchResults, response); err == nil {
		if items, err := llmjson.DecodeArray(doc); err == nil {
			var results []Result
			for _, item := range items {
				url, _ := item["url"].(string)
				if url == "" {
					continue
				}
				title, _ := item["title"].(string)
				snippet, _ := item["snippet"].(string)
				results = append(results, Result{
					URL:        url,
					Snippet:    snippet,
					ResultText: title + "\n" + snippet,
				})
			}
			if len(results) > 0 {
				return results
			}
		}
	}

	// Line-oriented fallback: a line starting with "http" opens a new
	// record, subsequent non-empty lines become its text.
	var results []Result
	var current *Result
	for _, line := range strings.Split(response, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "http"):
			if current != nil {
				results = append(results, *current)
			}
			current = &Result{URL: line}
		case current != nil && line != "":
			current.ResultText += line + "\n"
			if current.Snippet == "" {
				current.Snippet = line
			}
		}
	}
	if current != nil {
		results = append(results, *current)
	}
	return results
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	return line
}
