package search

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/discovery-cli/internal/llm"
	"github.com/sells-group/discovery-cli/internal/llmjson"
	"github.com/sells-group/discovery-cli/internal/model"
)

// Parser extracts structured company records from search result text.
// With an agent it asks the model for a structured extraction; without
// one (or when the model response is unusable) it falls back to keyword
// heuristics.
type Parser struct {
	agent llm.Agent
}

// NewParser creates a Parser. agent may be nil for heuristics-only
// parsing.
func NewParser(agent llm.Agent) *Parser {
	return &Parser{agent: agent}
}

// ParseCompany extracts a company record from one search result. The
// second return value is false when nothing usable could be extracted.
func (p *Parser) ParseCompany(ctx context.Context, resultText, sourceURL string) (model.CompanyInfo, bool) {
	if strings.TrimSpace(resultText) == "" {
		zap.L().Warn("empty search result text provided")
		return model.CompanyInfo{}, false
	}

	if p.agent != nil {
		if company, ok := p.parseWithAgent(ctx, resultText, sourceURL); ok {
			return company, true
		}
		zap.L().Debug("agent extraction failed, using heuristics",
			zap.String("source_url", sourceURL),
		)
	}

	return parseWithHeuristics(resultText, sourceURL), true
}

func (p *Parser) parseWithAgent(ctx context.Context, resultText, sourceURL string) (model.CompanyInfo, bool) {
	srcLabel := sourceURL
	if srcLabel == "" {
		srcLabel = "Not provided"
	}
	system, err := llm.RenderPrompt(llm.PromptParseCompany, map[string]any{
		"ResultText": resultText,
		"SourceURL":  srcLabel,
	})
	if err != nil {
		return model.CompanyInfo{}, false
	}

	resp, err := p.agent.Generate(ctx, llm.Request{
		System:    system,
		Input:     "Extract the company information.",
		Operation: "parse_company_info",
	})
	if err != nil {
		zap.L().Error("agent-based parsing failed", zap.Error(err))
		return model.CompanyInfo{}, false
	}

	doc, err := llmjson.ExtractValidated(llmjson.SchemaCompany, resp)
	if err != nil {
		zap.L().Warn("no valid company JSON in agent response", zap.Error(err))
		return model.CompanyInfo{}, false
	}
	data, err := llmjson.DecodeObject(doc)
	if err != nil {
		return model.CompanyInfo{}, false
	}

	company := model.CompanyInfo{
		Name:         stringField(data, "name"),
		Website:      stringField(data, "website"),
		Locations:    listField(data, "locations"),
		SizeEstimate: stringField(data, "size_estimate"),
		Description:  stringField(data, "description"),
	}
	if company.Name == "" {
		return model.CompanyInfo{}, false
	}
	if company.Website == "" {
		company.Website = sourceURL
	}
	if company.SizeEstimate == "" {
		company.SizeEstimate = "Unknown"
	}
	if sourceURL != "" {
		company.Sources = []string{sourceURL}
	}
	return company, true
}

// location keywords checked in order; only the first hit is recorded.
var locationKeywords = []string{
	"USA", "US", "United States", "North America",
	"Europe", "Asia", "UK", "Canada", "Australia",
}

var sizeKeywords = []struct {
	size  string
	words []string
}{
	{"Small", []string{"small", "startup", "smb"}},
	{"Large", []string{"enterprise", "large", "fortune"}},
	{"Medium", []string{"medium", "mid-size", "growing"}},
}

// parseWithHeuristics is the no-model fallback: name from the first
// line, website from the first http token, location and size from
// keyword scans.
func parseWithHeuristics(resultText, sourceURL string) model.CompanyInfo {
	firstLine, _, _ := strings.Cut(strings.TrimSpace(resultText), "\n")

	var name string
	if before, _, found := strings.Cut(firstLine, " - "); found {
		name = strings.TrimSpace(before)
	} else {
		words := strings.Fields(firstLine)
		if len(words) > 3 {
			words = words[:3]
		}
		name = strings.Join(words, " ")
	}

	website := sourceURL
	for _, word := range strings.Fields(resultText) {
		if strings.HasPrefix(word, "http") {
			website = strings.Trim(word, ".,;:)")
			break
		}
	}

	var locations []string
	for _, keyword := range locationKeywords {
		if strings.Contains(resultText, keyword) {
			locations = append(locations, keyword)
			break
		}
	}

	sizeEstimate := "Unknown"
	lower := strings.ToLower(resultText)
	for _, bucket := range sizeKeywords {
		for _, word := range bucket.words {
			if strings.Contains(lower, word) {
				sizeEstimate = bucket.size
				break
			}
		}
		if sizeEstimate != "Unknown" {
			break
		}
	}

	description := resultText
	if len(description) > 200 {
		description = description[:200] + "..."
	}

	var sources []string
	if sourceURL != "" {
		sources = []string{sourceURL}
	}

	return model.CompanyInfo{
		Name:         name,
		Website:      website,
		Locations:    locations,
		SizeEstimate: sizeEstimate,
		Description:  description,
		Sources:      sources,
	}
}

func stringField(data map[string]any, key string) string {
	switch v := data[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, fmt.Sprintf("%v", item))
		}
		return strings.Join(parts, ", ")
	default:
		return ""
	}
}

func listField(data map[string]any, key string) []string {
	switch v := data[key].(type) {
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s := strings.TrimSpace(fmt.Sprintf("%v", item)); s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		if s := strings.TrimSpace(v); s != "" {
			return []string{s}
		}
		return nil
	default:
		return nil
	}
}
