package discovery

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/discovery-cli/internal/llm"
	"github.com/sells-group/discovery-cli/internal/llmjson"
	"github.com/sells-group/discovery-cli/internal/model"
)

// Enricher fills in candidate records with a follow-up model call:
// fuller description, precise locations, size estimate. Enrichment is
// best-effort; any failure keeps the original record.
type Enricher struct {
	agent llm.Agent
}

// NewEnricher creates an Enricher.
func NewEnricher(agent llm.Agent) *Enricher {
	return &Enricher{agent: agent}
}

// Enrich returns the company with any newly discovered fields merged
// in. Only non-empty values from the model overwrite existing data.
func (e *Enricher) Enrich(ctx context.Context, company model.CompanyInfo, entity model.EntityType) model.CompanyInfo {
	prompt := llm.PromptEnrichCustomer
	operation := "enrich_company"
	if entity == model.EntityPartner {
		prompt = llm.PromptEnrichPartner
		operation = "enrich_partner"
	}

	system, err := llm.RenderPrompt(prompt, map[string]any{
		"Name":        company.Name,
		"Website":     company.Website,
		"Description": company.Description,
		"Locations":   strings.Join(company.Locations, ", "),
	})
	if err != nil {
		zap.L().Error("rendering enrichment prompt failed", zap.Error(err))
		return company
	}

	resp, err := e.agent.Generate(ctx, llm.Request{
		System:    system,
		Input:     "Provide the additional company information.",
		Operation: operation,
	})
	if err != nil {
		zap.L().Warn("enrichment failed, keeping original record",
			zap.String("company", company.Name),
			zap.Error(err),
		)
		return company
	}

	doc, err := llmjson.ExtractValidated(llmjson.SchemaEnrichment, resp)
	if err != nil {
		zap.L().Warn("no usable enrichment JSON in response",
			zap.String("company", company.Name),
			zap.Error(err),
		)
		return company
	}
	data, err := llmjson.DecodeObject(doc)
	if err != nil {
		return company
	}

	if desc, ok := data["description"].(string); ok && strings.TrimSpace(desc) != "" {
		company.Description = strings.TrimSpace(desc)
	}
	if locs := decodeStringList(data["locations"]); len(locs) > 0 {
		company.Locations = locs
	}
	if size, ok := data["size_estimate"].(string); ok && strings.TrimSpace(size) != "" {
		company.SizeEstimate = strings.TrimSpace(size)
	}

	zap.L().Debug("company enriched", zap.String("company", company.Name))
	return company
}

// EnrichAll enriches every candidate in order.
func (e *Enricher) EnrichAll(ctx context.Context, companies []model.CompanyInfo, entity model.EntityType) []model.CompanyInfo {
	out := make([]model.CompanyInfo, 0, len(companies))
	for _, c := range companies {
		out = append(out, e.Enrich(ctx, c, entity))
	}
	return out
}

func decodeStringList(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
			out = append(out, strings.TrimSpace(s))
		}
	}
	return out
}
