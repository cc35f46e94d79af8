package llm

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/discovery-cli/internal/docs"
	"github.com/sells-group/discovery-cli/internal/errs"
	"github.com/sells-group/discovery-cli/internal/llmjson"
	"github.com/sells-group/discovery-cli/internal/model"
)

// documentSeparator is inserted between the texts of multiple uploaded
// documents before extraction.
var documentSeparator = "\n\n" + strings.Repeat("=", 80) + "\n\n"

// ContextExtractor turns business documents into a structured
// BusinessContext via a model extraction call.
type ContextExtractor struct {
	agent Agent
}

// NewContextExtractor creates a ContextExtractor using the given agent.
func NewContextExtractor(agent Agent) *ContextExtractor {
	return &ContextExtractor{agent: agent}
}

// ExtractFromFiles parses the given document files and extracts a
// business profile from their combined text. Files that fail to parse
// are skipped with a warning; if none parse, the error carries the
// missing-context category.
func (e *ContextExtractor) ExtractFromFiles(ctx context.Context, paths []string) (model.BusinessContext, error) {
	var texts []string
	for _, path := range paths {
		text, err := docs.ExtractText(ctx, path)
		if err != nil {
			zap.L().Warn("skipping unparseable document",
				zap.String("path", path),
				zap.Error(err),
			)
			continue
		}
		if strings.TrimSpace(text) != "" {
			texts = append(texts, text)
		}
	}

	if len(texts) == 0 {
		return model.BusinessContext{}, errs.WithCategory(
			eris.New("llm: no readable documents provided"),
			errs.CategoryMissingContext,
		)
	}

	return e.ExtractFromText(ctx, strings.Join(texts, documentSeparator))
}

// ExtractFromText extracts a business profile from raw document text.
func (e *ContextExtractor) ExtractFromText(ctx context.Context, text string) (model.BusinessContext, error) {
	system, err := RenderPrompt(PromptContextExtraction, nil)
	if err != nil {
		return model.BusinessContext{}, err
	}

	resp, err := e.agent.Generate(ctx, Request{
		System:    system,
		Input:     text,
		Operation: "extract_context",
	})
	if err != nil {
		return model.BusinessContext{}, eris.Wrap(err, "llm: context extraction")
	}

	doc, err := llmjson.ExtractValidated(llmjson.SchemaProfile, resp)
	if err != nil {
		return model.BusinessContext{}, errs.WithCategory(
			eris.Wrap(err, "llm: context extraction response"),
			errs.CategoryParse,
		)
	}

	data, err := llmjson.DecodeObject(doc)
	if err != nil {
		return model.BusinessContext{}, errs.WithCategory(
			eris.Wrap(err, "llm: context extraction response"),
			errs.CategoryParse,
		)
	}

	profile := model.DecodeProfile(data)
	zap.L().Info("business context extracted",
		zap.String("company", profile.CompanyName),
		zap.String("industry", profile.Industry),
		zap.Int("prompt_version", PromptVersion()),
	)
	return profile, nil
}
