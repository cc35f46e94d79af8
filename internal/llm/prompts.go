package llm

import (
	_ "embed"
	"strings"
	"sync"
	"text/template"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

//go:embed prompts.yaml
var promptsRaw []byte

// Prompt template names.
const (
	PromptContextExtraction = "context_extraction"
	PromptWebSearch         = "web_search"
	PromptParseCompany      = "parse_company"
	PromptRelevanceCustomer = "relevance_customer"
	PromptRelevancePartner  = "relevance_partner"
	PromptMatchRelevance    = "match_relevance"
	PromptEnrichCustomer    = "enrich_customer"
	PromptEnrichPartner     = "enrich_partner"
	PromptRationaleCustomer = "rationale_customer"
	PromptRationalePartner  = "rationale_partner"
	PromptRationaleInput    = "rationale_input"
)

type promptFile struct {
	Version int               `yaml:"version"`
	Prompts map[string]string `yaml:"prompts"`
}

var (
	promptOnce sync.Once
	promptTmpl map[string]*template.Template
	promptVer  int
	promptErr  error
)

func loadPrompts() {
	var pf promptFile
	if err := yaml.Unmarshal(promptsRaw, &pf); err != nil {
		promptErr = eris.Wrap(err, "llm: parsing embedded prompts")
		return
	}
	promptVer = pf.Version
	promptTmpl = make(map[string]*template.Template, len(pf.Prompts))
	for name, text := range pf.Prompts {
		t, err := template.New(name).Option("missingkey=error").Parse(text)
		if err != nil {
			promptErr = eris.Wrapf(err, "llm: parsing prompt template %q", name)
			return
		}
		promptTmpl[name] = t
	}
}

// PromptVersion returns the version stamp of the embedded prompt set.
func PromptVersion() int {
	promptOnce.Do(loadPrompts)
	return promptVer
}

// RenderPrompt renders the named prompt template with data. Static
// prompts take nil data.
func RenderPrompt(name string, data any) (string, error) {
	promptOnce.Do(loadPrompts)
	if promptErr != nil {
		return "", promptErr
	}
	t, ok := promptTmpl[name]
	if !ok {
		return "", eris.Errorf("llm: unknown prompt %q", name)
	}
	var sb strings.Builder
	if err := t.Execute(&sb, data); err != nil {
		return "", eris.Wrapf(err, "llm: rendering prompt %q", name)
	}
	return strings.TrimSpace(sb.String()), nil
}
