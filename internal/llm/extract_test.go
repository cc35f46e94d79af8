package llm

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/discovery-cli/internal/errs"
)

// scriptedAgent returns responses keyed by operation.
type scriptedAgent struct {
	responses map[string]string
	errs      map[string]error
	requests  []Request
}

func (s *scriptedAgent) Generate(_ context.Context, req Request) (string, error) {
	s.requests = append(s.requests, req)
	if err, ok := s.errs[req.Operation]; ok {
		return "", err
	}
	return s.responses[req.Operation], nil
}

func TestExtractFromText(t *testing.T) {
	agent := &scriptedAgent{responses: map[string]string{
		"extract_context": `Here is the profile:
{"company_name": "Acme Corp", "industry": "SaaS", "products_services": ["Email platform"], "geography": ["North America"]}`,
	}}
	ex := NewContextExtractor(agent)

	profile, err := ex.ExtractFromText(context.Background(), "We are Acme Corp, a SaaS company.")
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", profile.CompanyName)
	assert.Equal(t, "SaaS", profile.Industry)
	assert.Equal(t, []string{"Email platform"}, profile.ProductsServices)

	require.Len(t, agent.requests, 1)
	assert.Contains(t, agent.requests[0].System, "business analyst")
	assert.Equal(t, "We are Acme Corp, a SaaS company.", agent.requests[0].Input)
}

func TestExtractFromText_AliasedFields(t *testing.T) {
	agent := &scriptedAgent{responses: map[string]string{
		"extract_context": `{"company": "Beta", "sector": "Healthcare", "regions": ["Europe"]}`,
	}}
	ex := NewContextExtractor(agent)

	profile, err := ex.ExtractFromText(context.Background(), "doc")
	require.NoError(t, err)
	assert.Equal(t, "Beta", profile.CompanyName)
	assert.Equal(t, "Healthcare", profile.Industry)
	assert.Equal(t, []string{"Europe"}, profile.Geography)
}

func TestExtractFromText_UnparseableResponse(t *testing.T) {
	agent := &scriptedAgent{responses: map[string]string{
		"extract_context": "I'm sorry, I can't produce structured output for that.",
	}}
	ex := NewContextExtractor(agent)

	_, err := ex.ExtractFromText(context.Background(), "doc")
	require.Error(t, err)
	assert.Equal(t, errs.CategoryParse, errs.CategoryOf(err))
}

func TestExtractFromText_AgentError(t *testing.T) {
	agent := &scriptedAgent{errs: map[string]error{
		"extract_context": eris.New("upstream unavailable"),
	}}
	ex := NewContextExtractor(agent)

	_, err := ex.ExtractFromText(context.Background(), "doc")
	assert.Error(t, err)
}

func TestExtractFromFiles(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "profile.txt")
	require.NoError(t, os.WriteFile(good, []byte("Acme Corp overview"), 0o644))
	bad := filepath.Join(dir, "deck.pptx")
	require.NoError(t, os.WriteFile(bad, []byte("binary"), 0o644))

	agent := &scriptedAgent{responses: map[string]string{
		"extract_context": `{"company_name": "Acme Corp"}`,
	}}
	ex := NewContextExtractor(agent)

	// Unsupported file is skipped, readable file still drives extraction.
	profile, err := ex.ExtractFromFiles(context.Background(), []string{bad, good})
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", profile.CompanyName)
	assert.Contains(t, agent.requests[0].Input, "Acme Corp overview")
}

func TestExtractFromFiles_NoneReadable(t *testing.T) {
	agent := &scriptedAgent{}
	ex := NewContextExtractor(agent)

	_, err := ex.ExtractFromFiles(context.Background(), []string{
		filepath.Join(t.TempDir(), "missing.txt"),
	})
	require.Error(t, err)
	assert.Equal(t, errs.CategoryMissingContext, errs.CategoryOf(err))
	assert.Empty(t, agent.requests)
}

func TestExtractFromFiles_JoinsWithSeparator(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	b := filepath.Join(dir, "b.md")
	require.NoError(t, os.WriteFile(a, []byte("first document"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("second document"), 0o644))

	agent := &scriptedAgent{responses: map[string]string{
		"extract_context": `{"company_name": "X"}`,
	}}
	ex := NewContextExtractor(agent)

	_, err := ex.ExtractFromFiles(context.Background(), []string{a, b})
	require.NoError(t, err)
	assert.Contains(t, agent.requests[0].Input, "first document")
	assert.Contains(t, agent.requests[0].Input, "second document")
	assert.Contains(t, agent.requests[0].Input, "================")
}
