package scoring

import (
	"context"
	"strings"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/discovery-cli/internal/llm"
	"github.com/sells-group/discovery-cli/internal/model"
)

// stubAgent returns a canned response per company name found in the
// rendered system prompt, or a single fixed response.
type stubAgent struct {
	response  string
	responses map[string]string
	err       error
	calls     int
	requests  []llm.Request
}

func (s *stubAgent) Generate(_ context.Context, req llm.Request) (string, error) {
	s.calls++
	s.requests = append(s.requests, req)
	if s.err != nil {
		return "", s.err
	}
	for key, resp := range s.responses {
		if strings.Contains(req.System, key) || strings.Contains(req.Input, key) {
			return resp, nil
		}
	}
	return s.response, nil
}

func testContext() model.BusinessContext {
	return model.BusinessContext{
		CompanyName:      "Acme",
		Industry:         "SaaS - Marketing Automation",
		ProductsServices: []string{"Email platform"},
		TargetMarket:     "B2B - SMB marketing agencies",
		Geography:        []string{"North America"},
	}
}

func testCompany(name string) model.CompanyInfo {
	return model.CompanyInfo{
		Name:         name,
		Website:      "https://" + name + ".example.com",
		Description:  "Marketing agency serving small businesses",
		Locations:    []string{"North America"},
		SizeEstimate: "Small",
	}
}

func TestParseScore_JSONObject(t *testing.T) {
	assert.Equal(t, 0.85, ParseScore(`{"score": 0.85, "reasoning": "strong fit"}`))
}

func TestParseScore_JSONClamped(t *testing.T) {
	assert.Equal(t, 1.0, ParseScore(`{"score": 1.8}`))
	assert.Equal(t, 0.0, ParseScore(`{"score": -0.2}`))
}

func TestParseScore_BareDecimal(t *testing.T) {
	assert.Equal(t, 0.7, ParseScore("I would rate this company 0.7 overall."))
}

func TestParseScore_NonNumericScoreFallsBack(t *testing.T) {
	// A string-valued score fails the schema; the decimal scan still
	// recovers the number from the raw text.
	assert.Equal(t, 0.8, ParseScore(`{"score": "0.8"}`))
	assert.Equal(t, 0.5, ParseScore(`{"score": "high"}`))
}

func TestParseScore_Unparseable(t *testing.T) {
	assert.Equal(t, 0.5, ParseScore("no numeric content here"))
	assert.Equal(t, 0.5, ParseScore(""))
}

func TestScore_FromAgent(t *testing.T) {
	agent := &stubAgent{response: `{"score": 0.9, "reasoning": "ideal target"}`}
	scorer := NewRelevanceScorer(agent, 0)

	score := scorer.Score(context.Background(), testCompany("acme"), testContext(), model.EntityCustomer)
	assert.Equal(t, 0.9, score)

	require.Len(t, agent.requests, 1)
	assert.Equal(t, "score_customer_relevance", agent.requests[0].Operation)
	assert.Contains(t, agent.requests[0].System, "acme")
	assert.Contains(t, agent.requests[0].System, "SaaS - Marketing Automation")
}

func TestScore_PartnerOperation(t *testing.T) {
	agent := &stubAgent{response: `{"score": 0.6}`}
	scorer := NewRelevanceScorer(agent, 0)

	scorer.Score(context.Background(), testCompany("beta"), testContext(), model.EntityPartner)
	require.Len(t, agent.requests, 1)
	assert.Equal(t, "score_partner_relevance", agent.requests[0].Operation)
}

func TestScore_AgentErrorIsNeutral(t *testing.T) {
	agent := &stubAgent{err: eris.New("model unavailable")}
	scorer := NewRelevanceScorer(agent, 0)

	score := scorer.Score(context.Background(), testCompany("acme"), testContext(), model.EntityCustomer)
	assert.Equal(t, 0.5, score)
}

func TestScore_Cached(t *testing.T) {
	agent := &stubAgent{response: `{"score": 0.8}`}
	scorer := NewRelevanceScorer(agent, 0)

	company := testCompany("acme")
	first := scorer.Score(context.Background(), company, testContext(), model.EntityCustomer)
	second := scorer.Score(context.Background(), company, testContext(), model.EntityCustomer)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, agent.calls)
}

func TestClearCache(t *testing.T) {
	agent := &stubAgent{response: `{"score": 0.8}`}
	scorer := NewRelevanceScorer(agent, 0)

	company := testCompany("acme")
	scorer.Score(context.Background(), company, testContext(), model.EntityCustomer)
	scorer.ClearCache()
	scorer.Score(context.Background(), company, testContext(), model.EntityCustomer)
	assert.Equal(t, 2, agent.calls)
}

func TestScore_CacheKeyedByEntityType(t *testing.T) {
	agent := &stubAgent{response: `{"score": 0.8}`}
	scorer := NewRelevanceScorer(agent, 0)

	company := testCompany("acme")
	scorer.Score(context.Background(), company, testContext(), model.EntityCustomer)
	scorer.Score(context.Background(), company, testContext(), model.EntityPartner)
	assert.Equal(t, 2, agent.calls)
}

func TestBatchScore_SortedDescending(t *testing.T) {
	agent := &stubAgent{responses: map[string]string{
		"alpha": `{"score": 0.4}`,
		"bravo": `{"score": 0.9}`,
		"delta": `{"score": 0.6}`,
	}}
	scorer := NewRelevanceScorer(agent, 0)

	scored := scorer.BatchScore(context.Background(), []model.CompanyInfo{
		testCompany("alpha"), testCompany("bravo"), testCompany("delta"),
	}, testContext(), model.EntityCustomer)

	require.Len(t, scored, 3)
	assert.Equal(t, "bravo", scored[0].Company.Name)
	assert.Equal(t, "delta", scored[1].Company.Name)
	assert.Equal(t, "alpha", scored[2].Company.Name)
}

func TestFilterRelevant(t *testing.T) {
	scored := []ScoredCompany{
		{Company: testCompany("keep"), Score: 0.8},
		{Company: testCompany("edge"), Score: 0.3},
		{Company: testCompany("drop"), Score: 0.29},
	}
	kept := FilterRelevant(scored, DefaultRelevanceThreshold)
	require.Len(t, kept, 2)
	assert.Equal(t, "keep", kept[0].Name)
	assert.Equal(t, "edge", kept[1].Name)
}

func TestFilterRelevant_Empty(t *testing.T) {
	assert.Empty(t, FilterRelevant(nil, DefaultRelevanceThreshold))
}
