package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/discovery-cli/internal/discovery"
	"github.com/sells-group/discovery-cli/internal/errs"
	"github.com/sells-group/discovery-cli/internal/llm"
	"github.com/sells-group/discovery-cli/internal/query"
	"github.com/sells-group/discovery-cli/internal/scoring"
	"github.com/sells-group/discovery-cli/internal/search"
	"github.com/sells-group/discovery-cli/pkg/perplexity"
)

// testAgent answers every request with a fixed response.
type testAgent struct {
	response string
	err      error
}

func (a *testAgent) Generate(_ context.Context, _ llm.Request) (string, error) {
	return a.response, a.err
}

// emptySearch returns no results for every query.
type emptySearch struct{}

func (emptySearch) ChatCompletion(_ context.Context, _ perplexity.ChatCompletionRequest) (*perplexity.ChatCompletionResponse, error) {
	return nil, eris.New("not used")
}

func (emptySearch) Ask(_ context.Context, _, _ string) (string, []string, error) {
	return "[]", nil, nil
}

func testEnv(t *testing.T, agent llm.Agent) *env {
	t.Helper()
	engine := search.NewEngine(emptySearch{}, search.NewParser(nil), 5)
	d, err := discovery.New(
		query.NewBuilder(),
		engine,
		scoring.NewRelevanceScorer(agent, 0),
		nil, nil, nil,
		discovery.Options{},
	)
	require.NoError(t, err)
	return &env{
		agent:     agent,
		extractor: llm.NewContextExtractor(agent),
		discovery: d,
	}
}

func TestHealthEndpoint(t *testing.T) {
	router := newRouter(testEnv(t, &testAgent{}), 1)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestExtractEndpoint_MissingText(t *testing.T) {
	router := newRouter(testEnv(t, &testAgent{}), 1)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/extract", strings.NewReader(`{}`))
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "text is required")
}

func TestExtractEndpoint_Success(t *testing.T) {
	agent := &testAgent{response: `{"industry": "SaaS", "target_market": "agencies"}`}
	router := newRouter(testEnv(t, agent), 1)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/extract",
		strings.NewReader(`{"text": "We build SaaS for agencies."}`))
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"industry":"SaaS"`)
}

func TestDiscoverEndpoint_InvalidEntity(t *testing.T) {
	router := newRouter(testEnv(t, &testAgent{}), 1)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/discover",
		strings.NewReader(`{"entity_type": "supplier"}`))
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "entity_type must be customer or partner")
}

func TestDiscoverEndpoint_BadBody(t *testing.T) {
	router := newRouter(testEnv(t, &testAgent{}), 1)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/discover", strings.NewReader("not json"))
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDiscoverEndpoint_EmptyRun(t *testing.T) {
	router := newRouter(testEnv(t, &testAgent{response: `{"score": 0.9}`}), 1)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/discover",
		strings.NewReader(`{"entity_type": "customer", "context": {"industry": "SaaS"}}`))
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"run_id"`)
	assert.Contains(t, rec.Body.String(), `"scored":false`)
}

func TestWriteCategorizedError_StatusMapping(t *testing.T) {
	cases := []struct {
		cat    errs.Category
		status int
	}{
		{errs.CategoryAPIKey, http.StatusBadRequest},
		{errs.CategoryMissingContext, http.StatusBadRequest},
		{errs.CategoryNetwork, http.StatusBadGateway},
		{errs.CategoryParse, http.StatusUnprocessableEntity},
		{errs.CategoryInternal, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		writeCategorizedError(rec, errs.WithCategory(eris.New("boom"), tc.cat))
		assert.Equal(t, tc.status, rec.Code, "category %s", tc.cat)
		assert.Contains(t, rec.Body.String(), `"guidance"`)
	}
}
