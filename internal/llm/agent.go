// Package llm provides the model agent the discovery pipeline talks to,
// plus the embedded prompt templates every operation renders against.
package llm

import (
	"context"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/discovery-cli/internal/errs"
	"github.com/sells-group/discovery-cli/internal/resilience"
	"github.com/sells-group/discovery-cli/pkg/anthropic"
)

// Request is a single text-in/text-out model call. Operation names the
// pipeline step for logging and cost attribution.
type Request struct {
	System    string
	Input     string
	Operation string
}

// Agent generates text responses for discovery operations.
type Agent interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// Interaction records one completed agent call for the audit log.
type Interaction struct {
	Operation   string    `json:"operation"`
	Timestamp   time.Time `json:"timestamp"`
	InputChars  int       `json:"input_chars"`
	OutputChars int       `json:"output_chars"`
	Duration    string    `json:"duration"`
}

// Config controls the Anthropic-backed agent.
type Config struct {
	Model       string
	MaxTokens   int64
	Temperature float64
	// RequestsPerSecond throttles outbound calls. Zero disables
	// throttling.
	RequestsPerSecond float64
}

const interactionLogCap = 200

// AnthropicAgent is the production Agent: rate-limited calls through
// the Anthropic client, with a bounded in-memory audit log of every
// completed call, readable via Interactions.
type AnthropicAgent struct {
	client      anthropic.Client
	model       string
	maxTokens   int64
	temperature float64
	limiter     *rate.Limiter

	mu  sync.Mutex
	log []Interaction
}

// NewAgent creates an AnthropicAgent.
func NewAgent(client anthropic.Client, cfg Config) *AnthropicAgent {
	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}
	return &AnthropicAgent{
		client:      client,
		model:       cfg.Model,
		maxTokens:   maxTokens,
		temperature: cfg.Temperature,
		limiter:     limiter,
	}
}

func (a *AnthropicAgent) Generate(ctx context.Context, req Request) (string, error) {
	if err := a.limiter.Wait(ctx); err != nil {
		return "", eris.Wrap(err, "llm: waiting for rate limiter")
	}

	start := time.Now()

	msgReq := anthropic.MessageRequest{
		Model:       a.model,
		MaxTokens:   a.maxTokens,
		Temperature: &a.temperature,
		Messages: []anthropic.Message{
			{Role: "user", Content: req.Input},
		},
	}
	if req.System != "" {
		msgReq.System = anthropic.BuildCachedSystemBlocks(req.System)
	}

	retryCfg := resilience.DefaultRetryConfig()
	retryCfg.OnRetry = resilience.RetryLogger("anthropic", req.Operation)

	resp, err := resilience.Do(ctx, retryCfg, func(ctx context.Context) (*anthropic.MessageResponse, error) {
		return a.client.CreateMessage(ctx, msgReq)
	})
	if err != nil {
		return "", errs.WithCategory(
			eris.Wrapf(err, "llm: %s call failed", req.Operation),
			errs.CategoryNetwork,
		)
	}

	resp.Usage.LogCost(a.model, req.Operation)

	text := resp.Text()
	a.record(Interaction{
		Operation:   req.Operation,
		Timestamp:   start.UTC(),
		InputChars:  len(req.System) + len(req.Input),
		OutputChars: len(text),
		Duration:    time.Since(start).Round(time.Millisecond).String(),
	})

	zap.L().Debug("agent call completed",
		zap.String("operation", req.Operation),
		zap.Int("output_chars", len(text)),
		zap.Duration("duration", time.Since(start)),
	)

	return text, nil
}

func (a *AnthropicAgent) record(it Interaction) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.log = append(a.log, it)
	if len(a.log) > interactionLogCap {
		a.log = a.log[len(a.log)-interactionLogCap:]
	}
}

// Interactions returns a copy of the recorded call log, oldest first.
func (a *AnthropicAgent) Interactions() []Interaction {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]Interaction, len(a.log))
	copy(out, a.log)
	return out
}
