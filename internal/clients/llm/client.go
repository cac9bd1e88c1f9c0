// Package llm wraps the Anthropic API for natural-language interpretation and
// result explanation. All numeric work happens before this package is called;
// nothing here may alter a simulation result.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rs/zerolog"

	"github.com/mahbubchula/policysim/internal/modules/agent"
	"github.com/mahbubchula/policysim/internal/modules/policy"
)

// Config contains client configuration
type Config struct {
	// APIKey is the Anthropic API key. If empty, the SDK falls back to the
	// ANTHROPIC_API_KEY environment variable.
	APIKey string
	// Model is the model name; empty selects a default.
	Model string
}

// Client calls the Anthropic API. It implements agent.ExplanationService.
type Client struct {
	inner anthropic.Client
	model anthropic.Model
	log   zerolog.Logger
}

var _ agent.ExplanationService = (*Client)(nil)

// NewClient creates a new Anthropic API client
func NewClient(cfg Config, log zerolog.Logger) (*Client, error) {
	var opts []option.RequestOption
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}

	model := anthropic.Model(cfg.Model)
	if model == "" {
		model = anthropic.ModelClaudeSonnet4_20250514
	}

	return &Client{
		inner: anthropic.NewClient(opts...),
		model: model,
		log:   log.With().Str("client", "llm").Logger(),
	}, nil
}

const interpretSystemPrompt = `You translate transportation-policy questions into a JSON request.
Respond with a single JSON object, no prose, shaped as:
{"action": "analyze"|"compare"|"recommend",
 "policies": [{"kind": "...", "params": {"...": 0.0}}],
 "scenario_ids": ["..."],
 "target_metric": "...",
 "confidence": 0.0}
Policy kinds: congestion_pricing (price_per_entry, peak_multiplier), transit_subsidy (subsidy_percent),
fuel_tax (tax_percent), ev_incentive (purchase_subsidy, tax_reduction_percent),
parking_management (hourly_rate, max_hours).
Scenario ids: baseline, green_transport, equity_focused, balanced.
Metrics: overall_score, emissions_kg_day, user_cost_per_trip, equity_score, efficiency_score.
Use "analyze" with policies for what-if questions, "compare" with scenario_ids for ranking
questions, "recommend" with target_metric when asked for the best policy.`

// Interpret converts free text into a structured request. Malformed model
// output is surfaced as an error; validation happens downstream.
func (c *Client) Interpret(ctx context.Context, text string) (*policy.InterpretedRequest, error) {
	raw, err := c.complete(ctx, interpretSystemPrompt, text, 1024)
	if err != nil {
		return nil, fmt.Errorf("interpretation call: %w", err)
	}

	payload := extractJSON(raw)
	if payload == "" {
		return nil, fmt.Errorf("interpretation returned no JSON object")
	}

	var req policy.InterpretedRequest
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		return nil, fmt.Errorf("decode interpretation: %w", err)
	}

	c.log.Debug().
		Str("action", string(req.Action)).
		Float64("confidence", req.Confidence).
		Msg("Query interpreted")
	return &req, nil
}

const explainSystemPrompt = `You are a transportation-policy analyst. Explain the simulation
numbers you are given in two or three short paragraphs for a non-technical decision maker.
Never invent numbers that are not in the input.`

// ExplainAnalysis produces prose for a single-policy analysis
func (c *Client) ExplainAnalysis(ctx context.Context, result *agent.AnalysisResult) (string, error) {
	payload, err := json.Marshal(map[string]interface{}{
		"context":       result.Context,
		"policies":      result.Policies,
		"deltas":        result.Deltas,
		"overall_score": result.PolicyResult.OverallScore,
		"mode_share":    result.PolicyResult.ModeShare,
		"emissions":     result.PolicyResult.Emissions,
		"equity":        result.PolicyResult.Equity,
	})
	if err != nil {
		return "", err
	}
	return c.complete(ctx, explainSystemPrompt, string(payload), 1024)
}

// ExplainComparison produces prose for a multi-scenario comparison
func (c *Client) ExplainComparison(ctx context.Context, outcome *agent.ComparisonOutcome) (string, error) {
	payload, err := json.Marshal(map[string]interface{}{
		"context":        outcome.Context,
		"winners":        outcome.Comparison.Winners,
		"overall_winner": outcome.Comparison.OverallWinner,
		"rankings":       outcome.Comparison.Rankings,
	})
	if err != nil {
		return "", err
	}
	return c.complete(ctx, explainSystemPrompt, string(payload), 1024)
}

func (c *Client) complete(ctx context.Context, system, user string, maxTokens int64) (string, error) {
	resp, err := c.inner.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: system},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
		},
	})
	if err != nil {
		return "", err
	}

	var out strings.Builder
	for _, block := range resp.Content {
		if variant, ok := block.AsAny().(anthropic.TextBlock); ok {
			out.WriteString(variant.Text)
		}
	}
	return out.String(), nil
}

// extractJSON pulls the outermost JSON object out of a model reply, which may
// wrap it in prose or a code fence
func extractJSON(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}
