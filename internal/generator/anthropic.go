package generator

import (
	"context"
	"fmt"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/Vi-N-Tran/synthetic-data-generation-web/internal/models"
)

const (
	DefaultModel     = "claude-sonnet-4-5-20250929"
	DefaultMaxTokens = 4096
)

const systemPrompt = `You generate realistic browser interaction trajectories as JSON training data.
Return ONLY valid JSON: no markdown, no code fences, no explanations.`

// AnthropicGenerator asks the Messages API for a skeleton.
type AnthropicGenerator struct {
	client      sdk.Client
	model       string
	maxTokens   int64
	temperature float64
}

// AnthropicOptions configures NewAnthropicGenerator.
type AnthropicOptions struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float64
}

func NewAnthropicGenerator(opts AnthropicOptions) *AnthropicGenerator {
	reqOpts := []option.RequestOption{option.WithAPIKey(opts.APIKey)}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}
	g := &AnthropicGenerator{
		client:      sdk.NewClient(reqOpts...),
		model:       opts.Model,
		maxTokens:   int64(opts.MaxTokens),
		temperature: opts.Temperature,
	}
	if g.model == "" {
		g.model = DefaultModel
	}
	if g.maxTokens <= 0 {
		g.maxTokens = DefaultMaxTokens
	}
	return g
}

func (g *AnthropicGenerator) Name() string { return "anthropic" }

func (g *AnthropicGenerator) GenerateSkeleton(ctx context.Context, req SkeletonRequest) (*Skeleton, error) {
	msg, err := g.client.Messages.New(ctx, sdk.MessageNewParams{
		Model:       sdk.Model(g.model),
		MaxTokens:   g.maxTokens,
		System:      []sdk.TextBlockParam{{Text: systemPrompt}},
		Messages:    []sdk.MessageParam{sdk.NewUserMessage(sdk.NewTextBlock(buildPrompt(req)))},
		Temperature: sdk.Float(g.temperature),
	})
	if err != nil {
		return nil, eris.Wrap(err, "anthropic: create message")
	}

	zap.L().Debug("skeleton generated",
		zap.String("model", string(msg.Model)),
		zap.String("workflow_type", string(req.WorkflowType)),
		zap.Int64("input_tokens", msg.Usage.InputTokens),
		zap.Int64("output_tokens", msg.Usage.OutputTokens),
	)

	var text strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	sk, err := ParseSkeleton(text.String())
	if err != nil {
		return nil, err
	}
	if err := Normalize(sk, req); err != nil {
		return nil, err
	}
	return sk, nil
}

func buildPrompt(req SkeletonRequest) string {
	types := make([]string, len(models.AllActionTypes))
	for i, t := range models.AllActionTypes {
		types[i] = string(t)
	}
	domain := req.Domain
	if domain == "" {
		domain = "example.com"
	}

	return fmt.Sprintf(`Generate a realistic browser interaction trajectory for a %[1]s user on a %[2]s website.

Goal: %[3]s
Domain: %[4]s
Number of actions: exactly %[5]d

Return a JSON object:
{"domain": string, "goal": %[3]q, "actions": [ ... ]}

Each action MUST have:
- "action_type": one of %[6]s
- "url": absolute http(s) URL of the page the action happens on
- "page_title": string

Each action SHOULD have:
- "element_type": HTML element (button, input, a, select, form, ...)
- "element_selector": CSS selector of the target, or "element_id" / "element_text"
- "user_intent": semantic label such as "search", "add_to_cart", "submit_form"
- "is_intentional": boolean

Action-specific fields:
- "type": "value" (the text typed) and "field_type"
- "select": "option_index" (integer >= 0)
- "click" / "scroll": optional "coordinates" {"x": int, "y": int}
- "drag_drop": "coordinates" {"x1": int, "y1": int, "x2": int, "y2": int}
- "wait": "wait" duration such as "1.5s"

The final action's "user_intent" should be %[3]q when the goal is achieved.
Match the pace and exploration habits of a %[1]s user.`,
		req.UserType, req.WorkflowType, req.Goal, domain, req.Length, strings.Join(types, ", "))
}
