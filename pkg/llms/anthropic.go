package llms

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/XiaoConstantine/evoidea-go/pkg/core"
	"github.com/XiaoConstantine/evoidea-go/pkg/errors"
	"github.com/XiaoConstantine/evoidea-go/pkg/idea"
	"github.com/XiaoConstantine/evoidea-go/pkg/logging"
	"github.com/XiaoConstantine/evoidea-go/pkg/utils"
)

const defaultAnthropicModel = anthropic.ModelClaudeSonnet4_5_20250929

// maxResponseTokens bounds a single completion. A full generate batch of
// a dozen ideas fits comfortably.
const maxResponseTokens = 4096

// AnthropicProvider implements core.Provider on top of the Anthropic
// Messages API.
type AnthropicProvider struct {
	client *anthropic.Client
	model  anthropic.Model
}

// NewAnthropicProvider creates a provider for the given model. An empty
// model falls back to the default.
func NewAnthropicProvider(apiKey, model string) (*AnthropicProvider, error) {
	if apiKey == "" {
		return nil, errors.New(errors.InvalidInput, "API key is required")
	}
	client := anthropic.NewClient(
		option.WithAPIKey(apiKey),
	)
	m := defaultAnthropicModel
	if model != "" {
		m = anthropic.Model(model)
	}
	return &AnthropicProvider{client: &client, model: m}, nil
}

func (a *AnthropicProvider) Name() string { return "anthropic" }

// GenerateJSON renders the task into a strict-JSON prompt, runs one
// completion, and parses the result.
func (a *AnthropicProvider) GenerateJSON(ctx context.Context, task core.Task) (map[string]interface{}, error) {
	logger := logging.GetLogger()
	prompt := buildPrompt(task)

	message, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model: a.model,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(
				anthropic.NewTextBlock(prompt),
			),
		},
		MaxTokens: maxResponseTokens,
	})
	if err != nil {
		var apiErr *anthropic.Error
		if stderrors.As(err, &apiErr) {
			logger.Error(ctx, "Anthropic API error: status code %d", apiErr.StatusCode)
		}
		return nil, errors.WithFields(
			errors.Wrap(err, errors.LLMGenerationFailed, "failed to generate response"),
			errors.Fields{"model": string(a.model), "task": task.Kind()})
	}
	if message == nil || len(message.Content) == 0 {
		return nil, errors.New(errors.LLMGenerationFailed, "received empty content from Anthropic API")
	}

	var responseText string
	if block := message.Content[0]; block.Type == "text" {
		responseText = block.Text
	}

	logger.Debug(ctx, "Anthropic response: %d prompt tokens, %d completion tokens",
		message.Usage.InputTokens, message.Usage.OutputTokens)

	return utils.ParseJSONResponse(responseText)
}

func facetsBlock(f idea.Facets) string {
	return fmt.Sprintf(
		"audience: %s\njtbd: %s\ndifferentiator: %s\nmonetization: %s\ndistribution: %s\nrisks: %s",
		f.Audience, f.JTBD, f.Differentiator, f.Monetization, f.Distribution, f.Risks)
}

// buildPrompt renders a task into a prompt that demands raw JSON in the
// task's response schema.
func buildPrompt(task core.Task) string {
	var b strings.Builder
	b.WriteString("You are part of an automated idea evolution pipeline. ")
	b.WriteString("Respond with a single raw JSON object, no prose and no markdown fences.\n\n")

	switch t := task.(type) {
	case core.GenerateTask:
		fmt.Fprintf(&b, "Generate %d distinct product ideas for this brief:\n%s\n\n", t.Count, t.Prompt)
		b.WriteString(`Respond as {"ideas": [{"title": string, "summary": string, "facets": {"audience", "jtbd", "differentiator", "monetization", "distribution", "risks"}}]}.`)

	case core.CriticTask:
		b.WriteString("Score each idea below on feasibility, speed_to_value, differentiation, market_size, distribution, moats, risk, clarity, each 0-10. Risk is raw exposure: higher means riskier.\n\n")
		for _, item := range t.Ideas {
			fmt.Fprintf(&b, "id: %s\ntitle: %s\nsummary: %s\n\n", item.ID, item.Title, item.Summary)
		}
		b.WriteString(`Respond as {"patches": [{"id": string, "scores": {<criterion>: number}, "overall_score": number, "judge_notes": string}]}.`)

	case core.MergeTask:
		b.WriteString("Merge these two ideas into one stronger idea.\n\n")
		fmt.Fprintf(&b, "Idea A:\ntitle: %s\nsummary: %s\n%s\n\n", t.IdeaA.Title, t.IdeaA.Summary, facetsBlock(t.IdeaA.Facets))
		fmt.Fprintf(&b, "Idea B:\ntitle: %s\nsummary: %s\n%s\n\n", t.IdeaB.Title, t.IdeaB.Summary, facetsBlock(t.IdeaB.Facets))
		b.WriteString(`Respond as {"idea": {"title": string, "summary": string, "facets": {...}}}.`)

	case core.MutateTask:
		fmt.Fprintf(&b, "Produce a variation of this idea by changing its %s facet.\n\n", t.MutationType)
		fmt.Fprintf(&b, "title: %s\nsummary: %s\n%s\n\n", t.Idea.Title, t.Idea.Summary, facetsBlock(t.Idea.Facets))
		b.WriteString(`Respond as {"mutation_type": string, "idea": {"title": string, "summary": string, "facets": {...}}}.`)

	case core.RefineTask:
		b.WriteString("Improve this idea based on the judge notes. Keep what works, fix what the notes criticize.\n\n")
		fmt.Fprintf(&b, "id: %s\ntitle: %s\nsummary: %s\n%s\n\njudge notes: %s\n\n",
			t.IdeaID, t.Title, t.Summary, facetsBlock(t.Facets), t.JudgeNotes)
		b.WriteString(`Respond as {"patch": {"id": string, "title": string, "summary": string, "facets": {...}, "changes": [string]}}.`)
	}
	return b.String()
}
