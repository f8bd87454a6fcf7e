package providers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"golang.org/x/time/rate"

	"github.com/swanstudios/plangate/internal/domain"
)

// AnthropicDefaultModel is the model used when none is configured.
const AnthropicDefaultModel = "claude-3-5-sonnet-20241022"

// anthropicAdapter serves Anthropic's Messages API.
type anthropicAdapter struct {
	model      string
	configured bool
	client     anthropic.Client
	pacer      *rate.Limiter
	cl         classifier
}

// NewAnthropic creates the adapter for Anthropic's API.
func NewAnthropic(creds Credentials) *anthropicAdapter {
	model := creds.Model
	if model == "" {
		model = AnthropicDefaultModel
	}

	a := &anthropicAdapter{
		model: model,
		pacer: newPacer(),
		cl:    classifier{provider: "anthropic"},
	}
	if creds.APIKey == "" {
		return a
	}

	opts := []option.RequestOption{option.WithAPIKey(creds.APIKey)}
	if creds.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(creds.BaseURL))
	}

	a.client = anthropic.NewClient(opts...)
	a.configured = true
	return a
}

func (a *anthropicAdapter) Name() string       { return "anthropic" }
func (a *anthropicAdapter) IsConfigured() bool { return a.configured }

// GenerateDraft performs one Messages API call and normalizes the
// response.
func (a *anthropicAdapter) GenerateDraft(ctx context.Context, gc *domain.GenerationContext) (*domain.ProviderResult, *domain.ProviderError) {
	if perr := pace(ctx, a.pacer, a.cl); perr != nil {
		return nil, perr
	}

	system, user := renderPrompt(gc)
	model := modelFor(gc, a.model)

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: int64(maxTokensFor(gc)),
		System:    []anthropic.TextBlockParam{{Text: system}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
		},
		Temperature: anthropic.Float(defaultTemperature),
	}

	start := time.Now()
	message, err := a.client.Messages.New(ctx, params)
	latency := time.Since(start)
	if err != nil {
		return nil, a.handleError(err)
	}

	var text strings.Builder
	for _, block := range message.Content {
		switch content := block.AsAny().(type) {
		case anthropic.TextBlock:
			text.WriteString(content.Text)
		}
	}
	content := text.String()
	if content == "" {
		return nil, a.cl.invalidResponse("response contained no text")
	}

	inTokens := int(message.Usage.InputTokens)
	if inTokens == 0 {
		inTokens = estimateTokens(system + user)
	}
	outTokens := int(message.Usage.OutputTokens)
	if outTokens == 0 {
		outTokens = estimateTokens(content)
	}

	return &domain.ProviderResult{
		Provider:     "anthropic",
		Model:        model,
		RawText:      content,
		Latency:      latency,
		FinishReason: string(message.StopReason),
		TokenUsage: &domain.TokenUsage{
			InputTokens:  inTokens,
			OutputTokens: outTokens,
			TotalTokens:  inTokens + outTokens,
		},
	}, nil
}

// handleError maps Anthropic SDK errors onto the normalized taxonomy.
func (a *anthropicAdapter) handleError(err error) *domain.ProviderError {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return a.cl.classifyHTTP(apiErr.StatusCode, apiErr.Error())
	}
	return a.cl.classifyTransport(err)
}
