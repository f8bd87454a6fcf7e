package providers

import (
	"context"
	"errors"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/swanstudios/plangate/internal/domain"
)

// Default models for the OpenAI-compatible adapters.
const (
	OpenAIDefaultModel = "gpt-4o"

	VeniceDefaultModel   = "llama-3.3-70b"
	VeniceDefaultBaseURL = "https://api.venice.ai/api/v1"
)

// openAICompatAdapter serves any OpenAI-compatible chat completion
// API. Both the OpenAI adapter and the Venice adapter are instances of
// it; only the name, base URL, and default model differ.
type openAICompatAdapter struct {
	name       string
	model      string
	configured bool
	client     *openai.Client
	pacer      *rate.Limiter
	cl         classifier
}

// NewOpenAI creates the adapter for OpenAI's API.
func NewOpenAI(creds Credentials) *openAICompatAdapter {
	return newOpenAICompat("openai", creds, "", OpenAIDefaultModel)
}

// NewVenice creates the adapter for Venice's OpenAI-compatible API.
func NewVenice(creds Credentials) *openAICompatAdapter {
	return newOpenAICompat("venice", creds, VeniceDefaultBaseURL, VeniceDefaultModel)
}

func newOpenAICompat(name string, creds Credentials, defaultBaseURL, defaultModel string) *openAICompatAdapter {
	model := creds.Model
	if model == "" {
		model = defaultModel
	}

	a := &openAICompatAdapter{
		name:  name,
		model: model,
		pacer: newPacer(),
		cl:    classifier{provider: name},
	}
	if creds.APIKey == "" {
		return a
	}

	clientConfig := openai.DefaultConfig(creds.APIKey)
	baseURL := creds.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if baseURL != "" {
		clientConfig.BaseURL = baseURL
	}

	a.client = openai.NewClientWithConfig(clientConfig)
	a.configured = true
	return a
}

func (a *openAICompatAdapter) Name() string       { return a.name }
func (a *openAICompatAdapter) IsConfigured() bool { return a.configured }

// GenerateDraft performs one chat completion call and normalizes the
// response.
func (a *openAICompatAdapter) GenerateDraft(ctx context.Context, gc *domain.GenerationContext) (*domain.ProviderResult, *domain.ProviderError) {
	if perr := pace(ctx, a.pacer, a.cl); perr != nil {
		return nil, perr
	}

	system, user := renderPrompt(gc)
	model := modelFor(gc, a.model)

	req := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		MaxTokens:   maxTokensFor(gc),
		Temperature: defaultTemperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	start := time.Now()
	resp, err := a.client.CreateChatCompletion(ctx, req)
	latency := time.Since(start)
	if err != nil {
		return nil, a.handleError(err)
	}

	if len(resp.Choices) == 0 {
		return nil, a.cl.invalidResponse("response contained no choices")
	}
	content := resp.Choices[0].Message.Content
	if content == "" {
		return nil, a.cl.invalidResponse("response contained no text")
	}

	inTokens := resp.Usage.PromptTokens
	if inTokens == 0 {
		inTokens = estimateTokens(system + user)
	}
	outTokens := resp.Usage.CompletionTokens
	if outTokens == 0 {
		outTokens = estimateTokens(content)
	}

	return &domain.ProviderResult{
		Provider:     a.name,
		Model:        model,
		RawText:      content,
		Latency:      latency,
		FinishReason: string(resp.Choices[0].FinishReason),
		TokenUsage: &domain.TokenUsage{
			InputTokens:  inTokens,
			OutputTokens: outTokens,
			TotalTokens:  inTokens + outTokens,
		},
	}, nil
}

// handleError maps go-openai errors onto the normalized taxonomy.
func (a *openAICompatAdapter) handleError(err error) *domain.ProviderError {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		message := apiErr.Message
		if message == "" {
			message = "unknown provider error"
		}
		return a.cl.classifyHTTP(apiErr.HTTPStatusCode, message)
	}
	return a.cl.classifyTransport(err)
}
