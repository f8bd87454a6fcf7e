package providers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/api/googleapi"
	"google.golang.org/genai"

	"github.com/swanstudios/plangate/internal/domain"
)

// GeminiDefaultModel is the model used when none is configured.
const GeminiDefaultModel = "gemini-1.5-flash"

// geminiAdapter serves Google's Gemini API.
type geminiAdapter struct {
	model      string
	configured bool
	client     *genai.Client
	pacer      *rate.Limiter
	cl         classifier
}

// NewGemini creates the adapter for Google's Gemini API. An empty API
// key yields an unconfigured adapter and no error; the router skips
// unconfigured adapters.
func NewGemini(ctx context.Context, creds Credentials) (*geminiAdapter, error) {
	model := creds.Model
	if model == "" {
		model = GeminiDefaultModel
	}

	a := &geminiAdapter{
		model: model,
		pacer: newPacer(),
		cl:    classifier{provider: "gemini"},
	}
	if creds.APIKey == "" {
		return a, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  creds.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}

	a.client = client
	a.configured = true
	return a, nil
}

func (a *geminiAdapter) Name() string       { return "gemini" }
func (a *geminiAdapter) IsConfigured() bool { return a.configured }

// GenerateDraft performs one GenerateContent call and normalizes the
// response. Gemini has no separate system role, so the system message
// is prepended to the user prompt.
func (a *geminiAdapter) GenerateDraft(ctx context.Context, gc *domain.GenerationContext) (*domain.ProviderResult, *domain.ProviderError) {
	if perr := pace(ctx, a.pacer, a.cl); perr != nil {
		return nil, perr
	}

	system, user := renderPrompt(gc)
	model := modelFor(gc, a.model)
	combined := fmt.Sprintf("System: %s\n\nUser: %s", system, user)

	contents := []*genai.Content{
		genai.NewContentFromText(combined, genai.RoleUser),
	}
	config := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(float32(defaultTemperature)),
		MaxOutputTokens:  int32(maxTokensFor(gc)),
		ResponseMIMEType: "application/json",
	}

	start := time.Now()
	resp, err := a.client.Models.GenerateContent(ctx, model, contents, config)
	latency := time.Since(start)
	if err != nil {
		return nil, a.handleError(err)
	}

	content := resp.Text()
	if content == "" {
		return nil, a.cl.invalidResponse("response contained no text")
	}

	inTokens, outTokens := 0, 0
	if usage := resp.UsageMetadata; usage != nil {
		inTokens = int(usage.PromptTokenCount)
		outTokens = int(usage.CandidatesTokenCount)
	}
	if inTokens == 0 {
		inTokens = estimateTokens(combined)
	}
	if outTokens == 0 {
		outTokens = estimateTokens(content)
	}

	return &domain.ProviderResult{
		Provider: "gemini",
		Model:    model,
		RawText:  content,
		Latency:  latency,
		TokenUsage: &domain.TokenUsage{
			InputTokens:  inTokens,
			OutputTokens: outTokens,
			TotalTokens:  inTokens + outTokens,
		},
	}, nil
}

// handleError maps Google API errors onto the normalized taxonomy.
func (a *geminiAdapter) handleError(err error) *domain.ProviderError {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		message := apiErr.Message
		if message == "" && len(apiErr.Errors) > 0 {
			message = apiErr.Errors[0].Message
		}
		if containsSafetyBlock(apiErr) {
			return domain.NewProviderError("gemini", domain.ErrContentFilter, apiErr.Code,
				"request blocked by provider safety filters")
		}
		return a.cl.classifyHTTP(apiErr.Code, message)
	}
	return a.cl.classifyTransport(err)
}

// containsSafetyBlock reports whether a Google API error is a content
// policy rejection rather than a transport failure.
func containsSafetyBlock(apiErr *googleapi.Error) bool {
	if looksLikeContentPolicy(apiErr.Message) {
		return true
	}
	for _, e := range apiErr.Errors {
		if e.Reason == "SAFETY" || e.Reason == "BLOCKED" {
			return true
		}
	}
	return false
}
