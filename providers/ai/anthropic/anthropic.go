package anthropic

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/leofalp/aibridge/internal/utils"
	"github.com/leofalp/aibridge/providers/ai"
	"github.com/leofalp/aibridge/providers/observability"
)

const (
	providerID       = "anthropic"
	defaultBaseURL   = "https://api.anthropic.com/v1"
	apiVersion       = "2023-06-01"
	defaultMaxTokens = 4096
)

// Known Anthropic models.
const (
	ModelSonnet = "claude-sonnet-4-5"
	ModelOpus   = "claude-opus-4-1"
	ModelHaiku  = "claude-haiku-4-5"
)

var descriptor = ai.Descriptor{
	ID: providerID,
	Capabilities: []ai.Capability{
		ai.CapabilityTextGeneration,
		ai.CapabilityImageAnalysis,
	},
	DefaultModels: map[ai.Capability]string{
		ai.CapabilityTextGeneration: ModelSonnet,
		ai.CapabilityImageAnalysis:  ModelSonnet,
	},
	Models: map[ai.Capability][]string{
		ai.CapabilityTextGeneration: {ModelOpus, ModelSonnet, ModelHaiku},
		ai.CapabilityImageAnalysis:  {ModelOpus, ModelSonnet, ModelHaiku},
	},
	ModelPrefixes: []string{"claude-"},
	RateLimits: map[ai.Capability]ai.RateLimit{
		ai.CapabilityTextGeneration: {RequestsPerMinute: 50, Burst: 10},
		ai.CapabilityImageAnalysis:  {RequestsPerMinute: 50, Burst: 10},
	},
	CredentialKeys: []string{"ANTHROPIC_API_KEY"},
	AuthHeader:     "x-api-key",
}

// Provider implements the ai.Provider interface for Anthropic's Messages API.
type Provider struct {
	ai.VoiceCatalog // zero value: no audio support, neutral answers
	apiKey          string
	baseURL         string
	client          *http.Client
}

// New creates a new Anthropic provider instance with default values from environment.
// Environment variables:
//   - ANTHROPIC_API_KEY: API key for authentication
//   - ANTHROPIC_API_BASE_URL: Base URL for API (optional, defaults to Anthropic's API)
func New() *Provider {
	apiKey := os.Getenv("ANTHROPIC_API_KEY")
	baseURL := os.Getenv("ANTHROPIC_API_BASE_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Provider{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  &http.Client{},
	}
}

// WithAPIKey returns a copy of the provider authenticating with apiKey.
// The receiver is unchanged, so a shared instance is safe to use while the
// dispatcher rotates credentials.
func (p *Provider) WithAPIKey(apiKey string) ai.Provider {
	clone := *p
	clone.apiKey = apiKey
	return &clone
}

// WithBaseURL returns a copy of the provider targeting baseURL.
func (p *Provider) WithBaseURL(baseURL string) ai.Provider {
	clone := *p
	clone.baseURL = baseURL
	return &clone
}

// WithHTTPClient returns a copy of the provider using httpClient.
func (p *Provider) WithHTTPClient(httpClient *http.Client) ai.Provider {
	clone := *p
	clone.client = httpClient
	return &clone
}

// authOption builds the credential header from the descriptor's auth scheme.
func (p *Provider) authOption() utils.HeaderOption {
	name, value := descriptor.AuthHeaderValue(p.apiKey)
	return utils.HeaderOption{Key: name, Value: value}
}

// Descriptor returns the static description of the Anthropic backend.
func (p *Provider) Descriptor() ai.Descriptor {
	return descriptor
}

// SupportsCapability reports whether the Anthropic backend implements cap.
func (p *Provider) SupportsCapability(cap ai.Capability) bool {
	return descriptor.Supports(cap)
}

// DefaultModel returns the default model for cap, if one is configured.
func (p *Provider) DefaultModel(cap ai.Capability) (string, bool) {
	return descriptor.DefaultModel(cap)
}

// ProcessHistory extracts the conversation turns from the envelope once and
// returns a copy guaranteed not to contain them.
func (p *Provider) ProcessHistory(envelope ai.Envelope) ([]ai.Turn, ai.Envelope) {
	return envelope.ExtractHistory()
}

// SendMessage implements the ai.Provider interface.
func (p *Provider) SendMessage(ctx context.Context, request ai.Request) (*ai.Response, error) {
	span := observability.SpanFromContext(ctx)
	observer := observability.ObserverFromContext(ctx)

	model := request.Model
	if model == "" {
		model, _ = descriptor.DefaultModel(request.Capability)
	}

	if span != nil {
		span.SetAttributes(
			observability.String(observability.AttrProvider, providerID),
			observability.String(observability.AttrEndpoint, p.baseURL),
			observability.String(observability.AttrModel, model),
		)
	}
	if observer != nil {
		observer.Trace(ctx, "Anthropic provider preparing request",
			observability.String(observability.AttrProvider, providerID),
			observability.String(observability.AttrCapability, string(request.Capability)),
			observability.String(observability.AttrModel, model),
		)
	}

	if p.apiKey == "" {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY is not set")
	}

	switch request.Capability {
	case ai.CapabilityTextGeneration, ai.CapabilityImageAnalysis:
	default:
		return &ai.Response{
			Model: model,
			Error: fmt.Sprintf("anthropic does not support capability %q", request.Capability),
		}, nil
	}

	wireReq, err := p.buildRequest(request, model)
	if err != nil {
		return nil, err
	}

	httpResponse, resp, err := utils.DoPostSync[messagesResponse](
		ctx,
		p.client,
		p.baseURL+"/messages",
		"", // Anthropic authenticates via its own headers, not Bearer
		wireReq,
		p.authOption(),
		utils.HeaderOption{Key: "anthropic-version", Value: apiVersion},
	)
	if err != nil {
		if observer != nil {
			observer.Trace(ctx, "HTTP request failed", observability.Error(err))
		}
		return nil, classifyError(err)
	}
	if resp == nil {
		return nil, fmt.Errorf("empty response from Anthropic API: %s", httpResponse.Status)
	}
	if resp.Error != nil {
		return &ai.Response{Model: model, Error: resp.Error.Message}, nil
	}

	var textParts []string
	for _, block := range resp.Content {
		if block.Type == "text" && block.Text != "" {
			textParts = append(textParts, block.Text)
		}
	}

	return &ai.Response{
		Text:  strings.Join(textParts, "\n"),
		Seed:  resp.ID,
		Model: model,
	}, nil
}

// buildRequest maps the envelope onto the Messages wire shape: context and
// instructions become the system field, history becomes alternating messages,
// and an attachment becomes an inline base64 image block.
func (p *Provider) buildRequest(request ai.Request, model string) (*messagesRequest, error) {
	turns, stripped := p.ProcessHistory(request.Envelope)

	wireReq := &messagesRequest{
		Model:     model,
		MaxTokens: defaultMaxTokens,
		System:    stripped.FlattenInstructions(),
	}

	for _, turn := range turns {
		role := "user"
		if turn.Role == ai.RoleAssistant {
			role = "assistant"
		}
		wireReq.Messages = append(wireReq.Messages, message{
			Role:    role,
			Content: []contentBlock{{Type: "text", Text: turn.Content}},
		})
	}

	user := message{Role: "user"}
	if stripped.Context != "" {
		user.Content = append(user.Content, contentBlock{Type: "text", Text: stripped.Context})
	}

	if request.Capability == ai.CapabilityImageAnalysis {
		attachment := request.Attachment
		if attachment == nil {
			attachment = stripped.Attachment
		}
		if attachment == nil {
			return nil, &ai.UnsupportedInputShapeError{
				Provider:   providerID,
				Capability: request.Capability,
				Reason:     "no attachment supplied",
			}
		}
		if len(user.Content) == 0 {
			user.Content = append(user.Content, contentBlock{Type: "text", Text: "Describe the attached image in detail."})
		}
		user.Content = append(user.Content, contentBlock{
			Type: "image",
			Source: &imageSource{
				Type:      "base64",
				MediaType: attachment.MimeType,
				Data:      attachment.Data,
			},
		})
	}

	if len(user.Content) > 0 {
		wireReq.Messages = append(wireReq.Messages, user)
	}

	if len(wireReq.Messages) == 0 {
		return nil, &ai.UnsupportedInputShapeError{
			Provider:   providerID,
			Capability: request.Capability,
			Reason:     "empty envelope",
		}
	}
	return wireReq, nil
}

// FetchModels refreshes the model list from the /models endpoint.
func (p *Provider) FetchModels(ctx context.Context) ([]string, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY is not set")
	}

	_, resp, err := utils.DoGetSync[listModelsResponse](
		ctx,
		p.client,
		p.baseURL+"/models",
		"",
		p.authOption(),
		utils.HeaderOption{Key: "anthropic-version", Value: apiVersion},
	)
	if err != nil {
		return nil, classifyError(err)
	}

	models := make([]string, 0, len(resp.Data))
	for _, m := range resp.Data {
		models = append(models, m.ID)
	}
	return models, nil
}

// CompareModels ranks Anthropic models: newer generations first, then
// sonnet ahead of opus ahead of haiku (balanced tier preferred for
// interactive use). Ties break alphabetically.
func (p *Provider) CompareModels(a, b string) int {
	sa, sb := modelScore(a), modelScore(b)
	if sa != sb {
		return sb - sa
	}
	switch {
	case a == b:
		return 0
	case a < b:
		return -1
	default:
		return 1
	}
}

func modelScore(model string) int {
	score := 0
	switch {
	case strings.Contains(model, "-4-5"):
		score += 300
	case strings.Contains(model, "-4-1"):
		score += 250
	case strings.Contains(model, "-4-"), strings.HasSuffix(model, "-4"):
		score += 200
	case strings.Contains(model, "-3-7"):
		score += 150
	case strings.Contains(model, "-3-5"):
		score += 100
	}
	switch {
	case strings.Contains(model, "sonnet"):
		score += 30
	case strings.Contains(model, "opus"):
		score += 20
	case strings.Contains(model, "haiku"):
		score += 10
	}
	return score
}

// classifyError maps transport failures onto the shared taxonomy. Anthropic
// signals overload with 529 in addition to the usual 429/5xx.
func classifyError(err error) error {
	var httpErr *utils.HTTPStatusError
	if !errors.As(err, &httpErr) {
		return err
	}
	if ai.IsTransientStatus(httpErr.StatusCode) {
		message := gjson.Get(httpErr.Body, "error.message").String()
		if message == "" {
			message = utils.TruncateStringDefault(httpErr.Body)
		}
		return &ai.TransientBackendError{
			Provider:   providerID,
			StatusCode: httpErr.StatusCode,
			Message:    message,
		}
	}
	return err
}
