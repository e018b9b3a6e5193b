package gemini

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
	providerID     = "gemini"
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
)

// Provider implements the ai.Provider interface for Google's Gemini API.
type Provider struct {
	ai.VoiceCatalog
	apiKey  string
	baseURL string
	client  *http.Client
}

// New creates a new Gemini provider instance with default values from environment.
// Environment variables:
//   - GEMINI_API_KEY: API key for authentication
//   - GEMINI_API_BASE_URL: Base URL for API (optional, defaults to Google's API)
func New() *Provider {
	apiKey := os.Getenv("GEMINI_API_KEY")
	baseURL := os.Getenv("GEMINI_API_BASE_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Provider{
		VoiceCatalog: ai.VoiceCatalog{Voices: prebuiltVoices},
		apiKey:       apiKey,
		baseURL:      baseURL,
		client:       &http.Client{},
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

// Descriptor returns the static description of the Gemini backend.
func (p *Provider) Descriptor() ai.Descriptor {
	return descriptor
}

// SupportsCapability reports whether the Gemini backend implements cap.
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

// SendMessage implements the ai.Provider interface. It branches per
// capability into the matching generateContent request shape.
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
		observer.Trace(ctx, "Gemini provider preparing request",
			observability.String(observability.AttrProvider, providerID),
			observability.String(observability.AttrCapability, string(request.Capability)),
			observability.String(observability.AttrModel, model),
		)
	}

	if p.apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is not set")
	}

	geminiReq, err := p.buildRequest(request)
	if err != nil {
		return nil, err
	}
	if geminiReq == nil {
		return &ai.Response{
			Model: model,
			Error: fmt.Sprintf("gemini does not support capability %q", request.Capability),
		}, nil
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", p.baseURL, model)

	httpResponse, resp, err := utils.DoPostSync[generateContentResponse](
		ctx,
		p.client,
		url,
		"", // Gemini authenticates via its own header, not Bearer
		geminiReq,
		p.authOption(),
	)
	if err != nil {
		if observer != nil {
			observer.Trace(ctx, "HTTP request failed", observability.Error(err))
		}
		return nil, classifyError(err)
	}
	if resp == nil {
		return nil, fmt.Errorf("empty response from Gemini API: %s", httpResponse.Status)
	}

	result, err := geminiToGeneric(*resp, request)
	if err != nil {
		return nil, err
	}
	result.Model = model
	return result, nil
}

// buildRequest produces the wire request for one capability, or nil when the
// capability is outside the declared set.
func (p *Provider) buildRequest(request ai.Request) (*generateContentRequest, error) {
	switch request.Capability {
	case ai.CapabilityTextGeneration:
		return p.buildTextRequest(request), nil
	case ai.CapabilityImageGeneration:
		req := p.buildTextRequest(request)
		req.GenerationConfig = &generationConfig{ResponseModalities: []string{"TEXT", "IMAGE"}}
		return req, nil
	case ai.CapabilityImageAnalysis:
		return p.buildAttachmentRequest(request, "Describe the attached image in detail.")
	case ai.CapabilityAudioGeneration:
		return p.buildSpeechRequest(request)
	case ai.CapabilityAudioTranscription:
		return p.buildAttachmentRequest(request, "Transcribe the attached audio verbatim.")
	default:
		return nil, nil
	}
}

// buildTextRequest maps the envelope onto the chat-style contents array:
// instructions become the system instruction, history becomes alternating
// user/model turns, and the context closes as the live user message.
func (p *Provider) buildTextRequest(request ai.Request) *generateContentRequest {
	turns, stripped := p.ProcessHistory(request.Envelope)

	req := &generateContentRequest{}
	if instructions := stripped.FlattenInstructions(); instructions != "" {
		req.SystemInstruction = &systemInstruction{Parts: []part{{Text: instructions}}}
	}

	req.Contents = buildContents(turns)

	if stripped.Context != "" {
		req.Contents = append(req.Contents, content{
			Role:  "user",
			Parts: []part{{Text: stripped.Context}},
		})
	}
	return req
}

// buildAttachmentRequest produces the single-turn multimodal request used by
// image analysis and transcription: prompt text plus the inline payload.
func (p *Provider) buildAttachmentRequest(request ai.Request, fallbackPrompt string) (*generateContentRequest, error) {
	attachment := requestAttachment(request)
	if attachment == nil {
		return nil, &ai.UnsupportedInputShapeError{
			Provider:   providerID,
			Capability: request.Capability,
			Reason:     "no attachment supplied",
		}
	}

	prompt := request.Envelope.SystemText()
	if prompt == "" {
		prompt = fallbackPrompt
	}

	return &generateContentRequest{
		Contents: []content{{
			Role: "user",
			Parts: []part{
				{Text: prompt},
				{InlineData: &inlineData{MimeType: attachment.MimeType, Data: attachment.Data}},
			},
		}},
	}, nil
}

// buildSpeechRequest produces the TTS request: text to speak, AUDIO output
// modality, and the prebuilt voice selection.
func (p *Provider) buildSpeechRequest(request ai.Request) (*generateContentRequest, error) {
	text := request.Envelope.Context
	if text == "" {
		return nil, &ai.UnsupportedInputShapeError{
			Provider:   providerID,
			Capability: ai.CapabilityAudioGeneration,
			Reason:     "no text to synthesize",
		}
	}

	cfg := &generationConfig{ResponseModalities: []string{"AUDIO"}}
	if request.Audio != nil {
		speech := &speechConfig{LanguageCode: request.Audio.Language}
		if request.Audio.Voice != "" {
			if !p.IsValidVoice(request.Audio.Voice) {
				return nil, &ai.UnsupportedInputShapeError{
					Provider:   providerID,
					Capability: ai.CapabilityAudioGeneration,
					Reason:     fmt.Sprintf("unknown voice %q", request.Audio.Voice),
				}
			}
			speech.VoiceConfig = &voiceConfig{
				PrebuiltVoiceConfig: &prebuiltVoiceConfig{VoiceName: request.Audio.Voice},
			}
		}
		cfg.SpeechConfig = speech
	}

	return &generateContentRequest{
		Contents:         []content{{Role: "user", Parts: []part{{Text: text}}}},
		GenerationConfig: cfg,
	}, nil
}

// FetchModels refreshes the model list from Gemini's model-list endpoint,
// keeping only models that serve generateContent.
func (p *Provider) FetchModels(ctx context.Context) ([]string, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is not set")
	}

	_, resp, err := utils.DoGetSync[listModelsResponse](
		ctx,
		p.client,
		p.baseURL+"/models",
		"",
		p.authOption(),
	)
	if err != nil {
		return nil, classifyError(err)
	}

	var models []string
	for _, m := range resp.Models {
		if !supportsGenerateContent(m) {
			continue
		}
		models = append(models, strings.TrimPrefix(m.Name, "models/"))
	}
	return models, nil
}

func supportsGenerateContent(m modelInfo) bool {
	for _, method := range m.SupportedGenerationMethods {
		if method == "generateContent" {
			return true
		}
	}
	return false
}

// requestAttachment returns the request's attachment, preferring the
// top-level field over the one embedded in the envelope.
func requestAttachment(request ai.Request) *ai.Attachment {
	if request.Attachment != nil {
		return request.Attachment
	}
	return request.Envelope.Attachment
}

// classifyError maps transport failures onto the shared taxonomy: rate
// limiting and 5xx become TransientBackendError so the dispatcher rotates
// credentials; everything else propagates as-is.
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
