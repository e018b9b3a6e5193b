package openai

import (
	"context"
	"encoding/base64"
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
	providerID     = "openai"
	defaultBaseURL = "https://api.openai.com/v1"
)

// Provider implements the ai.Provider interface for OpenAI's API.
type Provider struct {
	ai.VoiceCatalog
	apiKey  string
	baseURL string
	client  *http.Client
}

// New creates a new OpenAI provider instance with default values from environment.
// Environment variables:
//   - OPENAI_API_KEY: API key for authentication
//   - OPENAI_API_BASE_URL: Base URL for API (optional, defaults to OpenAI's API)
func New() *Provider {
	apiKey := os.Getenv("OPENAI_API_KEY")
	baseURL := os.Getenv("OPENAI_API_BASE_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Provider{
		VoiceCatalog: ai.VoiceCatalog{Voices: builtinVoices},
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

// Descriptor returns the static description of the OpenAI backend.
func (p *Provider) Descriptor() ai.Descriptor {
	return descriptor
}

// SupportsCapability reports whether the OpenAI backend implements cap.
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

// SendMessage implements the ai.Provider interface. Text, vision, and image
// generation go through the Responses endpoint; audio capabilities use their
// dedicated endpoints.
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
		observer.Trace(ctx, "OpenAI provider preparing request",
			observability.String(observability.AttrProvider, providerID),
			observability.String(observability.AttrCapability, string(request.Capability)),
			observability.String(observability.AttrModel, model),
		)
	}

	if p.apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is not set")
	}

	switch request.Capability {
	case ai.CapabilityTextGeneration, ai.CapabilityImageGeneration, ai.CapabilityImageAnalysis:
		return p.sendResponses(ctx, request, model)
	case ai.CapabilityAudioGeneration:
		return p.sendSpeech(ctx, request, model)
	case ai.CapabilityAudioTranscription:
		return p.sendTranscription(ctx, request, model)
	default:
		return &ai.Response{
			Model: model,
			Error: fmt.Sprintf("openai does not support capability %q", request.Capability),
		}, nil
	}
}

// sendResponses drives the Responses endpoint for text, vision, and tool-based
// image generation.
func (p *Provider) sendResponses(ctx context.Context, request ai.Request, model string) (*ai.Response, error) {
	wireReq, err := p.buildResponsesRequest(request, model)
	if err != nil {
		return nil, err
	}

	httpResponse, resp, err := utils.DoPostSync[responsesResponse](
		ctx, p.client, p.baseURL+"/responses", "", wireReq, p.authOption(),
	)
	if err != nil {
		return nil, classifyError(err)
	}
	if resp == nil {
		return nil, fmt.Errorf("empty response from OpenAI API: %s", httpResponse.Status)
	}
	if resp.Error != nil {
		return &ai.Response{Model: model, Error: resp.Error.Message}, nil
	}

	return responsesToGeneric(*resp, request)
}

// buildResponsesRequest maps the envelope onto the flat input array:
// instructions sit in the top-level field, history and the live context
// become role-tagged items, and an attachment becomes an inline input_image.
func (p *Provider) buildResponsesRequest(request ai.Request, model string) (*responsesRequest, error) {
	turns, stripped := p.ProcessHistory(request.Envelope)

	wireReq := &responsesRequest{
		Model:        model,
		Instructions: stripped.FlattenInstructions(),
	}

	for _, turn := range turns {
		wireReq.Input = append(wireReq.Input, inputItem{
			Role:    string(turn.Role),
			Content: []inputContent{{Type: "input_text", Text: turn.Content}},
		})
	}

	user := inputItem{Role: "user"}
	if stripped.Context != "" {
		user.Content = append(user.Content, inputContent{Type: "input_text", Text: stripped.Context})
	}

	if request.Capability == ai.CapabilityImageAnalysis {
		attachment := requestAttachment(request)
		if attachment == nil {
			return nil, &ai.UnsupportedInputShapeError{
				Provider:   providerID,
				Capability: request.Capability,
				Reason:     "no attachment supplied",
			}
		}
		if len(user.Content) == 0 {
			user.Content = append(user.Content, inputContent{Type: "input_text", Text: "Describe the attached image in detail."})
		}
		user.Content = append(user.Content, inputContent{
			Type:     "input_image",
			ImageURL: fmt.Sprintf("data:%s;base64,%s", attachment.MimeType, attachment.Data),
		})
	}

	if len(user.Content) > 0 {
		wireReq.Input = append(wireReq.Input, user)
	}

	if request.Capability == ai.CapabilityImageGeneration {
		tool := responseTool{Type: "image_generation"}
		if request.Image != nil {
			tool.Size = request.Image.Size
			tool.Quality = request.Image.Quality
			tool.OutputFormat = request.Image.Format
		}
		wireReq.Tools = []responseTool{tool}
	}

	return wireReq, nil
}

// sendSpeech drives the audio/speech endpoint; the reply body is the raw
// audio payload, not JSON.
func (p *Provider) sendSpeech(ctx context.Context, request ai.Request, model string) (*ai.Response, error) {
	text := request.Envelope.Context
	if text == "" {
		return nil, &ai.UnsupportedInputShapeError{
			Provider:   providerID,
			Capability: ai.CapabilityAudioGeneration,
			Reason:     "no text to synthesize",
		}
	}

	voice := "alloy"
	format := ai.AudioFormatMP3
	if request.Audio != nil {
		if request.Audio.Voice != "" {
			if !p.IsValidVoice(request.Audio.Voice) {
				return nil, &ai.UnsupportedInputShapeError{
					Provider:   providerID,
					Capability: ai.CapabilityAudioGeneration,
					Reason:     fmt.Sprintf("unknown voice %q", request.Audio.Voice),
				}
			}
			voice = request.Audio.Voice
		}
		if request.Audio.Format != "" {
			format = request.Audio.Format
		}
	}

	_, body, err := utils.DoPostRaw(ctx, p.client, p.baseURL+"/audio/speech", "", speechRequest{
		Model:          model,
		Input:          text,
		Voice:          voice,
		ResponseFormat: format,
	}, p.authOption())
	if err != nil {
		return nil, classifyError(err)
	}

	return &ai.Response{AudioData: body, Format: format, Model: model}, nil
}

// sendTranscription drives the multipart audio/transcriptions endpoint.
func (p *Provider) sendTranscription(ctx context.Context, request ai.Request, model string) (*ai.Response, error) {
	attachment := requestAttachment(request)
	if attachment == nil {
		return nil, &ai.UnsupportedInputShapeError{
			Provider:   providerID,
			Capability: ai.CapabilityAudioTranscription,
			Reason:     "no audio attachment supplied",
		}
	}

	data, err := base64.StdEncoding.DecodeString(attachment.Data)
	if err != nil {
		return nil, fmt.Errorf("decoding audio attachment: %w", err)
	}

	fileName := attachment.FileName
	if fileName == "" {
		fileName = "audio." + extensionForMime(attachment.MimeType)
	}

	fields := map[string]string{"model": model}
	if request.Audio != nil && request.Audio.Language != "" {
		fields["language"] = request.Audio.Language
	}

	httpResponse, resp, err := utils.DoPostMultipart[transcriptionResponse](
		ctx, p.client, p.baseURL+"/audio/transcriptions", "",
		utils.MultipartFile{FieldName: "file", FileName: fileName, Data: data},
		fields,
		p.authOption(),
	)
	if err != nil {
		return nil, classifyError(err)
	}
	if resp == nil {
		return nil, fmt.Errorf("empty response from OpenAI API: %s", httpResponse.Status)
	}

	return &ai.Response{Text: resp.Text, Model: model}, nil
}

// FetchModels refreshes the model list from the /models endpoint.
func (p *Provider) FetchModels(ctx context.Context) ([]string, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is not set")
	}

	_, resp, err := utils.DoGetSync[listModelsResponse](ctx, p.client, p.baseURL+"/models", "", p.authOption())
	if err != nil {
		return nil, classifyError(err)
	}

	models := make([]string, 0, len(resp.Data))
	for _, m := range resp.Data {
		models = append(models, m.ID)
	}
	return models, nil
}

// responsesToGeneric converts a Responses reply to the canonical shape:
// output_text blocks join into Text, an image_generation_call result decodes
// into ImageData.
func responsesToGeneric(resp responsesResponse, request ai.Request) (*ai.Response, error) {
	result := &ai.Response{Seed: resp.ID}

	var textParts []string
	for _, item := range resp.Output {
		switch item.Type {
		case "message":
			for _, c := range item.Content {
				if c.Type == "output_text" && c.Text != "" {
					textParts = append(textParts, c.Text)
				}
			}
		case "image_generation_call":
			if item.Result == "" {
				continue
			}
			data, err := base64.StdEncoding.DecodeString(item.Result)
			if err != nil {
				return nil, fmt.Errorf("decoding generated image: %w", err)
			}
			result.ImageData = data
			result.Format = "png"
			if request.Image != nil && request.Image.Format != "" {
				result.Format = request.Image.Format
			}
		}
	}

	result.Text = strings.Join(textParts, "\n")
	return result, nil
}

// requestAttachment returns the request's attachment, preferring the
// top-level field over the one embedded in the envelope.
func requestAttachment(request ai.Request) *ai.Attachment {
	if request.Attachment != nil {
		return request.Attachment
	}
	return request.Envelope.Attachment
}

// extensionForMime maps common audio MIME types to a file extension for the
// multipart file name.
func extensionForMime(mimeType string) string {
	switch mimeType {
	case "audio/mpeg", "audio/mp3":
		return "mp3"
	case "audio/wav", "audio/x-wav":
		return "wav"
	case "audio/ogg":
		return "ogg"
	case "audio/flac":
		return "flac"
	case "audio/mp4", "audio/m4a":
		return "m4a"
	default:
		return "bin"
	}
}

// classifyError maps transport failures onto the shared taxonomy.
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
