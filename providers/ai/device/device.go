package device

import (
	"context"
	"fmt"
	"net/http"

	"github.com/leofalp/aibridge/providers/ai"
	"github.com/leofalp/aibridge/providers/observability"
)

const (
	providerID = "device"

	// ModelOnDevice is the single pseudo-model this backend serves; there is
	// no remote catalog to pick from.
	ModelOnDevice = "device-local"
)

var descriptor = ai.Descriptor{
	ID: providerID,
	Capabilities: []ai.Capability{
		ai.CapabilityRealtimeConversation,
		ai.CapabilityAudioGeneration,
		ai.CapabilityAudioTranscription,
	},
	DefaultModels: map[ai.Capability]string{
		ai.CapabilityRealtimeConversation: ModelOnDevice,
		ai.CapabilityAudioGeneration:      ModelOnDevice,
		ai.CapabilityAudioTranscription:   ModelOnDevice,
	},
	Models: map[ai.Capability][]string{
		ai.CapabilityRealtimeConversation: {ModelOnDevice},
		ai.CapabilityAudioGeneration:      {ModelOnDevice},
		ai.CapabilityAudioTranscription:   {ModelOnDevice},
	},
	ModelPrefixes: []string{"device-"},
}

// Provider implements the ai.Provider interface on top of a local Engine.
type Provider struct {
	engine Engine
}

// New creates a device provider bound to the given engine.
func New(engine Engine) *Provider {
	return &Provider{engine: engine}
}

// WithAPIKey is a no-op: the on-device backend needs no credentials.
func (p *Provider) WithAPIKey(string) ai.Provider { return p }

// WithBaseURL is a no-op: there is no remote endpoint.
func (p *Provider) WithBaseURL(string) ai.Provider { return p }

// WithHTTPClient is a no-op: the engine does not speak HTTP.
func (p *Provider) WithHTTPClient(*http.Client) ai.Provider { return p }

// Descriptor returns the static description of the on-device backend.
func (p *Provider) Descriptor() ai.Descriptor {
	return descriptor
}

// SupportsCapability reports whether the on-device backend implements cap.
func (p *Provider) SupportsCapability(cap ai.Capability) bool {
	return descriptor.Supports(cap)
}

// DefaultModel returns the default model for cap, if one is configured.
func (p *Provider) DefaultModel(cap ai.Capability) (string, bool) {
	return descriptor.DefaultModel(cap)
}

// FetchModels always fails: there is no remote catalog. Callers fall back to
// the static list.
func (p *Provider) FetchModels(context.Context) ([]string, error) {
	return nil, fmt.Errorf("device backend has no remote model list")
}

// CompareModels is alphabetic: the catalog holds a single entry.
func (p *Provider) CompareModels(a, b string) int {
	switch {
	case a == b:
		return 0
	case a < b:
		return -1
	default:
		return 1
	}
}

// ProcessHistory extracts the conversation turns from the envelope once and
// returns a copy guaranteed not to contain them.
func (p *Provider) ProcessHistory(envelope ai.Envelope) ([]ai.Turn, ai.Envelope) {
	return envelope.ExtractHistory()
}

// AvailableVoices lists the engine's locally installed voices.
func (p *Provider) AvailableVoices() []ai.Voice {
	if p.engine == nil {
		return nil
	}
	return p.engine.Voices()
}

// IsValidVoice reports whether name is installed locally.
func (p *Provider) IsValidVoice(name string) bool {
	for _, voice := range p.AvailableVoices() {
		if voice.Name == name {
			return true
		}
	}
	return false
}

// VoiceGender returns the gender of the named local voice, or neutral when
// the name is unknown.
func (p *Provider) VoiceGender(name string) ai.Gender {
	for _, voice := range p.AvailableVoices() {
		if voice.Name == name {
			return voice.Gender
		}
	}
	return ai.GenderNeutral
}

// SendMessage implements the ai.Provider interface against the local engine.
func (p *Provider) SendMessage(ctx context.Context, request ai.Request) (*ai.Response, error) {
	observer := observability.ObserverFromContext(ctx)
	if observer != nil {
		observer.Trace(ctx, "Device provider handling request",
			observability.String(observability.AttrProvider, providerID),
			observability.String(observability.AttrCapability, string(request.Capability)),
		)
	}

	if p.engine == nil {
		return nil, fmt.Errorf("device engine is not configured")
	}

	switch request.Capability {
	case ai.CapabilityRealtimeConversation:
		return p.converse(ctx, request)
	case ai.CapabilityAudioGeneration:
		return p.synthesize(ctx, request)
	case ai.CapabilityAudioTranscription:
		return p.transcribe(ctx, request)
	default:
		return &ai.Response{
			Model: ModelOnDevice,
			Error: fmt.Sprintf("device backend does not support capability %q", request.Capability),
		}, nil
	}
}

func (p *Provider) converse(ctx context.Context, request ai.Request) (*ai.Response, error) {
	turns, stripped := p.ProcessHistory(request.Envelope)

	reply, err := p.engine.Converse(ctx, turns, stripped.SystemText())
	if err != nil {
		return nil, err
	}
	return &ai.Response{Text: reply, Model: ModelOnDevice}, nil
}

func (p *Provider) synthesize(ctx context.Context, request ai.Request) (*ai.Response, error) {
	text := request.Envelope.Context
	if text == "" {
		return nil, &ai.UnsupportedInputShapeError{
			Provider:   providerID,
			Capability: ai.CapabilityAudioGeneration,
			Reason:     "no text to synthesize",
		}
	}

	params := ai.AudioParams{Format: ai.AudioFormatWAV}
	if request.Audio != nil {
		params = *request.Audio
		if params.Format == "" {
			params.Format = ai.AudioFormatWAV
		}
	}
	if params.Voice != "" && !p.IsValidVoice(params.Voice) {
		return nil, &ai.UnsupportedInputShapeError{
			Provider:   providerID,
			Capability: ai.CapabilityAudioGeneration,
			Reason:     fmt.Sprintf("voice %q is not installed", params.Voice),
		}
	}

	data, err := p.engine.Synthesize(ctx, text, params)
	if err != nil {
		return nil, err
	}
	return &ai.Response{AudioData: data, Format: params.Format, Model: ModelOnDevice}, nil
}

// transcribe listens on the live microphone. A request carrying a stored clip
// is rejected with an unsupported-input-shape condition so the dispatcher can
// route it to a file-capable backend instead.
func (p *Provider) transcribe(ctx context.Context, request ai.Request) (*ai.Response, error) {
	if attachment := requestAttachment(request); attachment != nil {
		return nil, &ai.UnsupportedInputShapeError{
			Provider:   providerID,
			Capability: ai.CapabilityAudioTranscription,
			Reason:     "pre-recorded audio is not supported; the engine only hears the live microphone",
		}
	}

	language := ""
	if request.Audio != nil {
		language = request.Audio.Language
	}

	text, err := p.engine.Transcribe(ctx, language)
	if err != nil {
		return nil, err
	}
	return &ai.Response{Text: text, Model: ModelOnDevice}, nil
}

func requestAttachment(request ai.Request) *ai.Attachment {
	if request.Attachment != nil {
		return request.Attachment
	}
	return request.Envelope.Attachment
}
